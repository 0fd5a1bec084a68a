// Package store persists tasks in SQLite through GORM. The pipeline only
// ever writes the fields owned by a stage, so updates go through field maps
// rather than whole-row saves.
package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/fluentband/fluentband/internal/models"
)

// ErrTaskNotFound is returned when a task id does not exist.
var ErrTaskNotFound = errors.New("task not found")

// TaskStore is the persistence surface the pipeline depends on.
type TaskStore interface {
	Get(ctx context.Context, id string) (*models.Task, error)
	Create(ctx context.Context, task *models.Task) error
	// UpdateFields applies a partial update to one task. Only the named
	// columns change; concurrent writers touching disjoint fields do not
	// clobber each other.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	ListBySkill(ctx context.Context, ownerID, skill string) ([]models.Task, error)
}

// GormTaskStore implements TaskStore on a GORM database handle.
type GormTaskStore struct {
	db *gorm.DB
}

var _ TaskStore = (*GormTaskStore)(nil)

// Open opens (or creates) the SQLite database at path and migrates the task
// schema.
func Open(path string) (*GormTaskStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}
	if err := db.AutoMigrate(&models.Task{}); err != nil {
		return nil, fmt.Errorf("migrating task schema: %w", err)
	}
	return &GormTaskStore{db: db}, nil
}

// NewGormTaskStore wraps an existing database handle. The caller is
// responsible for migrations.
func NewGormTaskStore(db *gorm.DB) *GormTaskStore {
	return &GormTaskStore{db: db}
}

func (s *GormTaskStore) Get(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).First(&task, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("loading task %s: %w", id, err)
	}
	return &task, nil
}

func (s *GormTaskStore) Create(ctx context.Context, task *models.Task) error {
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("creating task: %w", err)
	}
	return nil
}

func (s *GormTaskStore) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	res := s.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("updating task %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%w: %s", ErrTaskNotFound, id)
	}
	return nil
}

func (s *GormTaskStore) ListBySkill(ctx context.Context, ownerID, skill string) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.WithContext(ctx).
		Where("owner_id = ? AND skill = ?", ownerID, skill).
		Order("week_number, day_number").
		Find(&tasks).Error
	if err != nil {
		return nil, fmt.Errorf("listing %s tasks for %s: %w", skill, ownerID, err)
	}
	return tasks, nil
}
