package webapi

import (
	"context"

	"github.com/fluentband/fluentband/internal/models"
)

// Orchestrator is the pipeline surface the API depends on.
type Orchestrator interface {
	TaskContent(ctx context.Context, taskID string) (*models.Task, error)
	StartTask(ctx context.Context, taskID string) (*models.Task, error)
}

// CreateTaskRequest is the body for POST /api/tasks. Skill defaults to
// listening.
type CreateTaskRequest struct {
	OwnerID    string `json:"ownerId" binding:"required"`
	Skill      string `json:"skill"`
	WeekNumber int    `json:"weekNumber"`
	DayNumber  int    `json:"dayNumber"`
	Title      string `json:"title"`
}

// TaskResponse is the task shape returned to clients. Explanations are only
// included alongside questions because clients reveal them after answering.
type TaskResponse struct {
	ID         string `json:"id"`
	OwnerID    string `json:"ownerId"`
	Skill      string `json:"skill"`
	WeekNumber int    `json:"weekNumber"`
	DayNumber  int    `json:"dayNumber"`
	Title      string `json:"title"`
	Status     string `json:"status"`
	Stage      string `json:"stage"`

	ScriptText           string `json:"scriptText,omitempty"`
	ScriptType           string `json:"scriptType,omitempty"`
	Accent               string `json:"accent,omitempty"`
	TopicDomain          string `json:"topicDomain,omitempty"`
	ContextLabel         string `json:"contextLabel,omitempty"`
	ScenarioOverview     string `json:"scenarioOverview,omitempty"`
	EstimatedDurationSec int    `json:"estimatedDurationSec,omitempty"`

	Questions []models.Question `json:"questions,omitempty"`

	AudioURL    string `json:"audioUrl,omitempty"`
	DurationSec int    `json:"duration,omitempty"`
}

func taskResponse(t *models.Task) TaskResponse {
	return TaskResponse{
		ID:                   t.ID,
		OwnerID:              t.OwnerID,
		Skill:                t.Skill,
		WeekNumber:           t.WeekNumber,
		DayNumber:            t.DayNumber,
		Title:                t.Title,
		Status:               t.Status,
		Stage:                string(t.Stage()),
		ScriptText:           t.ScriptText,
		ScriptType:           t.ScriptType,
		Accent:               string(t.Accent),
		TopicDomain:          t.TopicDomain,
		ContextLabel:         t.ContextLabel,
		ScenarioOverview:     t.ScenarioOverview,
		EstimatedDurationSec: t.EstimatedDurationSec,
		Questions:            t.Questions,
		AudioURL:             t.AudioURL,
		DurationSec:          t.DurationSec,
	}
}
