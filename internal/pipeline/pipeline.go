// Package pipeline coordinates the content generation stages for listening
// tasks. Each stage (script, questions, audio) owns its own task fields and
// persists them independently, so a failure in one stage never discards
// progress made by another. Repeated fills converge: a stage whose output is
// already present is skipped.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/fluentband/fluentband/internal/cache"
	"github.com/fluentband/fluentband/internal/generation"
	"github.com/fluentband/fluentband/internal/models"
	"github.com/fluentband/fluentband/internal/store"
	"github.com/fluentband/fluentband/internal/synthesis"
	"github.com/fluentband/fluentband/internal/titles"
)

// audioTimeout bounds one synthesis round-trip. The LLM stages carry their
// own timeouts inside the generators.
const audioTimeout = 120 * time.Second

// ScriptGenerator is the script stage dependency.
type ScriptGenerator interface {
	Generate(ctx context.Context, req generation.ScriptRequest) generation.ScriptResult
}

// QuestionGenerator is the question stage dependency.
type QuestionGenerator interface {
	Generate(ctx context.Context, req generation.QuestionRequest) generation.QuestionResult
}

// AudioSynthesizer is the audio stage dependency.
type AudioSynthesizer interface {
	Synthesize(ctx context.Context, req synthesis.Request) synthesis.Result
	Exists(ctx context.Context, audioURL string) bool
}

// Options configures an Orchestrator.
type Options struct {
	// CacheTTL bounds how long a fully generated task may be served from
	// memory. Zero disables caching.
	CacheTTL time.Duration
	// ScriptRetries is the number of additional attempts StartTask makes
	// when script generation fails. Defaults to 2.
	ScriptRetries uint64
	// Difficulty is passed through to question generation.
	Difficulty string
	// UserLevel and TargetBand parameterize script prompts.
	UserLevel  float64
	TargetBand float64
}

// Orchestrator drives tasks through the generation stages.
type Orchestrator struct {
	tasks     store.TaskStore
	scripts   ScriptGenerator
	questions QuestionGenerator
	audio     AudioSynthesizer

	// flights collapses concurrent work on the same task and stage into a
	// single execution.
	flights singleflight.Group
	cache   *cache.Cache[*models.Task]
	opts    Options
}

// New creates an Orchestrator over the given stage implementations.
func New(tasks store.TaskStore, scripts ScriptGenerator, questions QuestionGenerator, audio AudioSynthesizer, opts Options) *Orchestrator {
	if opts.ScriptRetries == 0 {
		opts.ScriptRetries = 2
	}
	return &Orchestrator{
		tasks:     tasks,
		scripts:   scripts,
		questions: questions,
		audio:     audio,
		cache:     cache.New[*models.Task](opts.CacheTTL, nil),
		opts:      opts,
	}
}

// TaskContent returns the task with as much content filled in as possible.
// Complete tasks are served from the in-memory cache; anything else goes
// through FillMissingContent first.
func (o *Orchestrator) TaskContent(ctx context.Context, taskID string) (*models.Task, error) {
	if task, ok := o.cache.Get(taskID); ok {
		return task, nil
	}
	return o.FillMissingContent(ctx, taskID)
}

// FillMissingContent generates whatever the task is missing and returns the
// task's latest state. Stage failures are logged and absorbed; the returned
// task simply carries whatever content exists. Only store access and
// precondition problems surface as errors.
func (o *Orchestrator) FillMissingContent(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := o.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Skill != models.SkillListening {
		return task, nil
	}
	if task.Stage() == models.StageComplete {
		o.cache.Put(taskID, task)
		return task, nil
	}

	if !task.HasScript() {
		if err := o.fillScript(ctx, task); err != nil {
			return nil, err
		}
		task, err = o.tasks.Get(ctx, taskID)
		if err != nil {
			return nil, err
		}
		if !task.HasScript() {
			// Script generation failed; nothing downstream can run.
			return task, nil
		}
	}

	// Questions and audio depend only on the script, never on each other.
	var g errgroup.Group
	if !task.HasQuestions() {
		snapshot := *task
		g.Go(func() error {
			o.fillQuestions(ctx, &snapshot)
			return nil
		})
	}
	if !task.HasAudio() {
		snapshot := *task
		g.Go(func() error {
			o.fillAudio(ctx, &snapshot)
			return nil
		})
	}
	_ = g.Wait()

	task, err = o.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	o.settleStatus(ctx, task)
	if task.Stage() == models.StageComplete {
		o.cache.Put(taskID, task)
	}
	return task, nil
}

// StartTask prepares a task for the user to begin. Unlike background fills,
// a missing script here is retried with backoff and surfaces as an error,
// because the user cannot proceed without one.
func (o *Orchestrator) StartTask(ctx context.Context, taskID string) (*models.Task, error) {
	task, err := o.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task.Skill != models.SkillListening {
		return nil, fmt.Errorf("task %s is a %s task, not listening", taskID, task.Skill)
	}

	if !task.HasScript() {
		backoff := retry.WithMaxRetries(o.opts.ScriptRetries, retry.NewExponential(500*time.Millisecond))
		err = retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := o.fillScript(ctx, task); err != nil {
				return err
			}
			refreshed, err := o.tasks.Get(ctx, taskID)
			if err != nil {
				return err
			}
			if !refreshed.HasScript() {
				return retry.RetryableError(fmt.Errorf("script generation failed for task %s", taskID))
			}
			task = refreshed
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("starting task %s: %w", taskID, err)
		}
	}

	next := models.AdvanceStatus(task.Status, models.StatusInProgress)
	if next != task.Status {
		if err := o.tasks.UpdateFields(ctx, taskID, map[string]any{"status": next}); err != nil {
			return nil, err
		}
		task.Status = next
	}
	o.cache.Delete(taskID)
	return task, nil
}

// PregenReport summarizes one task's outcome from a Pregenerate run.
type PregenReport struct {
	TaskID string
	Stage  models.Stage
	Err    string
}

// Pregenerate fills every incomplete listening task for one user, running at
// most concurrency fills at a time. A positive week restricts the run to that
// week's tasks. All tasks settle; one task's failure never cancels the rest.
func (o *Orchestrator) Pregenerate(ctx context.Context, ownerID string, week, concurrency int) ([]PregenReport, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	all, err := o.tasks.ListBySkill(ctx, ownerID, models.SkillListening)
	if err != nil {
		return nil, err
	}
	var tasks []models.Task
	for _, task := range all {
		if week > 0 && task.WeekNumber != week {
			continue
		}
		tasks = append(tasks, task)
	}

	reports := make([]PregenReport, len(tasks))
	var g errgroup.Group
	g.SetLimit(concurrency)
	for i, task := range tasks {
		g.Go(func() error {
			filled, err := o.FillMissingContent(ctx, task.ID)
			if err != nil {
				reports[i] = PregenReport{TaskID: task.ID, Stage: task.Stage(), Err: err.Error()}
				return nil
			}
			reports[i] = PregenReport{TaskID: task.ID, Stage: filled.Stage()}
			return nil
		})
	}
	_ = g.Wait()
	return reports, nil
}

// fillScript runs the script stage inside a singleflight. On success it
// persists the script fields, refreshes a stale placeholder title, and
// advances the status tag.
func (o *Orchestrator) fillScript(ctx context.Context, task *models.Task) error {
	_, err, _ := o.flights.Do(task.ID+":script", func() (any, error) {
		current, err := o.tasks.Get(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if current.HasScript() {
			return nil, nil
		}

		res := o.scripts.Generate(ctx, generation.ScriptRequest{
			TaskTitle:  current.Title,
			UserLevel:  o.opts.UserLevel,
			TargetBand: o.opts.TargetBand,
		})
		if !res.Success {
			slog.Warn("script generation failed", "task", current.ID, "reason", res.ErrorMsg)
			return nil, nil
		}

		p := res.Payload
		fields := map[string]any{
			"script_text":            p.ScriptText,
			"script_type":            p.ScriptType,
			"accent":                 p.Accent,
			"topic_domain":           p.TopicDomain,
			"context_label":          p.ContextLabel,
			"scenario_overview":      p.ScenarioOverview,
			"estimated_duration_sec": p.EstimatedDurationSec,
			"ielts_part":             p.IELTSPart,
			"status":                 models.AdvanceStatus(current.Status, models.StatusScriptReady),
		}
		if titles.NeedsUpdate(current.Title) {
			fields["title"] = titles.Derive(p.ScriptType, p.ContextLabel, p.TopicDomain, p.ScenarioOverview)
		}
		return nil, o.tasks.UpdateFields(ctx, current.ID, fields)
	})
	return err
}

func (o *Orchestrator) fillQuestions(ctx context.Context, task *models.Task) {
	_, err, _ := o.flights.Do(task.ID+":questions", func() (any, error) {
		current, err := o.tasks.Get(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if current.HasQuestions() || !current.HasScript() {
			return nil, nil
		}

		res := o.questions.Generate(ctx, generation.QuestionRequest{
			ScriptText: current.ScriptText,
			TaskTitle:  current.Title,
			Difficulty: o.opts.Difficulty,
		})
		if !res.Success {
			slog.Warn("question generation failed", "task", current.ID, "reason", res.ErrorMsg)
			return nil, nil
		}
		return nil, o.tasks.UpdateFields(ctx, current.ID, map[string]any{
			"questions": models.QuestionsJSON(res.Questions),
		})
	})
	if err != nil {
		slog.Warn("question stage error", "task", task.ID, "error", err)
	}
}

func (o *Orchestrator) fillAudio(ctx context.Context, task *models.Task) {
	_, err, _ := o.flights.Do(task.ID+":audio", func() (any, error) {
		current, err := o.tasks.Get(ctx, task.ID)
		if err != nil {
			return nil, err
		}
		if !current.HasScript() {
			return nil, nil
		}
		// An existing URL only counts if the object is still there.
		if current.HasAudio() && o.audio.Exists(ctx, current.AudioURL) {
			return nil, nil
		}

		synthCtx, cancel := context.WithTimeout(ctx, audioTimeout)
		defer cancel()

		res := o.audio.Synthesize(synthCtx, synthesis.Request{
			TaskID:     current.ID,
			OwnerID:    current.OwnerID,
			WeekNumber: current.WeekNumber,
			ScriptText: current.ScriptText,
			Accent:     current.Accent,
		})
		if !res.Success {
			slog.Warn("audio synthesis failed", "task", current.ID, "reason", res.ErrorMsg)
			return nil, nil
		}
		return nil, o.tasks.UpdateFields(ctx, current.ID, map[string]any{
			"audio_url":    res.AudioURL,
			"duration_sec": res.DurationSec,
		})
	})
	if err != nil {
		slog.Warn("audio stage error", "task", task.ID, "error", err)
	}
}

// settleStatus advances the stored status to reflect the task's stage. A
// task the user already started keeps in_progress until its content is
// actually complete.
func (o *Orchestrator) settleStatus(ctx context.Context, task *models.Task) {
	next := models.AdvanceStatus(task.Status, task.ContentStatus())
	if task.Status == models.StatusInProgress && next != models.StatusContentReady {
		return
	}
	if next == task.Status {
		return
	}
	if err := o.tasks.UpdateFields(ctx, task.ID, map[string]any{"status": next}); err != nil {
		slog.Warn("status update failed", "task", task.ID, "error", err)
		return
	}
	task.Status = next
}
