// Package models holds the core data types shared across the content
// generation pipeline: the Task entity, comprehension questions, and the
// enums that classify generated scripts.
package models

import (
	"time"
)

// Skill identifies which practice module a task belongs to. Only listening
// tasks are driven through the generation pipeline.
const (
	SkillListening = "listening"
	SkillReading   = "reading"
	SkillWriting   = "writing"
	SkillSpeaking  = "speaking"
)

// ScriptType values returned by the script generator.
const (
	ScriptTypeDialogue  = "dialogue"
	ScriptTypeMonologue = "monologue"
)

// Accent is the voice/locale variant used for synthesized audio.
type Accent string

// Supported accents. Unrecognized values fall back to British at synthesis
// time rather than failing.
const (
	AccentBritish    Accent = "British"
	AccentAmerican   Accent = "American"
	AccentCanadian   Accent = "Canadian"
	AccentAustralian Accent = "Australian"
	AccentNewZealand Accent = "NewZealand"
)

// KnownAccents lists every accent the script generator may choose from.
var KnownAccents = []Accent{
	AccentBritish,
	AccentAmerican,
	AccentCanadian,
	AccentAustralian,
	AccentNewZealand,
}

// Status tags. These advance monotonically as content stages complete; a
// later stage never moves a task back to an earlier tag.
const (
	StatusPending      = "pending"
	StatusScriptReady  = "script_ready"
	StatusContentReady = "content_ready"
	StatusInProgress   = "in_progress"
)

// Stage describes how far through the pipeline a task has progressed. It is
// derived from field presence, never stored.
type Stage string

const (
	StageEmpty          Stage = "empty"
	StageScriptReady    Stage = "script_ready"
	StageQuestionsReady Stage = "questions_ready"
	StageAudioReady     Stage = "audio_ready"
	StageComplete       Stage = "complete"
)

// Task is one unit of listening-practice content belonging to a user for a
// given week/day. Generation fields start zero and are filled independently
// by their owning pipeline stage.
type Task struct {
	ID      string `gorm:"primarykey;size:36" json:"id"`
	OwnerID string `gorm:"size:36;index;not null" json:"ownerId"`

	Skill      string `gorm:"size:20;index" json:"skill"`
	WeekNumber int    `json:"weekNumber"`
	DayNumber  int    `json:"dayNumber"`

	Title  string `gorm:"size:200" json:"title"`
	Status string `gorm:"size:40" json:"status"`

	ScriptText           string `json:"scriptText"`
	ScriptType           string `gorm:"size:20" json:"scriptType"`
	Accent               Accent `gorm:"size:20" json:"accent"`
	TopicDomain          string `gorm:"size:100" json:"topicDomain"`
	ContextLabel         string `gorm:"size:100" json:"contextLabel"`
	ScenarioOverview     string `gorm:"size:500" json:"scenarioOverview"`
	EstimatedDurationSec int    `json:"estimatedDurationSec"`

	// IELTSPart is analytics-only metadata (1-4). It must never surface in
	// user-facing titles.
	IELTSPart int `json:"ieltsPart"`

	Questions []Question `gorm:"serializer:json" json:"questions"`

	AudioURL    string `gorm:"size:500" json:"audioUrl"`
	DurationSec int    `json:"duration"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the table name for the Task model.
func (Task) TableName() string {
	return "tasks"
}

// HasScript reports whether the script stage has completed.
func (t *Task) HasScript() bool {
	return t.ScriptText != ""
}

// HasQuestions reports whether the question stage has completed.
func (t *Task) HasQuestions() bool {
	return len(t.Questions) > 0
}

// HasAudio reports whether the audio stage has completed.
func (t *Task) HasAudio() bool {
	return t.AudioURL != ""
}

// Stage derives the pipeline stage from field presence. Questions and audio
// can complete in either order once the script exists.
func (t *Task) Stage() Stage {
	switch {
	case !t.HasScript():
		return StageEmpty
	case t.HasQuestions() && t.HasAudio():
		return StageComplete
	case t.HasQuestions():
		return StageQuestionsReady
	case t.HasAudio():
		return StageAudioReady
	default:
		return StageScriptReady
	}
}

// ContentStatus returns the status tag matching the task's current stage.
// Callers must only advance the stored Status, never regress it; see
// AdvanceStatus.
func (t *Task) ContentStatus() string {
	switch t.Stage() {
	case StageComplete:
		return StatusContentReady
	case StageEmpty:
		return StatusPending
	default:
		return StatusScriptReady
	}
}

// statusRank orders status tags so advancement can be enforced.
var statusRank = map[string]int{
	StatusPending:      0,
	StatusScriptReady:  1,
	StatusInProgress:   1,
	StatusContentReady: 2,
}

// AdvanceStatus returns next if it is at least as far along as current,
// otherwise current. Unknown tags are treated as rank zero.
func AdvanceStatus(current, next string) string {
	if statusRank[next] >= statusRank[current] {
		return next
	}
	return current
}
