package generation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/lithammer/shortuuid/v4"

	"github.com/fluentband/fluentband/internal/llm"
	"github.com/fluentband/fluentband/internal/models"
)

const defaultQuestionTimeout = 90 * time.Second

// answerLetters maps the implicit option lettering to option indexes.
var answerLetters = []string{"A", "B", "C", "D"}

// QuestionRequest describes one question generation call.
type QuestionRequest struct {
	ScriptText string
	TaskTitle  string
	Difficulty string
}

// QuestionResult reports the outcome of one question generation call.
// A call can succeed with fewer questions than requested: items that fail
// validation are dropped individually, and only zero survivors makes the
// whole call fail.
type QuestionResult struct {
	Success   bool
	ErrorMsg  string
	Questions []models.Question
}

// QuestionGenerator produces comprehension questions through a Completer.
type QuestionGenerator struct {
	completer llm.Completer
	model     string
	timeout   time.Duration
}

// NewQuestionGenerator creates a generator using the given completer.
func NewQuestionGenerator(completer llm.Completer, model string) *QuestionGenerator {
	return &QuestionGenerator{
		completer: completer,
		model:     model,
		timeout:   defaultQuestionTimeout,
	}
}

// rawQuestion is the loosely-typed decode target for one response item.
// Options stays []any because models return either bare strings or
// {id,text} objects.
type rawQuestion struct {
	ID            string `mapstructure:"id"`
	Question      string `mapstructure:"question"`
	Options       []any  `mapstructure:"options"`
	CorrectAnswer string `mapstructure:"correctAnswer"`
	Explanation   string `mapstructure:"explanation"`
}

// Generate issues one LLM call and validates each returned item
// independently. An empty script is a precondition failure and never reaches
// the external service.
func (g *QuestionGenerator) Generate(ctx context.Context, req QuestionRequest) QuestionResult {
	if strings.TrimSpace(req.ScriptText) == "" {
		return questionFailure("script text is required for question generation")
	}

	resp, err := g.completer.Complete(ctx, &llm.CompletionRequest{
		System:  questionSystemPrompt,
		Prompt:  buildQuestionPrompt(req.ScriptText, req.TaskTitle, req.Difficulty),
		Model:   g.model,
		Timeout: g.timeout,
	})
	if err != nil {
		return questionFailure("completion failed: " + err.Error())
	}

	doc, err := decodeJSONObject(resp.Text)
	if err != nil {
		return questionFailure("malformed response: " + err.Error())
	}

	if errs := validateAgainstSchema(questionsSchema, doc); len(errs) > 0 {
		return questionFailure("response failed schema validation: " + strings.Join(errs, "; "))
	}

	items, _ := doc["questions"].([]any)

	questions := make([]models.Question, 0, len(items))
	for i, item := range items {
		q, reason := normalizeQuestion(item, i)
		if reason != "" {
			slog.Warn("dropping malformed question item",
				"index", i,
				"task", req.TaskTitle,
				"reason", reason)
			continue
		}
		questions = append(questions, q)
	}

	if len(questions) == 0 {
		return questionFailure(fmt.Sprintf("no valid questions in response (%d items rejected)", len(items)))
	}

	return QuestionResult{Success: true, Questions: questions}
}

// normalizeQuestion converts one raw response item into a validated Question.
// It returns a non-empty reason string when the item must be dropped.
func normalizeQuestion(item any, index int) (models.Question, string) {
	var raw rawQuestion
	if err := mapstructure.WeakDecode(item, &raw); err != nil {
		return models.Question{}, "not an object: " + err.Error()
	}

	if len(raw.Options) != models.OptionCount {
		return models.Question{}, fmt.Sprintf("expected %d options, got %d", models.OptionCount, len(raw.Options))
	}

	options := make([]models.Option, 0, models.OptionCount)
	for _, rawOpt := range raw.Options {
		opt, ok := normalizeOption(rawOpt)
		if !ok {
			return models.Question{}, "option is neither a string nor an {id,text} object"
		}
		options = append(options, opt)
	}

	correctID, ok := resolveAnswer(raw.CorrectAnswer, options)
	if !ok {
		return models.Question{}, fmt.Sprintf("unresolvable correctAnswer %q", raw.CorrectAnswer)
	}

	id := strings.TrimSpace(raw.ID)
	if id == "" {
		id = fmt.Sprintf("q%d", index+1)
	}

	q := models.Question{
		ID:            id,
		Question:      strings.TrimSpace(raw.Question),
		Options:       options,
		CorrectAnswer: correctID,
		Explanation:   strings.TrimSpace(raw.Explanation),
	}
	// Question.Valid owns the persisted-shape invariant; at this point the
	// option count and answer are already settled, so a failure here means
	// missing question or explanation text.
	if !q.Valid() {
		return models.Question{}, "missing question or explanation text"
	}
	return q, ""
}

// normalizeOption accepts either a bare string or an {id,text} object. Bare
// strings get a synthesized id.
func normalizeOption(raw any) (models.Option, bool) {
	switch v := raw.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return models.Option{}, false
		}
		return models.Option{
			ID:   shortuuid.New(),
			Text: strings.TrimSpace(v),
		}, true
	case map[string]any:
		var opt models.Option
		if err := mapstructure.WeakDecode(v, &opt); err != nil {
			return models.Option{}, false
		}
		if strings.TrimSpace(opt.Text) == "" {
			return models.Option{}, false
		}
		if strings.TrimSpace(opt.ID) == "" {
			opt.ID = shortuuid.New()
		}
		return opt, true
	default:
		return models.Option{}, false
	}
}

// resolveAnswer maps a letter A-D onto the matching option's id. An answer
// that already equals one of the option ids is accepted as-is.
func resolveAnswer(answer string, options []models.Option) (string, bool) {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return "", false
	}

	for i, letter := range answerLetters {
		if strings.EqualFold(trimmed, letter) && i < len(options) {
			return options[i].ID, true
		}
	}

	for _, opt := range options {
		if opt.ID == trimmed {
			return opt.ID, true
		}
	}

	return "", false
}

func questionFailure(reason string) QuestionResult {
	return QuestionResult{Success: false, ErrorMsg: reason}
}
