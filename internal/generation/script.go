// Package generation holds the two LLM-backed pipeline stages: script
// generation and question generation. Both treat model output as hostile
// input: responses are schema-checked and field-validated before anything is
// handed to the caller, and every failure mode resolves to a result value
// rather than an error that could fail the surrounding request.
package generation

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/fluentband/fluentband/internal/llm"
	"github.com/fluentband/fluentband/internal/models"
)

const defaultScriptTimeout = 90 * time.Second

// ScriptRequest describes one script generation call.
type ScriptRequest struct {
	TaskTitle  string
	UserLevel  float64 // current level, 0-9
	TargetBand float64 // target band score, 1-9
}

// ScriptPayload is the validated script-stage output.
type ScriptPayload struct {
	ScriptText           string
	ScriptType           string
	Accent               models.Accent
	TopicDomain          string
	ContextLabel         string
	ScenarioOverview     string
	EstimatedDurationSec int
	IELTSPart            int
}

// ScriptResult reports the outcome of one script generation call. Failures
// carry a reason in ErrorMsg; they never surface as Go errors because a
// failed stage is a recoverable state, not a request failure.
type ScriptResult struct {
	Success  bool
	ErrorMsg string
	Payload  ScriptPayload
}

// ScriptGenerator produces listening scripts through a Completer.
type ScriptGenerator struct {
	completer llm.Completer
	model     string
	timeout   time.Duration
}

// NewScriptGenerator creates a generator using the given completer. model may
// be blank to use the engine's default.
func NewScriptGenerator(completer llm.Completer, model string) *ScriptGenerator {
	return &ScriptGenerator{
		completer: completer,
		model:     model,
		timeout:   defaultScriptTimeout,
	}
}

// rawScript is the loosely-typed decode target for the model's JSON.
type rawScript struct {
	Script               string  `mapstructure:"script"`
	ScriptType           string  `mapstructure:"scriptType"`
	TopicDomain          string  `mapstructure:"topicDomain"`
	ContextLabel         string  `mapstructure:"contextLabel"`
	ScenarioOverview     string  `mapstructure:"scenarioOverview"`
	Accent               string  `mapstructure:"accent"`
	EstimatedDurationSec float64 `mapstructure:"estimatedDurationSec"`
	IELTSPart            float64 `mapstructure:"ieltsPart"`
}

// Generate issues one LLM call and validates its output. There is no retry at
// this layer; retry policy belongs to the orchestrator.
func (g *ScriptGenerator) Generate(ctx context.Context, req ScriptRequest) ScriptResult {
	prompt := buildScriptPrompt(req.TaskTitle, req.UserLevel, req.TargetBand)

	resp, err := g.completer.Complete(ctx, &llm.CompletionRequest{
		System:  scriptSystemPrompt,
		Prompt:  prompt,
		Model:   g.model,
		Timeout: g.timeout,
	})
	if err != nil {
		return scriptFailure("completion failed: " + err.Error())
	}

	doc, err := decodeJSONObject(resp.Text)
	if err != nil {
		return scriptFailure("malformed response: " + err.Error())
	}

	if errs := validateAgainstSchema(scriptSchema, doc); len(errs) > 0 {
		return scriptFailure("response failed schema validation: " + strings.Join(errs, "; "))
	}

	var raw rawScript
	if err := mapstructure.WeakDecode(doc, &raw); err != nil {
		return scriptFailure("decoding response fields: " + err.Error())
	}

	if strings.TrimSpace(raw.Script) == "" {
		return scriptFailure("response has empty script")
	}

	return ScriptResult{
		Success: true,
		Payload: sanitizeScript(raw),
	}
}

// sanitizeScript coerces loosely-validated fields into their enum/range
// constraints. The script text itself is already known non-empty.
func sanitizeScript(raw rawScript) ScriptPayload {
	p := ScriptPayload{
		ScriptText:           strings.TrimSpace(raw.Script),
		ScriptType:           raw.ScriptType,
		TopicDomain:          strings.TrimSpace(raw.TopicDomain),
		ContextLabel:         strings.TrimSpace(raw.ContextLabel),
		ScenarioOverview:     strings.TrimSpace(raw.ScenarioOverview),
		EstimatedDurationSec: int(raw.EstimatedDurationSec),
	}

	if p.ScriptType != models.ScriptTypeDialogue && p.ScriptType != models.ScriptTypeMonologue {
		slog.Debug("script generator returned unknown scriptType, defaulting", "scriptType", raw.ScriptType)
		p.ScriptType = models.ScriptTypeDialogue
	}

	p.Accent = models.AccentBritish
	for _, a := range models.KnownAccents {
		if strings.EqualFold(raw.Accent, string(a)) {
			p.Accent = a
			break
		}
	}

	if part := int(raw.IELTSPart); part >= 1 && part <= 4 {
		p.IELTSPart = part
	}

	if p.EstimatedDurationSec < 0 {
		p.EstimatedDurationSec = 0
	}

	return p
}

func scriptFailure(reason string) ScriptResult {
	return ScriptResult{Success: false, ErrorMsg: reason}
}
