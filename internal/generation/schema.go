package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// defaultPrinter is used to format schema validation error messages.
var defaultPrinter = message.NewPrinter(language.English)

// scriptSchema is the compiled JSON Schema for script-stage LLM output.
var scriptSchema *jsonschema.Schema

// questionsSchema is the compiled JSON Schema for question-stage LLM output.
// It only enforces the envelope shape; per-item validation is deliberately
// done in code so one malformed item does not fail the whole call.
var questionsSchema *jsonschema.Schema

const scriptSchemaJSON = `{
  "type": "object",
  "required": ["script"],
  "properties": {
    "script": {"type": "string", "minLength": 1},
    "scriptType": {"type": "string"},
    "topicDomain": {"type": "string"},
    "contextLabel": {"type": "string"},
    "scenarioOverview": {"type": "string"},
    "accent": {"type": "string"},
    "estimatedDurationSec": {"type": "number"},
    "ieltsPart": {"type": "number"}
  }
}`

const questionsSchemaJSON = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {"type": "object"}
    }
  }
}`

func init() {
	scriptSchema = mustCompileSchema(scriptSchemaJSON, "script.schema.json")
	questionsSchema = mustCompileSchema(questionsSchemaJSON, "questions.schema.json")
}

func mustCompileSchema(raw string, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal([]byte(raw), &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}

	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

func validateAgainstSchema(schema *jsonschema.Schema, instance any) []string {
	err := schema.Validate(instance)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/"
		if len(ve.InstanceLocation) > 0 {
			loc = "/" + strings.Join(ve.InstanceLocation, "/")
		}
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(defaultPrinter)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

// decodeJSONObject parses raw model output into a generic map after trimming
// any markdown fencing or surrounding prose. Models are contractually bound
// to emit a single JSON object, but they are treated as adversarial here.
func decodeJSONObject(raw string) (map[string]any, error) {
	normalized := extractJSON(raw)
	if normalized == "" {
		return nil, fmt.Errorf("response contains no JSON object")
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(normalized), &doc); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}
	return doc, nil
}

// extractJSON pulls the JSON object out of raw model output: a fenced code
// block if present, otherwise the span from the first '{' to the last '}'.
func extractJSON(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ""
	}

	if start := strings.Index(trimmed, "```"); start >= 0 {
		rest := trimmed[start+3:]
		if nl := strings.Index(rest, "\n"); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			trimmed = strings.TrimSpace(rest[:end])
		}
	}

	open := strings.Index(trimmed, "{")
	close := strings.LastIndex(trimmed, "}")
	if open < 0 || close < open {
		return ""
	}
	return trimmed[open : close+1]
}
