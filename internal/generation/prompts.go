package generation

import (
	"fmt"
	"strings"
)

// scriptSystemPrompt fixes the script generator's output contract. The model
// must pick exactly one format and one topic domain and return a single JSON
// object with no prose around it.
const scriptSystemPrompt = `You are an IELTS listening content writer. You write realistic spoken-English
scripts for listening practice.

Choose EXACTLY ONE of these four listening formats, matching the requested
difficulty:
  1. everyday social dialogue between two speakers (bookings, directions,
     shopping, services)
  2. informational monologue in an everyday context (announcement, recorded
     message, guided tour)
  3. discussion between two to four speakers in a training or education
     context (tutorial, study group, workplace meeting)
  4. academic lecture monologue on a topic of general interest

Choose EXACTLY ONE topic domain for the script, such as: travel, education,
work, health, housing, environment, technology, culture, daily life.

Respond with a SINGLE JSON object and nothing else. No markdown, no
commentary. The object must have exactly these keys:
  "script": the full spoken script (plain text, speaker labels for dialogues)
  "scriptType": "dialogue" or "monologue"
  "topicDomain": the chosen topic domain
  "contextLabel": a short label for the setting, e.g. "hotel booking"
  "scenarioOverview": one or two sentences describing the scenario
  "accent": one of "British", "American", "Canadian", "Australian", "NewZealand"
  "estimatedDurationSec": estimated spoken duration in seconds
  "ieltsPart": 1, 2, 3 or 4 matching the chosen format`

// questionSystemPrompt fixes the question generator's output contract.
const questionSystemPrompt = `You are an IELTS listening examiner writing multiple-choice comprehension
questions for a listening script.

Write 4 to 5 questions. Between them they must cover: the main idea, a
specific detail, an inference, and vocabulary in context.

Each question has exactly 4 options. Options are implicitly lettered A-D in
order. "correctAnswer" is the letter of the correct option.

Respond with a SINGLE JSON object and nothing else:
{"questions": [{"id": "q1", "question": "...", "options": ["...", "...",
"...", "..."], "correctAnswer": "A", "explanation": "..."}]}`

// buildScriptPrompt names the task and difficulty for the script call.
func buildScriptPrompt(taskTitle string, userLevel, targetBand float64) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Write a listening script for the practice task %q.\n", taskTitle)
	fmt.Fprintf(&sb, "The learner's current level is %.1f out of 9.\n", userLevel)
	fmt.Fprintf(&sb, "The learner's target band score is %.1f.\n", targetBand)
	sb.WriteString("Pitch the vocabulary, pace and format between those two levels.")
	return sb.String()
}

// buildQuestionPrompt carries the script and difficulty for the question call.
func buildQuestionPrompt(scriptText, taskTitle, difficulty string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Task: %s\n", taskTitle)
	if difficulty != "" {
		fmt.Fprintf(&sb, "Difficulty: %s\n", difficulty)
	}
	sb.WriteString("\nListening script:\n```\n")
	sb.WriteString(scriptText)
	sb.WriteString("\n```\n")
	return sb.String()
}
