// Package titles derives user-facing task titles from script generation
// metadata. Everything here is a pure function of its inputs.
package titles

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/fluentband/fluentband/internal/models"
)

// DefaultBase is used when generation produced no context label or topic
// domain to name the task after.
const DefaultBase = "Listening Practice"

// mode suffixes, chosen by keyword classification over generation metadata.
const (
	suffixLecture    = "Lecture Analysis"
	suffixDiscussion = "Discussion"
	suffixMonologue  = "Monologue"
	suffixDialogue   = "Dialogue Practice"
)

var lectureKeywords = []string{"lecture", "academic", "professor", "seminar", "university talk"}

var discussionKeywords = []string{"discussion", "group", "debate", "meeting", "tutorial"}

var titleCaser = cases.Title(language.English)

// placeholderPattern matches the generic titles tasks are created with before
// generation has run ("Listening Practice", "Listening Practice Day 3",
// "Listening Task 12", ...).
var placeholderPattern = regexp.MustCompile(`(?i)^listening (practice|task)( day)?( \d+)?$`)

// partPattern matches an explicit IELTS part marker. Part numbers are
// analytics metadata and must never leak into user-facing titles.
var partPattern = regexp.MustCompile(`(?i)\bpart\s*\d+\b`)

// Derive builds a display title from script metadata. The base comes from the
// context label, falling back to the topic domain and then DefaultBase; the
// suffix comes from classifying the metadata text into one of four modes.
func Derive(scriptType, contextLabel, topicDomain, scenarioOverview string) string {
	base := strings.TrimSpace(contextLabel)
	if base == "" {
		base = strings.TrimSpace(topicDomain)
	}
	if base == "" {
		base = DefaultBase
	}
	base = titleCaser.String(strings.ToLower(base))

	// The suffix is always appended, even onto DefaultBase. A derived title
	// must never match placeholderPattern, or NeedsUpdate would flag it as
	// stale again on every read.
	return base + " " + classify(scriptType, contextLabel, topicDomain, scenarioOverview)
}

// classify picks the title suffix from keyword matching over the concatenated
// metadata, case-insensitive. Lecture keywords win over discussion keywords;
// script type only matters when no keyword matched.
func classify(scriptType, contextLabel, topicDomain, scenarioOverview string) string {
	haystack := strings.ToLower(contextLabel + " " + topicDomain + " " + scenarioOverview)

	for _, kw := range lectureKeywords {
		if strings.Contains(haystack, kw) {
			return suffixLecture
		}
	}
	for _, kw := range discussionKeywords {
		if strings.Contains(haystack, kw) {
			return suffixDiscussion
		}
	}
	if scriptType == models.ScriptTypeMonologue {
		return suffixMonologue
	}
	return suffixDialogue
}

// NeedsUpdate reports whether a title is stale and should be re-derived:
// empty, a generic placeholder, or carrying an explicit "Part N" marker.
func NeedsUpdate(title string) bool {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return true
	}
	if partPattern.MatchString(trimmed) {
		return true
	}
	return placeholderPattern.MatchString(trimmed)
}
