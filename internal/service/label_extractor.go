package service

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// violationPattern is the closed classification vocabulary.
var violationPattern = regexp.MustCompile(`(?i)(helmetless riding|triple riding|signal breaking|mobile usage(?: while driving)?)`)

// LabelExtractor validates and normalizes classifier output against the
// closed violation vocabulary.
type LabelExtractor struct {
	pattern *regexp.Regexp
}

func NewLabelExtractor() *LabelExtractor {
	return &LabelExtractor{pattern: violationPattern}
}

// Normalize returns raw unchanged (trimmed) when it is already a clean label
// list, otherwise the vocabulary matches found in it, or "" when none.
func (e *LabelExtractor) Normalize(raw string) string {
	raw = strings.TrimSpace(raw)
	if e.IsClean(raw) {
		return raw
	}
	return strings.Join(e.Extract(raw), ", ")
}

// IsClean reports whether raw is a ", "-separated list of distinct,
// title-cased vocabulary labels and nothing else.
func (e *LabelExtractor) IsClean(raw string) bool {
	if raw == "" {
		return false
	}
	seen := make(map[string]bool)
	for _, item := range strings.Split(raw, ", ") {
		if item != titleCase(item) || seen[item] {
			return false
		}
		if loc := e.pattern.FindStringIndex(item); loc == nil || loc[0] != 0 || loc[1] != len(item) {
			return false
		}
		seen[item] = true
	}
	return true
}

// Extract finds every vocabulary label in text, title-cased and de-duplicated
// in order of first appearance.
func (e *LabelExtractor) Extract(text string) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, m := range e.pattern.FindAllString(text, -1) {
		label := titleCase(m)
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}
	return labels
}

// A Caser is stateful, so each call gets its own.
func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}
