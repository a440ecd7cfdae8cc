package ingestion

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// stripAccents removes diacritics: NFKD decomposition, drop combining marks,
// recompose.
var accentStripper = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func stripAccents(s string) string {
	out, _, err := transform.String(accentStripper, s)
	if err != nil {
		return s
	}
	return out
}

// StatusClassifier maps free-text call statuses onto the canonical outcome
// taxonomy. Matching is accent- and case-insensitive; unmatched text passes
// through unchanged so nothing is silently discarded.
type StatusClassifier struct {
	rules []StatusRule
	lost  map[string]struct{}
}

// NewStatusClassifier builds a classifier from the vocabulary's ordered rules.
func NewStatusClassifier(v Vocabulary) *StatusClassifier {
	lost := make(map[string]struct{}, len(v.LostLabels))
	for _, l := range v.LostLabels {
		lost[strings.ToLower(l)] = struct{}{}
	}
	return &StatusClassifier{rules: v.StatusRules, lost: lost}
}

// Classify returns the canonical label for a raw status value, the original
// text when no rule matches, or "-" for empty input.
func (c *StatusClassifier) Classify(raw string) string {
	base := stripAccents(strings.ToLower(strings.TrimSpace(raw)))
	for _, rule := range c.rules {
		if strings.Contains(base, rule.Match) {
			return rule.Label
		}
	}
	if raw == "" {
		return "-"
	}
	return raw
}

// IsLost reports whether a (canonical or passthrough) label belongs to the
// lost-outcome set, case-insensitively.
func (c *StatusClassifier) IsLost(label string) bool {
	_, ok := c.lost[strings.ToLower(label)]
	return ok
}
