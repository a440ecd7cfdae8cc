package ingestion

import (
	"fmt"
	"regexp"
	"strings"
)

// QueueMatchMode selects how queue names are compared against the target.
type QueueMatchMode string

const (
	// MatchExact requires trimmed equality with the target queue name.
	MatchExact QueueMatchMode = "exact"
	// MatchContains requires a brand token and a product-line token as
	// case-insensitive substrings.
	MatchContains QueueMatchMode = "contains"
	// MatchSmart tokenizes the accent-stripped name and requires a brand
	// token plus a product-line token, tolerating punctuation drift.
	MatchSmart QueueMatchMode = "smart"
)

// ParseQueueMatchMode validates a mode string, defaulting empty to smart.
func ParseQueueMatchMode(s string) (QueueMatchMode, error) {
	switch QueueMatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return MatchSmart, nil
	case MatchExact:
		return MatchExact, nil
	case MatchContains:
		return MatchContains, nil
	case MatchSmart:
		return MatchSmart, nil
	default:
		return "", fmt.Errorf("invalid queue match mode %q", s)
	}
}

var nonAlnumRuns = regexp.MustCompile(`[^a-z0-9]+`)

// QueueMatcher decides whether a call belongs to the target queue.
type QueueMatcher struct {
	mode  QueueMatchMode
	vocab Vocabulary
}

// NewQueueMatcher builds a matcher for the given mode and vocabulary.
func NewQueueMatcher(mode QueueMatchMode, v Vocabulary) *QueueMatcher {
	return &QueueMatcher{mode: mode, vocab: v}
}

// Match reports whether the queue name identifies the target queue.
func (m *QueueMatcher) Match(name string) bool {
	switch m.mode {
	case MatchExact:
		return strings.TrimSpace(name) == m.vocab.QueueTarget
	case MatchContains:
		low := strings.ToLower(name)
		if !containsAny(low, m.vocab.BrandTokens) {
			return false
		}
		return containsAny(low, m.vocab.LineSubstrings)
	default:
		return m.smartMatch(name)
	}
}

// smartMatch strips accents and punctuation, tokenizes, and requires both a
// brand token and a product-line token. The substring allowance is the
// secondary path for names that glue tokens together.
func (m *QueueMatcher) smartMatch(name string) bool {
	s := stripAccents(strings.ToLower(name))
	s = nonAlnumRuns.ReplaceAllString(s, " ")
	tokens := make(map[string]struct{})
	for _, t := range strings.Fields(s) {
		tokens[t] = struct{}{}
	}

	brand := false
	for _, b := range m.vocab.BrandTokens {
		if _, ok := tokens[b]; ok || strings.Contains(s, b) {
			brand = true
			break
		}
	}
	if !brand {
		return false
	}

	for _, t := range m.vocab.LineTokens {
		if _, ok := tokens[t]; ok {
			return true
		}
	}
	return containsAny(s, m.vocab.LineSubstrings)
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
