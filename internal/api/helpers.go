package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strings"
)

var (
	ymPattern   = regexp.MustCompile(`^(\d{4})-?(\d{2})$`)
	nonAlnumRun = regexp.MustCompile(`[^A-Za-z0-9]+`)
)

// sanitizeYM normalizes a month identifier to YYYY-MM. Returns "" when the
// input is not a month.
func sanitizeYM(ym string) string {
	ym = strings.ReplaceAll(strings.TrimSpace(ym), "/", "-")
	m := ymPattern.FindStringSubmatch(ym)
	if m == nil {
		return ""
	}
	return m[1] + "-" + m[2]
}

// slugify turns a store label into a URL-safe slug
func slugify(s string) string {
	s = nonAlnumRun.ReplaceAllString(strings.TrimSpace(s), "-")
	return strings.ToLower(strings.Trim(s, "-"))
}

// deslug maps a slug back to the matching option, if any
func deslug(slug string, options []string) (string, bool) {
	target := slugify(slug)
	for _, o := range options {
		if slugify(o) == target {
			return o, true
		}
	}
	return "", false
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}
