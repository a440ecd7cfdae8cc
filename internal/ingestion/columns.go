package ingestion

import "strings"

// findCandidates returns the indices of columns whose lowercased header
// contains any of the role keywords, in column order.
func findCandidates(headers []string, keys []string) []int {
	var out []int
	for i, h := range headers {
		low := strings.ToLower(h)
		for _, k := range keys {
			if strings.Contains(low, k) {
				out = append(out, i)
				break
			}
		}
	}
	return out
}

// storeValueScore rates how much a column's contents look like store labels:
// a weighted sum of the fraction matching store vocabulary and the fraction
// ending in a store abbreviation plus number.
func storeValueScore(values []string, v Vocabulary) float64 {
	n := 0
	wordHits := 0
	suffixHits := 0
	for _, val := range values {
		if val == "" {
			continue
		}
		n++
		low := strings.ToLower(val)
		if v.StoreWordPattern.MatchString(low) {
			wordHits++
		}
		if v.StoreSuffixPattern.MatchString(low) {
			suffixHits++
		}
	}
	if n == 0 {
		return 0
	}
	return float64(wordHits)/float64(n)*0.6 + float64(suffixHits)/float64(n)*0.4
}

// pickStoreColumn selects the store column: the best-scoring candidate with a
// store keyword in its header, else the best-scoring non-time column, else
// the first column. Ties keep the leftmost column so the choice is
// deterministic.
func pickStoreColumn(t *Table, v Vocabulary) int {
	if cand := findCandidates(t.Headers, v.StoreKeys); len(cand) > 0 {
		return maxByScore(cand, func(i int) float64 { return storeValueScore(t.Values(i), v) })
	}

	var nonTime []int
	for i, h := range t.Headers {
		if !v.TimePattern.MatchString(h) {
			nonTime = append(nonTime, i)
		}
	}
	if len(nonTime) == 0 {
		return 0
	}
	return maxByScore(nonTime, func(i int) float64 { return storeValueScore(t.Values(i), v) })
}

// pickFirstOrFallback returns the first keyword-matching column, or the fixed
// fallback index clamped to the table width.
func pickFirstOrFallback(headers []string, keys []string, fallback int) int {
	if cand := findCandidates(headers, keys); len(cand) > 0 {
		return cand[0]
	}
	if fallback > len(headers)-1 {
		return len(headers) - 1
	}
	return fallback
}

// maxByScore returns the first index achieving the highest score.
func maxByScore(indices []int, score func(int) float64) int {
	best := indices[0]
	bestScore := score(best)
	for _, i := range indices[1:] {
		if s := score(i); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

// classifyColumns resolves the store, queue and status columns. The timestamp
// role is resolved separately because it needs full-column parsing.
func classifyColumns(t *Table, v Vocabulary) (store, queue, status int) {
	store = pickStoreColumn(t, v)
	queue = pickFirstOrFallback(t.Headers, v.QueueKeys, 1)
	status = pickFirstOrFallback(t.Headers, v.StatusKeys, len(t.Headers)-1)
	return store, queue, status
}
