package ingestion

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// timestampResult holds the per-row date/time strings for the accepted
// timestamp column. Column is empty when no candidate qualified; Dates and
// Times then carry the "-" sentinel for every row.
type timestampResult struct {
	Column    string
	Dates     []string
	Times     []string
	DayFirst  bool
	Ambiguous bool
}

var dmyPattern = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)

// isoLayouts are tried first for text values: unambiguous, so day ordering
// does not apply. RFC3339 is handled separately because it carries an offset.
var isoLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

var dayFirstLayouts = []string{
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"02/01/2006",
	"02-01-2006 15:04:05",
	"02-01-2006 15:04",
	"02-01-2006",
	"02/01/06 15:04:05",
	"02/01/06",
}

var monthFirstLayouts = []string{
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"01-02-2006 15:04:05",
	"01-02-2006 15:04",
	"01-02-2006",
	"01/02/06 15:04:05",
	"01/02/06",
}

// normalizeTimestamps finds the best timestamp column and renders canonical
// date/time strings in the reporting timezone. Candidates are headers
// matching the time vocabulary, ranked by scoreTimeHeader; each is tried as
// epoch first, then as locale text, and the first one with enough parsed
// values wins.
func normalizeTimestamps(t *Table, v Vocabulary, h Heuristics, loc *time.Location) timestampResult {
	none := timestampResult{
		Dates: repeatSentinel(len(t.Rows)),
		Times: repeatSentinel(len(t.Rows)),
	}

	var candidates []int
	for i, header := range t.Headers {
		if v.TimePattern.MatchString(header) {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return none
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return scoreTimeHeader(t.Headers[candidates[a]]) > scoreTimeHeader(t.Headers[candidates[b]])
	})

	minParsed := h.MinParsedFloor
	if frac := int(h.MinParsedFraction * float64(len(t.Rows))); frac > minParsed {
		minParsed = frac
	}

	for _, col := range candidates {
		values := t.Values(col)

		parsed, ok := parseEpochColumn(values, h, loc)
		ambiguous := false
		dayFirst := false
		if !ok {
			dayFirst, ambiguous = guessDayFirst(values, h)
			parsed = parseTextColumn(values, dayFirst, loc)
		}

		count := 0
		for _, p := range parsed {
			if p != nil {
				count++
			}
		}
		if count < minParsed {
			continue
		}

		res := timestampResult{
			Column:    t.Headers[col],
			Dates:     make([]string, len(parsed)),
			Times:     make([]string, len(parsed)),
			DayFirst:  dayFirst,
			Ambiguous: ambiguous,
		}
		for i, p := range parsed {
			if p == nil {
				res.Dates[i] = "-"
				res.Times[i] = "-"
				continue
			}
			res.Dates[i] = p.Format("2006-01-02")
			res.Times[i] = p.Format("15:04:05")
		}
		return res
	}

	return none
}

// scoreTimeHeader prefers headers naming the reporting timezone, then
// start-of-call tokens, then generic time tokens.
func scoreTimeHeader(header string) int {
	n := strings.ToLower(header)
	score := 0
	if strings.Contains(n, "america") && (strings.Contains(n, "sao_paulo") || strings.Contains(n, "sao paulo")) {
		score += 5
	}
	if strings.Contains(n, "start") || strings.Contains(n, "inicio") || strings.Contains(n, "início") {
		score += 2
	}
	if strings.Contains(n, "time") || strings.Contains(n, "hora") {
		score += 1
	}
	return score
}

// parseEpochColumn interprets the column as numeric epoch values. The median
// of the parseable values classifies the unit: milliseconds above the
// millisecond floor, seconds above the second floor, otherwise the column is
// not an epoch at all.
func parseEpochColumn(values []string, h Heuristics, loc *time.Location) ([]*time.Time, bool) {
	nums := make([]float64, len(values))
	valid := make([]bool, len(values))
	var present []float64
	for i, v := range values {
		if v == "" {
			continue
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			continue
		}
		nums[i] = f
		valid[i] = true
		present = append(present, f)
	}
	if len(present) == 0 {
		return nil, false
	}

	med := median(present)
	var unit time.Duration
	switch {
	case med >= h.EpochMillisMin:
		unit = time.Millisecond
	case med >= h.EpochSecondsMin:
		unit = time.Second
	default:
		return nil, false
	}

	out := make([]*time.Time, len(values))
	for i := range values {
		if !valid[i] {
			continue
		}
		var ts time.Time
		if unit == time.Millisecond {
			ts = time.UnixMilli(int64(nums[i]))
		} else {
			ts = time.Unix(int64(nums[i]), 0)
		}
		local := ts.In(loc)
		out[i] = &local
	}
	return out, true
}

func median(vals []float64) float64 {
	sorted := append([]float64(nil), vals...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// guessDayFirst samples values matching a D/M/Y-like pattern and assumes
// day-first ordering when enough first groups exceed 12. With no decisive
// sample it defaults to day-first and flags the guess as ambiguous.
func guessDayFirst(values []string, h Heuristics) (dayFirst, ambiguous bool) {
	total := 0
	hits := 0
	for _, v := range values {
		if total >= h.DayFirstSampleSize {
			break
		}
		m := dmyPattern.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		total++
		first, err := strconv.Atoi(m[1])
		if err == nil && first > 12 {
			hits++
		}
	}
	if total == 0 {
		return true, true
	}
	return float64(hits) > float64(total)*h.DayFirstRatio, false
}

// parseTextColumn parses each value with the resolved day ordering. ISO
// layouts are tried first; RFC3339 values carry their own offset and are
// converted into the reporting timezone, naive values are taken as already
// local.
func parseTextColumn(values []string, dayFirst bool, loc *time.Location) []*time.Time {
	ordered := monthFirstLayouts
	if dayFirst {
		ordered = dayFirstLayouts
	}

	out := make([]*time.Time, len(values))
	for i, v := range values {
		if v == "" {
			continue
		}
		if ts, ok := parseTextValue(v, ordered, loc); ok {
			out[i] = ts
		}
	}
	return out
}

func parseTextValue(v string, ordered []string, loc *time.Location) (*time.Time, bool) {
	if ts, err := time.Parse(time.RFC3339, v); err == nil {
		local := ts.In(loc)
		return &local, true
	}
	for _, layout := range isoLayouts {
		if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &ts, true
		}
	}
	for _, layout := range ordered {
		if ts, err := time.ParseInLocation(layout, v, loc); err == nil {
			return &ts, true
		}
	}
	return nil, false
}

func repeatSentinel(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "-"
	}
	return out
}
