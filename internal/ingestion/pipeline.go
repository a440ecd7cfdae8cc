package ingestion

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/estrelalabs/telereport/internal/types"
	"github.com/rs/zerolog"
)

// Heuristics carries the empirically tuned thresholds of the ingestion
// heuristics. They are configuration, not constants: datasets from unknown
// sources may need different values.
type Heuristics struct {
	// SnifferSampleRows bounds the sample used for delimiter detection.
	SnifferSampleRows int
	// EpochMillisMin and EpochSecondsMin classify the median of a numeric
	// timestamp column as milliseconds or seconds.
	EpochMillisMin  float64
	EpochSecondsMin float64
	// DayFirstSampleSize and DayFirstRatio drive the day-first guess for
	// textual dates.
	DayFirstSampleSize int
	DayFirstRatio      float64
	// MinParsedFloor and MinParsedFraction set the acceptance threshold for
	// a timestamp candidate column: max(floor, fraction of rows).
	MinParsedFloor    int
	MinParsedFraction float64
	// StoreResolveFraction is the minimum share of resolved store values
	// before the all-column rescue kicks in.
	StoreResolveFraction float64
}

// DefaultHeuristics returns the tuned defaults.
func DefaultHeuristics() Heuristics {
	return Heuristics{
		SnifferSampleRows:    200,
		EpochMillisMin:       1e12,
		EpochSecondsMin:      1e9,
		DayFirstSampleSize:   300,
		DayFirstRatio:        0.6,
		MinParsedFloor:       5,
		MinParsedFraction:    0.2,
		StoreResolveFraction: 0.2,
	}
}

// Options configures a Pipeline.
type Options struct {
	Vocabulary Vocabulary
	Heuristics Heuristics
	// Timezone is the fixed reporting timezone, e.g. "America/Sao_Paulo".
	Timezone  string
	QueueMode QueueMatchMode
}

// Pipeline turns one raw call-detail export into normalized calls. It is
// stateless across runs; one instance can process any number of files.
type Pipeline struct {
	vocab   Vocabulary
	heur    Heuristics
	loc     *time.Location
	matcher *QueueMatcher
	status  *StatusClassifier
	logger  zerolog.Logger
}

// NewPipeline builds a pipeline from immutable options.
func NewPipeline(opts Options, logger zerolog.Logger) (*Pipeline, error) {
	loc, err := time.LoadLocation(opts.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid reporting timezone %q: %w", opts.Timezone, err)
	}
	return &Pipeline{
		vocab:   opts.Vocabulary,
		heur:    opts.Heuristics,
		loc:     loc,
		matcher: NewQueueMatcher(opts.QueueMode, opts.Vocabulary),
		status:  NewStatusClassifier(opts.Vocabulary),
		logger:  logger,
	}, nil
}

// Normalize runs the full pipeline with queue filtering. When no row matches
// the target queue the filter is disabled and the whole file is kept, with
// QueueFilterApplied reporting false.
func (p *Pipeline) Normalize(r io.Reader) (*types.NormalizeResult, error) {
	return p.run(r, true)
}

// NormalizeAll runs the pipeline without queue filtering, keeping every
// queue's calls. Used for reports that compare the target queue against the
// rest of the traffic.
func (p *Pipeline) NormalizeAll(r io.Reader) (*types.NormalizeResult, error) {
	return p.run(r, false)
}

// MatchesQueue reports whether a raw queue label belongs to the target queue
// under the configured match mode.
func (p *Pipeline) MatchesQueue(name string) bool {
	return p.matcher.Match(name)
}

func (p *Pipeline) run(r io.Reader, filter bool) (*types.NormalizeResult, error) {
	table, err := ReadTable(r, p.heur.SnifferSampleRows)
	if err != nil {
		return nil, err
	}

	storeCol, queueCol, statusCol := classifyColumns(table, p.vocab)
	roles := types.ColumnRoles{
		Store:  table.Headers[storeCol],
		Queue:  table.Headers[queueCol],
		Status: table.Headers[statusCol],
	}

	ts := normalizeTimestamps(table, p.vocab, p.heur, p.loc)
	roles.Timestamp = ts.Column

	storeVals := table.Values(storeCol)
	queueVals := table.Values(queueCol)
	statusVals := table.Values(statusCol)

	// Queue filter with file-level fallback: an empty match set means the
	// real-world queue label drifted, so filtering is disabled rather than
	// producing an empty dataset.
	selected := make([]int, 0, len(table.Rows))
	for i := range table.Rows {
		if p.matcher.Match(queueVals[i]) {
			selected = append(selected, i)
		}
	}
	applied := filter && len(selected) > 0
	if !applied {
		selected = selected[:0]
		for i := range table.Rows {
			selected = append(selected, i)
		}
	}

	stores, rescued := p.resolveStores(table, storeVals, selected)

	calls := make([]types.NormalizedCall, 0, len(selected))
	for n, i := range selected {
		if stores[n] == "" {
			continue
		}
		status := p.status.Classify(statusVals[i])
		calls = append(calls, types.NormalizedCall{
			Store:  stores[n],
			Queue:  queueVals[i],
			Status: status,
			Date:   ts.Dates[i],
			Time:   ts.Times[i],
			IsLost: p.status.IsLost(status),
		})
	}

	if len(calls) == 0 {
		return nil, &EmptyResultError{
			Roles:         roles,
			StoreSamples:  topValues(storeVals, 5),
			QueueSamples:  topValues(queueVals, 5),
			StatusSamples: topValues(statusVals, 5),
		}
	}

	p.logger.Info().
		Str("delimiter", delimiterName(table.Delimiter)).
		Str("store_column", roles.Store).
		Str("queue_column", roles.Queue).
		Str("status_column", roles.Status).
		Str("timestamp_column", roles.Timestamp).
		Bool("queue_filter_applied", applied).
		Bool("store_column_rescued", rescued).
		Int("rows_in", len(table.Rows)).
		Int("rows_out", len(calls)).
		Msg("file normalized")

	return &types.NormalizeResult{
		Calls:              calls,
		Roles:              roles,
		Delimiter:          delimiterName(table.Delimiter),
		RowsRead:           len(table.Rows),
		QueueFilterApplied: applied,
		StoreColumnRescued: rescued,
		TimestampAmbiguous: ts.Column != "" && ts.Ambiguous,
	}, nil
}

// resolveStores canonicalizes the chosen store column for the selected rows.
// When fewer than the configured fraction resolve, it rescans every column of
// each row and takes the first that yields a store — a last-resort recovery
// that is surfaced through the rescued flag because it can misread unrelated
// numeric columns on sparse data.
func (p *Pipeline) resolveStores(table *Table, storeVals []string, selected []int) (stores []string, rescued bool) {
	stores = make([]string, len(selected))
	resolved := 0
	for n, i := range selected {
		if label, ok := CanonicalStore(p.vocab, storeVals[i]); ok {
			stores[n] = label
			resolved++
		}
	}

	threshold := int(p.heur.StoreResolveFraction * float64(len(selected)))
	if threshold < 1 {
		threshold = 1
	}
	if resolved >= threshold {
		return stores, false
	}

	p.logger.Warn().
		Int("resolved", resolved).
		Int("rows", len(selected)).
		Msg("too few stores recognized in the store column, scanning all columns")

	for n, i := range selected {
		stores[n] = ""
		row := table.Rows[i]
		for col := range table.Headers {
			if col >= len(row) {
				break
			}
			if label, ok := CanonicalStore(p.vocab, strings.TrimSpace(row[col])); ok {
				stores[n] = label
				break
			}
		}
	}
	return stores, true
}

// topValues returns the n most frequent non-empty values, ordered by count
// descending then value ascending so diagnostics are deterministic.
func topValues(values []string, n int) []types.ValueSample {
	counts := make(map[string]int)
	for _, v := range values {
		if v == "" {
			continue
		}
		counts[v]++
	}
	samples := make([]types.ValueSample, 0, len(counts))
	for v, c := range counts {
		samples = append(samples, types.ValueSample{Value: v, Count: c})
	}
	sort.Slice(samples, func(a, b int) bool {
		if samples[a].Count != samples[b].Count {
			return samples[a].Count > samples[b].Count
		}
		return samples[a].Value < samples[b].Value
	})
	if len(samples) > n {
		samples = samples[:n]
	}
	return samples
}
