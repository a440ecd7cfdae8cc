package ingestion

import (
	"fmt"
	"strings"

	"github.com/estrelalabs/telereport/internal/types"
)

// DelimiterDetectionError means no candidate delimiter turned the file into a
// plausible multi-column table. Fatal for the file.
type DelimiterDetectionError struct {
	Tried []string
}

func (e *DelimiterDetectionError) Error() string {
	return fmt.Sprintf("could not detect the file delimiter (tried %s)", strings.Join(e.Tried, " "))
}

// EmptyResultError means zero rows survived normalization. It carries the top
// values of the chosen store/queue/status columns so the operator can see why
// (e.g. unrecognized store vocabulary) instead of an empty report.
type EmptyResultError struct {
	Roles         types.ColumnRoles
	StoreSamples  []types.ValueSample
	QueueSamples  []types.ValueSample
	StatusSamples []types.ValueSample
}

func (e *EmptyResultError) Error() string {
	return fmt.Sprintf(
		"no store recognized after normalization: store column %q examples %s, queue column %q examples %s, status column %q examples %s",
		e.Roles.Store, formatSamples(e.StoreSamples),
		e.Roles.Queue, formatSamples(e.QueueSamples),
		e.Roles.Status, formatSamples(e.StatusSamples),
	)
}

func formatSamples(samples []types.ValueSample) string {
	if len(samples) == 0 {
		return "(none)"
	}
	parts := make([]string, 0, len(samples))
	for _, s := range samples {
		parts = append(parts, fmt.Sprintf("%q×%d", s.Value, s.Count))
	}
	return strings.Join(parts, " ")
}
