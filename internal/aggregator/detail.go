package aggregator

import (
	"sort"
	"time"

	"github.com/estrelalabs/telereport/internal/types"
)

// Detail filters normalized calls down to one store and sorts them
// chronologically. Rows whose date or time carries the "-" sentinel sort
// last; among unparseable rows the raw strings decide lexicographically.
func Detail(calls []types.NormalizedCall, store string) []types.DetailRow {
	var rows []types.DetailRow
	for _, c := range calls {
		if c.Store != store {
			continue
		}
		rows = append(rows, types.DetailRow{Date: c.Date, Time: c.Time, Status: c.Status})
	}

	sort.SliceStable(rows, func(a, b int) bool {
		ka, okA := detailKey(rows[a])
		kb, okB := detailKey(rows[b])
		switch {
		case okA && okB:
			if !ka.Equal(kb) {
				return ka.Before(kb)
			}
			return false
		case okA:
			return true
		case okB:
			return false
		default:
			if rows[a].Date != rows[b].Date {
				return rows[a].Date < rows[b].Date
			}
			return rows[a].Time < rows[b].Time
		}
	})
	return rows
}

// detailKey combines the canonical date and time strings back into one
// sortable instant. A missing time still sorts the row by its date.
func detailKey(r types.DetailRow) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", r.Date)
	if err != nil {
		return time.Time{}, false
	}
	t, err := time.Parse("15:04:05", r.Time)
	if err != nil {
		return d, true
	}
	return d.Add(time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute + time.Duration(t.Second())*time.Second), true
}
