package aggregator

import (
	"testing"

	"github.com/estrelalabs/telereport/internal/types"
)

func TestDetailFiltersAndSorts(t *testing.T) {
	calls := []types.NormalizedCall{
		{Store: "Loja 01", Date: "2024-03-02", Time: "09:30:00", Status: "atendida"},
		{Store: "Loja 02", Date: "2024-03-01", Time: "08:00:00", Status: "atendida"},
		{Store: "Loja 01", Date: "2024-03-01", Time: "14:00:00", Status: "não atendida"},
		{Store: "Loja 01", Date: "2024-03-01", Time: "08:15:00", Status: "atendida"},
	}

	rows := Detail(calls, "Loja 01")
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	want := []types.DetailRow{
		{Date: "2024-03-01", Time: "08:15:00", Status: "atendida"},
		{Date: "2024-03-01", Time: "14:00:00", Status: "não atendida"},
		{Date: "2024-03-02", Time: "09:30:00", Status: "atendida"},
	}
	for i, w := range want {
		if rows[i] != w {
			t.Fatalf("row %d: expected %+v, got %+v", i, w, rows[i])
		}
	}
}

func TestDetailSentinelsSortLast(t *testing.T) {
	calls := []types.NormalizedCall{
		{Store: "Loja 01", Date: "-", Time: "-", Status: "cancelada"},
		{Store: "Loja 01", Date: "2024-03-05", Time: "10:00:00", Status: "atendida"},
		{Store: "Loja 01", Date: "-", Time: "-", Status: "atendida"},
	}

	rows := Detail(calls, "Loja 01")
	if rows[0].Date != "2024-03-05" {
		t.Fatalf("parseable row should come first, got %+v", rows[0])
	}
	// Stable sort keeps equal sentinel rows in input order.
	if rows[1].Status != "cancelada" || rows[2].Status != "atendida" {
		t.Fatalf("sentinel rows out of order: %+v %+v", rows[1], rows[2])
	}
}

func TestDetailMissingTimeStillSortsByDate(t *testing.T) {
	calls := []types.NormalizedCall{
		{Store: "Loja 01", Date: "2024-03-02", Time: "-", Status: "atendida"},
		{Store: "Loja 01", Date: "2024-03-01", Time: "-", Status: "atendida"},
	}
	rows := Detail(calls, "Loja 01")
	if rows[0].Date != "2024-03-01" || rows[1].Date != "2024-03-02" {
		t.Fatalf("date-only rows out of order: %+v", rows)
	}
}

func TestDetailUnknownStore(t *testing.T) {
	calls := []types.NormalizedCall{
		{Store: "Loja 01", Date: "2024-03-01", Time: "08:00:00", Status: "atendida"},
	}
	if rows := Detail(calls, "Loja 99"); len(rows) != 0 {
		t.Fatalf("expected no rows, got %v", rows)
	}
}
