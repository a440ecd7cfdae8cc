package ingestion

import (
	"fmt"
	"testing"
	"time"
)

func testLocation(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	return loc
}

func tableWithColumn(header string, values []string) *Table {
	rows := make([][]string, len(values))
	for i, v := range values {
		rows[i] = []string{fmt.Sprintf("Loja %02d", i+1), v}
	}
	return &Table{Headers: []string{"Loja", header}, Rows: rows, Delimiter: ';'}
}

func TestEpochSecondsClassification(t *testing.T) {
	values := make([]string, 10)
	for i := range values {
		values[i] = fmt.Sprintf("%d", 1_700_000_000+i*60)
	}
	table := tableWithColumn("start time", values)

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column != "start time" {
		t.Fatalf("expected 'start time' column accepted, got %q", res.Column)
	}
	// 2023-11-14 22:13:20 UTC is 19:13:20 in Sao Paulo
	if res.Dates[0] != "2023-11-14" {
		t.Errorf("expected date 2023-11-14, got %s", res.Dates[0])
	}
	if res.Times[0] != "19:13:20" {
		t.Errorf("expected time 19:13:20, got %s", res.Times[0])
	}
}

func TestEpochMillisClassification(t *testing.T) {
	values := make([]string, 10)
	for i := range values {
		values[i] = fmt.Sprintf("%d", int64(1_700_000_000_000)+int64(i)*60_000)
	}
	table := tableWithColumn("timestamp", values)

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column != "timestamp" {
		t.Fatalf("expected 'timestamp' column accepted, got %q", res.Column)
	}
	if res.Dates[0] != "2023-11-14" {
		t.Errorf("expected date 2023-11-14, got %s", res.Dates[0])
	}
}

func TestSmallNumbersAreNotEpochs(t *testing.T) {
	values := make([]string, 10)
	for i := range values {
		values[i] = fmt.Sprintf("%d", 100+i)
	}
	table := tableWithColumn("time spent", values)

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column != "" {
		t.Errorf("expected no accepted column for small numerics, got %q", res.Column)
	}
	for _, d := range res.Dates {
		if d != "-" {
			t.Fatalf("expected '-' sentinel, got %q", d)
		}
	}
}

func TestGuessDayFirst(t *testing.T) {
	h := DefaultHeuristics()

	tests := []struct {
		name      string
		values    []string
		dayFirst  bool
		ambiguous bool
	}{
		{
			name:     "majority above 12 means day first",
			values:   []string{"13/01/2025", "25/01/2025", "30/01/2025", "01/02/2025"},
			dayFirst: true,
		},
		{
			name:     "majority below 13 means month first",
			values:   []string{"01/13/2025", "01/25/2025", "02/02/2025", "03/05/2025", "04/06/2025"},
			dayFirst: false,
		},
		{
			name:      "no matching sample defaults to day first",
			values:    []string{"yesterday", "1700000000", ""},
			dayFirst:  true,
			ambiguous: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dayFirst, ambiguous := guessDayFirst(tt.values, h)
			if dayFirst != tt.dayFirst {
				t.Errorf("dayFirst = %v, want %v", dayFirst, tt.dayFirst)
			}
			if ambiguous != tt.ambiguous {
				t.Errorf("ambiguous = %v, want %v", ambiguous, tt.ambiguous)
			}
		})
	}
}

func TestTextTimestampsDayFirst(t *testing.T) {
	values := []string{
		"13/01/2025 08:30:00",
		"25/01/2025 14:05:10",
		"30/01/2025 09:00:00",
		"31/01/2025 10:15:00",
		"15/01/2025 11:45:30",
	}
	table := tableWithColumn("Data Início", values)

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column != "Data Início" {
		t.Fatalf("expected text column accepted, got %q", res.Column)
	}
	if !res.DayFirst {
		t.Error("expected day-first ordering")
	}
	if res.Dates[0] != "2025-01-13" {
		t.Errorf("expected 2025-01-13, got %s", res.Dates[0])
	}
	if res.Times[1] != "14:05:10" {
		t.Errorf("expected 14:05:10, got %s", res.Times[1])
	}
}

func TestUnparseableRowsGetSentinels(t *testing.T) {
	values := []string{
		"13/01/2025 08:30:00",
		"25/01/2025 14:05:10",
		"not a date",
		"30/01/2025 09:00:00",
		"31/01/2025 10:15:00",
		"15/01/2025 11:45:30",
	}
	table := tableWithColumn("start date", values)

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column == "" {
		t.Fatal("expected column accepted")
	}
	if res.Dates[2] != "-" || res.Times[2] != "-" {
		t.Errorf("expected sentinels for unparseable row, got %s %s", res.Dates[2], res.Times[2])
	}
}

func TestTimezoneHeaderPreferred(t *testing.T) {
	// Two time-like columns: the one naming the reporting timezone must win
	// even though it appears last.
	rows := [][]string{}
	for i := 0; i < 6; i++ {
		rows = append(rows, []string{
			fmt.Sprintf("%d", 100+i), // looks numeric, rejected as epoch
			fmt.Sprintf("1%d/01/2025 10:00:00", i+3),
		})
	}
	table := &Table{
		Headers:   []string{"duration time", "Start Time (America/Sao_Paulo)"},
		Rows:      rows,
		Delimiter: ';',
	}

	res := normalizeTimestamps(table, DefaultVocabulary(), DefaultHeuristics(), testLocation(t))
	if res.Column != "Start Time (America/Sao_Paulo)" {
		t.Errorf("expected timezone-named column preferred, got %q", res.Column)
	}
}
