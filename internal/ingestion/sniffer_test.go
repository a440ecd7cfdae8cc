package ingestion

import (
	"errors"
	"strings"
	"testing"
)

func TestReadTableDetectsSemicolon(t *testing.T) {
	data := "Loja ;Fila;Status\nLoja 01;Estrela Televendas;handled\nLoja 02;Estrela Televendas;abandoned\n"

	table, err := ReadTable(strings.NewReader(data), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if table.Delimiter != ';' {
		t.Errorf("expected ';' delimiter, got %q", table.Delimiter)
	}
	if len(table.Headers) != 3 {
		t.Fatalf("expected 3 headers, got %d", len(table.Headers))
	}
	// Headers must be trimmed
	if table.Headers[0] != "Loja" {
		t.Errorf("expected trimmed header 'Loja', got %q", table.Headers[0])
	}
	if len(table.Rows) != 2 {
		t.Errorf("expected 2 rows, got %d", len(table.Rows))
	}
}

func TestReadTableDetectsOtherDelimiters(t *testing.T) {
	tests := []struct {
		name  string
		data  string
		delim rune
	}{
		{"comma", "a,b\n1,2\n", ','},
		{"pipe", "a|b\n1|2\n", '|'},
		{"tab", "a\tb\n1\t2\n", '\t'},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, err := ReadTable(strings.NewReader(tt.data), 200)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if table.Delimiter != tt.delim {
				t.Errorf("expected %q, got %q", tt.delim, table.Delimiter)
			}
		})
	}
}

func TestReadTableSingleColumnFails(t *testing.T) {
	data := "just one header\nvalue\nvalue\n"

	_, err := ReadTable(strings.NewReader(data), 200)
	if err == nil {
		t.Fatal("expected delimiter detection to fail")
	}

	var dde *DelimiterDetectionError
	if !errors.As(err, &dde) {
		t.Fatalf("expected DelimiterDetectionError, got %T", err)
	}
}

func TestReadTablePadsShortRows(t *testing.T) {
	data := "a;b;c\n1;2\n"

	table, err := ReadTable(strings.NewReader(data), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(table.Rows[0]) != 3 {
		t.Fatalf("expected padded row of 3 cells, got %d", len(table.Rows[0]))
	}
	if table.Rows[0][2] != "" {
		t.Errorf("expected empty padding cell, got %q", table.Rows[0][2])
	}
}
