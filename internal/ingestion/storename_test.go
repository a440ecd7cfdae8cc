package ingestion

import "testing"

func TestCanonicalStore(t *testing.T) {
	v := DefaultVocabulary()

	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"Loja 9", "Loja 09", true},
		{"loja 9", "Loja 09", true},
		{"LJ09", "Loja 09", true},
		{"LJ 21", "Loja 21", true},
		{"Loja21", "Loja 21", true},
		{"Filial-09", "Loja 09", true},
		{"09", "Loja 09", true},
		{"21", "Loja 21", true},
		{"Loja 123", "Loja 123", true},
		{"  Loja 7  ", "Loja 07", true},
		{"abc", "", false},
		{"", "", false},
		{"0", "", false},
		{"1000", "", false},
		{"Unidade XPTO", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := CanonicalStore(v, tt.in)
			if ok != tt.ok {
				t.Fatalf("CanonicalStore(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if got != tt.want {
				t.Errorf("CanonicalStore(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCanonicalStoreRoundTrip(t *testing.T) {
	v := DefaultVocabulary()

	variants := []string{"Loja 9", "LJ09", "09", "Filial 9"}
	for _, variant := range variants {
		got, ok := CanonicalStore(v, variant)
		if !ok {
			t.Fatalf("expected %q to resolve", variant)
		}
		if got != "Loja 09" {
			t.Errorf("expected %q to canonicalize to 'Loja 09', got %q", variant, got)
		}
	}
}
