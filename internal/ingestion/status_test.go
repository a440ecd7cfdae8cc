package ingestion

import "testing"

func TestStatusClassify(t *testing.T) {
	c := NewStatusClassifier(DefaultVocabulary())

	tests := []struct {
		in   string
		want string
	}{
		{"handled", StatusHandled},
		{"Completed", StatusHandled},
		{"CONNECTED", StatusHandled},
		{"call success", StatusHandled},
		{"abandoned", StatusAbandoned},
		{"Abandoned by caller", StatusAbandoned},
		{"timeout", StatusTimeout},
		{"cancelled", StatusCancelled},
		{"cancel", StatusCancelled},
		{"evicted system", StatusEvicted},
		{"something else", "something else"}, // passthrough
		{"", "-"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := c.Classify(tt.in); got != tt.want {
				t.Errorf("Classify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestStatusClassifyAccentInsensitive(t *testing.T) {
	c := NewStatusClassifier(DefaultVocabulary())

	// All spellings of the same status must land on one canonical label.
	variants := []string{"Não Atendida", "nao atendida", "NÃO ATEND", "nÃo atendida"}
	for _, variant := range variants {
		if got := c.Classify(variant); got != StatusNoAnswer {
			t.Errorf("Classify(%q) = %q, want %q", variant, got, StatusNoAnswer)
		}
	}
}

func TestStatusIsLost(t *testing.T) {
	c := NewStatusClassifier(DefaultVocabulary())

	tests := []struct {
		label string
		lost  bool
	}{
		{StatusHandled, false},
		{StatusAbandoned, true},
		{StatusNoAnswer, true},
		{StatusTimeout, true},
		{StatusCancelled, true},
		{StatusEvicted, true},
		{"NÃO ATENDIDA", true}, // case-insensitive membership
		{"something else", false},
		{"-", false},
	}

	for _, tt := range tests {
		if got := c.IsLost(tt.label); got != tt.lost {
			t.Errorf("IsLost(%q) = %v, want %v", tt.label, got, tt.lost)
		}
	}
}

func TestStripAccents(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"não", "nao"},
		{"início", "inicio"},
		{"Televendas", "Televendas"},
		{"ção", "cao"},
	}
	for _, tt := range tests {
		if got := stripAccents(tt.in); got != tt.want {
			t.Errorf("stripAccents(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
