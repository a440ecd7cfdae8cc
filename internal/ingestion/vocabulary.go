package ingestion

import "regexp"

// StatusRule maps an accent-stripped, lowercased status fragment to its
// canonical outcome label. Rules are tested as substrings in slice order and
// the first match wins.
type StatusRule struct {
	Match string
	Label string
}

// Vocabulary carries the business terms the heuristics score against. It is
// immutable configuration: build one per pipeline instead of mutating shared
// state, so pipelines for other locales can coexist.
type Vocabulary struct {
	// Header keywords per semantic role, matched as lowercase substrings.
	StoreKeys  []string
	QueueKeys  []string
	StatusKeys []string

	// TimePattern matches headers that look like date/time columns.
	TimePattern *regexp.Regexp

	// StoreWordPattern and StoreSuffixPattern score cell contents when
	// picking the store column.
	StoreWordPattern   *regexp.Regexp
	StoreSuffixPattern *regexp.Regexp

	// StoreNumberPattern extracts the 1-3 digit store number that follows a
	// store/branch abbreviation.
	StoreNumberPattern *regexp.Regexp

	// StatusRules plus the lost-label set drive outcome classification.
	StatusRules []StatusRule
	LostLabels  []string

	// Queue matching tokens: a brand token plus at least one product-line
	// token identify the target queue. LineSubstrings is the secondary,
	// looser allowance applied on the whole normalized string.
	QueueTarget    string
	BrandTokens    []string
	LineTokens     []string
	LineSubstrings []string
}

// DefaultVocabulary returns the PT-BR retail vocabulary the heuristics were
// tuned on.
func DefaultVocabulary() Vocabulary {
	return Vocabulary{
		StoreKeys:  []string{"loja", "store", "unidade", "filial", "site", "branch", "origem"},
		QueueKeys:  []string{"queue", "fila", "skill", "department", "grupo", "setor"},
		StatusKeys: []string{"status", "result", "disposition", "motivo", "outcome", "termina", "final"},

		TimePattern: regexp.MustCompile(`(?i)date|data|start|hora|time|timestamp`),

		StoreWordPattern:   regexp.MustCompile(`\bloja\b|\bfilial\b|\bbranch\b|\bsite\b|\blj\b`),
		StoreSuffixPattern: regexp.MustCompile(`loja\D*\d+$|lj\D*\d+$`),
		StoreNumberPattern: regexp.MustCompile(`(?i)(?:\bloja\b|\bfilial\b|\blj\b)\D*?(\d{1,3})`),

		StatusRules: []StatusRule{
			{"handled", StatusHandled},
			{"completed", StatusHandled},
			{"connected", StatusHandled},
			{"success", StatusHandled},
			{"answer", StatusHandled},
			{"abandoned", StatusAbandoned},
			{"no answer", StatusNoAnswer},
			{"not answered", StatusNoAnswer},
			{"nao atend", StatusNoAnswer},
			{"timeout", StatusTimeout},
			{"cancel", StatusCancelled},
			{"evicted system", StatusEvicted},
			{"evicted by system", StatusEvicted},
		},
		LostLabels: []string{
			StatusAbandoned,
			StatusNoAnswer,
			StatusTimeout,
			StatusCancelled,
			StatusEvicted,
		},

		QueueTarget:    "Estrela Televendas",
		BrandTokens:    []string{"estrela"},
		LineTokens:     []string{"televendas", "tele", "tlv"},
		LineSubstrings: []string{"tele", "televenda"},
	}
}

// Canonical outcome labels. One handled label, the rest are the lost set.
const (
	StatusHandled   = "atendida"
	StatusAbandoned = "Cliente desistiu"
	StatusNoAnswer  = "não atendida"
	StatusTimeout   = "tempo esgotado"
	StatusCancelled = "cancelada"
	StatusEvicted   = "Televendas não atendeu"
)
