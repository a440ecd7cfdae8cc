package ingestion

import (
	"fmt"
	"strconv"
	"strings"
)

// CanonicalStore extracts a store number from free text and renders the
// canonical "Loja NN" label. It accepts "Loja 9", "Filial-09", "LJ 21",
// "Loja21" and bare numbers like "21"; anything else is unresolved.
func CanonicalStore(v Vocabulary, s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}

	if m := v.StoreNumberPattern.FindStringSubmatch(s); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return storeLabel(n), true
		}
	}

	// No abbreviation pattern: keep only digits and accept 1-999.
	digits := keepDigits(s)
	if digits == "" {
		return "", false
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > 999 {
		return "", false
	}
	return storeLabel(n), true
}

// storeLabel zero-pads to two digits; numbers from 100 keep their width.
func storeLabel(n int) string {
	return fmt.Sprintf("Loja %02d", n)
}

func keepDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
