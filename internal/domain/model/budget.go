package model

import (
	"strings"
	"unicode"
)

// ParseBudget extracts a deterministic integer amount from a free-text budget
// string. The rule: take the first run of digits after dropping spaces,
// non-breaking spaces, dots and apostrophes used as thousand separators; a
// trailing 'k'/'K' on that run multiplies by 1000. Returns nil when the text
// carries no digits ("aucun budget", "à définir").
//
// Examples: "3000-5000€" → 3000, "5 000" → 5000, "10k" → 10000,
// "1.500€" → 1500, "aucun budget" → nil.
func ParseBudget(raw string) *int {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', ' ', ' ', '.', '\'':
			return -1
		default:
			return r
		}
	}, raw)

	start := -1
	end := len(cleaned)
	for i, r := range cleaned {
		if unicode.IsDigit(r) {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			end = i
			break
		}
	}
	if start == -1 {
		return nil
	}

	amount := 0
	for _, r := range cleaned[start:end] {
		amount = amount*10 + int(r-'0')
	}

	rest := cleaned[end:]
	if len(rest) > 0 && (rest[0] == 'k' || rest[0] == 'K') {
		amount *= 1000
	}

	return &amount
}
