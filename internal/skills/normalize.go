// Package skills canonicalizes free-form skill strings and holds the alias
// dictionary used to relate them.
package skills

import (
	"strings"
	"unicode"
)

// Normalize lowercases the skill, turns whitespace runs into single spaces,
// drops every character outside [a-z0-9 +#.-] and trims the result.
// Empty or punctuation-only input yields "".
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))

	space := false
	for _, r := range strings.ToLower(raw) {
		if unicode.IsSpace(r) {
			space = b.Len() > 0
			continue
		}
		if !allowed(r) {
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}

	return b.String()
}

func allowed(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		return true
	case r == '+', r == '#', r == '.', r == '-':
		return true
	default:
		return false
	}
}

// Normalizer applies Normalize and then resolves canonical aliases from the
// table, so "js" and "javascript" can compare equal when the table says so.
// A nil table or a table without canonical aliases makes it equivalent to Normalize.
type Normalizer struct {
	table *AliasTable
}

// NewNormalizer returns a normalizer bound to the given table.
func NewNormalizer(table *AliasTable) *Normalizer {
	return &Normalizer{table: table}
}

// Normalize returns the canonical, comparable form of raw.
func (n *Normalizer) Normalize(raw string) string {
	normalized := Normalize(raw)
	if n == nil || n.table == nil || normalized == "" {
		return normalized
	}

	if canonical, ok := n.table.canonical[normalized]; ok {
		return canonical
	}

	return normalized
}
