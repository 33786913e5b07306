package services

import (
	"strings"
)

// NormalizeAttributeName canonicalizes an attribute name for map lookups:
// trimmed, uppercased, non-breaking spaces collapsed to plain spaces and
// the Cyrillic Ё folded to Е. Feeds are inconsistent on all three.
func NormalizeAttributeName(name string) string {
	normalized := strings.ToUpper(strings.TrimSpace(name))
	normalized = strings.ReplaceAll(normalized, "\u00a0", " ")
	normalized = strings.ReplaceAll(normalized, "Ё", "Е")
	return normalized
}

// NormalizeValue canonicalizes an attribute value for value-map lookups
func NormalizeValue(value string) string {
	return strings.ToUpper(value)
}
