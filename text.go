package scholarmail

import "strings"

// NormalizeText collapses every run of whitespace to a single space and
// trims the result. Alert markup embeds newlines and tabs freely, so
// normalized text is what all downstream heuristics operate on.
// Normalizing already-normalized text is a no-op.
func NormalizeText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
