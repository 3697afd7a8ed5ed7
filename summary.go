package scholarmail

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// SummaryFallback marks papers whose alert entry carried no abstract.
const SummaryFallback = "Abstract not available."

// summaryPadLimit is the rune count below which a summary is too thin
// to stand alone and gets title/author context folded in.
const summaryPadLimit = 50

// ComposeSummary decides the final summary for a paper. A missing
// abstract falls back to an explicit marker first. Any summary shorter
// than summaryPadLimit runes is then wrapped in a three-line block
// embedding the title and authors, so minimal abstracts don't starve
// downstream report generators of context. A summary of exactly
// summaryPadLimit runes stands as-is.
func ComposeSummary(title string, authors []string, abstract string) string {
	summary := abstract
	if summary == "" {
		summary = SummaryFallback
	}
	if utf8.RuneCountInString(summary) < summaryPadLimit {
		return fmt.Sprintf("Title: %s\nAuthors: %s\nAbstract: %s",
			title, strings.Join(authors, ", "), summary)
	}
	return summary
}
