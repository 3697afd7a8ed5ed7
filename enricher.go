package scholarmail

import (
	"context"
	"strings"
	"unicode/utf8"
)

// ScholarMatch is the best search result for a paper title.
type ScholarMatch struct {
	// Snippet is the abstract snippet shown on the result page.
	Snippet string

	// PublicationInfo summarizes venue and publication metadata.
	PublicationInfo string

	// Link is the canonical result URL, resolved past the alert's
	// redirect endpoint.
	Link string
}

// Enricher looks up a paper title in an external search index.
type Enricher interface {
	// Lookup returns the best match for the query, or (nil, nil) when
	// the index has no result. Absence of a result is not an error.
	Lookup(ctx context.Context, query string) (*ScholarMatch, error)
}

// ApplyMatch folds an enrichment result into the paper. The summary is
// overwritten only when the snippet is non-empty and either longer than
// the current summary or the current summary is the fallback
// placeholder; publication info is appended to the comment; a resolved
// link replaces both URL fields. All other fields stay untouched.
func (p *Paper) ApplyMatch(m *ScholarMatch) {
	if m == nil {
		return
	}
	if m.Snippet != "" {
		// Length is compared in runes so CJK summaries are not
		// over-weighted against ASCII snippets.
		if strings.Contains(p.Summary, SummaryFallback) ||
			utf8.RuneCountInString(p.Summary) < utf8.RuneCountInString(m.Snippet) {
			p.Summary = m.Snippet
		}
	}
	if m.PublicationInfo != "" {
		if p.Comment != "" {
			p.Comment = p.Comment + " | " + m.PublicationInfo
		} else {
			p.Comment = m.PublicationInfo
		}
	}
	if m.Link != "" {
		p.PDF = m.Link
		p.Abs = m.Link
	}
}
