package scholarmail

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Provenance literals attached to every extracted paper.
const (
	SourceName      = "Google Scholar"
	CommentTag      = "From Google Scholar Alert"
	DefaultCategory = "Google Scholar"
)

// idPrefix namespaces paper IDs so consumers can tell scholar records
// apart from records produced by other collectors sharing the sink.
const idPrefix = "scholar_"

// Paper represents one publication extracted from an alert email.
// Field names match the line-delimited sink format one-to-one.
type Paper struct {
	ID         string   `json:"id"`
	Title      string   `json:"title"`
	Authors    []string `json:"authors"`
	Summary    string   `json:"summary"`
	Categories []string `json:"categories"`
	PDF        string   `json:"pdf"`
	Abs        string   `json:"abs"`
	Comment    string   `json:"comment"`
	Source     string   `json:"source"`
}

// Validate returns an error if the paper violates sink invariants.
func (p *Paper) Validate() error {
	if p.ID == "" {
		return Errorf(EINVALID, "paper ID required")
	}
	if p.Title == "" {
		return Errorf(EINVALID, "paper title required")
	}
	if p.Summary == "" {
		return Errorf(EINVALID, "paper summary required")
	}
	if len(p.Categories) != 1 {
		return Errorf(EINVALID, "paper must carry exactly one category")
	}
	for _, a := range p.Authors {
		if strings.TrimSpace(a) == "" {
			return Errorf(EINVALID, "paper author names must be non-empty")
		}
	}
	return nil
}

// PaperID derives the deterministic identity of a paper from its title
// and author list. Identical inputs always yield identical IDs, which
// is what lets downstream consumers deduplicate re-extracted content.
// MD5 is a content fingerprint here, not a security boundary.
func PaperID(title string, authors []string) string {
	sum := md5.Sum([]byte(title + strings.Join(authors, "")))
	return idPrefix + hex.EncodeToString(sum[:])
}

// PaperWriter persists a batch of papers to the record sink.
type PaperWriter interface {
	// WritePapers appends the papers to the sink in order. Callers
	// assemble the whole batch first; partial batches must not be
	// streamed.
	WritePapers(ctx context.Context, papers []*Paper) error
}
