package mock

import (
	"context"

	"github.com/mwalczyk/scholarmail"
)

var _ scholarmail.Enricher = (*Enricher)(nil)

// Enricher is a mock implementation of scholarmail.Enricher.
type Enricher struct {
	LookupFn func(ctx context.Context, query string) (*scholarmail.ScholarMatch, error)
}

func (e *Enricher) Lookup(ctx context.Context, query string) (*scholarmail.ScholarMatch, error) {
	return e.LookupFn(ctx, query)
}
