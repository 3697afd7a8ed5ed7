package mock

import (
	"context"

	"github.com/mwalczyk/scholarmail"
)

var _ scholarmail.PaperWriter = (*PaperWriter)(nil)

// PaperWriter is a mock implementation of scholarmail.PaperWriter.
type PaperWriter struct {
	WritePapersFn func(ctx context.Context, papers []*scholarmail.Paper) error
}

func (w *PaperWriter) WritePapers(ctx context.Context, papers []*scholarmail.Paper) error {
	return w.WritePapersFn(ctx, papers)
}
