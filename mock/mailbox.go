// Package mock provides mock implementations of scholarmail interfaces
// for testing.
package mock

import (
	"context"

	"github.com/mwalczyk/scholarmail"
)

var _ scholarmail.Mailbox = (*Mailbox)(nil)

// Mailbox is a mock implementation of scholarmail.Mailbox.
type Mailbox struct {
	SearchFn func(ctx context.Context, q scholarmail.MailQuery) ([]string, error)
	FetchFn  func(ctx context.Context, id string) ([]byte, error)
	CloseFn  func() error
}

func (m *Mailbox) Search(ctx context.Context, q scholarmail.MailQuery) ([]string, error) {
	return m.SearchFn(ctx, q)
}

func (m *Mailbox) Fetch(ctx context.Context, id string) ([]byte, error) {
	return m.FetchFn(ctx, id)
}

func (m *Mailbox) Close() error {
	if m.CloseFn == nil {
		return nil
	}
	return m.CloseFn()
}
