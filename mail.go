package scholarmail

import (
	"context"
	"time"
)

// MailQuery filters mailbox messages by sender and calendar-date
// window. Since is inclusive and Before exclusive, both by date rather
// than time of day, matching IMAP SEARCH semantics. A zero time leaves
// that bound open.
type MailQuery struct {
	From   string
	Since  time.Time
	Before time.Time
}

// Mailbox lists and retrieves alert messages.
type Mailbox interface {
	// Search returns opaque message identifiers matching the query.
	Search(ctx context.Context, q MailQuery) ([]string, error)

	// Fetch returns the raw message bytes for one identifier.
	Fetch(ctx context.Context, id string) ([]byte, error)

	// Close releases the mailbox connection.
	Close() error
}

// BodyConverter extracts the HTML-alternative body from a raw message.
// It is the conversion step between the mail-retrieval collaborator and
// the parser; the core never sees MIME structure.
type BodyConverter func(raw []byte) (string, error)
