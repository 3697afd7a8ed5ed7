package fetch_test

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/mwalczyk/scholarmail"
	"github.com/mwalczyk/scholarmail/fetch"
	"github.com/mwalczyk/scholarmail/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mocks bundles the collaborators wired into a test Fetcher.
type mocks struct {
	Mailbox *mock.Mailbox
	Parser  *mock.AlertParser
	Writer  *mock.PaperWriter
}

func newTestFetcher() (*fetch.Fetcher, *mocks) {
	m := &mocks{
		Mailbox: &mock.Mailbox{},
		Parser:  &mock.AlertParser{},
		Writer:  &mock.PaperWriter{},
	}
	f := &fetch.Fetcher{
		Mailbox:  m.Mailbox,
		HTMLPart: func(raw []byte) (string, error) { return string(raw), nil },
		Parser:   m.Parser,
		Papers:   m.Writer,
	}
	return f, m
}

func makePaper(title string) *scholarmail.Paper {
	authors := []string{"J. Smith"}
	return &scholarmail.Paper{
		ID:         scholarmail.PaperID(title, authors),
		Title:      title,
		Authors:    authors,
		Summary:    "Title: " + title + "\nAuthors: J. Smith\nAbstract: Abstract not available.",
		Categories: []string{scholarmail.DefaultCategory},
		PDF:        "https://scholar.google.com/scholar_url?url=" + title,
		Abs:        "https://scholar.google.com/scholar_url?url=" + title,
		Comment:    scholarmail.CommentTag,
		Source:     scholarmail.SourceName,
	}
}

func TestRun(t *testing.T) {
	t.Parallel()

	t.Run("accumulates papers across messages in order", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, q scholarmail.MailQuery) ([]string, error) {
			assert.Equal(t, "scholaralerts-noreply@google.com", q.From)
			return []string{"1", "2"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, id string) ([]byte, error) {
			return []byte("body-" + id), nil
		}
		m.Parser.ParseFn = func(html string) ([]*scholarmail.Paper, error) {
			switch html {
			case "body-1":
				return []*scholarmail.Paper{makePaper("First"), makePaper("Second")}, nil
			default:
				// The first paper repeats in the second alert.
				return []*scholarmail.Paper{makePaper("First"), makePaper("Third")}, nil
			}
		}
		var saved []*scholarmail.Paper
		m.Writer.WritePapersFn = func(_ context.Context, papers []*scholarmail.Paper) error {
			saved = papers
			return nil
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{From: "scholaralerts-noreply@google.com"})

		require.NoError(t, err)
		assert.Equal(t, 2, result.Messages)
		assert.Equal(t, 2, result.Parsed)
		assert.Equal(t, 3, result.Papers)
		assert.Equal(t, 3, result.Saved)
		require.Len(t, saved, 3)
		assert.Equal(t, "First", saved[0].Title)
		assert.Equal(t, "Second", saved[1].Title)
		assert.Equal(t, "Third", saved[2].Title)
	})

	t.Run("mailbox search failure is best effort", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return nil, errors.New("connection refused")
		}
		m.Writer.WritePapersFn = func(_ context.Context, _ []*scholarmail.Paper) error {
			t.Fatal("sink must not be touched")
			return nil
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, &fetch.Result{}, result)
	})

	t.Run("a failing message is skipped, not fatal", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return []string{"1", "2", "3"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, id string) ([]byte, error) {
			if id == "2" {
				return nil, errors.New("dropped connection")
			}
			return []byte("body-" + id), nil
		}
		m.Parser.ParseFn = func(html string) ([]*scholarmail.Paper, error) {
			return []*scholarmail.Paper{makePaper(html)}, nil
		}
		var saved []*scholarmail.Paper
		m.Writer.WritePapersFn = func(_ context.Context, papers []*scholarmail.Paper) error {
			saved = papers
			return nil
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Messages)
		assert.Equal(t, 2, result.Parsed)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, saved, 2)
		assert.Equal(t, "body-1", saved[0].Title)
		assert.Equal(t, "body-3", saved[1].Title)
	})

	t.Run("message without an HTML part is skipped", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		f.HTMLPart = func(raw []byte) (string, error) {
			if string(raw) == "body-1" {
				return "", scholarmail.Errorf(scholarmail.ENOTFOUND, "no text/html part")
			}
			return string(raw), nil
		}
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return []string{"1", "2"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, id string) ([]byte, error) {
			return []byte("body-" + id), nil
		}
		m.Parser.ParseFn = func(html string) ([]*scholarmail.Paper, error) {
			return []*scholarmail.Paper{makePaper(html)}, nil
		}
		var saved []*scholarmail.Paper
		m.Writer.WritePapersFn = func(_ context.Context, papers []*scholarmail.Paper) error {
			saved = papers
			return nil
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Parsed)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, saved, 1)
		assert.Equal(t, "body-2", saved[0].Title)
	})

	t.Run("no extracted papers skips the sink", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return []string{"1"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, id string) ([]byte, error) {
			return []byte("body"), nil
		}
		m.Parser.ParseFn = func(_ string) ([]*scholarmail.Paper, error) {
			return nil, nil
		}
		m.Writer.WritePapersFn = func(_ context.Context, _ []*scholarmail.Paper) error {
			t.Fatal("sink must not be touched")
			return nil
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Papers)
	})

	t.Run("sink failure propagates", func(t *testing.T) {
		t.Parallel()

		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return []string{"1"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, _ string) ([]byte, error) {
			return []byte("body"), nil
		}
		m.Parser.ParseFn = func(html string) ([]*scholarmail.Paper, error) {
			return []*scholarmail.Paper{makePaper(html)}, nil
		}
		m.Writer.WritePapersFn = func(_ context.Context, _ []*scholarmail.Paper) error {
			return errors.New("disk full")
		}

		_, err := f.Run(context.Background(), scholarmail.MailQuery{})

		assert.Error(t, err)
	})
}

func TestRun_Enrichment(t *testing.T) {
	t.Parallel()

	setup := func(titles ...string) (*fetch.Fetcher, *mocks, *[]*scholarmail.Paper) {
		f, m := newTestFetcher()
		m.Mailbox.SearchFn = func(_ context.Context, _ scholarmail.MailQuery) ([]string, error) {
			return []string{"1"}, nil
		}
		m.Mailbox.FetchFn = func(_ context.Context, _ string) ([]byte, error) {
			return []byte("body"), nil
		}
		m.Parser.ParseFn = func(_ string) ([]*scholarmail.Paper, error) {
			var papers []*scholarmail.Paper
			for _, title := range titles {
				papers = append(papers, makePaper(title))
			}
			return papers, nil
		}
		saved := &[]*scholarmail.Paper{}
		m.Writer.WritePapersFn = func(_ context.Context, papers []*scholarmail.Paper) error {
			*saved = papers
			return nil
		}
		return f, m, saved
	}

	t.Run("applies matches before the sink write", func(t *testing.T) {
		t.Parallel()

		f, _, saved := setup("First", "Second")
		f.Enricher = &mock.Enricher{
			LookupFn: func(_ context.Context, query string) (*scholarmail.ScholarMatch, error) {
				if query == "First" {
					return &scholarmail.ScholarMatch{
						Snippet:         "A resolved abstract snippet for the first paper in the batch.",
						PublicationInfo: "Journal of AI, 2024",
						Link:            "https://example.org/first",
					}, nil
				}
				return nil, nil
			},
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 1, result.Enriched)
		require.Len(t, *saved, 2)
		first := (*saved)[0]
		assert.Equal(t, "A resolved abstract snippet for the first paper in the batch.", first.Summary)
		assert.Equal(t, scholarmail.CommentTag+" | Journal of AI, 2024", first.Comment)
		assert.Equal(t, "https://example.org/first", first.PDF)
		// The unmatched paper passes through untouched.
		assert.Equal(t, makePaper("Second"), (*saved)[1])
	})

	t.Run("a failed lookup keeps the record in place", func(t *testing.T) {
		t.Parallel()

		f, _, saved := setup("First", "Second", "Third")
		f.Enricher = &mock.Enricher{
			LookupFn: func(_ context.Context, query string) (*scholarmail.ScholarMatch, error) {
				if query == "Second" {
					return nil, errors.New("quota exceeded")
				}
				return nil, nil
			},
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Enriched)
		require.Len(t, *saved, 3)
		for i, title := range []string{"First", "Second", "Third"} {
			assert.Equal(t, title, (*saved)[i].Title)
		}
	})

	t.Run("preserves order under concurrency", func(t *testing.T) {
		t.Parallel()

		var titles []string
		for i := 0; i < 12; i++ {
			titles = append(titles, fmt.Sprintf("Paper Number %d", i))
		}
		f, _, saved := setup(titles...)
		f.Concurrency = 4
		var calls atomic.Int32
		f.Enricher = &mock.Enricher{
			LookupFn: func(_ context.Context, query string) (*scholarmail.ScholarMatch, error) {
				calls.Add(1)
				return &scholarmail.ScholarMatch{Snippet: "Snippet for " + query + " long enough to replace a fallback."}, nil
			},
		}

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, int32(12), calls.Load())
		assert.Equal(t, 12, result.Enriched)
		require.Len(t, *saved, 12)
		for i, p := range *saved {
			assert.Equal(t, fmt.Sprintf("Paper Number %d", i), p.Title)
			assert.Equal(t, "Snippet for "+p.Title+" long enough to replace a fallback.", p.Summary)
		}
	})

	t.Run("nil enricher skips the pass", func(t *testing.T) {
		t.Parallel()

		f, _, saved := setup("First")
		f.Enricher = nil

		result, err := f.Run(context.Background(), scholarmail.MailQuery{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Enriched)
		assert.Equal(t, makePaper("First"), (*saved)[0])
	})
}
