// Package fetch orchestrates the alert pipeline: mailbox retrieval,
// per-message parsing, optional enrichment, and sink persistence.
package fetch

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mwalczyk/scholarmail"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Fetcher runs one batch of the alert pipeline.
type Fetcher struct {
	Mailbox  scholarmail.Mailbox
	HTMLPart scholarmail.BodyConverter
	Parser   scholarmail.AlertParser
	Papers   scholarmail.PaperWriter

	// Enricher is optional; nil disables the enrichment pass and
	// records pass through unmodified.
	Enricher scholarmail.Enricher

	// Limiter paces enrichment lookups. Optional.
	Limiter *rate.Limiter

	// Concurrency bounds parallel enrichment lookups. Defaults to 1.
	Concurrency int

	// Logger receives run diagnostics. Optional.
	Logger *slog.Logger
}

// Result summarizes one run.
type Result struct {
	Messages int // messages matching the query
	Parsed   int // messages successfully parsed
	Papers   int // unique papers extracted
	Enriched int // papers updated by the enrichment pass
	Saved    int // papers appended to the sink
	Failed   int // messages skipped due to fetch or parse failures
}

// Run executes the pipeline for one query window. Mailbox failures are
// logged and produce a partial (possibly empty) result rather than an
// error: the surrounding pipeline keeps consuming whatever was
// previously persisted. Only a sink write failure propagates, since it
// means assembled records were lost.
func (f *Fetcher) Run(ctx context.Context, q scholarmail.MailQuery) (*Result, error) {
	logger := f.logger().With("run", uuid.NewString())
	result := &Result{}

	ids, err := f.Mailbox.Search(ctx, q)
	if err != nil {
		logger.Error("mailbox search failed", "from", q.From, "err", err)
		return result, nil
	}
	result.Messages = len(ids)
	logger.Info("mailbox searched", "from", q.From, "messages", len(ids))

	seen := make(map[string]bool)
	var papers []*scholarmail.Paper
	for _, id := range ids {
		raw, err := f.Mailbox.Fetch(ctx, id)
		if err != nil {
			logger.Error("fetch message failed", "id", id, "err", err)
			result.Failed++
			continue
		}
		body, err := f.HTMLPart(raw)
		if err != nil {
			logger.Warn("message has no usable HTML body", "id", id, "err", err)
			result.Failed++
			continue
		}
		extracted, err := f.Parser.Parse(body)
		if err != nil {
			logger.Error("parse message failed", "id", id, "err", err)
			result.Failed++
			continue
		}
		result.Parsed++
		logger.Info("message parsed", "id", id, "papers", len(extracted))

		// The same paper often appears in several alerts of one
		// batch; the first occurrence wins and order is kept.
		for _, p := range extracted {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			papers = append(papers, p)
		}
	}
	result.Papers = len(papers)

	if len(papers) == 0 {
		logger.Info("no papers extracted")
		return result, nil
	}

	if f.Enricher != nil {
		result.Enriched = f.enrich(ctx, logger, papers)
	}

	if err := f.Papers.WritePapers(ctx, papers); err != nil {
		return result, err
	}
	result.Saved = len(papers)
	logger.Info("papers saved", "count", len(papers))
	return result, nil
}

// enrich applies the lookup to each paper independently. Order is
// preserved by index, not completion; a failed or empty lookup leaves
// its paper unchanged. Returns the number of papers updated.
func (f *Fetcher) enrich(ctx context.Context, logger *slog.Logger, papers []*scholarmail.Paper) int {
	concurrency := f.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	updated := make([]bool, len(papers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i, p := range papers {
		i, p := i, p
		g.Go(func() error {
			if f.Limiter != nil {
				if err := f.Limiter.Wait(gctx); err != nil {
					return nil
				}
			}
			match, err := f.Enricher.Lookup(gctx, p.Title)
			if err != nil {
				logger.Warn("enrichment failed", "title", p.Title, "err", err)
				return nil
			}
			if match == nil {
				return nil
			}
			p.ApplyMatch(match)
			updated[i] = true
			return nil
		})
	}
	_ = g.Wait()

	count := 0
	for _, u := range updated {
		if u {
			count++
		}
	}
	logger.Info("enrichment pass finished", "papers", len(papers), "enriched", count)
	return count
}

func (f *Fetcher) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}
	return slog.Default()
}
