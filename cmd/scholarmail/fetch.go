package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mwalczyk/scholarmail"
	"github.com/mwalczyk/scholarmail/fetch"
	"github.com/mwalczyk/scholarmail/fs"
	"github.com/mwalczyk/scholarmail/goquery"
	"github.com/mwalczyk/scholarmail/imap"
	"github.com/mwalczyk/scholarmail/serpapi"
	"golang.org/x/time/rate"
)

// Run executes the fetch command.
func (c *FetchCmd) Run(deps *Dependencies) error {
	account := os.Getenv("EMAIL_ACCOUNT")
	password := os.Getenv("EMAIL_APP_PASSWORD")
	if account == "" || password == "" {
		fmt.Fprintln(deps.Stderr, "Hint: Set EMAIL_ACCOUNT and EMAIL_APP_PASSWORD (an app password, not the account password)")
		return scholarmail.Errorf(scholarmail.EINVALID, "EMAIL_ACCOUNT and EMAIL_APP_PASSWORD must be set")
	}

	date, err := parseDate(c.Date)
	if err != nil {
		return err
	}
	since, err := parseDate(c.Since)
	if err != nil {
		return err
	}
	before, err := parseDate(c.Before)
	if err != nil {
		return err
	}
	since, before = fetch.ResolveWindow(date, since, before, c.Days, time.Now())

	output := c.Output
	if output == "" {
		output = filepath.Join("data", time.Now().UTC().Format("2006-01-02")+".jsonl")
	}

	host := imap.ResolveHost(account, c.Host)
	mailbox, err := imap.Dial(host, c.Port, account, password, c.Folder)
	if err != nil {
		// The pipeline is best effort: an unreachable mailbox or a
		// rejected login produces an empty batch, not a failed run. The
		// surrounding automation keeps consuming whatever was
		// previously persisted.
		deps.Logger.Error("mailbox unavailable", "host", host, "err", err)
		fmt.Fprintf(deps.Stdout, "Mailbox unavailable, nothing fetched\n")
		return nil
	}
	defer mailbox.Close()

	var enricher scholarmail.Enricher
	if key := os.Getenv("SERP_API_KEY"); key != "" {
		enricher = serpapi.NewEnricher(key)
	} else {
		deps.Logger.Info("SERP_API_KEY not set, skipping enrichment")
	}

	fetcher := &fetch.Fetcher{
		Mailbox:     mailbox,
		HTMLPart:    imap.HTMLPart,
		Parser:      goquery.NewParser(),
		Papers:      fs.NewWriter(output),
		Enricher:    enricher,
		Limiter:     rate.NewLimiter(rate.Limit(1), 1),
		Concurrency: c.Workers,
		Logger:      deps.Logger,
	}

	result, err := fetcher.Run(deps.Ctx, scholarmail.MailQuery{
		From:   c.From,
		Since:  since,
		Before: before,
	})
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Fetched %d messages, parsed %d, saved %d papers (%d enriched) to %s\n",
		result.Messages, result.Parsed, result.Saved, result.Enriched, output)
	return nil
}

// parseDate parses an optional YYYY-MM-DD flag value; empty means unset.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, scholarmail.Errorf(scholarmail.EINVALID, "invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}
