package main

import (
	"context"
	"io"
	"log/slog"
)

// Dependencies holds shared services and configuration for command
// execution.
type Dependencies struct {
	Ctx    context.Context
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Fetch FetchCmd `cmd:"" help:"Fetch Google Scholar alerts from an IMAP mailbox and append the extracted papers to a JSONL file"`
	Parse ParseCmd `cmd:"" help:"Parse local alert HTML files (or stdin) and append the extracted papers to a JSONL file"`
}

// FetchCmd is the "fetch" subcommand.
type FetchCmd struct {
	Output string `arg:"" optional:"" help:"Output JSONL path (default data/<today>.jsonl)"`

	Host    string `name:"imap-host" env:"IMAP_HOST" help:"IMAP host (default derived from the account domain)"`
	Port    int    `name:"imap-port" env:"IMAP_PORT" default:"993" help:"IMAP port"`
	Folder  string `name:"mailbox" env:"IMAP_MAILBOX" default:"INBOX" help:"Mailbox folder to search"`
	From    string `default:"scholaralerts-noreply@google.com" help:"Sender address to filter on"`
	Date    string `env:"EMAIL_DATE" help:"Fetch alerts for exactly this date (YYYY-MM-DD)"`
	Since   string `name:"since-date" env:"EMAIL_SINCE_DATE" help:"Fetch alerts on or after this date (YYYY-MM-DD)"`
	Before  string `name:"before-date" env:"EMAIL_BEFORE_DATE" help:"Fetch alerts before this date (YYYY-MM-DD)"`
	Days    int    `env:"EMAIL_SINCE_DAYS" default:"1" name:"since-days" help:"Trailing window in days when no date is given"`
	Workers int    `short:"c" default:"3" name:"concurrency" help:"Concurrent enrichment lookups"`
}

// ParseCmd is the "parse" subcommand.
type ParseCmd struct {
	Output string   `arg:"" help:"Output JSONL path"`
	Files  []string `arg:"" optional:"" help:"Alert HTML files to parse (stdin when omitted)"`
}
