package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mwalczyk/scholarmail"
	"github.com/mwalczyk/scholarmail/fs"
	"github.com/mwalczyk/scholarmail/goquery"
)

// Run executes the parse command.
func (c *ParseCmd) Run(deps *Dependencies) error {
	parser := goquery.NewParser()

	var bodies []string
	if len(c.Files) == 0 {
		raw, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		bodies = append(bodies, string(raw))
	}
	for _, name := range c.Files {
		raw, err := os.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
		bodies = append(bodies, string(raw))
	}

	seen := make(map[string]bool)
	var papers []*scholarmail.Paper
	for i, body := range bodies {
		extracted, err := parser.Parse(body)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
			return err
		}
		deps.Logger.Info("document parsed", "index", i, "papers", len(extracted))
		for _, p := range extracted {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			papers = append(papers, p)
		}
	}

	if len(papers) == 0 {
		fmt.Fprintln(deps.Stdout, "No papers found")
		return nil
	}

	if err := fs.NewWriter(c.Output).WritePapers(deps.Ctx, papers); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", scholarmail.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved %d papers to %s\n", len(papers), c.Output)
	return nil
}
