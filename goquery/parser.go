// Package goquery implements alert email parsing on top of the goquery
// HTML library. It is the core of the pipeline: a heuristic,
// structure-walking parser that recovers paper records from markup that
// drifts across alert template versions and locales.
package goquery

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/mwalczyk/scholarmail"
	"golang.org/x/net/html"
)

// categoryMarker is the footer sentence Google Scholar appends to every
// alert, naming the saved search that triggered it. The alert locale is
// fixed by the receiving account's language setting, so the marker is a
// literal.
const categoryMarker = "Google 学术搜索发送此邮件，是因为您关注了"

// abstractNoiseLimit is the rune count at or below which a block's text
// is treated as layout noise rather than a genuine abstract.
const abstractNoiseLimit = 20

// Ensure Parser implements scholarmail.AlertParser at compile time.
var _ scholarmail.AlertParser = (*Parser)(nil)

// Parser extracts paper records from Google Scholar alert emails.
// Alerts wrap each publication's clickable title in an h3; the author
// line and abstract snippet follow as loosely structured siblings.
type Parser struct{}

// NewParser creates a new Parser.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decomposes one alert email body into papers in document order.
// The document-level category is resolved once and stamped on every
// record. Headings with unexpected markup are skipped; only an
// unparseable document is an error.
func (p *Parser) Parse(body string) ([]*scholarmail.Paper, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, scholarmail.Errorf(scholarmail.EINVALID, "parse alert HTML: %v", err)
	}

	category := resolveCategory(doc)

	var papers []*scholarmail.Paper
	doc.Find("h3").Each(func(_ int, heading *goquery.Selection) {
		if paper := extractEntry(heading, category); paper != nil {
			papers = append(papers, paper)
		}
	})
	return papers, nil
}

// resolveCategory scans paragraph nodes for the footer sentence that
// names the alert's originating search. The first paragraph containing
// the marker wins; alerts carry at most one such footer. The linked
// term is usually a bracketed query label like "[cost model]"; exactly
// the outer bracket pair is stripped. No match silently keeps the
// default.
func resolveCategory(doc *goquery.Document) string {
	category := scholarmail.DefaultCategory
	doc.Find("p").EachWithBreak(func(_ int, par *goquery.Selection) bool {
		if !strings.Contains(par.Text(), categoryMarker) {
			return true
		}
		link := par.Find("a").First()
		if link.Length() == 0 {
			return false
		}
		text := scholarmail.NormalizeText(link.Text())
		if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && len(text) >= 2 {
			text = strings.TrimSpace(text[1 : len(text)-1])
		}
		if text != "" {
			category = text
		}
		return false
	})
	return category
}

// extractEntry builds one paper from an entry heading. A heading
// without a hyperlink, or whose link carries no visible text (an
// image-only link), produces no record and extraction continues with
// the next heading.
func extractEntry(heading *goquery.Selection, category string) *scholarmail.Paper {
	link := heading.Find("a").First()
	if link.Length() == 0 {
		return nil
	}
	title := scholarmail.NormalizeText(link.Text())
	if title == "" {
		return nil
	}
	url, _ := link.Attr("href")

	authorsLine, abstract := walkSiblings(heading)
	authors := splitAuthors(authorsLine)

	return &scholarmail.Paper{
		ID:         scholarmail.PaperID(title, authors),
		Title:      title,
		Authors:    authors,
		Summary:    scholarmail.ComposeSummary(title, authors, abstract),
		Categories: []string{category},
		PDF:        url,
		Abs:        url,
		Comment:    scholarmail.CommentTag,
		Source:     scholarmail.SourceName,
	}
}

// walkState tracks sibling-walk progress: the authors/venue slot fills
// first, then the abstract slot. An abstract-sized block arriving
// before any authors text is captured as authors; downstream consumers
// depend on this precedence.
type walkState int

const (
	seekAuthors walkState = iota
	seekAbstract
)

// walkSiblings recovers the authors/venue line and the abstract snippet
// from the nodes between an entry heading and the next entry boundary.
// Block containers contribute their normalized text; bare text nodes
// can only fill the authors slot. Another heading or an explicit
// separator terminates the walk without being consumed.
func walkSiblings(heading *goquery.Selection) (authorsLine, abstract string) {
	if len(heading.Nodes) == 0 {
		return "", ""
	}
	state := seekAuthors
	for n := heading.Nodes[0].NextSibling; n != nil; n = n.NextSibling {
		if isBoundary(n) {
			return authorsLine, abstract
		}
		switch {
		case n.Type == html.ElementNode && n.Data == "div":
			text := scholarmail.NormalizeText(nodeText(n))
			switch state {
			case seekAuthors:
				if text != "" {
					authorsLine = text
					state = seekAbstract
				}
			case seekAbstract:
				if utf8.RuneCountInString(text) > abstractNoiseLimit {
					abstract = text
					return authorsLine, abstract
				}
			}
		case n.Type == html.TextNode:
			if state == seekAuthors {
				if text := scholarmail.NormalizeText(n.Data); text != "" {
					authorsLine = text
					state = seekAbstract
				}
			}
		}
	}
	return authorsLine, abstract
}

// isBoundary reports whether a node marks the start of the next entry:
// another entry heading or an explicit separator rule.
func isBoundary(n *html.Node) bool {
	return n.Type == html.ElementNode && (n.Data == "h3" || n.Data == "hr")
}

// nodeText collects the visible text of a node subtree.
func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}

// splitAuthors parses the authors/venue line. Alerts format it as
// "Author1, Author2 - Journal, Year - Publisher": the portion before
// the first hyphen is the author list; without a hyphen the whole line
// is. Empty segments are discarded, order is preserved.
func splitAuthors(line string) []string {
	if i := strings.Index(line, "-"); i >= 0 {
		line = line[:i]
	}
	var authors []string
	for _, part := range strings.Split(line, ",") {
		if part = strings.TrimSpace(part); part != "" {
			authors = append(authors, part)
		}
	}
	return authors
}
