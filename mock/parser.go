package mock

import "github.com/mwalczyk/scholarmail"

var _ scholarmail.AlertParser = (*AlertParser)(nil)

// AlertParser is a mock implementation of scholarmail.AlertParser.
type AlertParser struct {
	ParseFn func(html string) ([]*scholarmail.Paper, error)
}

func (p *AlertParser) Parse(html string) ([]*scholarmail.Paper, error) {
	return p.ParseFn(html)
}
