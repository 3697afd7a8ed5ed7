// Package serpapi provides a scholarmail.Enricher backed by the
// SerpApi Google Scholar engine.
package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/mwalczyk/scholarmail"
)

// DefaultBaseURL is the SerpApi search endpoint.
const DefaultBaseURL = "https://serpapi.com/search.json"

// DefaultTimeout bounds one lookup request.
const DefaultTimeout = 15 * time.Second

// Ensure Enricher implements scholarmail.Enricher at compile time.
var _ scholarmail.Enricher = (*Enricher)(nil)

// Enricher looks up paper titles on Google Scholar via SerpApi. The
// top organic result for an exact title query is trusted as the match.
type Enricher struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

// Option configures an Enricher.
type Option func(*Enricher)

// WithBaseURL overrides the SerpApi endpoint. Used by tests.
func WithBaseURL(u string) Option {
	return func(e *Enricher) {
		e.baseURL = u
	}
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Enricher) {
		e.client = c
	}
}

// NewEnricher creates an Enricher with the given API key.
func NewEnricher(apiKey string, opts ...Option) *Enricher {
	e := &Enricher{
		apiKey:  apiKey,
		baseURL: DefaultBaseURL,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// response mirrors the subset of the SerpApi payload that is read.
type response struct {
	Error          string `json:"error"`
	OrganicResults []struct {
		Snippet         string `json:"snippet"`
		Link            string `json:"link"`
		PublicationInfo struct {
			Summary string `json:"summary"`
		} `json:"publication_info"`
	} `json:"organic_results"`
}

// Lookup returns the top Google Scholar result for the query, or
// (nil, nil) when the index has no match.
func (e *Enricher) Lookup(ctx context.Context, query string) (*scholarmail.ScholarMatch, error) {
	if query == "" {
		return nil, nil
	}

	params := url.Values{
		"api_key": {e.apiKey},
		"engine":  {"google_scholar"},
		"q":       {query},
		"hl":      {"en"}, // English results carry the standard fields
		"num":     {"1"},  // only the top result is used
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("SerpApi HTTP %d", resp.StatusCode)
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode SerpApi response: %w", err)
	}
	if body.Error != "" {
		return nil, scholarmail.Errorf(scholarmail.EINTERNAL, "SerpApi: %s", body.Error)
	}
	if len(body.OrganicResults) == 0 {
		return nil, nil
	}

	best := body.OrganicResults[0]
	return &scholarmail.ScholarMatch{
		Snippet:         best.Snippet,
		PublicationInfo: best.PublicationInfo.Summary,
		Link:            best.Link,
	}, nil
}
