// Package webservice implements the enrichment fetchers on top of the public
// EBI and UniProt REST services.
package webservice

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"psibridge/internal/enrich"
)

const (
	// DefaultTimeout bounds a single request.
	DefaultTimeout = 30 * time.Second

	// MaxResponseSize is the maximum accepted response body (10MB).
	MaxResponseSize = 10 * 1024 * 1024
)

// Config holds the service endpoints and retry policy.
type Config struct {
	TaxonomyURL     string
	OLSURL          string
	UniProtURL      string
	Timeout         time.Duration
	MaxRetries      uint64
	InitialInterval time.Duration
	UserAgent       string
}

// DefaultConfig returns the public service endpoints.
func DefaultConfig() Config {
	return Config{
		TaxonomyURL:     "https://www.ebi.ac.uk/ena/taxonomy/rest",
		OLSURL:          "https://www.ebi.ac.uk/ols4",
		UniProtURL:      "https://rest.uniprot.org",
		Timeout:         DefaultTimeout,
		MaxRetries:      3,
		InitialInterval: 500 * time.Millisecond,
		UserAgent:       "psibridge/1.0",
	}
}

// StatusError is returned for unexpected HTTP statuses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d", e.URL, e.StatusCode)
}

// Client performs JSON GET requests with retries.
type Client struct {
	cfg  Config
	http *http.Client
}

// NewClient returns a client for cfg. Zero fields take their defaults.
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.InitialInterval <= 0 {
		cfg.InitialInterval = def.InitialInterval
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}}
}

// New returns the three fetchers sharing one client.
func New(cfg Config) enrich.Fetchers {
	c := NewClient(cfg)
	return enrich.Fetchers{
		Terms:    &OLS{client: c, base: cfg.OLSURL},
		Taxa:     &Taxonomy{client: c, base: cfg.TaxonomyURL},
		Proteins: &UniProt{client: c, base: cfg.UniProtURL},
	}
}

func (c *Client) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.InitialInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, c.cfg.MaxRetries), ctx)
}

// getJSON decodes the body of url into out. A 404 yields enrich.ErrNotFound;
// transport errors, 429 and 5xx are retried.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	op := func() error {
		body, err := c.get(ctx, url)
		if err != nil {
			return err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return backoff.Permanent(fmt.Errorf("decode %s: %w", url, err))
		}
		return nil
	}
	return backoff.Retry(op, c.policy(ctx))
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, backoff.Permanent(ctx.Err())
		}
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, backoff.Permanent(enrich.ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &StatusError{URL: url, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return nil, backoff.Permanent(&StatusError{URL: url, StatusCode: resp.StatusCode})
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", url, err)
	}
	if len(body) > MaxResponseSize {
		return nil, backoff.Permanent(fmt.Errorf("response body too large: %d bytes (max %d)", len(body), MaxResponseSize))
	}
	return body, nil
}
