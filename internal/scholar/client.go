// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scholar is the fetch adapter for the Semantic Scholar Graph API.
// It serializes calls through a rate limiter (~1 call/s by API contract) and
// classifies failures so the orchestrator can tell a transient outage from a
// hard error.
package scholar

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/zhanweicao/academic-abstract-collection/internal/httputil"
	"github.com/zhanweicao/academic-abstract-collection/pkg/types"
)

// apiBase is the Semantic Scholar Graph API base URL. Declared as a var so
// tests can substitute an httptest server.
var apiBase = "https://api.semanticscholar.org/graph/v1"

const (
	paperFields       = "paperId,title,abstract,authors,year,venue,citationCount"
	authorFields      = "authorId,name"
	authorPapersLimit = 1000
	authorSearchLimit = 3
	paperSearchLimit  = 15
)

// ErrTransient marks a fetch failure a later attempt might clear (network
// error, rate limiting after retries, server-side failure). The orchestrator
// retries these a bounded number of times per candidate.
var ErrTransient = errors.New("transient scholarly API failure")

// Candidate is an author worth evaluating: an identifier plus a display name.
type Candidate struct {
	AuthorID string
	Name     string
}

// Client is a rate-limited Semantic Scholar Graph API client.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	apiKey     string
	userAgent  string
}

// NewClient builds a client from configuration. FetchInterval spaces out
// consecutive API calls; the limiter admits one request per interval with no
// burst, so concurrent callers are serialized too.
func NewClient(cfg types.ScholarConfig) *Client {
	interval := cfg.FetchInterval
	if interval <= 0 {
		interval = DefaultFetchInterval
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
		apiKey:     cfg.APIKey,
		userAgent:  cfg.UserAgent,
	}
}

// DefaultFetchInterval spaces API calls slightly over one second, staying
// under the unauthenticated one-call-per-second contract.
const DefaultFetchInterval = 1100 * time.Millisecond

// get performs a rate-limited GET against an API path and returns the
// response. Non-2xx handling is left to the caller.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	reqURL := apiBase + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-api-key", c.apiKey)
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTransient, err)
	}
	return resp, nil
}

// classifyStatus turns a non-200 status into the appropriate error class.
func classifyStatus(op string, code int) error {
	if httputil.TransientStatus(code) {
		return fmt.Errorf("%w: %s returned HTTP %d", ErrTransient, op, code)
	}
	return fmt.Errorf("%s returned HTTP %d", op, code)
}
