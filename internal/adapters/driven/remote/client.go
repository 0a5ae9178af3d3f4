package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-client/internal/core/domain"
	"github.com/custodia-labs/sercha-client/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-client/internal/logger"
)

// Ensure Client implements the API ports.
var (
	_ driven.SearchAPI     = (*Client)(nil)
	_ driven.SuggestionAPI = (*Client)(nil)
)

// API paths relative to the base URL.
const (
	searchPath      = "/api/v1/search"
	suggestionsPath = "/api/v1/suggestions"
)

// maxErrorBody bounds how much of a failed response is kept in RemoteError.
const maxErrorBody = 512

// defaultRetryAfter is used when a 429 carries no usable Retry-After header.
const defaultRetryAfter = 5 * time.Second

var log = logger.Scoped("remote")

// Config holds configuration for the API client.
type Config struct {
	// BaseURL is the API root, e.g. https://search.example.com.
	BaseURL string

	// Timeout bounds every request, so an unresolved call cannot stay
	// pending forever.
	Timeout time.Duration

	// RateLimit is the sustained number of requests per second.
	RateLimit float64

	// Burst is the token bucket size.
	Burst int
}

// ConfigFrom builds a client configuration from application settings.
func ConfigFrom(s domain.APISettings) Config {
	return Config{
		BaseURL:   s.BaseURL,
		Timeout:   s.Timeout,
		RateLimit: s.RateLimit,
		Burst:     s.Burst,
	}
}

// Client talks to the remote search API over HTTP.
type Client struct {
	http    *http.Client
	baseURL string
	limiter *rate.Limiter
	flight  singleflight.Group

	mu      sync.Mutex
	retryAt time.Time
}

// suggestionsResponse is the /suggestions payload.
type suggestionsResponse struct {
	Suggestions []domain.SuggestionItem `json:"suggestions"`
}

// searchRequest is the /search request body.
type searchRequest struct {
	Query   string           `json:"query"`
	Filters domain.FilterSet `json:"filters,omitempty"`
}

// NewClient creates an API client. Zero values fall back to the defaults.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = domain.DefaultAPIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = domain.DefaultAPITimeout
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = domain.DefaultAPIRateLimit
	}
	if cfg.Burst <= 0 {
		cfg.Burst = domain.DefaultAPIBurst
	}

	return &Client{
		http: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
	}
}

// GetSuggestions fetches typeahead suggestions. Callers asking for the same
// query and limit at the same time share one request; a caller whose context
// ends stops waiting without cancelling the shared request.
func (c *Client) GetSuggestions(ctx context.Context, query string, limit int) ([]domain.SuggestionItem, error) {
	key := query + "\x00" + strconv.Itoa(limit)

	ch := c.flight.DoChan(key, func() (any, error) {
		params := url.Values{}
		params.Set("q", query)
		if limit > 0 {
			params.Set("limit", strconv.Itoa(limit))
		}

		var resp suggestionsResponse
		if err := c.do(context.WithoutCancel(ctx), http.MethodGet, suggestionsPath+"?"+params.Encode(), nil, &resp); err != nil {
			return nil, err
		}
		return validSuggestions(resp.Suggestions), nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, fmt.Errorf("fetching suggestions for %q: %w", query, res.Err)
		}
		items := res.Val.([]domain.SuggestionItem)
		// Shared callers must not alias one slice.
		out := make([]domain.SuggestionItem, len(items))
		copy(out, items)
		return out, nil
	}
}

// Search runs a live search.
func (c *Client) Search(ctx context.Context, query string, filters domain.FilterSet) (*domain.SearchResponse, error) {
	body := searchRequest{Query: query, Filters: filters}

	var resp domain.SearchResponse
	if err := c.do(ctx, http.MethodPost, searchPath, body, &resp); err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	if resp.Results == nil {
		resp.Results = []domain.ResultItem{}
	}
	return &resp, nil
}

// do sends a JSON request and decodes a JSON response into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()
	log.Debug("%s %s -> %d (%s)", method, path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if resp.StatusCode == http.StatusTooManyRequests {
			c.backoff(resp.Header.Get("Retry-After"))
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &domain.RemoteError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(raw)),
		}
	}

	// Numbers stay json.Number so large IDs survive.
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wait blocks for any Retry-After backoff, then for a limiter token.
func (c *Client) wait(ctx context.Context) error {
	c.mu.Lock()
	retryAt := c.retryAt
	c.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	return c.limiter.Wait(ctx)
}

// backoff records a Retry-After value given in seconds.
func (c *Client) backoff(header string) {
	d := defaultRetryAfter
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs >= 0 {
		d = time.Duration(secs) * time.Second
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.retryAt = time.Now().Add(d)
	log.Warn("rate limited, backing off for %s", d)
}

// validSuggestions drops items with an unknown type.
func validSuggestions(items []domain.SuggestionItem) []domain.SuggestionItem {
	out := make([]domain.SuggestionItem, 0, len(items))
	for _, item := range items {
		if !item.Type.IsValid() {
			log.Debug("dropping suggestion %q with unknown type %q", item.Text, item.Type)
			continue
		}
		out = append(out, item)
	}
	return out
}
