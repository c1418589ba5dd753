// Package refreshhttp implements refresh.Refresher against the caching
// service's REST surface.
//
// The wire contract is thin: POST {base}/cache/{provider}/{kind} issues a
// force refresh, where 200 means the service applied it synchronously and
// 202 means it was queued; GET {base}/cache/{provider}/{kind}/pending lists
// pending updates with epoch-millisecond timestamps.
package refreshhttp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goliatone/go-cache-convergence/refresh"
)

// maxErrorBody caps how much of an error response body ends up in error
// messages.
const maxErrorBody = 512

// Config holds the HTTP client configuration.
type Config struct {
	// BaseURL is the caching service root, e.g. "http://clouddata:7002".
	BaseURL string

	// HTTPClient optionally overrides the http.Client used for requests.
	HTTPClient *http.Client

	// Logger optionally receives debug logs for each call. Nil disables them.
	Logger *slog.Logger
}

// Client talks to the remote caching service over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	log     *slog.Logger
}

// Interface assertion to ensure Client implements refresh.Refresher
var _ refresh.Refresher = (*Client)(nil)

// New creates a Client from the configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("refreshhttp: BaseURL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("refreshhttp: invalid BaseURL: %w", err)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    httpClient,
		log:     cfg.Logger,
	}, nil
}

// ForceRefresh POSTs the refresh request. A 200 response means the service
// applied the refresh synchronously; 202 means it was accepted for async
// processing.
func (c *Client) ForceRefresh(ctx context.Context, provider, kind string, fields map[string]string) (refresh.Result, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return refresh.Result{}, fmt.Errorf("encode force refresh request: %w", err)
	}

	endpoint := c.endpoint(provider, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return refresh.Result{}, fmt.Errorf("build force refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return refresh.Result{}, fmt.Errorf("force refresh %s/%s: %w", provider, kind, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		c.debug(ctx, "force refresh applied", provider, kind)
		return refresh.Result{Applied: true}, nil
	case http.StatusAccepted:
		c.debug(ctx, "force refresh queued", provider, kind)
		return refresh.Result{Applied: false}, nil
	default:
		return refresh.Result{}, fmt.Errorf("force refresh %s/%s: unexpected status %d: %s",
			provider, kind, resp.StatusCode, readErrorBody(resp.Body))
	}
}

// wirePendingUpdate is the on-the-wire shape of one pending update. The
// service reports timestamps as epoch milliseconds; a missing or zero
// processedTime means the request has not been processed.
type wirePendingUpdate struct {
	Details       map[string]string `json:"details"`
	ProcessedTime int64             `json:"processedTime,omitempty"`
	CacheTime     int64             `json:"cacheTime"`
}

// PendingUpdates GETs the service's pending-update records for the kind.
func (c *Client) PendingUpdates(ctx context.Context, provider, kind string) ([]refresh.PendingUpdate, error) {
	endpoint := c.endpoint(provider, kind) + "/pending"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build pending updates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pending updates %s/%s: %w", provider, kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pending updates %s/%s: unexpected status %d: %s",
			provider, kind, resp.StatusCode, readErrorBody(resp.Body))
	}

	var wire []wirePendingUpdate
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("decode pending updates %s/%s: %w", provider, kind, err)
	}

	updates := make([]refresh.PendingUpdate, 0, len(wire))
	for _, w := range wire {
		update := refresh.PendingUpdate{
			Details:  w.Details,
			CachedAt: time.UnixMilli(w.CacheTime),
		}
		if w.ProcessedTime > 0 {
			update.ProcessedAt = time.UnixMilli(w.ProcessedTime)
		}
		updates = append(updates, update)
	}

	c.debug(ctx, "fetched pending updates", provider, kind, "count", len(updates))
	return updates, nil
}

func (c *Client) endpoint(provider, kind string) string {
	return fmt.Sprintf("%s/cache/%s/%s", c.baseURL, url.PathEscape(provider), url.PathEscape(kind))
}

func (c *Client) debug(ctx context.Context, msg, provider, kind string, args ...any) {
	if c.log == nil {
		return
	}
	c.log.DebugContext(ctx, msg, append([]any{"provider", provider, "kind", kind}, args...)...)
}

func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, maxErrorBody))
	if err != nil || len(body) == 0 {
		return "<no body>"
	}
	return strings.TrimSpace(string(body))
}
