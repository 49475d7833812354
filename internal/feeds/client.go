package feeds

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	// DefaultTimeout bounds a whole feed download.
	DefaultTimeout = 60 * time.Second

	maxBodySize = 64 << 20
	userAgent   = "eventsync/1.0"
)

// Client downloads and decodes event feeds. A failed request is not
// retried; the caller re-runs the import.
type Client struct {
	httpClient *http.Client
}

// NewClient creates a feed client with the given timeout, or DefaultTimeout
// when timeout is zero.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// globalEnvelope is the top-level shape of the primary feed.
type globalEnvelope struct {
	Items *[]json.RawMessage `json:"items"`
}

// FetchGlobal downloads the primary feed and decodes its items.
func (c *Client) FetchGlobal(ctx context.Context, url string) ([]GlobalItem, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var envelope globalEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, &ParseError{URL: url, Err: err}
	}
	if envelope.Items == nil {
		return nil, &ParseError{URL: url, Err: errors.New(`missing "items" array`)}
	}

	return decodeEach[GlobalItem](ctx, url, *envelope.Items), nil
}

// FetchSplit downloads the secondary feed, a bare JSON array.
func (c *Client) FetchSplit(ctx context.Context, url string) ([]SplitArticle, error) {
	body, err := c.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &ParseError{URL: url, Err: fmt.Errorf("expected a JSON array: %w", err)}
	}
	if raw == nil {
		return nil, &ParseError{URL: url, Err: errors.New("expected a JSON array, got null")}
	}

	return decodeEach[SplitArticle](ctx, url, raw), nil
}

// decodeEach decodes records one by one so a single malformed record is
// dropped instead of failing the whole feed.
func decodeEach[T any](ctx context.Context, url string, raw []json.RawMessage) []T {
	items := make([]T, 0, len(raw))
	for i, r := range raw {
		var item T
		if err := json.Unmarshal(r, &item); err != nil {
			slog.WarnContext(ctx, "dropping undecodable feed record", "url", url, "index", i, "error", err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	if url == "" {
		return nil, &FetchError{URL: url, Err: errors.New("empty URL")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("request failed: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("false")) {
		return nil, &FetchError{URL: url, Err: errors.New("feed returned no data")}
	}

	slog.InfoContext(ctx, "feed downloaded", "url", url, "bytes", len(body), "duration", time.Since(start).Round(time.Millisecond))
	return trimmed, nil
}
