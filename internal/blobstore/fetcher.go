package blobstore

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultImageTimeout bounds a single image download.
	DefaultImageTimeout = 30 * time.Second

	maxImageSize = 20 << 20
)

// Fetcher downloads remote images.
type Fetcher struct {
	httpClient *http.Client
}

// NewFetcher creates a fetcher with the given timeout, or
// DefaultImageTimeout when timeout is zero.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = DefaultImageTimeout
	}
	return &Fetcher{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Fetch downloads url and returns its bytes and content type. Responses
// that are not images are rejected.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("User-Agent", "eventsync/1.0")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch image %s: status %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageSize+1))
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", url, err)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("fetch image %s: empty body", url)
	}
	if len(data) > maxImageSize {
		return nil, "", fmt.Errorf("fetch image %s: larger than %d bytes", url, maxImageSize)
	}

	contentType := mediaType(resp.Header.Get("Content-Type"))
	if !strings.HasPrefix(contentType, "image/") {
		contentType = mediaType(http.DetectContentType(data))
	}
	if !strings.HasPrefix(contentType, "image/") {
		return nil, "", fmt.Errorf("fetch image %s: unexpected content type %q", url, contentType)
	}
	return data, contentType, nil
}

func mediaType(header string) string {
	mt, _, err := mime.ParseMediaType(header)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(header))
	}
	return mt
}
