// Package fetch downloads resolved images into the local media store and
// normalizes them for packaging.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lepinkainen/eikon/internal/config"
	"github.com/lepinkainen/eikon/internal/errors"
)

// downloadReferer accompanies image downloads; many hosts refuse
// refererless requests.
const downloadReferer = "https://duckduckgo.com/"

// HTTPDoer is an interface for making HTTP requests.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// Fetcher downloads images into the media store directory.
type Fetcher struct {
	mediaDir   string
	userAgent  string
	maxWidth   int
	maxHeight  int
	httpClient HTTPDoer
}

// NewFetcher creates a fetcher storing images under cfg.MediaDir().
func NewFetcher(cfg *config.Config, opts ...Option) *Fetcher {
	fetcher := &Fetcher{
		mediaDir:   cfg.MediaDir(),
		userAgent:  cfg.UserAgent,
		maxWidth:   cfg.MaxImageWidth,
		maxHeight:  cfg.MaxImageHeight,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}

	for _, opt := range opts {
		opt(fetcher)
	}

	return fetcher
}

// Option is a functional option for configuring the Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c HTTPDoer) Option {
	return func(fetcher *Fetcher) {
		if c != nil {
			fetcher.httpClient = c
		}
	}
}

// Fetch downloads the image at imageURL into the media store under
// filename and returns the stored path. Non-2xx responses and non-image
// content types fail without writing anything. The stored image is
// normalized in place afterwards; a normalization failure keeps the raw
// download and still counts as a successful fetch.
func (f *Fetcher) Fetch(ctx context.Context, imageURL, filename string) (string, error) {
	slog.Info("Downloading image", "url", imageURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Referer", downloadReferer)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", errors.NewNetworkError(fmt.Sprintf("image download failed: %v", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", errors.NewNetworkStatusError("unexpected status downloading image", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", errors.NewNetworkError(fmt.Sprintf("URL does not point to an image: %q", contentType))
	}

	if err := os.MkdirAll(f.mediaDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	localPath := filepath.Join(f.mediaDir, filename)
	file, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("failed to create image file: %w", err)
	}

	if _, err := io.Copy(file, resp.Body); err != nil {
		_ = file.Close()
		return "", errors.NewNetworkError(fmt.Sprintf("failed to write image file: %v", err))
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close image file: %w", err)
	}

	if err := f.normalize(localPath); err != nil {
		slog.Warn("Failed to normalize image, keeping raw download", "path", localPath, "error", err)
	}

	slog.Info("Downloaded image", "path", localPath)
	return localPath, nil
}
