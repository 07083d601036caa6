// Package download fetches media URLs into local files.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/jscyril/mp3miner/api"
	playerrors "github.com/jscyril/mp3miner/pkg/errors"
	"github.com/spf13/afero"
)

// Ensure HTTPDownloader implements Downloader interface at compile time
var _ api.Downloader = (*HTTPDownloader)(nil)

// HTTPDownloader retrieves media with plain HTTP GET requests.
//
// The body is streamed into a temporary ".part" file next to the
// destination and renamed into place only after the copy succeeded, so a
// partially written file never appears under the destination path.
type HTTPDownloader struct {
	fs         afero.Fs
	httpClient *http.Client
	userAgent  string
}

// Option configures an HTTPDownloader
type Option func(*HTTPDownloader)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(c *http.Client) Option {
	return func(d *HTTPDownloader) {
		d.httpClient = c
	}
}

// WithUserAgent sets the User-Agent header sent with every request
func WithUserAgent(ua string) Option {
	return func(d *HTTPDownloader) {
		d.userAgent = ua
	}
}

// WithTimeout sets the overall request timeout
func WithTimeout(timeout time.Duration) Option {
	return func(d *HTTPDownloader) {
		d.httpClient.Timeout = timeout
	}
}

// NewHTTPDownloader creates a downloader writing to fs
func NewHTTPDownloader(fs afero.Fs, opts ...Option) *HTTPDownloader {
	d := &HTTPDownloader{
		fs:         fs,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		userAgent:  "mp3miner",
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Fetch downloads url into dest. Transport and HTTP status failures are
// reported as *errors.NetworkError.
func (d *HTTPDownloader) Fetch(ctx context.Context, url api.MediaURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, string(url), nil)
	if err != nil {
		return &playerrors.NetworkError{URL: string(url), Err: err}
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return &playerrors.NetworkError{URL: string(url), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &playerrors.NetworkError{
			URL:        string(url),
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	part, err := afero.TempFile(d.fs, filepath.Dir(dest), filepath.Base(dest)+".*.part")
	if err != nil {
		return fmt.Errorf("create partial file: %w", err)
	}
	partName := part.Name()

	if _, err := io.Copy(part, resp.Body); err != nil {
		part.Close()
		d.fs.Remove(partName)
		return &playerrors.NetworkError{URL: string(url), Err: err}
	}

	if err := part.Close(); err != nil {
		d.fs.Remove(partName)
		return fmt.Errorf("close partial file: %w", err)
	}

	if err := d.fs.Rename(partName, dest); err != nil {
		d.fs.Remove(partName)
		return fmt.Errorf("move download into place: %w", err)
	}

	return nil
}
