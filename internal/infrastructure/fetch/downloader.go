package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"BrewPress/internal/domain"
	"BrewPress/internal/ports"
)

const (
	downloadTimeout = 30 * time.Second
	maxDownloadSize = 16 << 20 // images past 16 MiB are not cover material
)

// Downloader pulls remote image bytes with a bounded timeout.
type Downloader struct {
	client *http.Client
}

var _ ports.Downloader = (*Downloader)(nil)

// NewDownloader wires an HTTP client; nil gets the default bounded one.
func NewDownloader(client *http.Client) *Downloader {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}
	return &Downloader{client: client}
}

// Download fetches the URL and returns the body bytes.
func (d *Downloader) Download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "BrewPress/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w: %w", url, domain.ErrNetwork, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download %s: status %s: %w", url, resp.Status, domain.ErrNetwork)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w: %w", url, domain.ErrNetwork, err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("download %s: empty body: %w", url, domain.ErrNetwork)
	}
	return data, nil
}
