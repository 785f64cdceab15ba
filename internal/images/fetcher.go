package images

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// Fetcher loads images from local files or URLs
type Fetcher struct {
	HTTPClient *http.Client
}

// NewFetcher creates a new image fetcher
func NewFetcher() *Fetcher {
	return &Fetcher{
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads src, which is a data URI, an http(s) URL or a file path.
func (f *Fetcher) Load(ctx context.Context, src string) (*Image, error) {
	switch {
	case strings.HasPrefix(src, "data:"):
		return ParseDataURI(src)
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return f.Download(ctx, src)
	default:
		return f.readFile(src)
	}
}

// Download fetches an image over HTTP
func (f *Fetcher) Download(ctx context.Context, imageURL string) (*Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	slog.Debug("Downloaded image", "url", imageURL, "size", len(data))
	return FromBytes(data)
}

func (f *Fetcher) readFile(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	return FromBytes(data)
}
