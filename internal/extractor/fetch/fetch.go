package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"epextract/internal/common/config"
)

// Fetcher issues single page fetches against the target site. No retries and
// no backoff: a failed fetch is terminal for its unit of work.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates a Fetcher using the configured user agent and timeout
func New(cfg *config.ExtractorConfig) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: cfg.FetchTimeout(),
		},
		userAgent: cfg.UserAgent,
	}
}

// Fetch performs a GET against url and returns the page body. Any non-200
// status is an error.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request for %s: %w", url, err)
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading body of %s: %w", url, err)
	}

	return string(body), nil
}
