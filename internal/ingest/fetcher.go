package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// maxBodyBytes caps feed responses at 50 MB. The full active-satellite
// catalog is ~3 MB of text; anything larger is a misbehaving source.
const maxBodyBytes = 50 * 1024 * 1024

// Fetcher retrieves the current feed snapshot. The payload may be a
// structured record list or triplet text; the pipeline dispatches on shape.
type Fetcher interface {
	Fetch(ctx context.Context) ([]byte, error)
}

// HTTPFetcher retrieves raw element data over HTTP. Extra source URLs are
// fetched after the primary and concatenated; an extra source failing does
// not fail the fetch.
type HTTPFetcher struct {
	sourceURL  string
	extraURLs  []string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPFetcher creates a fetcher for the given source URL plus optional
// extra URLs.
func NewHTTPFetcher(sourceURL string, logger *slog.Logger, extraURLs ...string) *HTTPFetcher {
	return &HTTPFetcher{
		sourceURL: sourceURL,
		extraURLs: extraURLs,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SourceURL returns the configured primary source URL.
func (f *HTTPFetcher) SourceURL() string {
	return f.sourceURL
}

// Fetch performs HTTP GETs against the configured sources. A primary-source
// failure returns a *FetchError; extra-source failures are logged and skipped.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]byte, error) {
	data, err := f.fetchOne(ctx, f.sourceURL)
	if err != nil {
		return nil, &FetchError{URL: f.sourceURL, Err: err}
	}

	for _, url := range f.extraURLs {
		extra, err := f.fetchOne(ctx, url)
		if err != nil {
			f.logger.Warn("extra source fetch failed", "url", url, "error", err)
			continue
		}
		if len(data) > 0 && data[len(data)-1] != '\n' {
			data = append(data, '\n')
		}
		data = append(data, extra...)
	}

	return data, nil
}

func (f *HTTPFetcher) fetchOne(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	if len(body) > maxBodyBytes {
		return nil, fmt.Errorf("response exceeds %d byte limit", maxBodyBytes)
	}

	return body, nil
}
