package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// maxFetchSize bounds downloads of documents hosted outside the configured store
const maxFetchSize = 64 << 20

// HTTPFetcher downloads blobs referenced by absolute URL, used for documents
// whose URL does not belong to the active store.
type HTTPFetcher struct {
	client *http.Client
	logger *zap.Logger
}

func NewHTTPFetcher(timeout time.Duration, logger *zap.Logger) *HTTPFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPFetcher{
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	startTime := time.Now()
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("download failed: status=%d url=%s", resp.StatusCode, url)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFetchSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(data) > maxFetchSize {
		return nil, fmt.Errorf("download exceeds %d bytes: %s", maxFetchSize, url)
	}

	f.logger.Info("Remote file downloaded",
		zap.String("url", url),
		zap.Int("size_bytes", len(data)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return data, nil
}
