// Package fetch downloads published roster PDFs into the local cache.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/farmaguardia/farmaguardia/internal/domain/regions"
	"github.com/farmaguardia/farmaguardia/pkg/storage"
)

const defaultTimeout = 30 * time.Second

// Fetcher downloads region rosters over HTTP and stores them in the cache.
type Fetcher struct {
	client *http.Client
	store  storage.Storage
	logger *slog.Logger
}

// NewFetcher creates a new roster fetcher backed by the given cache.
func NewFetcher(store storage.Storage, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		client: &http.Client{Timeout: defaultTimeout},
		store:  store,
		logger: logger,
	}
}

// WithClient overrides the HTTP client.
func (f *Fetcher) WithClient(client *http.Client) *Fetcher {
	f.client = client
	return f
}

// FetchRegion ensures a local copy of the region's roster and returns its
// path. With force false a cached copy short-circuits the download; force
// true always re-downloads.
func (f *Fetcher) FetchRegion(ctx context.Context, region regions.Region, force bool) (string, error) {
	if !force {
		if path, err := f.store.FilePath(ctx, string(region.ID)); err == nil {
			f.logger.Debug("using cached roster",
				slog.String("region", string(region.ID)),
				slog.String("path", path))
			return path, nil
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, region.SourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build roster request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download roster for %s: %w", region.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("roster download for %s returned %s", region.ID, resp.Status)
	}

	info, err := f.store.Put(ctx, string(region.ID), rosterFilename(region), resp.Header.Get("Content-Type"), resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to cache roster for %s: %w", region.ID, err)
	}

	f.logger.Info("roster downloaded",
		slog.String("region", string(region.ID)),
		slog.Int64("bytes", info.Size))

	return f.store.FilePath(ctx, string(region.ID))
}

func rosterFilename(region regions.Region) string {
	if u, err := url.Parse(region.SourceURL); err == nil {
		if name := path.Base(u.Path); name != "." && name != "/" {
			return name
		}
	}
	return string(region.ID) + ".pdf"
}
