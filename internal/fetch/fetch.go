// Package fetch downloads segmentation network weights into the local
// cache, validating size and retrying transient failures.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/model"
)

// sourceURLs lists the per-variant weight source(s). The large variants
// (u2net, u2net_human_seg) are split across 4 parts in the upstream repo
// and concatenated in order into the single cache file; the small variant
// (u2netp) is a single part.
var sourceURLs = map[config.ModelVariant][]string{
	config.VariantU2Net: {
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2aa",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2ab",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2ac",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2ad",
	},
	config.VariantU2NetHumanSeg: {
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2haa",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2hab",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2hac",
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2had",
	},
	config.VariantU2NetP: {
		"https://github.com/nadermx/backgroundremover/raw/main/models/u2netp.pth",
	},
}

// Fetcher downloads and caches model weights with retry and backoff.
type Fetcher struct {
	client      *http.Client
	maxRetries  int
	retryDelay  time.Duration
	minFileSize int64
}

// NewFetcher builds a Fetcher with production defaults: 3 attempts,
// exponential backoff starting at 2s, and a 60s per-request timeout
// matching the reference implementation's requests.get(timeout=60).
func NewFetcher() *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: 60 * time.Second},
		maxRetries:  3,
		retryDelay:  2 * time.Second,
		minFileSize: 1000,
	}
}

// Ensure makes sure the given variant's weights are present at their
// resolved cache path, downloading them if missing. It returns the path.
func (f *Fetcher) Ensure(ctx context.Context, variant config.ModelVariant) (string, error) {
	path, err := model.CachePath(variant)
	if err != nil {
		return "", fmt.Errorf("%w: resolving cache path: %v", errs.ModelAcquisition, err)
	}

	if fi, err := os.Stat(path); err == nil && fi.Size() >= f.minFileSize {
		return path, nil
	}

	urls, ok := sourceURLs[variant]
	if !ok {
		return "", fmt.Errorf("%w: unknown model variant %q", errs.ModelAcquisition, variant)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("%w: creating cache dir: %v", errs.ModelAcquisition, err)
	}

	expected := model.ExpectedSize(variant)

	var lastErr error
	for attempt := 1; attempt <= f.maxRetries; attempt++ {
		if err := f.download(ctx, urls, path); err != nil {
			lastErr = err
			os.Remove(path)
			if attempt < f.maxRetries {
				select {
				case <-ctx.Done():
					return "", ctx.Err()
				case <-time.After(f.retryDelay * time.Duration(1<<uint(attempt-1))):
				}
			}
			continue
		}

		fi, err := os.Stat(path)
		if err != nil {
			lastErr = err
			continue
		}
		if fi.Size() < f.minFileSize || fi.Size() < expected/2 {
			os.Remove(path)
			lastErr = fmt.Errorf("downloaded weights are truncated: got %d bytes, expected ~%d", fi.Size(), expected)
			continue
		}
		return path, nil
	}

	return "", fmt.Errorf("%w: %v", errs.ModelAcquisition, lastErr)
}

// download streams each part URL in order into a single output file.
func (f *Fetcher) download(ctx context.Context, urls []string, path string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	for _, url := range urls {
		if err := f.downloadPart(ctx, url, out); err != nil {
			return err
		}
	}
	return nil
}

func (f *Fetcher) downloadPart(ctx context.Context, url string, dst io.Writer) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "silhouette-weight-fetcher/1.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status fetching %s: %s", url, resp.Status)
	}

	const maxPartSize = 500 * 1024 * 1024
	limited := io.LimitReader(resp.Body, maxPartSize+1)
	written, err := io.Copy(dst, limited)
	if err != nil {
		return err
	}
	if written > maxPartSize {
		return fmt.Errorf("part at %s exceeded size limit", url)
	}
	return nil
}
