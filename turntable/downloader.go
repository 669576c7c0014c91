// Package turntable result download.
//
// downloader.go implements the Downloader molecule that fetches generated
// views from their provider URLs and writes angle-named files. Unlike
// generation, download tolerates per-file failure: the images still exist
// remotely and can be re-fetched, so one bad download should not discard an
// otherwise complete run.
package turntable

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"turntable/logging"

	"go.uber.org/zap"
)

// DownloaderConfig holds configuration for the Downloader.
type DownloaderConfig struct {
	// Timeout bounds each individual file download.
	// Default: 30 seconds.
	Timeout time.Duration

	// HTTPClient is the HTTP client for downloads (optional).
	// If nil, a default client is created.
	HTTPClient *http.Client
}

// DefaultDownloaderConfig returns sensible defaults for fetching views.
func DefaultDownloaderConfig() DownloaderConfig {
	return DownloaderConfig{
		Timeout: 30 * time.Second,
	}
}

// Downloader fetches generated views and saves them with angle-based names.
//
// Thread Safety: Downloader is safe for concurrent use, though turntable
// runs download sequentially in angle order.
type Downloader struct {
	client *http.Client
	logger *logging.Logger
	config DownloaderConfig
}

// NewDownloader creates a view downloader.
func NewDownloader(logger *logging.Logger, config DownloaderConfig) (*Downloader, error) {
	if logger == nil {
		return nil, fmt.Errorf("turntable: logger cannot be nil")
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultDownloaderConfig().Timeout
	}

	client := config.HTTPClient
	if client == nil {
		client = &http.Client{}
	}

	return &Downloader{
		client: client,
		logger: logger.Named("downloader"),
		config: config,
	}, nil
}

// DownloadAll fetches every view into dir as view_<angle>deg.<format>, with
// the angle zero-padded to three digits. A failed download is logged and
// skipped; the returned sequence holds only the views that were saved.
//
// Context cancellation stops the loop and returns what was saved so far
// along with the context error.
func (d *Downloader) DownloadAll(ctx context.Context, results []ViewResult, dir, format string) ([]SavedImage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("turntable: failed to create output directory: %w", err)
	}
	if format == "" {
		format = "png"
	}

	d.logger.Info("downloading generated views",
		zap.Int("total", len(results)),
		zap.String("dir", dir))

	saved := make([]SavedImage, 0, len(results))
	for _, result := range results {
		select {
		case <-ctx.Done():
			return saved, ctx.Err()
		default:
		}

		filename := fmt.Sprintf("view_%03ddeg.%s", result.Angle, format)
		path := filepath.Join(dir, filename)

		size, err := d.downloadOne(ctx, result.URL, path)
		if err != nil {
			d.logger.Warn("download failed, skipping view",
				zap.Int("angle", result.Angle),
				zap.Error(err))
			continue
		}

		d.logger.Debug("saved view",
			zap.String("file", filename),
			zap.Int64("size_bytes", size))
		saved = append(saved, SavedImage{Angle: result.Angle, Path: path, Size: size})
	}

	d.logger.Info("download complete",
		zap.Int("saved", len(saved)),
		zap.Int("failed", len(results)-len(saved)))
	return saved, nil
}

// downloadOne fetches one URL to path under the per-file timeout.
func (d *Downloader) downloadOne(ctx context.Context, url, path string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("turntable: failed to create download request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("turntable: failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("turntable: download failed with status %d", resp.StatusCode)
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("turntable: failed to create image file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, resp.Body)
	if err != nil {
		os.Remove(path) // drop the partial file
		return 0, fmt.Errorf("turntable: failed to write image: %w", err)
	}
	return size, nil
}
