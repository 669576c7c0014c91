package turntable

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestDownloadAll tests saving views with angle-based names and skipping
// failed downloads.
func TestDownloadAll(t *testing.T) {
	imageData := []byte("fake image data for testing")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(imageData)
	}))
	defer server.Close()

	downloader, err := NewDownloader(newTestLogger(t), DefaultDownloaderConfig())
	if err != nil {
		t.Fatalf("NewDownloader() unexpected error: %v", err)
	}

	results := []ViewResult{
		{Angle: 0, URL: server.URL + "/view0"},
		{Angle: 5, URL: server.URL + "/missing"},
		{Angle: 10, URL: server.URL + "/view10"},
	}

	dir := filepath.Join(t.TempDir(), "out")
	saved, err := downloader.DownloadAll(context.Background(), results, dir, "png")
	if err != nil {
		t.Fatalf("DownloadAll() unexpected error: %v", err)
	}

	// The 404 view is skipped, not fatal.
	if len(saved) != 2 {
		t.Fatalf("saved %d images, want 2", len(saved))
	}

	wantFiles := []string{"view_000deg.png", "view_010deg.png"}
	for i, img := range saved {
		if filepath.Base(img.Path) != wantFiles[i] {
			t.Errorf("saved[%d] = %q, want %q", i, filepath.Base(img.Path), wantFiles[i])
		}
		if img.Size != int64(len(imageData)) {
			t.Errorf("saved[%d].Size = %d, want %d", i, img.Size, len(imageData))
		}

		data, err := os.ReadFile(img.Path)
		if err != nil {
			t.Fatalf("failed to read saved file: %v", err)
		}
		if string(data) != string(imageData) {
			t.Errorf("saved file content does not match download")
		}
	}

	// Angles survive into the saved records.
	if saved[0].Angle != 0 || saved[1].Angle != 10 {
		t.Errorf("saved angles = %d, %d, want 0, 10", saved[0].Angle, saved[1].Angle)
	}
}

// TestDownloadAll_DefaultFormat tests that an empty format falls back to png.
func TestDownloadAll_DefaultFormat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer server.Close()

	downloader, err := NewDownloader(newTestLogger(t), DefaultDownloaderConfig())
	if err != nil {
		t.Fatalf("NewDownloader() unexpected error: %v", err)
	}

	dir := t.TempDir()
	saved, err := downloader.DownloadAll(context.Background(),
		[]ViewResult{{Angle: 355, URL: server.URL}}, dir, "")
	if err != nil {
		t.Fatalf("DownloadAll() unexpected error: %v", err)
	}
	if len(saved) != 1 || filepath.Base(saved[0].Path) != "view_355deg.png" {
		t.Errorf("saved = %+v, want view_355deg.png", saved)
	}
}

// TestDownloadAll_ContextCanceled tests that cancellation stops the loop.
func TestDownloadAll_ContextCanceled(t *testing.T) {
	downloader, err := NewDownloader(newTestLogger(t), DefaultDownloaderConfig())
	if err != nil {
		t.Fatalf("NewDownloader() unexpected error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	saved, err := downloader.DownloadAll(ctx,
		[]ViewResult{{Angle: 0, URL: "http://127.0.0.1:0/never"}}, t.TempDir(), "png")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("DownloadAll() error = %v, want context.Canceled", err)
	}
	if len(saved) != 0 {
		t.Errorf("saved %d images after cancellation, want 0", len(saved))
	}
}

// TestDownloadAll_Timeout tests that a hung server fails only that view.
func TestDownloadAll_Timeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/slow" {
			select {
			case <-release:
			case <-r.Context().Done():
			}
			return
		}
		w.Write([]byte("data"))
	}))
	defer server.Close()

	downloader, err := NewDownloader(newTestLogger(t), DownloaderConfig{Timeout: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("NewDownloader() unexpected error: %v", err)
	}

	results := []ViewResult{
		{Angle: 0, URL: server.URL + "/slow"},
		{Angle: 5, URL: server.URL + "/fast"},
	}

	saved, err := downloader.DownloadAll(context.Background(), results, t.TempDir(), "png")
	if err != nil {
		t.Fatalf("DownloadAll() unexpected error: %v", err)
	}
	if len(saved) != 1 || saved[0].Angle != 5 {
		t.Errorf("saved = %+v, want only the fast view", saved)
	}
}
