// Package imaging provides input image validation, data URI encoding, and
// montage assembly for the turntable generator.
//
// Validation happens before any network traffic so that a bad input fails
// fast instead of burning API quota. Encoding produces the base64 data URI
// the generation API accepts in place of a public URL.
package imaging

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// Input validation errors
var (
	ErrImageNotFound     = errors.New("imaging: image file not found")
	ErrNotAFile          = errors.New("imaging: path is not a regular file")
	ErrUnsupportedFormat = errors.New("imaging: unsupported image format")
	ErrCorruptImage      = errors.New("imaging: cannot decode image")
	ErrEncodeFailed      = errors.New("imaging: failed to encode image")
)

// SupportedExtensions lists the input file extensions the generator accepts.
// Extensions are lowercase with the leading dot.
var SupportedExtensions = []string{".jpg", ".jpeg", ".png", ".webp", ".bmp", ".gif"}

// ImageInfo describes a validated input image.
type ImageInfo struct {
	// Path is the absolute or relative path as given by the caller.
	Path string

	// Filename is the base name of the file.
	Filename string

	// Format is the decoded format name (e.g. "png", "jpeg", "webp").
	Format string

	// Width and Height are the pixel dimensions from the image header.
	Width  int
	Height int

	// SizeBytes is the file size on disk.
	SizeBytes int64
}

// IsSupportedExtension reports whether the file extension (case-insensitive)
// is one of the accepted input formats.
// This is a pure function with no side effects.
func IsSupportedExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, supported := range SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}

// Validate checks that path refers to a readable, supported, decodable image
// and returns its metadata. Only the image header is decoded, so validation
// stays cheap even for large files.
//
// Errors wrap the package sentinels so callers can branch with errors.Is:
//
//	info, err := imaging.Validate("product.png")
//	if errors.Is(err, imaging.ErrUnsupportedFormat) { ... }
func Validate(path string) (*ImageInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrImageNotFound, path)
		}
		return nil, fmt.Errorf("imaging: stat %s: %w", path, err)
	}
	if stat.IsDir() {
		return nil, fmt.Errorf("%w: %s is a directory", ErrNotAFile, path)
	}
	if !stat.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s", ErrNotAFile, path)
	}

	if !IsSupportedExtension(path) {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			ErrUnsupportedFormat, filepath.Ext(path), strings.Join(SupportedExtensions, ", "))
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: open %s: %w", path, err)
	}
	defer file.Close()

	cfg, format, err := image.DecodeConfig(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptImage, path, err)
	}

	return &ImageInfo{
		Path:      path,
		Filename:  filepath.Base(path),
		Format:    format,
		Width:     cfg.Width,
		Height:    cfg.Height,
		SizeBytes: stat.Size(),
	}, nil
}
