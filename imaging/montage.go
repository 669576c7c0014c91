package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"
)

// Montage errors
var (
	ErrNoImages = errors.New("imaging: no images for montage")
)

// MontageOptions controls contact-sheet layout.
type MontageOptions struct {
	// Columns is the maximum number of tiles per row.
	Columns int

	// TileWidth is the width each view is scaled to. Height follows the
	// aspect ratio of the first image.
	TileWidth int
}

// DefaultMontageOptions returns the standard 12-column contact sheet layout.
func DefaultMontageOptions() MontageOptions {
	return MontageOptions{
		Columns:   12,
		TileWidth: 256,
	}
}

// Montage assembles the images at paths into a single PNG contact sheet at
// outPath. Tiles are laid out row-major in the given order, so a turntable
// sequence reads left to right as increasing angle.
//
// Any unreadable input aborts the montage; callers treat this as a warning
// since the individual views are already saved.
func Montage(paths []string, outPath string, opts MontageOptions) error {
	if len(paths) == 0 {
		return ErrNoImages
	}
	if opts.Columns <= 0 || opts.TileWidth <= 0 {
		opts = DefaultMontageOptions()
	}

	first, err := decodeImageFile(paths[0])
	if err != nil {
		return err
	}

	// Tile height follows the first image's aspect ratio; all views from a
	// single run share dimensions.
	bounds := first.Bounds()
	tileW := opts.TileWidth
	tileH := bounds.Dy() * tileW / bounds.Dx()
	if tileH < 1 {
		tileH = 1
	}

	cols := opts.Columns
	if len(paths) < cols {
		cols = len(paths)
	}
	rows := (len(paths) + cols - 1) / cols

	dst := image.NewRGBA(image.Rect(0, 0, cols*tileW, rows*tileH))
	fillBackground(dst, color.Black)

	for i, path := range paths {
		img := first
		if i > 0 {
			img, err = decodeImageFile(path)
			if err != nil {
				return err
			}
		}

		col := i % cols
		row := i / cols
		tile := image.Rect(col*tileW, row*tileH, (col+1)*tileW, (row+1)*tileH)
		draw.CatmullRom.Scale(dst, tile, img, img.Bounds(), draw.Src, nil)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("imaging: create montage %s: %w", outPath, err)
	}
	defer out.Close()

	if err := png.Encode(out, dst); err != nil {
		return fmt.Errorf("imaging: encode montage: %w", err)
	}
	return nil
}

// decodeImageFile opens and fully decodes one image.
func decodeImageFile(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("imaging: open %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptImage, path, err)
	}
	return img, nil
}

// fillBackground paints the destination a solid color before tiles land.
func fillBackground(dst *image.RGBA, c color.Color) {
	b := dst.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.Set(x, y, c)
		}
	}
}
