// Package turntable orchestrates a full multi-angle generation run: the
// angle sequence, strictly sequential view generation, and result download.
//
// types.go defines the result records passed between the pipeline stages.
package turntable

// ViewResult is one generated view, recorded in angle order.
type ViewResult struct {
	// Angle is the turntable rotation in degrees.
	Angle int

	// URL is where the generated image can be fetched from. Provider URLs
	// are temporary, so downloads should happen promptly.
	URL string

	// Seed is the sampling seed the provider reported, when available.
	Seed *int64

	// Attempts is how many API attempts this view took, including the
	// successful one.
	Attempts int
}

// SavedImage is one downloaded view on disk.
type SavedImage struct {
	// Angle is the turntable rotation in degrees.
	Angle int

	// Path is the local file path.
	Path string

	// Size is the file size in bytes.
	Size int64
}
