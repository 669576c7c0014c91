// Package turntable run statistics.
//
// stats.go implements the RunStats record that aggregates one full run for
// the final summary and for correlating log entries across a run.
package turntable

import (
	"time"

	"github.com/google/uuid"
)

// RunStats aggregates one full turntable run.
type RunStats struct {
	// RunID is a short correlation ID attached to all log entries of the run.
	RunID string

	// StartTime and EndTime bound the run.
	StartTime time.Time
	EndTime   time.Time

	// ViewsRequested is the planned view count (rotation / increment).
	ViewsRequested int

	// ViewsGenerated is how many views the API produced.
	ViewsGenerated int

	// TotalAttempts is the sum of API attempts across all generated views.
	TotalAttempts int

	// ImagesSaved is how many views were downloaded successfully.
	ImagesSaved int

	// BytesSaved is the total size of the saved images on disk.
	BytesSaved int64
}

// NewRunStats starts the clock for a run of the given planned size.
// The run ID is a UUID v4 truncated to 8 characters: short enough for
// console output, unique enough for log correlation.
func NewRunStats(viewsRequested int) *RunStats {
	return &RunStats{
		RunID:          uuid.New().String()[:8],
		StartTime:      time.Now(),
		ViewsRequested: viewsRequested,
	}
}

// RecordGenerated notes the generated view count and the attempts spent.
func (s *RunStats) RecordGenerated(views []ViewResult) {
	s.ViewsGenerated = len(views)
	s.TotalAttempts = 0
	for _, v := range views {
		// A result without attempt bookkeeping still cost one call.
		s.TotalAttempts += max(v.Attempts, 1)
	}
}

// RecordSaved notes the download outcome.
func (s *RunStats) RecordSaved(saved []SavedImage) {
	s.ImagesSaved = len(saved)
	s.BytesSaved = 0
	for _, img := range saved {
		s.BytesSaved += img.Size
	}
}

// Retries returns how many extra API attempts the run needed beyond one
// per generated view.
func (s *RunStats) Retries() int {
	return max(s.TotalAttempts-s.ViewsGenerated, 0)
}

// Finish stops the clock.
func (s *RunStats) Finish() {
	s.EndTime = time.Now()
}

// Elapsed returns the run duration, using the current time while the run is
// still in progress.
func (s *RunStats) Elapsed() time.Duration {
	if s.EndTime.IsZero() {
		return time.Since(s.StartTime)
	}
	return s.EndTime.Sub(s.StartTime)
}
