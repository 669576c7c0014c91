// Package turntable run orchestration.
//
// generator.go implements the Generator organism that drives the full angle
// sweep. Views are requested strictly sequentially: the API client's
// throttle and retry policy exist to pace a single caller, and angle order
// of the result sequence is part of the contract.
//
// This organism composes:
//   - ViewGenerator interface: falapi.Client or a test stand-in
//   - angles.go: the angle sequence
//   - logging.Logger: structured logging
package turntable

import (
	"context"
	"fmt"

	"turntable/falapi"
	"turntable/logging"

	"go.uber.org/zap"
)

// ViewGenerator produces one view per call.
// falapi.Client implements this interface.
type ViewGenerator interface {
	// Generate runs one generation call. On success the result carries at
	// least one image.
	Generate(ctx context.Context, req falapi.Request) (*falapi.GenerationResult, error)
}

// Compile-time interface check.
var _ ViewGenerator = (*falapi.Client)(nil)

// GeneratorConfig holds configuration for a turntable run.
type GeneratorConfig struct {
	// RotationIncrement is the per-view angle step in degrees.
	// Default: 5.
	RotationIncrement int

	// FullRotation is the total sweep in degrees. Must be divisible by
	// RotationIncrement. Default: 360.
	FullRotation int

	// OnView, when set, is invoked after each successful view with the
	// 1-based view index and the total view count. Used for console
	// progress reporting.
	OnView func(index, total int, result ViewResult)
}

// DefaultGeneratorConfig returns the standard 72-view turntable sweep.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		RotationIncrement: 5,
		FullRotation:      360,
	}
}

// Generator runs the full angle sweep against a ViewGenerator.
//
// Failure semantics: the first failed view aborts the whole run. A
// turntable with missing angles is not a useful artifact, so there is no
// per-angle skip. Rate-limit aborts from the client propagate unchanged so
// callers can report them distinctly.
type Generator struct {
	gen    ViewGenerator
	logger *logging.Logger
	config GeneratorConfig
}

// NewGenerator creates a turntable generator.
//
// Returns an error if any required component is nil or the rotation does
// not divide evenly into views.
func NewGenerator(gen ViewGenerator, logger *logging.Logger, config GeneratorConfig) (*Generator, error) {
	if gen == nil {
		return nil, fmt.Errorf("turntable: view generator cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("turntable: logger cannot be nil")
	}

	if config.RotationIncrement <= 0 {
		config.RotationIncrement = 5
	}
	if config.FullRotation <= 0 {
		config.FullRotation = 360
	}
	if config.FullRotation%config.RotationIncrement != 0 {
		return nil, fmt.Errorf("turntable: full rotation %d° is not divisible by increment %d°",
			config.FullRotation, config.RotationIncrement)
	}

	return &Generator{
		gen:    gen,
		logger: logger.Named("turntable"),
		config: config,
	}, nil
}

// TotalViews returns the number of views one run will generate.
func (g *Generator) TotalViews() int {
	return g.config.FullRotation / g.config.RotationIncrement
}

// GenerateAll sweeps the full rotation and returns one result per angle, in
// angle order. The imageRef (URL or data URI) and params are fixed across
// all views; only the rotation angle varies.
//
// The run is strictly sequential. The first failure aborts and returns the
// wrapped error; no partial result set is returned.
func (g *Generator) GenerateAll(ctx context.Context, imageRef string, params falapi.Parameters) ([]ViewResult, error) {
	angles := AngleSequence(g.config.RotationIncrement, g.config.FullRotation)
	total := len(angles)

	g.logger.Info("starting multi-angle generation",
		zap.Int("total_views", total),
		zap.Int("rotation_increment", g.config.RotationIncrement))

	results := make([]ViewResult, 0, total)
	for i, angle := range angles {
		g.logger.Info("generating view",
			zap.Int("view", i+1),
			zap.Int("total", total),
			zap.Int("angle", angle))

		generated, err := g.gen.Generate(ctx, falapi.Request{
			ImageRef:        imageRef,
			RotateRightLeft: float64(angle),
			Params:          params,
		})
		if err != nil {
			g.logger.Error("view generation failed",
				zap.Int("angle", angle),
				zap.Error(err))
			return nil, fmt.Errorf("turntable: view at %d°: %w", angle, err)
		}

		result := ViewResult{
			Angle:    angle,
			URL:      generated.Images[0].URL,
			Seed:     generated.Seed,
			Attempts: generated.Attempts,
		}
		results = append(results, result)

		if g.config.OnView != nil {
			g.config.OnView(i+1, total, result)
		}
	}

	g.logger.Info("all views generated", zap.Int("total_views", total))
	return results, nil
}
