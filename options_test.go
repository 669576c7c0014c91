package main

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"turntable/falapi"
)

func TestParseOptions_Defaults(t *testing.T) {
	var buf bytes.Buffer
	opts, err := parseOptions([]string{"image.jpg"}, &buf)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}

	if opts.ImagePath != "image.jpg" {
		t.Errorf("ImagePath = %q, want %q", opts.ImagePath, "image.jpg")
	}
	if opts.Params != falapi.DefaultParameters() {
		t.Errorf("Params = %+v, want defaults", opts.Params)
	}
	if opts.NoMontage || opts.Quiet || opts.ShowVersion {
		t.Error("boolean options should default to false")
	}
}

func TestParseOptions_AllFlags(t *testing.T) {
	var buf bytes.Buffer
	opts, err := parseOptions([]string{
		"--guidance-scale", "2.5",
		"--num-steps", "10",
		"--lora-scale", "1.5",
		"--move-forward", "3",
		"--vertical-angle", "-0.5",
		"--wide-angle",
		"--output-format", "webp",
		"--no-montage",
		"--quiet",
		"product.png",
	}, &buf)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}

	if opts.ImagePath != "product.png" {
		t.Errorf("ImagePath = %q, want %q", opts.ImagePath, "product.png")
	}
	if opts.Params.GuidanceScale != 2.5 {
		t.Errorf("GuidanceScale = %g, want 2.5", opts.Params.GuidanceScale)
	}
	if opts.Params.NumInferenceSteps != 10 {
		t.Errorf("NumInferenceSteps = %d, want 10", opts.Params.NumInferenceSteps)
	}
	if opts.Params.LoraScale != 1.5 {
		t.Errorf("LoraScale = %g, want 1.5", opts.Params.LoraScale)
	}
	if opts.Params.MoveForward != 3 {
		t.Errorf("MoveForward = %g, want 3", opts.Params.MoveForward)
	}
	if opts.Params.VerticalAngle != -0.5 {
		t.Errorf("VerticalAngle = %g, want -0.5", opts.Params.VerticalAngle)
	}
	if !opts.Params.WideAngleLens {
		t.Error("WideAngleLens should be set")
	}
	if opts.Params.OutputFormat != "webp" {
		t.Errorf("OutputFormat = %q, want %q", opts.Params.OutputFormat, "webp")
	}
	if !opts.NoMontage {
		t.Error("NoMontage should be set")
	}
	if !opts.Quiet {
		t.Error("Quiet should be set")
	}
}

func TestParseOptions_MissingImage(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseOptions([]string{"--quiet"}, &buf)
	if err == nil {
		t.Fatal("expected error for missing image argument")
	}
	if !strings.Contains(buf.String(), "Usage:") {
		t.Error("missing image should print usage")
	}
}

func TestParseOptions_TrailingFlags(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseOptions([]string{"image.jpg", "--quiet"}, &buf)
	if err == nil {
		t.Fatal("expected error for flags after the image path")
	}
	if !strings.Contains(err.Error(), "flags must precede") {
		t.Errorf("error should explain flag ordering, got: %v", err)
	}
}

func TestParseOptions_Version(t *testing.T) {
	var buf bytes.Buffer
	opts, err := parseOptions([]string{"--version"}, &buf)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}
	if !opts.ShowVersion {
		t.Error("ShowVersion should be set")
	}
}

func TestParseOptions_Help(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseOptions([]string{"-h"}, &buf)
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("expected flag.ErrHelp, got %v", err)
	}
	if !strings.Contains(buf.String(), "Usage:") {
		t.Error("help should print usage")
	}
}

func TestParseOptions_PresetPrecedence(t *testing.T) {
	presetPath := filepath.Join(t.TempDir(), "studio.yaml")
	preset := "guidance_scale: 5.0\nnum_inference_steps: 20\noutput_format: jpeg\n"
	if err := os.WriteFile(presetPath, []byte(preset), 0644); err != nil {
		t.Fatalf("writing preset: %v", err)
	}

	var buf bytes.Buffer
	opts, err := parseOptions([]string{
		"--preset", presetPath,
		"--guidance-scale", "2.5",
		"image.jpg",
	}, &buf)
	if err != nil {
		t.Fatalf("parseOptions: %v", err)
	}

	// Explicit flag beats the preset.
	if opts.Params.GuidanceScale != 2.5 {
		t.Errorf("GuidanceScale = %g, want explicit 2.5", opts.Params.GuidanceScale)
	}
	// Preset beats the default.
	if opts.Params.NumInferenceSteps != 20 {
		t.Errorf("NumInferenceSteps = %d, want preset 20", opts.Params.NumInferenceSteps)
	}
	if opts.Params.OutputFormat != "jpeg" {
		t.Errorf("OutputFormat = %q, want preset %q", opts.Params.OutputFormat, "jpeg")
	}
	// Untouched values stay at their defaults.
	if opts.Params.LoraScale != falapi.DefaultParameters().LoraScale {
		t.Errorf("LoraScale = %g, want default", opts.Params.LoraScale)
	}
}

func TestParseOptions_PresetMissing(t *testing.T) {
	var buf bytes.Buffer
	_, err := parseOptions([]string{
		"--preset", filepath.Join(t.TempDir(), "absent.yaml"),
		"image.jpg",
	}, &buf)
	if err == nil {
		t.Fatal("expected error for missing preset file")
	}
}

func TestValidateOptions_CollectsAllViolations(t *testing.T) {
	opts := &options{Params: falapi.DefaultParameters()}
	opts.Params.GuidanceScale = 25
	opts.Params.NumInferenceSteps = 1
	opts.Params.LoraScale = -1
	opts.Params.OutputFormat = "tiff"

	violations := validateOptions(opts)
	if len(violations) != 4 {
		t.Fatalf("got %d violations, want 4: %v", len(violations), violations)
	}

	joined := strings.Join(violations, "\n")
	for _, want := range []string{"guidance-scale", "num-steps", "lora-scale", "output-format"} {
		if !strings.Contains(joined, want) {
			t.Errorf("violations should mention %s", want)
		}
	}
}

func TestValidateOptions_DefaultsAreValid(t *testing.T) {
	opts := &options{Params: falapi.DefaultParameters()}
	if violations := validateOptions(opts); len(violations) != 0 {
		t.Errorf("default parameters should be valid, got %v", violations)
	}
}
