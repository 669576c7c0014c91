package main

import (
	"flag"
	"fmt"
	"io"

	"turntable/falapi"
)

// options holds the parsed command line for one invocation.
type options struct {
	// ImagePath is the positional input image argument.
	ImagePath string

	// Params are the generation parameters after applying the preset file
	// and explicit flags on top of the defaults.
	Params falapi.Parameters

	// PresetPath is the YAML preset file, empty when none was given.
	PresetPath string

	// NoMontage skips the montage preview.
	NoMontage bool

	// Quiet suppresses the per-view progress lines.
	Quiet bool

	// ShowVersion prints version information and exits.
	ShowVersion bool
}

// parseOptions parses args (without the program name) into options.
//
// Parameter precedence, lowest to highest: built-in defaults, the preset
// file, explicit flags. A flag left at its default does not override the
// preset; fs.Visit tracks which flags were actually set.
func parseOptions(args []string, output io.Writer) (*options, error) {
	fs := flag.NewFlagSet("turntable", flag.ContinueOnError)
	fs.SetOutput(output)

	defaults := falapi.DefaultParameters()

	guidance := fs.Float64("guidance-scale", defaults.GuidanceScale, "CFG guidance scale (0-20)")
	steps := fs.Int("num-steps", defaults.NumInferenceSteps, "number of inference steps (2-50)")
	lora := fs.Float64("lora-scale", defaults.LoraScale, "LoRA scale for camera control (0-4)")
	moveForward := fs.Float64("move-forward", defaults.MoveForward, "camera zoom/forward movement (0-10)")
	verticalAngle := fs.Float64("vertical-angle", defaults.VerticalAngle, "vertical camera angle (-1 to 1)")
	wideAngle := fs.Bool("wide-angle", defaults.WideAngleLens, "enable wide-angle lens effect")
	outputFormat := fs.String("output-format", defaults.OutputFormat, "output image format: png, jpeg, or webp")
	preset := fs.String("preset", "", "YAML preset file with generation parameters")
	noMontage := fs.Bool("no-montage", false, "skip creating a montage of generated images")
	quiet := fs.Bool("quiet", false, "suppress per-view progress output")
	showVersion := fs.Bool("version", false, "print version information and exit")

	fs.Usage = func() {
		fmt.Fprintf(output, "Usage: %s [flags] <image>\n\n", fs.Name())
		fmt.Fprintf(output, "Generate multiple angle views of a product image using FAL.ai.\n\n")
		fmt.Fprintf(output, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(output, "\nExamples:\n")
		fmt.Fprintf(output, "  %s image.jpg\n", fs.Name())
		fmt.Fprintf(output, "  %s --guidance-scale 1.5 --lora-scale 1.2 product.png\n", fs.Name())
		fmt.Fprintf(output, "  %s --preset studio.yaml --output-format webp photo.jpg\n", fs.Name())
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts := &options{
		Params:      defaults,
		PresetPath:  *preset,
		NoMontage:   *noMontage,
		Quiet:       *quiet,
		ShowVersion: *showVersion,
	}

	if opts.ShowVersion {
		return opts, nil
	}

	if opts.PresetPath != "" {
		p, err := falapi.LoadPreset(opts.PresetPath)
		if err != nil {
			return nil, err
		}
		p.Apply(&opts.Params)
	}

	// Explicit flags win over the preset.
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { explicit[f.Name] = true })
	if explicit["guidance-scale"] {
		opts.Params.GuidanceScale = *guidance
	}
	if explicit["num-steps"] {
		opts.Params.NumInferenceSteps = *steps
	}
	if explicit["lora-scale"] {
		opts.Params.LoraScale = *lora
	}
	if explicit["move-forward"] {
		opts.Params.MoveForward = *moveForward
	}
	if explicit["vertical-angle"] {
		opts.Params.VerticalAngle = *verticalAngle
	}
	if explicit["wide-angle"] {
		opts.Params.WideAngleLens = *wideAngle
	}
	if explicit["output-format"] {
		opts.Params.OutputFormat = *outputFormat
	}

	switch fs.NArg() {
	case 1:
		opts.ImagePath = fs.Arg(0)
	case 0:
		fs.Usage()
		return nil, fmt.Errorf("missing required input image argument")
	default:
		// flag parsing stops at the first positional argument, so trailing
		// flags end up here.
		return nil, fmt.Errorf("expected one input image, got %d arguments (flags must precede the image path)", fs.NArg())
	}

	return opts, nil
}

// validateOptions mirrors falapi.Parameters.Validate but collects every
// violation instead of stopping at the first, which is friendlier at the
// command line.
func validateOptions(opts *options) []string {
	p := opts.Params
	var errs []string

	if p.GuidanceScale < falapi.MinGuidanceScale || p.GuidanceScale > falapi.MaxGuidanceScale {
		errs = append(errs, fmt.Sprintf("guidance-scale must be between %g and %g, got %g",
			falapi.MinGuidanceScale, falapi.MaxGuidanceScale, p.GuidanceScale))
	}
	if p.NumInferenceSteps < falapi.MinInferenceSteps || p.NumInferenceSteps > falapi.MaxInferenceSteps {
		errs = append(errs, fmt.Sprintf("num-steps must be between %d and %d, got %d",
			falapi.MinInferenceSteps, falapi.MaxInferenceSteps, p.NumInferenceSteps))
	}
	if p.LoraScale < falapi.MinLoraScale || p.LoraScale > falapi.MaxLoraScale {
		errs = append(errs, fmt.Sprintf("lora-scale must be between %g and %g, got %g",
			falapi.MinLoraScale, falapi.MaxLoraScale, p.LoraScale))
	}
	if p.MoveForward < falapi.MinMoveForward || p.MoveForward > falapi.MaxMoveForward {
		errs = append(errs, fmt.Sprintf("move-forward must be between %g and %g, got %g",
			falapi.MinMoveForward, falapi.MaxMoveForward, p.MoveForward))
	}
	if p.VerticalAngle < falapi.MinVerticalAngle || p.VerticalAngle > falapi.MaxVerticalAngle {
		errs = append(errs, fmt.Sprintf("vertical-angle must be between %g and %g, got %g",
			falapi.MinVerticalAngle, falapi.MaxVerticalAngle, p.VerticalAngle))
	}
	switch p.OutputFormat {
	case "png", "jpeg", "webp":
	default:
		errs = append(errs, fmt.Sprintf("output-format must be png, jpeg, or webp, got %q", p.OutputFormat))
	}

	return errs
}
