package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"turntable/core"
	"turntable/falapi"
	"turntable/imaging"
	"turntable/turntable"

	"github.com/fatih/color"
)

// bannerWidth is the width of the banner and summary rules.
const bannerWidth = 60

// printBanner prints the welcome banner.
func printBanner(w io.Writer) {
	rule := strings.Repeat("━", bannerWidth)
	head := color.New(color.FgCyan, color.Bold)
	dim := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	head.Fprintln(w, rule)
	head.Fprintln(w, "  Multi-Angle Image Generation Tool")
	dim.Fprintln(w, "  Powered by FAL.ai Qwen Image Edit Plus LoRA")
	head.Fprintln(w, rule)
	fmt.Fprintln(w)
}

// printImageInfo prints the validated input image details.
func printImageInfo(w io.Writer, info *imaging.ImageInfo) {
	color.New(color.FgGreen).Fprintf(w, "✓ Image validated: %s\n", info.Filename)
	dim := color.New(color.FgHiBlack)
	dim.Fprintf(w, "  Dimensions: %dx%d\n", info.Width, info.Height)
	dim.Fprintf(w, "  Format: %s\n", info.Format)
	dim.Fprintf(w, "  Size: %s\n\n", core.FormatBytes(info.SizeBytes))
}

// progressPrinter returns an OnView callback printing one line per finished
// view. Returns nil in quiet mode; milestone output still prints elsewhere.
func progressPrinter(w io.Writer, quiet bool) func(index, total int, result turntable.ViewResult) {
	if quiet {
		return nil
	}
	green := color.New(color.FgGreen)
	return func(index, total int, result turntable.ViewResult) {
		green.Fprintf(w, "  ✓ [%d/%d] view at %d°\n", index, total, result.Angle)
	}
}

// summaryData collects everything the end-of-run summary prints.
type summaryData struct {
	ImagePath    string
	OutputDir    string
	MontagePath  string
	Params       falapi.Parameters
	Increment    int
	FullRotation int
	Stats        *turntable.RunStats
}

// printSummary prints the end-of-run summary.
// Conditional parameter lines only appear when they differ from the neutral
// camera position, keeping the common case short.
func printSummary(w io.Writer, data summaryData) {
	rule := strings.Repeat("━", bannerWidth)
	head := color.New(color.FgGreen, color.Bold)
	label := color.New(color.FgHiBlack)

	fmt.Fprintln(w)
	head.Fprintln(w, rule)
	head.Fprintln(w, "  Generation Complete!")
	head.Fprintln(w, rule)

	line := func(name, format string, args ...any) {
		label.Fprintf(w, "  %s: ", name)
		fmt.Fprintf(w, format+"\n", args...)
	}

	line("Input Image", "%s", data.ImagePath)
	line("Total Views Generated", "%d", data.Stats.ViewsGenerated)
	line("Rotation Range", "0° - %d° (%d° increments)",
		data.FullRotation-data.Increment, data.Increment)
	line("Images Saved", "%d", data.Stats.ImagesSaved)
	if data.Stats.ImagesSaved > 0 {
		line("Output Directory", "%s", data.OutputDir)
		line("Disk Space Used", "%s", core.FormatBytes(data.Stats.BytesSaved))
	}
	if data.MontagePath != "" {
		line("Montage", "%s", data.MontagePath)
	}
	if retries := data.Stats.Retries(); retries > 0 {
		line("API Retries", "%d", retries)
	}
	line("Elapsed", "%s", data.Stats.Elapsed().Round(time.Second))
	line("Run ID", "%s", data.Stats.RunID)

	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Parameters Used:")
	param := func(name, format string, args ...any) {
		label.Fprintf(w, "    %s: ", name)
		fmt.Fprintf(w, format+"\n", args...)
	}
	param("Guidance Scale", "%g", data.Params.GuidanceScale)
	param("Inference Steps", "%d", data.Params.NumInferenceSteps)
	param("LoRA Scale", "%g", data.Params.LoraScale)
	if data.Params.MoveForward > 0 {
		param("Camera Zoom", "%g", data.Params.MoveForward)
	}
	if data.Params.VerticalAngle != 0 {
		param("Vertical Angle", "%g", data.Params.VerticalAngle)
	}
	if data.Params.WideAngleLens {
		param("Wide-Angle Lens", "Enabled")
	}
	param("Output Format", "%s", data.Params.OutputFormat)

	head.Fprintln(w, rule)
	fmt.Fprintln(w)
}
