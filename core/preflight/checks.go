package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"turntable/core"
	"turntable/imaging"
)

// DefaultMinFreeBytes is the free disk space below which preflight warns.
// A full 72-view run of PNG output typically needs a few hundred megabytes.
const DefaultMinFreeBytes = 500 * core.BytesPerMB

// CheckResult represents the outcome of a single preflight check.
// Warning marks a check that passed but deserves operator attention.
type CheckResult struct {
	Valid   bool
	Warning bool
	Message string
	Error   error
}

// Checker composes the individual preflight checks for one generation run.
// This is a molecule that orchestrates env file, API key, input image,
// output directory, and disk space checks. Deep image decoding happens later
// in imaging.Validate; preflight only catches obvious misconfiguration
// before any network traffic.
type Checker struct {
	envPath      string // Path to .env file (default: ".env")
	inputPath    string // Input image path from the command line
	outputDir    string // Base output directory for generated views
	minFreeBytes int64  // Free space threshold for the disk space warning
}

// NewChecker creates a new Checker with default settings.
func NewChecker() *Checker {
	return &Checker{
		envPath:      ".env",
		minFreeBytes: DefaultMinFreeBytes,
	}
}

// WithEnvPath sets a custom path for the .env file.
func (c *Checker) WithEnvPath(path string) *Checker {
	c.envPath = path
	return c
}

// WithInputPath sets the input image path to check.
func (c *Checker) WithInputPath(path string) *Checker {
	c.inputPath = path
	return c
}

// WithOutputDir sets the output directory to check.
func (c *Checker) WithOutputDir(dir string) *Checker {
	c.outputDir = dir
	return c
}

// WithMinFreeBytes sets the disk space warning threshold.
func (c *Checker) WithMinFreeBytes(n int64) *Checker {
	c.minFreeBytes = n
	return c
}

// CheckEnvFile reports whether the .env file exists.
// A missing file is a warning, not a failure: configuration may come from
// exported environment variables instead.
func (c *Checker) CheckEnvFile() CheckResult {
	info, err := os.Stat(c.envPath)
	if err != nil {
		if os.IsNotExist(err) {
			return CheckResult{
				Valid:   true,
				Warning: true,
				Message: fmt.Sprintf("%s not found; using process environment only", c.envPath),
			}
		}
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("Cannot read %s", c.envPath),
			Error:   err,
		}
	}
	if info.IsDir() {
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("%s is a directory, not a file", c.envPath),
			Error:   core.ErrEnvFileMissing(c.envPath),
		}
	}
	return CheckResult{
		Valid:   true,
		Message: "Environment file found",
	}
}

// CheckAPIKey validates that FAL_KEY is configured.
// FAL.ai keys have the form "key-id:key-secret"; a key without the separator
// is accepted with a warning since the API rejects bad keys with a clearer
// message than any guess made here. The key itself is never echoed.
func (c *Checker) CheckAPIKey() CheckResult {
	key := os.Getenv("FAL_KEY")
	if key == "" {
		return CheckResult{
			Valid:   false,
			Message: "FAL_KEY not set. Get a key at https://fal.ai/dashboard/keys",
			Error:   core.ErrMissingFALKey(),
		}
	}
	if !strings.Contains(key, ":") {
		return CheckResult{
			Valid:   true,
			Warning: true,
			Message: "FAL_KEY does not look like a key-id:key-secret pair",
		}
	}
	return CheckResult{
		Valid:   true,
		Message: "API key configured",
	}
}

// CheckInputImage validates that the input image exists and carries a
// supported extension.
func (c *Checker) CheckInputImage() CheckResult {
	if c.inputPath == "" {
		return CheckResult{
			Valid:   false,
			Message: "No input image given",
			Error:   fmt.Errorf("preflight: input image path is empty"),
		}
	}
	if err := statRegularFile(c.inputPath); err != nil {
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("Input image %s", c.inputPath),
			Error:   err,
		}
	}
	if !imaging.IsSupportedExtension(c.inputPath) {
		return CheckResult{
			Valid: false,
			Message: fmt.Sprintf("Unsupported image type %s (supported: %s)",
				filepath.Ext(c.inputPath), strings.Join(imaging.SupportedExtensions, ", ")),
			Error: imaging.ErrUnsupportedFormat,
		}
	}
	return CheckResult{
		Valid:   true,
		Message: "Input image found",
	}
}

// CheckOutputDir verifies the output directory can be created and written.
// The directory is created as a side effect so a passing check means later
// downloads will not trip over a missing path.
func (c *Checker) CheckOutputDir() CheckResult {
	if c.outputDir == "" {
		return CheckResult{
			Valid:   false,
			Message: "No output directory configured",
			Error:   fmt.Errorf("preflight: output directory is empty"),
		}
	}
	if err := os.MkdirAll(c.outputDir, 0755); err != nil {
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("Cannot create %s", c.outputDir),
			Error:   core.ErrOutputDirFailed(c.outputDir, err),
		}
	}
	probe, err := os.CreateTemp(c.outputDir, ".preflight-*")
	if err != nil {
		return CheckResult{
			Valid:   false,
			Message: fmt.Sprintf("Cannot write to %s", c.outputDir),
			Error:   core.ErrOutputDirFailed(c.outputDir, err),
		}
	}
	probe.Close()
	os.Remove(probe.Name())
	return CheckResult{
		Valid:   true,
		Message: "Output directory writable",
	}
}

// CheckDiskSpace warns when free space at the output directory falls below
// the configured threshold. Failure to determine free space is itself only a
// warning; an exotic filesystem should not block a run.
func (c *Checker) CheckDiskSpace() CheckResult {
	free, err := FreeDiskSpace(c.outputDir)
	if err != nil {
		return CheckResult{
			Valid:   true,
			Warning: true,
			Message: fmt.Sprintf("Could not determine free space: %v", err),
		}
	}
	if free < c.minFreeBytes {
		return CheckResult{
			Valid:   true,
			Warning: true,
			Message: fmt.Sprintf("Low disk space: %s free, %s recommended",
				core.FormatBytes(free), core.FormatBytes(c.minFreeBytes)),
		}
	}
	return CheckResult{
		Valid:   true,
		Message: fmt.Sprintf("%s free", core.FormatBytes(free)),
	}
}

// statRegularFile checks that path exists and is a regular file.
func statRegularFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("preflight: file not found: %s", path)
		}
		return fmt.Errorf("preflight: cannot stat %s: %w", path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("preflight: %s is a directory, not a file", path)
	}
	return nil
}
