package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"turntable/core"
	"turntable/core/preflight"
	"turntable/falapi"
	"turntable/imaging"
	"turntable/logging"
	"turntable/turntable"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// run executes one full turntable generation and returns the process exit
// code. Kept separate from main so tests and the signal handler can reason
// about exit codes without calling os.Exit.
func run(args []string) int {
	opts, err := parseOptions(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return core.ExitCodeSuccess
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return core.ExitCodeError
	}

	if opts.ShowVersion {
		fmt.Printf("turntable %s\n", core.GetVersionInfo())
		return core.ExitCodeSuccess
	}

	if violations := validateOptions(opts); len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "Argument Validation Errors:")
		for _, v := range violations {
			fmt.Fprintf(os.Stderr, "  - %s\n", v)
		}
		return core.ExitCodeError
	}

	// Load .env before anything reads the environment. A missing file is
	// reported by the preflight suite, so the error is not interesting here.
	_ = godotenv.Load()

	printBanner(os.Stdout)

	// The console belongs to the progress UI; the structured record goes to
	// the log file. DEV_MODE puts the full debug stream on the console too.
	devMode := core.ParseBoolEnv("DEV_MODE", false)
	logger, err := logging.NewLogger(logging.Config{
		Development: devMode,
		Quiet:       !devMode,
		FilePath:    core.GetEnvOrDefault("LOG_FILE", core.DefaultLogFile),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		return core.ExitCodeError
	}
	defer func() {
		_ = logger.Sync()
	}()

	runID := uuid.New().String()[:8]
	logger = logger.With(zap.String("run_id", runID))
	logger.Info("starting run",
		zap.String("version", core.Version),
		zap.String("image", opts.ImagePath),
		zap.Bool("dev_mode", devMode))

	// Preflight before any network traffic.
	outputBase := core.GetEnvOrDefault("OUTPUT_DIR", core.DefaultOutputBaseDir)
	result := preflight.NewSuite().
		WithInputPath(opts.ImagePath).
		WithOutputDir(outputBase).
		Run()
	if !result.Success {
		logger.Error("preflight failed",
			zap.Int("passed", result.PassedSteps),
			zap.Int("failed", result.FailedSteps),
			zap.Error(result.GetFirstError()))
		return core.ExitCodeError
	}
	logger.Info("preflight passed", zap.String("summary", result.Summary()))

	cfg, err := core.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Error("configuration failed", zap.Error(err))
		return core.ExitCodeError
	}
	logger.Info("configuration loaded",
		zap.String("endpoint", cfg.APIEndpoint),
		zap.Duration("throttle_delay", cfg.ThrottleDelay),
		zap.Int("max_retries", cfg.MaxRetries),
		zap.Duration("initial_retry_delay", cfg.InitialRetryDelay),
		zap.Duration("max_retry_delay", cfg.MaxRetryDelay),
		zap.Duration("request_timeout", cfg.RequestTimeout),
		zap.Int("rotation_increment", cfg.RotationIncrement),
		zap.Int("full_rotation", cfg.FullRotation),
		zap.String("output_dir", cfg.OutputBaseDir))

	// Validate and encode the input image.
	fmt.Printf("Processing input image: %s\n", opts.ImagePath)
	info, err := imaging.Validate(opts.ImagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		logger.Error("image validation failed", zap.Error(err))
		return core.ExitCodeError
	}
	printImageInfo(os.Stdout, info)

	fmt.Println("Encoding input image...")
	dataURI, err := imaging.EncodeDataURI(opts.ImagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		logger.Error("image encoding failed", zap.Error(err))
		return core.ExitCodeError
	}
	fmt.Printf("✓ Image encoded (%s as data URI)\n\n", core.FormatBytes(int64(len(dataURI))))

	// Cancel the run context on SIGINT/SIGTERM and remember which signal
	// fired so the exit code can follow the 128+signal convention.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var signalCode atomic.Int32
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer func() {
		signal.Stop(sigChan)
		close(sigChan)
	}()
	go func() {
		sig, ok := <-sigChan
		if !ok {
			return
		}
		if sig == syscall.SIGTERM {
			signalCode.Store(core.ExitCodeSIGTERM)
		} else {
			signalCode.Store(core.ExitCodeSIGINT)
		}
		logger.Warn("interrupt received, aborting run", zap.String("signal", sig.String()))
		cancel()
	}()

	// One pooled client for the whole run; generation and download both
	// bound their requests with contexts, not a client-level deadline.
	httpClient := core.GetHTTPClient(0)

	client, err := falapi.NewClient(falapi.ClientConfig{
		APIKey:         cfg.FALKey,
		Endpoint:       cfg.APIEndpoint,
		QueueBaseURL:   cfg.QueueBaseURL,
		RequestTimeout: cfg.RequestTimeout,
		PollInterval:   cfg.PollInterval,
		ThrottleDelay:  cfg.ThrottleDelay,
		Retry: falapi.RetryPolicy{
			MaxRetries:   cfg.MaxRetries,
			InitialDelay: cfg.InitialRetryDelay,
			MaxDelay:     cfg.MaxRetryDelay,
			Multiplier:   cfg.BackoffMultiplier,
		},
		HTTPClient: httpClient,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		logger.Error("client init failed", zap.Error(err))
		return core.ExitCodeError
	}

	gen, err := turntable.NewGenerator(client, logger, turntable.GeneratorConfig{
		RotationIncrement: cfg.RotationIncrement,
		FullRotation:      cfg.FullRotation,
		OnView:            progressPrinter(os.Stdout, opts.Quiet),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		logger.Error("generator init failed", zap.Error(err))
		return core.ExitCodeError
	}

	stats := turntable.NewRunStats(gen.TotalViews())
	stats.RunID = runID

	fmt.Printf("Generating %d views (%d° increments) - this runs sequentially, please be patient...\n\n",
		gen.TotalViews(), cfg.RotationIncrement)

	results, err := gen.GenerateAll(ctx, dataURI, opts.Params)
	if err != nil {
		if code, aborted := signalAbort(&signalCode, logger); aborted {
			return code
		}
		var rateLimited *falapi.RateLimitError
		if errors.As(err, &rateLimited) {
			fmt.Fprintf(os.Stderr, "\nERROR: FAL.ai rate limit exceeded after %d attempts. Wait before retrying, or raise THROTTLE_DELAY.\n",
				rateLimited.Attempts)
		} else {
			fmt.Fprintf(os.Stderr, "\nERROR during generation: %v\n", err)
		}
		logger.Error("generation failed", zap.Error(err))
		return core.ExitCodeError
	}
	stats.RecordGenerated(results)
	fmt.Printf("\n✓ Generated all %d views in %s\n\n", len(results), stats.Elapsed().Round(time.Second))

	// Download results into <output base>/<image stem>/.
	stem := strings.TrimSuffix(filepath.Base(opts.ImagePath), filepath.Ext(opts.ImagePath))
	outputDir := filepath.Join(outputBase, stem)

	downloader, err := turntable.NewDownloader(logger, turntable.DownloaderConfig{
		Timeout:    cfg.DownloadTimeout,
		HTTPClient: httpClient,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return core.ExitCodeError
	}

	fmt.Println("Saving generated images...")
	saved, err := downloader.DownloadAll(ctx, results, outputDir, opts.Params.OutputFormat)
	if err != nil {
		if code, aborted := signalAbort(&signalCode, logger); aborted {
			return code
		}
		fmt.Fprintf(os.Stderr, "ERROR while saving images: %v\n", err)
		logger.Error("saving images failed", zap.Error(err))
		return core.ExitCodeError
	}
	stats.RecordSaved(saved)
	fmt.Printf("✓ Saved %d of %d images\n\n", len(saved), len(results))

	montagePath := ""
	if !opts.NoMontage && len(saved) > 0 {
		fmt.Println("Creating montage preview...")
		paths := make([]string, 0, len(saved))
		for _, img := range saved {
			paths = append(paths, img.Path)
		}
		montagePath = filepath.Join(outputDir, stem+"_montage.png")
		if err := imaging.Montage(paths, montagePath, imaging.DefaultMontageOptions()); err != nil {
			// The montage is a nicety; a failure never fails the run.
			fmt.Printf("Note: Could not create montage: %v\n\n", err)
			logger.Warn("montage failed", zap.Error(err))
			montagePath = ""
		} else {
			fmt.Printf("✓ Montage created: %s\n\n", montagePath)
		}
	}

	stats.Finish()
	logger.Info("run complete",
		zap.Int("views_requested", stats.ViewsRequested),
		zap.Int("views_generated", stats.ViewsGenerated),
		zap.Int("retries", stats.Retries()),
		zap.Int("images_saved", stats.ImagesSaved),
		zap.Int64("bytes_saved", stats.BytesSaved),
		zap.Duration("elapsed", stats.Elapsed()))

	printSummary(os.Stdout, summaryData{
		ImagePath:    opts.ImagePath,
		OutputDir:    outputDir,
		MontagePath:  montagePath,
		Params:       opts.Params,
		Increment:    cfg.RotationIncrement,
		FullRotation: cfg.FullRotation,
		Stats:        stats,
	})

	return core.ExitCodeSuccess
}

// signalAbort reports whether a caught signal caused the failure in flight.
// When it did, the abort notice is printed and the 128+signal exit code
// returned.
func signalAbort(signalCode *atomic.Int32, logger *logging.Logger) (int, bool) {
	code := int(signalCode.Load())
	if !core.IsSignalExit(code) {
		return 0, false
	}
	fmt.Fprintf(os.Stderr, "\nRun %s.\n", core.ExitCodeName(code))
	logger.Warn("run aborted by signal", zap.Int("exit_code", code))
	return code, true
}
