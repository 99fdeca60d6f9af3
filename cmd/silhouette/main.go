// Package main provides the CLI entry point for Silhouette.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/discovery"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/logging"
	"github.com/five82/silhouette/internal/pipeline"
	"github.com/five82/silhouette/internal/postprocess"
	"github.com/five82/silhouette/internal/queue"
	"github.com/five82/silhouette/internal/reporter"
)

const (
	appName    = "silhouette"
	appVersion = "0.1.0"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "video":
		err = runVideo(os.Args[2:])
	case "image":
		err = runImage(os.Args[2:])
	case "batch":
		err = runBatch(os.Args[2:])
	case "composite":
		err = runComposite(os.Args[2:])
	case "enqueue":
		err = runEnqueue(os.Args[2:])
	case "worker":
		err = runWorker(os.Args[2:])
	case "version", "--version", "-v":
		fmt.Printf("%s version %s\n", appName, appVersion)
		return
	case "help", "--help", "-h":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if hint := errs.Remediation(err); hint != "" {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`%s - background removal for video and still images

Usage:
  %s <command> [options]

Commands:
  video      Remove the background from a video, producing a matte-key intermediate
  image      Remove the background from a still image
  batch      Process every video/image in a directory
  composite  Flatten a matte-key intermediate onto a background, GIF, or alpha container
  enqueue    Submit a job to a running worker pool via Redis
  worker     Drain queued jobs from Redis and process them
  version    Print version information
  help       Show this help message

Run '%s <command> --help' for command-specific options.
`, appName, appName, appName)
}

func newReporters(logDir string, verbose, noLog bool) (reporter.Reporter, *logging.Logger, error) {
	logger, err := logging.Setup(logDir, verbose, noLog, os.Args)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	term := reporter.NewTerminalReporterVerbose(verbose)
	var rep reporter.Reporter = term
	if logger != nil {
		rep = reporter.NewCompositeReporter(term, reporter.NewLogReporter(logger.Writer()))
	}
	return rep, logger, nil
}

func cancelOnSignal() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()
	return ctx, cancel
}

// applyCommonFlags registers the tunables shared by the video, image, and
// batch commands onto cfg via fs.
func applyCommonFlags(fs *flag.FlagSet, cfg *config.Config) {
	fs.Var((*variantFlag)(&cfg.ModelVariant), "model", "Segmentation model: u2net, u2netp, u2net_human_seg")
	fs.IntVar(&cfg.Workers, "workers", config.DefaultWorkers, "Parallel segmentation workers")
	fs.IntVar(&cfg.GPUBatchSize, "batch-size", config.DefaultGPUBatchSize, "Frames per inference batch")
	fs.IntVar(&cfg.PrefetchedBatches, "prefetch-batches", config.DefaultPrefetchedBatches, "Batches of frames to buffer ahead of the workers")
	fs.IntVar(&cfg.FrameLimit, "frame-limit", -1, "Cap the number of frames processed (-1 = unlimited)")
	fs.IntVar(&cfg.FrameRateOverride, "frame-rate", -1, "Override output frame rate (-1 = use source rate)")
	fs.BoolVar(&cfg.AlphaMatting, "alpha-matting", false, "Refine cutout edges with local alpha matting (still images)")
	fs.BoolVar(&cfg.OnlyMask, "only-mask", false, "Write the raw segmentation mask instead of a cutout (still images)")
	fs.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose output")
}

type variantFlag config.ModelVariant

func (v *variantFlag) String() string { return string(*v) }
func (v *variantFlag) Set(s string) error {
	variant := config.ModelVariant(s)
	if !variant.Valid() {
		return fmt.Errorf("must be one of u2net, u2netp, u2net_human_seg")
	}
	*v = variantFlag(variant)
	return nil
}

type runArgs struct {
	inputPath string
	outputDir string
	logDir    string
	noLog     bool
}

func applyIOFlags(fs *flag.FlagSet, ra *runArgs) {
	fs.StringVar(&ra.inputPath, "i", "", "Input path")
	fs.StringVar(&ra.inputPath, "input", "", "Input path")
	fs.StringVar(&ra.outputDir, "o", "", "Output directory")
	fs.StringVar(&ra.outputDir, "output", "", "Output directory")
	fs.StringVar(&ra.logDir, "log-dir", "", "Log directory (defaults to ~/.local/state/silhouette/logs)")
	fs.BoolVar(&ra.noLog, "no-log", false, "Disable log file creation")
}

func runVideo(args []string) error {
	fs := flag.NewFlagSet("video", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Remove the background from a video.\n\nUsage:\n  %s video -i <PATH> -o <DIR> [options]\n\n", appName)
		fs.PrintDefaults()
	}

	var ra runArgs
	applyIOFlags(fs, &ra)
	cfg := config.NewConfig("", "", "")
	applyCommonFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if ra.inputPath == "" || ra.outputDir == "" {
		fs.Usage()
		return fmt.Errorf("-i/--input and -o/--output are required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	inputPath, err := filepath.Abs(ra.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	outputDir, err := filepath.Abs(ra.outputDir)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logDir := ra.logDir
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	rep, logger, err := newReporters(logDir, cfg.Verbose, ra.noLog)
	if err != nil {
		return err
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	ctx, cancel := cancelOnSignal()
	defer cancel()

	_, err = pipeline.RunVideo(ctx, cfg, inputPath, outputDir, rep)
	return err
}

func runImage(args []string) error {
	fs := flag.NewFlagSet("image", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Remove the background from a still image.\n\nUsage:\n  %s image -i <PATH> -o <DIR> [options]\n\n", appName)
		fs.PrintDefaults()
	}

	var ra runArgs
	applyIOFlags(fs, &ra)
	cfg := config.NewConfig("", "", "")
	applyCommonFlags(fs, cfg)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if ra.inputPath == "" || ra.outputDir == "" {
		fs.Usage()
		return fmt.Errorf("-i/--input and -o/--output are required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	inputPath, err := filepath.Abs(ra.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	outputDir, err := filepath.Abs(ra.outputDir)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	logDir := ra.logDir
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	rep, logger, err := newReporters(logDir, cfg.Verbose, ra.noLog)
	if err != nil {
		return err
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	ctx, cancel := cancelOnSignal()
	defer cancel()

	_, err = pipeline.RunImage(ctx, cfg, inputPath, outputDir, rep)
	return err
}

func runBatch(args []string) error {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Process every video/image file in a directory.\n\nUsage:\n  %s batch -i <DIR> -o <DIR> [options]\n\n", appName)
		fs.PrintDefaults()
	}

	var ra runArgs
	applyIOFlags(fs, &ra)
	cfg := config.NewConfig("", "", "")
	applyCommonFlags(fs, cfg)
	parallelFiles := fs.Int("parallel-files", 1, "Number of files processed concurrently (each still runs its own worker pool)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if ra.inputPath == "" || ra.outputDir == "" {
		fs.Usage()
		return fmt.Errorf("-i/--input and -o/--output are required")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	inputDir, err := filepath.Abs(ra.inputPath)
	if err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	outputDir, err := filepath.Abs(ra.outputDir)
	if err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	files, err := discovery.FindMediaFiles(inputDir)
	if err != nil {
		return fmt.Errorf("failed to discover media files: %w", err)
	}

	logDir := ra.logDir
	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	rep, logger, err := newReporters(logDir, cfg.Verbose, ra.noLog)
	if err != nil {
		return err
	}
	if logger != nil {
		logger.Info("Discovered %d media files in %s", len(files), inputDir)
		defer func() { _ = logger.Close() }()
	}

	ctx, cancel := cancelOnSignal()
	defer cancel()

	rep.BatchStarted(reporter.BatchStartInfo{TotalFiles: len(files)})
	results := processBatchFiles(ctx, cfg, files, outputDir, rep, *parallelFiles)

	successful := 0
	for _, r := range results {
		if r.Succeeded {
			successful++
		}
	}
	rep.BatchComplete(reporter.BatchSummary{SuccessfulCount: successful, TotalFiles: len(files), Results: results})

	if successful == 0 && len(files) > 0 {
		return fmt.Errorf("all %d files failed", len(files))
	}
	return nil
}

// processBatchFiles runs each file through the pipeline, bounding
// concurrency to maxParallel via a weighted semaphore so a large batch
// doesn't start every file's worker pool at once. maxParallel <= 1 runs
// strictly sequentially, preserving FileProgress ordering.
func processBatchFiles(ctx context.Context, cfg *config.Config, files []string, outputDir string, rep reporter.Reporter, maxParallel int) []reporter.FileResult {
	if maxParallel < 1 {
		maxParallel = 1
	}

	results := make([]reporter.FileResult, len(files))
	sem := semaphore.NewWeighted(int64(maxParallel))
	var wg sync.WaitGroup

	for i, f := range files {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = reporter.FileResult{Path: f, Error: err.Error()}
			continue
		}

		wg.Add(1)
		go func(i int, f string) {
			defer wg.Done()
			defer sem.Release(1)

			rep.FileProgress(reporter.FileProgressContext{Index: i + 1, Total: len(files), Path: f})

			var runErr error
			if discovery.IsImageFile(f) {
				_, runErr = pipeline.RunImage(ctx, cfg, f, outputDir, rep)
			} else {
				_, runErr = pipeline.RunVideo(ctx, cfg, f, outputDir, rep)
			}

			fr := reporter.FileResult{Path: f}
			if runErr != nil {
				fr.Error = runErr.Error()
				rep.Warning(fmt.Sprintf("%s: %v", f, runErr))
			} else {
				fr.Succeeded = true
			}
			results[i] = fr
		}(i, f)
	}

	wg.Wait()
	return results
}

func runComposite(args []string) error {
	fs := flag.NewFlagSet("composite", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `Alphamerge a matte-key intermediate against its source video and
flatten the result onto its final output.

Usage:
  %s composite -mode <MODE> -video <PATH> -matte <PATH> -o <PATH> [-bg <PATH>] [-codec <CODEC>] [-pixfmt <FMT>]

Modes:
  transparent-video        Re-encode the alphamerged composite alone into an alpha container
  transparent-gif          Alpha-aware animated GIF
  transparent-gif-bg       GIF flattened onto a background image first
  transparent-over-video   Overlay onto a background video
  transparent-over-image   Overlay onto a background still image

`, appName)
		fs.PrintDefaults()
	}

	var mode, videoPath, mattePath, bgPath, outputPath, codec, pixFmt string
	fs.StringVar(&mode, "mode", "transparent-video", "Composite mode")
	fs.StringVar(&videoPath, "video", "", "Path to the original source video")
	fs.StringVar(&mattePath, "matte", "", "Path to the grayscale matte-key intermediate video")
	fs.StringVar(&bgPath, "bg", "", "Path to the background video/image (required for modes that use one)")
	fs.StringVar(&outputPath, "o", "", "Output path")
	fs.StringVar(&codec, "codec", "auto", "Alpha codec: auto, qtrle, libvpx-vp9, prores_ks")
	fs.StringVar(&pixFmt, "pixfmt", "", "Explicit pixel format override (empty derives from -codec)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if videoPath == "" || mattePath == "" || outputPath == "" {
		fs.Usage()
		return fmt.Errorf("-video, -matte, and -o are required")
	}

	m, err := parseMode(mode)
	if err != nil {
		return err
	}

	ctx, cancel := cancelOnSignal()
	defer cancel()

	postCfg := config.Config{AlphaCodec: config.AlphaCodec(codec), PixelFmt: pixFmt}

	job := postprocess.Job{
		Mode:           m,
		VideoPath:      videoPath,
		MatteKeyPath:   mattePath,
		BackgroundPath: bgPath,
		OutputPath:     outputPath,
		AlphaCodec:     postCfg.AlphaCodec,
		PixelFmt:       postCfg.PixelFmt,
	}
	if err := postprocess.Run(ctx, job); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", outputPath)
	return nil
}

func parseMode(s string) (postprocess.Mode, error) {
	switch s {
	case "transparent-video":
		return postprocess.TransparentVideo, nil
	case "transparent-gif":
		return postprocess.TransparentGIF, nil
	case "transparent-gif-bg":
		return postprocess.TransparentGIFWithBackground, nil
	case "transparent-over-video":
		return postprocess.TransparentOverVideo, nil
	case "transparent-over-image":
		return postprocess.TransparentOverImage, nil
	default:
		return 0, fmt.Errorf("unknown composite mode %q", s)
	}
}

func runEnqueue(args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Submit a job to a running worker pool via Redis.\n\nUsage:\n  %s enqueue -i <PATH> -o <DIR> -redis <URL> [options]\n\n", appName)
		fs.PrintDefaults()
	}

	var inputPath, outputDir, redisURL, priority, model string
	fs.StringVar(&inputPath, "i", "", "Input video or image path")
	fs.StringVar(&outputDir, "o", "", "Output directory")
	fs.StringVar(&redisURL, "redis", "redis://127.0.0.1:6379/0", "Redis connection URL")
	fs.StringVar(&priority, "priority", "default", "Queue priority: critical, default, low")
	fs.StringVar(&model, "model", string(config.DefaultModelVariant), "Segmentation model variant")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if inputPath == "" || outputDir == "" {
		fs.Usage()
		return fmt.Errorf("-i and -o are required")
	}

	producer, err := queue.NewProducer(redisURL)
	if err != nil {
		return err
	}
	defer func() { _ = producer.Close() }()

	var p queue.Priority
	switch priority {
	case "critical":
		p = queue.PriorityCritical
	case "low":
		p = queue.PriorityLow
	default:
		p = queue.PriorityDefault
	}

	job := queue.NewJob(inputPath, outputDir, model, time.Now())
	ctx, cancel := cancelOnSignal()
	defer cancel()

	if err := producer.Enqueue(ctx, job, p); err != nil {
		return err
	}
	fmt.Printf("Enqueued job %s\n", job.ID)
	return nil
}

func runWorker(args []string) error {
	fs := flag.NewFlagSet("worker", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Drain queued jobs from Redis and process them.\n\nUsage:\n  %s worker -redis <URL> [options]\n\n", appName)
		fs.PrintDefaults()
	}

	var redisURL, pgDSN, logDir string
	var concurrency int
	var verbose bool
	fs.StringVar(&redisURL, "redis", "redis://127.0.0.1:6379/0", "Redis connection URL")
	fs.StringVar(&pgDSN, "pg-dsn", "", "Postgres DSN for outcome persistence (optional)")
	fs.StringVar(&logDir, "log-dir", "", "Log directory")
	fs.IntVar(&concurrency, "concurrency", 1, "Number of jobs processed concurrently")
	fs.BoolVar(&verbose, "verbose", false, "Enable verbose output")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if logDir == "" {
		logDir = logging.DefaultLogDir()
	}
	logger, err := logging.Setup(logDir, verbose, false, os.Args)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	if logger != nil {
		defer func() { _ = logger.Close() }()
	}

	var store *queue.Store
	if pgDSN != "" {
		store, err = queue.OpenStore(pgDSN)
		if err != nil {
			return fmt.Errorf("failed to open outcome store: %w", err)
		}
		defer func() { _ = store.Close() }()
	}

	proc := &queueProcessor{logger: logger}
	consumer, err := queue.NewConsumer(queue.ConsumerConfig{
		RedisURL:    redisURL,
		Concurrency: concurrency,
		Processor:   proc,
		Logger:      logger,
		Store:       store,
	})
	if err != nil {
		return err
	}

	if logger != nil {
		logger.Info("Worker pool listening on %s (concurrency=%d)", redisURL, concurrency)
	}

	errc := make(chan error, 1)
	go func() { errc <- consumer.Start() }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		consumer.Stop()
		return nil
	case err := <-errc:
		return err
	}
}

// queueProcessor adapts a queued Job into a pipeline run, dispatching to
// RunVideo or RunImage by the input file's extension.
type queueProcessor struct {
	logger *logging.Logger
}

func (p *queueProcessor) Process(ctx context.Context, job queue.Job) error {
	cfg := config.NewConfig(job.InputPath, job.OutputDir, "")
	if job.ModelName != "" {
		cfg.ModelVariant = config.ModelVariant(job.ModelName)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(job.OutputDir, 0o755); err != nil {
		return err
	}

	var rep reporter.Reporter = reporter.NullReporter{}
	if p.logger != nil {
		rep = reporter.NewLogReporter(p.logger.Writer())
	}

	if discovery.IsImageFile(job.InputPath) {
		_, err := pipeline.RunImage(ctx, cfg, job.InputPath, job.OutputDir, rep)
		return err
	}
	_, err := pipeline.RunVideo(ctx, cfg, job.InputPath, job.OutputDir, rep)
	return err
}
