// Package silhouette provides a Go library for removing backgrounds from
// video and still images using the U^2-Net family of segmentation
// networks.
//
// Basic usage:
//
//	proc, err := silhouette.New(
//	    silhouette.WithModelVariant(config.VariantU2NetP),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := proc.RemoveVideo(ctx, "input.mp4", "output/", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Printf("Wrote %s (%d frames)\n", result.OutputFile, result.Frames)
package silhouette

import (
	"context"
	"fmt"
	"os"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/discovery"
	"github.com/five82/silhouette/internal/pipeline"
	"github.com/five82/silhouette/internal/reporter"
)

// Processor is the main entry point for background removal.
type Processor struct {
	config *config.Config
}

// Result contains the result of a single file run.
type Result struct {
	OutputFile string
	Frames     int
	Elapsed    float64
}

// BatchResult contains the result of a batch run.
type BatchResult struct {
	Results         []Result
	SuccessfulCount int
	TotalFiles      int
}

// Option configures the processor.
type Option func(*config.Config)

// New creates a new Processor with the given options.
func New(opts ...Option) (*Processor, error) {
	cfg := config.NewConfig(".", ".", ".")

	for _, opt := range opts {
		opt(cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Processor{config: cfg}, nil
}

// WithModelVariant selects the segmentation network.
func WithModelVariant(v config.ModelVariant) Option {
	return func(c *config.Config) { c.ModelVariant = v }
}

// WithWorkers sets the number of parallel segmentation workers.
func WithWorkers(workers int) Option {
	return func(c *config.Config) { c.Workers = workers }
}

// WithGPUBatchSize sets the number of frames per inference batch.
func WithGPUBatchSize(size int) Option {
	return func(c *config.Config) { c.GPUBatchSize = size }
}

// WithFrameLimit caps the number of frames processed; pass -1 for no cap.
func WithFrameLimit(limit int) Option {
	return func(c *config.Config) { c.FrameLimit = limit }
}

// WithAlphaMatting enables local color-line alpha matting for still-image cutouts.
func WithAlphaMatting(enabled bool) Option {
	return func(c *config.Config) { c.AlphaMatting = enabled }
}

// RemoveVideo removes the background from a single video file, producing
// a matte-key intermediate. Use internal post-processing (via the CLI's
// composite subcommands) to flatten it onto a background.
func (p *Processor) RemoveVideo(ctx context.Context, input, outputDir string, handler EventHandler) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler)
	}

	r, err := pipeline.RunVideo(ctx, p.config, input, outputDir, rep)
	if err != nil {
		return nil, err
	}
	return &Result{OutputFile: r.OutputPath, Frames: r.Frames, Elapsed: r.Elapsed.Seconds()}, nil
}

// RemoveImage removes the background from a single still image.
func (p *Processor) RemoveImage(ctx context.Context, input, outputDir string, handler EventHandler) (*Result, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler)
	}

	r, err := pipeline.RunImage(ctx, p.config, input, outputDir, rep)
	if err != nil {
		return nil, err
	}
	return &Result{OutputFile: r.OutputPath, Frames: 1, Elapsed: r.Elapsed.Seconds()}, nil
}

// RemoveBatch processes multiple video or image files, dispatching each
// to RemoveVideo or RemoveImage by extension.
func (p *Processor) RemoveBatch(ctx context.Context, inputs []string, outputDir string, handler EventHandler) (*BatchResult, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	var rep reporter.Reporter = reporter.NullReporter{}
	if handler != nil {
		rep = newEventReporter(handler)
	}
	rep.BatchStarted(reporter.BatchStartInfo{TotalFiles: len(inputs)})

	batch := &BatchResult{TotalFiles: len(inputs)}
	var fileResults []reporter.FileResult

	for i, input := range inputs {
		rep.FileProgress(reporter.FileProgressContext{Index: i + 1, Total: len(inputs), Path: input})

		var result *Result
		var err error
		if discovery.IsImageFile(input) {
			result, err = p.RemoveImage(ctx, input, outputDir, handler)
		} else {
			result, err = p.RemoveVideo(ctx, input, outputDir, handler)
		}

		fr := reporter.FileResult{Path: input}
		if err != nil {
			fr.Error = err.Error()
			rep.Warning(fmt.Sprintf("%s: %v", input, err))
		} else {
			fr.Succeeded = true
			batch.Results = append(batch.Results, *result)
			batch.SuccessfulCount++
		}
		fileResults = append(fileResults, fr)
	}

	rep.BatchComplete(reporter.BatchSummary{
		SuccessfulCount: batch.SuccessfulCount,
		TotalFiles:      batch.TotalFiles,
		Results:         fileResults,
	})

	return batch, nil
}

// FindMedia finds video and image files in a directory.
func FindMedia(dir string) ([]string, error) {
	return discovery.FindMediaFiles(dir)
}

// eventReporter adapts EventHandler to the Reporter interface.
type eventReporter struct {
	handler EventHandler
}

func newEventReporter(handler EventHandler) *eventReporter {
	return &eventReporter{handler: handler}
}

func (r *eventReporter) Device(reporter.DeviceSummary)        {}
func (r *eventReporter) ModelReady(reporter.ModelSummary)     {}
func (r *eventReporter) SourceProbed(reporter.SourceSummary)  {}
func (r *eventReporter) StageProgress(reporter.StageProgress) {}
func (r *eventReporter) ProcessingStarted(int)                {}

func (r *eventReporter) ProcessingProgress(p reporter.ProgressSnapshot) {
	_ = r.handler(ProcessingProgressEvent{
		BaseEvent:   BaseEvent{EventType: EventTypeProcessingProgress, Time: NewTimestamp()},
		FramesDone:  p.FramesDone,
		TotalFrames: p.TotalFrames,
		FPS:         p.FPS,
		ETASeconds:  p.ETASeconds,
	})
}

func (r *eventReporter) PostProcessComplete(reporter.PostProcessSummary) {}

func (r *eventReporter) RunComplete(s reporter.RunOutcome) {
	_ = r.handler(RunCompleteEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeRunComplete, Time: NewTimestamp()},
		InputPath:  s.InputPath,
		OutputPath: s.OutputPath,
		Frames:     s.Frames,
		Elapsed:    s.Elapsed,
	})
}

func (r *eventReporter) Warning(message string) {
	_ = r.handler(WarningEvent{
		BaseEvent: BaseEvent{EventType: EventTypeWarning, Time: NewTimestamp()},
		Message:   message,
	})
}

func (r *eventReporter) Error(e reporter.ReporterError) {
	_ = r.handler(ErrorEvent{
		BaseEvent:  BaseEvent{EventType: EventTypeError, Time: NewTimestamp()},
		Title:      e.Title,
		Message:    e.Message,
		Context:    e.Context,
		Suggestion: e.Suggestion,
	})
}

func (r *eventReporter) BatchStarted(reporter.BatchStartInfo)      {}
func (r *eventReporter) FileProgress(reporter.FileProgressContext) {}

func (r *eventReporter) BatchComplete(s reporter.BatchSummary) {
	_ = r.handler(BatchCompleteEvent{
		BaseEvent:       BaseEvent{EventType: EventTypeBatchComplete, Time: NewTimestamp()},
		SuccessfulCount: s.SuccessfulCount,
		TotalFiles:      s.TotalFiles,
	})
}

func (r *eventReporter) Verbose(string) {}
