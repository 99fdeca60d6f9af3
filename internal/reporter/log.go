package reporter

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// LogReporter writes run events to a log file.
type LogReporter struct {
	w                  io.Writer
	mu                 sync.Mutex
	lastProgressBucket int // Track progress in 5% buckets
}

// NewLogReporter creates a new log reporter that writes to the given writer.
func NewLogReporter(w io.Writer) *LogReporter {
	return &LogReporter{
		w:                  w,
		lastProgressBucket: -1,
	}
}

func (r *LogReporter) log(level, format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	msg := fmt.Sprintf(format, args...)
	_, _ = fmt.Fprintf(r.w, "%s [%s] %s\n", timestamp, level, msg)
}

func (r *LogReporter) Device(summary DeviceSummary) {
	r.log("INFO", "=== DEVICE ===")
	r.log("INFO", "Selected: %s (%s)", summary.Kind, summary.Name)
}

func (r *LogReporter) ModelReady(summary ModelSummary) {
	r.log("INFO", "Model: %s at %s", summary.Variant, summary.Path)
	if summary.Downloaded {
		r.log("INFO", "Weights downloaded this run")
	}
}

func (r *LogReporter) SourceProbed(summary SourceSummary) {
	r.log("INFO", "=== SOURCE ===")
	r.log("INFO", "Resolution: %dx%d", summary.Width, summary.Height)
	r.log("INFO", "Frame rate: %.3f", summary.FrameRate)
	r.log("INFO", "Total frames: %d", summary.TotalFrames)
	r.log("INFO", "Audio: %v", summary.HasAudio)
}

func (r *LogReporter) StageProgress(update StageProgress) {
	r.log("INFO", "[%s] %s", strings.ToUpper(update.Stage), update.Message)
}

func (r *LogReporter) ProcessingStarted(totalFrames int) {
	r.mu.Lock()
	r.lastProgressBucket = -1
	r.mu.Unlock()
	r.log("INFO", "=== PROCESSING STARTED === (total frames: %d)", totalFrames)
}

func (r *LogReporter) ProcessingProgress(progress ProgressSnapshot) {
	if progress.TotalFrames == 0 {
		return
	}
	percent := float64(progress.FramesDone) / float64(progress.TotalFrames) * 100
	bucket := int(percent / 5)
	r.mu.Lock()
	if bucket > r.lastProgressBucket && bucket <= 20 {
		r.lastProgressBucket = bucket
		r.mu.Unlock()
		r.log("INFO", "Progress: %.0f%% (%d/%d, fps %.1f, eta %ds)",
			percent, progress.FramesDone, progress.TotalFrames, progress.FPS, progress.ETASeconds)
	} else {
		r.mu.Unlock()
	}
}

func (r *LogReporter) PostProcessComplete(summary PostProcessSummary) {
	r.log("INFO", "Post-process (%s) -> %s", summary.Mode, summary.OutputPath)
}

func (r *LogReporter) RunComplete(summary RunOutcome) {
	r.log("INFO", "=== COMPLETE ===")
	r.log("INFO", "Input: %s", summary.InputPath)
	r.log("INFO", "Output: %s", summary.OutputPath)
	r.log("INFO", "Frames: %d in %.1fs", summary.Frames, summary.Elapsed)
}

func (r *LogReporter) Warning(message string) {
	r.log("WARN", "%s", message)
}

func (r *LogReporter) Error(err ReporterError) {
	r.log("ERROR", "%s: %s", err.Title, err.Message)
	if err.Context != "" {
		r.log("ERROR", "  Context: %s", err.Context)
	}
	if err.Suggestion != "" {
		r.log("ERROR", "  Suggestion: %s", err.Suggestion)
	}
}

func (r *LogReporter) BatchStarted(info BatchStartInfo) {
	r.log("INFO", "=== BATCH STARTED ===")
	r.log("INFO", "Processing %d files", info.TotalFiles)
}

func (r *LogReporter) FileProgress(context FileProgressContext) {
	r.log("INFO", "--- File %d of %d: %s ---", context.Index, context.Total, context.Path)
}

func (r *LogReporter) BatchComplete(summary BatchSummary) {
	r.log("INFO", "=== BATCH COMPLETE ===")
	r.log("INFO", "%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles)
	for _, result := range summary.Results {
		status := "ok"
		if !result.Succeeded {
			status = "FAILED: " + result.Error
		}
		r.log("INFO", "  - %s (%s)", result.Path, status)
	}
}

func (r *LogReporter) Verbose(message string) {
	r.log("DEBUG", "%s", message)
}
