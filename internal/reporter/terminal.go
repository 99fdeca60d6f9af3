package reporter

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
)

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu         sync.Mutex
	progress   *progressbar.ProgressBar
	maxPercent float64
	lastStage  string
	verbose    bool
	cyan       *color.Color
	green      *color.Color
	yellow     *color.Color
	red        *color.Color
	magenta    *color.Color
	bold       *color.Color
	dim        *color.Color
}

// NewTerminalReporter creates a new terminal reporter with verbose mode disabled.
func NewTerminalReporter() *TerminalReporter {
	return NewTerminalReporterVerbose(false)
}

// NewTerminalReporterVerbose creates a new terminal reporter with configurable verbose mode.
func NewTerminalReporterVerbose(verbose bool) *TerminalReporter {
	return &TerminalReporter{
		verbose: verbose,
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		dim:     color.New(color.Faint),
	}
}

func (r *TerminalReporter) finishProgress() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.maxPercent = 0
}

// labelWidth is the global width for all labels to ensure consistent alignment.
const labelWidth = 14

func (r *TerminalReporter) printLabel(label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", labelWidth, label)
	fmt.Printf("  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) Device(summary DeviceSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("DEVICE")
	r.printLabel("Selected:", fmt.Sprintf("%s (%s)", summary.Kind, summary.Name))
}

func (r *TerminalReporter) ModelReady(summary ModelSummary) {
	r.printLabel("Model:", summary.Variant)
	if summary.Downloaded {
		r.printLabel("Weights:", r.green.Sprint("downloaded"))
	}
}

func (r *TerminalReporter) SourceProbed(summary SourceSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("SOURCE")
	r.printLabel("Resolution:", fmt.Sprintf("%dx%d", summary.Width, summary.Height))
	r.printLabel("Frame rate:", fmt.Sprintf("%.3f", summary.FrameRate))
	r.printLabel("Frames:", fmt.Sprintf("%d", summary.TotalFrames))
	r.printLabel("Audio:", fmt.Sprintf("%v", summary.HasAudio))
}

func (r *TerminalReporter) StageProgress(update StageProgress) {
	r.mu.Lock()
	if r.lastStage != update.Stage {
		r.mu.Unlock()
		fmt.Println()
		_, _ = r.cyan.Println(strings.ToUpper(update.Stage))
		r.mu.Lock()
		r.lastStage = update.Stage
	}
	r.mu.Unlock()
	fmt.Printf("  %s %s\n", r.magenta.Sprint("›"), update.Message)
}

func (r *TerminalReporter) ProcessingStarted(totalFrames int) {
	r.finishProgress()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.progress = progressbar.NewOptions64(
		100,
		progressbar.OptionSetDescription(""),
		progressbar.OptionSetWidth(40),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowDescriptionAtLineEnd(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "Processing [",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) ProcessingProgress(progress ProgressSnapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.progress == nil || progress.TotalFrames == 0 {
		return
	}

	percent := float64(progress.FramesDone) / float64(progress.TotalFrames) * 100
	if percent > 100 {
		percent = 100
	}
	if percent < 0 {
		percent = 0
	}

	if percent >= r.maxPercent {
		r.maxPercent = percent
		_ = r.progress.Set64(int64(percent))
	}

	desc := fmt.Sprintf("%d/%d frames, fps %.1f, eta %s",
		progress.FramesDone, progress.TotalFrames, progress.FPS, formatETA(progress.ETASeconds))
	r.progress.Describe(desc)
}

func (r *TerminalReporter) PostProcessComplete(summary PostProcessSummary) {
	r.finishProgress()
	fmt.Println()
	_, _ = r.cyan.Println("POST-PROCESS")
	r.printLabel("Mode:", summary.Mode)
	r.printLabel("Output:", r.green.Sprint(summary.OutputPath))
}

func (r *TerminalReporter) RunComplete(summary RunOutcome) {
	r.finishProgress()
	fmt.Println()
	_, _ = r.cyan.Println("RESULTS")
	r.printLabel("Input:", summary.InputPath)
	r.printLabel("Output:", r.green.Sprint(summary.OutputPath))
	r.printLabel("Frames:", fmt.Sprintf("%d", summary.Frames))
	r.printLabel("Time:", fmt.Sprintf("%.1fs", summary.Elapsed))
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Println()
	_, _ = r.yellow.Printf("WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(os.Stderr)
	_, _ = r.red.Fprintf(os.Stderr, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(os.Stderr, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(os.Stderr, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH")
	fmt.Printf("  Processing %d files\n", info.TotalFiles)
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	fmt.Printf("\nFile %s of %d: %s\n",
		r.bold.Sprint(context.Index), context.Total, context.Path)
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	fmt.Println()
	_, _ = r.cyan.Println("BATCH SUMMARY")
	fmt.Printf("  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	for _, result := range summary.Results {
		status := r.green.Sprint("ok")
		if !result.Succeeded {
			status = r.red.Sprint("FAILED: " + result.Error)
		}
		fmt.Printf("  - %s (%s)\n", result.Path, status)
	}
}

func (r *TerminalReporter) Verbose(message string) {
	if !r.verbose {
		return
	}
	fmt.Printf("  %s %s\n", r.dim.Sprint("›"), r.dim.Sprint(message))
}

func formatETA(seconds int64) string {
	if seconds < 0 {
		return "--"
	}
	m := seconds / 60
	s := seconds % 60
	return fmt.Sprintf("%dm%02ds", m, s)
}
