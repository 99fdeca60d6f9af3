// Package reporter defines the progress-reporting interface the pipeline
// calls into, and the terminal/log implementations of it.
package reporter

// Reporter receives structured updates as a run progresses. Implement
// this interface to integrate silhouette into a larger tool; Terminal and
// Log cover the two built-in CLI modes, and Null discards everything.
type Reporter interface {
	Device(summary DeviceSummary)
	ModelReady(summary ModelSummary)
	SourceProbed(summary SourceSummary)
	StageProgress(update StageProgress)
	ProcessingStarted(totalFrames int)
	ProcessingProgress(progress ProgressSnapshot)
	PostProcessComplete(summary PostProcessSummary)
	RunComplete(summary RunOutcome)
	Warning(message string)
	Error(err ReporterError)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// DeviceSummary reports the compute device chosen for inference.
type DeviceSummary struct {
	Kind string // "cpu", "gpu", "unified"
	Name string
}

// ModelSummary reports the segmentation network used, and whether its
// weights were fetched during this run.
type ModelSummary struct {
	Variant    string
	Path       string
	Downloaded bool
}

// SourceSummary reports probed input metadata.
type SourceSummary struct {
	Width       int
	Height      int
	FrameRate   float64
	TotalFrames int
	HasAudio    bool
}

// StageProgress represents a generic named-stage update (e.g. "demux",
// "matte encode", "post-process").
type StageProgress struct {
	Stage   string
	Message string
}

// ProgressSnapshot reports frame-level processing progress.
type ProgressSnapshot struct {
	FramesDone  int
	TotalFrames int
	FPS         float32
	ETASeconds  int64
}

// PostProcessSummary reports the result of a composite pipeline run.
type PostProcessSummary struct {
	Mode       string
	OutputPath string
}

// RunOutcome reports final results for a single input.
type RunOutcome struct {
	InputPath  string
	OutputPath string
	Frames     int
	Elapsed    float64
}

// ReporterError carries structured error context for display.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchStartInfo describes a multi-file batch about to run.
type BatchStartInfo struct {
	TotalFiles int
}

// FileProgressContext reports which file in a batch is active.
type FileProgressContext struct {
	Index int
	Total int
	Path  string
}

// FileResult reports one batch member's outcome.
type FileResult struct {
	Path      string
	Succeeded bool
	Error     string
}

// BatchSummary reports final batch results.
type BatchSummary struct {
	SuccessfulCount int
	TotalFiles      int
	Results         []FileResult
}

// NullReporter discards every update. Used when a caller drives the
// pipeline programmatically and has no use for progress output.
type NullReporter struct{}

func (NullReporter) Device(DeviceSummary)                   {}
func (NullReporter) ModelReady(ModelSummary)                {}
func (NullReporter) SourceProbed(SourceSummary)              {}
func (NullReporter) StageProgress(StageProgress)             {}
func (NullReporter) ProcessingStarted(int)                   {}
func (NullReporter) ProcessingProgress(ProgressSnapshot)      {}
func (NullReporter) PostProcessComplete(PostProcessSummary)   {}
func (NullReporter) RunComplete(RunOutcome)                   {}
func (NullReporter) Warning(string)                           {}
func (NullReporter) Error(ReporterError)                      {}
func (NullReporter) BatchStarted(BatchStartInfo)              {}
func (NullReporter) FileProgress(FileProgressContext)         {}
func (NullReporter) BatchComplete(BatchSummary)               {}
func (NullReporter) Verbose(string)                           {}
