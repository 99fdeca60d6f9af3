// Package errs defines the error taxonomy shared across the pipeline.
//
// Each Kind is a sentinel that callers match with errors.Is; concrete errors
// wrap a Kind with fmt.Errorf("%w: ...", KindX) so the offending path, index,
// or stream tag rides along without losing the taxonomy.
package errs

import "errors"

// Kind identifies a class of pipeline failure.
type Kind error

var (
	// InputFormat covers unrecognized extensions, missing video streams,
	// undetectable frame rates, and corrupt image headers.
	InputFormat Kind = errors.New("input format error")

	// ModelAcquisition covers weight download failures: network errors,
	// size-sanity rejection, or an unwritable cache destination.
	ModelAcquisition Kind = errors.New("model acquisition error")

	// ModelLoad covers weights that are present but truncated or malformed.
	ModelLoad Kind = errors.New("model load error")

	// DeviceInit covers an accelerator being requested but unavailable.
	// No pipeline stage returns it: the onnx engine skips a CUDA execution
	// provider that fails to attach and runs on CPU without a warning.
	DeviceInit Kind = errors.New("device init error")

	// WorkerDied covers a worker goroutine exiting without producing its
	// assigned slot.
	WorkerDied Kind = errors.New("worker died")

	// EncoderFailure covers the encoder subprocess returning non-zero or
	// closing its stdin prematurely.
	EncoderFailure Kind = errors.New("encoder failure")

	// PipelineConfig covers a composite post-processor mode invoked without
	// its required auxiliary input (background video/image).
	PipelineConfig Kind = errors.New("pipeline configuration error")
)

// Remediation returns a short, user-facing hint for a given Kind, or "" if
// the Kind is unrecognized. The CLI appends this to the error line it prints.
func Remediation(err error) string {
	switch {
	case errors.Is(err, InputFormat):
		return "check that the input is a supported video/image file with a valid video stream"
	case errors.Is(err, ModelAcquisition):
		return "check network connectivity and that the model cache directory is writable"
	case errors.Is(err, ModelLoad):
		return "delete the cached weights file and re-run so it can be re-downloaded"
	case errors.Is(err, DeviceInit):
		return "the requested accelerator is unavailable; the run fell back to CPU"
	case errors.Is(err, WorkerDied):
		return "reduce worker count (--workers) on memory-constrained hosts and retry"
	case errors.Is(err, EncoderFailure):
		return "check that ffmpeg is installed and on PATH, and that output path is writable"
	case errors.Is(err, PipelineConfig):
		return "this mode requires an auxiliary background video/image; supply one with --bg"
	default:
		return ""
	}
}
