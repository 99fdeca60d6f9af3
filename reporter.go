// Package silhouette provides a Go library for background removal from
// video and still images.
//
// This file re-exports the internal Reporter interface and associated
// types to allow callers to receive all pipeline events directly.
package silhouette

import "github.com/five82/silhouette/internal/reporter"

// Reporter defines the interface for progress reporting during a run.
// Implement this interface to receive detailed events about processing
// progress.
type Reporter = reporter.Reporter

// NullReporter is a no-op reporter that discards all updates.
type NullReporter = reporter.NullReporter

// DeviceSummary contains the selected compute device.
type DeviceSummary = reporter.DeviceSummary

// ModelSummary describes the segmentation network in use.
type ModelSummary = reporter.ModelSummary

// SourceSummary contains probed input metadata.
type SourceSummary = reporter.SourceSummary

// StageProgress represents a generic stage update.
type StageProgress = reporter.StageProgress

// ProgressSnapshot contains frame-processing progress information.
type ProgressSnapshot = reporter.ProgressSnapshot

// PostProcessSummary contains composite post-processor results.
type PostProcessSummary = reporter.PostProcessSummary

// RunOutcome contains final results for one input.
type RunOutcome = reporter.RunOutcome

// ReporterError contains error information.
type ReporterError = reporter.ReporterError

// BatchStartInfo contains batch start metadata.
type BatchStartInfo = reporter.BatchStartInfo

// FileProgressContext contains current file index within a batch.
type FileProgressContext = reporter.FileProgressContext

// BatchSummary contains batch completion information.
type BatchSummary = reporter.BatchSummary

// FileResult contains per-file processing result.
type FileResult = reporter.FileResult
