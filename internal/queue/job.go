// Package queue provides an optional Redis-backed job queue for
// unattended batch runs over many videos, grounded on the Nexus
// VideoAgent worker's asynq/go-redis consumer. It is additive: a single
// invocation runs the pipeline directly with no queue involved at all.
package queue

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const TaskTypeProcess = "silhouette:process"

// Job describes one queued video or image to process.
type Job struct {
	ID          string    `json:"id"`
	InputPath   string    `json:"input_path"`
	OutputDir   string    `json:"output_dir"`
	ModelName   string    `json:"model_variant"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// NewJob assigns a fresh job ID and submission timestamp.
func NewJob(inputPath, outputDir, modelVariant string, submittedAt time.Time) Job {
	return Job{
		ID:          uuid.NewString(),
		InputPath:   inputPath,
		OutputDir:   outputDir,
		ModelName:   modelVariant,
		SubmittedAt: submittedAt,
	}
}

// Marshal serializes a Job for an asynq.Task payload.
func (j Job) Marshal() ([]byte, error) {
	return json.Marshal(j)
}

// Outcome records the terminal state of a processed job, persisted via
// the optional Postgres store.
type Outcome struct {
	JobID      string
	Succeeded  bool
	Error      string
	FinishedAt time.Time
}
