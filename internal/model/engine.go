// Package model loads the U^2-Net family segmentation networks and runs
// inference, isolating the rest of the pipeline from the tensor runtime
// backend (real ONNX Runtime via cgo, or a pure-Go fallback).
package model

import (
	"context"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/frame"
)

// Engine specializes to one device and model variant, then runs batches of
// frames through the network. An Engine is not safe for concurrent use by
// multiple goroutines; the worker pool gives each worker its own instance.
type Engine interface {
	// Infer runs the network on a batch of equally-shaped frames and
	// returns one mask per frame, in the same order.
	Infer(ctx context.Context, batch []frame.Frame) ([]frame.Mask, error)

	// Close releases any backend resources (session handles, device
	// memory). Safe to call once after the engine is no longer needed.
	Close() error
}

// New constructs an Engine for the given variant and device. The weights
// must already be present at the resolved cache path; callers run
// fetch.Ensure before calling New.
func New(variant config.ModelVariant, dev device.Device, weightsPath string) (Engine, error) {
	return newEngine(variant, dev, weightsPath)
}
