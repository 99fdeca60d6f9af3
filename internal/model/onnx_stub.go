//go:build !onnx

package model

import (
	"context"
	"fmt"
	"os"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/frame"
)

var errModelLoad = errs.ModelLoad

// stubEngine stands in for the real ONNX Runtime backend when the binary
// is built without the onnx tag (no cgo toolchain / no libonnxruntime at
// build time). It still validates that the weights file exists and is
// non-trivially sized, and produces a deterministic, luminance-based
// foreground estimate so the rest of the pipeline (batching, ordering,
// encoding) is fully exercisable without the real network. It is not a
// segmentation model.
type stubEngine struct {
	variant config.ModelVariant
}

func newEngine(variant config.ModelVariant, _ device.Device, weightsPath string) (Engine, error) {
	fi, err := os.Stat(weightsPath)
	if err != nil {
		return nil, fmt.Errorf("%w: weights not found at %s", errModelLoad, weightsPath)
	}
	if fi.Size() < 1000 {
		return nil, fmt.Errorf("%w: weights file at %s is truncated (%d bytes)", errModelLoad, weightsPath, fi.Size())
	}
	return &stubEngine{variant: variant}, nil
}

func (e *stubEngine) Infer(ctx context.Context, batch []frame.Frame) ([]frame.Mask, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	masks := make([]frame.Mask, len(batch))
	for i, f := range batch {
		masks[i] = luminanceMask(f)
	}
	return masks, nil
}

func (e *stubEngine) Close() error { return nil }

// luminanceMask treats brighter pixels as more likely foreground, purely
// as a placeholder signal so downstream cutout/matting code has a
// realistic-shaped mask to operate on in builds without the real backend.
// It still runs through the same square-resize round trip as the real
// backend so the two engines exercise identical downstream shapes.
func luminanceMask(f frame.Frame) frame.Mask {
	square := resizeFrameBilinear(f, squareSize)
	plane := make([]float32, int(square.Width)*int(square.Height))
	for i := range plane {
		r := float32(square.Pix[i*3+0])
		g := float32(square.Pix[i*3+1])
		b := float32(square.Pix[i*3+2])
		plane[i] = 0.2126*r + 0.7152*g + 0.0722*b
	}
	mask := maskFromChannel(plane, square.Width, square.Height, f.Index)
	return frame.Mask{
		Index:  f.Index,
		Width:  f.Width,
		Height: f.Height,
		Pix:    resizeMaskBilinear(mask.Pix, square.Width, square.Height, f.Width, f.Height),
	}
}
