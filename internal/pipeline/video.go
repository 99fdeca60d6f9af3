// Package pipeline wires together device selection, model loading, frame
// demuxing, the worker pool, result assembly, and encoding into a single
// run over one video file.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/five82/silhouette/internal/assembler"
	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/encodersink"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/fetch"
	"github.com/five82/silhouette/internal/ffmpegio"
	"github.com/five82/silhouette/internal/framebuffer"
	"github.com/five82/silhouette/internal/model"
	"github.com/five82/silhouette/internal/reporter"
	"github.com/five82/silhouette/internal/util"
	"github.com/five82/silhouette/internal/worker"
)

// VideoResult reports the outcome of one video run.
type VideoResult struct {
	OutputPath string
	Frames     int
	Elapsed    time.Duration
}

// RunVideo demuxes input, runs it through the segmentation pipeline, and
// writes the matte-key intermediate to outputDir. The caller runs any
// further post-processing (internal/postprocess) on the result.
func RunVideo(ctx context.Context, cfg *config.Config, input, outputDir string, rep reporter.Reporter) (*VideoResult, error) {
	start := time.Now()

	if err := util.EnsureDirectoryWritable(outputDir); err != nil {
		return nil, fmt.Errorf("%w: %v", errs.PipelineConfig, err)
	}
	util.CheckDiskSpace(outputDir, func(format string, args ...any) {
		rep.Warning(fmt.Sprintf(format, args...))
	})

	dev := device.Probe()
	rep.Device(reporter.DeviceSummary{Kind: dev.Kind.String(), Name: dev.Name})

	alreadyCached := false
	if p, err := model.CachePath(cfg.ModelVariant); err == nil {
		if fi, statErr := os.Stat(p); statErr == nil && fi.Size() > 0 {
			alreadyCached = true
		}
	}

	fetcher := fetch.NewFetcher()
	weightsPath, err := fetcher.Ensure(ctx, cfg.ModelVariant)
	if err != nil {
		return nil, err
	}
	rep.ModelReady(reporter.ModelSummary{Variant: string(cfg.ModelVariant), Path: weightsPath, Downloaded: !alreadyCached})

	src, err := ffmpegio.Open(ctx, input, config.PipelineHeight, cfg.FrameLimit)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	totalFrames := src.Info.TotalFrames
	if cfg.FrameLimit > 0 && cfg.FrameLimit < totalFrames {
		totalFrames = cfg.FrameLimit
	}
	rep.SourceProbed(reporter.SourceSummary{
		Width: src.Info.Width, Height: src.Info.Height,
		FrameRate: src.Info.FrameRate, TotalFrames: totalFrames, HasAudio: src.Info.HasAudio,
	})

	buf := framebuffer.New(cfg.BufferCapacity())

	frames, decodeErrc := src.Frames(ctx)
	go func() {
		for f := range frames {
			if !buf.Put(f.Index, f.Pix) {
				return
			}
		}
		var closeErr error
		select {
		case closeErr = <-decodeErrc:
		default:
		}
		buf.Close(closeErr)
	}()

	outputPath := filepath.Join(outputDir, mattePrefix(input)+".mov")
	fpsNum, fpsDen := effectiveFrameRate(cfg, src.Info.FPSNum, src.Info.FPSDen)
	sink := encodersink.New(outputPath, fpsNum, fpsDen)

	asm := assembler.New(sink, totalFrames)

	pool := worker.NewPool(cfg, dev, src.Width, src.Height, totalFrames, weightsPath)

	rep.ProcessingStarted(totalFrames)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	poolErrc := make(chan error, 1)
	go func() {
		poolErrc <- pool.Run(runCtx, buf, asm)
	}()

	drainErr := asm.Drain(runCtx, pool.Heartbeat)
	cancel()
	poolErr := <-poolErrc

	if closeErr := sink.Close(); closeErr != nil && drainErr == nil {
		drainErr = closeErr
	}

	if drainErr != nil {
		return nil, drainErr
	}
	if poolErr != nil {
		return nil, fmt.Errorf("%w: %v", errs.WorkerDied, poolErr)
	}

	elapsed := time.Since(start)
	rep.RunComplete(reporter.RunOutcome{
		InputPath: input, OutputPath: outputPath, Frames: totalFrames, Elapsed: elapsed.Seconds(),
	})

	return &VideoResult{OutputPath: outputPath, Frames: totalFrames, Elapsed: elapsed}, nil
}

// effectiveFrameRate resolves the rational frame rate to pace the encoder
// with: an explicit override (as num/1), or the probed source rate.
func effectiveFrameRate(cfg *config.Config, probedNum, probedDen int64) (num, den int64) {
	if cfg.FrameRateOverride > 0 {
		return int64(cfg.FrameRateOverride), 1
	}
	return probedNum, probedDen
}

func mattePrefix(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base)) + "_matte"
}
