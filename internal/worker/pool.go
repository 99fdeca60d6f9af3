package worker

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/silhouette/internal/config"
	"github.com/five82/silhouette/internal/device"
	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/frame"
	"github.com/five82/silhouette/internal/model"
)

// Source supplies frames by index, blocking until available, and lets a
// worker free a frame's slot once it has been consumed.
type Source interface {
	Take(index int) ([]byte, bool)
	Release(index int)
}

// Sink receives finished masks keyed by frame index.
type Sink interface {
	PutMask(index int, mask frame.Mask)
	MarkWorkerDead(worker int, err error)
}

// EngineFactory builds one Engine per worker goroutine. Each worker
// specializes its own engine exactly once, mirroring the reference's
// first-batch torch.jit.trace specialization.
type EngineFactory func() (model.Engine, error)

// Pool runs Workers goroutines, each draining its own static batch
// sequence from src and delivering masks to sink.
type Pool struct {
	Workers     int
	BatchSize   int
	TotalFrames int
	Width       uint32
	Height      uint32
	NewEngine   EngineFactory
	Heartbeat   time.Duration
}

// NewPool builds a Pool from run configuration, the probed frame
// dimensions, and the device and weights path each worker's Engine is
// constructed from.
func NewPool(cfg *config.Config, dev device.Device, width, height uint32, totalFrames int, weightsPath string) *Pool {
	return &Pool{
		Workers:     cfg.Workers,
		BatchSize:   cfg.GPUBatchSize,
		TotalFrames: totalFrames,
		Width:       width,
		Height:      height,
		Heartbeat:   time.Duration(config.HeartbeatSeconds) * time.Second,
		NewEngine: func() (model.Engine, error) {
			return model.New(cfg.ModelVariant, dev, weightsPath)
		},
	}
}

// Run drains frames from src and writes masks to sink until every
// worker's batch schedule is exhausted or ctx is cancelled. A worker that
// returns an error (engine construction or inference failure) is reported
// to sink as dead and the group is cancelled.
func (p *Pool) Run(ctx context.Context, src Source, sink Sink) error {
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < p.Workers; w++ {
		w := w
		g.Go(func() error {
			return p.runWorker(ctx, w, src, sink)
		})
	}

	return g.Wait()
}

func (p *Pool) runWorker(ctx context.Context, w int, src Source, sink Sink) error {
	engine, err := p.NewEngine()
	if err != nil {
		sink.MarkWorkerDead(w, err)
		return fmt.Errorf("%w: worker %d engine init: %v", errs.WorkerDied, w, err)
	}
	defer engine.Close()

	sched := Schedule{Worker: w, Workers: p.Workers, BatchSize: p.BatchSize}

	for k := 0; ; k++ {
		indices := sched.Batch(k, p.TotalFrames)
		if len(indices) == 0 {
			return nil
		}

		batch := make([]frame.Frame, 0, len(indices))
		for _, idx := range indices {
			pix, ok := src.Take(idx)
			if !ok {
				return nil // source closed early (cancellation upstream)
			}
			batch = append(batch, frame.Frame{Index: idx, Width: p.Width, Height: p.Height, Pix: pix})
		}

		masks, err := engine.Infer(ctx, batch)
		if err != nil {
			sink.MarkWorkerDead(w, err)
			return fmt.Errorf("%w: worker %d batch %d: %v", errs.WorkerDied, w, k, err)
		}
		for _, idx := range indices {
			src.Release(idx)
		}

		for _, m := range masks {
			sink.PutMask(m.Index, m)
		}
	}
}
