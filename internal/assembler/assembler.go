// Package assembler fans in worker results and drains them to the encoder
// sink in strict frame order, detecting workers that stop producing.
package assembler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/five82/silhouette/internal/errs"
	"github.com/five82/silhouette/internal/frame"
)

// Sink is where completed, ordered masks are delivered.
type Sink interface {
	WriteMask(ctx context.Context, mask frame.Mask) error
}

// Assembler holds out-of-order masks until their turn and drains them to
// Sink in ascending index order, starting at 0.
type Assembler struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending map[int]frame.Mask
	next    int
	total   int
	dead    map[int]error
	lastAt  time.Time
	sink    Sink
}

// New creates an Assembler expecting totalFrames masks, indices 0..n-1.
func New(sink Sink, totalFrames int) *Assembler {
	a := &Assembler{
		pending: make(map[int]frame.Mask),
		dead:    make(map[int]error),
		total:   totalFrames,
		lastAt:  time.Now(),
		sink:    sink,
	}
	a.cond = sync.NewCond(&a.mu)
	return a
}

// PutMask registers a mask for draining. Safe to call from any worker
// goroutine; does not block.
func (a *Assembler) PutMask(index int, mask frame.Mask) {
	a.mu.Lock()
	a.pending[index] = mask
	a.lastAt = time.Now()
	a.cond.Broadcast()
	a.mu.Unlock()
}

// MarkWorkerDead records that worker w exited with err. Drain will
// surface this once it can no longer make progress.
func (a *Assembler) MarkWorkerDead(w int, err error) {
	a.mu.Lock()
	a.dead[w] = err
	a.cond.Broadcast()
	a.mu.Unlock()
}

// Drain writes masks to Sink in index order until totalFrames have been
// written, ctx is cancelled, or heartbeat elapses with no progress and at
// least one worker has died.
func (a *Assembler) Drain(ctx context.Context, heartbeat time.Duration) error {
	for {
		a.mu.Lock()
		for {
			if _, ready := a.pending[a.next]; ready {
				break
			}
			if a.next >= a.total {
				a.mu.Unlock()
				return nil
			}
			if len(a.dead) > 0 && time.Since(a.lastAt) > heartbeat {
				err := a.firstDeadErr()
				a.mu.Unlock()
				return fmt.Errorf("%w: no progress for %s after worker failure: %v", errs.WorkerDied, heartbeat, err)
			}
			if err := ctx.Err(); err != nil {
				a.mu.Unlock()
				return err
			}
			a.waitOrTimeout(heartbeat)
		}
		mask := a.pending[a.next]
		delete(a.pending, a.next)
		a.next++
		a.mu.Unlock()

		if err := a.sink.WriteMask(ctx, mask); err != nil {
			return fmt.Errorf("%w: writing mask %d: %v", errs.EncoderFailure, mask.Index, err)
		}

		if a.next >= a.total {
			return nil
		}
	}
}

// firstDeadErr returns any one recorded worker error, for reporting.
func (a *Assembler) firstDeadErr() error {
	for _, err := range a.dead {
		return err
	}
	return nil
}

// waitOrTimeout waits on cond with a bound so Drain re-checks ctx and the
// heartbeat deadline even without a new broadcast.
func (a *Assembler) waitOrTimeout(d time.Duration) {
	done := make(chan struct{})
	timer := time.AfterFunc(d, func() {
		a.mu.Lock()
		a.cond.Broadcast()
		a.mu.Unlock()
	})
	go func() {
		a.cond.Wait()
		close(done)
	}()
	<-done
	timer.Stop()
}
