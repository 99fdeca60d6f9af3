package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/silhouette/internal/frame"
	"github.com/five82/silhouette/internal/model"
)

type fakeSource struct {
	frames map[int][]byte
}

func (s *fakeSource) Take(index int) ([]byte, bool) {
	p, ok := s.frames[index]
	return p, ok
}

func (s *fakeSource) Release(index int) {}

type fakeSink struct {
	mu    sync.Mutex
	masks map[int]frame.Mask
	dead  map[int]error
}

func newFakeSink() *fakeSink {
	return &fakeSink{masks: make(map[int]frame.Mask), dead: make(map[int]error)}
}

func (s *fakeSink) PutMask(index int, mask frame.Mask) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.masks[index] = mask
}

func (s *fakeSink) MarkWorkerDead(worker int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dead[worker] = err
}

type fakeEngine struct {
	failOn int // batch number to fail on; -1 never fails
	calls  int
}

func (e *fakeEngine) Infer(ctx context.Context, batch []frame.Frame) ([]frame.Mask, error) {
	e.calls++
	if e.failOn >= 0 && e.calls > e.failOn {
		return nil, errors.New("inference failed")
	}
	masks := make([]frame.Mask, len(batch))
	for i, f := range batch {
		masks[i] = frame.Mask{Index: f.Index, Width: f.Width, Height: f.Height, Pix: make([]byte, f.Width*f.Height)}
	}
	return masks, nil
}

func (e *fakeEngine) Close() error { return nil }

func makeFrames(n int) map[int][]byte {
	frames := make(map[int][]byte, n)
	for i := 0; i < n; i++ {
		frames[i] = []byte{byte(i)}
	}
	return frames
}

func TestPoolRunProducesAllMasks(t *testing.T) {
	const total = 10
	src := &fakeSource{frames: makeFrames(total)}
	sink := newFakeSink()

	p := &Pool{
		Workers:     3,
		BatchSize:   2,
		TotalFrames: total,
		Width:       1,
		Height:      1,
		Heartbeat:   time.Second,
		NewEngine:   func() (model.Engine, error) { return &fakeEngine{failOn: -1}, nil },
	}

	if err := p.Run(context.Background(), src, sink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.masks) != total {
		t.Fatalf("got %d masks, want %d", len(sink.masks), total)
	}
	for i := 0; i < total; i++ {
		if _, ok := sink.masks[i]; !ok {
			t.Errorf("missing mask for frame %d", i)
		}
	}
}

func TestPoolRunPropagatesEngineConstructionFailure(t *testing.T) {
	src := &fakeSource{frames: makeFrames(4)}
	sink := newFakeSink()

	p := &Pool{
		Workers:     2,
		BatchSize:   2,
		TotalFrames: 4,
		Width:       1,
		Height:      1,
		Heartbeat:   time.Second,
		NewEngine:   func() (model.Engine, error) { return nil, errors.New("no weights") },
	}

	if err := p.Run(context.Background(), src, sink); err == nil {
		t.Error("expected Run to return an error when engine construction fails")
	}
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.dead) == 0 {
		t.Error("expected MarkWorkerDead to be called")
	}
}

func TestPoolRunPropagatesInferenceFailure(t *testing.T) {
	src := &fakeSource{frames: makeFrames(4)}
	sink := newFakeSink()

	p := &Pool{
		Workers:     1,
		BatchSize:   2,
		TotalFrames: 4,
		Width:       1,
		Height:      1,
		Heartbeat:   time.Second,
		NewEngine:   func() (model.Engine, error) { return &fakeEngine{failOn: 0}, nil },
	}

	if err := p.Run(context.Background(), src, sink); err == nil {
		t.Error("expected Run to return an error when inference fails")
	}
}

func TestPoolRunStopsOnClosedSource(t *testing.T) {
	src := &fakeSource{frames: map[int][]byte{}} // Take always misses
	sink := newFakeSink()

	p := &Pool{
		Workers:     1,
		BatchSize:   2,
		TotalFrames: 4,
		Width:       1,
		Height:      1,
		Heartbeat:   time.Second,
		NewEngine:   func() (model.Engine, error) { return &fakeEngine{failOn: -1}, nil },
	}

	if err := p.Run(context.Background(), src, sink); err != nil {
		t.Errorf("Run should return nil when the source closes early, got %v", err)
	}
}
