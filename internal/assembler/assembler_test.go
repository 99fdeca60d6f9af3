package assembler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/five82/silhouette/internal/frame"
)

type recordingSink struct {
	mu      sync.Mutex
	indices []int
}

func (s *recordingSink) WriteMask(ctx context.Context, mask frame.Mask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.indices = append(s.indices, mask.Index)
	return nil
}

func TestDrainOrdersOutOfOrderMasks(t *testing.T) {
	sink := &recordingSink{}
	a := New(sink, 3)

	a.PutMask(2, frame.Mask{Index: 2})
	a.PutMask(0, frame.Mask{Index: 0})
	a.PutMask(1, frame.Mask{Index: 1})

	if err := a.Drain(context.Background(), time.Second); err != nil {
		t.Fatalf("Drain returned error: %v", err)
	}

	want := []int{0, 1, 2}
	if len(sink.indices) != len(want) {
		t.Fatalf("sink.indices = %v, want %v", sink.indices, want)
	}
	for i := range want {
		if sink.indices[i] != want[i] {
			t.Errorf("sink.indices[%d] = %d, want %d", i, sink.indices[i], want[i])
		}
	}
}

func TestDrainZeroTotalReturnsImmediately(t *testing.T) {
	sink := &recordingSink{}
	a := New(sink, 0)
	if err := a.Drain(context.Background(), time.Second); err != nil {
		t.Fatalf("Drain with total=0 returned error: %v", err)
	}
}

func TestDrainReturnsOnContextCancel(t *testing.T) {
	sink := &recordingSink{}
	a := New(sink, 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Drain(ctx, time.Second); err == nil {
		t.Error("expected Drain to return an error for a cancelled context")
	}
}

func TestDrainDetectsDeadWorkerAfterHeartbeat(t *testing.T) {
	sink := &recordingSink{}
	a := New(sink, 2)
	a.MarkWorkerDead(0, errors.New("boom"))

	err := a.Drain(context.Background(), 10*time.Millisecond)
	if err == nil {
		t.Fatal("expected Drain to report the dead worker after the heartbeat elapses")
	}
}
