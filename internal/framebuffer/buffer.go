// Package framebuffer holds decoded frames awaiting worker pickup, bounded
// by capacity and draining in index order.
//
// The reference implementation's frame ripper polls
// `while len(frames_dict) > prefetched_samples: time.sleep(0.1)` to apply
// backpressure. A condition variable is a direct, signalling substitute
// for that poll loop: producers block in Put until capacity frees, and
// consumers block in Take until their frame has arrived, with no fixed
// polling interval either way.
package framebuffer

import "sync"

// Buffer is a capacity-bounded, index-keyed store of in-flight frames.
type Buffer struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	notEmpty *sync.Cond
	items    map[int][]byte
	capacity int
	closed   bool
	err      error
}

// New creates a Buffer that holds at most capacity unclaimed frames.
func New(capacity int) *Buffer {
	b := &Buffer{
		items:    make(map[int][]byte),
		capacity: capacity,
	}
	b.notFull = sync.NewCond(&b.mu)
	b.notEmpty = sync.NewCond(&b.mu)
	return b
}

// Put inserts a frame's payload at index, blocking while the buffer is at
// capacity. It returns false if the buffer was closed before the slot
// could be inserted.
func (b *Buffer) Put(index int, payload []byte) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for len(b.items) >= b.capacity && !b.closed {
		b.notFull.Wait()
	}
	if b.closed {
		return false
	}
	b.items[index] = payload
	b.notEmpty.Broadcast()
	return true
}

// Take returns the payload at index without removing it, blocking until
// it is present or the buffer closes. ok is false if the buffer closed
// first. The payload stays in the buffer until Release frees it, so a
// worker can take a whole batch before running inference on it.
func (b *Buffer) Take(index int) (payload []byte, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for {
		if p, found := b.items[index]; found {
			return p, true
		}
		if b.closed {
			return nil, false
		}
		b.notEmpty.Wait()
	}
}

// Release frees the slot at index, unblocking any Put waiting on
// capacity. Called by the worker that took the frame, once inference on
// its batch has returned.
func (b *Buffer) Release(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, found := b.items[index]; found {
		delete(b.items, index)
		b.notFull.Broadcast()
	}
}

// Len reports the number of frames currently held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// Close unblocks all pending Put/Take calls. Subsequent calls fail. err,
// if non-nil, is recorded as the reason (e.g. a demux failure) and can be
// retrieved with Err.
func (b *Buffer) Close(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	b.err = err
	b.notFull.Broadcast()
	b.notEmpty.Broadcast()
}

// Err returns the error passed to Close, if any.
func (b *Buffer) Err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.err
}
