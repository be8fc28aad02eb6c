// Package ringchan provides a bounded channel that never blocks its writer.
package ringchan

import "sync"

// RingChannel is a bounded channel-like buffer with overwrite-oldest semantics.
//
// Writers never block: when the buffer is full the oldest element is dropped
// and counted. Readers treat C() as a normal <-chan T and range over it until
// Close.
//
//	rc := ringchan.New[int](3)
//	for i := 0; i < 10; i++ {
//	    rc.Send(i)
//	}
//	rc.Close()
//	for v := range rc.C() {
//	    fmt.Println(v) // 7, 8, 9
//	}
//
// Send and Close may be called from different goroutines; Send after Close is
// a no-op rather than a panic.
type RingChannel[T any] struct {
	ch      chan T
	mu      sync.Mutex
	closed  bool
	dropped uint64
}

// New creates a RingChannel with the given capacity.
func New[T any](capacity int) *RingChannel[T] {
	if capacity <= 0 {
		panic("ringchan: capacity must be > 0")
	}
	return &RingChannel[T]{ch: make(chan T, capacity)}
}

// C returns the underlying receive-only channel.
func (rc *RingChannel[T]) C() <-chan T {
	return rc.ch
}

// Send inserts an item, discarding the oldest one if the buffer is full.
// It reports false when the channel is already closed.
func (rc *RingChannel[T]) Send(v T) bool {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return false
	}
	for {
		select {
		case rc.ch <- v:
			return true
		default:
		}
		select {
		case <-rc.ch:
			rc.dropped++
		default:
		}
	}
}

// Len returns the number of buffered elements.
func (rc *RingChannel[T]) Len() int {
	return len(rc.ch)
}

// Cap returns the channel capacity.
func (rc *RingChannel[T]) Cap() int {
	return cap(rc.ch)
}

// Dropped returns how many elements were discarded to make room.
func (rc *RingChannel[T]) Dropped() uint64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.dropped
}

// Close closes the underlying channel. Buffered elements stay readable. Safe to call twice.
func (rc *RingChannel[T]) Close() {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if rc.closed {
		return
	}
	rc.closed = true
	close(rc.ch)
}
