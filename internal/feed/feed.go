// Package feed provides observable values: a current value plus any number of
// independent observers that are told about every change.
package feed

import (
	"sync"

	"github.com/srg/blescan/internal/ringchan"
)

// Value holds the latest T and republishes it to observers.
//
// Observers receive through a one-slot ring, so a slow observer only ever
// sees the most recent value, and never holds up Set or other observers.
type Value[T any] struct {
	mu        sync.RWMutex
	current   T
	observers map[*Observer[T]]struct{}
}

// NewValue creates a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		current:   initial,
		observers: make(map[*Observer[T]]struct{}),
	}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.current
}

// Set stores val and notifies every observer.
func (v *Value[T]) Set(val T) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.current = val
	for o := range v.observers {
		o.ch.Send(val)
	}
}

// Subscribe attaches a new observer. Its channel immediately holds the current value.
func (v *Value[T]) Subscribe() *Observer[T] {
	o := &Observer[T]{ch: ringchan.New[T](1), owner: v}

	v.mu.Lock()
	defer v.mu.Unlock()

	o.ch.Send(v.current)
	v.observers[o] = struct{}{}
	return o
}

// Observers returns the number of attached observers.
func (v *Value[T]) Observers() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.observers)
}

func (v *Value[T]) detach(o *Observer[T]) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if _, ok := v.observers[o]; ok {
		delete(v.observers, o)
		o.ch.Close()
	}
}

// Observer is one subscriber to a Value.
type Observer[T any] struct {
	ch    *ringchan.RingChannel[T]
	owner *Value[T]
}

// C delivers the latest value after each change. It is closed by Close.
func (o *Observer[T]) C() <-chan T {
	return o.ch.C()
}

// Close detaches the observer. Safe to call more than once.
func (o *Observer[T]) Close() {
	o.owner.detach(o)
}
