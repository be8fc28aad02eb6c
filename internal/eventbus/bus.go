// Package eventbus fans out pushed events to independent subscribers.
//
// Every subscriber owns a bounded MPMC ring and sees events in publish order.
// A subscriber that falls behind loses its oldest events; it never slows down
// the publisher or other subscribers.
package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/cornelk/hashmap"
	"github.com/hedzr/go-ringbuf/v2/mpmc"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by Next once the subscription is closed and drained.
var ErrClosed = errors.New("subscription closed")

// DefaultCapacity is the per-subscriber queue size used when none is given.
const DefaultCapacity uint32 = 1024

// Bus is a multi-subscriber event feed. The zero value is not usable; use New.
type Bus[T any] struct {
	subs     *hashmap.Map[uint64, *Subscription[T]]
	nextID   atomic.Uint64
	capacity uint32
	closed   atomic.Bool
	logger   *logrus.Logger
}

// New creates a Bus whose subscribers buffer up to capacity events each.
func New[T any](capacity uint32, logger *logrus.Logger) *Bus[T] {
	if capacity == 0 {
		capacity = DefaultCapacity
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &Bus[T]{
		subs:     hashmap.New[uint64, *Subscription[T]](),
		capacity: capacity,
		logger:   logger,
	}
}

// Subscribe registers a new subscriber. Events published before this call are not delivered.
// Subscribing to a closed bus returns an already closed subscription.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	s := &Subscription[T]{
		id:     b.nextID.Add(1),
		bus:    b,
		queue:  mpmc.NewOverlappedRingBuffer[T](b.capacity),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	b.subs.Set(s.id, s)
	if b.closed.Load() {
		s.Close()
	}
	return s
}

// Publish delivers v to every current subscriber without blocking.
func (b *Bus[T]) Publish(v T) {
	if b.closed.Load() {
		return
	}
	b.subs.Range(func(_ uint64, s *Subscription[T]) bool {
		s.deliver(v)
		return true
	})
}

// Len returns the number of active subscribers.
func (b *Bus[T]) Len() int {
	return b.subs.Len()
}

// Close closes every subscription; subscribers drain what is queued and then get ErrClosed.
func (b *Bus[T]) Close() {
	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	b.subs.Range(func(_ uint64, s *Subscription[T]) bool {
		s.Close()
		return true
	})
}

// Subscription is one subscriber's ordered view of a Bus.
type Subscription[T any] struct {
	id          uint64
	bus         *Bus[T]
	queue       mpmc.RichOverlappedRingBuffer[T]
	notify      chan struct{}
	done        chan struct{}
	closeOnce   sync.Once
	overwritten atomic.Uint64
}

func (s *Subscription[T]) deliver(v T) {
	select {
	case <-s.done:
		return
	default:
	}

	overwrites, err := s.queue.EnqueueM(v)
	if err != nil {
		s.bus.logger.WithError(err).WithField("subscriber", s.id).Warn("event bus enqueue failed")
		return
	}
	if overwrites > 0 {
		s.overwritten.Add(uint64(overwrites))
		s.bus.logger.WithFields(logrus.Fields{
			"subscriber": s.id,
			"dropped":    overwrites,
		}).Debug("Slow event subscriber, oldest events dropped")
	}

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Next blocks until an event is available, the subscription is closed and
// drained (ErrClosed), or ctx is done.
func (s *Subscription[T]) Next(ctx context.Context) (T, error) {
	var zero T
	for {
		if !s.queue.IsEmpty() {
			if v, err := s.queue.Dequeue(); err == nil {
				return v, nil
			}
		}

		select {
		case <-s.notify:
		case <-s.done:
			if s.queue.IsEmpty() {
				return zero, ErrClosed
			}
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

// Close detaches the subscriber from the bus. Safe to call more than once.
func (s *Subscription[T]) Close() {
	s.closeOnce.Do(func() {
		s.bus.subs.Del(s.id)
		close(s.done)
	})
}

// Done is closed when the subscription is closed.
func (s *Subscription[T]) Done() <-chan struct{} {
	return s.done
}

// Overwritten returns how many events this subscriber lost to a full queue.
func (s *Subscription[T]) Overwritten() uint64 {
	return s.overwritten.Load()
}
