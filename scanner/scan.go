package scanner

import (
	"context"
	"errors"
	"io"
	"iter"
	"sync/atomic"

	"github.com/srg/blescan/internal/device"
	"github.com/srg/blescan/internal/ringchan"
)

// Scan is the caller's view of one active scan: a finite, single-pass
// sequence of results. Every received result is emitted, including
// updates for devices already seen.
//
// The sequence is buffered; a consumer that falls behind by more than the
// configured buffer loses the oldest results, never the scan itself.
type Scan struct {
	out      *ringchan.RingChannel[device.ScanResult]
	cancel   func(cause error)
	done     <-chan struct{}
	consumed atomic.Bool

	// written by the scan loop before out is closed
	cause error
}

// Next returns the next result. It returns io.EOF once the scan ended
// normally, or the terminal error (for example *device.ScanError) when the
// scan failed. A done ctx only abandons the wait; the scan keeps running.
func (sc *Scan) Next(ctx context.Context) (device.ScanResult, error) {
	select {
	case r, ok := <-sc.out.C():
		if ok {
			return r, nil
		}
		<-sc.done
		if err := sc.Err(); err != nil {
			return device.ScanResult{}, err
		}
		return device.ScanResult{}, io.EOF
	case <-ctx.Done():
		return device.ScanResult{}, ctx.Err()
	}
}

// All returns the results as a single-pass iterator. A terminal scan error
// is yielded last. Breaking out of the loop stops the scan and waits for
// its cleanup. Only the first call iterates; later calls yield
// ErrSequenceConsumed.
func (sc *Scan) All() iter.Seq2[device.ScanResult, error] {
	return func(yield func(device.ScanResult, error) bool) {
		if sc.consumed.Swap(true) {
			yield(device.ScanResult{}, ErrSequenceConsumed)
			return
		}

		for r := range sc.out.C() {
			if !yield(r, nil) {
				sc.Stop()
				return
			}
		}

		<-sc.done
		if err := sc.Err(); err != nil {
			yield(device.ScanResult{}, err)
		}
	}
}

// Stop ends this scan and returns once cleanup has completed.
func (sc *Scan) Stop() {
	sc.cancel(ErrScanStopped)
	<-sc.done
}

// Done is closed when the scan has ended and cleanup has completed.
func (sc *Scan) Done() <-chan struct{} {
	return sc.done
}

// Cause reports why the scan ended: ErrScanStopped, ErrScanTimeout, a
// context error, or a terminal failure. It is nil while the scan runs.
func (sc *Scan) Cause() error {
	select {
	case <-sc.done:
		return sc.cause
	default:
		return nil
	}
}

// Err returns the terminal failure of an ended scan, or nil when it ended
// normally or is still running.
func (sc *Scan) Err() error {
	cause := sc.Cause()
	switch {
	case cause == nil,
		errors.Is(cause, ErrScanStopped),
		errors.Is(cause, ErrScanTimeout),
		errors.Is(cause, context.Canceled),
		errors.Is(cause, context.DeadlineExceeded):
		return nil
	default:
		return cause
	}
}

// Dropped returns how many results a lagging consumer lost.
func (sc *Scan) Dropped() uint64 {
	return sc.out.Dropped()
}
