package main

import (
	"fmt"
	"io"
	"sync/atomic"
	"time"
)

const (
	progressUpdateInterval = 100 * time.Millisecond
	clearLineSequence      = "\r\033[K"
)

// ProgressPrinter displays a one-line scan progress with remaining or elapsed time.
//
// Usage:
//
//	p := NewProgressPrinter(os.Stderr, "Scanning for BLE devices", 10*time.Second, status)
//	p.Start()
//	defer p.Stop()
//
// A ProgressPrinter is single-use. Start may be called at most once; Stop may
// be called any number of times.
type ProgressPrinter struct {
	w        io.Writer
	prefix   string
	duration time.Duration // zero counts up
	status   func() string

	startTime time.Time
	ticker    atomic.Pointer[time.Ticker]
	stopChan  chan struct{}
	done      chan struct{}
	started   atomic.Bool
}

// NewProgressPrinter creates a progress printer. A zero duration shows elapsed
// time instead of a countdown. status, when set, is appended to every update.
func NewProgressPrinter(w io.Writer, prefix string, duration time.Duration, status func() string) *ProgressPrinter {
	return &ProgressPrinter{
		w:        w,
		prefix:   prefix,
		duration: duration,
		status:   status,
	}
}

// Start begins displaying progress updates in a background goroutine.
// Panics if called more than once on the same ProgressPrinter instance.
func (p *ProgressPrinter) Start() {
	if !p.started.CompareAndSwap(false, true) {
		panic("ProgressPrinter.Start called more than once")
	}

	p.done = make(chan struct{})
	p.stopChan = make(chan struct{})
	p.startTime = time.Now()
	ticker := time.NewTicker(progressUpdateInterval)
	p.ticker.Store(ticker)

	p.print()
	go func() {
		defer close(p.done)
		for {
			select {
			case <-p.stopChan:
				return
			case <-ticker.C:
				p.print()
			}
		}
	}()
}

func (p *ProgressPrinter) print() {
	line := fmt.Sprintf("%s (%s)", p.prefix, p.clock())
	if p.status != nil {
		if s := p.status(); s != "" {
			line += ", " + s
		}
	}
	fmt.Fprintf(p.w, "%s%s", clearLineSequence, line)
}

// clock renders the remaining time, rounded to the nearest second, or the elapsed time.
func (p *ProgressPrinter) clock() string {
	elapsed := time.Since(p.startTime)
	if p.duration <= 0 {
		return fmt.Sprintf("%ds", int(elapsed.Seconds()))
	}
	remaining := p.duration - elapsed
	if remaining <= 0 {
		return "0s left"
	}
	return fmt.Sprintf("%ds left", int(remaining.Seconds()+0.5))
}

// Stop stops the progress display and clears the line.
// Only the first call has an effect.
func (p *ProgressPrinter) Stop() {
	ticker := p.ticker.Swap(nil)
	if ticker == nil {
		return
	}

	ticker.Stop()
	close(p.stopChan)
	<-p.done

	fmt.Fprint(p.w, clearLineSequence)
}
