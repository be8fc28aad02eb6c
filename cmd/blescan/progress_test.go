package main

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// syncBuffer is a bytes.Buffer safe for the printer goroutine and the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestProgressPrinter_Countdown(t *testing.T) {
	out := &syncBuffer{}
	p := NewProgressPrinter(out, "Scanning", 10*time.Second, func() string { return "3 found" })

	p.Start()
	p.Stop()
	p.Stop()

	s := out.String()
	assert.Contains(t, s, "Scanning (10s left), 3 found", "the first update MUST be printed immediately")
	assert.True(t, strings.HasSuffix(s, clearLineSequence), "Stop MUST clear the line")
	assert.Equal(t, strings.Count(s, "Scanning")+1, strings.Count(s, clearLineSequence),
		"only the first Stop MUST clear the line")
}

func TestProgressPrinter_Elapsed(t *testing.T) {
	out := &syncBuffer{}
	p := NewProgressPrinter(out, "Watching", 0, nil)

	p.Start()
	time.Sleep(3 * progressUpdateInterval)
	p.Stop()

	s := out.String()
	assert.Contains(t, s, "Watching (0s)")
	assert.NotContains(t, s, "left")
	assert.GreaterOrEqual(t, strings.Count(s, "Watching"), 2, "the line MUST be refreshed periodically")
}

func TestProgressPrinter_StartTwicePanics(t *testing.T) {
	p := NewProgressPrinter(&syncBuffer{}, "x", 0, nil)
	p.Start()
	defer p.Stop()

	assert.Panics(t, p.Start)
}
