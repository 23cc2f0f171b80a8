package ui

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureOutput collects spinner writes for assertion.
type captureOutput struct {
	mu    sync.Mutex
	lines []string
}

func (c *captureOutput) write(s string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, s)
}

func (c *captureOutput) all() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "")
}

func TestSpinnerLifecycle(t *testing.T) {
	out := &captureOutput{}
	s := NewSpinner("probing instrument")
	s.SetOutput(out.write)

	assert.Equal(t, SpinnerPending, s.State())
	assert.Equal(t, "probing instrument", s.Label())

	s.Start()
	assert.Equal(t, SpinnerInProgress, s.State())
	assert.Contains(t, out.all(), "probing instrument")

	s.Success()
	assert.Equal(t, SpinnerSuccess, s.State())
	assert.Contains(t, out.all(), SymbolComplete)
}

func TestSpinnerFail(t *testing.T) {
	out := &captureOutput{}
	s := NewSpinner("connecting")
	s.SetOutput(out.write)

	s.Start()
	s.Fail()

	assert.Equal(t, SpinnerFailed, s.State())
	assert.Contains(t, out.all(), SymbolFail)
	assert.Contains(t, out.all(), "connecting")
}

func TestSpinnerStartTwiceIsSafe(t *testing.T) {
	s := NewSpinner("test")
	s.SetOutput(func(string) {})

	s.Start()
	s.Start()
	s.Stop()

	assert.Equal(t, SpinnerInProgress, s.State())
}

func TestSpinnerStopWithoutStart(t *testing.T) {
	s := NewSpinner("test")
	s.SetOutput(func(string) {})

	// Must not block waiting on an animation that never ran.
	done := make(chan struct{})
	go func() {
		s.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on an unstarted spinner")
	}
}

func TestSpinnerAnimates(t *testing.T) {
	out := &captureOutput{}
	s := NewSpinner("working")
	s.SetOutput(out.write)

	s.Start()
	time.Sleep(200 * time.Millisecond)
	s.Stop()

	// At 80ms per frame, 200ms yields at least two renders past the initial one.
	var frames int
	for _, f := range spinnerFrames {
		if strings.Contains(out.all(), f) {
			frames++
		}
	}
	require.GreaterOrEqual(t, frames, 2)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0.00s", formatDuration(0))
	assert.Equal(t, "0.05s", formatDuration(50*time.Millisecond))
	assert.Equal(t, "1.5s", formatDuration(1500*time.Millisecond))
	assert.Equal(t, "30.0s", formatDuration(30*time.Second))
}
