package poller

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/scpi"
)

type fakeQueue struct {
	mu      sync.Mutex
	replies map[string]string
	errs    map[string]error
	gate    chan struct{} // when set, Query blocks until closed
	issued  []string
	clears  int
}

func (f *fakeQueue) Query(ctx context.Context, cmd string) (string, error) {
	f.mu.Lock()
	f.issued = append(f.issued, cmd)
	gate := f.gate
	reply, ok := f.replies[cmd]
	err := f.errs[cmd]
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", scpi.ErrTimeout
	}
	return reply, nil
}

func (f *fakeQueue) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clears++
}

func (f *fakeQueue) clearCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.clears
}

func fullReplies() map[string]string {
	return map[string]string{
		"MEASURE:VOLTAGE? CH1": "5.000",
		"MEASURE:CURRENT? CH1": "0.250",
		"MODE? CH1":            "CV",
		"MEASURE:VOLTAGE? CH2": "12.000",
		"MEASURE:CURRENT? CH2": "1.100",
		"MODE? CH2":            "CC",
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestCycleAssemblesReading(t *testing.T) {
	fq := &fakeQueue{replies: fullReplies()}
	p := New(fq, 2)

	var got []psu.Reading
	p.OnReading(func(r psu.Reading) { got = append(got, r) })

	reading, err := p.Cycle(context.Background())
	require.NoError(t, err)
	require.Len(t, reading.Channels, 2)

	ch1, ok := reading.Channel(1)
	require.True(t, ok)
	require.NotNil(t, ch1.Voltage)
	assert.InDelta(t, 5.0, *ch1.Voltage, 1e-9)
	require.NotNil(t, ch1.Current)
	assert.InDelta(t, 0.25, *ch1.Current, 1e-9)
	assert.Equal(t, psu.ModeCV, ch1.Mode)
	require.NotNil(t, ch1.Power())
	assert.InDelta(t, 1.25, *ch1.Power(), 1e-9)

	ch2, ok := reading.Channel(2)
	require.True(t, ok)
	assert.Equal(t, psu.ModeCC, ch2.Mode)

	require.Len(t, got, 1)
	assert.Equal(t, uint64(1), p.Completed())
	assert.Equal(t, uint64(0), p.Failed())
}

func TestCycleParseFailureYieldsNilField(t *testing.T) {
	replies := fullReplies()
	replies["MEASURE:VOLTAGE? CH1"] = "ERR -113"
	fq := &fakeQueue{replies: replies}
	p := New(fq, 2)

	var failures []error
	p.OnCycleError(func(err error) { failures = append(failures, err) })

	reading, err := p.Cycle(context.Background())
	require.NoError(t, err)

	ch1, _ := reading.Channel(1)
	assert.Nil(t, ch1.Voltage)
	require.NotNil(t, ch1.Current)
	assert.Empty(t, failures)
	assert.Equal(t, 0, fq.clearCount())
}

func TestCycleModePassesThroughVerbatim(t *testing.T) {
	replies := fullReplies()
	replies["MODE? CH1"] = " 4W "
	fq := &fakeQueue{replies: replies}
	p := New(fq, 1)

	reading, err := p.Cycle(context.Background())
	require.NoError(t, err)

	ch1, _ := reading.Channel(1)
	assert.Equal(t, psu.Mode("4W"), ch1.Mode)
	assert.False(t, ch1.Mode.Known())
}

func TestCycleFailureDiscardsReadingAndClears(t *testing.T) {
	fq := &fakeQueue{
		replies: fullReplies(),
		errs:    map[string]error{"MEASURE:CURRENT? CH1": scpi.ErrTimeout},
	}
	p := New(fq, 2)
	log := logger.NewBufferLogger()
	p.SetLogger(log)

	var readings []psu.Reading
	var failures []error
	p.OnReading(func(r psu.Reading) { readings = append(readings, r) })
	p.OnCycleError(func(err error) { failures = append(failures, err) })

	reading, err := p.Cycle(context.Background())
	require.ErrorIs(t, err, scpi.ErrTimeout)
	assert.Equal(t, psu.Reading{}, reading)

	assert.Empty(t, readings)
	require.Len(t, failures, 1)
	assert.Equal(t, 1, fq.clearCount())
	assert.Equal(t, uint64(1), p.Failed())
	assert.Equal(t, uint64(0), p.Completed())

	// Error handlers own user-visible reporting; the poller's own log
	// line stays at debug so failures are not reported twice.
	assert.True(t, log.Contains("cycle failed"))
	assert.True(t, log.HasLevel("debug"))
	assert.False(t, log.HasLevel("error"))
}

func TestCycleRefusedWhileInFlight(t *testing.T) {
	gate := make(chan struct{})
	fq := &fakeQueue{replies: fullReplies(), gate: gate}
	p := New(fq, 1)

	done := make(chan error, 1)
	go func() {
		_, err := p.Cycle(context.Background())
		done <- err
	}()
	waitFor(t, func() bool {
		fq.mu.Lock()
		defer fq.mu.Unlock()
		return len(fq.issued) > 0
	})

	_, err := p.Cycle(context.Background())
	require.ErrorIs(t, err, ErrCycleInFlight)

	close(gate)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("gated cycle never finished")
	}
}

// A lost reply desynchronizes the FIFO: later replies satisfy earlier
// queries until the tail times out. The cycle must discard everything and
// leave the queue empty.
func TestCycleRecoversFromLostReply(t *testing.T) {
	sent := make(chan string, 64)
	q := scpi.NewQueue(func(cmd string) error {
		sent <- cmd
		return nil
	})
	q.SetTimeout(100 * time.Millisecond)

	// Answer every query except CH1 current, in wire order, like the
	// instrument would.
	go func() {
		for cmd := range sent {
			switch {
			case cmd == "MEASURE:CURRENT? CH1":
				// dropped reply
			case strings.HasPrefix(cmd, "MEASURE:VOLTAGE?"):
				q.FeedLine("5.000")
			case strings.HasPrefix(cmd, "MEASURE:CURRENT?"):
				q.FeedLine("0.250")
			case strings.HasPrefix(cmd, "MODE?"):
				q.FeedLine("CV")
			}
		}
	}()

	p := New(q, 3)
	reading, err := p.Cycle(context.Background())
	close(sent)

	require.Error(t, err)
	assert.Equal(t, psu.Reading{}, reading)
	assert.Equal(t, 0, q.PendingCount())
	assert.Equal(t, uint64(1), p.Failed())
}

func TestStartStopTicker(t *testing.T) {
	fq := &fakeQueue{replies: fullReplies()}
	p := New(fq, 1)
	p.SetInterval(20 * time.Millisecond)

	p.Start()
	assert.True(t, p.Running())
	waitFor(t, func() bool { return p.Completed() >= 2 })

	p.Stop()
	assert.False(t, p.Running())

	settled := p.Completed()
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, p.Completed(), settled+1)

	// Start and Stop are idempotent.
	p.Stop()
	p.Start()
	p.Start()
	p.Stop()
}

func TestTickerSkipsWhileCycleInFlight(t *testing.T) {
	gate := make(chan struct{})
	fq := &fakeQueue{replies: fullReplies(), gate: gate}
	p := New(fq, 1)
	p.SetInterval(15 * time.Millisecond)

	p.Start()
	waitFor(t, func() bool { return p.Skipped() >= 2 })

	close(gate)
	p.Stop()
	waitFor(t, func() bool { return p.Completed() >= 1 })
}
