// Package poller drives the measurement cycle: every tick it fans out the
// per-channel voltage, current, and mode queries, assembles the replies
// into one reading, and hands the reading to its consumers. A failed
// sub-query discards the whole tick and force-clears the command queue so
// reply correlation starts clean on the next cycle.
package poller

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/scpi"
)

// DefaultInterval is the polling period when none is configured.
const DefaultInterval = time.Second

// ErrCycleInFlight means a cycle was refused because the previous one has
// not finished. Ticks that hit this are counted, not queued, so a slow
// instrument can never build up a backlog of half-finished cycles.
var ErrCycleInFlight = errors.New("poller: previous cycle still in flight")

// Querier is the slice of the command queue the poller drives.
type Querier interface {
	Query(ctx context.Context, cmd string) (string, error)
	Clear()
}

// Poller polls one instrument on a fixed interval.
type Poller struct {
	queue    Querier
	commands scpi.CommandSet
	channels int
	interval time.Duration
	log      logger.Logger

	inFlight atomic.Bool
	ok       atomic.Uint64
	failed   atomic.Uint64
	skipped  atomic.Uint64

	mu        sync.Mutex
	onReading []func(psu.Reading)
	onError   []func(error)
	stopCh    chan struct{}
	running   bool
}

// New creates a poller for the given number of output channels.
func New(queue Querier, channels int) *Poller {
	if channels < 1 {
		channels = 1
	}
	return &Poller{
		queue:    queue,
		commands: scpi.DefaultCommands(),
		channels: channels,
		interval: DefaultInterval,
		log:      logger.Default(),
	}
}

// SetCommands replaces the query templates.
func (p *Poller) SetCommands(cs scpi.CommandSet) {
	p.commands = cs
}

// SetInterval changes the polling period. Takes effect on the next Start.
func (p *Poller) SetInterval(d time.Duration) {
	if d > 0 {
		p.interval = d
	}
}

// SetLogger replaces the poller's logger.
func (p *Poller) SetLogger(l logger.Logger) {
	if l != nil {
		p.log = l
	}
}

// OnReading registers a consumer for completed readings. Consumers run
// synchronously on the cycle goroutine; keep them fast.
func (p *Poller) OnReading(fn func(psu.Reading)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onReading = append(p.onReading, fn)
}

// OnCycleError registers a consumer for failed cycles.
func (p *Poller) OnCycleError(fn func(error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onError = append(p.onError, fn)
}

// Cycle runs one full measurement pass: three queries per channel, issued
// concurrently and awaited jointly. On success the assembled reading goes
// to every OnReading consumer and is returned.
//
// If any sub-query fails, the whole tick is discarded: the queue is
// cleared to resynchronize reply correlation, OnCycleError consumers fire
// once with the first failure, and no partial reading is forwarded. A
// reply that fails to parse is not a failure; its field is just nil.
func (p *Poller) Cycle(ctx context.Context) (psu.Reading, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		return psu.Reading{}, ErrCycleInFlight
	}
	defer p.inFlight.Store(false)

	readAt := time.Now()
	results := make([]psu.ChannelReading, p.channels)

	var wg sync.WaitGroup
	var once sync.Once
	var cycleErr error
	fail := func(err error) {
		once.Do(func() {
			cycleErr = err
			p.queue.Clear()
		})
	}

	for i := 0; i < p.channels; i++ {
		i := i
		ch := i + 1

		wg.Add(3)
		go func() {
			defer wg.Done()
			line, err := p.queue.Query(ctx, p.commands.VoltageQuery(ch))
			if err != nil {
				fail(err)
				return
			}
			results[i].Voltage = scpi.ParseMeasurement(line)
		}()
		go func() {
			defer wg.Done()
			line, err := p.queue.Query(ctx, p.commands.CurrentQuery(ch))
			if err != nil {
				fail(err)
				return
			}
			results[i].Current = scpi.ParseMeasurement(line)
		}()
		go func() {
			defer wg.Done()
			line, err := p.queue.Query(ctx, p.commands.ModeQuery(ch))
			if err != nil {
				fail(err)
				return
			}
			// Unrecognized tokens pass through verbatim; the display
			// shows the instrument's own wording.
			results[i].Mode = psu.Mode(strings.TrimSpace(line))
		}()
	}
	wg.Wait()

	if cycleErr != nil {
		p.failed.Add(1)
		p.log.Debug("[poller] cycle failed: %v", cycleErr)
		for _, fn := range p.errorListeners() {
			fn(cycleErr)
		}
		return psu.Reading{}, cycleErr
	}

	reading := psu.Reading{At: readAt, Channels: results}
	p.ok.Add(1)
	for _, fn := range p.readingListeners() {
		fn(reading)
	}
	return reading, nil
}

// Start begins polling on the configured interval, firing the first cycle
// immediately. No-op when already running.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go p.loop(stopCh)
}

// Stop cancels the recurring trigger. An in-flight cycle finishes or times
// out naturally; it is never preempted.
func (p *Poller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.running = false
	close(p.stopCh)
}

// Running reports whether the ticker loop is active.
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Completed returns how many cycles produced a reading.
func (p *Poller) Completed() uint64 { return p.ok.Load() }

// Failed returns how many cycles were discarded.
func (p *Poller) Failed() uint64 { return p.failed.Load() }

// Skipped returns how many ticks found the previous cycle still running.
func (p *Poller) Skipped() uint64 { return p.skipped.Load() }

func (p *Poller) loop(stopCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	go p.tick()
	for {
		select {
		case <-ticker.C:
			go p.tick()
		case <-stopCh:
			return
		}
	}
}

// tick runs one cycle off the ticker. Cycles run on their own goroutine
// so a slow one makes the next tick skip instead of queueing behind it.
func (p *Poller) tick() {
	_, err := p.Cycle(context.Background())
	if errors.Is(err, ErrCycleInFlight) {
		p.skipped.Add(1)
		p.log.Debug("[poller] tick skipped, previous cycle still in flight")
	}
}

func (p *Poller) readingListeners() []func(psu.Reading) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func(psu.Reading){}, p.onReading...)
}

func (p *Poller) errorListeners() []func(error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]func(error){}, p.onError...)
}
