package stats

import (
	"sync"

	"github.com/kovar/sps5000x/internal/psu"
)

// Board keeps one Running accumulator per monitored quantity. Safe for
// concurrent use; the poller observes while the dashboard and HTTP API
// read.
type Board struct {
	mu sync.Mutex
	by map[psu.Quantity]*Running
}

// NewBoard returns an empty board. Accumulators are created lazily on
// first observation.
func NewBoard() *Board {
	return &Board{by: make(map[psu.Quantity]*Running)}
}

// Observe folds every present value of a reading into its accumulator.
// Missing fields contribute nothing; derived power is included when both
// of its factors are present.
func (b *Board) Observe(r psu.Reading) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range r.Channels {
		for _, m := range psu.Metrics {
			q := psu.Quantity{Channel: i + 1, Metric: m}
			v := r.Value(q)
			if v == nil {
				continue
			}
			acc, ok := b.by[q]
			if !ok {
				acc = NewRunning()
				b.by[q] = acc
			}
			acc.Add(*v)
		}
	}
}

// Summary returns the summary for one quantity, zero when it has never
// been observed.
func (b *Board) Summary(q psu.Quantity) Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	acc, ok := b.by[q]
	if !ok {
		return Summary{}
	}
	return acc.Snapshot()
}

// Summaries returns a snapshot of every observed quantity.
func (b *Board) Summaries() map[psu.Quantity]Summary {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[psu.Quantity]Summary, len(b.by))
	for q, acc := range b.by {
		out[q] = acc.Snapshot()
	}
	return out
}

// Reset drops every accumulator.
func (b *Board) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.by = make(map[psu.Quantity]*Running)
}
