// Package history retains the trailing time window of samples for each
// monitored quantity, feeding sparklines, CSV export, and the HTTP API.
// Samples arrive in timestamp order, so eviction is a prefix trim of each
// series rather than a scan.
package history

import (
	"math"
	"sort"
	"sync"
	"time"

	"github.com/kovar/sps5000x/internal/psu"
)

// DefaultSpan is the trailing window retained when none is configured.
const DefaultSpan = 5 * time.Minute

// Sample is one timestamped observation of a quantity.
type Sample struct {
	At    time.Time `json:"at"`
	Value float64   `json:"value"`
}

// series holds one quantity's samples. Eviction advances start instead of
// reslicing, and compacts only when the dead prefix dominates, keeping
// pruning cost proportional to what was evicted rather than to what
// remains.
type series struct {
	start int
	buf   []Sample
}

func (s *series) live() []Sample {
	return s.buf[s.start:]
}

func (s *series) add(p Sample) {
	s.buf = append(s.buf, p)
}

// prune drops samples at or before cutoff from the front.
func (s *series) prune(cutoff time.Time) {
	for s.start < len(s.buf) && !s.buf[s.start].At.After(cutoff) {
		s.start++
	}
	if s.start > 0 && s.start*2 >= len(s.buf) {
		s.buf = append(s.buf[:0], s.buf[s.start:]...)
		s.start = 0
	}
}

// Window is a bounded in-memory store of recent samples per quantity.
// Safe for concurrent use.
type Window struct {
	mu     sync.Mutex
	span   time.Duration
	by     map[psu.Quantity]*series
	latest time.Time
}

// NewWindow creates a store retaining the given trailing span.
// Non-positive spans fall back to DefaultSpan.
func NewWindow(span time.Duration) *Window {
	if span <= 0 {
		span = DefaultSpan
	}
	return &Window{
		span: span,
		by:   make(map[psu.Quantity]*series),
	}
}

// Add appends every present, finite value of the reading under its
// timestamp, then evicts samples that have left the window. Missing and
// non-finite fields are skipped, never zero-filled, so gaps stay gaps
// instead of plotting as spurious zeros.
func (w *Window) Add(r psu.Reading) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for i := range r.Channels {
		for _, m := range psu.Metrics {
			q := psu.Quantity{Channel: i + 1, Metric: m}
			v := r.Value(q)
			if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
				continue
			}
			sr, ok := w.by[q]
			if !ok {
				sr = &series{}
				w.by[q] = sr
			}
			sr.add(Sample{At: r.At, Value: *v})
		}
	}
	if r.At.After(w.latest) {
		w.latest = r.At
	}
	w.pruneLocked()
}

// SetSpan changes the retained window and immediately re-prunes against
// the newest known sample time.
func (w *Window) SetSpan(span time.Duration) {
	if span <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.span = span
	w.pruneLocked()
}

// Span returns the currently retained window.
func (w *Window) Span() time.Duration {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.span
}

func (w *Window) pruneLocked() {
	if w.latest.IsZero() {
		return
	}
	cutoff := w.latest.Add(-w.span)
	for _, sr := range w.by {
		sr.prune(cutoff)
	}
}

// Clear drops every sample but keeps the configured span.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.by = make(map[psu.Quantity]*series)
	w.latest = time.Time{}
}

// Len returns how many samples are retained for a quantity.
func (w *Window) Len(q psu.Quantity) int {
	w.mu.Lock()
	defer w.mu.Unlock()
	sr, ok := w.by[q]
	if !ok {
		return 0
	}
	return len(sr.live())
}

// Series returns a chronological copy of a quantity's retained samples.
func (w *Window) Series(q psu.Quantity) []Sample {
	w.mu.Lock()
	defer w.mu.Unlock()
	sr, ok := w.by[q]
	if !ok {
		return nil
	}
	live := sr.live()
	out := make([]Sample, len(live))
	copy(out, live)
	return out
}

// Values returns up to the last n values for a quantity in chronological
// order, shaped for sparkline rendering.
func (w *Window) Values(q psu.Quantity, n int) []float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	sr, ok := w.by[q]
	if !ok || n <= 0 {
		return nil
	}
	live := sr.live()
	if len(live) > n {
		live = live[len(live)-n:]
	}
	out := make([]float64, len(live))
	for i, s := range live {
		out[i] = s.Value
	}
	return out
}

// Quantities lists every quantity with retained samples, ordered by
// channel then metric.
func (w *Window) Quantities() []psu.Quantity {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]psu.Quantity, 0, len(w.by))
	for q, sr := range w.by {
		if len(sr.live()) > 0 {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Channel != out[j].Channel {
			return out[i].Channel < out[j].Channel
		}
		return out[i].Metric < out[j].Metric
	})
	return out
}
