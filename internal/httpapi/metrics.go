package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kovar/sps5000x/internal/psu"
)

// Metrics owns the Prometheus collectors for one monitoring session. A
// dedicated registry keeps repeated sessions in one process (and tests)
// from fighting over global collector names.
type Metrics struct {
	registry *prometheus.Registry

	volts *prometheus.GaugeVec
	amps  *prometheus.GaugeVec
	watts *prometheus.GaugeVec

	cycleDuration prometheus.Histogram
}

// NewMetrics builds the per-channel gauges and the cycle duration
// histogram. Counters that mirror existing atomics are attached with
// TrackPoller and TrackQueue.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		volts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spsmon",
			Name:      "channel_volts",
			Help:      "Last measured output voltage per channel.",
		}, []string{"channel"}),
		amps: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spsmon",
			Name:      "channel_amps",
			Help:      "Last measured output current per channel.",
		}, []string{"channel"}),
		watts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "spsmon",
			Name:      "channel_watts",
			Help:      "Derived output power per channel.",
		}, []string{"channel"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "spsmon",
			Name:      "cycle_duration_seconds",
			Help:      "Wall time of completed poll cycles.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

// TrackPoller exposes the poller's cycle counters. The callbacks read the
// poller's own atomics so the metrics can never drift from the source.
func (m *Metrics) TrackPoller(completed, failed, skipped func() uint64) {
	m.registry.MustRegister(
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "spsmon",
			Name:      "cycles_completed_total",
			Help:      "Poll cycles that produced a reading.",
		}, func() float64 { return float64(completed()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "spsmon",
			Name:      "cycles_failed_total",
			Help:      "Poll cycles discarded after a sub-query failure.",
		}, func() float64 { return float64(failed()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "spsmon",
			Name:      "ticks_skipped_total",
			Help:      "Ticks refused because a cycle was still in flight.",
		}, func() float64 { return float64(skipped()) }),
	)
}

// TrackQueue exposes the command queue's depth and discard count.
func (m *Metrics) TrackQueue(pending func() int, discarded func() uint64) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "spsmon",
			Name:      "queue_pending",
			Help:      "Queries currently awaiting replies.",
		}, func() float64 { return float64(pending()) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "spsmon",
			Name:      "replies_discarded_total",
			Help:      "Reply lines that arrived with nothing pending.",
		}, func() float64 { return float64(discarded()) }),
	)
}

// ObserveReading updates the per-channel gauges with every present value.
// Missing fields leave their gauges untouched.
func (m *Metrics) ObserveReading(r psu.Reading) {
	for i, ch := range r.Channels {
		label := strconv.Itoa(i + 1)
		if ch.Voltage != nil {
			m.volts.WithLabelValues(label).Set(*ch.Voltage)
		}
		if ch.Current != nil {
			m.amps.WithLabelValues(label).Set(*ch.Current)
		}
		if p := ch.Power(); p != nil {
			m.watts.WithLabelValues(label).Set(*p)
		}
	}
}

// ObserveCycle records one completed cycle's duration.
func (m *Metrics) ObserveCycle(d time.Duration) {
	m.cycleDuration.Observe(d.Seconds())
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
