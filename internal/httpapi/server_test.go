package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/stats"
)

var base = time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC)

func fptr(v float64) *float64 { return &v }

func testReading() psu.Reading {
	return psu.Reading{
		At: base,
		Channels: []psu.ChannelReading{
			{Voltage: fptr(5.0), Current: fptr(0.25), Mode: psu.ModeCV},
		},
	}
}

func newTestServer() *Server {
	return New("127.0.0.1:0", stats.NewBoard(), history.NewWindow(time.Minute))
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer()
	s.SetStatus(func() (string, string) { return "connected", "Siglent Technologies,SPS5083X" })

	rec := get(t, s, "/healthz")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "connected", body["state"])
	assert.Contains(t, body["identity"], "SPS5083X")
}

func TestReadingEndpoint(t *testing.T) {
	s := newTestServer()

	rec := get(t, s, "/api/reading")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	s.Observe(testReading())

	rec = get(t, s, "/api/reading")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body readingJSON
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Channels, 1)
	require.NotNil(t, body.Channels[0].Voltage)
	assert.InDelta(t, 5.0, *body.Channels[0].Voltage, 1e-9)
	require.NotNil(t, body.Channels[0].Power)
	assert.InDelta(t, 1.25, *body.Channels[0].Power, 1e-9)
	assert.Equal(t, "CV", body.Channels[0].Mode)
}

func TestStatsEndpoint(t *testing.T) {
	s := newTestServer()
	s.board.Observe(testReading())

	rec := get(t, s, "/api/stats")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]stats.Summary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Contains(t, body, "ch1_v")
	assert.Equal(t, uint64(1), body["ch1_v"].Count)
	assert.InDelta(t, 5.0, body["ch1_v"].Mean, 1e-9)
}

func TestHistoryEndpoint(t *testing.T) {
	s := newTestServer()
	s.window.Add(testReading())

	rec := get(t, s, "/api/history")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		SpanSeconds float64                     `json:"span_seconds"`
		Series      map[string][]history.Sample `json:"series"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, 60.0, body.SpanSeconds)
	assert.Len(t, body.Series, 3)
	require.Contains(t, body.Series, "ch1_v")
	require.Len(t, body.Series["ch1_v"], 1)
	assert.InDelta(t, 5.0, body.Series["ch1_v"][0].Value, 1e-9)

	// Filtered to a single quantity.
	rec = get(t, s, "/api/history?q=ch1_i")
	var filtered struct {
		Series map[string][]history.Sample `json:"series"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&filtered))
	assert.Len(t, filtered.Series, 1)
	assert.Contains(t, filtered.Series, "ch1_i")
}

func TestMetricsEndpoint(t *testing.T) {
	s := newTestServer()
	s.Observe(testReading())
	s.Metrics().TrackPoller(
		func() uint64 { return 3 },
		func() uint64 { return 1 },
		func() uint64 { return 2 },
	)
	s.Metrics().TrackQueue(
		func() int { return 4 },
		func() uint64 { return 7 },
	)

	rec := get(t, s, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	text := string(body)
	assert.Contains(t, text, `spsmon_channel_volts{channel="1"} 5`)
	assert.Contains(t, text, `spsmon_channel_watts{channel="1"} 1.25`)
	assert.Contains(t, text, "spsmon_cycles_completed_total 3")
	assert.Contains(t, text, "spsmon_cycles_failed_total 1")
	assert.Contains(t, text, "spsmon_ticks_skipped_total 2")
	assert.Contains(t, text, "spsmon_queue_pending 4")
	assert.Contains(t, text, "spsmon_replies_discarded_total 7")
	assert.Contains(t, text, "spsmon_cycle_duration_seconds_count 1")
}

func TestMethodNotAllowed(t *testing.T) {
	s := newTestServer()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/reading", nil)
	s.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
