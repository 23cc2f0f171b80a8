// Package recorder persists the reading stream outside the process: CSV
// files for ad hoc capture and InfluxDB for long-term dashboards.
package recorder

import (
	"context"

	"github.com/kovar/sps5000x/internal/psu"
)

// Recorder consumes completed readings. Implementations decide what an
// acceptable reading is; the poller hands over everything it assembles.
type Recorder interface {
	Record(ctx context.Context, r psu.Reading) error
	Close() error
}
