package recorder

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/psu"
)

// InfluxOptions locate the bucket readings are written to.
type InfluxOptions struct {
	URL         string
	Token       string
	Org         string
	Bucket      string
	Measurement string
}

// Influx writes one point per reading, fields chN_v and chN_i with the
// channel mode as a tag. Incomplete readings are skipped entirely rather
// than written with holes, so downstream queries never see half a point.
type Influx struct {
	client      influxdb2.Client
	write       api.WriteAPIBlocking
	measurement string
	log         logger.Logger
}

// NewInflux connects a blocking writer to the configured bucket.
func NewInflux(opts InfluxOptions) *Influx {
	if opts.Measurement == "" {
		opts.Measurement = "psu"
	}
	client := influxdb2.NewClient(opts.URL, opts.Token)
	return &Influx{
		client:      client,
		write:       client.WriteAPIBlocking(opts.Org, opts.Bucket),
		measurement: opts.Measurement,
		log:         logger.Default(),
	}
}

// SetLogger replaces the recorder's logger.
func (x *Influx) SetLogger(l logger.Logger) {
	if l != nil {
		x.log = l
	}
}

// Record writes the reading as a single point at its capture time.
func (x *Influx) Record(ctx context.Context, r psu.Reading) error {
	if !r.Complete() {
		x.log.Debug("[influx] skipping incomplete reading")
		return nil
	}

	point := influxdb2.NewPointWithMeasurement(x.measurement).SetTime(r.At)
	for i, ch := range r.Channels {
		n := i + 1
		point.AddField(fmt.Sprintf("ch%d_v", n), *ch.Voltage)
		point.AddField(fmt.Sprintf("ch%d_i", n), *ch.Current)
		point.AddTag(fmt.Sprintf("ch%d_mode", n), string(ch.Mode))
	}

	if err := x.write.WritePoint(ctx, point); err != nil {
		return errors.WrapWithCode(err, errors.ErrRecord,
			"Failed to write reading to InfluxDB",
			"Check the influx url, token, org, and bucket in your config")
	}
	return nil
}

// Close releases the underlying HTTP client.
func (x *Influx) Close() error {
	x.client.Close()
	return nil
}
