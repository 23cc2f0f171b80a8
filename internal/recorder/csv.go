package recorder

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/psu"
)

// csvTimeLayout keeps the timestamp column fixed-width, unlike RFC3339Nano
// which trims trailing zeros.
const csvTimeLayout = "2006-01-02T15:04:05.000Z07:00"

// CSV appends one row per reading: a timestamp, then voltage, current,
// and mode per channel. Missing fields become empty cells, never zeros.
type CSV struct {
	w        *csv.Writer
	closer   io.Closer
	channels int
	wrote    bool
}

// NewCSV writes rows for the given channel count to w. The header goes
// out with the first reading so an aborted run leaves an empty file.
func NewCSV(w io.Writer, channels int) *CSV {
	if channels < 1 {
		channels = 1
	}
	c := &CSV{w: csv.NewWriter(w), channels: channels}
	if closer, ok := w.(io.Closer); ok {
		c.closer = closer
	}
	return c
}

// Record appends one row. Channels missing from the reading produce empty
// cells so the column layout never shifts.
func (c *CSV) Record(_ context.Context, r psu.Reading) error {
	if !c.wrote {
		if err := c.w.Write(csvHeader(c.channels)); err != nil {
			return errors.WrapWithCode(err, errors.ErrRecord, "Failed to write CSV header", "")
		}
		c.wrote = true
	}

	row := make([]string, 0, 1+3*c.channels)
	row = append(row, r.At.Format(csvTimeLayout))
	for n := 1; n <= c.channels; n++ {
		ch, _ := r.Channel(n)
		row = append(row, floatCell(ch.Voltage), floatCell(ch.Current), string(ch.Mode))
	}
	if err := c.w.Write(row); err != nil {
		return errors.WrapWithCode(err, errors.ErrRecord, "Failed to write CSV row", "")
	}
	c.w.Flush()
	return c.w.Error()
}

// Close flushes buffered rows and closes the underlying file when there
// is one.
func (c *CSV) Close() error {
	c.w.Flush()
	err := c.w.Error()
	if c.closer != nil {
		if cerr := c.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func csvHeader(channels int) []string {
	header := make([]string, 0, 1+3*channels)
	header = append(header, "timestamp")
	for n := 1; n <= channels; n++ {
		header = append(header,
			fmt.Sprintf("ch%d_v", n),
			fmt.Sprintf("ch%d_i", n),
			fmt.Sprintf("ch%d_mode", n))
	}
	return header
}

func floatCell(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteHistoryCSV exports the retained window as CSV, one column per
// observed quantity, rows grouped by sample timestamp.
func WriteHistoryCSV(w io.Writer, win *history.Window) error {
	quantities := win.Quantities()

	cells := make(map[int64]map[psu.Quantity]float64)
	for _, q := range quantities {
		for _, s := range win.Series(q) {
			at := s.At.UnixNano()
			if cells[at] == nil {
				cells[at] = make(map[psu.Quantity]float64, len(quantities))
			}
			cells[at][q] = s.Value
		}
	}
	times := make([]int64, 0, len(cells))
	for at := range cells {
		times = append(times, at)
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })

	cw := csv.NewWriter(w)
	header := make([]string, 0, 1+len(quantities))
	header = append(header, "timestamp")
	for _, q := range quantities {
		header = append(header, q.Key())
	}
	if err := cw.Write(header); err != nil {
		return errors.WrapWithCode(err, errors.ErrRecord, "Failed to write CSV header", "")
	}

	for _, at := range times {
		row := make([]string, 0, len(header))
		row = append(row, time.Unix(0, at).UTC().Format(csvTimeLayout))
		for _, q := range quantities {
			if v, ok := cells[at][q]; ok {
				row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				row = append(row, "")
			}
		}
		if err := cw.Write(row); err != nil {
			return errors.WrapWithCode(err, errors.ErrRecord, "Failed to write CSV row", "")
		}
	}
	cw.Flush()
	return cw.Error()
}
