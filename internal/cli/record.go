package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/httpapi"
	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/poller"
	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/recorder"
	"github.com/kovar/sps5000x/internal/scpi"
	"github.com/kovar/sps5000x/internal/stats"
	"github.com/kovar/sps5000x/internal/ui"
)

// recordOptions carries the record command's flag values.
type recordOptions struct {
	Address  string
	Channels int
	Interval string
	Duration string
	Count    int
	Output   string
}

// recordCommand polls headlessly and fans readings out to the configured
// sinks until interrupted or a stop condition is reached.
func recordCommand(opts recordOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyInstrumentFlags(cfg, opts.Address, opts.Channels)
	if opts.Interval != "" {
		d, err := parseDurationFlag(opts.Interval, "interval")
		if err != nil {
			return err
		}
		cfg.Poll.Interval = d
	}
	if opts.Output != "" {
		cfg.Recorder.CSV.Enabled = true
		cfg.Recorder.CSV.Path = opts.Output
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	duration, err := parseDurationFlag(opts.Duration, "duration")
	if err != nil {
		return err
	}

	// Open sinks before touching the network; a bad output path should
	// fail before the instrument sees a connection.
	sinks, err := openSinks(cfg)
	if err != nil {
		return err
	}
	defer func() {
		for _, s := range sinks {
			s.Close()
		}
	}()

	log := logger.Default()

	sess := scpi.NewSession(cfg.Instrument.Address)
	sess.SetDialTimeout(cfg.Instrument.DialTimeout)
	sess.SetIdentify(cfg.Instrument.Commands.Identify)
	sess.Queue().SetTimeout(cfg.Instrument.ReplyTimeout)

	pol := poller.New(sess.Queue(), cfg.Instrument.Channels)
	pol.SetCommands(commandSet(cfg.Instrument.Commands))
	pol.SetInterval(cfg.Poll.Interval)

	// Stats and history back the HTTP API when it is enabled; they are
	// cheap enough to keep regardless.
	board := stats.NewBoard()
	window := history.NewWindow(cfg.History.Span)
	pol.OnReading(board.Observe)
	pol.OnReading(window.Add)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, duration)
		defer cancel()
	}
	ctx, reached := context.WithCancel(ctx)
	defer reached()

	var recorded atomic.Int64
	pol.OnReading(func(r psu.Reading) {
		for _, s := range sinks {
			if err := s.Record(ctx, r); err != nil {
				log.Warn("[record] sink error: %v", err)
			}
		}
		if opts.Count > 0 && recorded.Add(1) >= int64(opts.Count) {
			reached()
		}
	})
	pol.OnCycleError(func(err error) {
		log.Warn("[record] cycle discarded: %v", err)
	})

	var api *httpapi.Server
	if cfg.HTTP.Enabled {
		api = httpapi.New(cfg.HTTP.Addr, board, window)
		api.SetStatus(func() (string, string) {
			return sess.State().String(), sess.Identity()
		})
		api.Metrics().TrackPoller(pol.Completed, pol.Failed, pol.Skipped)
		api.Metrics().TrackQueue(sess.Queue().PendingCount, sess.Queue().Discarded)
		pol.OnReading(api.Observe)
		api.Start()
	}

	events := sess.Start()
	go func() {
		for ev := range events {
			switch ev.State {
			case scpi.StateConnected:
				log.Info("[record] connected: %s", ev.Identity)
			case scpi.StateDisconnected:
				if ev.Err != nil {
					log.Warn("[record] disconnected: %v", ev.Err)
				}
			}
		}
	}()
	pol.Start()
	defer sess.Close()
	defer pol.Stop()

	fmt.Printf("%s Recording from %s every %s%s. Ctrl+C to stop.\n",
		ui.SymbolRecord, cfg.Instrument.Address, cfg.Poll.Interval, recordLimits(duration, opts.Count))

	<-ctx.Done()

	if api != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		api.Shutdown(shutdownCtx)
	}

	fmt.Printf("%s Recorded %d readings (%d cycles discarded)\n",
		ui.SymbolSuccess, recorded.Load(), pol.Failed())
	return nil
}

// openSinks builds the enabled recorders. At least one sink must be on,
// otherwise recording would poll into the void.
func openSinks(cfg *config.Config) ([]recorder.Recorder, error) {
	var sinks []recorder.Recorder

	if cfg.Recorder.CSV.Enabled {
		f, err := os.OpenFile(cfg.Recorder.CSV.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrRecord,
				"Cannot open CSV output: "+cfg.Recorder.CSV.Path,
				"Check the directory exists and is writable")
		}
		sinks = append(sinks, recorder.NewCSV(f, cfg.Instrument.Channels))
	}

	if cfg.Recorder.Influx.Enabled {
		sinks = append(sinks, recorder.NewInflux(recorder.InfluxOptions{
			URL:         cfg.Recorder.Influx.URL,
			Token:       cfg.Recorder.Influx.Token,
			Org:         cfg.Recorder.Influx.Org,
			Bucket:      cfg.Recorder.Influx.Bucket,
			Measurement: cfg.Recorder.Influx.Measurement,
		}))
	}

	if len(sinks) == 0 {
		return nil, errors.New(errors.ErrRecord,
			"No recording sinks enabled",
			"Enable recorder.csv or recorder.influx in .spsmon.yaml, or pass --output")
	}

	return sinks, nil
}

// recordLimits phrases the stop conditions for the startup banner.
func recordLimits(duration time.Duration, count int) string {
	limits := ""
	if duration > 0 {
		limits += fmt.Sprintf(", for %s", duration)
	}
	if count > 0 {
		limits += fmt.Sprintf(", up to %d readings", count)
	}
	return limits
}
