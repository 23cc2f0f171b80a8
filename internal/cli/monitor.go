package cli

import (
	"context"
	"time"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/dashboard"
	"github.com/kovar/sps5000x/internal/history"
	"github.com/kovar/sps5000x/internal/logger"
	"github.com/kovar/sps5000x/internal/poller"
	"github.com/kovar/sps5000x/internal/scpi"
	"github.com/kovar/sps5000x/internal/stats"
)

// monitorCommand wires the polling stack to the TUI dashboard and blocks
// until the user quits.
func monitorCommand(address string, channels int, interval time.Duration) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyInstrumentFlags(cfg, address, channels)
	if interval > 0 {
		cfg.Poll.Interval = interval
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// The dashboard owns the terminal from here on; stray stderr lines
	// from the reconnect loop would draw over it. Connection state is
	// surfaced in the header instead.
	logger.SetDefault(logger.Noop())

	sess := scpi.NewSession(cfg.Instrument.Address)
	sess.SetDialTimeout(cfg.Instrument.DialTimeout)
	sess.SetIdentify(cfg.Instrument.Commands.Identify)
	sess.Queue().SetTimeout(cfg.Instrument.ReplyTimeout)

	pol := poller.New(sess.Queue(), cfg.Instrument.Channels)
	pol.SetCommands(commandSet(cfg.Instrument.Commands))
	pol.SetInterval(cfg.Poll.Interval)

	board := stats.NewBoard()
	window := history.NewWindow(cfg.History.Span)
	pol.OnReading(board.Observe)
	pol.OnReading(window.Add)

	// The dashboard registers its own listeners before the first reading
	// can complete; polling starts against a still-dialing session.
	events := sess.Start()
	pol.Start()
	defer sess.Close()
	defer pol.Stop()

	return dashboard.Run(context.Background(), dashboard.Options{
		Session:  sess,
		Poller:   pol,
		Board:    board,
		Window:   window,
		Channels: cfg.Instrument.Channels,
		Address:  cfg.Instrument.Address,
		Events:   events,
	})
}
