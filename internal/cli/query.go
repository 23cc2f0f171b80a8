package cli

import (
	"context"
	"fmt"

	"github.com/kovar/sps5000x/internal/config"
	"github.com/kovar/sps5000x/internal/errors"
	"github.com/kovar/sps5000x/internal/scpi"
)

// openQueue dials the instrument once and returns a live command queue.
// One-shot commands skip the reconnecting session; a dial failure should
// report immediately instead of retrying with backoff.
func openQueue(cfg *config.Config) (*scpi.Queue, *scpi.Conn, error) {
	conn, err := scpi.Dial(cfg.Instrument.Address, cfg.Instrument.DialTimeout)
	if err != nil {
		return nil, nil, err
	}

	queue := scpi.NewQueue(conn.WriteCommand)
	queue.SetTimeout(cfg.Instrument.ReplyTimeout)
	conn.Start(
		func(line string) { queue.FeedLine(line) },
		func(error) { queue.Clear() },
	)
	return queue, conn, nil
}

// queryCommand sends one SCPI query and prints the reply line.
func queryCommand(cmd, address, timeout string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyInstrumentFlags(cfg, address, 0)
	if timeout != "" {
		d, err := parseDurationFlag(timeout, "timeout")
		if err != nil {
			return err
		}
		cfg.Instrument.ReplyTimeout = d
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !scpi.IsQuery(cmd) {
		return errors.New(errors.ErrProto,
			fmt.Sprintf("'%s' is not a query", cmd),
			"Queries need a '?' so the instrument replies. Use 'spsmon send' for set commands.")
	}

	queue, conn, err := openQueue(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	reply, err := queue.Query(context.Background(), cmd)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrProto,
			fmt.Sprintf("No reply to '%s'", cmd),
			"Check the command against the instrument's SCPI reference, or raise --timeout")
	}

	fmt.Println(reply)
	return nil
}

// sendCommand fires one SCPI command without waiting for a reply.
func sendCommand(cmd, address string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	applyInstrumentFlags(cfg, address, 0)
	if err := config.Validate(cfg); err != nil {
		return err
	}

	// A query sent blind would leave its reply unclaimed and desync the
	// half-duplex link for whoever talks to the instrument next.
	if scpi.IsQuery(cmd) {
		return errors.New(errors.ErrProto,
			fmt.Sprintf("'%s' looks like a query", cmd),
			"Use 'spsmon query' so the reply is read back.")
	}

	queue, conn, err := openQueue(cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	return queue.Send(cmd)
}
