// Package scpi implements the line-oriented SCPI channel to the instrument:
// transport, command vocabulary, and reply correlation.
//
// The instrument speaks a half-duplex request/response protocol over a
// single byte stream (TCP port 5025 or a USBTMC character device). Replies
// carry no identifiers, so correlation is purely positional: the Nth reply
// line answers the Nth outstanding query.
//
// # Components
//
//	Conn       - Line framing over a net.Conn or device file: writes append
//	             a newline, a reader goroutine delivers trimmed reply lines.
//	Queue      - FIFO correlation of reply lines to pending queries, with
//	             per-query timeouts and forced clearing for resynchronization.
//	Session    - Connection lifecycle: dial, redial with backoff, state
//	             events, *IDN? identification, queue wiring.
//	CommandSet - Query templates (MEASURE:VOLTAGE? CH1 etc.), overridable
//	             from config for firmware variations.
//
// # Ordering
//
// The Queue holds one mutex across transmit and enqueue, so the order of
// commands on the wire is exactly the order of entries in the FIFO. That
// single invariant is what makes positional matching sound. Setters (no "?")
// go through the same mutex but never enter the FIFO, because the
// instrument does not answer them.
//
// # Desynchronization
//
// If a reply is ever dropped or an extra line arrives, every later reply
// would be matched to the wrong query. The recovery tool is Queue.Clear:
// it fails all pending queries and empties the FIFO, so the next query
// starts from a clean slate. The poller forces a clear whenever any query
// in a cycle fails, and the session clears on disconnect.
package scpi
