package scpi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kovar/sps5000x/internal/logger"
)

// DefaultReplyTimeout is how long a query waits for its reply line.
const DefaultReplyTimeout = 2 * time.Second

var (
	// ErrTimeout means the reply window elapsed before a line arrived.
	ErrTimeout = errors.New("scpi: reply timed out")
	// ErrCleared means the queue was cleared while the query was pending.
	ErrCleared = errors.New("scpi: pending query cleared")
)

// SendFunc transmits one command on the wire. It must not block
// indefinitely; the Queue holds its lock while calling it.
type SendFunc func(cmd string) error

// outcome is the settled result of a pending query.
type outcome struct {
	line string
	err  error
}

// pending is one in-flight query. Identity matters: expiry and matching
// locate entries by pointer, never by position, so a timed-out entry can
// be removed without disturbing its neighbors.
type pending struct {
	cmd      string
	issuedAt time.Time
	timer    *time.Timer
	done     chan outcome // buffered; the settler never blocks
}

// Queue correlates reply lines with pending queries in FIFO order.
//
// Transmission and enqueueing happen under a single mutex, so wire order
// and FIFO order are the same thing. Each entry owns a timer; whichever
// path removes an entry from the FIFO (reply match, expiry, or Clear) is
// the only one that settles it.
//
// The FIFO is unbounded. Depth is bounded in practice by the poller's
// one-cycle-in-flight rule (channels x 3 queries).
type Queue struct {
	sendFn  SendFunc
	timeout time.Duration
	log     logger.Logger

	mu        sync.Mutex
	fifo      []*pending
	discarded uint64
}

// NewQueue creates a queue that transmits via send. The default per-query
// reply timeout is DefaultReplyTimeout.
func NewQueue(send SendFunc) *Queue {
	return &Queue{
		sendFn:  send,
		timeout: DefaultReplyTimeout,
		log:     logger.Default(),
	}
}

// SetTimeout changes the default reply timeout for subsequent queries.
// Non-positive values are ignored.
func (q *Queue) SetTimeout(d time.Duration) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if d > 0 {
		q.timeout = d
	}
}

// SetLogger replaces the queue's logger.
func (q *Queue) SetLogger(l logger.Logger) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if l != nil {
		q.log = l
	}
}

// Query transmits cmd and blocks until its reply line arrives, the reply
// timeout elapses (ErrTimeout), the queue is cleared (ErrCleared), or ctx
// is done. A send failure returns the transport error without enqueueing.
//
// On ctx cancellation the entry stays in the FIFO so later replies keep
// their positional alignment; its eventual settlement goes into a buffered
// channel nobody reads.
func (q *Queue) Query(ctx context.Context, cmd string) (string, error) {
	return q.QueryTimeout(ctx, cmd, 0)
}

// QueryTimeout is Query with a per-call reply timeout. A non-positive
// timeout uses the queue default.
func (q *Queue) QueryTimeout(ctx context.Context, cmd string, timeout time.Duration) (string, error) {
	q.mu.Lock()
	if timeout <= 0 {
		timeout = q.timeout
	}
	if err := q.sendFn(cmd); err != nil {
		q.mu.Unlock()
		return "", err
	}
	p := &pending{
		cmd:      cmd,
		issuedAt: time.Now(),
		done:     make(chan outcome, 1),
	}
	p.timer = time.AfterFunc(timeout, func() { q.expire(p) })
	q.fifo = append(q.fifo, p)
	q.mu.Unlock()

	select {
	case out := <-p.done:
		return out.line, out.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Send transmits a command that expects no reply. It serializes with
// queries on the same mutex but never enters the FIFO.
func (q *Queue) Send(cmd string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sendFn(cmd)
}

// FeedLine matches a reply line to the oldest pending query and settles it.
// Returns false when nothing is pending; the line is counted as discarded,
// not treated as an error, since late replies after a timeout are expected.
func (q *Queue) FeedLine(line string) bool {
	q.mu.Lock()
	if len(q.fifo) == 0 {
		q.discarded++
		q.mu.Unlock()
		q.log.Debug("[scpi] discarding unmatched line: %q", line)
		return false
	}
	p := q.fifo[0]
	q.fifo = append(q.fifo[:0], q.fifo[1:]...)
	q.mu.Unlock()

	p.timer.Stop()
	p.done <- outcome{line: line}
	return true
}

// Clear fails every pending query with ErrCleared, oldest first, and
// empties the FIFO. Used to force resynchronization after a failed cycle
// or a disconnect.
func (q *Queue) Clear() {
	q.mu.Lock()
	cleared := q.fifo
	q.fifo = nil
	q.mu.Unlock()

	if len(cleared) == 0 {
		return
	}
	for _, p := range cleared {
		p.timer.Stop()
		p.done <- outcome{err: ErrCleared}
	}
	q.log.Debug("[scpi] cleared %d pending queries", len(cleared))
}

// expire removes p by identity and settles it with ErrTimeout. If p is no
// longer in the FIFO another path already settled it and expiry is a no-op.
func (q *Queue) expire(p *pending) {
	q.mu.Lock()
	found := false
	for i, e := range q.fifo {
		if e == p {
			q.fifo = append(q.fifo[:i], q.fifo[i+1:]...)
			found = true
			break
		}
	}
	q.mu.Unlock()

	if !found {
		return
	}
	p.done <- outcome{err: ErrTimeout}
	q.log.Debug("[scpi] query %q timed out after %s", p.cmd, time.Since(p.issuedAt).Round(time.Millisecond))
}

// PendingCount returns the number of queries awaiting replies.
func (q *Queue) PendingCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.fifo)
}

// Discarded returns how many reply lines arrived with nothing pending.
func (q *Queue) Discarded() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.discarded
}
