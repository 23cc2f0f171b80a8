package scpi

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/kovar/sps5000x/internal/logger"
)

// ErrNotConnected means a command was attempted with no live connection.
var ErrNotConnected = errors.New("scpi: not connected")

const (
	reconnectBaseDelay = time.Second
	reconnectMaxDelay  = 30 * time.Second
)

// State is the session's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "disconnected"
	}
}

// Event is a session state transition. Err carries the dial or read
// failure on transitions to Disconnected; Identity carries the *IDN?
// reply on transitions to Connected.
type Event struct {
	State    State
	Identity string
	Err      error
}

// Session keeps a connection to one instrument alive and owns the command
// queue bound to it. On connect it wires the reader to the queue, asks the
// instrument to identify itself, and emits events; on disconnect it clears
// the queue so pending queries fail fast, then redials with capped
// exponential backoff.
type Session struct {
	address     string
	dialTimeout time.Duration
	identify    string
	queue       *Queue
	log         logger.Logger
	events      chan Event

	// dialFn is swapped out by tests to hand the session pipe-backed conns.
	dialFn func(address string, timeout time.Duration) (*Conn, error)

	mu       sync.Mutex
	conn     *Conn
	state    State
	identity string
	stopCh   chan struct{}
	stopped  bool
}

// NewSession creates a session for the given instrument address. Call
// Start to begin connecting.
func NewSession(address string) *Session {
	s := &Session{
		address:     address,
		dialTimeout: DefaultDialTimeout,
		identify:    DefaultCommands().Identify,
		log:         logger.Default(),
		events:      make(chan Event, 16),
		dialFn:      Dial,
		stopCh:      make(chan struct{}),
	}
	s.queue = NewQueue(s.transmit)
	return s
}

// SetDialTimeout changes how long connection attempts may take.
func (s *Session) SetDialTimeout(d time.Duration) {
	if d > 0 {
		s.dialTimeout = d
	}
}

// SetIdentify changes the identification query issued after connecting.
func (s *Session) SetIdentify(cmd string) {
	if cmd != "" {
		s.identify = cmd
	}
}

// SetLogger replaces the session's logger and the queue's with it.
func (s *Session) SetLogger(l logger.Logger) {
	if l == nil {
		return
	}
	s.log = l
	s.queue.SetLogger(l)
}

// Queue returns the command queue bound to this session. Queries issued
// while disconnected fail with ErrNotConnected.
func (s *Session) Queue() *Queue {
	return s.queue
}

// State returns the current connection state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the instrument's *IDN? reply from the current
// connection, or "" when disconnected or unidentified.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// Start launches the connection manager and returns the event stream.
// Events are dropped, not blocked on, if the consumer falls behind.
func (s *Session) Start() <-chan Event {
	go s.manage()
	return s.events
}

// Close stops the manager, closes any live connection, and fails pending
// queries with ErrCleared. Safe to call more than once.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.stopCh)
	conn := s.conn
	s.conn = nil
	s.state = StateDisconnected
	s.identity = ""
	s.mu.Unlock()

	if conn != nil {
		conn.Close()
	}
	s.queue.Clear()
	return nil
}

// transmit is the queue's send function. It snapshots the current
// connection under the session lock, then writes without holding it.
func (s *Session) transmit(cmd string) error {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}
	return conn.WriteCommand(cmd)
}

func (s *Session) manage() {
	backoff := reconnectBaseDelay
	for {
		if s.isStopped() {
			return
		}
		s.emit(Event{State: StateConnecting})

		conn, err := s.dialFn(s.address, s.dialTimeout)
		if err != nil {
			s.emit(Event{State: StateDisconnected, Err: err})
			if !s.sleep(backoff) {
				return
			}
			backoff = min(backoff*2, reconnectMaxDelay)
			continue
		}
		backoff = reconnectBaseDelay

		closed := make(chan error, 1)
		s.setConn(conn)
		conn.Start(func(line string) { s.queue.FeedLine(line) }, func(err error) {
			closed <- err
		})

		identity, idErr := s.queue.Query(context.Background(), s.identify)
		if idErr != nil {
			s.log.Debug("[scpi] identify failed: %v", idErr)
		}
		s.setIdentity(identity)
		s.emit(Event{State: StateConnected, Identity: identity})
		s.log.Debug("[scpi] connected to %s (%s)", s.address, identity)

		select {
		case err := <-closed:
			s.dropConn(conn)
			s.emit(Event{State: StateDisconnected, Err: err})
			if !s.sleep(backoff) {
				return
			}
		case <-s.stopCh:
			conn.Close()
			s.dropConn(conn)
			return
		}
	}
}

func (s *Session) setConn(conn *Conn) {
	s.mu.Lock()
	s.conn = conn
	s.mu.Unlock()
}

func (s *Session) setIdentity(identity string) {
	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()
}

// dropConn detaches conn if it is still current, then clears the queue.
// Close may have already detached it; clearing twice is harmless.
func (s *Session) dropConn(conn *Conn) {
	s.mu.Lock()
	if s.conn == conn {
		s.conn = nil
		s.identity = ""
	}
	s.mu.Unlock()
	conn.Close()
	s.queue.Clear()
}

func (s *Session) emit(ev Event) {
	s.mu.Lock()
	s.state = ev.State
	s.mu.Unlock()

	select {
	case s.events <- ev:
	default:
		s.log.Debug("[scpi] dropping session event: %v", ev.State)
	}
}

func (s *Session) sleep(d time.Duration) bool {
	select {
	case <-time.After(d):
		return true
	case <-s.stopCh:
		return false
	}
}

func (s *Session) isStopped() bool {
	select {
	case <-s.stopCh:
		return true
	default:
		return false
	}
}
