package scpi

import (
	"bufio"
	"io"
	"net"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kovar/sps5000x/internal/errors"
)

const (
	// DefaultPort is the raw-socket SCPI port used when an address omits one.
	DefaultPort = "5025"
	// DefaultDialTimeout bounds TCP connection establishment.
	DefaultDialTimeout = 5 * time.Second
)

// Conn is a line-oriented connection to an instrument. Commands go out
// newline-terminated; replies come back one line at a time from a single
// reader goroutine.
type Conn struct {
	rwc io.ReadWriteCloser

	writeMu sync.Mutex

	closeOnce sync.Once
	closeErr  error
}

// NewConn wraps an established byte stream (a TCP connection, a USBTMC
// device, or a pipe in tests).
func NewConn(rwc io.ReadWriteCloser) *Conn {
	return &Conn{rwc: rwc}
}

// Dial opens a connection to an instrument address. Supported forms:
//
//	tcp://10.0.0.5:5025    raw TCP socket
//	10.0.0.5               raw TCP, port defaulted to 5025
//	usbtmc:///dev/usbtmc0  USBTMC character device
//	/dev/usbtmc0           USBTMC character device
func Dial(address string, timeout time.Duration) (*Conn, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, errors.New(errors.ErrConfig,
			"No instrument address configured",
			"Set address in .spsmon.yaml or pass --address")
	}
	if timeout <= 0 {
		timeout = DefaultDialTimeout
	}

	switch {
	case strings.HasPrefix(address, "usbtmc://"):
		return openDevice(strings.TrimPrefix(address, "usbtmc://"))
	case strings.HasPrefix(address, "/dev/"):
		return openDevice(address)
	}

	target := withDefaultPort(strings.TrimPrefix(address, "tcp://"))
	nc, err := net.DialTimeout("tcp", target, timeout)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConn,
			"Cannot connect to instrument at "+target,
			"Check that the instrument is powered on, on the network, and listening on its SCPI socket")
	}
	return NewConn(nc), nil
}

func openDevice(path string) (*Conn, error) {
	f, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConn,
			"Cannot open instrument device "+path,
			"Check the device path and that your user can write to USBTMC devices")
	}
	return NewConn(f), nil
}

// withDefaultPort appends DefaultPort when target has none. Bare IPv6
// addresses get bracketed by JoinHostPort.
func withDefaultPort(target string) string {
	if _, _, err := net.SplitHostPort(target); err == nil {
		return target
	}
	return net.JoinHostPort(target, DefaultPort)
}

// Start launches the reader goroutine. Each non-blank reply line is passed
// to onLine with surrounding whitespace trimmed; blank lines are CR
// remnants or keepalive noise, never reply payloads. When the stream ends,
// onClosed receives the read error (nil on clean EOF).
func (c *Conn) Start(onLine func(string), onClosed func(error)) {
	go func() {
		sc := bufio.NewScanner(c.rwc)
		sc.Buffer(make([]byte, 0, 4096), 256*1024)
		for sc.Scan() {
			line := strings.TrimSpace(sc.Text())
			if line == "" {
				continue
			}
			onLine(line)
		}
		if onClosed != nil {
			onClosed(sc.Err())
		}
	}()
}

// WriteCommand transmits one command, appending the newline terminator.
// Writes are serialized so concurrent callers cannot interleave bytes.
func (c *Conn) WriteCommand(cmd string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if _, err := io.WriteString(c.rwc, cmd+"\n"); err != nil {
		return errors.Wrap(err, "Failed to write command to instrument")
	}
	return nil
}

// Close shuts the underlying stream. Safe to call more than once; the
// reader goroutine exits when its next read fails.
func (c *Conn) Close() error {
	c.closeOnce.Do(func() {
		c.closeErr = c.rwc.Close()
	})
	return c.closeErr
}
