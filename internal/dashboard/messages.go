package dashboard

import (
	"time"

	"github.com/kovar/sps5000x/internal/psu"
	"github.com/kovar/sps5000x/internal/scpi"
)

// ReadingMsg carries a completed poll cycle's snapshot.
type ReadingMsg struct {
	Reading psu.Reading
}

// CycleErrorMsg signals a poll cycle that failed and was discarded.
type CycleErrorMsg struct {
	Err error
}

// ConnMsg carries a session state transition.
type ConnMsg struct {
	Event scpi.Event
}

// ConsoleReplyMsg carries the outcome of a console-dispatched command.
type ConsoleReplyMsg struct {
	Cmd   string
	Reply string
	Err   error
}

// tickMsg drives the once-a-second header refresh ("last update Ns ago").
type tickMsg time.Time

// flashMsg requests a transient status line message.
type flashMsg struct {
	text  string
	isErr bool
}

// clearFlashMsg expires a flash message. The sequence number guards
// against an old timer clearing a newer message.
type clearFlashMsg struct {
	seq int
}

// exportDoneMsg signals a finished history CSV export.
type exportDoneMsg struct {
	path string
	err  error
}
