package dashboard

import (
	"testing"

	"github.com/kovar/sps5000x/internal/psu"
)

// Compile-time check that the bridge callbacks keep the poller's listener
// signatures. This catches signature drift at compile time.
func TestBridge_ListenerSignatures(t *testing.T) {
	b := NewBridge(nil)
	var _ func(psu.Reading) = b.OnReading
	var _ func(error) = b.OnCycleError
}
