package poller

import (
	"time"

	"codeberg.org/mutker/hwmon/internal/hardware"
)

// Phase is the observable state of a poller.
type Phase string

const (
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseReady   Phase = "ready"
	PhaseError   Phase = "error"
)

// Reading pairs a validated snapshot with the metrics derived from it. A
// Reading is immutable; the next tick supersedes it with a new value.
type Reading struct {
	Snapshot hardware.Snapshot
	Metrics  hardware.ResourceMetrics
	Taken    time.Time
}

// View is the read-only state a poller presents to its consumer. Current is
// the last validated reading and is retained across later error phases so a
// consumer can show the last known-good data alongside the error.
type View struct {
	Phase     Phase
	Current   *Reading
	LastError *TickError
}
