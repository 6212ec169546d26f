package telemetry

import (
	"context"

	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/hardware"
)

// Source supplies raw telemetry on request. Hardware payloads are unvalidated;
// the poller pipes them through the hardware validator before anything is
// stored or displayed. Production code and tests use different Source
// implementations over the same code path.
type Source interface {
	// Hardware returns one raw hardware reading. Memory values are kilobytes.
	Hardware(ctx context.Context) (hardware.RawPayload, error)

	// GPU returns one GPU snapshot. The None variant means no usable GPU and
	// is not an error.
	GPU(ctx context.Context) (gpu.Snapshot, error)
}
