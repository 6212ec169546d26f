package telemetry

import (
	"context"
	"sync/atomic"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/hardware"
	"codeberg.org/mutker/hwmon/internal/logger"
)

// Harness wraps a Source with two independent simulation toggles. With test
// mode enabled, fetches serve deterministic fixture values instead of querying
// the wrapped source. With error injection enabled, every fetch fails with a
// fixed connectivity error. Both toggles persist until explicitly changed and
// the poller runs the exact same code path either way.
type Harness struct {
	source       Source
	testMode     atomic.Bool
	injectErrors atomic.Bool
}

func NewHarness(source Source) *Harness {
	return &Harness{source: source}
}

// SetTestMode switches between fixture data and the wrapped source.
func (h *Harness) SetTestMode(enabled bool) {
	h.testMode.Store(enabled)
	logger.Info().Bool("enabled", enabled).Msg("Test mode set")
}

// TestMode reports whether fixture data is being served.
func (h *Harness) TestMode() bool {
	return h.testMode.Load()
}

// SetErrorInjection toggles deterministic fetch failures.
func (h *Harness) SetErrorInjection(enabled bool) {
	h.injectErrors.Store(enabled)
	logger.Info().Bool("enabled", enabled).Msg("Error injection set")
}

// ErrorInjection reports whether fetches are being failed deterministically.
func (h *Harness) ErrorInjection() bool {
	return h.injectErrors.Load()
}

func (h *Harness) Hardware(ctx context.Context) (hardware.RawPayload, error) {
	if h.injectErrors.Load() {
		return nil, errors.New().WithMessage(ErrSimulatedFailure, "simulated hardware telemetry failure")
	}
	if h.testMode.Load() {
		return FixtureHardware(), nil
	}

	return h.source.Hardware(ctx)
}

func (h *Harness) GPU(ctx context.Context) (gpu.Snapshot, error) {
	if h.injectErrors.Load() {
		return nil, errors.New().WithMessage(ErrSimulatedFailure, "simulated GPU error")
	}
	if h.testMode.Load() {
		return FixtureGPU(), nil
	}

	return h.source.GPU(ctx)
}
