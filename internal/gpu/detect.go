package gpu

import (
	"context"
	"runtime"
	"sync"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/logger"
)

// Detector probes the host for a usable GPU, preferring NVIDIA over Apple
// Silicon. Hosts without either report the None variant.
type Detector struct {
	mu    sync.Mutex
	nvml  nvmlController
	apple *appleDetector
}

func NewDetector() *Detector {
	return &Detector{
		nvml:  &nvmlWrapper{},
		apple: &appleDetector{},
	}
}

// Detect returns a snapshot for the most capable GPU on the host. A host
// without any GPU yields None, which is a valid terminal state. Errors are
// reserved for hosts where a GPU is present but cannot be read.
func (d *Detector) Detect(ctx context.Context) (Snapshot, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if snapshot, ok := d.detectNvidia(); ok {
		if err := snapshot.Validate(); err != nil {
			return nil, err
		}
		return snapshot, nil
	}

	if runtime.GOOS == "darwin" {
		snapshot, err := d.apple.Detect(ctx)
		if err != nil {
			if errors.CodeOf(err) == ErrParseFailed {
				// Machine without Apple Silicon graphics
				return None{}, nil
			}
			return nil, err
		}
		if err := snapshot.Validate(); err != nil {
			return nil, err
		}
		return snapshot, nil
	}

	return None{}, nil
}

func (d *Detector) detectNvidia() (Nvidia, bool) {
	if err := d.nvml.Initialize(); err != nil {
		logger.Debug().Err(err).Msg("NVML unavailable, skipping NVIDIA detection")
		return Nvidia{}, false
	}

	count, err := d.nvml.DeviceCount()
	if err != nil || count == 0 {
		return Nvidia{}, false
	}

	snapshot, err := d.nvml.Snapshot(0)
	if err != nil {
		logger.Warn().Err(err).Msg("NVIDIA device present but unreadable")
		return Nvidia{}, false
	}

	return snapshot, true
}

// Shutdown releases the NVML handle, if one was acquired.
func (d *Detector) Shutdown() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.nvml.Shutdown()
}
