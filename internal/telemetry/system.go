package telemetry

import (
	"context"
	"runtime"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/hardware"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

const bytesPerKB = 1024

// System reads real hardware state from the operating system via gopsutil and
// probes for GPUs through the vendor detector chain.
type System struct {
	detector *gpu.Detector
}

func NewSystem() *System {
	return &System{
		detector: gpu.NewDetector(),
	}
}

// Hardware collects one raw hardware reading. Memory is converted from the
// byte counts gopsutil reports to the kilobyte unit the payload contract
// requires.
func (s *System) Hardware(ctx context.Context) (hardware.RawPayload, error) {
	errFactory := errors.New()

	coreCount, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		return nil, errFactory.Wrap(ErrCPUInfoFailed, err)
	}

	cpuInfo, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return nil, errFactory.Wrap(ErrCPUInfoFailed, err)
	}

	var brand string
	if len(cpuInfo) > 0 {
		brand = cpuInfo[0].ModelName
	}

	memory, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, errFactory.Wrap(ErrMemoryInfoFailed, err)
	}

	return hardware.RawPayload{
		hardware.FieldCPUCount:    coreCount,
		hardware.FieldCPUBrand:    brand,
		hardware.FieldMemoryTotal: memory.Total / bytesPerKB,
		hardware.FieldMemoryUsed:  memory.Used / bytesPerKB,
		hardware.FieldPlatform:    runtime.GOOS,
	}, nil
}

// GPU probes the host for a usable GPU.
func (s *System) GPU(ctx context.Context) (gpu.Snapshot, error) {
	errFactory := errors.New()

	snapshot, err := s.detector.Detect(ctx)
	if err != nil {
		return nil, errFactory.Wrap(ErrGPUInfoFailed, err)
	}

	return snapshot, nil
}

// Close releases detector resources.
func (s *System) Close() error {
	return s.detector.Shutdown()
}
