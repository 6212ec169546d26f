package gpu

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"time"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/logger"
)

const (
	ioregTimeout        = 2 * time.Second
	powermetricsTimeout = 3 * time.Second

	// Sensible floor when ioreg does not expose the shared memory size
	defaultAppleMemoryMB = 8192
)

// appleDetector shells out to ioreg for static device info and powermetrics
// for live metrics. Static info is cached after the first successful read.
type appleDetector struct {
	mu     sync.Mutex
	cached *Apple
}

// Detect returns an Apple snapshot, or an error when no Apple Silicon GPU is
// present or the system tools cannot be executed.
func (d *appleDetector) Detect(ctx context.Context) (Apple, error) {
	static, err := d.staticInfo(ctx)
	if err != nil {
		return Apple{}, err
	}

	snapshot := static

	// Live metrics are best-effort: powermetrics needs elevated privileges
	// and its absence does not invalidate the snapshot.
	if utilization, power, temperature, err := d.liveMetrics(ctx); err == nil {
		snapshot.UtilizationPercent = utilization
		snapshot.PowerUsageW = power
		snapshot.TemperatureC = temperature
	} else {
		logger.Debug().Err(err).Msg("powermetrics unavailable, reporting static GPU info only")
	}

	return snapshot, nil
}

func (d *appleDetector) staticInfo(ctx context.Context) (Apple, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.cached != nil {
		return *d.cached, nil
	}

	errFactory := errors.New()

	out, err := runCmd(ctx, ioregTimeout, "ioreg", "-l", "-w0", "-r", "-c", "AGXAccelerator", "-d", "1")
	if err != nil {
		return Apple{}, errFactory.Wrap(ErrCommandFailed, err)
	}

	static, err := parseIORegOutput(out)
	if err != nil {
		return Apple{}, err
	}

	logger.Info().
		Str("model", static.Model).
		Uint32("memory_total_mb", static.TotalMB).
		Msg("Detected Apple Silicon GPU")

	d.cached = &static

	return static, nil
}

func parseIORegOutput(out string) (Apple, error) {
	errFactory := errors.New()

	memoryMB := uint32(defaultAppleMemoryMB)
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, "gpu-memory-total-size") {
			continue
		}
		if _, value, found := strings.Cut(line, "="); found {
			if parsed, err := strconv.ParseUint(strings.TrimSpace(value), 10, 32); err == nil {
				memoryMB = uint32(parsed)
			}
		}
		break
	}

	var model string
	switch {
	case strings.Contains(out, "M1 Pro"):
		model = "Apple M1 Pro"
	case strings.Contains(out, "M1 Max"):
		model = "Apple M1 Max"
	case strings.Contains(out, "M1"):
		model = "Apple M1"
	case strings.Contains(out, "M2"):
		model = "Apple M2"
	default:
		return Apple{}, errFactory.WithMessage(ErrParseFailed, "no Apple Silicon GPU found")
	}

	return Apple{
		Model:   model,
		TotalMB: memoryMB,
	}, nil
}

func (d *appleDetector) liveMetrics(ctx context.Context) (utilization, power, temperature *float64, err error) {
	errFactory := errors.New()

	out, err := runCmd(ctx, powermetricsTimeout,
		"powermetrics", "--samplers", "gpu_power", "-i", "1000", "-n", "1")
	if err != nil {
		return nil, nil, nil, errFactory.Wrap(ErrCommandFailed, err)
	}

	// "GPU Active:" with the colon so the residency line does not match
	utilization = scanMetricLine(out, "GPU Active:", "%")
	power = scanMetricLine(out, "GPU Power", "W")
	temperature = scanMetricLine(out, "GPU die temperature", "C")

	return utilization, power, temperature, nil
}

// scanMetricLine finds the first line containing marker and parses the value
// after the colon, stripping the given unit suffix. Returns nil when the line
// is missing or malformed.
func scanMetricLine(out, marker, unit string) *float64 {
	for _, line := range strings.Split(out, "\n") {
		if !strings.Contains(line, marker) {
			continue
		}
		_, raw, found := strings.Cut(line, ":")
		if !found {
			return nil
		}
		raw = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(raw), unit))
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil
		}
		return &value
	}

	return nil
}

func runCmd(ctx context.Context, timeout time.Duration, name string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, name, args...).Output()
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	if err != nil {
		return "", fmt.Errorf("%s failed: %w", name, err)
	}

	return string(out), nil
}
