package hardware

import (
	"fmt"
	"math"

	"codeberg.org/mutker/hwmon/internal/errors"
)

// kbPerGB is the fixed divisor for converting kilobytes to gigabytes.
// Sources always report kilobytes; any byte-based reading must be scaled
// before it reaches a Snapshot.
const kbPerGB = 1024 * 1024

// Derive computes the human-facing resource metrics for a validated snapshot.
// It is a pure function: same snapshot in, same metrics out, no I/O.
func Derive(s Snapshot) (ResourceMetrics, error) {
	errFactory := errors.New()

	totalGB := float64(s.MemoryTotalKB) / kbPerGB
	usedGB := float64(s.MemoryUsedKB) / kbPerGB
	percentage := float64(s.MemoryUsedKB) / float64(s.MemoryTotalKB) * 100

	for name, value := range map[string]float64{
		"totalMemoryGB":         totalGB,
		"usedMemoryGB":          usedGB,
		"memoryUsagePercentage": percentage,
	} {
		if math.IsNaN(value) || math.IsInf(value, 0) {
			return ResourceMetrics{}, errFactory.WithMessage(ErrNonFiniteMetric,
				fmt.Sprintf("derived metric %s is not finite (total %d KB, used %d KB)",
					name, s.MemoryTotalKB, s.MemoryUsedKB))
		}
	}

	return ResourceMetrics{
		TotalMemoryGB:         round(totalGB, 2),
		UsedMemoryGB:          round(usedGB, 2),
		MemoryUsagePercentage: round(percentage, 1),
	}, nil
}

func round(value float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))

	return math.Round(value*scale) / scale
}
