package hardware_test

import (
	"testing"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerive(t *testing.T) {
	snapshot := hardware.Snapshot{
		CPUCount:      8,
		CPUBrand:      "Intel Core i7",
		MemoryTotalKB: 16 * 1024 * 1024,
		MemoryUsedKB:  8 * 1024 * 1024,
		Platform:      "darwin",
	}

	metrics, err := hardware.Derive(snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 16.0, metrics.TotalMemoryGB, 0.001)
	assert.InDelta(t, 8.0, metrics.UsedMemoryGB, 0.001)
	assert.InDelta(t, 50.0, metrics.MemoryUsagePercentage, 0.001)
}

func TestDeriveRounding(t *testing.T) {
	snapshot := hardware.Snapshot{
		CPUCount:      4,
		CPUBrand:      "Apple M2",
		MemoryTotalKB: 3 * 1024 * 1024,
		MemoryUsedKB:  1 * 1024 * 1024,
		Platform:      "darwin",
	}

	metrics, err := hardware.Derive(snapshot)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, metrics.TotalMemoryGB, 0.001)
	assert.InDelta(t, 1.0, metrics.UsedMemoryGB, 0.001)
	// 33.333... rounds to one decimal place
	assert.InDelta(t, 33.3, metrics.MemoryUsagePercentage, 0.001)

	snapshot.MemoryTotalKB = 12345678
	snapshot.MemoryUsedKB = 0
	metrics, err = hardware.Derive(snapshot)
	require.NoError(t, err)
	assert.InDelta(t, 11.77, metrics.TotalMemoryGB, 0.001)
}

func TestDeriveIsPure(t *testing.T) {
	snapshot := hardware.Snapshot{
		CPUCount:      16,
		CPUBrand:      "AMD Ryzen 9",
		MemoryTotalKB: 64 * 1024 * 1024,
		MemoryUsedKB:  13 * 1024 * 1024,
		Platform:      "linux",
	}

	first, err := hardware.Derive(snapshot)
	require.NoError(t, err)
	second, err := hardware.Derive(snapshot)
	require.NoError(t, err)

	assert.Equal(t, first, second, "derive must be deterministic")
}

func TestDeriveBounds(t *testing.T) {
	cases := []struct {
		totalKB uint64
		usedKB  uint64
	}{
		{1, 0},
		{1, 1},
		{1024, 512},
		{16 * 1024 * 1024, 16 * 1024 * 1024},
		{128 * 1024 * 1024, 1},
	}

	for _, tc := range cases {
		metrics, err := hardware.Derive(hardware.Snapshot{
			CPUCount:      1,
			CPUBrand:      "cpu",
			MemoryTotalKB: tc.totalKB,
			MemoryUsedKB:  tc.usedKB,
			Platform:      "linux",
		})
		require.NoError(t, err)

		assert.GreaterOrEqual(t, metrics.TotalMemoryGB, 0.0)
		assert.GreaterOrEqual(t, metrics.UsedMemoryGB, 0.0)
		assert.GreaterOrEqual(t, metrics.MemoryUsagePercentage, 0.0)
		assert.LessOrEqual(t, metrics.MemoryUsagePercentage, 100.0)
	}
}

func TestDeriveRejectsUndefinedPercentage(t *testing.T) {
	snapshot := hardware.Snapshot{
		CPUCount:      8,
		CPUBrand:      "Intel Core i7",
		MemoryTotalKB: 0,
		MemoryUsedKB:  0,
		Platform:      "darwin",
	}

	_, err := hardware.Derive(snapshot)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrNonFiniteMetric, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "not finite")
}
