package hardware_test

import (
	"testing"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/hardware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() hardware.RawPayload {
	return hardware.RawPayload{
		"cpuCount":    8,
		"cpuBrand":    "Intel Core i7",
		"memoryTotal": 16 * 1024 * 1024,
		"memoryUsed":  8 * 1024 * 1024,
		"platform":    "darwin",
	}
}

func TestValidate(t *testing.T) {
	snapshot, err := hardware.Validate(validPayload())
	require.NoError(t, err)

	assert.Equal(t, 8, snapshot.CPUCount)
	assert.Equal(t, "Intel Core i7", snapshot.CPUBrand)
	assert.Equal(t, uint64(16*1024*1024), snapshot.MemoryTotalKB)
	assert.Equal(t, uint64(8*1024*1024), snapshot.MemoryUsedKB)
	assert.Equal(t, "darwin", snapshot.Platform)
}

func TestValidateJSONNumbers(t *testing.T) {
	// A JSON decoder hands numbers over as float64
	payload := hardware.RawPayload{
		"cpuCount":    float64(4),
		"cpuBrand":    "Apple M2",
		"memoryTotal": float64(8 * 1024 * 1024),
		"memoryUsed":  float64(2 * 1024 * 1024),
		"platform":    "darwin",
	}

	snapshot, err := hardware.Validate(payload)
	require.NoError(t, err)
	assert.Equal(t, 4, snapshot.CPUCount)
	assert.Equal(t, uint64(8*1024*1024), snapshot.MemoryTotalKB)
}

func TestValidateRejectsUnstructuredInput(t *testing.T) {
	for _, raw := range []any{nil, 42, "cpu", []int{1, 2, 3}, hardware.RawPayload(nil)} {
		_, err := hardware.Validate(raw)
		require.Error(t, err, "expected rejection for %#v", raw)
		assert.Equal(t, hardware.ErrInvalidPayload, errors.CodeOf(err))
	}
}

func TestValidateNamesFirstMissingField(t *testing.T) {
	for _, field := range []string{"cpuCount", "cpuBrand", "memoryTotal", "memoryUsed", "platform"} {
		payload := validPayload()
		delete(payload, field)

		_, err := hardware.Validate(payload)
		require.Error(t, err, "expected rejection with %s missing", field)
		assert.Equal(t, hardware.ErrMissingField, errors.CodeOf(err))
		assert.Contains(t, err.Error(), field)
	}
}

func TestValidateRejectsInvalidCPUCount(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"zero", 0},
		{"negative", -2},
		{"fractional", 2.5},
		{"string", "8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := validPayload()
			payload["cpuCount"] = tt.value

			_, err := hardware.Validate(payload)
			require.Error(t, err)
			assert.Equal(t, hardware.ErrInvalidCPUCount, errors.CodeOf(err))
			assert.Contains(t, err.Error(), "CPU count")
		})
	}
}

func TestValidateRejectsBlankCPUBrand(t *testing.T) {
	for _, brand := range []any{"", "   ", 7} {
		payload := validPayload()
		payload["cpuBrand"] = brand

		_, err := hardware.Validate(payload)
		require.Error(t, err)
		assert.Equal(t, hardware.ErrInvalidCPUBrand, errors.CodeOf(err))
	}
}

func TestValidateRejectsInvalidMemoryValues(t *testing.T) {
	payload := validPayload()
	payload["memoryTotal"] = -1
	_, err := hardware.Validate(payload)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrInvalidMemoryTotal, errors.CodeOf(err))

	payload = validPayload()
	payload["memoryUsed"] = "lots"
	_, err = hardware.Validate(payload)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrInvalidMemoryUsed, errors.CodeOf(err))
}

func TestValidateRejectsUsedExceedingTotal(t *testing.T) {
	payload := validPayload()
	payload["memoryTotal"] = 4 * 1024 * 1024
	payload["memoryUsed"] = 5 * 1024 * 1024

	_, err := hardware.Validate(payload)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrMemoryExceedsTotal, errors.CodeOf(err))
	assert.Contains(t, err.Error(), "exceed")
}

func TestValidateRejectsBlankPlatform(t *testing.T) {
	payload := validPayload()
	payload["platform"] = " "

	_, err := hardware.Validate(payload)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrInvalidPlatform, errors.CodeOf(err))
}

func TestValidateFailFastOrder(t *testing.T) {
	// Multiple violations: the CPU count check fires before the memory checks
	payload := validPayload()
	payload["cpuCount"] = 0
	payload["memoryUsed"] = 32 * 1024 * 1024

	_, err := hardware.Validate(payload)
	require.Error(t, err)
	assert.Equal(t, hardware.ErrInvalidCPUCount, errors.CodeOf(err))
}

func TestValidateTrimsLabels(t *testing.T) {
	payload := validPayload()
	payload["cpuBrand"] = "  AMD Ryzen 9  "
	payload["platform"] = " linux "

	snapshot, err := hardware.Validate(payload)
	require.NoError(t, err)
	assert.Equal(t, "AMD Ryzen 9", snapshot.CPUBrand)
	assert.Equal(t, "linux", snapshot.Platform)
}

func TestValidateAllowsZeroMemory(t *testing.T) {
	// Total memory of zero passes validation; it is the deriver that rejects
	// the undefined percentage.
	payload := validPayload()
	payload["memoryTotal"] = 0
	payload["memoryUsed"] = 0

	snapshot, err := hardware.Validate(payload)
	require.NoError(t, err)
	assert.Zero(t, snapshot.MemoryTotalKB)
}
