package gpu

import (
	"testing"

	"codeberg.org/mutker/hwmon/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIORegOutput = `+-o AGXAcceleratorG13X  <class AGXAcceleratorG13X>
    {
      "gpu-memory-total-size" = 16384
      "model" = <"Apple M1 Pro">
    }
`

const samplePowermetricsOutput = `**** GPU usage ****

GPU Active residency:  12.34%
GPU Active: 30.50%
GPU Power: 15.2 W
GPU die temperature: 45.8 C
`

func TestParseIORegOutput(t *testing.T) {
	snapshot, err := parseIORegOutput(sampleIORegOutput)
	require.NoError(t, err)

	assert.Equal(t, "Apple M1 Pro", snapshot.Model)
	assert.Equal(t, uint32(16384), snapshot.TotalMB)
}

func TestParseIORegOutputDefaultsMemory(t *testing.T) {
	snapshot, err := parseIORegOutput(`"model" = <"Apple M2">`)
	require.NoError(t, err)

	assert.Equal(t, "Apple M2", snapshot.Model)
	assert.Equal(t, uint32(defaultAppleMemoryMB), snapshot.TotalMB)
}

func TestParseIORegOutputNoAppleGPU(t *testing.T) {
	_, err := parseIORegOutput("IORegistryExplorer output without accelerators")
	require.Error(t, err)
	assert.Equal(t, ErrParseFailed, errors.CodeOf(err))
}

func TestScanMetricLine(t *testing.T) {
	utilization := scanMetricLine(samplePowermetricsOutput, "GPU Active:", "%")
	require.NotNil(t, utilization)
	assert.InDelta(t, 30.5, *utilization, 0.001)

	power := scanMetricLine(samplePowermetricsOutput, "GPU Power", "W")
	require.NotNil(t, power)
	assert.InDelta(t, 15.2, *power, 0.001)

	temperature := scanMetricLine(samplePowermetricsOutput, "GPU die temperature", "C")
	require.NotNil(t, temperature)
	assert.InDelta(t, 45.8, *temperature, 0.001)

	assert.Nil(t, scanMetricLine(samplePowermetricsOutput, "GPU frequency", "MHz"))
}
