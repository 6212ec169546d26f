package telemetry_test

import (
	"context"
	"testing"

	"codeberg.org/mutker/hwmon/internal/errors"
	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/hardware"
	"codeberg.org/mutker/hwmon/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSource records whether the real source was consulted.
type stubSource struct {
	hardwareCalls int
	gpuCalls      int
}

func (s *stubSource) Hardware(_ context.Context) (hardware.RawPayload, error) {
	s.hardwareCalls++
	return hardware.RawPayload{
		"cpuCount":    4,
		"cpuBrand":    "stub",
		"memoryTotal": 1024 * 1024,
		"memoryUsed":  0,
		"platform":    "linux",
	}, nil
}

func (s *stubSource) GPU(_ context.Context) (gpu.Snapshot, error) {
	s.gpuCalls++
	return gpu.None{}, nil
}

func TestHarnessPassesThroughByDefault(t *testing.T) {
	stub := &stubSource{}
	harness := telemetry.NewHarness(stub)

	assert.False(t, harness.TestMode(), "test mode must be disabled by default")
	assert.False(t, harness.ErrorInjection(), "error injection must be disabled by default")

	_, err := harness.Hardware(context.Background())
	require.NoError(t, err)
	_, err = harness.GPU(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, stub.hardwareCalls)
	assert.Equal(t, 1, stub.gpuCalls)
}

func TestHarnessTestModeServesFixtures(t *testing.T) {
	stub := &stubSource{}
	harness := telemetry.NewHarness(stub)
	harness.SetTestMode(true)

	payload, err := harness.Hardware(context.Background())
	require.NoError(t, err)

	snapshot, err := hardware.Validate(payload)
	require.NoError(t, err)
	assert.Equal(t, 8, snapshot.CPUCount)
	assert.Equal(t, "Intel Core i7", snapshot.CPUBrand)
	assert.Equal(t, uint64(16*1024*1024), snapshot.MemoryTotalKB)

	gpuSnapshot, err := harness.GPU(context.Background())
	require.NoError(t, err)
	assert.Equal(t, gpu.VendorApple, gpuSnapshot.Vendor())
	assert.Equal(t, uint32(8192), gpuSnapshot.MemoryTotalMB())
	require.NoError(t, gpuSnapshot.Validate())

	assert.Zero(t, stub.hardwareCalls, "test mode must not consult the real source")
	assert.Zero(t, stub.gpuCalls, "test mode must not consult the real source")
}

func TestHarnessErrorInjection(t *testing.T) {
	harness := telemetry.NewHarness(&stubSource{})
	harness.SetErrorInjection(true)

	_, err := harness.Hardware(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrSimulatedFailure, errors.CodeOf(err))

	_, err = harness.GPU(context.Background())
	require.Error(t, err)
	assert.Equal(t, telemetry.ErrSimulatedFailure, errors.CodeOf(err))
}

func TestHarnessErrorInjectionRoundTrip(t *testing.T) {
	harness := telemetry.NewHarness(&stubSource{})

	harness.SetErrorInjection(true)
	_, err := harness.Hardware(context.Background())
	require.Error(t, err)

	// Normal behavior must be restored on the very next call
	harness.SetErrorInjection(false)
	_, err = harness.Hardware(context.Background())
	require.NoError(t, err)
}

func TestHarnessInjectionWinsOverTestMode(t *testing.T) {
	harness := telemetry.NewHarness(&stubSource{})
	harness.SetTestMode(true)
	harness.SetErrorInjection(true)

	_, err := harness.Hardware(context.Background())
	require.Error(t, err)

	harness.SetErrorInjection(false)
	_, err = harness.Hardware(context.Background())
	require.NoError(t, err, "fixtures must be served again once injection is off")
}

func TestFixtureGPUIsWellFormed(t *testing.T) {
	snapshot := telemetry.FixtureGPU()
	require.NoError(t, snapshot.Validate())

	apple, ok := snapshot.(gpu.Apple)
	require.True(t, ok)
	require.NotNil(t, apple.UsedMB)
	require.NotNil(t, apple.FreeMB)
	assert.Equal(t, uint32(2048), *apple.UsedMB)
	assert.Equal(t, uint32(6144), *apple.FreeMB)
	require.NotNil(t, apple.DriverVersion)
	assert.Equal(t, "Test Driver", *apple.DriverVersion)
}
