package telemetry

import (
	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/hardware"
)

// Fixture values used in test mode. They are deterministic so UI and polling
// behavior can be exercised without real hardware variance.
const (
	fixtureCPUCount      = 8
	fixtureCPUBrand      = "Intel Core i7"
	fixtureMemoryTotalKB = 16 * 1024 * 1024
	fixtureMemoryUsedKB  = 8 * 1024 * 1024
	fixturePlatform      = "darwin"

	fixtureGPUModel        = "Apple M1 Pro"
	fixtureGPUTotalMB      = 8192
	fixtureGPUUsedMB       = 2048
	fixtureGPUFreeMB       = 6144
	fixtureGPUTemperatureC = 45.0
	fixtureGPUPowerW       = 15.0
	fixtureGPUUtilization  = 30.0
	fixtureGPUDriver       = "Test Driver"
)

// FixtureHardware returns the deterministic hardware payload served in test
// mode. A fresh payload is built per call so callers can mutate their copy.
func FixtureHardware() hardware.RawPayload {
	return hardware.RawPayload{
		hardware.FieldCPUCount:    fixtureCPUCount,
		hardware.FieldCPUBrand:    fixtureCPUBrand,
		hardware.FieldMemoryTotal: fixtureMemoryTotalKB,
		hardware.FieldMemoryUsed:  fixtureMemoryUsedKB,
		hardware.FieldPlatform:    fixturePlatform,
	}
}

// FixtureGPU returns the deterministic GPU snapshot served in test mode.
func FixtureGPU() gpu.Snapshot {
	usedMB := uint32(fixtureGPUUsedMB)
	freeMB := uint32(fixtureGPUFreeMB)
	temperature := fixtureGPUTemperatureC
	power := fixtureGPUPowerW
	utilization := fixtureGPUUtilization
	driver := fixtureGPUDriver

	return gpu.Apple{
		Model:              fixtureGPUModel,
		TotalMB:            fixtureGPUTotalMB,
		UsedMB:             &usedMB,
		FreeMB:             &freeMB,
		TemperatureC:       &temperature,
		PowerUsageW:        &power,
		UtilizationPercent: &utilization,
		DriverVersion:      &driver,
	}
}
