package telemetry

import "codeberg.org/mutker/hwmon/internal/errors"

const (
	// Collection Errors
	ErrCPUInfoFailed    = errors.ErrorCode("telemetry_cpu_info_failed")
	ErrMemoryInfoFailed = errors.ErrorCode("telemetry_memory_info_failed")
	ErrGPUInfoFailed    = errors.ErrorCode("telemetry_gpu_info_failed")

	// Simulation Errors
	ErrSimulatedFailure = errors.ErrorCode("telemetry_simulated_failure")
)
