package hardware

import "codeberg.org/mutker/hwmon/internal/errors"

const (
	// Validation errors
	ErrInvalidPayload     = errors.ErrorCode("hardware_invalid_payload")
	ErrMissingField       = errors.ErrorCode("hardware_missing_field")
	ErrInvalidCPUCount    = errors.ErrorCode("hardware_invalid_cpu_count")
	ErrInvalidCPUBrand    = errors.ErrorCode("hardware_invalid_cpu_brand")
	ErrInvalidMemoryTotal = errors.ErrorCode("hardware_invalid_memory_total")
	ErrInvalidMemoryUsed  = errors.ErrorCode("hardware_invalid_memory_used")
	ErrMemoryExceedsTotal = errors.ErrorCode("hardware_memory_exceeds_total")
	ErrInvalidPlatform    = errors.ErrorCode("hardware_invalid_platform")

	// Derivation errors
	ErrNonFiniteMetric = errors.ErrorCode("hardware_non_finite_metric")
)
