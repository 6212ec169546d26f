package hardware

import (
	"fmt"
	"strings"

	"codeberg.org/mutker/hwmon/internal/errors"
)

// requiredFields lists the payload fields every hardware reading must carry,
// in the order they are checked.
var requiredFields = []string{
	FieldCPUCount,
	FieldCPUBrand,
	FieldMemoryTotal,
	FieldMemoryUsed,
	FieldPlatform,
}

// Validate checks a raw payload against the hardware reading contract and
// converts it into a Snapshot. Rules are applied in a fixed order and the
// first violation wins; no partial snapshot is ever returned.
func Validate(raw any) (Snapshot, error) {
	errFactory := errors.New()

	record, ok := asRecord(raw)
	if !ok || record == nil {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidPayload,
			fmt.Sprintf("hardware payload is not a structured record: %T", raw))
	}

	for _, field := range requiredFields {
		if _, present := record[field]; !present {
			return Snapshot{}, errFactory.WithMessage(ErrMissingField,
				fmt.Sprintf("hardware payload is missing required field %q", field))
		}
	}

	cpuCount, ok := asInt(record[FieldCPUCount])
	if !ok || cpuCount <= 0 {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidCPUCount,
			fmt.Sprintf("invalid CPU count: %v", record[FieldCPUCount]))
	}

	cpuBrand, ok := asString(record[FieldCPUBrand])
	if !ok || strings.TrimSpace(cpuBrand) == "" {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidCPUBrand,
			fmt.Sprintf("invalid CPU brand: %v", record[FieldCPUBrand]))
	}

	memoryTotal, ok := asInt(record[FieldMemoryTotal])
	if !ok || memoryTotal < 0 {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidMemoryTotal,
			fmt.Sprintf("invalid total memory value: %v", record[FieldMemoryTotal]))
	}

	memoryUsed, ok := asInt(record[FieldMemoryUsed])
	if !ok || memoryUsed < 0 {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidMemoryUsed,
			fmt.Sprintf("invalid used memory value: %v", record[FieldMemoryUsed]))
	}

	if memoryUsed > memoryTotal {
		return Snapshot{}, errFactory.WithMessage(ErrMemoryExceedsTotal,
			fmt.Sprintf("used memory (%d KB) exceeds total memory (%d KB)", memoryUsed, memoryTotal))
	}

	platform, ok := asString(record[FieldPlatform])
	if !ok || strings.TrimSpace(platform) == "" {
		return Snapshot{}, errFactory.WithMessage(ErrInvalidPlatform,
			fmt.Sprintf("invalid platform: %v", record[FieldPlatform]))
	}

	return Snapshot{
		CPUCount:      int(cpuCount),
		CPUBrand:      strings.TrimSpace(cpuBrand),
		MemoryTotalKB: uint64(memoryTotal),
		MemoryUsedKB:  uint64(memoryUsed),
		Platform:      strings.TrimSpace(platform),
	}, nil
}

func asRecord(v any) (RawPayload, bool) {
	switch record := v.(type) {
	case RawPayload:
		return record, true
	case map[string]any:
		return record, true
	default:
		return nil, false
	}
}

// asInt coerces the numeric representations a payload may carry (native
// integers, or integral floats from a JSON decoder) into an int64.
func asInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		if n != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	case float32:
		if float64(n) != float64(int64(n)) {
			return 0, false
		}
		return int64(n), true
	default:
		return 0, false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}
