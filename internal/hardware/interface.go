package hardware

// Payload field names as produced by telemetry sources.
const (
	FieldCPUCount    = "cpuCount"
	FieldCPUBrand    = "cpuBrand"
	FieldMemoryTotal = "memoryTotal"
	FieldMemoryUsed  = "memoryUsed"
	FieldPlatform    = "platform"
)

// RawPayload is an unvalidated hardware reading as handed over by a telemetry
// source. Values are untyped until Validate has accepted them.
type RawPayload map[string]any

// Snapshot is one immutable, validated reading of host hardware state.
// All memory values are in kilobytes. A Snapshot only exists as a value after
// Validate accepted the raw payload it came from.
type Snapshot struct {
	CPUCount      int
	CPUBrand      string
	MemoryTotalKB uint64
	MemoryUsedKB  uint64
	Platform      string
}

// ResourceMetrics holds the human-facing quantities derived from a Snapshot.
// GB values are rounded to two decimals, the percentage to one.
type ResourceMetrics struct {
	TotalMemoryGB         float64
	UsedMemoryGB          float64
	MemoryUsagePercentage float64
}
