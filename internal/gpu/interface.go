package gpu

import (
	"fmt"

	"codeberg.org/mutker/hwmon/internal/errors"
)

// Vendor tags the variant family of a GPU snapshot.
type Vendor string

const (
	VendorNone   Vendor = "None"
	VendorApple  Vendor = "Apple"
	VendorNvidia Vendor = "Nvidia"
	VendorAMD    Vendor = "Amd"
)

// Snapshot is one immutable reading of GPU state. Each vendor variant carries
// only the fields meaningful to that vendor; the None variant is a legitimate
// terminal value for hosts without a usable GPU, not an error.
type Snapshot interface {
	Vendor() Vendor
	MemoryTotalMB() uint32
	Validate() error
}

// None reports that no usable GPU was detected.
type None struct{}

func (None) Vendor() Vendor        { return VendorNone }
func (None) MemoryTotalMB() uint32 { return 0 }
func (None) Validate() error       { return nil }

// Apple is a snapshot of an Apple Silicon GPU. Metrics that powermetrics did
// not report are nil.
type Apple struct {
	Model              string
	TotalMB            uint32
	UsedMB             *uint32
	FreeMB             *uint32
	TemperatureC       *float64
	PowerUsageW        *float64
	UtilizationPercent *float64
	DriverVersion      *string
}

func (a Apple) Vendor() Vendor        { return VendorApple }
func (a Apple) MemoryTotalMB() uint32 { return a.TotalMB }

func (a Apple) Validate() error {
	return validateOptional(optionalFields{
		temperatureC:       a.TemperatureC,
		powerUsageW:        a.PowerUsageW,
		utilizationPercent: a.UtilizationPercent,
	})
}

// Nvidia is a snapshot of an NVIDIA GPU as read through NVML.
type Nvidia struct {
	Name               string
	TotalMB            uint32
	UsedMB             *uint32
	FreeMB             *uint32
	TemperatureC       *float64
	PowerUsageW        *float64
	UtilizationPercent *float64
	CUDAVersion        *string
	DriverVersion      *string
	ComputeCapability  *string
}

func (n Nvidia) Vendor() Vendor        { return VendorNvidia }
func (n Nvidia) MemoryTotalMB() uint32 { return n.TotalMB }

func (n Nvidia) Validate() error {
	return validateOptional(optionalFields{
		temperatureC:       n.TemperatureC,
		powerUsageW:        n.PowerUsageW,
		utilizationPercent: n.UtilizationPercent,
	})
}

// AMD is a snapshot of an AMD GPU.
type AMD struct {
	Name               string
	TotalMB            uint32
	UsedMB             *uint32
	FreeMB             *uint32
	TemperatureC       *float64
	PowerUsageW        *float64
	UtilizationPercent *float64
}

func (a AMD) Vendor() Vendor        { return VendorAMD }
func (a AMD) MemoryTotalMB() uint32 { return a.TotalMB }

func (a AMD) Validate() error {
	return validateOptional(optionalFields{
		temperatureC:       a.TemperatureC,
		powerUsageW:        a.PowerUsageW,
		utilizationPercent: a.UtilizationPercent,
	})
}

// optionalFields groups the metrics shared across vendor variants. Each field
// is either absent or must be well-formed on its own; there is no cross-field
// invariant.
type optionalFields struct {
	temperatureC       *float64
	powerUsageW        *float64
	utilizationPercent *float64
}

func validateOptional(f optionalFields) error {
	errFactory := errors.New()

	if f.temperatureC != nil && *f.temperatureC < 0 {
		return errFactory.WithMessage(ErrInvalidSnapshot,
			fmt.Sprintf("negative GPU temperature: %v", *f.temperatureC))
	}
	if f.powerUsageW != nil && *f.powerUsageW < 0 {
		return errFactory.WithMessage(ErrInvalidSnapshot,
			fmt.Sprintf("negative GPU power draw: %v", *f.powerUsageW))
	}
	if f.utilizationPercent != nil && (*f.utilizationPercent < 0 || *f.utilizationPercent > 100) {
		return errFactory.WithMessage(ErrInvalidSnapshot,
			fmt.Sprintf("GPU utilization out of range: %v", *f.utilizationPercent))
	}

	return nil
}
