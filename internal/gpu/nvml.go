package gpu

import (
	"fmt"

	"codeberg.org/mutker/hwmon/internal/errors"
	"github.com/NVIDIA/go-nvml/pkg/nvml"
)

const (
	milliWattsToWatts = 1000
	bytesPerMB        = 1024 * 1024
)

// nvmlController abstracts NVML operations for testing
type nvmlController interface {
	Initialize() error
	Shutdown() error
	DeviceCount() (int, error)
	Snapshot(index int) (Nvidia, error)
}

type nvmlWrapper struct {
	initialized bool
}

func (w *nvmlWrapper) Initialize() error {
	errFactory := errors.New()
	if w.initialized {
		return nil
	}

	ret := nvml.Init()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrInitFailed, newNVMLError(ret))
	}

	w.initialized = true

	return nil
}

func (w *nvmlWrapper) Shutdown() error {
	errFactory := errors.New()
	if !w.initialized {
		return nil
	}

	ret := nvml.Shutdown()
	if !IsNVMLSuccess(ret) {
		return errFactory.Wrap(ErrShutdownFailed, newNVMLError(ret))
	}

	w.initialized = false

	return nil
}

func (w *nvmlWrapper) DeviceCount() (int, error) {
	errFactory := errors.New()
	if !w.initialized {
		return 0, errFactory.New(ErrNotInitialized)
	}

	count, ret := nvml.DeviceGetCount()
	if !IsNVMLSuccess(ret) {
		return 0, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	return count, nil
}

// Snapshot reads the current state of the device at index. Required fields
// (name, total memory) fail the read; per-metric failures leave the metric
// absent, matching how NVML degrades on consumer cards.
func (w *nvmlWrapper) Snapshot(index int) (Nvidia, error) {
	errFactory := errors.New()
	if !w.initialized {
		return Nvidia{}, errFactory.New(ErrNotInitialized)
	}

	device, ret := nvml.DeviceGetHandleByIndex(index)
	if !IsNVMLSuccess(ret) {
		return Nvidia{}, errFactory.Wrap(ErrDeviceNotFound, newNVMLError(ret))
	}

	name, ret := device.GetName()
	if !IsNVMLSuccess(ret) {
		return Nvidia{}, errFactory.Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	memInfo, ret := device.GetMemoryInfo()
	if !IsNVMLSuccess(ret) {
		return Nvidia{}, errFactory.Wrap(ErrDeviceInfoFailed, newNVMLError(ret))
	}

	snapshot := Nvidia{
		Name:    name,
		TotalMB: uint32(memInfo.Total / bytesPerMB),
	}

	usedMB := uint32(memInfo.Used / bytesPerMB)
	freeMB := uint32(memInfo.Free / bytesPerMB)
	snapshot.UsedMB = &usedMB
	snapshot.FreeMB = &freeMB

	if temp, ret := device.GetTemperature(nvml.TEMPERATURE_GPU); IsNVMLSuccess(ret) {
		tempC := float64(temp)
		snapshot.TemperatureC = &tempC
	}

	if power, ret := device.GetPowerUsage(); IsNVMLSuccess(ret) {
		watts := float64(power) / milliWattsToWatts
		snapshot.PowerUsageW = &watts
	}

	if util, ret := device.GetUtilizationRates(); IsNVMLSuccess(ret) {
		percent := float64(util.Gpu)
		snapshot.UtilizationPercent = &percent
	}

	if driver, ret := nvml.SystemGetDriverVersion(); IsNVMLSuccess(ret) {
		snapshot.DriverVersion = &driver
	}

	if cudaVersion, ret := nvml.SystemGetCudaDriverVersion(); IsNVMLSuccess(ret) {
		version := fmt.Sprintf("%d.%d", cudaVersion/1000, (cudaVersion%1000)/10)
		snapshot.CUDAVersion = &version
	}

	if major, minor, ret := device.GetCudaComputeCapability(); IsNVMLSuccess(ret) {
		capability := fmt.Sprintf("%d.%d", major, minor)
		snapshot.ComputeCapability = &capability
	}

	return snapshot, nil
}
