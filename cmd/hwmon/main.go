package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeberg.org/mutker/hwmon/internal/config"
	"codeberg.org/mutker/hwmon/internal/gpu"
	"codeberg.org/mutker/hwmon/internal/logger"
	"codeberg.org/mutker/hwmon/internal/pid"
	"codeberg.org/mutker/hwmon/internal/poller"
	"codeberg.org/mutker/hwmon/internal/telemetry"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load(os.Args[1:]...)
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	system := telemetry.NewSystem()
	harness := telemetry.NewHarness(system)
	harness.SetTestMode(cfg.TestMode)
	harness.SetErrorInjection(cfg.InjectErrors)

	if cfg.SelfTest {
		ok := runSelfTests(ctx, harness)
		if err := system.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close telemetry source")
		}
		if !ok {
			os.Exit(1)
		}
		return
	}

	if err := pid.Write(); err != nil {
		logger.Fatal().Err(err).Msg("failed to write PID file")
	}
	defer func() {
		if err := pid.Remove(); err != nil {
			logger.Warn().Err(err).Msg("failed to remove PID file")
		}
	}()
	defer func() {
		if err := system.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close telemetry source")
		}
	}()

	hw := poller.New(harness, time.Duration(cfg.Interval)*time.Second)
	hw.Start(ctx)
	defer hw.Stop()

	gpuMonitor := gpu.NewMonitor(harness.GPU, time.Duration(cfg.GPUInterval)*time.Second)
	gpuMonitor.Start(ctx)
	defer gpuMonitor.Stop()

	loop(ctx, hw, gpuMonitor)
	logger.Info().Msg("Exiting...")
}

func loop(ctx context.Context, hw *poller.Poller, gpuMonitor *gpu.Monitor) {
	for {
		select {
		case <-ctx.Done():
			return
		case view := <-hw.Updates():
			logHardware(view)
		case state := <-gpuMonitor.Updates():
			logGPU(state)
		}
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}

func runSelfTests(ctx context.Context, harness *telemetry.Harness) bool {
	ok := true
	for _, result := range telemetry.RunSelfTests(ctx, harness) {
		event := logger.Info()
		if !result.Passed {
			ok = false
			event = logger.Error()
		}
		event.
			Str("check", result.Name).
			Bool("passed", result.Passed).
			Str("detail", result.Detail).
			Msg("")
	}

	return ok
}

func logHardware(view poller.View) {
	switch view.Phase {
	case poller.PhaseReady:
		if view.Current == nil {
			return
		}
		event := logger.Debug()
		if cfg.Monitor || cfg.Verbose {
			event = logger.Info()
		}
		event.
			Int("cpu_count", view.Current.Snapshot.CPUCount).
			Str("cpu_brand", view.Current.Snapshot.CPUBrand).
			Str("platform", view.Current.Snapshot.Platform).
			Float64("memory_total_gb", view.Current.Metrics.TotalMemoryGB).
			Float64("memory_used_gb", view.Current.Metrics.UsedMemoryGB).
			Float64("memory_usage_pct", view.Current.Metrics.MemoryUsagePercentage).
			Msg("")
	case poller.PhaseError:
		if view.LastError == nil {
			return
		}
		event := logger.Warn().
			Str("kind", string(view.LastError.Kind)).
			Err(view.LastError.Err)
		if view.Current != nil {
			event.Float64("last_known_memory_usage_pct", view.Current.Metrics.MemoryUsagePercentage)
		}
		event.Msg("hardware reading failed")
	}
}

func logGPU(state gpu.MonitorState) {
	if state.Loading {
		return
	}
	if state.Err != nil {
		logger.Warn().Err(state.Err).Msg("GPU reading failed")
		return
	}
	if state.Data == nil {
		return
	}

	event := logger.Debug()
	if cfg.Monitor || cfg.Verbose {
		event = logger.Info()
	}
	event.Str("gpu_vendor", string(state.Data.Vendor()))

	switch snapshot := state.Data.(type) {
	case gpu.None:
		event.Msg("no usable GPU")
		return
	case gpu.Apple:
		event.Str("model", snapshot.Model).
			Uint32("memory_total_mb", snapshot.TotalMB)
		addOptionalMetrics(event, snapshot.UsedMB, snapshot.TemperatureC, snapshot.PowerUsageW, snapshot.UtilizationPercent)
	case gpu.Nvidia:
		event.Str("model", snapshot.Name).
			Uint32("memory_total_mb", snapshot.TotalMB)
		addOptionalMetrics(event, snapshot.UsedMB, snapshot.TemperatureC, snapshot.PowerUsageW, snapshot.UtilizationPercent)
		if snapshot.DriverVersion != nil {
			event.Str("driver_version", *snapshot.DriverVersion)
		}
		if snapshot.CUDAVersion != nil {
			event.Str("cuda_version", *snapshot.CUDAVersion)
		}
		if snapshot.ComputeCapability != nil {
			event.Str("compute_capability", *snapshot.ComputeCapability)
		}
	case gpu.AMD:
		event.Str("model", snapshot.Name).
			Uint32("memory_total_mb", snapshot.TotalMB)
		addOptionalMetrics(event, snapshot.UsedMB, snapshot.TemperatureC, snapshot.PowerUsageW, snapshot.UtilizationPercent)
	}

	event.Msg("")
}

func addOptionalMetrics(event *logger.LogEvent, usedMB *uint32, temperatureC, powerW, utilization *float64) {
	if usedMB != nil {
		event.Uint32("memory_used_mb", *usedMB)
	}
	if temperatureC != nil {
		event.Float64("temperature_c", *temperatureC)
	}
	if powerW != nil {
		event.Float64("power_usage_w", *powerW)
	}
	if utilization != nil {
		event.Float64("utilization_pct", *utilization)
	}
}
