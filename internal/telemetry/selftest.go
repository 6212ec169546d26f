package telemetry

import (
	"context"
	"fmt"

	"codeberg.org/mutker/hwmon/internal/gpu"
)

// SelfTestResult reports the outcome of a single diagnostics check.
type SelfTestResult struct {
	Name   string
	Passed bool
	Detail string
}

// RunSelfTests exercises the GPU fetch path and both simulation toggles in
// sequence: a plain fetch must yield a well-formed non-None snapshot, enabling
// test mode must be observable, and enabling error injection must make the
// next fetch fail. Toggles are restored to their prior values afterwards.
func RunSelfTests(ctx context.Context, h *Harness) []SelfTestResult {
	prevTestMode := h.TestMode()
	prevInjection := h.ErrorInjection()
	defer func() {
		h.SetTestMode(prevTestMode)
		h.SetErrorInjection(prevInjection)
	}()

	results := make([]SelfTestResult, 0, 3)

	snapshot, err := h.GPU(ctx)
	switch {
	case err != nil:
		results = append(results, SelfTestResult{
			Name:   "gpu_fetch",
			Detail: fmt.Sprintf("fetch failed: %v", err),
		})
	case snapshot.Vendor() == gpu.VendorNone:
		results = append(results, SelfTestResult{
			Name:   "gpu_fetch",
			Detail: "no GPU detected",
		})
	case snapshot.Validate() != nil:
		results = append(results, SelfTestResult{
			Name:   "gpu_fetch",
			Detail: fmt.Sprintf("malformed snapshot: %v", snapshot.Validate()),
		})
	default:
		results = append(results, SelfTestResult{
			Name:   "gpu_fetch",
			Passed: true,
			Detail: fmt.Sprintf("detected %s GPU with %d MB", snapshot.Vendor(), snapshot.MemoryTotalMB()),
		})
	}

	h.SetTestMode(true)
	results = append(results, SelfTestResult{
		Name:   "test_mode",
		Passed: h.TestMode(),
		Detail: fmt.Sprintf("test mode reported as %v after enabling", h.TestMode()),
	})

	h.SetErrorInjection(true)
	_, err = h.GPU(ctx)
	results = append(results, SelfTestResult{
		Name:   "error_injection",
		Passed: err != nil,
		Detail: fmt.Sprintf("fetch with injection enabled returned: %v", err),
	})

	return results
}
