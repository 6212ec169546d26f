package poller

import "fmt"

// Kind classifies a tick failure by the pipeline stage that produced it.
// Connectivity failures are transient and expected to recover on a later
// tick; data and computation failures signal a broken payload or derivation.
type Kind string

const (
	KindConnectivity Kind = "connectivity"
	KindData         Kind = "data"
	KindComputation  Kind = "computation"
)

// TickError wraps the failure of one fetch-validate-derive cycle together
// with its stage classification.
type TickError struct {
	Kind Kind
	Err  error
}

func (e *TickError) Error() string {
	return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
}

func (e *TickError) Unwrap() error {
	return e.Err
}
