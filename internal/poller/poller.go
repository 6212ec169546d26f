package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"codeberg.org/mutker/hwmon/internal/hardware"
	"codeberg.org/mutker/hwmon/internal/logger"
	"codeberg.org/mutker/hwmon/internal/telemetry"
)

// Poller owns the hardware refresh loop. Each tick fetches a raw payload from
// the telemetry source, validates it and derives the display metrics, in that
// order. All failures are captured into the poller's state; none propagate to
// the caller. A single goroutine runs the cycle loop, so no two cycles for
// the same poller ever overlap.
type Poller struct {
	source   telemetry.Source
	interval time.Duration

	mu   sync.Mutex
	view View

	inFlight  atomic.Bool
	refreshCh chan struct{}
	updates   chan View
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
}

// New creates a poller bound to the given source. An interval of zero disables
// the schedule; the poller then only ticks on Start and on manual refresh.
func New(source telemetry.Source, interval time.Duration) *Poller {
	return &Poller{
		source:    source,
		interval:  interval,
		view:      View{Phase: PhaseIdle},
		refreshCh: make(chan struct{}, 1),
		updates:   make(chan View, 1),
	}
}

// Start performs an immediate cycle and, when the interval is positive,
// schedules recurring cycles until Stop is called.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go p.loop(ctx)
}

func (p *Poller) loop(ctx context.Context) {
	defer close(p.done)

	p.cycle(ctx)

	var tick <-chan time.Time
	if p.interval > 0 {
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			p.cycle(ctx)
		case <-p.refreshCh:
			p.cycle(ctx)
		}
	}
}

// cycle runs one fetch-validate-derive pass and commits the outcome. A bad
// tick records its error and leaves the schedule running.
func (p *Poller) cycle(ctx context.Context) {
	p.inFlight.Store(true)
	defer p.inFlight.Store(false)

	p.transition(ctx, func(v *View) {
		v.Phase = PhaseLoading
	})

	cycleCtx := ctx
	var cancel context.CancelFunc
	if p.interval > 0 {
		cycleCtx, cancel = context.WithTimeout(ctx, p.interval)
		defer cancel()
	}

	payload, err := p.source.Hardware(cycleCtx)
	if err != nil {
		p.fail(ctx, KindConnectivity, err)
		return
	}

	snapshot, err := hardware.Validate(payload)
	if err != nil {
		p.fail(ctx, KindData, err)
		return
	}

	metrics, err := hardware.Derive(snapshot)
	if err != nil {
		p.fail(ctx, KindComputation, err)
		return
	}

	reading := &Reading{
		Snapshot: snapshot,
		Metrics:  metrics,
		Taken:    time.Now(),
	}

	p.transition(ctx, func(v *View) {
		v.Phase = PhaseReady
		v.Current = reading
		v.LastError = nil
	})
}

func (p *Poller) fail(ctx context.Context, kind Kind, err error) {
	tickErr := &TickError{Kind: kind, Err: err}

	// Connectivity failures are expected to be transient; the others signal
	// corrupted data or a broken derivation.
	switch kind {
	case KindConnectivity:
		logger.Warn().Err(err).Str("kind", string(kind)).Msg("Telemetry fetch failed")
	default:
		logger.Error().Err(err).Str("kind", string(kind)).Msg("Telemetry pipeline failed")
	}

	p.transition(ctx, func(v *View) {
		v.Phase = PhaseError
		v.LastError = tickErr
	})
}

// transition commits a state change unless the poller was torn down while the
// cycle was in flight, in which case the result is discarded.
func (p *Poller) transition(ctx context.Context, mutate func(*View)) {
	if ctx.Err() != nil {
		return
	}

	p.mu.Lock()
	mutate(&p.view)
	view := p.view
	p.mu.Unlock()

	p.publish(view)
}

func (p *Poller) publish(view View) {
	// Coalesce: replace the pending update when the consumer lags
	select {
	case <-p.updates:
	default:
	}
	select {
	case p.updates <- view:
	default:
	}
}

// Refresh requests exactly one additional cycle outside the schedule. A
// refresh while a cycle is already in flight is coalesced into a no-op; the
// caller simply observes that cycle's eventual result.
func (p *Poller) Refresh() {
	if p.inFlight.Load() {
		return
	}

	select {
	case p.refreshCh <- struct{}{}:
	default:
	}
}

// State returns the current view.
func (p *Poller) State() View {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.view
}

// Updates delivers committed views, coalescing to the latest when the
// consumer falls behind.
func (p *Poller) Updates() <-chan View {
	return p.updates
}

// Stop cancels the schedule. An in-flight fetch is allowed to complete but
// its result is dropped.
func (p *Poller) Stop() {
	p.stopOnce.Do(func() {
		if p.cancel != nil {
			p.cancel()
			<-p.done
		}
	})
}
