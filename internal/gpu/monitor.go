package gpu

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FetchFunc produces one GPU snapshot. It is bound to either a real detector
// or a simulation harness by the caller.
type FetchFunc func(ctx context.Context) (Snapshot, error)

// MonitorState is the view a Monitor presents to its consumer. Data keeps the
// last successful snapshot across later failures so a consumer can show the
// last known reading alongside the error.
type MonitorState struct {
	Loading bool
	Data    Snapshot
	Err     error
}

// Monitor polls a GPU fetch function on its own schedule, independently of the
// hardware poller. A single goroutine owns the cycle loop; manual refreshes
// issued while a cycle is in flight are coalesced.
type Monitor struct {
	fetch    FetchFunc
	interval time.Duration

	mu    sync.Mutex
	state MonitorState

	inFlight  atomic.Bool
	refreshCh chan struct{}
	updates   chan MonitorState
	cancel    context.CancelFunc
	done      chan struct{}
	stopOnce  sync.Once
}

func NewMonitor(fetch FetchFunc, interval time.Duration) *Monitor {
	return &Monitor{
		fetch:     fetch,
		interval:  interval,
		state:     MonitorState{Loading: true},
		refreshCh: make(chan struct{}, 1),
		updates:   make(chan MonitorState, 1),
	}
}

// Start performs an immediate fetch and, when the interval is positive,
// schedules recurring fetches until Stop is called.
func (m *Monitor) Start(ctx context.Context) {
	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})

	go m.loop(ctx)
}

func (m *Monitor) loop(ctx context.Context) {
	defer close(m.done)

	m.cycle(ctx)

	var tick <-chan time.Time
	if m.interval > 0 {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick:
			m.cycle(ctx)
		case <-m.refreshCh:
			m.cycle(ctx)
		}
	}
}

func (m *Monitor) cycle(ctx context.Context) {
	m.inFlight.Store(true)
	defer m.inFlight.Store(false)

	cycleCtx := ctx
	var cancel context.CancelFunc
	if m.interval > 0 {
		cycleCtx, cancel = context.WithTimeout(ctx, m.interval)
		defer cancel()
	}

	snapshot, err := m.fetch(cycleCtx)

	// A torn-down monitor discards the in-flight result
	if ctx.Err() != nil {
		return
	}

	m.mu.Lock()
	m.state.Loading = false
	if err != nil {
		m.state.Err = err
	} else {
		m.state.Data = snapshot
		m.state.Err = nil
	}
	state := m.state
	m.mu.Unlock()

	m.publish(state)
}

func (m *Monitor) publish(state MonitorState) {
	// Coalesce: drop the stale update when the consumer lags
	select {
	case <-m.updates:
	default:
	}
	select {
	case m.updates <- state:
	default:
	}
}

// Refresh requests one additional fetch outside the schedule. A refresh while
// a cycle is already in flight is a no-op; the caller observes that cycle's
// eventual result instead.
func (m *Monitor) Refresh() {
	if m.inFlight.Load() {
		return
	}

	select {
	case m.refreshCh <- struct{}{}:
	default:
	}
}

// State returns the current monitor state.
func (m *Monitor) State() MonitorState {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.state
}

// Updates delivers committed states, coalescing to the latest when the
// consumer falls behind.
func (m *Monitor) Updates() <-chan MonitorState {
	return m.updates
}

// Stop tears the monitor down. The in-flight fetch, if any, completes but its
// result is dropped.
func (m *Monitor) Stop() {
	m.stopOnce.Do(func() {
		if m.cancel != nil {
			m.cancel()
			<-m.done
		}
	})
}
