// Package connectivity tracks whether the backend is reachable. It polls a
// liveness probe on an interval and fans out edge-triggered notifications to
// subscribers on every offline<->online transition.
package connectivity

import (
	"context"
	"sync"
	"time"

	"github.com/dkazakov/fieldsale/internal/logging"
)

const probeTimeout = 3 * time.Second

// Prober is the liveness check; api.Client satisfies it.
type Prober interface {
	Ping(ctx context.Context) error
}

// Monitor owns the probing goroutine. Callers may read IsOnline at any time
// and subscribe for transitions. Close is mandatory: it stops the goroutine
// and drops all subscriptions.
type Monitor struct {
	probe    Prober
	interval time.Duration
	log      logging.Logger

	mu      sync.Mutex
	online  bool
	subs    map[int]func(online bool)
	nextSub int

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewMonitor starts probing immediately and then on every interval tick.
// The monitor starts in the offline state until the first probe succeeds.
func NewMonitor(probe Prober, interval time.Duration, log logging.Logger) *Monitor {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Monitor{
		probe:    probe,
		interval: interval,
		log:      log,
		subs:     make(map[int]func(bool)),
		cancel:   cancel,
	}
	m.wg.Add(1)
	go m.watch(ctx)
	return m
}

func (m *Monitor) watch(ctx context.Context) {
	defer m.wg.Done()

	m.CheckNow(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.CheckNow(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// CheckNow runs one probe synchronously and applies the result.
func (m *Monitor) CheckNow(ctx context.Context) {
	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	err := m.probe.Ping(probeCtx)
	cancel()
	m.setOnline(ctx, err == nil)
}

func (m *Monitor) setOnline(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	fns := make([]func(bool), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.mu.Unlock()

	if online {
		m.log.Info(ctx, "connectivity restored")
	} else {
		m.log.Info(ctx, "connectivity lost")
	}
	for _, fn := range fns {
		fn(online)
	}
}

// IsOnline reports the last probed state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Subscribe registers fn for connectivity transitions and returns the
// deregistration func. Leaking the registration leaks the callback for the
// monitor's lifetime, so callers must invoke it at teardown.
func (m *Monitor) Subscribe(fn func(online bool)) (unsubscribe func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}
}

// Close stops probing and waits for the watcher goroutine to exit.
func (m *Monitor) Close() {
	m.cancel()
	m.wg.Wait()
}
