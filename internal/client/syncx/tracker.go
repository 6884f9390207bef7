package syncx

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/client/repositories/metadata"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// Runner executes one push attempt over a snapshot of pending ids.
// *Worker satisfies it; the indirection breaks the tracker/worker cycle.
type Runner interface {
	Run(ctx context.Context, ids []models.ID) Outcome
}

// ConnectivitySource is the slice of the connectivity monitor the tracker
// needs. *connectivity.Monitor satisfies it.
type ConnectivitySource interface {
	IsOnline() bool
	Subscribe(fn func(online bool)) (unsubscribe func())
}

// Tracker is the durable record of which ids still need pushing for one
// entity type. Every mutation persists the set before returning, so a crash
// between a local save and the next sync pass loses nothing. The tracker also
// owns the two sync triggers: an explicit nudge after each Add, and the
// offline->online transition.
//
// Close is mandatory: it releases the connectivity subscription.
type Tracker struct {
	name  string
	key   string
	meta  metadata.Repository
	sched *Scheduler
	conn  ConnectivitySource
	log   logging.Logger

	mu      sync.Mutex
	pending map[int64]struct{}
	runner  Runner

	unsubscribe func()
	closeOnce   sync.Once
}

// NewTracker loads the persisted pending set and subscribes to connectivity
// transitions. Bind must be called before the first sync can run.
func NewTracker(ctx context.Context, name string, meta metadata.Repository, sched *Scheduler, conn ConnectivitySource, log logging.Logger) (*Tracker, error) {
	t := &Tracker{
		name:    name,
		key:     "pending_" + name,
		meta:    meta,
		sched:   sched,
		conn:    conn,
		log:     log,
		pending: make(map[int64]struct{}),
	}
	if err := t.load(ctx); err != nil {
		return nil, err
	}
	t.unsubscribe = conn.Subscribe(t.onConnectivity)
	return t, nil
}

// Bind attaches the runner that push jobs execute.
func (t *Tracker) Bind(r Runner) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.runner = r
}

func (t *Tracker) load(ctx context.Context) error {
	raw, err := t.meta.Get(ctx, t.key)
	if err != nil {
		return fmt.Errorf("loading %s: %w", t.key, err)
	}
	if raw == nil {
		return nil
	}
	var ids []int64
	if err := json.Unmarshal(raw, &ids); err != nil {
		return fmt.Errorf("decoding %s: %w", t.key, err)
	}
	for _, id := range ids {
		t.pending[id] = struct{}{}
	}
	return nil
}

func (t *Tracker) persistLocked(ctx context.Context) error {
	ids := make([]int64, 0, len(t.pending))
	for id := range t.pending {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	raw, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	return t.meta.Set(ctx, t.key, raw)
}

// Add marks id as awaiting upload, persists the set, and nudges the scheduler
// when the backend is reachable. Adding an id that is already pending is a
// persisted no-op.
func (t *Tracker) Add(ctx context.Context, id models.ID) error {
	t.mu.Lock()
	t.pending[id.Int64()] = struct{}{}
	err := t.persistLocked(ctx)
	t.mu.Unlock()
	if err != nil {
		return fmt.Errorf("persisting %s: %w", t.key, err)
	}
	if t.conn.IsOnline() {
		t.ScheduleSyncNow(ctx)
	}
	return nil
}

// Remove drops id from the pending set and persists. Used after a successful
// push and when a pending record is discarded locally before ever syncing.
func (t *Tracker) Remove(ctx context.Context, id models.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.pending[id.Int64()]; !ok {
		return nil
	}
	delete(t.pending, id.Int64())
	if err := t.persistLocked(ctx); err != nil {
		return fmt.Errorf("persisting %s: %w", t.key, err)
	}
	return nil
}

// Has reports whether id is awaiting upload.
func (t *Tracker) Has(id models.ID) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.pending[id.Int64()]
	return ok
}

// HasPending reports whether anything awaits upload.
func (t *Tracker) HasPending() bool {
	return t.Count() > 0
}

// Count returns the number of ids awaiting upload.
func (t *Tracker) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.pending)
}

// Snapshot returns the pending ids in ascending order.
func (t *Tracker) Snapshot() []models.ID {
	t.mu.Lock()
	raw := make([]int64, 0, len(t.pending))
	for id := range t.pending {
		raw = append(raw, id)
	}
	t.mu.Unlock()
	sort.Slice(raw, func(i, j int) bool { return raw[i] < raw[j] })
	ids := make([]models.ID, 0, len(raw))
	for _, v := range raw {
		ids = append(ids, models.ParseID(v))
	}
	return ids
}

// Reconcile merges ids with dirty records back into the pending set, for
// repairing the set after it drifts from the cache (e.g. a crash between the
// cache write and the tracker write).
func (t *Tracker) Reconcile(ctx context.Context, dirty []models.ID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	changed := false
	for _, id := range dirty {
		if _, ok := t.pending[id.Int64()]; !ok {
			t.pending[id.Int64()] = struct{}{}
			changed = true
		}
	}
	if !changed {
		return nil
	}
	if err := t.persistLocked(ctx); err != nil {
		return fmt.Errorf("persisting %s: %w", t.key, err)
	}
	return nil
}

// ScheduleSyncNow submits a push job over the current snapshot. With nothing
// pending it returns without submitting, so the scheduler never spins on
// empty batches.
func (t *Tracker) ScheduleSyncNow(ctx context.Context) {
	ids := t.Snapshot()
	if len(ids) == 0 {
		return
	}
	t.mu.Lock()
	runner := t.runner
	t.mu.Unlock()
	if runner == nil {
		t.log.Warn(ctx, "sync requested before worker bound", "tracker", t.name)
		return
	}
	t.sched.Submit(Job{
		Name: "sync-" + t.name,
		Run: func(jobCtx context.Context) Outcome {
			return runner.Run(jobCtx, ids)
		},
	})
}

func (t *Tracker) onConnectivity(online bool) {
	if !online {
		return
	}
	t.ScheduleSyncNow(context.Background())
}

// Close releases the connectivity subscription.
func (t *Tracker) Close() {
	t.closeOnce.Do(func() {
		if t.unsubscribe != nil {
			t.unsubscribe()
		}
	})
}
