// Package cache is the CRUD facade the rest of the client sees over the local
// store. One Cache instance exists per entity type, scoped to the logged-in
// owner.
//
// All mutations funnel through a single writer goroutine per instance, so
// concurrent upserts never interleave into a corrupted read-modify-write of
// the backing store. Reads go straight to the store but catch storage errors,
// log them, and degrade to "no data": the sync engine must treat an empty
// read as nothing-to-sync, never as an error state requiring retry.
package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// ErrIDCollision is returned by Remap when the target server id is already
// occupied by a different record in the same owner scope.
var ErrIDCollision = errors.New("server id already occupied")

// ErrClosed is returned by mutations submitted after Close.
var ErrClosed = errors.New("cache closed")

// Store is the repository surface the cache needs. The SQLite repositories
// for contacts and products satisfy it.
type Store[T any] interface {
	Upsert(ctx context.Context, e *T) error
	DeleteByID(ctx context.Context, owner, id int64) error
	GetByID(ctx context.Context, owner, id int64) (*T, error)
	GetAllByOwner(ctx context.Context, owner int64) ([]T, error)
	GetDirty(ctx context.Context, owner int64) ([]T, error)
	LowestLocalID(ctx context.Context) (int64, error)
	Remap(ctx context.Context, owner, oldID int64, e *T) error
	Clear(ctx context.Context) error
}

// Cache serializes writes to one entity type's rows for one owner.
type Cache[T any] struct {
	store Store[T]
	owner int64
	log   logging.Logger

	ops  chan op
	quit chan struct{}

	// lastMinted is the most negative id handed out by MintLocalID in this
	// process; only the writer goroutine touches it.
	lastMinted int64
}

type op struct {
	fn   func()
	done chan struct{}
}

// New starts the writer goroutine and returns a Cache bound to owner.
func New[T any](store Store[T], owner int64, log logging.Logger) *Cache[T] {
	c := &Cache[T]{
		store: store,
		owner: owner,
		log:   log,
		ops:   make(chan op),
		quit:  make(chan struct{}),
	}
	go c.run()
	return c
}

func (c *Cache[T]) run() {
	for {
		select {
		case o := <-c.ops:
			o.fn()
			close(o.done)
		case <-c.quit:
			return
		}
	}
}

// do runs fn on the writer goroutine and waits for completion.
func (c *Cache[T]) do(fn func()) error {
	o := op{fn: fn, done: make(chan struct{})}
	select {
	case c.ops <- o:
		<-o.done
		return nil
	case <-c.quit:
		return ErrClosed
	}
}

// Owner returns the owner scope this cache is bound to.
func (c *Cache[T]) Owner() int64 { return c.owner }

// Close stops the writer goroutine. Pending mutations already accepted finish
// first; later calls fail with ErrClosed.
func (c *Cache[T]) Close() {
	select {
	case <-c.quit:
	default:
		close(c.quit)
	}
}

// Upsert inserts or replaces the entity. A nil entity silently returns.
func (c *Cache[T]) Upsert(ctx context.Context, e *T) error {
	if e == nil {
		return nil
	}
	var err error
	if derr := c.do(func() { err = c.store.Upsert(ctx, e) }); derr != nil {
		return derr
	}
	return err
}

// Delete removes the record with the given id. Absent records are a no-op.
func (c *Cache[T]) Delete(ctx context.Context, id models.ID) error {
	var err error
	if derr := c.do(func() { err = c.store.DeleteByID(ctx, c.owner, id.Int64()) }); derr != nil {
		return derr
	}
	return err
}

// Remap replaces the record keyed by oldID with e, which carries the
// server-assigned id. The swap is atomic from the caller's point of view:
// no reader observes both records. If the target id is already occupied by a
// different record, Remap fails with ErrIDCollision and changes nothing.
func (c *Cache[T]) Remap(ctx context.Context, oldID models.ID, e *T) error {
	if e == nil {
		return nil
	}
	newID, ok := entityKey(e)
	if !ok || newID.IsZero() {
		return fmt.Errorf("remap: entity carries no id")
	}
	var err error
	derr := c.do(func() {
		if newID.Int64() != oldID.Int64() {
			if _, gerr := c.store.GetByID(ctx, c.owner, newID.Int64()); gerr == nil {
				err = fmt.Errorf("remap %s -> %s: %w", oldID, newID, ErrIDCollision)
				return
			} else if !errors.Is(gerr, common.ErrNotFound) {
				err = gerr
				return
			}
		}
		err = c.store.Remap(ctx, c.owner, oldID.Int64(), e)
	})
	if derr != nil {
		return derr
	}
	return err
}

// Clear wipes the entire cache for this device profile.
func (c *Cache[T]) Clear(ctx context.Context) error {
	var err error
	if derr := c.do(func() { err = c.store.Clear(ctx) }); derr != nil {
		return derr
	}
	return err
}

// MintLocalID hands out the next local-only id, strictly lower than every
// local id in the store and everything minted earlier in this process, so
// freshly minted ids are monotonically decreasing and never collide.
func (c *Cache[T]) MintLocalID(ctx context.Context) (models.ID, error) {
	var (
		id  models.ID
		err error
	)
	derr := c.do(func() {
		lowest, lerr := c.store.LowestLocalID(ctx)
		if lerr != nil {
			err = lerr
			return
		}
		if c.lastMinted != 0 && c.lastMinted < lowest {
			lowest = c.lastMinted
		}
		c.lastMinted = lowest - 1
		id = models.ParseID(c.lastMinted)
	})
	if derr != nil {
		return models.ID{}, derr
	}
	return id, err
}

// LowestLocalID returns the most negative id currently in use, or -1 when no
// local-only records exist. Storage errors degrade to the sentinel.
func (c *Cache[T]) LowestLocalID(ctx context.Context) int64 {
	lowest, err := c.store.LowestLocalID(ctx)
	if err != nil {
		c.log.Error(ctx, "lowest local id query failed", "err", err)
		return -1
	}
	return lowest
}

// GetByID returns the record with the given id, or ok=false when absent.
// Storage errors are logged and degrade to absent.
func (c *Cache[T]) GetByID(ctx context.Context, id models.ID) (*T, bool) {
	e, err := c.store.GetByID(ctx, c.owner, id.Int64())
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			c.log.Error(ctx, "cache read failed", "id", id, "err", err)
		}
		return nil, false
	}
	return e, true
}

// GetAll lists the owner's records. Storage errors degrade to an empty list.
func (c *Cache[T]) GetAll(ctx context.Context) []T {
	all, err := c.store.GetAllByOwner(ctx, c.owner)
	if err != nil {
		c.log.Error(ctx, "cache list failed", "err", err)
		return nil
	}
	return all
}

// GetDirty lists records with unsynced local changes. Storage errors degrade
// to an empty list.
func (c *Cache[T]) GetDirty(ctx context.Context) []T {
	dirty, err := c.store.GetDirty(ctx, c.owner)
	if err != nil {
		c.log.Error(ctx, "cache dirty query failed", "err", err)
		return nil
	}
	return dirty
}

// entityKey extracts the tagged id from *Contact / *Product via their Key
// method without imposing a type parameter constraint on Cache.
func entityKey[T any](e *T) (models.ID, bool) {
	if k, ok := any(e).(interface{ Key() models.ID }); ok {
		return k.Key(), true
	}
	return models.ID{}, false
}
