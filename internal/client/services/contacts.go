// Package services holds the application services the CLI talks to. Each
// service wraps a cache (and, for synced types, a pending tracker) and
// enforces the save/delete bookkeeping: dirty flags, local id minting, and
// pending-set updates.
package services

import (
	"context"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/cache"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/client/syncx"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// ContactService is the CLI-facing surface for customer records.
type ContactService struct {
	cache   *cache.Cache[models.Contact]
	tracker *syncx.Tracker
	owner   int64
	log     logging.Logger
}

func NewContactService(c *cache.Cache[models.Contact], tracker *syncx.Tracker, log logging.Logger) *ContactService {
	return &ContactService{cache: c, tracker: tracker, owner: c.Owner(), log: log}
}

// List returns the visible (non-deleted) contacts.
func (s *ContactService) List(ctx context.Context) []models.Contact {
	return s.cache.GetAll(ctx)
}

// Get returns one contact. Soft-deleted records are hidden: from the user's
// point of view they are gone the moment Delete returns.
func (s *ContactService) Get(ctx context.Context, id models.ID) (*models.Contact, error) {
	c, ok := s.cache.GetByID(ctx, id)
	if !ok || c.Deleted {
		return nil, common.ErrNotFound
	}
	return c, nil
}

// Save stores a new or edited contact locally and marks it for upload. A
// contact without an id gets a freshly minted local one; the server will
// assign the real id during sync.
func (s *ContactService) Save(ctx context.Context, c *models.Contact) error {
	if c == nil {
		return nil
	}
	if c.ID.IsZero() {
		id, err := s.cache.MintLocalID(ctx)
		if err != nil {
			return fmt.Errorf("minting contact id: %w", err)
		}
		c.ID = id
	}
	c.OwnerID = s.owner
	c.Dirty = true

	if err := s.cache.Upsert(ctx, c); err != nil {
		return fmt.Errorf("saving contact %s: %w", c.ID, err)
	}
	if err := s.tracker.Add(ctx, c.ID); err != nil {
		// the record is safe locally; the tracker reconciles from the dirty
		// flag on next startup
		s.log.Warn(ctx, "contact saved but not tracked for sync", "id", c.ID, "err", err)
	}
	return nil
}

// Delete tombstones the contact and queues the delete for upload. The record
// disappears from List/Get immediately; the row is purged once the server
// confirms (or right away when it never left the device).
func (s *ContactService) Delete(ctx context.Context, id models.ID) error {
	c, ok := s.cache.GetByID(ctx, id)
	if !ok || c.Deleted {
		return common.ErrNotFound
	}
	c.Deleted = true
	c.Dirty = true

	if err := s.cache.Upsert(ctx, c); err != nil {
		return fmt.Errorf("deleting contact %s: %w", id, err)
	}
	if err := s.tracker.Add(ctx, id); err != nil {
		s.log.Warn(ctx, "contact deleted but not tracked for sync", "id", id, "err", err)
	}
	return nil
}

// PendingCount reports how many contacts still await upload.
func (s *ContactService) PendingCount() int {
	return s.tracker.Count()
}
