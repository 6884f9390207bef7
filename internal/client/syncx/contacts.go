package syncx

import (
	"context"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/cache"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// ContactPusher resolves one pending contact id against the backend.
//
// The branch taken depends on the record's state at push time:
//   - record gone from the cache: vacuous success, nothing to upload
//   - soft-deleted: DELETE on the server (or nothing, if it never left the
//     device), then purge the tombstone locally
//   - local-only id: create with a zero wire id, then remap the local id to
//     the server-assigned one
//   - server id: plain update; the server echo replaces the cached record
type ContactPusher struct {
	cache *cache.Cache[models.Contact]
	api   api.Client
	log   logging.Logger
}

func NewContactPusher(c *cache.Cache[models.Contact], client api.Client, log logging.Logger) *ContactPusher {
	return &ContactPusher{cache: c, api: client, log: log}
}

func (p *ContactPusher) Push(ctx context.Context, id models.ID) error {
	contact, ok := p.cache.GetByID(ctx, id)
	if !ok {
		p.log.Debug(ctx, "pending contact no longer cached, nothing to push", "id", id)
		return nil
	}
	switch {
	case contact.Deleted:
		return p.pushDelete(ctx, id)
	case id.IsLocal():
		return p.pushCreate(ctx, id, contact)
	default:
		return p.pushUpdate(ctx, contact)
	}
}

func (p *ContactPusher) pushCreate(ctx context.Context, localID models.ID, contact *models.Contact) error {
	out := *contact
	out.ID = models.ID{} // server assigns the real id
	out.Dirty = false

	created, err := p.api.CreateContact(ctx, &out)
	if err != nil {
		return fmt.Errorf("creating contact %s: %w", localID, err)
	}

	// keep the locally entered field values; only the id comes from the server
	fresh := *contact
	fresh.ID = created.ID
	fresh.Dirty = false
	if err := p.cache.Remap(ctx, localID, &fresh); err != nil {
		return fmt.Errorf("remapping contact %s -> %s: %w", localID, created.ID, err)
	}
	p.log.Info(ctx, "contact created on server", "localId", localID, "serverId", created.ID)
	return nil
}

func (p *ContactPusher) pushUpdate(ctx context.Context, contact *models.Contact) error {
	out := *contact
	out.Dirty = false

	updated, err := p.api.UpdateContact(ctx, &out)
	if err != nil {
		return fmt.Errorf("updating contact %s: %w", contact.ID, err)
	}
	updated.Dirty = false
	if err := p.cache.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("storing updated contact %s: %w", contact.ID, err)
	}
	return nil
}

func (p *ContactPusher) pushDelete(ctx context.Context, id models.ID) error {
	if !id.IsLocal() {
		if err := p.api.DeleteContact(ctx, id.Int64()); err != nil {
			return fmt.Errorf("deleting contact %s: %w", id, err)
		}
	}
	// local-only tombstones never reached the server; just drop them
	if err := p.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("purging contact tombstone %s: %w", id, err)
	}
	return nil
}
