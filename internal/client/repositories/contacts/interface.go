package contacts

import (
	"context"

	"github.com/dkazakov/fieldsale/internal/client/models"
)

// Repository describes CRUD and query operations for Contact records.
// Implementations are typically backed by a local SQLite database.
//
// Identifiers cross this boundary in their storage encoding (int64, negative
// for local-only ids); callers convert with models.ParseID / ID.Int64.
type Repository interface {
	// Upsert inserts a new contact or replaces an existing one with the same
	// (owner, id) pair.
	Upsert(ctx context.Context, c *models.Contact) error

	// DeleteByID removes a contact row. Deleting an absent row is not an error.
	DeleteByID(ctx context.Context, owner, id int64) error

	// GetByID returns a contact by id within the owner's scope, including
	// soft-deleted rows. Returns common.ErrNotFound when absent.
	GetByID(ctx context.Context, owner, id int64) (*models.Contact, error)

	// GetAllByOwner lists the owner's contacts, excluding soft-deleted rows.
	GetAllByOwner(ctx context.Context, owner int64) ([]models.Contact, error)

	// GetDirty lists the owner's contacts with unsynced local changes.
	// Soft-deleted rows are included: a pending delete is dirty state too.
	GetDirty(ctx context.Context, owner int64) ([]models.Contact, error)

	// LowestLocalID returns the most negative id currently in use,
	// or -1 when no local-only rows exist.
	LowestLocalID(ctx context.Context) (int64, error)

	// Remap atomically replaces the row keyed by oldID with c (which carries
	// the server-assigned id). No reader observes both rows at once.
	Remap(ctx context.Context, owner, oldID int64, c *models.Contact) error

	// Clear wipes all contact rows for this device profile.
	Clear(ctx context.Context) error
}
