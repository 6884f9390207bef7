package suppliers

import (
	"context"

	"github.com/dkazakov/fieldsale/internal/client/models"
)

// Repository stores supplier reference data pulled from the server. Suppliers
// are read-mostly on the device: they are never created or edited locally, so
// there is no dirty tracking here.
type Repository interface {
	// GetAllByOwner lists the owner's suppliers.
	GetAllByOwner(ctx context.Context, owner int64) ([]models.Supplier, error)

	// ReplaceAll swaps the owner's supplier set for the given one in a single
	// transaction (used when refreshing from the server).
	ReplaceAll(ctx context.Context, owner int64, items []models.Supplier) error

	// Clear wipes all supplier rows for this device profile.
	Clear(ctx context.Context) error
}
