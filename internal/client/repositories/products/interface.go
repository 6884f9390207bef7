package products

import (
	"context"

	"github.com/dkazakov/fieldsale/internal/client/models"
)

// Repository describes CRUD and query operations for Product records.
// Same shape as the contacts repository; products have no soft-delete column,
// a delete removes the row outright.
type Repository interface {
	Upsert(ctx context.Context, p *models.Product) error
	DeleteByID(ctx context.Context, owner, id int64) error
	GetByID(ctx context.Context, owner, id int64) (*models.Product, error)
	GetAllByOwner(ctx context.Context, owner int64) ([]models.Product, error)
	GetDirty(ctx context.Context, owner int64) ([]models.Product, error)
	LowestLocalID(ctx context.Context) (int64, error)
	Remap(ctx context.Context, owner, oldID int64, p *models.Product) error
	Clear(ctx context.Context) error
}
