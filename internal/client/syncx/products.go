package syncx

import (
	"context"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/cache"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// ProductPusher resolves one pending product id against the backend. Products
// carry no delete path: removal is local-only, so only create and update
// reach the server.
type ProductPusher struct {
	cache *cache.Cache[models.Product]
	api   api.Client
	log   logging.Logger
}

func NewProductPusher(c *cache.Cache[models.Product], client api.Client, log logging.Logger) *ProductPusher {
	return &ProductPusher{cache: c, api: client, log: log}
}

func (p *ProductPusher) Push(ctx context.Context, id models.ID) error {
	product, ok := p.cache.GetByID(ctx, id)
	if !ok {
		p.log.Debug(ctx, "pending product no longer cached, nothing to push", "id", id)
		return nil
	}
	if id.IsLocal() {
		return p.pushCreate(ctx, id, product)
	}
	return p.pushUpdate(ctx, product)
}

func (p *ProductPusher) pushCreate(ctx context.Context, localID models.ID, product *models.Product) error {
	out := *product
	out.ID = models.ID{}
	out.Dirty = false

	created, err := p.api.CreateProduct(ctx, &out)
	if err != nil {
		return fmt.Errorf("creating product %s: %w", localID, err)
	}

	fresh := *product
	fresh.ID = created.ID
	fresh.Dirty = false
	if err := p.cache.Remap(ctx, localID, &fresh); err != nil {
		return fmt.Errorf("remapping product %s -> %s: %w", localID, created.ID, err)
	}
	p.log.Info(ctx, "product created on server", "localId", localID, "serverId", created.ID)
	return nil
}

func (p *ProductPusher) pushUpdate(ctx context.Context, product *models.Product) error {
	out := *product
	out.Dirty = false

	updated, err := p.api.UpdateProduct(ctx, &out)
	if err != nil {
		return fmt.Errorf("updating product %s: %w", product.ID, err)
	}
	updated.Dirty = false
	if err := p.cache.Upsert(ctx, updated); err != nil {
		return fmt.Errorf("storing updated product %s: %w", product.ID, err)
	}
	return nil
}
