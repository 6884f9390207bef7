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

// ProductService is the CLI-facing surface for inventory records. Unlike
// contacts, product removal is local-only: the server keeps its copy and the
// device merely stops caching it.
type ProductService struct {
	cache   *cache.Cache[models.Product]
	tracker *syncx.Tracker
	owner   int64
	log     logging.Logger
}

func NewProductService(c *cache.Cache[models.Product], tracker *syncx.Tracker, log logging.Logger) *ProductService {
	return &ProductService{cache: c, tracker: tracker, owner: c.Owner(), log: log}
}

// List returns all cached products.
func (s *ProductService) List(ctx context.Context) []models.Product {
	return s.cache.GetAll(ctx)
}

// Get returns one product or common.ErrNotFound.
func (s *ProductService) Get(ctx context.Context, id models.ID) (*models.Product, error) {
	p, ok := s.cache.GetByID(ctx, id)
	if !ok {
		return nil, common.ErrNotFound
	}
	return p, nil
}

// Save stores a new or edited product locally and marks it for upload.
func (s *ProductService) Save(ctx context.Context, p *models.Product) error {
	if p == nil {
		return nil
	}
	if p.ID.IsZero() {
		id, err := s.cache.MintLocalID(ctx)
		if err != nil {
			return fmt.Errorf("minting product id: %w", err)
		}
		p.ID = id
	}
	p.OwnerID = s.owner
	p.Dirty = true

	if err := s.cache.Upsert(ctx, p); err != nil {
		return fmt.Errorf("saving product %s: %w", p.ID, err)
	}
	if err := s.tracker.Add(ctx, p.ID); err != nil {
		s.log.Warn(ctx, "product saved but not tracked for sync", "id", p.ID, "err", err)
	}
	return nil
}

// Remove drops the product from the local cache without touching the server,
// and withdraws any queued upload for it.
func (s *ProductService) Remove(ctx context.Context, id models.ID) error {
	if _, ok := s.cache.GetByID(ctx, id); !ok {
		return common.ErrNotFound
	}
	if err := s.cache.Delete(ctx, id); err != nil {
		return fmt.Errorf("removing product %s: %w", id, err)
	}
	if err := s.tracker.Remove(ctx, id); err != nil {
		s.log.Warn(ctx, "removed product still tracked for sync", "id", id, "err", err)
	}
	return nil
}

// PendingCount reports how many products still await upload.
func (s *ProductService) PendingCount() int {
	return s.tracker.Count()
}
