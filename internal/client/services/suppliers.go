package services

import (
	"context"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/client/repositories/suppliers"
	"github.com/dkazakov/fieldsale/internal/logging"
)

// SupplierService serves supplier reference data. The list is read-only on
// the device: Refresh pulls the current set from the server and swaps the
// local copy wholesale.
type SupplierService struct {
	repo  suppliers.Repository
	api   api.Client
	owner int64
	log   logging.Logger
}

func NewSupplierService(repo suppliers.Repository, client api.Client, owner int64, log logging.Logger) *SupplierService {
	return &SupplierService{repo: repo, api: client, owner: owner, log: log}
}

// List returns the locally cached suppliers.
func (s *SupplierService) List(ctx context.Context) ([]models.Supplier, error) {
	return s.repo.GetAllByOwner(ctx, s.owner)
}

// Refresh replaces the local supplier set with the server's current one.
// Offline, it fails and the stale local copy stays usable.
func (s *SupplierService) Refresh(ctx context.Context) error {
	remote, err := s.api.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("fetching suppliers: %w", err)
	}
	for i := range remote {
		remote[i].OwnerID = s.owner
	}
	if err := s.repo.ReplaceAll(ctx, s.owner, remote); err != nil {
		return fmt.Errorf("storing suppliers: %w", err)
	}
	s.log.Info(ctx, "suppliers refreshed", "count", len(remote))
	return nil
}
