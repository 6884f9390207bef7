package products

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/dkazakov/fieldsale/internal/dbx"
)

// SQLiteRepository implements Repository over a *sql.DB.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Upsert(ctx context.Context, p *models.Product) error {
	return upsertTx(ctx, r.db, p)
}

func upsertTx(ctx context.Context, db dbx.DBTX, p *models.Product) error {
	query := `INSERT INTO products (id, owner_id, name, sku, price_cents, quantity, dirty)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, id) DO UPDATE SET
				name = excluded.name,
				sku = excluded.sku,
				price_cents = excluded.price_cents,
				quantity = excluded.quantity,
				dirty = excluded.dirty
	`
	_, err := db.ExecContext(ctx, query,
		p.ID.Int64(), p.OwnerID, p.Name, p.SKU, p.PriceCents, p.Quantity, p.Dirty)
	if err != nil {
		return fmt.Errorf("failed to upsert product: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, owner, id int64) error {
	return deleteTx(ctx, r.db, owner, id)
}

func deleteTx(ctx context.Context, db dbx.DBTX, owner, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM products WHERE owner_id=? AND id=?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, owner, id int64) (*models.Product, error) {
	query := `SELECT id, owner_id, name, sku, price_cents, quantity, dirty
			FROM products WHERE owner_id=? AND id=?`
	row := r.db.QueryRowContext(ctx, query, owner, id)

	p, err := scanProduct(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) GetAllByOwner(ctx context.Context, owner int64) ([]models.Product, error) {
	query := `SELECT id, owner_id, name, sku, price_cents, quantity, dirty
			FROM products WHERE owner_id=? ORDER BY name`
	return r.queryProducts(ctx, query, owner)
}

func (r *SQLiteRepository) GetDirty(ctx context.Context, owner int64) ([]models.Product, error) {
	query := `SELECT id, owner_id, name, sku, price_cents, quantity, dirty
			FROM products WHERE owner_id=? AND dirty=1`
	return r.queryProducts(ctx, query, owner)
}

func (r *SQLiteRepository) LowestLocalID(ctx context.Context) (int64, error) {
	var lowest int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(id), -1) FROM products WHERE id < 0`).Scan(&lowest)
	if err != nil {
		return 0, fmt.Errorf("failed to query lowest local id: %w", err)
	}
	return lowest, nil
}

func (r *SQLiteRepository) Remap(ctx context.Context, owner, oldID int64, p *models.Product) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := deleteTx(ctx, tx, owner, oldID); err != nil {
			return err
		}
		return upsertTx(ctx, tx, p)
	})
	if err != nil {
		return fmt.Errorf("failed to remap product %d: %w", oldID, err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM products`); err != nil {
		return fmt.Errorf("failed to clear products: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryProducts(ctx context.Context, query string, args ...any) ([]models.Product, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select products: %w", err)
	}
	defer rows.Close()

	var result []models.Product
	for rows.Next() {
		p, err := scanProduct(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanProduct(scan func(dest ...any) error) (*models.Product, error) {
	var (
		p  models.Product
		id int64
	)
	if err := scan(&id, &p.OwnerID, &p.Name, &p.SKU, &p.PriceCents, &p.Quantity, &p.Dirty); err != nil {
		return nil, err
	}
	p.ID = models.ParseID(id)
	return &p, nil
}
