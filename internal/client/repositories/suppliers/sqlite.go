package suppliers

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/dbx"
)

// SQLiteRepository implements Repository over a *sql.DB.
type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAllByOwner(ctx context.Context, owner int64) ([]models.Supplier, error) {
	query := `SELECT id, owner_id, name, email, phone FROM suppliers WHERE owner_id=? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, query, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to select suppliers: %w", err)
	}
	defer rows.Close()

	var result []models.Supplier
	for rows.Next() {
		var (
			s  models.Supplier
			id int64
		)
		if err := rows.Scan(&id, &s.OwnerID, &s.Name, &s.Email, &s.Phone); err != nil {
			return nil, err
		}
		s.ID = models.ParseID(id)
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, owner int64, items []models.Supplier) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM suppliers WHERE owner_id=?`, owner); err != nil {
			return err
		}
		for _, s := range items {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO suppliers (id, owner_id, name, email, phone) VALUES (?, ?, ?, ?, ?)`,
				s.ID.Int64(), owner, s.Name, s.Email, s.Phone)
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to replace suppliers: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM suppliers`); err != nil {
		return fmt.Errorf("failed to clear suppliers: %w", err)
	}
	return nil
}
