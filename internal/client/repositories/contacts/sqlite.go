package contacts

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

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DB.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Upsert inserts or replaces a contact by (owner_id, id).
func (r *SQLiteRepository) Upsert(ctx context.Context, c *models.Contact) error {
	return upsertTx(ctx, r.db, c)
}

func upsertTx(ctx context.Context, db dbx.DBTX, c *models.Contact) error {
	query := `INSERT INTO contacts (id, owner_id, name, email, phone, address, dirty, deleted)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(owner_id, id) DO UPDATE SET
				name = excluded.name,
				email = excluded.email,
				phone = excluded.phone,
				address = excluded.address,
				dirty = excluded.dirty,
				deleted = excluded.deleted
	`
	_, err := db.ExecContext(ctx, query,
		c.ID.Int64(), c.OwnerID, c.Name, c.Email, c.Phone, c.Address, c.Dirty, c.Deleted)
	if err != nil {
		return fmt.Errorf("failed to upsert contact: %w", err)
	}
	return nil
}

// DeleteByID removes a contact row. Absent rows are ignored.
func (r *SQLiteRepository) DeleteByID(ctx context.Context, owner, id int64) error {
	return deleteTx(ctx, r.db, owner, id)
}

func deleteTx(ctx context.Context, db dbx.DBTX, owner, id int64) error {
	_, err := db.ExecContext(ctx, `DELETE FROM contacts WHERE owner_id=? AND id=?`, owner, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	return nil
}

// GetByID returns a single contact, soft-deleted rows included.
func (r *SQLiteRepository) GetByID(ctx context.Context, owner, id int64) (*models.Contact, error) {
	query := `SELECT id, owner_id, name, email, phone, address, dirty, deleted
			FROM contacts WHERE owner_id=? AND id=?`
	row := r.db.QueryRowContext(ctx, query, owner, id)

	c, err := scanContact(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

// GetAllByOwner lists the owner's contacts, excluding soft-deleted rows.
func (r *SQLiteRepository) GetAllByOwner(ctx context.Context, owner int64) ([]models.Contact, error) {
	query := `SELECT id, owner_id, name, email, phone, address, dirty, deleted
			FROM contacts WHERE owner_id=? AND deleted=0 ORDER BY name`
	return r.queryContacts(ctx, query, owner)
}

// GetDirty lists the owner's unsynced contacts, soft-deleted rows included.
func (r *SQLiteRepository) GetDirty(ctx context.Context, owner int64) ([]models.Contact, error) {
	query := `SELECT id, owner_id, name, email, phone, address, dirty, deleted
			FROM contacts WHERE owner_id=? AND dirty=1`
	return r.queryContacts(ctx, query, owner)
}

// LowestLocalID returns MIN(id) over local-only rows, or -1 when none exist.
func (r *SQLiteRepository) LowestLocalID(ctx context.Context) (int64, error) {
	var lowest int64
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(MIN(id), -1) FROM contacts WHERE id < 0`).Scan(&lowest)
	if err != nil {
		return 0, fmt.Errorf("failed to query lowest local id: %w", err)
	}
	return lowest, nil
}

// Remap deletes the row keyed by oldID and inserts c in one transaction.
func (r *SQLiteRepository) Remap(ctx context.Context, owner, oldID int64, c *models.Contact) error {
	err := dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := deleteTx(ctx, tx, owner, oldID); err != nil {
			return err
		}
		return upsertTx(ctx, tx, c)
	})
	if err != nil {
		return fmt.Errorf("failed to remap contact %d: %w", oldID, err)
	}
	return nil
}

// Clear wipes all contact rows.
func (r *SQLiteRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contacts`); err != nil {
		return fmt.Errorf("failed to clear contacts: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) queryContacts(ctx context.Context, query string, args ...any) ([]models.Contact, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select contacts: %w", err)
	}
	defer rows.Close()

	var result []models.Contact
	for rows.Next() {
		c, err := scanContact(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func scanContact(scan func(dest ...any) error) (*models.Contact, error) {
	var (
		c  models.Contact
		id int64
	)
	if err := scan(&id, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.Dirty, &c.Deleted); err != nil {
		return nil, err
	}
	c.ID = models.ParseID(id)
	return &c, nil
}
