package products

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dkazakov/fieldsale/internal/client/models"
	"github.com/dkazakov/fieldsale/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE products (
  id INTEGER NOT NULL,
  owner_id INTEGER NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  sku TEXT NOT NULL DEFAULT '',
  price_cents INTEGER NOT NULL DEFAULT 0,
  quantity INTEGER NOT NULL DEFAULT 0,
  dirty INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (owner_id, id)
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsert_RoundTrip(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := &models.Product{
		ID:         models.LocalID(2),
		OwnerID:    42,
		Name:       "Widget",
		SKU:        "W-001",
		PriceCents: 1999,
		Quantity:   12,
		Dirty:      true,
	}
	require.NoError(t, r.Upsert(ctx, p))

	got, err := r.GetByID(ctx, 42, -2)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestUpsert_ReplacesNotDuplicates(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	p := &models.Product{ID: models.RemoteID(9), OwnerID: 42, Name: "Widget", Quantity: 1}
	require.NoError(t, r.Upsert(ctx, p))

	p.Quantity = 5
	require.NoError(t, r.Upsert(ctx, p))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM products WHERE id=9`).Scan(&n))
	assert.Equal(t, 1, n)

	got, err := r.GetByID(ctx, 42, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(5), got.Quantity)
}

func TestGetDirty(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO products(id, owner_id, name, dirty) VALUES
	  (1, 42, 'clean', 0),
	  (-1, 42, 'new offline', 1),
	  (3, 42, 'edited', 1),
	  (4, 7, 'other owner', 1)
	`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	got, err := r.GetDirty(ctx, 42)
	require.NoError(t, err)

	ids := make(map[int64]struct{})
	for _, p := range got {
		ids[p.ID.Int64()] = struct{}{}
	}
	assert.Equal(t, map[int64]struct{}{-1: {}, 3: {}}, ids)
}

func TestLowestLocalID(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	lowest, err := r.LowestLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), lowest)

	_, err = db.Exec(`INSERT INTO products(id, owner_id, name) VALUES (-4, 42, 'a'), (2, 42, 'b')`)
	require.NoError(t, err)

	lowest, err = r.LowestLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-4), lowest)
}

func TestRemap_MovesRowToServerID(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	orig := &models.Product{ID: models.LocalID(2), OwnerID: 42, Name: "Widget", Dirty: true}
	require.NoError(t, r.Upsert(ctx, orig))

	remapped := *orig
	remapped.ID = models.RemoteID(77)
	remapped.Dirty = false
	require.NoError(t, r.Remap(ctx, 42, -2, &remapped))

	_, err := r.GetByID(ctx, 42, -2)
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := r.GetByID(ctx, 42, 77)
	require.NoError(t, err)
	assert.Equal(t, "Widget", got.Name)
	assert.False(t, got.Dirty)
}

func TestDeleteAndClear(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO products(id, owner_id, name) VALUES (1, 42, 'a'), (2, 42, 'b')`)
	require.NoError(t, err)

	require.NoError(t, r.DeleteByID(ctx, 42, 1))
	_, err = r.GetByID(ctx, 42, 1)
	require.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, r.Clear(ctx))
	all, err := r.GetAllByOwner(ctx, 42)
	require.NoError(t, err)
	assert.Empty(t, all)
}
