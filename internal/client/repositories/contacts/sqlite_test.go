package contacts

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
CREATE TABLE contacts (
  id INTEGER NOT NULL,
  owner_id INTEGER NOT NULL,
  name TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL DEFAULT '',
  phone TEXT NOT NULL DEFAULT '',
  address TEXT NOT NULL DEFAULT '',
  dirty INTEGER NOT NULL DEFAULT 0,
  deleted INTEGER NOT NULL DEFAULT 0,
  PRIMARY KEY (owner_id, id)
);
`)
	require.NoError(t, err)

	return db
}

func TestUpsert_InsertAndReplace(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Contact{
		ID:      models.RemoteID(5),
		OwnerID: 42,
		Name:    "Acme Ltd",
		Email:   "sales@acme.test",
		Dirty:   true,
	}
	require.NoError(t, r.Upsert(ctx, c))

	// replace under the same (owner, id)
	c2 := &models.Contact{
		ID:      models.RemoteID(5),
		OwnerID: 42,
		Name:    "Acme Limited",
		Phone:   "555-0101",
	}
	require.NoError(t, r.Upsert(ctx, c2))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM contacts WHERE id=5`).Scan(&n))
	assert.Equal(t, 1, n, "upsert must replace, not duplicate")

	got, err := r.GetByID(ctx, 42, 5)
	require.NoError(t, err)
	assert.Equal(t, "Acme Limited", got.Name)
	assert.Equal(t, "555-0101", got.Phone)
	assert.False(t, got.Dirty)
}

func TestGetByID_RoundTripAndNotFound(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	c := &models.Contact{
		ID:      models.LocalID(3),
		OwnerID: 42,
		Name:    "Offline Customer",
		Address: "12 Main St",
		Dirty:   true,
	}
	require.NoError(t, r.Upsert(ctx, c))

	got, err := r.GetByID(ctx, 42, -3)
	require.NoError(t, err)
	assert.Equal(t, c, got)

	_, err = r.GetByID(ctx, 42, 99)
	require.ErrorIs(t, err, common.ErrNotFound)

	// wrong owner scope
	_, err = r.GetByID(ctx, 7, -3)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetAllByOwner_ExcludesDeletedAndOtherOwners(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO contacts(id, owner_id, name, deleted) VALUES
	  (1, 42, 'a', 0),
	  (2, 42, 'b', 1),
	  (3, 7,  'c', 0),
	  (-1, 42, 'd', 0)
	`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	got, err := r.GetAllByOwner(ctx, 42)
	require.NoError(t, err)

	ids := make(map[int64]struct{})
	for _, c := range got {
		ids[c.ID.Int64()] = struct{}{}
	}
	assert.Equal(t, map[int64]struct{}{1: {}, -1: {}}, ids)
}

func TestGetDirty_IncludesDeletedRows(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()

	_, err := db.Exec(`INSERT INTO contacts(id, owner_id, name, dirty, deleted) VALUES
	  (1, 42, 'clean', 0, 0),
	  (2, 42, 'edited', 1, 0),
	  (3, 42, 'pending delete', 1, 1)
	`)
	require.NoError(t, err)

	r := NewSQLiteRepository(db)
	got, err := r.GetDirty(ctx, 42)
	require.NoError(t, err)

	ids := make(map[int64]struct{})
	for _, c := range got {
		ids[c.ID.Int64()] = struct{}{}
	}
	assert.Equal(t, map[int64]struct{}{2: {}, 3: {}}, ids)
}

func TestLowestLocalID(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	// no rows at all
	lowest, err := r.LowestLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), lowest)

	_, err = db.Exec(`INSERT INTO contacts(id, owner_id, name) VALUES
	  (-3, 42, 'x'), (-1, 42, 'y'), (5, 42, 'z'), (7, 42, 'w')`)
	require.NoError(t, err)

	lowest, err = r.LowestLocalID(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(-3), lowest)
}

func TestDeleteByID_RemovesRowAndIgnoresAbsent(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO contacts(id, owner_id, name) VALUES (1, 42, 'x')`)
	require.NoError(t, err)

	require.NoError(t, r.DeleteByID(ctx, 42, 1))
	_, err = r.GetByID(ctx, 42, 1)
	require.ErrorIs(t, err, common.ErrNotFound)

	// deleting again is a no-op
	require.NoError(t, r.DeleteByID(ctx, 42, 1))
}

func TestRemap_ReplacesOldRowAtomically(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	orig := &models.Contact{
		ID:      models.LocalID(1),
		OwnerID: 42,
		Name:    "New Customer",
		Dirty:   true,
	}
	require.NoError(t, r.Upsert(ctx, orig))

	remapped := *orig
	remapped.ID = models.RemoteID(108)
	remapped.Dirty = false
	require.NoError(t, r.Remap(ctx, 42, -1, &remapped))

	_, err := r.GetByID(ctx, 42, -1)
	require.ErrorIs(t, err, common.ErrNotFound)

	got, err := r.GetByID(ctx, 42, 108)
	require.NoError(t, err)
	assert.Equal(t, "New Customer", got.Name)
	assert.False(t, got.Dirty)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestClear_WipesAllRows(t *testing.T) {
	db := setupDB(t)
	ctx := context.Background()
	r := NewSQLiteRepository(db)

	_, err := db.Exec(`INSERT INTO contacts(id, owner_id, name) VALUES (1, 42, 'x'), (2, 7, 'y')`)
	require.NoError(t, err)

	require.NoError(t, r.Clear(ctx))

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM contacts`).Scan(&n))
	assert.Equal(t, 0, n)
}
