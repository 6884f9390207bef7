// Package store opens the local SQLite database, applies schema migrations,
// and hands out the repository set the client runs on.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dkazakov/fieldsale/internal/client/migrations"
	"github.com/dkazakov/fieldsale/internal/client/repositories/contacts"
	"github.com/dkazakov/fieldsale/internal/client/repositories/metadata"
	"github.com/dkazakov/fieldsale/internal/client/repositories/products"
	"github.com/dkazakov/fieldsale/internal/client/repositories/suppliers"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Repositories bundles every repository backed by the local database.
// DB is exposed for lifecycle management (Close) only.
type Repositories struct {
	Contacts  contacts.Repository
	Products  products.Repository
	Suppliers suppliers.Repository
	Metadata  metadata.Repository
	DB        *sql.DB
}

// Close releases the underlying database handle.
func (r *Repositories) Close() error {
	return r.DB.Close()
}

// gooseUpContext is a seam for testing migration failures.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations to db. Safe to call on every
// startup; goose tracks applied versions in its own table.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}
	return gooseUpContext(ctx, db, ".")
}

// InitDatabase opens (creating if absent) the database at dsn, migrates it,
// and returns the repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", dsn, err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database %s: %w", dsn, err)
	}
	return &Repositories{
		Contacts:  contacts.NewSQLiteRepository(db),
		Products:  products.NewSQLiteRepository(db),
		Suppliers: suppliers.NewSQLiteRepository(db),
		Metadata:  metadata.NewSQLiteRepository(db),
		DB:        db,
	}, nil
}
