// Package storage persists the engine's records in SQLite. Writes are
// unconditional last-write-wins per record; there is no locking and no
// retry layer. Multi-record replacement of contribution entries is the one
// operation wrapped in a transaction.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"primanota/internal/store"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Tenant returns the store bundle scoped to one tenant. The engine layers
// above stay tenant-agnostic.
func (r *SQLiteRepository) Tenant(id string) store.Bundle {
	return &TenantStore{db: r.db, tenant: id}
}

var _ store.Provider = (*SQLiteRepository)(nil)

// UpsertSite installs or updates site master data. Sites are maintained by
// the master-data screens outside this engine; this entry point exists for
// seeding and tests.
func (r *SQLiteRepository) UpsertSite(ctx context.Context, tenant, id, name, fund string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sites (tenant_id, id, name, fund) VALUES (?, ?, ?, ?)
		ON CONFLICT(tenant_id, id) DO UPDATE SET name = excluded.name, fund = excluded.fund`,
		tenant, id, name, fund)
	if err != nil {
		return fmt.Errorf("upsert site: %w", err)
	}
	return nil
}

// TenantStore implements the store ports against SQLite for one tenant.
type TenantStore struct {
	db     *sql.DB
	tenant string
}

var _ store.Bundle = (*TenantStore)(nil)
