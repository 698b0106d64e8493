// Package store persists accounts, period balances and cases in an embedded
// SQLite database.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = errors.New("not found")

//go:embed migrations/*.sql
var migrations embed.FS

// Store is a handle on the database. A Store returned to an InTx callback
// runs every statement inside that transaction.
type Store struct {
	db *sqlx.DB
	q  sqlx.ExtContext
}

// Open opens (creating if needed) the database at path and applies pending
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating store dir: %w", err)
		}
	}

	db, err := sqlx.Open(driverName, path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening store %s: %w", path, err)
	}
	if err := migrate(ctx, db.DB); err != nil {
		db.Close()
		return nil, err
	}
	// Single writer.
	db.SetMaxOpenConns(1)

	return &Store{db: db, q: db}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	fsys, err := fs.Sub(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}
	p, err := goose.NewProvider(goose.DialectSQLite3, db, fsys)
	if err != nil {
		return fmt.Errorf("preparing migrations: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("migrating store: %w", err)
	}
	return nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// InTx runs fn in a transaction, committing when fn returns nil. Calling InTx
// on a transactional Store reuses the open transaction.
func (s *Store) InTx(ctx context.Context, fn func(tx *Store) error) error {
	if _, nested := s.q.(*sqlx.Tx); nested {
		return fn(s)
	}
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(&Store{db: s.db, q: tx}); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Stats are row counts per table.
type Stats struct {
	Accounts int `db:"accounts"`
	Balances int `db:"balances"`
	Cases    int `db:"cases"`
}

// Stats counts stored records.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := sqlx.GetContext(ctx, s.q, &st, `SELECT
		(SELECT COUNT(*) FROM account) AS accounts,
		(SELECT COUNT(*) FROM period_balance) AS balances,
		(SELECT COUNT(*) FROM case_file) AS cases`)
	if err != nil {
		return Stats{}, fmt.Errorf("counting records: %w", err)
	}
	return st, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}
