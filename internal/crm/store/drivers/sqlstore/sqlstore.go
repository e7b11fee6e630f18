// Package sqlstore implements store.Store on top of sqlx. The sqlite and
// postgres drivers share these repositories and differ only in how they open
// the database, migrate it and classify constraint errors.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/jmoiron/sqlx"
)

// Dialect carries the driver specific pieces.
type Dialect struct {
	Name string

	// Classify maps a driver error to store.ErrAlreadyExists or
	// store.ErrConflict, returning nil when it is neither.
	Classify func(error) error

	// Migrate applies the embedded schema.
	Migrate func(db *sql.DB) error
}

type Store struct {
	db *sqlx.DB
	d  *Dialect
}

// New wraps an open database. Ownership of db passes to the Store.
func New(db *sqlx.DB, d Dialect) *Store {
	return &Store{db: db, d: &d}
}

// DB exposes the underlying handle for drivers and tests.
func (s *Store) DB() *sqlx.DB { return s.db }

func (s *Store) Close() error                   { return s.db.Close() }
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) ApplyMigrations() error {
	if s.d.Migrate == nil {
		return fmt.Errorf("sqlstore: %s has no migrations", s.d.Name)
	}
	return s.d.Migrate(s.db.DB)
}

// WithTx executes fn within a transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	t := &txStore{tx: tx, d: s.d}

	defer func() {
		_ = tx.Rollback() // no-op after commit
	}()

	if err := fn(t); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) Users() store.Users                 { return &usersRepo{conn{s.db, s.d}} }
func (s *Store) Profiles() store.Profiles           { return &profilesRepo{conn{s.db, s.d}} }
func (s *Store) Companies() store.Companies         { return &companiesRepo{conn{s.db, s.d}} }
func (s *Store) Memberships() store.Memberships     { return &membershipsRepo{conn{s.db, s.d}} }
func (s *Store) Stages() store.Stages               { return &stagesRepo{conn{s.db, s.d}} }
func (s *Store) Leads() store.Leads                 { return &leadsRepo{conn{s.db, s.d}} }
func (s *Store) Notes() store.Notes                 { return &notesRepo{conn{s.db, s.d}} }
func (s *Store) Tags() store.Tags                   { return &tagsRepo{conn{s.db, s.d}} }
func (s *Store) CustomFields() store.CustomFields   { return &customFieldsRepo{conn{s.db, s.d}} }
func (s *Store) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{conn{s.db, s.d}} }

type txStore struct {
	tx *sqlx.Tx
	d  *Dialect
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

// Close is a no-op; the outer Store owns the database.
func (t *txStore) Close() error { return nil }

func (t *txStore) Ping(context.Context) error { return nil }

func (t *txStore) ApplyMigrations() error { return nil }

func (t *txStore) WithTx(context.Context, func(store.Tx) error) error {
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                 { return &usersRepo{conn{t.tx, t.d}} }
func (t *txStore) Profiles() store.Profiles           { return &profilesRepo{conn{t.tx, t.d}} }
func (t *txStore) Companies() store.Companies         { return &companiesRepo{conn{t.tx, t.d}} }
func (t *txStore) Memberships() store.Memberships     { return &membershipsRepo{conn{t.tx, t.d}} }
func (t *txStore) Stages() store.Stages               { return &stagesRepo{conn{t.tx, t.d}} }
func (t *txStore) Leads() store.Leads                 { return &leadsRepo{conn{t.tx, t.d}} }
func (t *txStore) Notes() store.Notes                 { return &notesRepo{conn{t.tx, t.d}} }
func (t *txStore) Tags() store.Tags                   { return &tagsRepo{conn{t.tx, t.d}} }
func (t *txStore) CustomFields() store.CustomFields   { return &customFieldsRepo{conn{t.tx, t.d}} }
func (t *txStore) RefreshTokens() store.RefreshTokens { return &refreshTokensRepo{conn{t.tx, t.d}} }

// conn is what every repository holds: a *sqlx.DB or *sqlx.Tx plus the
// dialect. Queries are written with ? placeholders and rebound per driver.
type conn struct {
	q sqlx.ExtContext
	d *Dialect
}

func (c conn) get(ctx context.Context, dest any, query string, args ...any) error {
	err := sqlx.GetContext(ctx, c.q, dest, c.q.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

func (c conn) selectAll(ctx context.Context, dest any, query string, args ...any) error {
	return sqlx.SelectContext(ctx, c.q, dest, c.q.Rebind(query), args...)
}

func (c conn) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	res, err := c.q.ExecContext(ctx, c.q.Rebind(query), args...)
	if err != nil {
		if mapped := c.d.Classify(err); mapped != nil {
			return nil, fmt.Errorf("%w: %v", mapped, err)
		}
		return nil, err
	}
	return res, nil
}

// execOne runs a write that must touch exactly one row.
func (c conn) execOne(ctx context.Context, query string, args ...any) error {
	res, err := c.exec(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
