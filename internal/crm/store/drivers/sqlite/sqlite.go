// Package sqlite opens the embedded SQLite store (modernc.org/sqlite, no cgo).
package sqlite

import (
	"context"
	"errors"
	"strings"

	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/sqlstore"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Open connects to dsn, e.g. "file:crm.db" or ":memory:". Foreign keys are
// enforced and times are written in a sortable format.
//
// The pool is limited to a single connection: SQLite serialises writers
// anyway, and an in-memory database only lives as long as its connection.
func Open(dsn string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("sqlite", withParams(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return sqlstore.New(db, Dialect), nil
}

// OpenMemory returns a migrated in-memory store.
func OpenMemory() (*sqlstore.Store, error) {
	s, err := Open(":memory:")
	if err != nil {
		return nil, err
	}
	if err := s.ApplyMigrations(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

var Dialect = sqlstore.Dialect{
	Name:     "sqlite",
	Classify: classify,
	Migrate:  migrateUp,
}

func withParams(dsn string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
}

func classify(err error) error {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return nil
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return store.ErrAlreadyExists
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return store.ErrConflict
	}
	// Primary code only, when extended codes are unavailable.
	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		switch msg := se.Error(); {
		case strings.Contains(msg, "UNIQUE"):
			return store.ErrAlreadyExists
		case strings.Contains(msg, "FOREIGN KEY"):
			return store.ErrConflict
		}
	}
	return nil
}
