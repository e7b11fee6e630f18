// Package postgres opens the Postgres store through pgx's database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/leadboard/internal/crm/store"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/postgres/migrations"
	"github.com/aussiebroadwan/leadboard/internal/crm/store/drivers/sqlstore"
	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// Open connects to a postgres:// URL and verifies the connection.
func Open(ctx context.Context, url string) (*sqlstore.Store, error) {
	db, err := sqlx.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return sqlstore.New(db, Dialect(url)), nil
}

// Dialect returns the postgres dialect. Migrations run on their own
// connection to url so the migrate lock never pins a pooled connection.
func Dialect(url string) sqlstore.Dialect {
	return sqlstore.Dialect{
		Name:     "postgres",
		Classify: classify,
		Migrate: func(*sql.DB) error {
			return migrateUp(url)
		},
	}
}

func classify(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}
	switch pgErr.Code {
	case pgUniqueViolation:
		return store.ErrAlreadyExists
	case pgForeignKeyViolation:
		return store.ErrConflict
	}
	return nil
}

func migrateUp(url string) error {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return err
	}

	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return err
	}

	src, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		_ = db.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
