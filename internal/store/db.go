package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/schema"

	_ "github.com/mattn/go-sqlite3"
)

// DialectFor maps a database/sql driver name to the matching bun dialect.
func DialectFor(driver string) (schema.Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "sqlite3", "sqlite":
		return sqlitedialect.New(), nil
	case "postgres", "pg", "pgx":
		return pgdialect.New(), nil
	default:
		return nil, fmt.Errorf("store: unsupported database driver %q", driver)
	}
}

// Open opens the database identified by driver and dsn and wraps it in a
// bun.DB with the matching dialect. SQLite connections are pinned to a
// single open connection so in-memory databases keep their state and file
// databases avoid writer contention.
func Open(driver, dsn string) (*bun.DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}

	name := strings.ToLower(strings.TrimSpace(driver))
	if name == "" || name == "sqlite" {
		name = "sqlite3"
	}

	sqlDB, err := sql.Open(name, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open %s database: %w", name, err)
	}

	db := bun.NewDB(sqlDB, dialect)
	if name == "sqlite3" {
		db.SetMaxOpenConns(1)
	}
	return db, nil
}

// NewDB wraps an existing sql.DB for hosts that manage their own pool.
func NewDB(sqlDB *sql.DB, driver string) (*bun.DB, error) {
	dialect, err := DialectFor(driver)
	if err != nil {
		return nil, err
	}
	return bun.NewDB(sqlDB, dialect), nil
}
