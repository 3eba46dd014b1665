// Package testsupport provides shared helpers for package tests.
package testsupport

import (
	"database/sql"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// NewSQLiteMemoryDB opens a named in-memory sqlite database. Each distinct
// name gets an isolated database, so parallel tests pass their test name to
// avoid sharing state. Callers must pin the pool to one connection or the
// memory database vanishes between statements.
func NewSQLiteMemoryDB(name string) (*sql.DB, error) {
	sanitized := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(name)
	return sql.Open("sqlite3", "file:"+sanitized+"?mode=memory&cache=shared")
}
