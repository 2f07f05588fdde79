package storage

import (
	"database/sql"
	_ "embed"
	"fmt"
	"sync"

	"github.com/mattn/go-sqlite3"
)

// Memory is the path sentinel for a volatile in-memory database.
const Memory = ":memory:"

// driverName is our sqlite3 driver variant with the regexp function
// installed on every connection.
const driverName = "sqlite3_sagittadb"

//go:embed schema.sql
var schemaSQL string

var registerOnce sync.Once

func registerDriver() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			// true marks the function as pure, letting SQLite cache results.
			return conn.RegisterFunc("regexp", regexpMatch, true)
		},
	})
}

// Open creates or opens a SQLite database at the given path, or a
// volatile instance when path is Memory. Pragmas and the schema are
// applied idempotently.
//
// The pool is pinned to a single connection: SQLite allows one writer
// at a time anyway, and for Memory it keeps every operation on the one
// connection that actually holds the data.
func Open(path string) (*sql.DB, error) {
	registerOnce.Do(registerDriver)

	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}

	return nil
}
