// Package sagittadb is a lightweight, embedded, schema-less document
// store on SQLite. Documents are JSON objects with heterogeneous,
// arbitrarily nested values; the store offers insertion, equality and
// regex-pattern search, bulk membership search, partial update,
// deletion, and secondary indexing on top-level fields, against either
// a durable file or a volatile in-memory instance.
//
// Every operation on one DB is serialized through a single lock, reads
// included. Streaming reads hold that lock for the life of the returned
// sequence, so a slowly consumed iterator blocks all other operations
// on the handle; this is a deliberate simplicity/throughput trade-off,
// not an oversight.
package sagittadb

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
	"github.com/ruslan-rv-ua/sagittadb/internal/predicate"
	"github.com/ruslan-rv-ua/sagittadb/internal/storage"
)

// Memory is the path sentinel for a volatile in-memory store.
const Memory = storage.Memory

// NoLimit requests an unbounded read. Any negative limit is treated the
// same way, matching the substrate's LIMIT -1 convention.
const NoLimit = -1

// Value variants, re-exported so callers can build documents and
// filters without importing the internal package.
type (
	Value  = document.Value
	Null   = document.Null
	Bool   = document.Bool
	Int    = document.Int
	Float  = document.Float
	String = document.String
	Array  = document.Array
	Object = document.Object
)

// Filter is a conjunctive set of field-path/literal equality
// constraints. A nil Filter passed to Count means "all documents"; an
// empty non-nil Filter is a usage error everywhere.
type Filter map[string]Value

// Changes is the set of top-level fields a partial update writes.
type Changes map[string]Value

// FromGo converts native Go values (nil, bool, int, int64, float64,
// string, []any, map[string]any) into a Value.
func FromGo(v any) (Value, error) { return document.FromGo(v) }

// DB is a handle to one document store. All methods are safe for
// concurrent use from multiple goroutines sharing the handle; two
// independent handles opened on the same file are coordinated only by
// SQLite itself.
type DB struct {
	mu     sync.Mutex
	sql    *sql.DB
	log    *slog.Logger
	closed bool
}

// Option configures a DB at open time.
type Option func(*DB)

// WithLogger directs operation logging to l. By default the store is
// silent.
func WithLogger(l *slog.Logger) Option {
	return func(db *DB) {
		if l != nil {
			db.log = l
		}
	}
}

// Open creates or opens a store at path, or a volatile in-memory store
// when path is Memory.
func Open(path string, opts ...Option) (*DB, error) {
	db := &DB{
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(db)
	}

	conn, err := storage.Open(path)
	if err != nil {
		return nil, err
	}
	db.sql = conn

	db.log.Debug("store opened", "path", path)
	return db, nil
}

// Close releases the underlying handle. Subsequent operations fail with
// a HANDLE_CLOSED error. Close is idempotent.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return nil
	}
	db.closed = true

	if err := db.sql.Close(); err != nil {
		return fmt.Errorf("close store: %w", err)
	}
	db.log.Debug("store closed")
	return nil
}

// filterError maps predicate compiler failures for filter and
// membership compilation onto the public error codes.
func filterError(err error) error {
	switch {
	case errors.Is(err, predicate.ErrBadField):
		return &Error{Code: CodeInvalidFieldPath, Message: err.Error(), Err: err}
	default:
		return &Error{Code: CodeInvalidFilter, Message: err.Error(), Err: err}
	}
}

// updateError maps change-set compilation failures onto INVALID_UPDATE;
// bad update keys are an update error, not a field path error.
func updateError(err error) error {
	return &Error{Code: CodeInvalidUpdate, Message: err.Error(), Err: err}
}
