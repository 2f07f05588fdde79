package sagittadb

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// withTx runs fn inside the transaction scope: the store lock is
// acquired, a unit of work is opened, and on return it is committed or
// rolled back with the original failure surfaced unchanged. The lock
// acquisition is the only blocking point and waits indefinitely; ctx
// flows to the storage layer only.
func (db *DB) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return errClosed()
	}

	tx, err := db.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// stream runs a row query inside the transaction scope for the full
// lifetime of the produced sequence. The scope is released when the
// sequence is exhausted or the consumer breaks out of the range loop;
// either way release is deterministic.
//
// The store lock is held throughout, so calling any DB method from
// inside the iteration body deadlocks.
func (db *DB) stream(ctx context.Context, query string, args []any) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		db.mu.Lock()
		defer db.mu.Unlock()

		if db.closed {
			yield(nil, errClosed())
			return
		}

		tx, err := db.sql.BeginTx(ctx, nil)
		if err != nil {
			yield(nil, fmt.Errorf("begin transaction: %w", err))
			return
		}
		defer tx.Rollback() // Read-only scope; rollback releases it

		rows, err := tx.QueryContext(ctx, query, args...)
		if err != nil {
			yield(nil, fmt.Errorf("query documents: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				yield(nil, fmt.Errorf("scan document: %w", err))
				return
			}
			doc, err := document.DecodeObject(data)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(doc, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("iterate documents: %w", err))
		}
	}
}

// failSeq produces a sequence whose first element is err. Read
// operations surface their validation errors this way, on first
// iteration rather than at call time.
func failSeq(err error) iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {
		yield(nil, err)
	}
}

// emptySeq produces a sequence that yields nothing and never touches
// storage.
func emptySeq() iter.Seq2[Object, error] {
	return func(yield func(Object, error) bool) {}
}
