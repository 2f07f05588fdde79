package sagittadb

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

const insertSQL = "INSERT INTO documents (data) VALUES (?)"

// Insert stores a single document and returns its surrogate id.
// The document must be a non-nil object; ids are monotonically
// increasing and never reused.
func (db *DB) Insert(ctx context.Context, doc Object) (int64, error) {
	if doc == nil {
		return 0, &Error{Code: CodeInvalidDocument, Message: "document must be a non-nil object"}
	}

	data, err := document.Encode(doc)
	if err != nil {
		return 0, &Error{Code: CodeInvalidDocument, Message: err.Error(), Err: err}
	}

	var id int64
	err = db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, insertSQL, string(data))
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("insert document: last insert id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.log.Debug("document inserted", "id", id)
	return id, nil
}

// InsertMany stores a sequence of documents inside one transaction and
// returns the number inserted. Documents are validated as the sequence
// is consumed; if any element is invalid, nothing from the batch is
// persisted.
func (db *DB) InsertMany(ctx context.Context, docs iter.Seq[Object]) (int64, error) {
	var count int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return fmt.Errorf("prepare insert: %w", err)
		}
		defer stmt.Close()

		for doc := range docs {
			if doc == nil {
				return &Error{Code: CodeInvalidDocument, Message: "document must be a non-nil object"}
			}
			data, err := document.Encode(doc)
			if err != nil {
				return &Error{Code: CodeInvalidDocument, Message: err.Error(), Err: err}
			}
			if _, err := stmt.ExecContext(ctx, string(data)); err != nil {
				return fmt.Errorf("insert document: %w", err)
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.log.Debug("documents inserted", "count", count)
	return count, nil
}
