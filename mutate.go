package sagittadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslan-rv-ua/sagittadb/internal/predicate"
)

// Update applies a partial merge to every document matching filter:
// each named top-level field is set to its new value, all other fields
// and all non-matching documents are left untouched. Returns the number
// of documents touched.
//
// An explicit Null value is rejected with INVALID_UPDATE rather than
// clearing or nulling the field.
func (db *DB) Update(ctx context.Context, filter Filter, changes Changes) (int64, error) {
	where, err := predicate.CompileFilter(filter)
	if err != nil {
		return 0, filterError(err)
	}
	set, err := predicate.CompileUpdate(changes)
	if err != nil {
		return 0, updateError(err)
	}

	query := fmt.Sprintf("UPDATE documents SET %s WHERE %s", set.SQL, where.SQL)
	args := append(set.Args, where.Args...)

	n, err := db.exec(ctx, query, args)
	if err != nil {
		return 0, err
	}
	db.log.Debug("documents updated", "count", n)
	return n, nil
}

// Remove deletes every document matching filter and returns the count
// removed. An empty filter is INVALID_FILTER, never "delete all"; use
// Purge for that.
func (db *DB) Remove(ctx context.Context, filter Filter) (int64, error) {
	where, err := predicate.CompileFilter(filter)
	if err != nil {
		return 0, filterError(err)
	}

	n, err := db.exec(ctx, "DELETE FROM documents WHERE "+where.SQL, where.Args)
	if err != nil {
		return 0, err
	}
	db.log.Debug("documents removed", "count", n)
	return n, nil
}

// Purge deletes all documents unconditionally.
func (db *DB) Purge(ctx context.Context) error {
	if _, err := db.exec(ctx, "DELETE FROM documents", nil); err != nil {
		return err
	}
	db.log.Debug("store purged")
	return nil
}

// exec runs a mutation inside the transaction scope and returns the
// number of rows affected.
func (db *DB) exec(ctx context.Context, query string, args []any) (int64, error) {
	var n int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("execute mutation: %w", err)
		}
		n, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}
