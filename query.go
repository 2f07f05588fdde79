package sagittadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"regexp"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
	"github.com/ruslan-rv-ua/sagittadb/internal/predicate"
)

// patternPageSize caps an unscoped pattern search. Unlike All and
// Search, SearchPattern is not allowed to silently materialize the
// entire store when the caller passes NoLimit.
const patternPageSize = 100

// paginate appends LIMIT/OFFSET to a query. A negative limit means
// unbounded (LIMIT -1 is the substrate's own convention for that), a
// zero limit yields nothing, and a negative offset is clamped to zero.
func paginate(query string, args []any, limit, offset int) (string, []any) {
	if offset < 0 {
		offset = 0
	}
	if limit >= 0 {
		return query + " LIMIT ? OFFSET ?", append(args, limit, offset)
	}
	if offset > 0 {
		return query + " LIMIT -1 OFFSET ?", append(args, offset)
	}
	return query, args
}

// All produces a lazy, finite, non-restartable sequence of all
// documents in storage order. The read transaction and the store lock
// are held until the sequence is exhausted or abandoned.
func (db *DB) All(ctx context.Context, limit, offset int) iter.Seq2[Object, error] {
	query, args := paginate("SELECT data FROM documents ORDER BY id", nil, limit, offset)
	return db.stream(ctx, query, args)
}

// Search produces the documents matching every constraint in filter,
// with the same pagination semantics as All. Validation errors surface
// on the first iteration step.
func (db *DB) Search(ctx context.Context, filter Filter, limit, offset int) iter.Seq2[Object, error] {
	clause, err := predicate.CompileFilter(filter)
	if err != nil {
		return failSeq(filterError(err))
	}

	query, args := paginate("SELECT data FROM documents WHERE "+clause.SQL+" ORDER BY id", clause.Args, limit, offset)
	return db.stream(ctx, query, args)
}

// SearchPattern produces the documents whose field matches the regex
// pattern: unanchored, case-sensitive substring search over string
// values; non-string and missing values never match. A malformed
// pattern surfaces as an INVALID_PATTERN error on the first iteration
// step, never as a silent empty result. NoLimit is replaced by a
// default page of 100.
func (db *DB) SearchPattern(ctx context.Context, field, pattern string, limit, offset int) iter.Seq2[Object, error] {
	clause, err := predicate.CompilePattern(field, pattern)
	if err != nil {
		if errors.Is(err, predicate.ErrBadField) {
			return failSeq(&Error{Code: CodeInvalidFieldPath, Message: err.Error(), Field: field, Err: err})
		}
		return failSeq(&Error{Code: CodeInvalidPattern, Message: err.Error(), Err: err})
	}
	// The registered SQL function would reject this too, but compiling
	// here keeps the surfaced error typed.
	if _, err := regexp.Compile(pattern); err != nil {
		return failSeq(&Error{Code: CodeInvalidPattern, Message: err.Error(), Err: err})
	}

	if limit < 0 {
		limit = patternPageSize
	}
	query, args := paginate("SELECT data FROM documents WHERE "+clause.SQL+" ORDER BY id", clause.Args, limit, offset)
	return db.stream(ctx, query, args)
}

// FindAny produces the documents whose field equals any of the supplied
// literals. An empty values slice yields an empty sequence with no
// storage query issued at all.
func (db *DB) FindAny(ctx context.Context, field string, values []Value) iter.Seq2[Object, error] {
	if len(values) == 0 {
		if !predicate.ValidIdent(field) {
			return failSeq(&Error{Code: CodeInvalidFieldPath, Message: "field must be a valid identifier", Field: field})
		}
		return emptySeq()
	}

	clause, err := predicate.CompileMembership(field, values)
	if err != nil {
		return failSeq(filterError(err))
	}

	return db.stream(ctx, "SELECT data FROM documents WHERE "+clause.SQL+" ORDER BY id", clause.Args)
}

// Count returns the number of documents matching filter, or the total
// count when filter is nil. For any filter f, Count(f) equals the
// length of Search(f) drained with no intervening writes.
func (db *DB) Count(ctx context.Context, filter Filter) (int64, error) {
	query := "SELECT COUNT(*) FROM documents"
	var args []any

	if filter != nil {
		clause, err := predicate.CompileFilter(filter)
		if err != nil {
			return 0, filterError(err)
		}
		query += " WHERE " + clause.SQL
		args = clause.Args
	}

	var count int64
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
			return fmt.Errorf("count documents: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Get retrieves a single document by its surrogate id.
func (db *DB) Get(ctx context.Context, id int64) (Object, error) {
	var doc Object
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		var data []byte
		err := tx.QueryRowContext(ctx, "SELECT data FROM documents WHERE id = ?", id).Scan(&data)
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound(id)
		}
		if err != nil {
			return fmt.Errorf("get document %d: %w", id, err)
		}
		doc, err = document.DecodeObject(data)
		return err
	})
	if err != nil {
		return nil, err
	}
	return doc, nil
}
