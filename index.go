package sagittadb

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ruslan-rv-ua/sagittadb/internal/predicate"
)

// CreateIndex idempotently establishes a secondary index on the decoded
// value at the given top-level field. Calling it again for the same
// field is a no-op, never an error.
//
// The index targets a computed extraction of stored content, so
// documents inserted afterwards are indexed automatically. Index
// existence never changes query results, only performance.
func (db *DB) CreateIndex(ctx context.Context, field string) error {
	if !predicate.ValidIdent(field) {
		return &Error{Code: CodeInvalidFieldPath, Message: "field must be a valid identifier", Field: field}
	}

	// Field is identifier-validated above, then embedded structurally;
	// CREATE INDEX cannot take the name or the extraction path as a
	// bind parameter.
	query := fmt.Sprintf(
		"CREATE INDEX IF NOT EXISTS idx_json_%s ON documents (json_extract(data, '$.%s'))",
		field, field,
	)

	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, query); err != nil {
			return fmt.Errorf("create index on %q: %w", field, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	db.log.Debug("index ensured", "field", field)
	return nil
}
