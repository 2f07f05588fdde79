package predicate

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// Validation errors. The public API maps these onto its coded error set.
var (
	// ErrEmptyFilter indicates a nil or empty filter. An empty filter is
	// a usage error, never "match all".
	ErrEmptyFilter = errors.New("filter must be a non-empty mapping")

	// ErrBadField indicates a field path that is not a bare identifier.
	ErrBadField = errors.New("field must be a valid identifier")

	// ErrBadLiteral indicates a literal that cannot be bound as a SQL
	// parameter (arrays and objects).
	ErrBadLiteral = errors.New("literal cannot be bound as a parameter")

	// ErrEmptyUpdate indicates a nil or empty change set.
	ErrEmptyUpdate = errors.New("update must be a non-empty mapping")

	// ErrNullUpdate indicates an explicit null update value. Rejected so
	// "clear a field" stays distinguishable from "set to null".
	ErrNullUpdate = errors.New("update value must not be null")

	// ErrEmptyPattern indicates an empty regex pattern.
	ErrEmptyPattern = errors.New("pattern must be non-empty")
)

// Clause is a compiled SQL fragment with its positionally aligned
// bind parameters.
type Clause struct {
	SQL  string
	Args []any
}

// ValidIdent reports whether s is an identifier-shaped field path:
// letters, digits, and underscores, with a non-numeric first character.
//
// Field names pass this check before being embedded structurally into
// query text; literal values are always bound, never interpolated. The
// identifier check is what keeps the embedded path from being usable as
// an injection vector.
func ValidIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_':
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// CompileFilter translates an equality filter into a conjunction of
// json_extract tests. Keys are compiled in sorted order so the produced
// SQL and parameter list are deterministic for a given filter.
func CompileFilter(filter map[string]document.Value) (Clause, error) {
	if len(filter) == 0 {
		return Clause{}, ErrEmptyFilter
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !ValidIdent(key) {
			return Clause{}, fmt.Errorf("%w: %q", ErrBadField, key)
		}
		param, err := document.Param(filter[key])
		if err != nil {
			return Clause{}, fmt.Errorf("%w: field %q", ErrBadLiteral, key)
		}
		conditions = append(conditions, fmt.Sprintf("json_extract(data, '$.%s') = ?", key))
		args = append(args, param)
	}

	return Clause{SQL: strings.Join(conditions, " AND "), Args: args}, nil
}

// CompilePattern translates a (field, regex) pair into a REGEXP test.
//
// The field is passed as a bind parameter rather than embedded: only one
// path is involved, and dynamic extraction avoids widening the
// identifier-validation surface. The pattern itself is evaluated by the
// regexp function registered on the connection.
func CompilePattern(field, pattern string) (Clause, error) {
	if field == "" {
		return Clause{}, fmt.Errorf("%w: empty field", ErrBadField)
	}
	if pattern == "" {
		return Clause{}, ErrEmptyPattern
	}
	return Clause{
		SQL:  "json_extract(data, '$.' || ?) REGEXP ?",
		Args: []any{field, pattern},
	}, nil
}

// CompileMembership translates (field, values) into an IN test. The
// caller is expected to short-circuit an empty value list without
// issuing a query; compiling one is an error here.
func CompileMembership(field string, values []document.Value) (Clause, error) {
	if !ValidIdent(field) {
		return Clause{}, fmt.Errorf("%w: %q", ErrBadField, field)
	}
	if len(values) == 0 {
		return Clause{}, fmt.Errorf("membership test needs at least one value")
	}

	args := make([]any, 0, len(values))
	for i, v := range values {
		param, err := document.Param(v)
		if err != nil {
			return Clause{}, fmt.Errorf("%w: value %d", ErrBadLiteral, i)
		}
		args = append(args, param)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(values)), ", ")
	return Clause{
		SQL:  fmt.Sprintf("json_extract(data, '$.%s') IN (%s)", field, placeholders),
		Args: args,
	}, nil
}

// CompileUpdate translates a change set into a single json_set SET
// clause. Keys are compiled in sorted order. Scalar values bind
// directly; arrays and objects are spliced through json(?) so they land
// as structure, not as escaped text.
func CompileUpdate(changes map[string]document.Value) (Clause, error) {
	if len(changes) == 0 {
		return Clause{}, ErrEmptyUpdate
	}

	keys := make([]string, 0, len(changes))
	for k := range changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	setArgs := make([]string, 0, len(keys)*2)
	args := make([]any, 0, len(keys))
	for _, key := range keys {
		if !ValidIdent(key) {
			return Clause{}, fmt.Errorf("%w: %q", ErrBadField, key)
		}
		v := changes[key]
		if _, isNull := v.(document.Null); isNull || v == nil {
			return Clause{}, fmt.Errorf("%w: field %q", ErrNullUpdate, key)
		}

		setArgs = append(setArgs, fmt.Sprintf("'$.%s'", key))
		if document.IsScalar(v) {
			param, err := document.Param(v)
			if err != nil {
				return Clause{}, fmt.Errorf("%w: field %q", ErrBadLiteral, key)
			}
			setArgs = append(setArgs, "?")
			args = append(args, param)
		} else {
			encoded, err := document.Encode(v)
			if err != nil {
				return Clause{}, fmt.Errorf("encode update value %q: %w", key, err)
			}
			setArgs = append(setArgs, "json(?)")
			args = append(args, string(encoded))
		}
	}

	return Clause{
		SQL:  fmt.Sprintf("data = json_set(data, %s)", strings.Join(setArgs, ", ")),
		Args: args,
	}, nil
}
