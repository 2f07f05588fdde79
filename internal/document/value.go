package document

import "fmt"

// Value is a sealed interface over the variants a stored document, a
// filter literal, or an update value may take: Null, Bool, Int, Float,
// String, Array, Object. Only types in this package implement it.
type Value interface {
	value() // Marker method - seals interface to this package
}

// Null represents a JSON null. An explicit type rather than a nil
// interface so every decoded value satisfies the sealed interface.
type Null struct{}

func (Null) value() {}

// Bool represents a JSON boolean.
type Bool bool

func (Bool) value() {}

// Int represents a JSON number with no fractional part.
// Decoded via json.Number so values beyond 2^53 survive the round trip.
type Int int64

func (Int) value() {}

// Float represents a JSON number with a fractional or exponent part.
type Float float64

func (Float) value() {}

// String represents a JSON string.
type String string

func (String) value() {}

// Array represents a JSON array of Values.
type Array []Value

func (Array) value() {}

// Object represents a JSON object. Every stored document payload is an
// Object at the root.
type Object map[string]Value

func (Object) value() {}

// Equal reports whether two Values are structurally equal.
//
// Equality is per-variant: there is no cross-variant equality, so
// Int(30) never equals String("30") and Int(1) never equals Float(1).
// Note that this is stricter than what SQLite applies inside compiled
// predicates, where numeric affinity may equate 30 with 30.0.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		bv, ok := b.(Int)
		return ok && av == bv
	case Float:
		bv, ok := b.(Float)
		return ok && av == bv
	case String:
		bv, ok := b.(String)
		return ok && av == bv
	case Array:
		bv, ok := b.(Array)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Object:
		bv, ok := b.(Object)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			w, ok := bv[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Param converts a scalar Value to a Go native type suitable as a SQL
// bind parameter. Arrays and objects cannot be bound directly.
func Param(v Value) (any, error) {
	switch val := v.(type) {
	case Null:
		return nil, nil
	case Bool:
		return bool(val), nil
	case Int:
		return int64(val), nil
	case Float:
		return float64(val), nil
	case String:
		return string(val), nil
	case Array:
		return nil, fmt.Errorf("array cannot be bound as a SQL parameter")
	case Object:
		return nil, fmt.Errorf("object cannot be bound as a SQL parameter")
	default:
		return nil, fmt.Errorf("unsupported value type for SQL parameter: %T", v)
	}
}

// IsScalar reports whether v binds directly as a SQL parameter.
func IsScalar(v Value) bool {
	switch v.(type) {
	case Array, Object:
		return false
	default:
		return v != nil
	}
}
