// Package predicate compiles filters into parameterized SQL fragments
// for the documents table.
//
// Two disciplines hold everywhere and are security-relevant, not
// incidental: field paths are validated as bare identifiers before
// being embedded structurally into query text, and literal values are
// ALWAYS bound parameters, never interpolated.
package predicate
