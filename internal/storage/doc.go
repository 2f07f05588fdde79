// Package storage owns the SQLite substrate: driver registration with
// the REGEXP user function, connection configuration, and the embedded
// documents schema.
//
// Database configuration:
//   - WAL mode: concurrent readers during writes (a no-op for Memory)
//   - synchronous=NORMAL: balance durability/performance
//   - busy_timeout=5000: wait for file locks up to 5 seconds
//   - single-connection pool: one writer, and one shared in-memory DB
package storage
