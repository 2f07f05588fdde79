package sagittadb

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/zeebo/xxh3"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// Export stream framing. The payload is zstd-compressed; the checksum
// in the trailer is XXH3 over the uncompressed document lines.
const (
	exportHeader  = "#sagittadb export v1"
	exportTrailer = "#sum count=%d xxh3=%016x"
)

// ErrInvalidExport indicates an export stream with a bad header,
// trailer, checksum, or payload.
var ErrInvalidExport = errors.New("invalid export stream")

// maxExportLine bounds a single serialized document in an export
// stream (16 MiB).
const maxExportLine = 16 << 20

// Export writes a backup of every document to w: a zstd-compressed
// stream of one JSON document per line, framed by a header line and a
// trailer carrying the document count and an XXH3 checksum. Documents
// are written in storage order, as stored, without re-encoding.
func (db *DB) Export(ctx context.Context, w io.Writer) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return fmt.Errorf("export: init compressor: %w", err)
	}

	hash := xxh3.New()
	var count int64

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := fmt.Fprintln(zw, exportHeader); err != nil {
			return fmt.Errorf("export: write header: %w", err)
		}

		rows, err := tx.QueryContext(ctx, "SELECT data FROM documents ORDER BY id")
		if err != nil {
			return fmt.Errorf("export: query documents: %w", err)
		}
		defer rows.Close()

		for rows.Next() {
			var data []byte
			if err := rows.Scan(&data); err != nil {
				return fmt.Errorf("export: scan document: %w", err)
			}
			line := append(data, '\n')
			hash.Write(line)
			if _, err := zw.Write(line); err != nil {
				return fmt.Errorf("export: write document: %w", err)
			}
			count++
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("export: iterate documents: %w", err)
		}

		if _, err := fmt.Fprintf(zw, exportTrailer+"\n", count, hash.Sum64()); err != nil {
			return fmt.Errorf("export: write trailer: %w", err)
		}
		return nil
	})
	if err != nil {
		zw.Close()
		return err
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("export: flush compressor: %w", err)
	}

	db.log.Debug("store exported", "count", count)
	return nil
}

// Import restores documents from an export stream produced by Export.
// The whole batch is inserted in one transaction: a decode failure or a
// count/checksum mismatch persists nothing. Returns the number of
// documents imported.
//
// Import appends to the store; it does not purge existing documents.
func (db *DB) Import(ctx context.Context, r io.Reader) (int64, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return 0, fmt.Errorf("import: init decompressor: %w", err)
	}
	defer zr.Close()

	scanner := bufio.NewScanner(zr)
	scanner.Buffer(make([]byte, 64<<10), maxExportLine)

	if !scanner.Scan() {
		return 0, fmt.Errorf("%w: missing header", ErrInvalidExport)
	}
	if scanner.Text() != exportHeader {
		return 0, fmt.Errorf("%w: bad header %q", ErrInvalidExport, scanner.Text())
	}

	hash := xxh3.New()
	var count int64
	var trailerSeen bool

	err = db.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insertSQL)
		if err != nil {
			return fmt.Errorf("import: prepare insert: %w", err)
		}
		defer stmt.Close()

		for scanner.Scan() {
			// Copy out of the scanner's buffer before appending the
			// newline back for hashing.
			line := append([]byte(nil), scanner.Bytes()...)
			if bytes.HasPrefix(line, []byte("#sum ")) {
				var wantCount int64
				var wantSum uint64
				if _, err := fmt.Sscanf(string(line), exportTrailer, &wantCount, &wantSum); err != nil {
					return fmt.Errorf("%w: bad trailer: %v", ErrInvalidExport, err)
				}
				if wantCount != count {
					return fmt.Errorf("%w: document count %d, trailer says %d", ErrInvalidExport, count, wantCount)
				}
				if wantSum != hash.Sum64() {
					return fmt.Errorf("%w: checksum mismatch", ErrInvalidExport)
				}
				trailerSeen = true
				break
			}

			if _, err := document.DecodeObject(line); err != nil {
				return fmt.Errorf("%w: line %d: %v", ErrInvalidExport, count+1, err)
			}
			hash.Write(append(line, '\n'))
			if _, err := stmt.ExecContext(ctx, string(line)); err != nil {
				return fmt.Errorf("import: insert document: %w", err)
			}
			count++
		}
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("import: read stream: %w", err)
		}
		if !trailerSeen {
			return fmt.Errorf("%w: missing trailer", ErrInvalidExport)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	db.log.Debug("store imported", "count", count)
	return count, nil
}
