package sagittadb

import (
	"context"
	"iter"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// drain collects a sequence, failing the test on any yielded error.
func drain(t *testing.T, seq iter.Seq2[Object, error]) []Object {
	t.Helper()
	var out []Object
	for doc, err := range seq {
		require.NoError(t, err)
		out = append(out, doc)
	}
	return out
}

// firstErr returns the first error a sequence yields, if any.
func firstErr(seq iter.Seq2[Object, error]) error {
	for _, err := range seq {
		if err != nil {
			return err
		}
	}
	return nil
}

func TestOpen_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	id, err := db.Insert(context.Background(), Object{"name": String("Alice")})
	require.NoError(t, err)
	assert.Positive(t, id)
}

func TestOpen_FilePersistsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := Open(path)
	require.NoError(t, err)
	_, err = db.Insert(ctx, Object{"name": String("Alice")})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db2, err := Open(path)
	require.NoError(t, err)
	defer db2.Close()

	n, err := db2.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestClose_OperationsFail(t *testing.T) {
	ctx := context.Background()
	db, err := Open(Memory)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = db.Insert(ctx, Object{"a": Int(1)})
	assert.True(t, IsClosed(err), "Insert after close: got %v", err)

	_, err = db.Count(ctx, nil)
	assert.True(t, IsClosed(err), "Count after close: got %v", err)

	err = firstErr(db.All(ctx, NoLimit, 0))
	assert.True(t, IsClosed(err), "All after close: got %v", err)

	_, err = db.Remove(ctx, Filter{"a": Int(1)})
	assert.True(t, IsClosed(err), "Remove after close: got %v", err)

	err = db.CreateIndex(ctx, "a")
	assert.True(t, IsClosed(err), "CreateIndex after close: got %v", err)
}

func TestClose_Idempotent(t *testing.T) {
	db, err := Open(Memory)
	require.NoError(t, err)
	require.NoError(t, db.Close())
	require.NoError(t, db.Close())
}

func TestStream_EarlyBreakReleasesLock(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for i := 0; i < 5; i++ {
		_, err := db.Insert(ctx, Object{"n": Int(int64(i))})
		require.NoError(t, err)
	}

	// Abandon the sequence after one document; the scope must be
	// released so the next operation does not block forever.
	for range db.All(ctx, NoLimit, 0) {
		break
	}

	_, err := db.Insert(ctx, Object{"n": Int(99)})
	require.NoError(t, err)
}

func TestError_KindBranching(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Remove(ctx, Filter{})
	assert.True(t, IsInvalidFilter(err))
	assert.False(t, IsClosed(err))

	_, err = db.Remove(ctx, Filter{"bad-name": Int(1)})
	assert.True(t, IsInvalidFieldPath(err))

	var se *Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, CodeInvalidFieldPath, se.Code)
	assert.NotEmpty(t, se.Error())
}

func TestFromGo_Convenience(t *testing.T) {
	v, err := FromGo(map[string]any{"name": "Alice", "age": 30})
	require.NoError(t, err)

	obj, ok := v.(Object)
	require.True(t, ok)
	assert.True(t, document.Equal(obj["age"], Int(30)))
}
