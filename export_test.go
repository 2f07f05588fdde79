package sagittadb

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportImport_RoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	seedCityFixture(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))

	dst := newTestDB(t)
	n, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)

	srcDocs := drain(t, src.All(ctx, NoLimit, 0))
	dstDocs := drain(t, dst.All(ctx, NoLimit, 0))
	require.Len(t, dstDocs, len(srcDocs))
	for i := range srcDocs {
		assert.True(t, containsDoc(dstDocs, srcDocs[i]))
	}
}

func TestExport_EmptyStore(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))

	dst := newTestDB(t)
	n, err := dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestImport_AppendsToExisting(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	seedCityFixture(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))

	dst := newTestDB(t)
	_, err := dst.Insert(ctx, Object{"existing": Bool(true)})
	require.NoError(t, err)

	_, err = dst.Import(ctx, bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	total, err := dst.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
}

func TestImport_RejectsGarbage(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Import(context.Background(), bytes.NewReader([]byte("not an export")))
	assert.Error(t, err)
}

func TestImport_ChecksumMismatchImportsNothing(t *testing.T) {
	ctx := context.Background()
	src := newTestDB(t)
	seedCityFixture(t, src)

	var buf bytes.Buffer
	require.NoError(t, src.Export(ctx, &buf))

	// Flip a byte in the middle of the stream. Either the decompressor
	// or the checksum rejects it; nothing may persist.
	raw := buf.Bytes()
	corrupted := append([]byte(nil), raw...)
	corrupted[len(corrupted)/2] ^= 0xFF

	dst := newTestDB(t)
	_, err := dst.Import(ctx, bytes.NewReader(corrupted))
	require.Error(t, err)

	total, err := dst.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "failed import must persist nothing")
}
