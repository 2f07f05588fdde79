package sagittadb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ruslan-rv-ua/sagittadb/internal/document"
)

// seedCities inserts the five-city fixture used across query tests.
func seedCityFixture(t *testing.T, db *DB) {
	t.Helper()
	ctx := context.Background()
	for i, city := range []string{"NYC", "NYC", "LA", "Chicago", "Chicago"} {
		_, err := db.Insert(ctx, Object{
			"city": String(city),
			"seq":  Int(int64(i)),
		})
		require.NoError(t, err)
	}
}

func TestCount_Scenario(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	n, err := db.Count(ctx, Filter{"city": String("Chicago")})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	total, err := db.Count(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
}

func TestCount_EmptyFilterIsError(t *testing.T) {
	db := newTestDB(t)

	// nil means "count all"; an empty non-nil filter is a usage error.
	_, err := db.Count(context.Background(), Filter{})
	assert.True(t, IsInvalidFilter(err), "got %v", err)
}

func TestCount_MatchesSearchLength(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	for _, filter := range []Filter{
		{"city": String("NYC")},
		{"city": String("Chicago")},
		{"city": String("Nowhere")},
		{"city": String("LA"), "seq": Int(2)},
	} {
		n, err := db.Count(ctx, filter)
		require.NoError(t, err)
		docs := drain(t, db.Search(ctx, filter, NoLimit, 0))
		assert.Equal(t, int(n), len(docs), "count/search mismatch for %v", filter)
	}
}

func TestSearch_TypedEquality(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Insert(ctx, Object{"v": Int(30)})
	require.NoError(t, err)
	_, err = db.Insert(ctx, Object{"v": String("30")})
	require.NoError(t, err)

	// Equality is on the decoded value, so type matters.
	asInt := drain(t, db.Search(ctx, Filter{"v": Int(30)}, NoLimit, 0))
	require.Len(t, asInt, 1)
	assert.True(t, document.Equal(asInt[0]["v"], Int(30)))

	asString := drain(t, db.Search(ctx, Filter{"v": String("30")}, NoLimit, 0))
	require.Len(t, asString, 1)
	assert.True(t, document.Equal(asString[0]["v"], String("30")))
}

func TestSearch_ConjunctionIsIntersection(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, doc := range []Object{
		{"a": Int(1), "b": Int(2)},
		{"a": Int(1), "b": Int(3)},
		{"a": Int(9), "b": Int(2)},
		{"a": Int(1), "b": Int(2), "c": Int(7)},
	} {
		_, err := db.Insert(ctx, doc)
		require.NoError(t, err)
	}

	both := drain(t, db.Search(ctx, Filter{"a": Int(1), "b": Int(2)}, NoLimit, 0))
	onlyA := drain(t, db.Search(ctx, Filter{"a": Int(1)}, NoLimit, 0))
	onlyB := drain(t, db.Search(ctx, Filter{"b": Int(2)}, NoLimit, 0))

	assert.Len(t, both, 2)
	assert.Len(t, onlyA, 3)
	assert.Len(t, onlyB, 3)
	for _, doc := range both {
		assert.True(t, containsDoc(onlyA, doc))
		assert.True(t, containsDoc(onlyB, doc))
	}
}

func TestSearch_MissingFieldMatchesNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	docs := drain(t, db.Search(ctx, Filter{"nope": String("x")}, NoLimit, 0))
	assert.Empty(t, docs)
}

func TestSearch_InvalidFiltersSurfaceLazily(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := firstErr(db.Search(ctx, Filter{}, NoLimit, 0))
	assert.True(t, IsInvalidFilter(err), "got %v", err)

	err = firstErr(db.Search(ctx, Filter{"no spaces allowed": Int(1)}, NoLimit, 0))
	assert.True(t, IsInvalidFieldPath(err), "got %v", err)
}

func TestAll_PaginationIsContiguousSlice(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for i := 0; i < 10; i++ {
		_, err := db.Insert(ctx, Object{"n": Int(int64(i))})
		require.NoError(t, err)
	}

	full := drain(t, db.All(ctx, NoLimit, 0))
	require.Len(t, full, 10)

	tests := []struct {
		limit, offset int
		wantFrom      int
		wantLen       int
	}{
		{3, 0, 0, 3},
		{3, 3, 3, 3},
		{NoLimit, 7, 7, 3},
		{5, 8, 8, 2},  // limit past the end clips
		{3, 50, 0, 0}, // offset beyond result size
		{0, 0, 0, 0},  // zero limit yields nothing
		{3, -4, 0, 3}, // negative offset clamps to zero
	}
	for _, tt := range tests {
		page := drain(t, db.All(ctx, tt.limit, tt.offset))
		require.Len(t, page, tt.wantLen, "limit=%d offset=%d", tt.limit, tt.offset)
		for i, doc := range page {
			assert.True(t, document.Equal(full[tt.wantFrom+i], doc),
				"limit=%d offset=%d: page[%d] is not full[%d]", tt.limit, tt.offset, i, tt.wantFrom+i)
		}
	}
}

func TestAll_StableAcrossRepeatedReads(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	first := drain(t, db.All(ctx, NoLimit, 0))
	second := drain(t, db.All(ctx, NoLimit, 0))
	require.Len(t, second, len(first))
	for i := range first {
		assert.True(t, document.Equal(first[i], second[i]))
	}
}

func TestSearchPattern_CaseSensitiveUnanchored(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Insert(ctx, Object{"name": String("Alice")})
	require.NoError(t, err)
	_, err = db.Insert(ctx, Object{"name": String("alice")})
	require.NoError(t, err)

	// Anchoring comes from the pattern, not the engine.
	upper := drain(t, db.SearchPattern(ctx, "name", "^A", NoLimit, 0))
	require.Len(t, upper, 1)
	assert.True(t, document.Equal(upper[0]["name"], String("Alice")))

	// Unanchored substring search matches anywhere.
	sub := drain(t, db.SearchPattern(ctx, "name", "lic", NoLimit, 0))
	assert.Len(t, sub, 2)

	// Case-sensitive: lowercase pattern misses "Alice".
	lower := drain(t, db.SearchPattern(ctx, "name", "^a", NoLimit, 0))
	require.Len(t, lower, 1)
	assert.True(t, document.Equal(lower[0]["name"], String("alice")))
}

func TestSearchPattern_NonStringValuesNeverMatch(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Insert(ctx, Object{"v": Int(42)})
	require.NoError(t, err)
	_, err = db.Insert(ctx, Object{"v": String("42")})
	require.NoError(t, err)
	_, err = db.Insert(ctx, Object{"other": String("42")})
	require.NoError(t, err)

	docs := drain(t, db.SearchPattern(ctx, "v", "4", NoLimit, 0))
	require.Len(t, docs, 1)
	assert.True(t, document.Equal(docs[0]["v"], String("42")))
}

func TestSearchPattern_MalformedPatternLazyError(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	_, err := db.Insert(ctx, Object{"name": String("Alice")})
	require.NoError(t, err)

	// The error kind surfaces on iteration, never as a silent empty result.
	seq := db.SearchPattern(ctx, "name", "([", NoLimit, 0)
	err = firstErr(seq)
	assert.True(t, IsInvalidPattern(err), "got %v", err)
}

func TestSearchPattern_DefaultPage(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for i := 0; i < 120; i++ {
		_, err := db.Insert(ctx, Object{"name": String("match-me")})
		require.NoError(t, err)
	}

	// Unscoped pattern search must not materialize the whole store.
	docs := drain(t, db.SearchPattern(ctx, "name", "match", NoLimit, 0))
	assert.Len(t, docs, 100)

	// An explicit limit is honored as given.
	docs = drain(t, db.SearchPattern(ctx, "name", "match", 110, 0))
	assert.Len(t, docs, 110)
}

func TestFindAny(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	docs := drain(t, db.FindAny(ctx, "city", []Value{String("LA"), String("Chicago")}))
	assert.Len(t, docs, 3)

	docs = drain(t, db.FindAny(ctx, "city", []Value{String("Nowhere")}))
	assert.Empty(t, docs)
}

func TestFindAny_EmptyValuesYieldsNothing(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	seedCityFixture(t, db)

	docs := drain(t, db.FindAny(ctx, "city", nil))
	assert.Empty(t, docs)
}

func TestFindAny_EmptyValuesSkipsStorage(t *testing.T) {
	// A closed handle would fail any operation that touches storage;
	// the short-circuit path must not.
	db, err := Open(Memory)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	for range db.FindAny(context.Background(), "city", nil) {
		t.Fatal("sequence should be empty")
	}
}

func TestFindAny_BadField(t *testing.T) {
	db := newTestDB(t)

	err := firstErr(db.FindAny(context.Background(), "1bad", []Value{Int(1)}))
	assert.True(t, IsInvalidFieldPath(err), "got %v", err)
}

func containsDoc(docs []Object, want Object) bool {
	for _, doc := range docs {
		if document.Equal(doc, want) {
			return true
		}
	}
	return false
}
