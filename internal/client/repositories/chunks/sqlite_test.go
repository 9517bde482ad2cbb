package chunks

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophjournal/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE cache_chunks (
    id              TEXT PRIMARY KEY,
    user_id         TEXT    NOT NULL,
    chunk_index     INTEGER NOT NULL,
    total_chunks    INTEGER NOT NULL,
    payload         BLOB    NOT NULL,
    original_size   INTEGER NOT NULL,
    compressed_size INTEGER NOT NULL,
    created_at      INTEGER NOT NULL
);`

func newRepo(t *testing.T) (*SQLiteRepository, *sql.DB) {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(schema)
	require.NoError(t, err)
	return NewSQLiteRepository(db), db
}

func chunk(user string, idx, total int) *models.Chunk {
	return &models.Chunk{
		ID:             fmt.Sprintf("%s-%d", user, idx),
		UserID:         user,
		ChunkIndex:     idx,
		TotalChunks:    total,
		Payload:        []byte{byte(idx), 0xFF},
		OriginalSize:   10,
		CompressedSize: 2,
		Timestamp:      time.UnixMilli(1_700_000_000_123).UTC(),
	}
}

func TestInsertAndList_OrderedByIndex(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	for _, idx := range []int{2, 0, 1} {
		require.NoError(t, r.Insert(ctx, chunk("alice", idx, 3)))
	}
	require.NoError(t, r.Insert(ctx, chunk("bob", 0, 1)))

	got, err := r.List(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, i, c.ChunkIndex)
		assert.Equal(t, "alice", c.UserID)
		assert.Equal(t, 3, c.TotalChunks)
		assert.Equal(t, []byte{byte(i), 0xFF}, c.Payload)
	}
	assert.Equal(t, chunk("alice", 0, 3).Timestamp, got[0].Timestamp)
}

func TestList_UnknownUserIsEmpty(t *testing.T) {
	r, _ := newRepo(t)

	got, err := r.List(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestInsert_SameIDReplaces(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	c := chunk("alice", 0, 1)
	require.NoError(t, r.Insert(ctx, c))
	c.Payload = []byte("new")
	require.NoError(t, r.Insert(ctx, c))

	n, err := r.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := r.List(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got[0].Payload)
}

func TestClear_OnlyThatUser(t *testing.T) {
	r, _ := newRepo(t)
	ctx := context.Background()

	require.NoError(t, r.Insert(ctx, chunk("alice", 0, 2)))
	require.NoError(t, r.Insert(ctx, chunk("alice", 1, 2)))
	require.NoError(t, r.Insert(ctx, chunk("bob", 0, 1)))

	removed, err := r.Clear(ctx, "alice")
	require.NoError(t, err)
	assert.EqualValues(t, 2, removed)

	n, err := r.Count(ctx, "alice")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = r.Count(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestErrorsAreWrapped(t *testing.T) {
	r, db := newRepo(t)
	ctx := context.Background()
	require.NoError(t, db.Close())

	require.ErrorContains(t, r.Insert(ctx, chunk("a", 4, 5)), "failed to insert chunk 4")

	_, err := r.List(ctx, "a")
	require.ErrorContains(t, err, "failed to select chunks")

	_, err = r.Clear(ctx, "a")
	require.ErrorContains(t, err, "failed to clear chunks")

	_, err = r.Count(ctx, "a")
	require.ErrorContains(t, err, "failed to count chunks")
}
