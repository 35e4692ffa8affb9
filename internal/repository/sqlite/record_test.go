package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/creamcroissant/fieldconf/internal/migrations"
	"github.com/creamcroissant/fieldconf/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "records.db") + "?_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, migrations.Up(context.Background(), db))
	return NewStore(db)
}

func TestRecordSaveAndFind(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Records()
	repo.(*recordRepo).now = func() time.Time { return time.Unix(1700000000, 0) }

	rec := &repository.StoredRecord{
		Model:     "post",
		Values:    map[string]any{"title": "Hello", "views": 3},
		Relations: map[string][]string{"tags": {"7", "3"}},
	}
	require.NoError(t, repo.Save(ctx, rec))
	require.NotEmpty(t, rec.ID)
	assert.EqualValues(t, 1700000000, rec.UpdatedAt)

	got, err := repo.Find(ctx, "post", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Values["title"])
	assert.Equal(t, 3.0, got.Values["views"])
	assert.Equal(t, []string{"7", "3"}, got.Relations["tags"])

	rec.Values["title"] = "Updated"
	rec.Relations = map[string][]string{"tags": {"9"}}
	require.NoError(t, repo.Save(ctx, rec))

	got, err = repo.Find(ctx, "post", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", got.Values["title"])
	assert.Equal(t, []string{"9"}, got.Relations["tags"])

	n, err := repo.Count(ctx, "post")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestRecordErrors(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Records()

	_, err := repo.Find(ctx, "post", "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	assert.ErrorIs(t, repo.Save(ctx, &repository.StoredRecord{}), repository.ErrInvalidRecord)
	assert.ErrorIs(t, repo.Delete(ctx, "post", "missing"), repository.ErrNotFound)
}

func TestRecordListAndDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestStore(t).Records()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, repo.Save(ctx, &repository.StoredRecord{Model: "tag", ID: id, Values: map[string]any{"name": id}}))
	}
	require.NoError(t, repo.Save(ctx, &repository.StoredRecord{Model: "post", ID: "p"}))

	all, err := repo.List(ctx, repository.RecordFilter{Model: "tag"})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	page, err := repo.List(ctx, repository.RecordFilter{Model: "tag", Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Len(t, page, 1)

	require.NoError(t, repo.Delete(ctx, "tag", "a"))
	n, err := repo.Count(ctx, "tag")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}
