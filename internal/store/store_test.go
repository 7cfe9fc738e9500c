package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coredatabase "github.com/m3rciful/vocabot/core/database"
	"github.com/m3rciful/vocabot/internal/entry"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	cfg := coredatabase.Config{
		Driver: coredatabase.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "vocab.db"),
	}
	require.NoError(t, coredatabase.RunMigrations(cfg, Migrations()))

	db, err := coredatabase.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func ptr(s string) *string { return &s }

func TestPlaceholdersFollowDriver(t *testing.T) {
	pg, err := sqlx.Open(coredatabase.DriverPostgres, "host=localhost dbname=vocab sslmode=disable")
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Close() })

	query, _, err := New(pg).sb.Select("id").From("entries").Where(sq.Eq{"owner_id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM entries WHERE owner_id = $1", query)

	query, _, err = newTestRepo(t).sb.Select("id").From("entries").Where(sq.Eq{"owner_id": 1}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM entries WHERE owner_id = ?", query)
}

func TestUpsertOverwritesByNormalizedWord(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const owner = int64(100)

	first, err := repo.Upsert(ctx, owner, entry.NewEntry{Word: "cat", Translation: "кот", Example: ptr("a cat")})
	require.NoError(t, err)

	second, err := repo.Upsert(ctx, owner, entry.NewEntry{Word: "Cat", Translation: "кошка"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	n, err := repo.Count(ctx, owner, entry.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := repo.Get(ctx, owner, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Cat", got.Word)
	assert.Equal(t, "cat", got.WordNorm)
	assert.Equal(t, "кошка", got.Translation)
	assert.Nil(t, got.Example)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestOwnersArePartitioned(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, 1, entry.NewEntry{Word: "dog", Translation: "собака"})
	require.NoError(t, err)
	e2, err := repo.Upsert(ctx, 2, entry.NewEntry{Word: "dog", Translation: "пёс"})
	require.NoError(t, err)

	n, err := repo.Count(ctx, 1, entry.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = repo.Get(ctx, 1, e2.ID)
	assert.ErrorIs(t, err, entry.ErrNotFound)

	deleted, err := repo.DeleteByID(ctx, 1, e2.ID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestListFiltersAndOrdering(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const owner = int64(7)

	for _, line := range []string{"banana — банан", "Apple — яблоко", "avocado — авокадо", "cherry — вишня", "100% — полностью"} {
		p, ok := entry.Parse(line)
		require.True(t, ok)
		_, err := repo.Upsert(ctx, owner, p.NewEntry())
		require.NoError(t, err)
	}

	all, err := repo.List(ctx, owner, entry.Filter{}, 10, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)
	assert.Equal(t, []string{"100%", "Apple", "avocado", "banana", "cherry"},
		[]string{all[0].Word, all[1].Word, all[2].Word, all[3].Word, all[4].Word})

	page, err := repo.List(ctx, owner, entry.Filter{}, 2, 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "avocado", page[0].Word)

	n, err := repo.Count(ctx, owner, entry.Filter{Letter: "A"})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	byLetter, err := repo.List(ctx, owner, entry.Filter{Letter: "a"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, byLetter, 2)

	// Search matches either side, case-insensitively.
	n, err = repo.Count(ctx, owner, entry.Filter{Query: "ЯБЛ"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.Count(ctx, owner, entry.Filter{Query: "an"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// Wildcards in the query are literal.
	n, err = repo.Count(ctx, owner, entry.Filter{Query: "%"})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	found, err := repo.Search(ctx, owner, "a", 2)
	require.NoError(t, err)
	assert.Len(t, found, 2)
}

func TestUpdatePartialAndConflict(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const owner = int64(5)

	cat, err := repo.Upsert(ctx, owner, entry.NewEntry{Word: "cat", Translation: "кот", Example: ptr("the cat"), Tag: ptr("animals")})
	require.NoError(t, err)
	_, err = repo.Upsert(ctx, owner, entry.NewEntry{Word: "dog", Translation: "собака"})
	require.NoError(t, err)

	patch, err := entry.PatchFor(entry.FieldExample, "-")
	require.NoError(t, err)
	n, err := repo.Update(ctx, owner, cat.ID, patch)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := repo.Get(ctx, owner, cat.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Example)
	require.NotNil(t, got.Tag)
	assert.Equal(t, "animals", *got.Tag)
	assert.Equal(t, "кот", got.Translation)

	_, err = repo.Update(ctx, owner, cat.ID, entry.Patch{Word: ptr("DOG")})
	assert.ErrorIs(t, err, entry.ErrAlreadyExists)

	got, err = repo.Get(ctx, owner, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "cat", got.Word)

	n, err = repo.Update(ctx, owner, cat.ID, entry.Patch{Translation: ptr("Кошка")})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	got, err = repo.Get(ctx, owner, cat.ID)
	require.NoError(t, err)
	assert.Equal(t, "кошка", got.TranslationNorm)

	n, err = repo.Update(ctx, owner, 9999, entry.Patch{Translation: ptr("x")})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.Update(ctx, owner, cat.ID, entry.Patch{})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteAndRandom(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	const owner = int64(9)

	_, err := repo.Random(ctx, owner)
	assert.ErrorIs(t, err, entry.ErrNotFound)

	for i := 0; i < 3; i++ {
		_, err := repo.Upsert(ctx, owner, entry.NewEntry{Word: fmt.Sprintf("word%d", i), Translation: "t"})
		require.NoError(t, err)
	}

	e, err := repo.Random(ctx, owner)
	require.NoError(t, err)
	assert.Equal(t, owner, e.OwnerID)

	n, err := repo.DeleteByWord(ctx, owner, "  WORD1 ")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	n, err = repo.DeleteByWord(ctx, owner, "word1")
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = repo.DeleteAll(ctx, owner)
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)
}

func TestUpsertRejectsBlankFields(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.Upsert(context.Background(), 1, entry.NewEntry{Word: " ", Translation: "x"})
	assert.ErrorIs(t, err, entry.ErrValidation)
}
