package bootstrap

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	coredatabase "github.com/m3rciful/vocabot/core/database"
)

func noLogger(*coreconfig.Config) error { return nil }

func sqliteOptions(t *testing.T) Options {
	t.Helper()
	return Options{
		Config:   &coreconfig.Config{},
		Database: coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "boot.db")},
		Migrations: coredatabase.Migrations{
			FS: fstest.MapFS{
				"m/sqlite/0001_notes.up.sql":   {Data: []byte("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT);")},
				"m/sqlite/0001_notes.down.sql": {Data: []byte("DROP TABLE notes;")},
			},
			Root: "m",
		},
		LoggerInit: noLogger,
	}
}

func TestRunMigratesAndSeeds(t *testing.T) {
	opts := sqliteOptions(t)
	seeded := false
	opts.Modules.Seeders = []Seeder{
		SeederFunc(func(ctx context.Context, db Storage) error {
			_, err := db.ExecContext(ctx, "INSERT INTO notes (body) VALUES ('hi')")
			seeded = err == nil
			return err
		}),
	}

	res, err := Run(context.Background(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.DB.Close() })
	assert.True(t, seeded)

	var n int
	require.NoError(t, res.DB.Get(&n, "SELECT COUNT(*) FROM notes"))
	assert.Equal(t, 1, n)
}

func TestRunStopsOnSeederError(t *testing.T) {
	opts := sqliteOptions(t)
	boom := errors.New("boom")
	opts.Modules.Seeders = []Seeder{SeederFunc(func(context.Context, Storage) error { return boom })}

	_, err := Run(context.Background(), opts)
	assert.ErrorIs(t, err, boom)
}

func TestRunRequiresConfig(t *testing.T) {
	_, err := Run(context.Background(), Options{})
	assert.Error(t, err)
}
