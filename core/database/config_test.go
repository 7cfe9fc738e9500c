package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizePostgresDefaults(t *testing.T) {
	cfg := Config{Host: "db", Name: "vocab", User: "bot", Password: "secret"}
	require.NoError(t, cfg.Normalize())

	assert.Equal(t, DriverPostgres, cfg.Driver)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
	assert.Equal(t, 10, cfg.MaxConnections)
	assert.Equal(t, "user=bot password=secret host=db port=5432 dbname=vocab sslmode=disable", cfg.DSN())
	assert.Equal(t, "postgres://bot:secret@db:5432/vocab?sslmode=disable", cfg.MigrateURL())
}

func TestNormalizeRejectsIncompletePostgres(t *testing.T) {
	cfg := Config{Driver: "pg", Name: "vocab"}
	assert.Error(t, cfg.Normalize())

	cfg = Config{Driver: "postgres", Host: "db"}
	assert.Error(t, cfg.Normalize())
}

func TestNormalizeSQLite(t *testing.T) {
	cfg := Config{Driver: " SQLite3 ", MaxConnections: 8}
	require.NoError(t, cfg.Normalize())

	assert.Equal(t, DriverSQLite, cfg.Driver)
	assert.Equal(t, "vocab.db", cfg.Path)
	assert.Equal(t, 1, cfg.MaxConnections)
	assert.Equal(t, "sqlite://vocab.db", cfg.MigrateURL())
	assert.Contains(t, cfg.DSN(), "vocab.db?_pragma=busy_timeout(5000)")
}

func TestNormalizeUnknownDriver(t *testing.T) {
	cfg := Config{Driver: "mysql"}
	assert.Error(t, cfg.Normalize())
}

func TestSelectApplied(t *testing.T) {
	files := []string{"0001_init.up.sql", "0002_tags.up.sql", "0003_index.up.sql"}

	assert.Equal(t, files, selectApplied(files, 0, 3))
	assert.Equal(t, []string{"0002_tags.up.sql", "0003_index.up.sql"}, selectApplied(files, 1, 3))
	assert.Nil(t, selectApplied(files, 3, 3))
	assert.Nil(t, selectApplied(files, 3, 1))
}

func TestListMigrationFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/sqlite/0002_b.up.sql":   {Data: []byte("--")},
		"m/sqlite/0001_a.up.sql":   {Data: []byte("--")},
		"m/sqlite/0001_a.down.sql": {Data: []byte("--")},
		"m/postgres/0001_a.up.sql": {Data: []byte("--")},
	}
	src := Migrations{FS: fsys, Root: "m"}

	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, listMigrationFiles(fsys, src.dir(DriverSQLite)))
	assert.Nil(t, listMigrationFiles(fsys, "missing"))
	assert.Equal(t, uint64(2), parseVersion("0002_b.up.sql"))
}
