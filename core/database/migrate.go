package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/m3rciful/vocabot/core/logger"
)

// readyTimeout bounds how long RunMigrations waits for a postgres server.
const readyTimeout = 30 * time.Second

// Migrations locates the migration files for every supported driver inside fsys.
// Files for a driver live in <Root>/<driver>/NNNN_name.{up,down}.sql.
type Migrations struct {
	FS   fs.FS
	Root string
}

func (m Migrations) dir(driver string) string {
	return path.Join(m.Root, driver)
}

// report describes one RunMigrations call for the summary line.
type report struct {
	from, to uint
	files    []string
	applied  []string
	took     time.Duration
}

func (r report) attrs() []slog.Attr {
	return []slog.Attr{
		slog.Uint64("from_ver", uint64(r.from)),
		slog.Uint64("to_ver", uint64(r.to)),
		slog.Int("files", len(r.applied)),
		slog.Duration("duration", r.took),
	}
}

// RunMigrations applies all pending up migrations for the configured driver.
func RunMigrations(cfg Config, src Migrations) error {
	ctx := context.Background()
	if err := cfg.Normalize(); err != nil {
		return fmt.Errorf("db config: %w", err)
	}
	if src.FS == nil {
		return errors.New("migrations: nil filesystem")
	}

	url := cfg.MigrateURL()
	if cfg.Driver == DriverPostgres {
		wctx, cancel := context.WithTimeout(ctx, readyTimeout)
		err := waitReady(wctx, DriverPostgres, cfg.DSN())
		cancel()
		if err != nil {
			return migrateFailed(ctx, "db.wait", fmt.Errorf("database not ready: %w", err))
		}
	}

	dir := src.dir(cfg.Driver)
	rep := report{files: listMigrationFiles(src.FS, dir)}
	logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "migrate.resolve",
		append([]slog.Attr{
			slog.String("driver", cfg.Driver),
			slog.String("path", dir),
		}, filesAttrs(rep.files)...)...,
	)

	source, err := iofs.New(src.FS, dir)
	if err != nil {
		return migrateFailed(ctx, "migrate.source", fmt.Errorf("open migrations source: %w", err))
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return migrateFailed(ctx, "migrate.init", fmt.Errorf("initialize migrations: %w", err))
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if closeErr := errors.Join(srcErr, dbErr); closeErr != nil {
			logger.LogEvent(ctx, logger.MIG, slog.LevelWarn, "migrate.close",
				slog.String("status", "fail"),
				slog.String("err", closeErr.Error()),
			)
		}
	}()

	rep.from, _, _ = m.Version()
	start := time.Now()
	upErr := m.Up()
	rep.took = logger.RoundMS(time.Since(start))

	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.LogEvent(ctx, logger.MIG, slog.LevelError, "migrate.apply",
			slog.String("status", "fail"),
			slog.String("err", upErr.Error()),
			slog.Duration("duration", rep.took),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}

	rep.to, _, _ = m.Version()
	rep.applied = selectApplied(rep.files, uint64(rep.from), uint64(rep.to))
	if len(rep.applied) > 0 {
		logger.LogEvent(ctx, logger.MIG, slog.LevelDebug, "migrate.applied", filesAttrs(rep.applied)...)
	}
	logger.LogEvent(ctx, logger.MIG, slog.LevelInfo, "migrate.summary",
		append([]slog.Attr{slog.String("status", "ok")}, rep.attrs()...)...,
	)
	return nil
}

func migrateFailed(ctx context.Context, event string, err error) error {
	logger.LogEvent(ctx, logger.MIG, slog.LevelError, event,
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	return err
}

// filesAttrs summarizes a file list without flooding the log line.
func filesAttrs(files []string) []slog.Attr {
	attrs := []slog.Attr{slog.Int("files_total", len(files))}
	preview, truncated := logger.SummarizeStrings(files, 6)
	if preview != "" {
		attrs = append(attrs, slog.String("files_preview", preview))
	}
	if truncated {
		attrs = append(attrs, slog.Bool("files_truncated", true))
	}
	return attrs
}

func listMigrationFiles(fsys fs.FS, dir string) []string {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// parseVersion reads the numeric prefix of a migration file name.
func parseVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// selectApplied returns the files whose version lies in (from, to].
func selectApplied(files []string, from, to uint64) []string {
	if to <= from {
		return nil
	}
	var out []string
	for _, f := range files {
		if v := parseVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
