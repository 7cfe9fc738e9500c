// Package bootstrap prepares the infrastructure a bot needs before it starts
// serving: logging, the database connection, schema migrations and seed data.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/vocabot/core/config"
	coredatabase "github.com/m3rciful/vocabot/core/database"
	"github.com/m3rciful/vocabot/core/logger"
)

// Options control the bootstrap pipeline. Nil funcs select the core defaults.
type Options struct {
	Config     *coreconfig.Config
	Database   coredatabase.Config
	Migrations coredatabase.Migrations
	Modules    Modules

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config, coredatabase.Migrations) error
}

func (o *Options) defaults() {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
}

// Result exposes infrastructure initialized by Run. The caller owns DB.
type Result struct {
	DB *sqlx.DB
}

// Run initializes the logger, migrates and connects to the database and runs
// the seeders. Migrations go first so a fresh SQLite file is created with its schema.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config")
	}
	opts.defaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger: %w", err)
	}
	if err := opts.Migrate(opts.Database, opts.Migrations); err != nil {
		return nil, fmt.Errorf("bootstrap: migrations: %w", err)
	}
	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database: %w", err)
	}
	if err := runSeeders(ctx, opts.Modules.Seeders, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: seeding: %w", err)
	}
	return &Result{DB: db}, nil
}

func runSeeders(ctx context.Context, seeders []Seeder, storage Storage) error {
	for i, s := range seeders {
		if s == nil {
			continue
		}
		start := time.Now()
		err := s.Seed(ctx, storage)
		attrs := []slog.Attr{
			slog.Int("seeder", i),
			slog.String("type", fmt.Sprintf("%T", s)),
			slog.Duration("duration", logger.Took(start)),
		}
		if err != nil {
			logger.LogEvent(ctx, logger.SEED, slog.LevelError, "db.seed",
				append(attrs, slog.String("status", "fail"), slog.String("err", err.Error()))...)
			return err
		}
		logger.LogEvent(ctx, logger.SEED, slog.LevelInfo, "db.seed",
			append(attrs, slog.String("status", "ok"))...)
	}
	return nil
}
