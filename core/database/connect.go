package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/m3rciful/vocabot/core/logger"
)

const (
	connectTimeout = 5 * time.Second
	readyPoll      = 2 * time.Second
)

// Connect opens the database, verifies it answers and sizes the pool.
func Connect(cfg Config) (*sqlx.DB, error) {
	if err := cfg.Normalize(); err != nil {
		return nil, fmt.Errorf("db config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	base := []slog.Attr{
		slog.String("driver", cfg.Driver),
		slog.String("db", target(cfg)),
	}
	if cfg.Driver == DriverPostgres {
		base = append(base, slog.String("host", cfg.Host), slog.String("port", cfg.Port))
	}

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, cfg.Driver, cfg.DSN())
	took := logger.RoundMS(time.Since(start))
	if err != nil {
		logger.LogEvent(ctx, logger.DB, slog.LevelError, "db.connect",
			append(base,
				slog.String("status", "fail"),
				slog.Duration("duration", took),
				slog.String("err", err.Error()),
			)...,
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.LogEvent(ctx, logger.DB, slog.LevelInfo, "db.connect",
		append(base,
			slog.String("status", "ok"),
			slog.Int("pool_open", cfg.MaxConnections),
			slog.Duration("duration", took),
		)...,
	)
	return db, nil
}

func target(cfg Config) string {
	if cfg.Driver == DriverSQLite {
		return cfg.Path
	}
	return cfg.Name
}

// waitReady pings the server every readyPoll until it answers or ctx ends.
func waitReady(ctx context.Context, driver, dsn string) error {
	var lastErr error
	for attempt := 1; ; attempt++ {
		db, err := sqlx.Open(driver, dsn)
		if err == nil {
			err = db.PingContext(ctx)
			_ = db.Close()
			if err == nil {
				return nil
			}
		}
		lastErr = err
		logger.LogEvent(ctx, logger.DB, slog.LevelDebug, "db.wait",
			slog.String("status", "retry"),
			slog.Int("attempt", attempt),
			slog.String("err", err.Error()),
		)

		t := time.NewTimer(readyPoll)
		select {
		case <-ctx.Done():
			t.Stop()
			return fmt.Errorf("gave up after %d attempts: %w", attempt, lastErr)
		case <-t.C:
		}
	}
}
