package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/m3rciful/vocabot/core/bootstrap"
	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/store"
)

// Importer is a seeder that loads one entry per line into an owner's dictionary.
// With Replace set the owner's existing entries are removed first.
type Importer struct {
	Owner   int64
	Source  io.Reader
	Replace bool

	Removed int64
	Saved   int
	Skipped []string
}

var _ bootstrap.Seeder = (*Importer)(nil)

// Seed implements bootstrap.Seeder.
func (im *Importer) Seed(ctx context.Context, db bootstrap.Storage) error {
	if im.Owner == 0 {
		return errors.New("import: owner id is required")
	}
	if im.Source == nil {
		return errors.New("import: nil source")
	}
	repo := store.New(db)

	if im.Replace {
		n, err := repo.DeleteAll(ctx, im.Owner)
		if err != nil {
			return fmt.Errorf("import: clear dictionary: %w", err)
		}
		im.Removed = n
	}

	sc := bufio.NewScanner(im.Source)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		p, ok := entry.Parse(line)
		if !ok {
			im.Skipped = append(im.Skipped, line)
			continue
		}
		if _, err := repo.Upsert(ctx, im.Owner, p.NewEntry()); err != nil {
			if errors.Is(err, entry.ErrValidation) {
				im.Skipped = append(im.Skipped, line)
				continue
			}
			return fmt.Errorf("import: %w", err)
		}
		im.Saved++
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("import: read source: %w", err)
	}

	logger.SEED.Info("import summary",
		slog.String("event", "summary"),
		slog.Int64("owner_id", im.Owner),
		slog.Int64("removed", im.Removed),
		slog.Int("saved", im.Saved),
		slog.Int("skipped", len(im.Skipped)),
	)
	return nil
}
