// Package store persists vocabulary entries in PostgreSQL or SQLite.
package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	coredatabase "github.com/m3rciful/vocabot/core/database"
	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/entry"
)

//go:embed migrations
var migrationsFS embed.FS

// Migrations exposes the embedded schema for every supported driver.
func Migrations() coredatabase.Migrations {
	return coredatabase.Migrations{FS: migrationsFS, Root: "migrations"}
}

const table = "entries"

var columns = []string{
	"id", "owner_id", "word", "word_norm", "translation", "translation_norm",
	"example", "tag", "created_at",
}

// Repository implements the record store over a sqlx connection pool.
type Repository struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	now func() time.Time
}

// New wraps db. The placeholder style follows the driver the pool was opened with.
func New(db *sqlx.DB) *Repository {
	var ph sq.PlaceholderFormat = sq.Question
	if db.DriverName() == coredatabase.DriverPostgres {
		ph = sq.Dollar
	}
	return &Repository{
		db:  db,
		sb:  sq.StatementBuilder.PlaceholderFormat(ph),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Upsert inserts an entry or overwrites the one with the same normalized word.
func (r *Repository) Upsert(ctx context.Context, owner int64, in entry.NewEntry) (entry.Entry, error) {
	word := strings.TrimSpace(in.Word)
	translation := strings.TrimSpace(in.Translation)
	if word == "" || translation == "" {
		return entry.Entry{}, fmt.Errorf("%w: word and translation are required", entry.ErrValidation)
	}

	query, args, err := r.sb.Insert(table).
		Columns("owner_id", "word", "word_norm", "translation", "translation_norm", "example", "tag", "created_at").
		Values(owner, word, entry.Normalize(word), translation, entry.Normalize(translation),
			optional(in.Example), optional(in.Tag), r.now()).
		Suffix(`ON CONFLICT (owner_id, word_norm) DO UPDATE SET
			word = excluded.word,
			translation = excluded.translation,
			translation_norm = excluded.translation_norm,
			example = excluded.example,
			tag = excluded.tag
		RETURNING ` + strings.Join(columns, ", ")).
		ToSql()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("build upsert: %w", err)
	}

	start := time.Now()
	var e entry.Entry
	err = r.db.GetContext(ctx, &e, query, args...)
	r.trace(ctx, "upsert", start, err)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("upsert entry: %w", mapError(err))
	}
	return e, nil
}

// DeleteByWord removes the entry whose normalized word matches word.
func (r *Repository) DeleteByWord(ctx context.Context, owner int64, word string) (int64, error) {
	return r.delete(ctx, "delete_by_word", sq.Eq{"owner_id": owner, "word_norm": entry.Normalize(word)})
}

// DeleteByID removes a single entry by id.
func (r *Repository) DeleteByID(ctx context.Context, owner, id int64) (int64, error) {
	return r.delete(ctx, "delete_by_id", sq.Eq{"owner_id": owner, "id": id})
}

// DeleteAll wipes the owner's dictionary.
func (r *Repository) DeleteAll(ctx context.Context, owner int64) (int64, error) {
	return r.delete(ctx, "delete_all", sq.Eq{"owner_id": owner})
}

func (r *Repository) delete(ctx context.Context, op string, where sq.Eq) (int64, error) {
	query, args, err := r.sb.Delete(table).Where(where).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	return r.exec(ctx, op, query, args)
}

// Count returns the number of the owner's entries matching f.
func (r *Repository) Count(ctx context.Context, owner int64, f entry.Filter) (int, error) {
	query, args, err := r.sb.Select("COUNT(*)").From(table).Where(where(owner, f)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	start := time.Now()
	var n int
	err = r.db.GetContext(ctx, &n, query, args...)
	r.trace(ctx, "count", start, err)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", mapError(err))
	}
	return n, nil
}

// List returns one page of matching entries ordered by normalized word.
func (r *Repository) List(ctx context.Context, owner int64, f entry.Filter, limit, offset int) ([]entry.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	if offset < 0 {
		offset = 0
	}
	query, args, err := r.sb.Select(columns...).From(table).
		Where(where(owner, f)).
		OrderBy("word_norm ASC", "id ASC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list: %w", err)
	}
	start := time.Now()
	var out []entry.Entry
	err = r.db.SelectContext(ctx, &out, query, args...)
	r.trace(ctx, "list", start, err)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", mapError(err))
	}
	return out, nil
}

// Search returns up to limit entries whose word or translation contains query.
func (r *Repository) Search(ctx context.Context, owner int64, query string, limit int) ([]entry.Entry, error) {
	return r.List(ctx, owner, entry.Filter{Query: query}, limit, 0)
}

// Random picks one of the owner's entries uniformly at random.
func (r *Repository) Random(ctx context.Context, owner int64) (entry.Entry, error) {
	query, args, err := r.sb.Select(columns...).From(table).
		Where(sq.Eq{"owner_id": owner}).
		OrderBy("RANDOM()").
		Limit(1).
		ToSql()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("build random: %w", err)
	}
	return r.getOne(ctx, "random", query, args)
}

// Get loads a single entry by id.
func (r *Repository) Get(ctx context.Context, owner, id int64) (entry.Entry, error) {
	query, args, err := r.sb.Select(columns...).From(table).
		Where(sq.Eq{"owner_id": owner, "id": id}).
		ToSql()
	if err != nil {
		return entry.Entry{}, fmt.Errorf("build get: %w", err)
	}
	return r.getOne(ctx, "get", query, args)
}

// Update applies a partial update. A word change that collides with another
// entry of the same owner fails with entry.ErrAlreadyExists.
func (r *Repository) Update(ctx context.Context, owner, id int64, p entry.Patch) (int64, error) {
	if p.Empty() {
		return 0, nil
	}
	set := map[string]any{}
	if p.Word != nil {
		w := strings.TrimSpace(*p.Word)
		set["word"] = w
		set["word_norm"] = entry.Normalize(w)
	}
	if p.Translation != nil {
		t := strings.TrimSpace(*p.Translation)
		set["translation"] = t
		set["translation_norm"] = entry.Normalize(t)
	}
	if p.Example != nil {
		set["example"] = optional(p.Example)
	}
	if p.Tag != nil {
		set["tag"] = optional(p.Tag)
	}

	query, args, err := r.sb.Update(table).
		SetMap(set).
		Where(sq.Eq{"owner_id": owner, "id": id}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build update: %w", err)
	}
	return r.exec(ctx, "update", query, args)
}

func (r *Repository) getOne(ctx context.Context, op, query string, args []any) (entry.Entry, error) {
	start := time.Now()
	var e entry.Entry
	err := r.db.GetContext(ctx, &e, query, args...)
	r.trace(ctx, op, start, err)
	if err != nil {
		return entry.Entry{}, fmt.Errorf("%s entry: %w", op, mapError(err))
	}
	return e, nil
}

func (r *Repository) exec(ctx context.Context, op, query string, args []any) (int64, error) {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, query, args...)
	r.trace(ctx, op, start, err)
	if err != nil {
		return 0, fmt.Errorf("%s entry: %w", op, mapError(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s rows affected: %w", op, err)
	}
	return n, nil
}

func (r *Repository) trace(ctx context.Context, op string, start time.Time, err error) {
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		logger.LogEvent(ctx, logger.SVCEntries, slog.LevelWarn, "store.fail",
			slog.String("op", op),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
		)
		return
	}
	if logger.ShouldSampleDebug() {
		logger.LogEvent(ctx, logger.SVCEntries, slog.LevelDebug, "store.query",
			slog.String("op", op),
			slog.String("status", "ok"),
			slog.Duration("duration", logger.Took(start)),
		)
	}
}

func where(owner int64, f entry.Filter) sq.And {
	conds := sq.And{sq.Eq{"owner_id": owner}}
	if f.Letter != "" {
		conds = append(conds, sq.Expr("substr(word_norm, 1, 1) = ?", strings.ToLower(f.Letter)))
	}
	if q := entry.Normalize(f.Query); q != "" {
		pattern := "%" + escapeLike(q) + "%"
		conds = append(conds, sq.Or{
			sq.Expr(`word_norm LIKE ? ESCAPE '\'`, pattern),
			sq.Expr(`translation_norm LIKE ? ESCAPE '\'`, pattern),
		})
	}
	return conds
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

// optional maps a missing or blank optional field to SQL NULL.
func optional(s *string) any {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return v
}

// mapError converts driver errors into entry sentinels.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return entry.ErrNotFound
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", entry.ErrAlreadyExists, pqErr.Message)
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			(code&0xff == sqlite3.SQLITE_CONSTRAINT && strings.Contains(liteErr.Error(), "UNIQUE")) {
			return fmt.Errorf("%w: %s", entry.ErrAlreadyExists, liteErr.Error())
		}
	}
	return err
}
