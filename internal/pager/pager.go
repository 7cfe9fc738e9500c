// Package pager renders paged dictionary views: the whole list, one letter, or a search.
package pager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/internal/callback"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/render"
)

// DefaultPageSize is the number of entries per page.
const DefaultPageSize = 15

// ErrSearchExpired is returned when a search token is no longer known.
var ErrSearchExpired = errors.New("search expired")

// Pages returns max(1, ceil(total/size)).
func Pages(total, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if total <= 0 {
		return 1
	}
	return (total + size - 1) / size
}

// Clamp moves page into [0, pages-1].
func Clamp(page, pages int) int {
	if pages < 1 {
		pages = 1
	}
	if page < 0 {
		return 0
	}
	if page > pages-1 {
		return pages - 1
	}
	return page
}

// Offset is the first row index of page.
func Offset(page, size int) int {
	if page < 0 {
		return 0
	}
	return page * size
}

// Lister is the part of the record store the controller reads from.
type Lister interface {
	Count(ctx context.Context, owner int64, f entry.Filter) (int, error)
	List(ctx context.Context, owner int64, f entry.Filter, limit, offset int) ([]entry.Entry, error)
}

// Tokens maps search tokens to queries.
type Tokens interface {
	Issue(owner int64, query string) string
	Resolve(owner int64, token string) (string, bool)
}

// Controller renders paged views. It is stateless apart from the token cache.
type Controller struct {
	store    Lister
	tokens   Tokens
	pageSize int
}

// NewController builds a controller. A non-positive pageSize selects DefaultPageSize.
func NewController(store Lister, tokens Tokens, pageSize int) *Controller {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Controller{store: store, tokens: tokens, pageSize: pageSize}
}

// PageSize reports the configured page size.
func (c *Controller) PageSize() int { return c.pageSize }

// RenderAll renders a page of the whole dictionary.
func (c *Controller) RenderAll(ctx context.Context, owner int64, page int) (render.View, error) {
	return c.render(ctx, owner, page, entry.Filter{}, render.TitleAll,
		func(p int) callback.Action { return callback.ListAll{Page: p} }, true)
}

// RenderLetter renders a page of entries starting with letter.
func (c *Controller) RenderLetter(ctx context.Context, owner int64, letter string, page int) (render.View, error) {
	l, ok := entry.ParseLetter(letter)
	if !ok {
		return render.View{}, fmt.Errorf("%w: letter %q", entry.ErrValidation, letter)
	}
	return c.render(ctx, owner, page, entry.Filter{Letter: l},
		func(total int) string { return render.TitleLetter(l, total) },
		func(p int) callback.Action { return callback.ListLetter{Letter: l, Page: p} }, true)
}

// RenderSearch renders a page of a search remembered under token.
// An unknown token yields ErrSearchExpired without touching the store.
func (c *Controller) RenderSearch(ctx context.Context, owner int64, token string, page int) (render.View, error) {
	query, ok := c.tokens.Resolve(owner, token)
	if !ok {
		logger.LogEvent(ctx, logger.SVCSearch, slog.LevelInfo, "token.miss",
			slog.String("status", "skip"),
			slog.String("cache", "miss"),
			slog.String("token", token),
		)
		return render.View{}, ErrSearchExpired
	}
	return c.renderQuery(ctx, owner, token, query, page)
}

// StartSearch remembers query under a fresh token and renders its first page.
func (c *Controller) StartSearch(ctx context.Context, owner int64, query string) (render.View, error) {
	token := c.tokens.Issue(owner, query)
	return c.renderQuery(ctx, owner, token, query, 0)
}

func (c *Controller) renderQuery(ctx context.Context, owner int64, token, query string, page int) (render.View, error) {
	return c.render(ctx, owner, page, entry.Filter{Query: query},
		func(total int) string { return render.TitleSearch(query, total) },
		func(p int) callback.Action { return callback.Search{Token: token, Page: p} }, false)
}

func (c *Controller) render(
	ctx context.Context,
	owner int64,
	page int,
	f entry.Filter,
	title func(total int) string,
	target func(page int) callback.Action,
	withLetters bool,
) (render.View, error) {
	total, err := c.store.Count(ctx, owner, f)
	if err != nil {
		return render.View{}, err
	}
	pages := Pages(total, c.pageSize)
	page = Clamp(page, pages)

	var items []entry.Entry
	if total > 0 {
		items, err = c.store.List(ctx, owner, f, c.pageSize, Offset(page, c.pageSize))
		if err != nil {
			return render.View{}, err
		}
	}

	pager := render.PagerRow(page, pages, target)
	markup := render.ListMarkup(pager)
	if withLetters {
		markup = render.ListMarkup(pager, render.LetterRows()...)
	}

	if logger.ShouldSampleDebug() {
		logger.LogEvent(ctx, logger.SVCEntries, slog.LevelDebug, "page.render",
			slog.Int("page", page),
			slog.Int("pages", pages),
			slog.Int("count", len(items)),
			slog.Int("total", total),
		)
	}

	return render.View{
		Text:   render.List(title(total), items),
		Markup: markup,
		Page:   page,
		Pages:  pages,
		Total:  total,
	}, nil
}
