// Package bot implements the Telegram surface of the dictionary: commands, the
// home menu, inline callbacks and the text steps of multi-step flows.
package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/core/telegram/sender"
	"github.com/m3rciful/vocabot/core/telegram/state"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/flow"
	"github.com/m3rciful/vocabot/internal/pager"
	"github.com/m3rciful/vocabot/internal/quiz"
	"github.com/m3rciful/vocabot/internal/render"
	"github.com/m3rciful/vocabot/internal/searchcache"

	tele "gopkg.in/telebot.v4"
)

// Store is the record store used by the handlers.
type Store interface {
	pager.Lister
	quiz.Store
	Upsert(ctx context.Context, owner int64, in entry.NewEntry) (entry.Entry, error)
	DeleteByWord(ctx context.Context, owner int64, word string) (int64, error)
	Search(ctx context.Context, owner int64, query string, limit int) ([]entry.Entry, error)
	Update(ctx context.Context, owner, id int64, p entry.Patch) (int64, error)
}

// Options tune the handlers. Zero values select defaults.
type Options struct {
	PageSize    int
	BulkPreview int
	EditMatches int
}

const (
	defaultBulkPreview = 5
	defaultEditMatches = 10
)

// Handler owns the per-user conversation state and renders every reply.
type Handler struct {
	store  Store
	tokens *searchcache.Cache
	pages  *pager.Controller
	flows  *flow.Machine
	quiz   *quiz.Service
	steps  *state.Handlers[flow.Kind]
	opts   Options

	dispatcher atomic.Pointer[sender.Dispatcher]
}

// New wires a handler over store and tokens.
func New(store Store, tokens *searchcache.Cache, opts Options) *Handler {
	if opts.BulkPreview <= 0 {
		opts.BulkPreview = defaultBulkPreview
	}
	if opts.EditMatches <= 0 {
		opts.EditMatches = defaultEditMatches
	}
	h := &Handler{
		store:  store,
		tokens: tokens,
		pages:  pager.NewController(store, tokens, opts.PageSize),
		flows:  flow.NewMachine(),
		quiz:   quiz.NewService(store),
		steps:  state.NewHandlers[flow.Kind](),
		opts:   opts,
	}
	h.steps.Register(flow.KindBulkText, h.onBulkText)
	h.steps.Register(flow.KindDeleteTarget, h.onDeleteTarget)
	h.steps.Register(flow.KindEditQuery, h.onEditQuery)
	h.steps.Register(flow.KindEditValue, h.onEditValue)
	h.steps.Register(flow.KindSearchQuery, h.onSearchQuery)
	return h
}

// SetDispatcher exposes the outbound sender to /stats.
func (h *Handler) SetDispatcher(d *sender.Dispatcher) {
	h.dispatcher.Store(d)
}

// InProgress reports whether userID is inside a flow that consumes text.
func (h *Handler) InProgress(userID int64) bool {
	return h.flows.InProgress(userID)
}

const stateKey = "flow_state"

// ManagerHandler hands a text message to the step of the user's active flow.
// The flow is taken (reset to idle) before the step runs.
func (h *Handler) ManagerHandler(c tele.Context) error {
	owner := ownerID(c)
	st := h.flows.Take(owner)
	if c.Message() == nil || c.Message().Text == "" {
		// keep waiting; documents and stickers do not complete a flow
		h.flows.Begin(owner, st)
		return tghelpers.SendHTML(c, render.NeedText, render.CancelMarkup())
	}
	c.Set(stateKey, st)
	return h.steps.Dispatch(c, st.Kind())
}

func takenState(c tele.Context) flow.State {
	if st, ok := c.Get(stateKey).(flow.State); ok {
		return st
	}
	return flow.Idle{}
}

func ownerID(c tele.Context) int64 {
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}

func payload(c tele.Context) string {
	if m := c.Message(); m != nil {
		return m.Payload
	}
	return ""
}

// reply edits the callback's message in place or sends a new message.
func reply(c tele.Context, text string, markup ...*tele.ReplyMarkup) error {
	return tghelpers.EditOrSendHTML(c, text, markup...)
}

func replyView(c tele.Context, v render.View) error {
	return reply(c, v.Text, v.Markup)
}

// notice shows a short message: a toast for callbacks, a plain message otherwise.
func notice(c tele.Context, text string, alert bool) error {
	if c.Callback() != nil {
		return tghelpers.Respond(c, text, alert)
	}
	return tghelpers.SendHTML(c, text)
}

// fail reports err to the user according to its class and logs unexpected failures.
// Errors never escape a handler: every failure is scoped to the current interaction.
func (h *Handler) fail(c tele.Context, op string, err error) error {
	ctx := tghelpers.BuildContext(c)
	switch {
	case errors.Is(err, pager.ErrSearchExpired):
		if c.Callback() == nil {
			return notice(c, render.SearchExpired, true)
		}
		_ = tghelpers.Respond(c, render.SearchExpired, true)
		h.flows.Reset(ownerID(c))
		return reply(c, render.Home, render.MenuMarkup())
	case errors.Is(err, entry.ErrNotFound):
		return notice(c, render.EntryNotFound, true)
	case errors.Is(err, entry.ErrAlreadyExists):
		return notice(c, render.EntryExists, false)
	case errors.Is(err, entry.ErrValidation):
		return notice(c, render.Unparsed, false)
	}
	logger.LogEvent(ctx, logger.SVCEntries, slog.LevelError, "handler.fail",
		slog.String("op", op),
		slog.String("status", "fail"),
		slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
	)
	return notice(c, render.StoreFailure, false)
}
