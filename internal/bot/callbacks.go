package bot

import (
	"errors"
	"log/slog"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/internal/callback"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/flow"
	"github.com/m3rciful/vocabot/internal/render"

	tele "gopkg.in/telebot.v4"
)

// OnCallback decodes a button payload and runs the matching action.
// Undecodable payloads come from stale keyboards and only produce a notice.
func (h *Handler) OnCallback(c tele.Context) error {
	data := callbacks.RawData(c)
	act, err := callback.Decode(data)
	if err != nil {
		logger.LogEvent(tghelpers.BuildContext(c), logger.Component("tg"), slog.LevelInfo, "callback.malformed",
			slog.String("status", "skip"),
			slog.String("cb_data", logger.SanitizeLimit(data, 64)),
		)
		return tghelpers.Respond(c, render.ButtonExpired, false)
	}

	ctx := tghelpers.BuildContext(c)
	owner := ownerID(c)

	switch a := act.(type) {
	case callback.Nop:
		return nil

	case callback.ListAll:
		v, err := h.pages.RenderAll(ctx, owner, a.Page)
		if err != nil {
			return h.fail(c, "list", err)
		}
		return replyView(c, v)

	case callback.ListLetter:
		v, err := h.pages.RenderLetter(ctx, owner, a.Letter, a.Page)
		if err != nil {
			return h.fail(c, "letter", err)
		}
		return replyView(c, v)

	case callback.Search:
		v, err := h.pages.RenderSearch(ctx, owner, a.Token, a.Page)
		if err != nil {
			return h.fail(c, "search", err)
		}
		return replyView(c, v)

	case callback.QuizNext:
		card, ok, err := h.quiz.Next(ctx, owner)
		if err != nil {
			return h.fail(c, "quiz.next", err)
		}
		if !ok {
			_ = tghelpers.Respond(c, render.EmptyQuiz, true)
			return reply(c, render.EmptyQuiz)
		}
		return reply(c, render.QuizCard(card.Entry, false), render.QuizMarkup(card.Entry.ID, false))

	case callback.QuizShow:
		card, err := h.quiz.Show(ctx, owner, a.ID)
		if errors.Is(err, entry.ErrNotFound) {
			return tghelpers.Respond(c, render.CardNotFound, true)
		}
		if err != nil {
			return h.fail(c, "quiz.show", err)
		}
		return reply(c, render.QuizCard(card.Entry, true), render.QuizMarkup(card.Entry.ID, true))

	case callback.QuizDelete:
		res, err := h.quiz.Delete(ctx, owner, a.ID)
		if err != nil {
			return h.fail(c, "quiz.delete", err)
		}
		if res.Deleted {
			_ = tghelpers.Respond(c, render.Deleted, false)
		} else {
			_ = tghelpers.Respond(c, render.AlreadyDeleted, true)
		}
		if !res.HasNext {
			return reply(c, render.EmptyQuiz)
		}
		return reply(c, render.QuizCard(res.Next.Entry, false), render.QuizMarkup(res.Next.Entry.ID, false))

	case callback.EditPick:
		e, err := h.store.Get(ctx, owner, a.ID)
		if err != nil {
			h.flows.Reset(owner)
			return h.fail(c, "edit.pick", err)
		}
		return reply(c, render.PickField+"\n\n"+render.Entry(e, true), render.EditFieldMarkup(e.ID))

	case callback.EditField:
		e, err := h.store.Get(ctx, owner, a.ID)
		if err != nil {
			h.flows.Reset(owner)
			return h.fail(c, "edit.field", err)
		}
		h.flows.Begin(owner, flow.AwaitingEditValue{EntryID: e.ID, Field: a.Field})
		return reply(c, render.EditFieldPrompt(e, a.Field), render.CancelMarkup())

	case callback.Menu:
		h.flows.Reset(owner)
		return h.onMenu(c, a.Item)

	case callback.Cancel:
		h.flows.Reset(owner)
		_ = tghelpers.Respond(c, render.Cancelled, false)
		return reply(c, render.Home, render.MenuMarkup())
	}
	return tghelpers.Respond(c, render.ButtonExpired, false)
}

func (h *Handler) onMenu(c tele.Context, item callback.MenuItem) error {
	switch item {
	case callback.MenuList:
		return h.onList(c)
	case callback.MenuLetters:
		return reply(c, render.LettersTitle, render.LettersMarkup())
	case callback.MenuBulk:
		return h.onBulk(c)
	case callback.MenuFind:
		return h.begin(c, flow.AwaitingSearchQuery{}, render.PromptFind)
	case callback.MenuEdit:
		return h.onEdit(c)
	case callback.MenuDelete:
		return h.begin(c, flow.AwaitingDeleteTarget{}, render.PromptDelete)
	case callback.MenuQuiz:
		return h.onQuiz(c)
	case callback.MenuHome:
		return h.onHome(c)
	}
	return tghelpers.Respond(c, render.ButtonExpired, false)
}
