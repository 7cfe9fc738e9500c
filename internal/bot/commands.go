package bot

import (
	"fmt"
	"strings"

	tg "github.com/m3rciful/vocabot/core/telegram"
	"github.com/m3rciful/vocabot/core/telegram/commands"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/internal/callback"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/flow"
	"github.com/m3rciful/vocabot/internal/render"

	tele "gopkg.in/telebot.v4"
)

// Register adds every command, callback key and the idle text handler to reg.
func (h *Handler) Register(reg *tg.Registry) error {
	cmds := []struct {
		name string
		cmd  commands.Command
	}{
		{"/start", commands.Command{Handler: h.resetting(h.onHome), Description: "Home menu", Hidden: true}},
		{"/menu", commands.Command{Handler: h.resetting(h.onHome), Description: "Home menu"}},
		{"/list", commands.Command{Handler: h.resetting(h.onList), Description: "List with A–Z buttons"}},
		{"/letter", commands.Command{Handler: h.resetting(h.onLetter), Description: "Words starting with a letter"}},
		{"/find", commands.Command{Handler: h.resetting(h.onFind), Description: "Search words"}},
		{"/bulk", commands.Command{Handler: h.resetting(h.onBulk), Description: "Add many words at once"}},
		{"/edit", commands.Command{Handler: h.resetting(h.onEdit), Description: "Edit a word"}},
		{"/delete", commands.Command{Handler: h.resetting(h.onDelete), Description: "Delete a word"}},
		{"/quiz", commands.Command{Handler: h.resetting(h.onQuiz), Description: "Flashcards"}},
		{"/cancel", commands.Command{Handler: h.onCancel, Description: "Stop the current action"}},
		{"/stats", commands.Command{Handler: h.onStats, Description: "Runtime stats", AdminOnly: true, Hidden: true}},
	}
	for _, c := range cmds {
		if err := reg.RegisterCommand(c.name, c.cmd); err != nil {
			return err
		}
	}
	for _, key := range callback.Keys {
		if err := reg.RegisterCallback(key, h.OnCallback); err != nil {
			return err
		}
	}
	reg.SetTextFallback(h.OnText)
	return nil
}

// resetting drops any active flow before running a command.
func (h *Handler) resetting(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		h.flows.Reset(ownerID(c))
		return next(c)
	}
}

func (h *Handler) onHome(c tele.Context) error {
	return reply(c, render.Home, render.MenuMarkup())
}

func (h *Handler) onList(c tele.Context) error {
	v, err := h.pages.RenderAll(tghelpers.BuildContext(c), ownerID(c), 0)
	if err != nil {
		return h.fail(c, "list", err)
	}
	return replyView(c, v)
}

func (h *Handler) onLetter(c tele.Context) error {
	arg := strings.TrimSpace(payload(c))
	if arg == "" {
		return tghelpers.SendHTML(c, render.UsageLetter, render.LettersMarkup())
	}
	letter, ok := entry.ParseLetter(arg)
	if !ok {
		return tghelpers.SendHTML(c, render.NeedLetter, render.LettersMarkup())
	}
	v, err := h.pages.RenderLetter(tghelpers.BuildContext(c), ownerID(c), letter, 0)
	if err != nil {
		return h.fail(c, "letter", err)
	}
	return replyView(c, v)
}

// onFind searches for the command argument, or asks for a query when there is none.
func (h *Handler) onFind(c tele.Context) error {
	q := strings.TrimSpace(payload(c))
	if q == "" {
		return h.begin(c, flow.AwaitingSearchQuery{}, render.PromptFind)
	}
	return h.search(c, q)
}

func (h *Handler) onDelete(c tele.Context) error {
	word := strings.TrimSpace(payload(c))
	if word == "" {
		return h.begin(c, flow.AwaitingDeleteTarget{}, render.PromptDelete)
	}
	return h.deleteWord(c, word)
}

func (h *Handler) onBulk(c tele.Context) error {
	return h.begin(c, flow.AwaitingBulkText{}, render.PromptBulk)
}

func (h *Handler) onEdit(c tele.Context) error {
	return h.begin(c, flow.AwaitingEditQuery{}, render.PromptEdit)
}

func (h *Handler) onQuiz(c tele.Context) error {
	card, ok, err := h.quiz.Next(tghelpers.BuildContext(c), ownerID(c))
	if err != nil {
		return h.fail(c, "quiz.next", err)
	}
	if !ok {
		return reply(c, render.EmptyQuiz)
	}
	return reply(c, render.QuizCard(card.Entry, false), render.QuizMarkup(card.Entry.ID, false))
}

func (h *Handler) onCancel(c tele.Context) error {
	if prev := h.flows.Reset(ownerID(c)); prev.Kind() == flow.KindIdle {
		return reply(c, render.NothingToStop, render.MenuMarkup())
	}
	return reply(c, render.Cancelled, render.MenuMarkup())
}

func (h *Handler) onStats(c tele.Context) error {
	var sendErrors uint64
	if d := h.dispatcher.Load(); d != nil {
		sendErrors = d.ErrorCount()
	}
	owned, err := h.store.Count(tghelpers.BuildContext(c), ownerID(c), entry.Filter{})
	if err != nil {
		return h.fail(c, "stats", err)
	}
	text := fmt.Sprintf("Search owners: %d\nActive flows: %d\nSend errors: %d\nYour entries: %d",
		h.tokens.Owners(), h.flows.Active(), sendErrors, owned)
	return tghelpers.SendHTML(c, text)
}

// OnText adds a single entry from a free-text message sent outside any flow.
func (h *Handler) OnText(c tele.Context) error {
	p, ok := entry.Parse(c.Text())
	if !ok {
		return tghelpers.SendHTML(c, render.Unparsed)
	}
	if _, err := h.store.Upsert(tghelpers.BuildContext(c), ownerID(c), p.NewEntry()); err != nil {
		return h.fail(c, "add", err)
	}
	return tghelpers.SendHTML(c, render.Saved(p))
}

// begin enters st and prompts for the text it waits for.
func (h *Handler) begin(c tele.Context, st flow.State, prompt string) error {
	h.flows.Begin(ownerID(c), st)
	return reply(c, prompt, render.CancelMarkup())
}

func (h *Handler) search(c tele.Context, q string) error {
	v, err := h.pages.StartSearch(tghelpers.BuildContext(c), ownerID(c), q)
	if err != nil {
		return h.fail(c, "search", err)
	}
	return replyView(c, v)
}

func (h *Handler) deleteWord(c tele.Context, word string) error {
	n, err := h.store.DeleteByWord(tghelpers.BuildContext(c), ownerID(c), word)
	if err != nil {
		return h.fail(c, "delete", err)
	}
	if n == 0 {
		return tghelpers.SendHTML(c, render.WordNotFound(word))
	}
	return tghelpers.SendHTML(c, render.DeletedWord(word))
}

// UnknownText implements ui.FallbackProvider.
func (h *Handler) UnknownText() tele.HandlerFunc { return h.OnText }

// UnknownDocument implements ui.FallbackProvider.
func (h *Handler) UnknownDocument() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.SendHTML(c, render.NotUnderstood)
	}
}

// UnknownCallback implements ui.FallbackProvider.
func (h *Handler) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return tghelpers.Respond(c, render.ButtonExpired, false)
	}
}
