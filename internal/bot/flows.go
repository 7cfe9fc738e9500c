package bot

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
	"github.com/m3rciful/vocabot/internal/entry"
	"github.com/m3rciful/vocabot/internal/flow"
	"github.com/m3rciful/vocabot/internal/render"

	tele "gopkg.in/telebot.v4"
)

// onBulkText saves every parseable line and reports the rest.
// A line the store rejects is counted as skipped and the loop goes on.
func (h *Handler) onBulkText(c tele.Context) error {
	ctx := tghelpers.BuildContext(c)
	owner := ownerID(c)

	var (
		saved  int
		failed []string
	)
	for _, line := range strings.Split(c.Text(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p, ok := entry.Parse(line)
		if !ok {
			failed = append(failed, line)
			continue
		}
		if _, err := h.store.Upsert(ctx, owner, p.NewEntry()); err != nil {
			if !errors.Is(err, entry.ErrValidation) {
				logger.LogEvent(ctx, logger.SVCEntries, slog.LevelError, "bulk.line",
					slog.String("status", "fail"),
					slog.String("err", logger.SanitizeLimit(err.Error(), 256)),
				)
			}
			failed = append(failed, line)
			continue
		}
		saved++
	}
	return tghelpers.SendHTML(c, render.BulkReport(saved, failed, h.opts.BulkPreview), render.MenuMarkup())
}

func (h *Handler) onDeleteTarget(c tele.Context) error {
	return h.deleteWord(c, strings.TrimSpace(c.Text()))
}

func (h *Handler) onSearchQuery(c tele.Context) error {
	return h.search(c, strings.TrimSpace(c.Text()))
}

// onEditQuery lists entries matching the query as pick buttons.
// The flow stays idle until a pick arrives.
func (h *Handler) onEditQuery(c tele.Context) error {
	matches, err := h.store.Search(tghelpers.BuildContext(c), ownerID(c), strings.TrimSpace(c.Text()), h.opts.EditMatches)
	if err != nil {
		return h.fail(c, "edit.query", err)
	}
	if len(matches) == 0 {
		return tghelpers.SendHTML(c, render.NoMatches, render.MenuMarkup())
	}
	return tghelpers.SendHTML(c, render.PickMatch, render.EditPickMarkup(matches))
}

// onEditValue applies the new value to the field chosen earlier.
func (h *Handler) onEditValue(c tele.Context) error {
	st, ok := takenState(c).(flow.AwaitingEditValue)
	if !ok {
		return nil
	}
	patch, err := entry.PatchFor(st.Field, c.Text())
	if err != nil {
		return tghelpers.SendHTML(c, render.RequiredField(st.Field), render.MenuMarkup())
	}

	ctx := tghelpers.BuildContext(c)
	owner := ownerID(c)
	n, err := h.store.Update(ctx, owner, st.EntryID, patch)
	if err != nil {
		return h.fail(c, "edit.value", err)
	}
	if n == 0 {
		return tghelpers.SendHTML(c, render.EntryNotFound, render.MenuMarkup())
	}
	e, err := h.store.Get(ctx, owner, st.EntryID)
	if err != nil {
		return h.fail(c, "edit.value", err)
	}
	return tghelpers.SendHTML(c, render.Updated+"\n\n"+render.Entry(e, true), render.MenuMarkup())
}
