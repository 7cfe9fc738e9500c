// Package render turns entries into Telegram HTML text and inline keyboards.
package render

import (
	"fmt"
	"strings"

	"github.com/m3rciful/vocabot/core/telegram/format"
	"github.com/m3rciful/vocabot/core/telegram/keyboard"
	"github.com/m3rciful/vocabot/internal/callback"
	"github.com/m3rciful/vocabot/internal/entry"

	tele "gopkg.in/telebot.v4"
)

// View is a rendered message: HTML text plus its keyboard.
type View struct {
	Text   string
	Markup *tele.ReplyMarkup
	Page   int
	Pages  int
	Total  int
}

// LettersPerRow is the width of the letter index grid.
const LettersPerRow = 6

const (
	prevLabel = "◀️"
	nextLabel = "▶️"
	// blankLabel fills the place of a missing arrow so the row keeps its shape.
	blankLabel = " "
)

var nop = callback.MustEncode(callback.Nop{})

// Entry formats one entry. With revealed=false the translation is hidden.
func Entry(e entry.Entry, revealed bool) string {
	return entryLines(e.Word, e.Translation, e.Example, e.Tag, revealed)
}

// Saved formats an entry that was just parsed from user input.
func Saved(p entry.Parsed) string {
	return "Saved ✅\n\n" + entryLines(p.Word, p.Translation, p.Example, p.Tag, true)
}

func entryLines(word, translation string, example, tag *string, revealed bool) string {
	head := "• " + format.Bold(word)
	if revealed {
		head += " — " + format.Escape(translation)
	}
	lines := []string{head}
	if ex := format.DerefString(example, ""); ex != "" {
		lines = append(lines, "  "+format.Italic(ex))
	}
	if t := format.DerefString(tag, ""); t != "" {
		lines = append(lines, "  "+format.Code(t))
	}
	return strings.Join(lines, "\n")
}

// List formats a titled page of entries, or the empty-state hint.
func List(title string, entries []entry.Entry) string {
	var b strings.Builder
	if title != "" {
		b.WriteString(format.Escape(title))
		b.WriteString("\n\n")
	}
	if len(entries) == 0 {
		b.WriteString(EmptyHint)
		return b.String()
	}
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(Entry(e, true))
	}
	return b.String()
}

// TitleAll is the heading of the whole-dictionary view.
func TitleAll(total int) string {
	return fmt.Sprintf("Dictionary (total: %d)", total)
}

// TitleLetter is the heading of a letter view.
func TitleLetter(letter string, total int) string {
	return fmt.Sprintf("Letter %s (total: %d)", letter, total)
}

// searchTitleRunes bounds the query echoed in a search heading.
const searchTitleRunes = 64

// TitleSearch is the heading of a search view.
func TitleSearch(query string, total int) string {
	return fmt.Sprintf("Search: “%s” (total: %d)", truncate(query, searchTitleRunes), total)
}

// PagerRow builds the [prev | page/pages | next] row. target maps a page index to
// the action that renders it. Missing arrows are replaced by blank no-op buttons.
func PagerRow(page, pages int, target func(page int) callback.Action) []keyboard.InlineBtn {
	row := make([]keyboard.InlineBtn, 0, 3)
	if page > 0 {
		row = append(row, keyboard.InlineBtn{Text: prevLabel, Data: callback.MustEncode(target(page - 1))})
	} else {
		row = append(row, keyboard.InlineBtn{Text: blankLabel, Data: nop})
	}
	row = append(row, keyboard.InlineBtn{Text: fmt.Sprintf("%d/%d", page+1, pages), Data: nop})
	if page < pages-1 {
		row = append(row, keyboard.InlineBtn{Text: nextLabel, Data: callback.MustEncode(target(page + 1))})
	} else {
		row = append(row, keyboard.InlineBtn{Text: blankLabel, Data: nop})
	}
	return row
}

// LetterRows builds the A–Z index, LettersPerRow buttons per row.
func LetterRows() [][]keyboard.InlineBtn {
	buttons := make([]keyboard.InlineBtn, 0, len(entry.Letters))
	for _, r := range entry.Letters {
		l := string(r)
		buttons = append(buttons, keyboard.InlineBtn{
			Text: l,
			Data: callback.MustEncode(callback.ListLetter{Letter: l, Page: 0}),
		})
	}
	return keyboard.Chunk(buttons, LettersPerRow)
}

// ListMarkup stacks the pager row on top of optional extra rows.
func ListMarkup(pager []keyboard.InlineBtn, extra ...[]keyboard.InlineBtn) *tele.ReplyMarkup {
	rows := append([][]keyboard.InlineBtn{pager}, extra...)
	return keyboard.InlineButtonsRows(rows...)
}

// LettersMarkup is the bare letter index.
func LettersMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(LetterRows()...)
}

func menuBtn(text string, item callback.MenuItem) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Data: callback.MustEncode(callback.Menu{Item: item})}
}

// MenuMarkup is the home menu.
func MenuMarkup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{menuBtn("📚 List", callback.MenuList), menuBtn("🔤 Letters", callback.MenuLetters)},
		[]keyboard.InlineBtn{menuBtn("➕ Bulk add", callback.MenuBulk), menuBtn("🔎 Find", callback.MenuFind)},
		[]keyboard.InlineBtn{menuBtn("✏️ Edit", callback.MenuEdit), menuBtn("🗑️ Delete", callback.MenuDelete)},
		[]keyboard.InlineBtn{menuBtn("🎯 Quiz", callback.MenuQuiz)},
	)
}

// CancelMarkup offers a single cancel button for flows waiting on text.
func CancelMarkup() *tele.ReplyMarkup {
	return keyboard.SingleCancelMarkup(callback.MustEncode(callback.Cancel{}))
}

// QuizCard formats a quiz card.
func QuizCard(e entry.Entry, revealed bool) string {
	return "Card:\n\n" + Entry(e, revealed)
}

// QuizMarkup offers reveal (until revealed), next and delete.
func QuizMarkup(id int64, revealed bool) *tele.ReplyMarkup {
	var rows [][]keyboard.InlineBtn
	if !revealed {
		rows = append(rows, []keyboard.InlineBtn{
			{Text: "Show translation ✅", Data: callback.MustEncode(callback.QuizShow{ID: id})},
		})
	}
	rows = append(rows, []keyboard.InlineBtn{
		{Text: "Next ➡️", Data: callback.MustEncode(callback.QuizNext{})},
		{Text: "Delete 🗑️", Data: callback.MustEncode(callback.QuizDelete{ID: id})},
	})
	return keyboard.InlineButtonsRows(rows...)
}

const pickLabelRunes = 48

// EditPickMarkup lists candidate entries, one per row, followed by cancel.
func EditPickMarkup(entries []entry.Entry) *tele.ReplyMarkup {
	rows := make([][]keyboard.InlineBtn, 0, len(entries)+1)
	for _, e := range entries {
		rows = append(rows, []keyboard.InlineBtn{{
			Text: truncate(e.Word+" — "+e.Translation, pickLabelRunes),
			Data: callback.MustEncode(callback.EditPick{ID: e.ID}),
		}})
	}
	rows = append(rows, []keyboard.InlineBtn{keyboard.CancelButton(callback.MustEncode(callback.Cancel{}))})
	return keyboard.InlineButtonsRows(rows...)
}

// EditFieldMarkup offers the editable fields of entry id, two per row, followed by cancel.
func EditFieldMarkup(id int64) *tele.ReplyMarkup {
	buttons := make([]keyboard.InlineBtn, 0, len(entry.Fields))
	for _, f := range entry.Fields {
		buttons = append(buttons, keyboard.InlineBtn{
			Text: f.Label(),
			Data: callback.MustEncode(callback.EditField{Field: f, ID: id}),
		})
	}
	rows := keyboard.Chunk(buttons, 2)
	rows = append(rows, []keyboard.InlineBtn{keyboard.CancelButton(callback.MustEncode(callback.Cancel{}))})
	return keyboard.InlineButtonsRows(rows...)
}

// EditFieldPrompt asks for the new value of f, showing the current one.
func EditFieldPrompt(e entry.Entry, f entry.Field) string {
	current := e.Value(f)
	if current == "" {
		current = "—"
	}
	text := fmt.Sprintf("Editing %s of %s\nCurrent: %s\n\nSend the new value.",
		format.Bold(strings.ToLower(f.Label())), format.Bold(e.Word), format.Escape(current))
	if f.Optional() {
		text += " Send " + format.Code(entry.ClearValue) + " to clear it."
	}
	return text
}

// BulkReport summarises a bulk add.
func BulkReport(saved int, failed []string, preview int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Saved: %d\nSkipped: %d", saved, len(failed))
	if len(failed) == 0 {
		return b.String()
	}
	shown := failed
	if preview >= 0 && len(shown) > preview {
		shown = shown[:preview]
	}
	if len(shown) > 0 {
		b.WriteString("\n\nNot understood:")
		for _, line := range shown {
			b.WriteString("\n• ")
			b.WriteString(format.Code(truncate(line, 80)))
		}
	}
	if rest := len(failed) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n…and %d more", rest)
	}
	return b.String()
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
