package render

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m3rciful/vocabot/internal/callback"
	"github.com/m3rciful/vocabot/internal/entry"
)

func str(s string) *string { return &s }

func TestEntryEscapesAndHides(t *testing.T) {
	e := entry.Entry{Word: "<cat>", Translation: "кот & кошка", Example: str("a <b>cat</b>"), Tag: str("pets")}

	got := Entry(e, true)
	assert.Equal(t, "• <b>&lt;cat&gt;</b> — кот &amp; кошка\n  <i>a &lt;b&gt;cat&lt;/b&gt;</i>\n  <code>pets</code>", got)

	hidden := Entry(e, false)
	assert.NotContains(t, hidden, "кот")
	assert.Contains(t, hidden, "<b>&lt;cat&gt;</b>")
}

func TestListEmptyState(t *testing.T) {
	got := List(TitleAll(0), nil)
	assert.True(t, strings.HasPrefix(got, "Dictionary (total: 0)\n\n"))
	assert.Contains(t, got, EmptyHint)
}

func TestListJoinsEntries(t *testing.T) {
	got := List(TitleSearch("a<b", 2), []entry.Entry{
		{Word: "apple", Translation: "яблоко"},
		{Word: "arm", Translation: "рука"},
	})
	assert.Equal(t, "Search: “a&lt;b” (total: 2)\n\n• <b>apple</b> — яблоко\n\n• <b>arm</b> — рука", got)
}

func TestTitleSearchShortensLongQuery(t *testing.T) {
	query := strings.Repeat("я", 4000)
	got := TitleSearch(query, 1)
	assert.Less(t, utf8.RuneCountInString(got), 100)
	assert.Contains(t, got, strings.Repeat("я", searchTitleRunes-1)+"…”")
	assert.Equal(t, "Search: “cat” (total: 1)", TitleSearch("cat", 1))
}

func TestPagerRow(t *testing.T) {
	target := func(p int) callback.Action { return callback.ListAll{Page: p} }

	first := PagerRow(0, 2, target)
	require.Len(t, first, 3)
	assert.Equal(t, "NOP", first[0].Data)
	assert.Equal(t, "1/2", first[1].Text)
	assert.Equal(t, "NOP", first[1].Data)
	assert.Equal(t, "ALL|1", first[2].Data)

	last := PagerRow(1, 2, target)
	require.Len(t, last, 3)
	assert.Equal(t, "ALL|0", last[0].Data)
	assert.Equal(t, "NOP", last[2].Data)
	assert.Equal(t, blankLabel, last[2].Text)

	single := PagerRow(0, 1, func(p int) callback.Action { return callback.Search{Token: "abcd1234", Page: p} })
	assert.Equal(t, "NOP", single[0].Data)
	assert.Equal(t, "NOP", single[2].Data)
}

func TestLetterRows(t *testing.T) {
	rows := LetterRows()
	require.Len(t, rows, 5)
	for _, r := range rows[:4] {
		assert.Len(t, r, LettersPerRow)
	}
	assert.Len(t, rows[4], 2)
	assert.Equal(t, "LET|A|0", rows[0][0].Data)
	assert.Equal(t, "Z", rows[4][1].Text)
}

func TestQuizMarkup(t *testing.T) {
	hidden := QuizMarkup(5, false)
	require.Len(t, hidden.InlineKeyboard, 2)
	assert.Equal(t, "QUIZ|SHOW|5", hidden.InlineKeyboard[0][0].Data)
	assert.Equal(t, "QUIZ|NEXT", hidden.InlineKeyboard[1][0].Data)
	assert.Equal(t, "QUIZ|DEL|5", hidden.InlineKeyboard[1][1].Data)

	shown := QuizMarkup(5, true)
	require.Len(t, shown.InlineKeyboard, 1)
}

func TestMenuMarkupCoversEveryAction(t *testing.T) {
	seen := map[string]bool{}
	for _, row := range MenuMarkup().InlineKeyboard {
		for _, b := range row {
			a, err := callback.Decode(b.Data)
			require.NoError(t, err)
			seen[string(a.(callback.Menu).Item)] = true
		}
	}
	for _, item := range []callback.MenuItem{
		callback.MenuList, callback.MenuLetters, callback.MenuBulk, callback.MenuFind,
		callback.MenuEdit, callback.MenuDelete, callback.MenuQuiz,
	} {
		assert.True(t, seen[string(item)], item)
	}
}

func TestEditMarkups(t *testing.T) {
	pick := EditPickMarkup([]entry.Entry{{ID: 3, Word: "cat", Translation: "кот"}})
	require.Len(t, pick.InlineKeyboard, 2)
	assert.Equal(t, "cat — кот", pick.InlineKeyboard[0][0].Text)
	assert.Equal(t, "EDIT|PICK|3", pick.InlineKeyboard[0][0].Data)
	assert.Equal(t, "CANCEL", pick.InlineKeyboard[1][0].Data)

	fields := EditFieldMarkup(3)
	require.Len(t, fields.InlineKeyboard, 3)
	assert.Equal(t, "EDIT|FIELD|word|3", fields.InlineKeyboard[0][0].Data)
	assert.Equal(t, "EDIT|FIELD|tag|3", fields.InlineKeyboard[1][1].Data)
}

func TestEditFieldPrompt(t *testing.T) {
	e := entry.Entry{Word: "cat", Translation: "кот"}
	assert.Contains(t, EditFieldPrompt(e, entry.FieldExample), "<code>-</code>")
	assert.NotContains(t, EditFieldPrompt(e, entry.FieldWord), "<code>-</code>")
}

func TestBulkReport(t *testing.T) {
	assert.Equal(t, "Saved: 3\nSkipped: 0", BulkReport(3, nil, 5))

	failed := []string{"a", "b", "c", "<d>", "e", "f", "g"}
	got := BulkReport(1, failed, 5)
	assert.Contains(t, got, "Skipped: 7")
	assert.Contains(t, got, "<code>&lt;d&gt;</code>")
	assert.NotContains(t, got, "<code>f</code>")
	assert.Contains(t, got, "…and 2 more")
}

func TestSaved(t *testing.T) {
	p, ok := entry.Parse("cat — кот | tag: pets")
	require.True(t, ok)
	assert.Equal(t, "Saved ✅\n\n• <b>cat</b> — кот\n  <code>pets</code>", Saved(p))
}
