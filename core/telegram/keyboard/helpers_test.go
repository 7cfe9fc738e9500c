package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkedRows(t *testing.T) {
	var buttons []InlineBtn
	for _, l := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		buttons = append(buttons, InlineBtn{Text: l, Data: "LET|" + l + "|0"})
	}

	markup := InlineButtonsRows(Chunk(buttons, 6)...)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Len(t, markup.InlineKeyboard[0], 6)
	assert.Len(t, markup.InlineKeyboard[1], 2)
	assert.Equal(t, "LET|G|0", markup.InlineKeyboard[1][0].Data)
	assert.Empty(t, markup.InlineKeyboard[1][0].Unique)
}

func TestSingleCancelMarkup(t *testing.T) {
	markup := SingleCancelMarkup("CANCEL")
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "CANCEL", markup.InlineKeyboard[0][0].Data)
	assert.Equal(t, defaultCancelButtonText, markup.InlineKeyboard[0][0].Text)
}

func TestInlineButtonsRowsSkipsEmptyRows(t *testing.T) {
	markup := InlineButtonsRows(nil, []InlineBtn{{Text: "x", Data: "NOP"}}, []InlineBtn{})
	require.Len(t, markup.InlineKeyboard, 1)
	assert.Len(t, Chunk(nil, 3), 0)
	assert.Len(t, Chunk([]InlineBtn{{}, {}}, 0), 2)
}
