package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes a convenience wrapper for inline button properties.
// With an empty Unique the Data string is sent verbatim as callback data.
type InlineBtn struct {
	Text   string
	Unique string
	Data   string
}

const defaultCancelButtonText = "❌ Cancel"

// Inline converts the wrapper into a telebot inline button.
func (b InlineBtn) Inline(markup *tele.ReplyMarkup) tele.InlineButton {
	if b.Unique == "" {
		return tele.InlineButton{Text: b.Text, Data: b.Data}
	}
	return *markup.Data(b.Text, b.Unique, b.Data).Inline()
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = btn.Inline(markup)
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits a flat list of buttons into rows with up to n buttons per row.
func Chunk(buttons []InlineBtn, n int) [][]InlineBtn {
	if n <= 1 {
		n = 1
	}
	var rows [][]InlineBtn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// CancelButton returns a reusable cancel button carrying the given callback data.
// An optional label overrides the default text.
func CancelButton(data string, label ...string) InlineBtn {
	text := defaultCancelButtonText
	if len(label) > 0 && label[0] != "" {
		text = label[0]
	}
	return InlineBtn{Text: text, Data: data}
}

// SingleCancelMarkup creates an inline keyboard with a single cancel button.
func SingleCancelMarkup(data string, label ...string) *tele.ReplyMarkup {
	return InlineButtonsRows([]InlineBtn{CancelButton(data, label...)})
}
