package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	key, payload := ParseCallbackData(&tele.Callback{Data: "LET|A|2"})
	assert.Equal(t, "LET", key)
	assert.Equal(t, "A|2", payload)

	key, payload = ParseCallbackData(&tele.Callback{Data: "\fNOP"})
	assert.Equal(t, "NOP", key)
	assert.Empty(t, payload)

	key, payload = ParseCallbackData(&tele.Callback{Unique: "ALL", Data: "3"})
	assert.Equal(t, "ALL", key)
	assert.Equal(t, "3", payload)

	key, payload = ParseCallbackData(nil)
	assert.Empty(t, key)
	assert.Empty(t, payload)
}

type cbContext struct {
	tele.Context
	cb *tele.Callback
}

func (c cbContext) Callback() *tele.Callback { return c.cb }

func TestRawData(t *testing.T) {
	assert.Equal(t, "QUIZ|SHOW|5", RawData(cbContext{cb: &tele.Callback{Data: "QUIZ|SHOW|5"}}))
	assert.Equal(t, "NOP", RawData(cbContext{cb: &tele.Callback{Data: "\fNOP"}}))
	assert.Equal(t, "ALL|3", RawData(cbContext{cb: &tele.Callback{Unique: "ALL", Data: "3"}}))
	assert.Equal(t, "CANCEL", RawData(cbContext{cb: &tele.Callback{Unique: "CANCEL"}}))
	assert.Empty(t, RawData(cbContext{}))
}
