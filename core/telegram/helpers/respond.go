package helpers

import tele "gopkg.in/telebot.v4"

const respondedKey = "cb_responded"

// Respond answers the current callback query once. Later calls are no-ops,
// so a handler notice is never overwritten by the router's silent answer.
func Respond(c tele.Context, text string, alert bool) error {
	if c.Callback() == nil || Responded(c) {
		return nil
	}
	c.Set(respondedKey, true)
	if text == "" {
		return c.Respond()
	}
	return c.Respond(&tele.CallbackResponse{Text: text, ShowAlert: alert})
}

// Responded reports whether the current callback has already been answered.
func Responded(c tele.Context) bool {
	v, _ := c.Get(respondedKey).(bool)
	return v
}
