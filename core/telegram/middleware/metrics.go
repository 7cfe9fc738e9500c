package middleware

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const tallyKey = "reply_tally"

// Counters summarize what a handler sent back for one update.
type Counters struct {
	// Replies counts sent and edited messages, including queued ones.
	Replies int
	// Notices counts callback answers that carried text.
	Notices int
	// Keyboard is set when any reply carried reply markup.
	Keyboard bool
}

type tally struct {
	replies  atomic.Int32
	notices  atomic.Int32
	keyboard atomic.Bool
}

// tallyContext counts replies made through the send helpers and callback
// notices. Helpers may run the actual API call later on a dispatcher worker,
// so replies are counted when they are issued.
type tallyContext struct {
	tele.Context
	t *tally
}

// CountReply implements helpers.ReplyCounter.
func (c tallyContext) CountReply(withKeyboard bool) {
	c.t.replies.Add(1)
	if withKeyboard {
		c.t.keyboard.Store(true)
	}
}

// Respond forwards to the wrapped context and counts answers with text.
func (c tallyContext) Respond(resp ...*tele.CallbackResponse) error {
	err := c.Context.Respond(resp...)
	if err == nil && len(resp) > 0 && resp[0] != nil && resp[0].Text != "" {
		c.t.notices.Add(1)
	}
	return err
}

// MessageMetricsMiddleware attaches a reply tally to every update.
func MessageMetricsMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		t := &tally{}
		c.Set(tallyKey, t)
		return next(tallyContext{Context: c, t: t})
	}
}

// GetCounters reads the tally attached by MessageMetricsMiddleware.
func GetCounters(c tele.Context) Counters {
	t, ok := c.Get(tallyKey).(*tally)
	if !ok {
		return Counters{}
	}
	return Counters{
		Replies:  int(t.replies.Load()),
		Notices:  int(t.notices.Load()),
		Keyboard: t.keyboard.Load(),
	}
}
