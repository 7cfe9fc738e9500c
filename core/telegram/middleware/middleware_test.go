package middleware

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/vocabot/core/logger"
	tghelpers "github.com/m3rciful/vocabot/core/telegram/helpers"
)

type userContext struct {
	tele.Context
	user *tele.User
	cb   *tele.Callback
	vals map[string]any
	sent []string
}

func newUserContext(id int64) *userContext {
	return &userContext{user: &tele.User{ID: id}, vals: map[string]any{}}
}

func (c *userContext) Get(k string) any         { return c.vals[k] }
func (c *userContext) Set(k string, v any)      { c.vals[k] = v }
func (c *userContext) Callback() *tele.Callback { return c.cb }
func (c *userContext) Text() string             { return "" }
func (c *userContext) Send(what any, _ ...any) error {
	c.sent = append(c.sent, what.(string))
	return nil
}
func (c *userContext) Respond(...*tele.CallbackResponse) error { return nil }

func (c *userContext) Sender() *tele.User { return c.user }
func (c *userContext) Chat() *tele.Chat   { return &tele.Chat{ID: c.user.ID} }
func (c *userContext) Update() tele.Update {
	if c.cb != nil {
		return tele.Update{Callback: c.cb}
	}
	return tele.Update{Message: &tele.Message{Sender: c.user}}
}

func TestSerializeMiddlewareOneAtATimePerUser(t *testing.T) {
	var running, peak int32
	h := SerializeMiddleware()(func(tele.Context) error {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = h(newUserContext(1))
		}()
	}
	wg.Wait()
	assert.EqualValues(t, 1, peak)
}

func TestAdminOnlyMiddleware(t *testing.T) {
	var called, rejected int
	next := func(tele.Context) error { called++; return nil }
	mw := AdminOnlyMiddleware(AdminOptions{
		AdminID:  7,
		OnReject: func(tele.Context) error { rejected++; return nil },
	})(next)

	_ = mw(newUserContext(8))
	_ = mw(newUserContext(7))
	assert.Equal(t, 1, called)
	assert.Equal(t, 1, rejected)
}

func TestRateLimitMiddleware(t *testing.T) {
	var called, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})(func(tele.Context) error { called++; return nil })

	c := newUserContext(3)
	_ = mw(c)
	_ = mw(c)
	_ = mw(newUserContext(4))
	assert.Equal(t, 2, called)
	assert.Equal(t, 1, limited)

	excluded := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})(func(tele.Context) error { called++; return nil })
	_ = excluded(c)
	_ = excluded(c)
	assert.Equal(t, 4, called)
}

func TestRateLimitIgnoresZeroInterval(t *testing.T) {
	called := 0
	mw := RateLimitMiddleware(RateLimitOptions{})(func(tele.Context) error { called++; return nil })
	c := newUserContext(5)
	_ = mw(c)
	_ = mw(c)
	assert.Equal(t, 2, called)
}

func TestMessageMetricsCountsReplies(t *testing.T) {
	var got Counters
	h := MessageMetricsMiddleware(func(c tele.Context) error {
		if err := tghelpers.SendHTML(c, "saved", &tele.ReplyMarkup{}); err != nil {
			return err
		}
		if err := tghelpers.SendHTML(c, "more"); err != nil {
			return err
		}
		_ = c.Respond(&tele.CallbackResponse{Text: "Deleted"})
		_ = c.Respond()
		got = GetCounters(c)
		return nil
	})

	c := newUserContext(9)
	require.NoError(t, h(c))
	assert.Equal(t, Counters{Replies: 2, Notices: 1, Keyboard: true}, got)
	assert.Equal(t, []string{"saved", "more"}, c.sent)
	assert.Equal(t, got, GetCounters(c))
}

func TestGetCountersWithoutMiddleware(t *testing.T) {
	assert.Equal(t, Counters{}, GetCounters(newUserContext(1)))
}

func TestLoggerMiddlewareStoresContext(t *testing.T) {
	c := newUserContext(11)
	var meta logger.UpdateMeta
	h := LoggerMiddleware(func(c tele.Context) error {
		meta = logger.MetaFrom(tghelpers.BuildContext(c))
		return nil
	})
	require.NoError(t, h(c))
	assert.Equal(t, int64(11), meta.UserID)
	assert.Equal(t, int64(11), meta.ChatID)
	assert.NotEmpty(t, meta.RID)
}

func TestRecoverMiddlewareTurnsPanicIntoError(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	var err error
	require.NotPanics(t, func() { err = h(newUserContext(2)) })
	assert.ErrorContains(t, err, "boom")
}

func TestUpdateKind(t *testing.T) {
	assert.Equal(t, "callback", UpdateKind(tele.Update{Callback: &tele.Callback{}}))
	assert.Equal(t, "message", UpdateKind(tele.Update{Message: &tele.Message{}}))
	assert.Equal(t, "other", UpdateKind(tele.Update{}))
}
