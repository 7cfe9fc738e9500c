package middleware

import (
	"sync"

	tele "gopkg.in/telebot.v4"
)

type userLock struct {
	mu   sync.Mutex
	refs int
}

type userLocks struct {
	mu    sync.Mutex
	locks map[int64]*userLock
}

func (l *userLocks) acquire(id int64) *userLock {
	l.mu.Lock()
	lk, ok := l.locks[id]
	if !ok {
		lk = &userLock{}
		l.locks[id] = lk
	}
	lk.refs++
	l.mu.Unlock()

	lk.mu.Lock()
	return lk
}

func (l *userLocks) release(id int64, lk *userLock) {
	lk.mu.Unlock()

	l.mu.Lock()
	lk.refs--
	if lk.refs == 0 {
		delete(l.locks, id)
	}
	l.mu.Unlock()
}

// SerializeMiddleware runs updates of the same user one at a time.
// Updates of different users still run concurrently.
func SerializeMiddleware() tele.MiddlewareFunc {
	locks := &userLocks{locks: make(map[int64]*userLock)}
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}
			lk := locks.acquire(user.ID)
			defer locks.release(user.ID, lk)
			return next(c)
		}
	}
}
