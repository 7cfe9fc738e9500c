package sender

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/m3rciful/vocabot/core/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestDispatcherRunsJobs(t *testing.T) {
	d := NewDispatcher(Options{Workers: 2, QueueSize: 8})

	var ran atomic.Int32
	for i := 0; i < 5; i++ {
		require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
			ran.Add(1)
			return nil
		}))
	}
	d.Close()

	assert.EqualValues(t, 5, ran.Load())
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherRetriesTransientErrors(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 2, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	dialErr := &net.OpError{Op: "dial", Err: errors.New("connection refused")}
	require.NoError(t, d.Enqueue(context.Background(), "edit.html", "editMessageText", func() error {
		if calls.Add(1) < 3 {
			return dialErr
		}
		return nil
	}))
	d.Close()

	assert.EqualValues(t, 3, calls.Load())
	assert.Zero(t, d.ErrorCount())
}

func TestDispatcherCountsPermanentFailures(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, MaxRetries: 3, RetryBackoff: time.Millisecond})

	var calls atomic.Int32
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "sendMessage", func() error {
		calls.Add(1)
		return errors.New("bad request (400)")
	}))
	d.Close()

	assert.EqualValues(t, 1, calls.Load())
	assert.EqualValues(t, 1, d.ErrorCount())
}

func TestDispatcherRejectsAfterClose(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1})
	d.Close()

	err := d.Enqueue(context.Background(), "send.text", "sendMessage", func() error { return nil })
	assert.ErrorIs(t, err, ErrQueueClosed)
	assert.Error(t, d.Enqueue(context.Background(), "send.text", "sendMessage", nil))
}

func TestDispatcherKeepsChatOrder(t *testing.T) {
	d := NewDispatcher(Options{Workers: 3, QueueSize: 64})

	var (
		mu   sync.Mutex
		seen = map[int64][]int{}
	)
	for i := 0; i < 20; i++ {
		for _, chat := range []int64{5, -1001, 42} {
			ctx := logger.WithMeta(context.Background(), logger.NewUpdateMeta(i, chat, chat))
			require.NoError(t, d.Enqueue(ctx, "send.text", "sendMessage", func() error {
				mu.Lock()
				seen[chat] = append(seen[chat], i)
				mu.Unlock()
				return nil
			}))
		}
	}
	d.Close()

	for chat, order := range seen {
		require.Len(t, order, 20, "chat %d", chat)
		for i, v := range order {
			assert.Equal(t, i, v, "chat %d", chat)
		}
	}
}

func TestDispatcherQueueFull(t *testing.T) {
	d := NewDispatcher(Options{Workers: 1, QueueSize: 1})
	release := make(chan struct{})
	started := make(chan struct{})

	require.NoError(t, d.Enqueue(context.Background(), "send.text", "", func() error {
		close(started)
		<-release
		return nil
	}))
	<-started
	require.NoError(t, d.Enqueue(context.Background(), "send.text", "", func() error { return nil }))
	assert.ErrorIs(t, d.Enqueue(context.Background(), "send.text", "", func() error { return nil }), ErrQueueFull)

	close(release)
	d.Close()
}
