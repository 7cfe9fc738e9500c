// Package sender runs outbound Telegram calls on background workers with retries.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/m3rciful/vocabot/core/logger"
	"github.com/m3rciful/vocabot/core/telegram/netutil"
)

var (
	// ErrQueueClosed is returned by Enqueue after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull is returned when the lane of the job has no free slot.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the dispatcher. Zero values select defaults.
type Options struct {
	// QueueSize is the capacity of each lane.
	QueueSize int
	// Workers is the number of lanes; each lane has one worker.
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent on a single job, retries included.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 64
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 2 * time.Second
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx      context.Context
	action   string
	endpoint string
	run      func() error
}

// Dispatcher executes outbound calls asynchronously. Jobs are spread over
// lanes by chat id, so replies to one chat are delivered in the order they
// were enqueued while different chats proceed in parallel.
type Dispatcher struct {
	opts  Options
	lanes []chan job

	mu     sync.RWMutex
	closed bool

	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewDispatcher starts one worker per lane.
func NewDispatcher(opts Options) *Dispatcher {
	opts = opts.withDefaults()
	d := &Dispatcher{opts: opts, lanes: make([]chan job, opts.Workers)}
	for i := range d.lanes {
		d.lanes[i] = make(chan job, opts.QueueSize)
		d.wg.Add(1)
		go d.work(d.lanes[i])
	}
	return d
}

// Enqueue schedules run on the lane of the chat recorded in ctx.
// run must be safe to repeat when retries are enabled.
func (d *Dispatcher) Enqueue(ctx context.Context, action, endpoint string, run func() error) error {
	if run == nil {
		return errors.New("telegram sender: nil run function")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrQueueClosed
	}
	select {
	case d.laneFor(ctx) <- job{ctx: ctx, action: action, endpoint: endpoint, run: run}:
		return nil
	default:
		return ErrQueueFull
	}
}

func (d *Dispatcher) laneFor(ctx context.Context) chan job {
	chat := logger.MetaFrom(ctx).ChatID
	if chat < 0 {
		chat = -chat
	}
	return d.lanes[chat%int64(len(d.lanes))]
}

// ErrorCount is the number of jobs that failed for good.
func (d *Dispatcher) ErrorCount() uint64 {
	return d.errs.Load()
}

// Close stops accepting jobs and waits until the queued ones are done.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		for _, lane := range d.lanes {
			close(lane)
		}
	}
	d.mu.Unlock()
	d.wg.Wait()
}

func (d *Dispatcher) work(lane <-chan job) {
	defer d.wg.Done()
	for j := range lane {
		if err := d.process(j); err != nil {
			d.errs.Add(1)
		}
	}
}

// process runs j until it succeeds, fails permanently or exhausts its budget.
func (d *Dispatcher) process(j job) error {
	ctx, cancel := context.WithTimeout(j.ctx, d.opts.MaxDuration)
	defer cancel()

	start := time.Now()
	attempts := d.opts.MaxRetries + 1
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = j.run(); err == nil {
			level := slog.LevelDebug
			if attempt > 1 {
				level = slog.LevelInfo
			}
			logger.LogEvent(j.ctx, logger.Component("tg.sender"), level, "send.success",
				j.attrs(slog.Int("attempt", attempt), slog.Duration("elapsed", time.Since(start)))...)
			return nil
		}
		if attempt == attempts || !netutil.ShouldRetry(err) {
			break
		}
		delay := netutil.Backoff(err, d.opts.RetryBackoff, attempt)
		logger.Debug(j.ctx, "tg.sender", "send.retry",
			j.attrs(slog.Int("attempt", attempt), slog.Duration("delay", delay), slog.String("err_kind", netutil.Kind(err)))...)
		if waitErr := netutil.Sleep(ctx, delay); waitErr != nil {
			err = errors.Join(err, waitErr)
			break
		}
	}

	logger.Error(j.ctx, "tg.sender", "send.fail",
		j.attrs(
			slog.String("err", netutil.Redact(err)),
			slog.String("err_kind", netutil.Kind(err)),
			slog.Int("attempts", attempts),
			slog.Duration("elapsed", time.Since(start)),
		)...)
	return err
}

func (j job) attrs(extra ...slog.Attr) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if j.endpoint != "" {
		attrs = append(attrs, slog.String("endpoint", j.endpoint))
	}
	return append(attrs, extra...)
}
