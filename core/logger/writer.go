package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

var errWriterClosed = errors.New("logger: writer closed")

// asyncWriter moves formatting off the caller: lines are queued and a single
// goroutine writes them to every sink, flushing whenever the queue drains.
type asyncWriter struct {
	lines   chan []byte
	flushes chan chan error
	done    chan struct{}

	// closeMu guards sends on lines against Close.
	closeMu sync.RWMutex
	closed  bool

	out *bufio.Writer

	errMu sync.Mutex
	err   error
}

func newAsyncWriter(sinks []io.Writer, bufSize int) *asyncWriter {
	if bufSize <= 0 {
		bufSize = 64 * 1024
	}
	live := make([]io.Writer, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	w := &asyncWriter{
		lines:   make(chan []byte, 256),
		flushes: make(chan chan error),
		done:    make(chan struct{}),
		out:     bufio.NewWriterSize(io.MultiWriter(live...), bufSize),
	}
	go w.run()
	return w
}

func (w *asyncWriter) run() {
	defer close(w.done)
	for {
		select {
		case line, ok := <-w.lines:
			if !ok {
				w.fail(w.out.Flush())
				return
			}
			if _, err := w.out.Write(line); err != nil {
				w.fail(err)
			}
			if len(w.lines) == 0 {
				w.fail(w.out.Flush())
			}
		case ack := <-w.flushes:
			for drained := false; !drained; {
				select {
				case line := <-w.lines:
					if _, err := w.out.Write(line); err != nil {
						w.fail(err)
					}
				default:
					drained = true
				}
			}
			ack <- w.out.Flush()
		}
	}
}

// Write queues a copy of p. It blocks while the queue is full.
func (w *asyncWriter) Write(p []byte) error {
	if err := w.firstErr(); err != nil {
		return err
	}
	if len(p) == 0 {
		return nil
	}
	line := append([]byte(nil), p...)

	w.closeMu.RLock()
	defer w.closeMu.RUnlock()
	if w.closed {
		return errWriterClosed
	}
	w.lines <- line
	return nil
}

// Flush writes every queued line and flushes the sinks.
func (w *asyncWriter) Flush() error {
	w.closeMu.RLock()
	if w.closed {
		w.closeMu.RUnlock()
		return w.firstErr()
	}
	ack := make(chan error, 1)
	w.flushes <- ack
	w.closeMu.RUnlock()
	if err := <-ack; err != nil {
		return err
	}
	return w.firstErr()
}

// Close drains the queue, stops the writer goroutine and reports the first write error.
func (w *asyncWriter) Close() error {
	w.closeMu.Lock()
	if !w.closed {
		w.closed = true
		close(w.lines)
	}
	w.closeMu.Unlock()
	<-w.done
	return w.firstErr()
}

func (w *asyncWriter) fail(err error) {
	if err == nil {
		return
	}
	w.errMu.Lock()
	defer w.errMu.Unlock()
	if w.err == nil {
		w.err = err
	}
}

func (w *asyncWriter) firstErr() error {
	w.errMu.Lock()
	defer w.errMu.Unlock()
	return w.err
}
