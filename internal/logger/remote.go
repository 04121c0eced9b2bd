package logger

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultRemoteQueue        = 1024
	defaultRemoteFlushTimeout = 5 * time.Second
)

// RemoteOptions tunes the remote shipping queue.
type RemoteOptions struct {
	QueueSize    int
	FlushTimeout time.Duration
	// OnDrop is called once per record discarded because the queue is full
	// or the sink is already shut down.
	OnDrop func()
}

// pending is a record bound to the derived handler that must render it.
type pending struct {
	ctx     context.Context
	record  slog.Record
	handler slog.Handler
}

// shipper owns the queue and the goroutine draining it. All handlers
// derived from one remoteHandler share it.
type shipper struct {
	mu           sync.RWMutex
	queue        chan pending
	stopped      bool
	done         chan struct{}
	flushTimeout time.Duration
	onDrop       func()
}

func newShipper(opts RemoteOptions) *shipper {
	size := opts.QueueSize
	if size <= 0 {
		size = defaultRemoteQueue
	}
	flush := opts.FlushTimeout
	if flush <= 0 {
		flush = defaultRemoteFlushTimeout
	}
	s := &shipper{
		queue:        make(chan pending, size),
		done:         make(chan struct{}),
		flushTimeout: flush,
		onDrop:       opts.OnDrop,
	}
	go s.drain()
	return s
}

func (s *shipper) drain() {
	defer close(s.done)
	for p := range s.queue {
		// Remote failures cannot be reported anywhere but the local sink,
		// which already has the record.
		_ = p.handler.Handle(p.ctx, p.record)
	}
}

// offer queues p without blocking. The read lock keeps stop from closing
// the queue under a concurrent send.
func (s *shipper) offer(p pending) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.stopped {
		s.drop()
		return
	}
	select {
	case s.queue <- p:
	default:
		s.drop()
	}
}

func (s *shipper) drop() {
	if s.onDrop != nil {
		s.onDrop()
	}
}

func (s *shipper) stop(ctx context.Context) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	close(s.queue)
	s.mu.Unlock()

	timer := time.NewTimer(s.flushTimeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errors.New("remote log flush timed out")
	}
}

// remoteHandler ships records to a slow sink (Better Stack) off the request
// path. ContextHandler has already added session and request IDs by the
// time a record is queued.
type remoteHandler struct {
	sink    slog.Handler
	shipper *shipper
}

func newRemoteHandler(sink slog.Handler, opts RemoteOptions) *remoteHandler {
	return &remoteHandler{sink: sink, shipper: newShipper(opts)}
}

func (h *remoteHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.sink.Enabled(ctx, level)
}

func (h *remoteHandler) Handle(ctx context.Context, r slog.Record) error {
	h.shipper.offer(pending{ctx: context.WithoutCancel(ctx), record: r.Clone(), handler: h.sink})
	return nil
}

func (h *remoteHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &remoteHandler{sink: h.sink.WithAttrs(attrs), shipper: h.shipper}
}

func (h *remoteHandler) WithGroup(name string) slog.Handler {
	return &remoteHandler{sink: h.sink.WithGroup(name), shipper: h.shipper}
}

// Shutdown flushes queued records. Later records are dropped.
func (h *remoteHandler) Shutdown(ctx context.Context) error {
	if h == nil {
		return nil
	}
	return h.shipper.stop(ctx)
}

// teeHandler writes every record to stdout and to the remote sink. Only the
// local write can fail a log call.
type teeHandler struct {
	local  slog.Handler
	remote slog.Handler
}

func (t teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return t.local.Enabled(ctx, level) || t.remote.Enabled(ctx, level)
}

func (t teeHandler) Handle(ctx context.Context, r slog.Record) error {
	if t.remote.Enabled(ctx, r.Level) {
		_ = t.remote.Handle(ctx, r)
	}
	if !t.local.Enabled(ctx, r.Level) {
		return nil
	}
	return t.local.Handle(ctx, r)
}

func (t teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return teeHandler{local: t.local.WithAttrs(attrs), remote: t.remote.WithAttrs(attrs)}
}

func (t teeHandler) WithGroup(name string) slog.Handler {
	return teeHandler{local: t.local.WithGroup(name), remote: t.remote.WithGroup(name)}
}
