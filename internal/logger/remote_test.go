package logger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
)

// gatedSink blocks every record until gate is closed, so tests can fill the
// shipping queue deterministically.
type gatedSink struct {
	slog.Handler
	entered chan struct{}
	once    *sync.Once
	gate    chan struct{}
}

func (g gatedSink) Handle(ctx context.Context, r slog.Record) error {
	g.once.Do(func() { close(g.entered) })
	<-g.gate
	return g.Handler.Handle(ctx, r)
}

type failingSink struct{ slog.Handler }

func (failingSink) Enabled(context.Context, slog.Level) bool { return true }
func (failingSink) Handle(context.Context, slog.Record) error {
	return errors.New("sink down")
}

func TestRemoteHandler_FlushesOnShutdown(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	remote := newRemoteHandler(slog.NewJSONHandler(&buf, nil), RemoteOptions{QueueSize: 16})
	log := slog.New(remote.WithAttrs([]slog.Attr{slog.String("module", "portal")}))
	for range 5 {
		log.Info("queued")
	}

	if err := remote.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if got := bytes.Count(buf.Bytes(), []byte(`"msg":"queued"`)); got != 5 {
		t.Errorf("flushed %d records, want 5", got)
	}
	if got := bytes.Count(buf.Bytes(), []byte(`"module":"portal"`)); got != 5 {
		t.Errorf("derived attrs on %d records, want 5", got)
	}
	if err := remote.Shutdown(context.Background()); err != nil {
		t.Errorf("second Shutdown() = %v", err)
	}
}

func TestRemoteHandler_ReportsDrops(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	sink := gatedSink{
		Handler: slog.NewJSONHandler(&buf, nil),
		entered: make(chan struct{}),
		once:    &sync.Once{},
		gate:    make(chan struct{}),
	}
	var drops atomic.Int64
	remote := newRemoteHandler(sink, RemoteOptions{QueueSize: 1, OnDrop: func() { drops.Add(1) }})
	log := slog.New(remote)

	log.Info("first")
	<-sink.entered // the shipper is now stuck on "first"
	log.Info("second")
	log.Info("third")
	if got := drops.Load(); got != 1 {
		t.Fatalf("drops with a full queue = %d, want 1", got)
	}

	close(sink.gate)
	if err := remote.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	log.Info("late")
	if got := drops.Load(); got != 2 {
		t.Errorf("drops after shutdown = %d, want 2", got)
	}
	if bytes.Contains(buf.Bytes(), []byte("third")) || !bytes.Contains(buf.Bytes(), []byte("second")) {
		t.Errorf("unexpected shipped records: %s", buf.String())
	}
}

func TestTeeHandler(t *testing.T) {
	t.Parallel()

	var local, shipped bytes.Buffer
	remote := newRemoteHandler(slog.NewJSONHandler(&shipped, &slog.HandlerOptions{Level: slog.LevelWarn}), RemoteOptions{})
	tee := teeHandler{
		local:  slog.NewJSONHandler(&local, &slog.HandlerOptions{Level: slog.LevelDebug}),
		remote: remote,
	}
	log := slog.New(tee.WithGroup("req").WithAttrs([]slog.Attr{slog.String("id", "r1")}))

	log.Debug("detail")
	log.Warn("slow portal")
	if err := remote.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}

	if bytes.Count(local.Bytes(), []byte("\n")) != 2 {
		t.Errorf("local sink should get both records, got %q", local.String())
	}
	if bytes.Contains(shipped.Bytes(), []byte("detail")) || !bytes.Contains(shipped.Bytes(), []byte(`"req":{"id":"r1"}`)) {
		t.Errorf("remote sink should only get the warning with its group, got %q", shipped.String())
	}
}

func TestTeeHandler_RemoteFailureIsSilent(t *testing.T) {
	t.Parallel()

	var local bytes.Buffer
	remote := newRemoteHandler(failingSink{}, RemoteOptions{})
	tee := teeHandler{local: slog.NewJSONHandler(&local, nil), remote: remote}

	if err := tee.Handle(context.Background(), slog.Record{Message: "x"}); err != nil {
		t.Errorf("Handle() = %v, want nil", err)
	}
	if err := remote.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() = %v", err)
	}
	if local.Len() == 0 {
		t.Error("local sink should still receive the record")
	}
}
