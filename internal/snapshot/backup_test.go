package snapshot

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/myschoolct/portal-assistant/internal/metrics"
	"github.com/myschoolct/portal-assistant/internal/r2client"
	"github.com/myschoolct/portal-assistant/internal/storage"
)

const testKey = "snapshots/chat.db.zst"

type failingSnapshotter struct{}

func (failingSnapshotter) CreateSnapshot(context.Context, string) error {
	return errors.New("disk full")
}

func seededDB(t *testing.T, path string) *storage.DB {
	t.Helper()
	db, err := storage.New(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.SaveChatMessage(context.Background(), &storage.ChatMessage{
		SessionID: "s1",
		Role:      storage.RoleUser,
		Message:   "lion pictures",
		Language:  "en",
	}))
	return db
}

func TestBackupAndRestore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	dir := t.TempDir()

	store := r2client.NewMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	mgr := New(store, r2client.NewLock(store, "locks/backup.lock", time.Minute),
		Config{Key: testKey, TempDir: dir}, nil, m)

	db := seededDB(t, filepath.Join(dir, "live.db"))

	status, err := mgr.Backup(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, status)
	assert.ElementsMatch(t, []string{testKey}, store.Keys(), "lock released and temp files not uploaded")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues(StatusSuccess)))

	restoredPath := filepath.Join(dir, "fresh", "chat.db")
	restored, err := mgr.Restore(ctx, restoredPath)
	require.NoError(t, err)
	require.True(t, restored)

	fresh, err := storage.New(ctx, restoredPath)
	require.NoError(t, err)
	defer fresh.Close()

	history, err := fresh.GetChatHistory(ctx, "s1", 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "lion pictures", history[0].Message)
}

func TestBackup_SkippedWhenLocked(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	store := r2client.NewMemoryStore()

	other := r2client.NewLock(store, "lock", time.Minute)
	ok, err := other.Acquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)

	m := metrics.New(prometheus.NewRegistry())
	mgr := New(store, r2client.NewLock(store, "lock", time.Minute), Config{Key: testKey, TempDir: t.TempDir()}, nil, m)

	status, err := mgr.Backup(ctx, failingSnapshotter{})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, status)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues(StatusSkipped)))
}

func TestBackup_SnapshotError(t *testing.T) {
	t.Parallel()
	store := r2client.NewMemoryStore()
	m := metrics.New(prometheus.NewRegistry())
	mgr := New(store, nil, Config{Key: testKey, TempDir: t.TempDir()}, nil, m)

	status, err := mgr.Backup(context.Background(), failingSnapshotter{})
	assert.Error(t, err)
	assert.Equal(t, StatusError, status)
	assert.Empty(t, store.Keys())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BackupsTotal.WithLabelValues(StatusError)))
}

func TestRestore(t *testing.T) {
	t.Parallel()

	t.Run("no backup", func(t *testing.T) {
		t.Parallel()
		mgr := New(r2client.NewMemoryStore(), nil, Config{Key: testKey}, nil, nil)
		restored, err := mgr.Restore(context.Background(), filepath.Join(t.TempDir(), "chat.db"))
		require.NoError(t, err)
		assert.False(t, restored)
	})

	t.Run("local database wins", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "chat.db")
		require.NoError(t, os.WriteFile(path, []byte("local"), 0o644))

		mgr := New(r2client.NewMemoryStore(), nil, Config{Key: testKey}, nil, nil)
		restored, err := mgr.Restore(context.Background(), path)
		require.NoError(t, err)
		assert.False(t, restored)

		data, _ := os.ReadFile(path)
		assert.Equal(t, "local", string(data))
	})
}
