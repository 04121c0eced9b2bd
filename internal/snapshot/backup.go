// Package snapshot backs the chat database up to object storage and
// restores it on a fresh instance.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/myschoolct/portal-assistant/internal/errors"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/metrics"
	"github.com/myschoolct/portal-assistant/internal/r2client"
)

// Backup outcomes recorded in metrics.
const (
	StatusSuccess = "success"
	StatusSkipped = "skipped"
	StatusError   = "error"
)

var (
	backupErr  = apperrors.NewWrapper("snapshot", "backup")
	restoreErr = apperrors.NewWrapper("snapshot", "restore")
)

// ObjectStore is where snapshots live. *r2client.Client satisfies it.
type ObjectStore interface {
	Put(ctx context.Context, key string, body io.Reader, contentType string) (string, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
}

// Locker elects the single uploader among instances sharing a bucket.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

// Snapshotter writes a consistent copy of a live database. *storage.DB
// satisfies it.
type Snapshotter interface {
	CreateSnapshot(ctx context.Context, destPath string) error
}

// Config holds manager settings.
type Config struct {
	Key     string // object key, e.g. "snapshots/chat.db.zst"
	TempDir string // scratch space; defaults to os.TempDir()
}

// Manager uploads and restores compressed snapshots.
type Manager struct {
	store   ObjectStore
	lock    Locker
	cfg     Config
	logger  *logger.Logger
	metrics *metrics.Metrics
}

// New creates a manager. lock may be nil for a single instance.
func New(store ObjectStore, lock Locker, cfg Config, log *logger.Logger, m *metrics.Metrics) *Manager {
	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Manager{
		store:   store,
		lock:    lock,
		cfg:     cfg,
		logger:  log.WithModule("snapshot"),
		metrics: m,
	}
}

// Backup uploads a compressed snapshot of db. It returns StatusSkipped,
// without error, when another instance holds the lock.
func (m *Manager) Backup(ctx context.Context, db Snapshotter) (string, error) {
	status, err := m.backup(ctx, db)
	m.metrics.RecordBackup(status)
	return status, err
}

func (m *Manager) backup(ctx context.Context, db Snapshotter) (string, error) {
	if m.lock != nil {
		ok, err := m.lock.Acquire(ctx)
		if err != nil {
			return StatusError, backupErr.Wrap(err, "acquire lock")
		}
		if !ok {
			m.logger.Info("Backup lock held elsewhere, skipping")
			return StatusSkipped, nil
		}
		defer func() {
			if err := m.lock.Release(context.WithoutCancel(ctx)); err != nil {
				m.logger.WithError(err).Warn("Failed to release backup lock")
			}
		}()
	}

	start := time.Now()
	rawPath := filepath.Join(m.cfg.TempDir, fmt.Sprintf("snapshot_%d.db", time.Now().UnixNano()))
	if err := db.CreateSnapshot(ctx, rawPath); err != nil {
		return StatusError, backupErr.Wrap(err, "create snapshot")
	}
	defer os.Remove(rawPath)

	zstPath := rawPath + ".zst"
	if err := compressFile(rawPath, zstPath); err != nil {
		return StatusError, backupErr.Wrap(err, "compress")
	}
	defer os.Remove(zstPath)

	f, err := os.Open(zstPath)
	if err != nil {
		return StatusError, backupErr.Wrap(err, "open compressed snapshot")
	}
	defer f.Close()

	etag, err := m.store.Put(ctx, m.cfg.Key, f, r2client.ContentTypeZstd)
	if err != nil {
		return StatusError, backupErr.Wrap(err, "upload")
	}

	m.logger.WithFields(map[string]any{
		"key":         m.cfg.Key,
		"etag":        etag,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Backup uploaded")
	return StatusSuccess, nil
}

// Restore downloads the latest snapshot to dbPath when no local database
// exists. It reports whether a snapshot was restored.
func (m *Manager) Restore(ctx context.Context, dbPath string) (bool, error) {
	if _, err := os.Stat(dbPath); err == nil {
		return false, nil
	}

	body, etag, err := m.store.Get(ctx, m.cfg.Key)
	if errors.Is(err, r2client.ErrNotFound) {
		m.logger.Info("No backup found, starting with an empty database")
		return false, nil
	}
	if err != nil {
		return false, restoreErr.Wrap(err, "download")
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return false, restoreErr.Wrap(err, "create data dir")
	}
	tmp := dbPath + ".restore"
	if err := decompressFile(body, tmp); err != nil {
		_ = os.Remove(tmp)
		return false, restoreErr.Wrap(err, "decompress")
	}
	if err := os.Rename(tmp, dbPath); err != nil {
		_ = os.Remove(tmp)
		return false, restoreErr.Wrap(err, "replace database")
	}

	m.logger.WithField("etag", etag).Info("Database restored from backup")
	return true, nil
}

func compressFile(srcPath, dstPath string) error {
	src, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if err := r2client.Compress(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

func decompressFile(r io.Reader, dstPath string) error {
	dst, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	if err := r2client.Decompress(dst, r); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
