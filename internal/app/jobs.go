package app

import (
	"context"
	"time"

	"github.com/myschoolct/portal-assistant/internal/config"
)

// startBackgroundJobs starts all background goroutines tracked by wg.
func (a *Application) startBackgroundJobs(ctx context.Context) {
	a.wg.Go(func() {
		a.retentionCleanup(ctx)
	})
	a.wg.Go(func() {
		a.updateStoredRowMetrics(ctx)
	})
	if a.backup != nil {
		a.wg.Go(func() {
			a.periodicBackup(ctx)
		})
	}
}

// retentionCleanup deletes old chat rows and search logs, first after
// DataCleanupInitialDelay and then every DataCleanupInterval.
func (a *Application) retentionCleanup(ctx context.Context) {
	if a.cfg.ChatRetention == 0 {
		a.logger.Info("Chat retention disabled; keeping history forever")
		return
	}
	a.logger.Debug("Retention cleanup job started")
	defer a.logger.Debug("Retention cleanup job stopped")

	select {
	case <-ctx.Done():
		return
	case <-time.After(config.DataCleanupInitialDelay):
		a.runRetentionCleanup(ctx)
	}

	ticker := time.NewTicker(a.cfg.DataCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runRetentionCleanup(ctx)
		}
	}
}

func (a *Application) runRetentionCleanup(ctx context.Context) {
	start := time.Now()
	cutoff := start.Add(-a.cfg.ChatRetention)

	messages, logs, err := a.db.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		a.logger.WithError(err).Error("Retention cleanup failed")
		return
	}
	a.logger.WithFields(map[string]any{
		"cutoff":           cutoff.Format(time.RFC3339),
		"deleted_messages": messages,
		"deleted_logs":     logs,
		"duration_ms":      time.Since(start).Milliseconds(),
	}).Info("Retention cleanup completed")

	a.recordStoredRows(ctx)
}

// updateStoredRowMetrics refreshes the row-count gauges periodically.
func (a *Application) updateStoredRowMetrics(ctx context.Context) {
	a.recordStoredRows(ctx)

	ticker := time.NewTicker(config.MetricsUpdateInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.recordStoredRows(ctx)
		}
	}
}

func (a *Application) recordStoredRows(ctx context.Context) {
	if a.metrics == nil {
		return
	}
	if n, err := a.db.CountChatMessages(ctx); err == nil {
		a.metrics.SetStoredRows("chat_messages", n)
	} else {
		a.logger.WithError(err).Warn("Failed to count chat messages")
	}
	if n, err := a.db.CountSearchLogs(ctx); err == nil {
		a.metrics.SetStoredRows("search_logs", n)
	} else {
		a.logger.WithError(err).Warn("Failed to count search logs")
	}
}

// periodicBackup uploads a snapshot every R2BackupInterval.
func (a *Application) periodicBackup(ctx context.Context) {
	ticker := time.NewTicker(a.cfg.R2BackupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.runBackup(ctx)
		}
	}
}

func (a *Application) runBackup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, config.R2SnapshotUpload)
	defer cancel()

	if _, err := a.backup.Backup(ctx, a.db); err != nil {
		a.logger.WithError(err).Error("Database backup failed")
	}
}
