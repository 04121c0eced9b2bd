package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all tables and indexes. It is idempotent.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createChatMessagesTable(ctx, db); err != nil {
		return err
	}
	return createSearchLogsTable(ctx, db)
}

// Timestamps are unix milliseconds so messages saved in the same second keep
// their order.
func createChatMessagesTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS chat_messages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		role TEXT NOT NULL CHECK (role IN ('user', 'assistant')),
		message TEXT NOT NULL,
		language TEXT NOT NULL DEFAULT 'en',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_session ON chat_messages(session_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_chat_messages_created_at ON chat_messages(created_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create chat_messages table: %w", err)
	}
	return nil
}

func createSearchLogsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS search_logs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		query TEXT NOT NULL,
		translated_query TEXT,
		language TEXT NOT NULL DEFAULT 'en',
		results_count INTEGER NOT NULL DEFAULT 0,
		top_result_url TEXT NOT NULL DEFAULT '',
		top_result_name TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_search_logs_created_at ON search_logs(created_at);
	CREATE INDEX IF NOT EXISTS idx_search_logs_query ON search_logs(query);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create search_logs table: %w", err)
	}
	return nil
}
