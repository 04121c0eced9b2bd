package storage

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/myschoolct/portal-assistant/internal/errors"
)

// DefaultHistoryLimit is how many messages GetChatHistory returns by default.
const DefaultHistoryLimit = 20

// SaveChatMessage stores one chat message. A zero CreatedAt is set to now.
func (db *DB) SaveChatMessage(ctx context.Context, msg *ChatMessage) error {
	if strings.TrimSpace(msg.SessionID) == "" {
		return errors.NewValidationError("session_id", "must not be empty")
	}
	if msg.Role != RoleUser && msg.Role != RoleAssistant {
		return errors.NewValidationError("role", fmt.Sprintf("unknown role %q", msg.Role))
	}
	if msg.Language == "" {
		msg.Language = "en"
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
		INSERT INTO chat_messages (session_id, role, message, language, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := db.conn.ExecContext(ctx, query,
		msg.SessionID, msg.Role, msg.Message, msg.Language, msg.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save chat message: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		msg.ID = id
	}
	return nil
}

// GetChatHistory returns the latest limit messages of a session, oldest first.
// limit <= 0 uses DefaultHistoryLimit.
func (db *DB) GetChatHistory(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	query := `
		SELECT id, session_id, role, message, language, created_at
		FROM chat_messages
		WHERE session_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`
	rows, err := db.conn.QueryContext(ctx, query, sessionID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var messages []ChatMessage
	for rows.Next() {
		var (
			m         ChatMessage
			createdAt int64
		)
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Role, &m.Message, &m.Language, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat message: %w", err)
		}
		m.CreatedAt = time.UnixMilli(createdAt)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate chat history: %w", err)
	}

	slices.Reverse(messages)
	return messages, nil
}

// LogSearchQuery stores one analytics record. A zero CreatedAt is set to now.
func (db *DB) LogSearchQuery(ctx context.Context, entry *SearchLog) error {
	if strings.TrimSpace(entry.Query) == "" {
		return errors.NewValidationError("query", "must not be empty")
	}
	if entry.Language == "" {
		entry.Language = "en"
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	var translated sql.NullString
	if entry.TranslatedQuery != "" {
		translated = sql.NullString{String: entry.TranslatedQuery, Valid: true}
	}

	query := `
		INSERT INTO search_logs (session_id, query, translated_query, language,
			results_count, top_result_url, top_result_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	res, err := db.conn.ExecContext(ctx, query,
		entry.SessionID, entry.Query, translated, entry.Language,
		entry.ResultsCount, entry.TopResultURL, entry.TopResultName, entry.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to log search query: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		entry.ID = id
	}
	return nil
}

// GetSearchLogs returns a session's search records, oldest first.
func (db *DB) GetSearchLogs(ctx context.Context, sessionID string) ([]SearchLog, error) {
	query := `
		SELECT id, session_id, query, translated_query, language,
			results_count, top_result_url, top_result_name, created_at
		FROM search_logs
		WHERE session_id = ?
		ORDER BY created_at, id
	`
	rows, err := db.conn.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query search logs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var logs []SearchLog
	for rows.Next() {
		var (
			l          SearchLog
			translated sql.NullString
			createdAt  int64
		)
		if err := rows.Scan(&l.ID, &l.SessionID, &l.Query, &translated, &l.Language,
			&l.ResultsCount, &l.TopResultURL, &l.TopResultName, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan search log: %w", err)
		}
		l.TranslatedQuery = translated.String
		l.CreatedAt = time.UnixMilli(createdAt)
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

// TopQueries returns the most frequent search queries since the given time.
// A non-empty prefix restricts results to queries starting with it.
func (db *DB) TopQueries(ctx context.Context, since time.Time, prefix string, limit int) ([]QueryStat, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT query, COUNT(*) AS n, AVG(results_count), MAX(created_at)
		FROM search_logs
		WHERE created_at >= ? AND query LIKE ? ESCAPE '\'
		GROUP BY query
		ORDER BY n DESC, MAX(created_at) DESC
		LIMIT ?
	`
	pattern := sanitizeSearchTerm(strings.ToLower(prefix)) + "%"
	rows, err := db.conn.QueryContext(ctx, query, since.UnixMilli(), pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top searches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stats []QueryStat
	for rows.Next() {
		var (
			s        QueryStat
			lastSeen int64
		)
		if err := rows.Scan(&s.Query, &s.Count, &s.AvgResults, &lastSeen); err != nil {
			return nil, fmt.Errorf("failed to scan query stat: %w", err)
		}
		s.LastSeen = time.UnixMilli(lastSeen)
		stats = append(stats, s)
	}
	return stats, rows.Err()
}

// CountChatMessages returns the number of stored chat messages.
func (db *DB) CountChatMessages(ctx context.Context) (int64, error) {
	return db.count(ctx, "chat_messages")
}

// CountSearchLogs returns the number of stored search records.
func (db *DB) CountSearchLogs(ctx context.Context) (int64, error) {
	return db.count(ctx, "search_logs")
}

func (db *DB) count(ctx context.Context, table string) (int64, error) {
	var n int64
	// table is one of the fixed names above
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return n, nil
}

// DeleteOlderThan removes chat messages and search logs created before cutoff.
func (db *DB) DeleteOlderThan(ctx context.Context, cutoff time.Time) (messages, logs int64, err error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to begin cleanup: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, "DELETE FROM chat_messages WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete chat messages: %w", err)
	}
	messages, _ = res.RowsAffected()

	res, err = tx.ExecContext(ctx, "DELETE FROM search_logs WHERE created_at < ?", cutoff.UnixMilli())
	if err != nil {
		return 0, 0, fmt.Errorf("failed to delete search logs: %w", err)
	}
	logs, _ = res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("failed to commit cleanup: %w", err)
	}
	return messages, logs, nil
}
