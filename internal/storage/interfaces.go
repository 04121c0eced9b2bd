package storage

import (
	"context"
	"time"
)

// ChatStore persists chat transcripts.
type ChatStore interface {
	SaveChatMessage(ctx context.Context, msg *ChatMessage) error
	GetChatHistory(ctx context.Context, sessionID string, limit int) ([]ChatMessage, error)
}

// AnalyticsStore persists and summarizes search analytics.
type AnalyticsStore interface {
	LogSearchQuery(ctx context.Context, entry *SearchLog) error
	TopQueries(ctx context.Context, since time.Time, prefix string, limit int) ([]QueryStat, error)
}

// Store is everything the assistant persists.
type Store interface {
	ChatStore
	AnalyticsStore
}

var _ Store = (*DB)(nil)
