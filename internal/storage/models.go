package storage

import "time"

// Chat roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one side of a chat exchange.
type ChatMessage struct {
	ID        int64
	SessionID string
	Role      string
	Message   string
	Language  string
	CreatedAt time.Time
}

// SearchLog is the analytics record written for every search.
type SearchLog struct {
	ID        int64
	SessionID string
	Query     string
	// TranslatedQuery is empty when the working query equals the message.
	TranslatedQuery string
	Language        string
	ResultsCount    int
	TopResultURL    string
	TopResultName   string
	CreatedAt       time.Time
}

// QueryStat aggregates search logs by query text.
type QueryStat struct {
	Query      string    `json:"query"`
	Count      int       `json:"count"`
	AvgResults float64   `json:"avg_results"`
	LastSeen   time.Time `json:"last_seen"`
}
