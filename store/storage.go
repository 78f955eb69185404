// Package store persists chat history. The backend is chosen from the
// connection URL: a postgres DSN selects the pgx pool, anything else is
// treated as a local SQLite file.
package store

import (
	"context"
	"strings"

	"ragchat/types"
)

// DefaultSQLitePath is used when no connection URL is configured.
const DefaultSQLitePath = "chat_history.db"

// HistoryStorer is the append-only chat history access point.
type HistoryStorer interface {
	Init(ctx context.Context) error
	SaveExchange(ctx context.Context, conversationID, userMessage, assistantReply string) error
	// History returns exchanges in chronological order. An empty
	// conversationID returns all history.
	History(ctx context.Context, conversationID string) ([]types.ChatExchange, error)
	Close() error
}

// Open dispatches on the connection URL scheme.
func Open(ctx context.Context, databaseURL string) (HistoryStorer, error) {
	switch {
	case databaseURL == "":
		return NewSQLiteStore(DefaultSQLitePath)
	case strings.HasPrefix(databaseURL, "postgres://"), strings.HasPrefix(databaseURL, "postgresql://"):
		return NewPostgresStore(ctx, databaseURL)
	case strings.HasPrefix(databaseURL, "sqlite://"):
		return NewSQLiteStore(strings.TrimPrefix(databaseURL, "sqlite://"))
	default:
		return NewSQLiteStore(databaseURL)
	}
}
