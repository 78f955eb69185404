package store

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"ragchat/types"
)

// SQLiteStore is the default, file-backed history store.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		conversation_id TEXT NOT NULL,
		user_message TEXT NOT NULL,
		assistant_reply TEXT NOT NULL,
		timestamp DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_conversation ON chat_history(conversation_id);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

func (s *SQLiteStore) SaveExchange(ctx context.Context, conversationID, userMessage, assistantReply string) error {
	query := `INSERT INTO chat_history (conversation_id, user_message, assistant_reply, timestamp)
		VALUES (?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, conversationID, userMessage, assistantReply, time.Now().UTC())
	return err
}

func (s *SQLiteStore) History(ctx context.Context, conversationID string) ([]types.ChatExchange, error) {
	query := `SELECT id, conversation_id, user_message, assistant_reply, timestamp
		FROM chat_history`
	args := []any{}
	if conversationID != "" {
		query += ` WHERE conversation_id = ?`
		args = append(args, conversationID)
	}
	query += ` ORDER BY timestamp, id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	exchanges := []types.ChatExchange{}
	for rows.Next() {
		var ex types.ChatExchange
		if err := rows.Scan(&ex.ID, &ex.ConversationID, &ex.UserMessage, &ex.AssistantReply, &ex.Timestamp); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, ex)
	}
	return exchanges, rows.Err()
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		slog.Info("sqlite history store closed")
		return s.db.Close()
	}
	return nil
}
