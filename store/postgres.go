package store

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"ragchat/types"
)

// PostgresStore backs chat history with a pgx connection pool. Selected when
// DATABASE_URL carries a postgres DSN.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, connStr string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS chat_history (
		id BIGSERIAL PRIMARY KEY,
		conversation_id TEXT NOT NULL,
		user_message TEXT NOT NULL,
		assistant_reply TEXT NOT NULL,
		timestamp TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS idx_chat_history_conversation ON chat_history(conversation_id);
	`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *PostgresStore) SaveExchange(ctx context.Context, conversationID, userMessage, assistantReply string) error {
	query := `INSERT INTO chat_history (conversation_id, user_message, assistant_reply)
		VALUES ($1, $2, $3)`
	_, err := p.pool.Exec(ctx, query, conversationID, userMessage, assistantReply)
	return err
}

func (p *PostgresStore) History(ctx context.Context, conversationID string) ([]types.ChatExchange, error) {
	query := `SELECT id, conversation_id, user_message, assistant_reply, timestamp
		FROM chat_history`
	args := []any{}
	if conversationID != "" {
		query += ` WHERE conversation_id = $1`
		args = append(args, conversationID)
	}
	query += ` ORDER BY timestamp, id`

	rows, err := p.pool.Query(ctx, query, args...)
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

// Close shuts down the connection pool.
func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
		slog.Info("postgres connection pool closed")
	}
	return nil
}
