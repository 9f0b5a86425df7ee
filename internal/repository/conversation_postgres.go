package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/futig/rafiq-frontend/internal/entity"
)

const (
	getConversationQuery = `
SELECT data FROM conversations
WHERE id = $1 AND updated_at > $2`

	upsertConversationQuery = `
INSERT INTO conversations (id, data, created_at, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = EXCLUDED.updated_at`

	deleteConversationQuery = `DELETE FROM conversations WHERE id = $1`

	deleteExpiredConversationsQuery = `DELETE FROM conversations WHERE updated_at <= $1`
)

// Querier is the part of *pgxpool.Pool the repository uses
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ConversationPostgresRepository stores each conversation as one JSONB row
type ConversationPostgresRepository struct {
	db  Querier
	ttl time.Duration
}

func NewConversationPostgresRepository(db Querier, ttl time.Duration) *ConversationPostgresRepository {
	return &ConversationPostgresRepository{
		db:  db,
		ttl: ttl,
	}
}

func (r *ConversationPostgresRepository) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	var data []byte
	err := r.db.QueryRow(ctx, getConversationQuery, id, r.cutoff()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, entity.ErrConversationNotFound
		}
		return nil, fmt.Errorf("query conversation: %w", err)
	}

	var conv entity.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}

func (r *ConversationPostgresRepository) Save(ctx context.Context, conv *entity.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	if _, err := r.db.Exec(ctx, upsertConversationQuery, conv.ID, data, conv.CreatedAt, conv.UpdatedAt); err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}
	return nil
}

func (r *ConversationPostgresRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.Exec(ctx, deleteConversationQuery, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// DeleteExpired removes conversations idle for longer than the TTL
func (r *ConversationPostgresRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, deleteExpiredConversationsQuery, r.cutoff())
	if err != nil {
		return 0, fmt.Errorf("delete expired conversations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ConversationPostgresRepository) cutoff() time.Time {
	return time.Now().UTC().Add(-r.ttl)
}
