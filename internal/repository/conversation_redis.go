package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/futig/rafiq-frontend/internal/entity"
)

// ConversationRedisRepository stores conversations as JSON strings with a TTL
type ConversationRedisRepository struct {
	client    rueidis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewConversationRedisRepository(client rueidis.Client, keyPrefix string, ttl time.Duration) *ConversationRedisRepository {
	return &ConversationRedisRepository{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (r *ConversationRedisRepository) key(id string) string {
	return r.keyPrefix + id
}

func (r *ConversationRedisRepository) Get(ctx context.Context, id string) (*entity.Conversation, error) {
	cmd := r.client.B().Get().Key(r.key(id)).Build()
	data, err := r.client.Do(ctx, cmd).AsBytes()
	if err != nil {
		if rueidis.IsRedisNil(err) {
			return nil, entity.ErrConversationNotFound
		}
		return nil, fmt.Errorf("get conversation: %w", err)
	}

	var conv entity.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, fmt.Errorf("decode conversation: %w", err)
	}
	return &conv, nil
}

func (r *ConversationRedisRepository) Save(ctx context.Context, conv *entity.Conversation) error {
	data, err := json.Marshal(conv)
	if err != nil {
		return fmt.Errorf("encode conversation: %w", err)
	}

	cmd := r.client.B().Set().Key(r.key(conv.ID)).Value(string(data)).Ex(r.ttl).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("set conversation: %w", err)
	}
	return nil
}

func (r *ConversationRedisRepository) Delete(ctx context.Context, id string) error {
	cmd := r.client.B().Del().Key(r.key(id)).Build()
	if err := r.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	return nil
}

// Ping checks connectivity.
func (r *ConversationRedisRepository) Ping(ctx context.Context) error {
	if err := r.client.Do(ctx, r.client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}
