package repository

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/futig/rafiq-frontend/internal/entity"
)

// ConversationMemoryRepository keeps conversations in process memory until they expire
type ConversationMemoryRepository struct {
	cache *cache.Cache
}

func NewConversationMemoryRepository(ttl, cleanupInterval time.Duration) *ConversationMemoryRepository {
	return &ConversationMemoryRepository{
		cache: cache.New(ttl, cleanupInterval),
	}
}

func (r *ConversationMemoryRepository) Get(_ context.Context, id string) (*entity.Conversation, error) {
	v, ok := r.cache.Get(id)
	if !ok {
		return nil, entity.ErrConversationNotFound
	}
	conv, ok := v.(*entity.Conversation)
	if !ok {
		return nil, entity.ErrConversationNotFound
	}
	return conv.Clone(), nil
}

// Save stores a copy, so later changes by the caller are not visible until the next Save.
func (r *ConversationMemoryRepository) Save(_ context.Context, conv *entity.Conversation) error {
	r.cache.SetDefault(conv.ID, conv.Clone())
	return nil
}

func (r *ConversationMemoryRepository) Delete(_ context.Context, id string) error {
	r.cache.Delete(id)
	return nil
}

func (r *ConversationMemoryRepository) Count() int {
	return r.cache.ItemCount()
}
