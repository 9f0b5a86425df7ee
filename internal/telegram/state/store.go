package state

import (
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Action is what the bot expects from the next plain message of a chat
type Action string

const (
	// ActionIngest: the next text message is indexed instead of asked
	ActionIngest Action = "ingest"
)

// Store keeps per-chat pending actions; they expire after the configured TTL.
type Store struct {
	cache *gocache.Cache
}

func NewStore(ttl time.Duration) *Store {
	return &Store{cache: gocache.New(ttl, 2*ttl)}
}

// SetPending records the action awaited from a chat, replacing any previous one
func (s *Store) SetPending(chatID int64, action Action) {
	s.cache.SetDefault(key(chatID), action)
}

// TakePending returns and forgets the awaited action.
func (s *Store) TakePending(chatID int64) (Action, bool) {
	k := key(chatID)
	v, ok := s.cache.Get(k)
	if !ok {
		return "", false
	}
	s.cache.Delete(k)

	action, ok := v.(Action)
	return action, ok
}

func (s *Store) Clear(chatID int64) {
	s.cache.Delete(key(chatID))
}

func key(chatID int64) string {
	return strconv.FormatInt(chatID, 10)
}
