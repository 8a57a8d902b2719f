package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"medigenius/internal/domain"
)

// ConversationState es la memoria de corto plazo de una sesión.
type ConversationState struct {
	Turns []domain.Turn `json:"turns"`
}

// Push agrega un turno conservando solo los últimos max.
func (s ConversationState) Push(turn domain.Turn, max int) ConversationState {
	turns := append(append([]domain.Turn{}, s.Turns...), turn)
	if max > 0 && len(turns) > max {
		turns = turns[len(turns)-max:]
	}
	return ConversationState{Turns: turns}
}

// StateStore guarda el estado de conversación por sesión.
type StateStore interface {
	Get(ctx context.Context, sessionID string) (ConversationState, error)
	Save(ctx context.Context, sessionID string, state ConversationState) error
	Reset(ctx context.Context, sessionID string) error
}

type memoryStateStore struct {
	mu     sync.Mutex
	states map[string]ConversationState
}

func NewMemoryStateStore() StateStore {
	return &memoryStateStore{states: make(map[string]ConversationState)}
}

func (s *memoryStateStore) Get(_ context.Context, sessionID string) (ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[sessionID], nil
}

func (s *memoryStateStore) Save(_ context.Context, sessionID string, state ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	s.states[sessionID] = state
	return nil
}

func (s *memoryStateStore) Reset(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, sessionID)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisStateStore struct {
	client redisKV
	ttl    time.Duration
	prefix string
}

func NewRedisStateStore(client *redis.Client, ttl time.Duration) StateStore {
	if client == nil {
		return nil
	}
	return newRedisStateStore(client, ttl)
}

func newRedisStateStore(client redisKV, ttl time.Duration) *redisStateStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &redisStateStore{
		client: client,
		ttl:    ttl,
		prefix: "chat:state:",
	}
}

func (s *redisStateStore) Get(ctx context.Context, sessionID string) (ConversationState, error) {
	if strings.TrimSpace(sessionID) == "" {
		return ConversationState{}, nil
	}
	raw, err := s.client.Get(ctx, s.prefix+sessionID).Bytes()
	if errors.Is(err, redis.Nil) {
		return ConversationState{}, nil
	}
	if err != nil {
		return ConversationState{}, err
	}
	var state ConversationState
	if err := json.Unmarshal(raw, &state); err != nil {
		return ConversationState{}, err
	}
	return state, nil
}

func (s *redisStateStore) Save(ctx context.Context, sessionID string, state ConversationState) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.prefix+sessionID, raw, s.ttl).Err()
}

func (s *redisStateStore) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.client.Del(ctx, s.prefix+sessionID).Err()
}
