package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/repository"
)

type memoryHistoryStore struct {
	mu   sync.Mutex
	logs map[string][]domain.Turn
}

// NewMemoryHistoryStore guarda el historial en memoria de proceso. Útil para tests y para el CLI.
func NewMemoryHistoryStore() repository.HistoryRepository {
	return &memoryHistoryStore{
		logs: make(map[string][]domain.Turn),
	}
}

func (s *memoryHistoryStore) Get(_ context.Context, sessionID string) ([]domain.Turn, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	log := s.logs[sessionID]
	out := make([]domain.Turn, len(log))
	copy(out, log)
	return out, nil
}

func (s *memoryHistoryStore) Append(_ context.Context, sessionID string, turns ...domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return repository.ErrBlankSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[sessionID] = append(s.logs[sessionID], turns...)
	return nil
}

func (s *memoryHistoryStore) Replace(_ context.Context, sessionID string, log []domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return repository.ErrBlankSession
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs[sessionID] = append([]domain.Turn(nil), log...)
	return nil
}

func (s *memoryHistoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, sessionID)
	return nil
}

type redisHistoryClient interface {
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	TxPipelined(ctx context.Context, fn func(redis.Pipeliner) error) ([]redis.Cmder, error)
}

type redisHistoryStore struct {
	client redisHistoryClient
	prefix string
	ttl    time.Duration
}

// NewRedisHistoryStore guarda cada log como una lista de Redis con turnos en JSON.
// ttl > 0 hace expirar conversaciones inactivas.
func NewRedisHistoryStore(client *redis.Client, ttl time.Duration) repository.HistoryRepository {
	if client == nil {
		return nil
	}
	return &redisHistoryStore{
		client: client,
		prefix: "chat:history:",
		ttl:    ttl,
	}
}

func (s *redisHistoryStore) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *redisHistoryStore) Get(ctx context.Context, sessionID string) ([]domain.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return []domain.Turn{}, nil
	}
	raw, err := s.client.LRange(ctx, s.key(sessionID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	turns := make([]domain.Turn, 0, len(raw))
	for i, item := range raw {
		var t domain.Turn
		if err := json.Unmarshal([]byte(item), &t); err != nil {
			return nil, fmt.Errorf("decode turn %d: %w", i, err)
		}
		turns = append(turns, t)
	}
	return turns, nil
}

// Append usa un único RPUSH variádico, que Redis aplica de forma atómica.
func (s *redisHistoryStore) Append(ctx context.Context, sessionID string, turns ...domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return repository.ErrBlankSession
	}
	if len(turns) == 0 {
		return nil
	}
	values, err := encodeTurns(turns)
	if err != nil {
		return err
	}
	key := s.key(sessionID)
	if err := s.client.RPush(ctx, key, values...).Err(); err != nil {
		return err
	}
	if s.ttl > 0 {
		return s.client.Expire(ctx, key, s.ttl).Err()
	}
	return nil
}

func (s *redisHistoryStore) Replace(ctx context.Context, sessionID string, log []domain.Turn) error {
	if strings.TrimSpace(sessionID) == "" {
		return repository.ErrBlankSession
	}
	values, err := encodeTurns(log)
	if err != nil {
		return err
	}
	key := s.key(sessionID)
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		if len(values) > 0 {
			pipe.RPush(ctx, key, values...)
			if s.ttl > 0 {
				pipe.Expire(ctx, key, s.ttl)
			}
		}
		return nil
	})
	return err
}

func (s *redisHistoryStore) Clear(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.client.Del(ctx, s.key(sessionID)).Err()
}

func encodeTurns(turns []domain.Turn) ([]interface{}, error) {
	values := make([]interface{}, 0, len(turns))
	for _, t := range turns {
		b, err := json.Marshal(t)
		if err != nil {
			return nil, fmt.Errorf("encode turn: %w", err)
		}
		values = append(values, string(b))
	}
	return values, nil
}
