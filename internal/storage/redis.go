package storage

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"greek-irini/internal/domain"
)

// RedisStore keeps entity snapshots and per-session browser state. Snapshots
// never expire; carts and session keys live for TTL since the last write.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) SnapshotKey(entity domain.Entity) string {
	return "snapshot:" + string(entity)
}

func (s *RedisStore) CartKey(sessionID string) string {
	return "cart:" + sessionID
}

func (s *RedisStore) sessionKey(sessionID, field string) string {
	return "session:" + sessionID + ":" + field
}

func (s *RedisStore) SaveSnapshot(ctx context.Context, entity domain.Entity, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.SnapshotKey(entity), payload, 0).Err()
}

// LoadSnapshot decodes the stored snapshot into dst. It reports false when
// nothing was saved yet.
func (s *RedisStore) LoadSnapshot(ctx context.Context, entity domain.Entity, dst any) (bool, error) {
	raw, err := s.Client.Get(ctx, s.SnapshotKey(entity)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisStore) LoadCart(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	raw, err := s.Client.Get(ctx, s.CartKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

func (s *RedisStore) SaveCart(ctx context.Context, sessionID string, lines []domain.CartLine) error {
	if len(lines) == 0 {
		return s.DeleteCart(ctx, sessionID)
	}
	payload, err := json.Marshal(lines)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.CartKey(sessionID), payload, s.TTL).Err()
}

func (s *RedisStore) DeleteCart(ctx context.Context, sessionID string) error {
	return s.Client.Del(ctx, s.CartKey(sessionID)).Err()
}

// Language returns Dutch for sessions that never picked a language.
func (s *RedisStore) Language(ctx context.Context, sessionID string) (domain.Language, error) {
	v, err := s.Client.Get(ctx, s.sessionKey(sessionID, "lang")).Result()
	if errors.Is(err, redis.Nil) {
		return domain.LangDutch, nil
	}
	if err != nil {
		return domain.LangDutch, err
	}
	lang, ok := domain.ParseLanguage(v)
	if !ok {
		return domain.LangDutch, nil
	}
	return lang, nil
}

func (s *RedisStore) SetLanguage(ctx context.Context, sessionID string, lang domain.Language) error {
	return s.Client.Set(ctx, s.sessionKey(sessionID, "lang"), string(lang), s.TTL).Err()
}

func (s *RedisStore) CurrentOrder(ctx context.Context, sessionID string) (string, error) {
	v, err := s.Client.Get(ctx, s.sessionKey(sessionID, "order")).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return v, err
}

func (s *RedisStore) SetCurrentOrder(ctx context.Context, sessionID, orderID string) error {
	return s.Client.Set(ctx, s.sessionKey(sessionID, "order"), orderID, s.TTL).Err()
}
