package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"post-bot/internal/model"
)

// Compile-time check to ensure RedisStore implements Store
var _ Store = (*RedisStore)(nil)

// draftKeyTTL ограничивает время жизни брошенных черновиков во внешнем кеше.
const draftKeyTTL = 24 * time.Hour

// RedisStore хранит черновики во внешнем кеше, JSON-документ на пользователя.
// Семантика та же, что у MemoryStore; включается настройкой REDIS_ADDR.
type RedisStore struct {
	client *redis.Client
	logger zerolog.Logger
}

func NewRedisStore(client *redis.Client, logger zerolog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger.With().Str("component", "redis_store").Logger(),
	}
}

func draftKey(userID int64) string {
	return fmt.Sprintf("draft:%d", userID)
}

func (s *RedisStore) Get(ctx context.Context, userID int64) (*model.DraftPost, error) {
	data, err := s.client.Get(ctx, draftKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, model.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get draft: %w", err)
	}
	var post model.DraftPost
	if err := json.Unmarshal(data, &post); err != nil {
		// Битая запись равносильна отсутствию сессии, но след оставляем в логе.
		s.logger.Error().Err(err).Int64("user_id", userID).Msg("corrupted draft in redis, dropping")
		_ = s.client.Del(ctx, draftKey(userID)).Err()
		return nil, model.ErrSessionNotFound
	}
	return &post, nil
}

func (s *RedisStore) Put(ctx context.Context, post *model.DraftPost) error {
	data, err := json.Marshal(post)
	if err != nil {
		return fmt.Errorf("marshal draft: %w", err)
	}
	if err := s.client.Set(ctx, draftKey(post.UserID), data, draftKeyTTL).Err(); err != nil {
		return fmt.Errorf("redis set draft: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, userID int64) error {
	if err := s.client.Del(ctx, draftKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis del draft: %w", err)
	}
	return nil
}
