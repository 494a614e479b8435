package flash

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps flash messages in a Redis list per key.
type RedisStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

func NewRedisStore(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisStore {
	if keyPrefix == "" {
		keyPrefix = "quickedit:flash:"
	}
	return &RedisStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

func (s *RedisStore) Push(ctx context.Context, key string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	values := make([]any, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal flash message: %w", err)
		}
		values = append(values, b)
	}

	redisKey := s.keyPrefix + key
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, redisKey, values...)
		if s.ttl > 0 {
			pipe.Expire(ctx, redisKey, s.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("push flash messages to %s: %w", redisKey, err)
	}
	return nil
}

func (s *RedisStore) Pop(ctx context.Context, key string) ([]Message, error) {
	redisKey := s.keyPrefix + key

	var lrange *redis.StringSliceCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, redisKey, 0, -1)
		pipe.Del(ctx, redisKey)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("pop flash messages from %s: %w", redisKey, err)
	}

	msgs := make([]Message, 0, len(lrange.Val()))
	for _, raw := range lrange.Val() {
		var m Message
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			return nil, fmt.Errorf("unmarshal flash message: %w", err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
