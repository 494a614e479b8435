// Package flash keeps short-lived notices ("Property X has been changed.")
// that a later page render can pick up.
package flash

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"quickedit/internal/config"
)

const (
	TypeSuccess = "success"
	TypeInfo    = "info"
	TypeWarning = "warning"
	TypeError   = "error"
)

type Message struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// Store persists flash messages per key until they are popped or expire.
type Store interface {
	// Push appends messages to the key's queue and refreshes its TTL.
	Push(ctx context.Context, key string, msgs ...Message) error
	// Pop returns and removes all messages queued for the key.
	Pop(ctx context.Context, key string) ([]Message, error)
	Close() error
}

// Bag collects the messages raised while handling one request.
type Bag struct {
	messages []Message
}

// Add appends a message to the bag.
func (b *Bag) Add(msg, typ string) {
	b.messages = append(b.messages, Message{Message: msg, Type: typ})
}

// Messages returns the collected messages, never nil.
func (b *Bag) Messages() []Message {
	if b.messages == nil {
		return []Message{}
	}
	return b.messages
}

// New builds the store selected by cfg.Driver.
func New(ctx context.Context, cfg config.FlashConfig) (Store, error) {
	ttl := time.Duration(cfg.TTLSeconds) * time.Second
	switch cfg.Driver {
	case "", "memory":
		return NewMemoryStore(ttl), nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("ping redis %s: %w", cfg.RedisAddr, err)
		}
		return NewRedisStore(client, cfg.KeyPrefix, ttl), nil
	default:
		return nil, fmt.Errorf("unknown flash driver %q", cfg.Driver)
	}
}
