package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrNotFound is returned when a key is absent or has expired.
var ErrNotFound = errors.New("key not found")

type Client struct {
	rdb *redis.Client
}

type ChatMessage struct {
	Role      string    `json:"role"` // user, model
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type ChatSession struct {
	ID               string        `json:"id"`
	UserID           uint          `json:"user_id"`
	PromptCategoryID uint          `json:"prompt_category_id"`
	Messages         []ChatMessage `json:"messages"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

func Initialize(redisURL string) (*Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	rdb := redis.NewClient(opt)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Chat session management
func (c *Client) SetChatSession(ctx context.Context, session *ChatSession, ttl time.Duration) error {
	jsonData, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal chat session: %w", err)
	}

	return c.rdb.Set(ctx, "chat:"+session.ID, jsonData, ttl).Err()
}

func (c *Client) GetChatSession(ctx context.Context, sessionID string) (*ChatSession, error) {
	val, err := c.rdb.Get(ctx, "chat:"+sessionID).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get chat session: %w", err)
	}

	var session ChatSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal chat session: %w", err)
	}

	return &session, nil
}

func (c *Client) DeleteChatSession(ctx context.Context, sessionID string) error {
	return c.rdb.Del(ctx, "chat:"+sessionID).Err()
}

// Read-through cache
func (c *Client) SetCached(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	jsonData, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cached value: %w", err)
	}

	return c.rdb.Set(ctx, "cache:"+key, jsonData, ttl).Err()
}

func (c *Client) GetCached(ctx context.Context, key string, dest interface{}) error {
	val, err := c.rdb.Get(ctx, "cache:"+key).Result()
	if err != nil {
		if err == redis.Nil {
			return ErrNotFound
		}
		return fmt.Errorf("failed to get cached value: %w", err)
	}

	return json.Unmarshal([]byte(val), dest)
}

func (c *Client) DeleteCached(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, "cache:"+key).Err()
}

// Close Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
