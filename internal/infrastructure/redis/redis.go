package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	*redis.Client
}

func NewClient(addr string) *Client {
	return &Client{Client: redis.NewClient(&redis.Options{Addr: addr})}
}

var ErrNotFound = errors.New("key not found")

// GetJSON reads a key and unmarshals its value into out. A missing key is
// reported as ErrNotFound so callers can treat it as plain absence.
func (c *Client) GetJSON(ctx context.Context, key string, out any) error {
	payload, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}

		return fmt.Errorf("client.Get: %w", err)
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("json.Unmarshal: %w", err)
	}

	return nil
}

func (c *Client) SetJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	if err := c.Client.Set(ctx, key, payload, 0).Err(); err != nil {
		return fmt.Errorf("client.Set: %w", err)
	}

	return nil
}
