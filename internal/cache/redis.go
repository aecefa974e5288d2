package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// JSON stores JSON-encoded values in Redis under a common key prefix.
type JSON struct {
	client *redis.Client
	prefix string
}

// Open parses a redis:// URL and pings the server.
func Open(ctx context.Context, url, prefix string) (*JSON, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &JSON{client: client, prefix: prefix}, nil
}

func (c *JSON) key(name string) string {
	if c.prefix == "" {
		return name
	}
	return c.prefix + ":" + name
}

// Get decodes the value at name into dest. A missing key reports false.
func (c *JSON) Get(ctx context.Context, name string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(name)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, json.Unmarshal(data, dest)
}

func (c *JSON) Set(ctx context.Context, name string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(name), data, ttl).Err()
}

func (c *JSON) Delete(ctx context.Context, name string) error {
	return c.client.Del(ctx, c.key(name)).Err()
}

// Publish sends message on the prefixed channel.
func (c *JSON) Publish(ctx context.Context, channel, message string) error {
	return c.client.Publish(ctx, c.key(channel), message).Err()
}

// Listen subscribes to the prefixed channel. The subscription is confirmed
// before Listen returns; closeFn ends it and closes the message channel.
func (c *JSON) Listen(ctx context.Context, channel string) (<-chan string, func() error, error) {
	sub := c.client.Subscribe(ctx, c.key(channel))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, err
	}
	msgs := sub.Channel()
	out := make(chan string)
	go func() {
		defer close(out)
		for msg := range msgs {
			select {
			case out <- msg.Payload:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, sub.Close, nil
}

func (c *JSON) Close() error {
	return c.client.Close()
}
