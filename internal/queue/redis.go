package queue

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisPublisher publishes status updates onto a Redis stream. Stream entries
// are consumer-acknowledged, which gives the at-least-once delivery the
// downstream consumer expects.
type RedisPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisPublisher creates a publisher writing to the given stream.
func NewRedisPublisher(client *redis.Client, stream string) *RedisPublisher {
	return &RedisPublisher{client: client, stream: stream}
}

// Publish appends the message to the stream and returns the stream entry ID.
func (p *RedisPublisher) Publish(ctx context.Context, body []byte, groupKey, dedupKey string) (string, error) {
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]any{
			"body":      body,
			"group_key": groupKey,
			"dedup_key": dedupKey,
		},
	}).Result()
}

// Ensure the concrete type implements the interface.
var _ Publisher = (*RedisPublisher)(nil)
