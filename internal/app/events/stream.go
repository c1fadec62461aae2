package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// StreamPublisher appends events to a Redis stream, trimmed to roughly maxLen entries.
type StreamPublisher struct {
	client redis.Cmdable
	stream string
	maxLen int64
}

func NewStreamPublisher(client redis.Cmdable, stream string, maxLen int64) *StreamPublisher {
	return &StreamPublisher{client: client, stream: stream, maxLen: maxLen}
}

func (p *StreamPublisher) Publish(ctx context.Context, ev Event) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: p.maxLen > 0,
		Values: map[string]interface{}{
			"type":       string(ev.Type),
			"request_id": ev.RequestID,
			"payload":    string(b),
		},
	}).Err()
}

// Close is a no-op; the Redis client is owned by the caller.
func (p *StreamPublisher) Close() error { return nil }
