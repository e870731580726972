package broadcast

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "easel:board:"

// Redis fans messages out through Redis pub/sub so every node serving
// connections for a board sees the same stream.
type Redis struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedis(client *redis.Client, logger *slog.Logger) *Redis {
	return &Redis{client: client, logger: logger}
}

func (b *Redis) Publish(ctx context.Context, boardUID, event string, data json.RawMessage) error {
	payload, err := json.Marshal(Message{Board: boardUID, Event: event, Data: data})
	if err != nil {
		return fmt.Errorf("encode broadcast message: %w", err)
	}
	if err := b.client.Publish(ctx, channelPrefix+boardUID, payload).Err(); err != nil {
		return fmt.Errorf("publish broadcast message: %w", err)
	}
	return nil
}

func (b *Redis) Subscribe(ctx context.Context, boardUID string) (<-chan Message, func(), error) {
	pubsub := b.client.Subscribe(ctx, channelPrefix+boardUID)

	// Force the subscription to be established before we return so callers
	// never miss messages published right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to board channel: %w", err)
	}

	out := make(chan Message, subscriberBuffer)
	go func() {
		defer close(out)
		for raw := range pubsub.Channel() {
			var msg Message
			if err := json.Unmarshal([]byte(raw.Payload), &msg); err != nil {
				b.logger.Error("broadcast message decode failed", "board", boardUID, "error", err)
				continue
			}
			select {
			case out <- msg:
			default:
				b.logger.Warn("broadcast subscriber lagging, dropping message", "board", boardUID)
			}
		}
	}()

	cancel := func() { _ = pubsub.Close() }
	return out, cancel, nil
}
