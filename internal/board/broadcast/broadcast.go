// Package broadcast is the fan-out boundary between the session engine and
// whatever transport carries events to connected clients. The engine only
// publishes; per-connection delivery is the transport adapter's job.
package broadcast

import (
	"context"
	"encoding/json"
)

// Message is one fan-out unit on a board's channel.
type Message struct {
	Board string          `json:"board"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Broadcaster delivers accepted events and lifecycle notifications to every
// subscriber of a board's channel.
type Broadcaster interface {
	// Publish fans data out to all current subscribers of the board.
	Publish(ctx context.Context, boardUID, event string, data json.RawMessage) error
	// Subscribe opens a channel of messages for one board. The returned
	// cancel func releases the subscription; the message channel closes
	// after cancellation.
	Subscribe(ctx context.Context, boardUID string) (<-chan Message, func(), error)
}
