// Package audit captures key board lifecycle actions for operational
// visibility. Events are emitted from domain logic and fanned out to a sink;
// Kafka is the production sink, memory backs tests and dev.
package audit

import (
	"context"
	"time"
)

// AuditEvent names one recorded action.
type AuditEvent string

const (
	EventBoardCreated   AuditEvent = "board_created"
	EventBoardUpdated   AuditEvent = "board_updated"
	EventBoardDestroyed AuditEvent = "board_destroyed"
	EventBoardExpired   AuditEvent = "board_expired"
	EventBoardCleared   AuditEvent = "board_cleared"
	EventMemberAdded    AuditEvent = "member_added"
	EventMemberRemoved  AuditEvent = "member_removed"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Timestamp time.Time
	BoardUID  string
	// ActorID is the user who performed the action; empty for anonymous
	// callers and for janitor-driven expiry.
	ActorID   string
	Action    string
	Reason    string
	RequestID string
}

// Store persists audit events. Implementations must be safe for concurrent
// append.
type Store interface {
	Append(ctx context.Context, event Event) error
}
