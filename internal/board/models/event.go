package models

import "encoding/json"

// Channel command names accepted by the session dispatcher. Everything else
// is rejected before it can touch board state.
const (
	CommandObjectCreate = "object:create"
	CommandObjectModify = "object:modify"
	CommandOptionChange = "option:change"
	CommandBoardClear   = "board:clear"
	CommandPointerMove  = "pointer:move"
	CommandPointerFlash = "pointer:flash"
)

// Lifecycle events the server itself emits on a board's channel.
const (
	EventBoardUpdated   = "board:updated"
	EventBoardDestroyed = "board:destroyed"
	EventMemberAdded    = "board:member:added"
	EventMemberRemoved  = "board:member:removed"
)

// CapabilityPointer is the entitlement a caller needs for the ephemeral
// pointer commands.
const CapabilityPointer = "pointer"

// StructuralCommand reports whether name mutates persisted board state.
func StructuralCommand(name string) bool {
	switch name {
	case CommandObjectCreate, CommandObjectModify, CommandOptionChange, CommandBoardClear:
		return true
	}
	return false
}

// PointerCommand reports whether name is an ephemeral broadcast signal.
func PointerCommand(name string) bool {
	return name == CommandPointerMove || name == CommandPointerFlash
}

// Caller is the already-resolved identity submitting a channel event. A nil
// Caller means the connection is anonymous. Capabilities come from the
// identity collaborator at the transport edge; the engine only reads them.
type Caller struct {
	ID           string
	Capabilities []string
}

// Can reports whether the caller's entitlement set includes the capability.
func (c *Caller) Can(capability string) bool {
	if c == nil {
		return false
	}
	for _, have := range c.Capabilities {
		if have == capability {
			return true
		}
	}
	return false
}

// ChannelEvent is one transport-decoded inbound event for a board.
type ChannelEvent struct {
	Name   string          `json:"name"`
	Data   json.RawMessage `json:"data"`
	Caller *Caller         `json:"-"`
}

// RejectReason classifies why the dispatcher refused an event. These are
// local, recoverable rejections returned to the originating caller only.
type RejectReason string

const (
	ReasonUnauthorized   RejectReason = "unauthorized"
	ReasonInvalidPayload RejectReason = "invalid_payload"
	ReasonNotFound       RejectReason = "not_found"
	ReasonInvalidOptions RejectReason = "invalid_options"
	ReasonUnknownCommand RejectReason = "unknown_command"
)

// EventResult is the dispatcher's terminal answer for one event: either an
// acceptance carrying the broadcast payload (the original data augmented
// with any server-assigned fields) or a classified rejection.
type EventResult struct {
	Accepted  bool            `json:"accepted"`
	Reason    RejectReason    `json:"reason,omitempty"`
	Broadcast json.RawMessage `json:"broadcast,omitempty"`
}

// Accept builds a successful result with the payload to fan out.
func Accept(broadcast json.RawMessage) EventResult {
	return EventResult{Accepted: true, Broadcast: broadcast}
}

// Reject builds a classified rejection. Nothing is broadcast.
func Reject(reason RejectReason) EventResult {
	return EventResult{Reason: reason}
}
