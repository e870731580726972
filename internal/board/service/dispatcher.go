package service

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"easel/internal/board/models"
	"easel/internal/board/policy"
	dErrors "easel/pkg/domain-errors"
	"easel/pkg/platform/audit"
	"easel/pkg/platform/sentinel"
	"easel/pkg/requestcontext"
)

const (
	outcomeAccepted = "accepted"
	outcomeRejected = "rejected"
)

// Dispatch runs one channel event through the session state machine:
// authorize, validate, mutate, broadcast. The returned EventResult is the
// terminal answer for the originating caller; a non-nil error means storage
// failed and nothing was decided.
//
// All structural events for one board run under the board's lock, so object
// ids come out strictly in arrival order.
func (s *Service) Dispatch(ctx context.Context, boardUID string, event models.ChannelEvent) (models.EventResult, error) {
	ctx, span := s.tracer.Start(ctx, "board.dispatch",
		trace.WithAttributes(
			attribute.String("board.uid", boardUID),
			attribute.String("event.name", event.Name),
		),
	)
	defer span.End()

	unlock := s.locks.lock(boardUID)
	defer unlock()

	b, err := s.directory.Find(ctx, boardUID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.EventResult{}, dErrors.New(dErrors.CodeNotFound, "board not found")
		}
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load board")
	}

	if !policy.Authorize(b, event.Caller, event.Name) {
		reason := models.ReasonUnauthorized
		if !models.StructuralCommand(event.Name) && !models.PointerCommand(event.Name) {
			reason = models.ReasonUnknownCommand
		}
		return s.finish(ctx, event.Name, models.Reject(reason)), nil
	}

	result, err := s.apply(ctx, boardUID, event)
	if err != nil {
		span.RecordError(err)
		return models.EventResult{}, err
	}

	if result.Accepted {
		if models.StructuralCommand(event.Name) {
			if err := s.directory.Touch(ctx, boardUID, requestcontext.Now(ctx)); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
				s.logger.ErrorContext(ctx, "board touch failed", "board", boardUID, "error", err)
			}
		}
		if err := s.broadcaster.Publish(ctx, boardUID, event.Name, result.Broadcast); err != nil {
			s.logger.ErrorContext(ctx, "broadcast publish failed",
				"board", boardUID,
				"event", event.Name,
				"error", err,
			)
		}
	} else {
		s.logger.DebugContext(ctx, "event rejected",
			"board", boardUID,
			"event", event.Name,
			"reason", result.Reason,
		)
	}

	return s.finish(ctx, event.Name, result), nil
}

// apply performs the command-specific validation and mutation.
func (s *Service) apply(ctx context.Context, boardUID string, event models.ChannelEvent) (models.EventResult, error) {
	switch event.Name {
	case models.CommandObjectCreate:
		return s.applyObjectCreate(ctx, boardUID, event.Data)
	case models.CommandObjectModify:
		return s.applyObjectModify(ctx, boardUID, event.Data)
	case models.CommandOptionChange:
		return s.applyOptionChange(ctx, boardUID, event.Data)
	case models.CommandBoardClear:
		return s.applyBoardClear(ctx, boardUID, event)
	case models.CommandPointerMove, models.CommandPointerFlash:
		// Ephemeral: no persisted state, payload relayed untouched.
		return models.Accept(event.Data), nil
	default:
		return models.Reject(models.ReasonUnknownCommand), nil
	}
}

func (s *Service) applyObjectCreate(ctx context.Context, boardUID string, data json.RawMessage) (models.EventResult, error) {
	fields, ok := decodeObjectFields(data)
	if !ok {
		return models.Reject(models.ReasonInvalidPayload), nil
	}

	id, err := s.canvas.AppendObject(ctx, boardUID, fields["object"])
	if err != nil {
		if errors.Is(err, sentinel.ErrInvalidPayload) {
			return models.Reject(models.ReasonInvalidPayload), nil
		}
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to append canvas object")
	}
	s.metrics.IncObjectsAppended()

	fields["object_id"] = json.RawMessage(strconv.FormatInt(id, 10))
	broadcast, err := json.Marshal(fields)
	if err != nil {
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode broadcast payload")
	}
	return models.Accept(broadcast), nil
}

func (s *Service) applyObjectModify(ctx context.Context, boardUID string, data json.RawMessage) (models.EventResult, error) {
	fields, ok := decodeObjectFields(data)
	if !ok {
		return models.Reject(models.ReasonInvalidPayload), nil
	}
	id, ok := parseObjectID(fields["object_id"])
	if !ok {
		return models.Reject(models.ReasonInvalidPayload), nil
	}

	if err := s.canvas.UpdateObject(ctx, boardUID, id, fields["object"]); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrInvalidPayload):
			return models.Reject(models.ReasonInvalidPayload), nil
		case errors.Is(err, sentinel.ErrNotFound):
			return models.Reject(models.ReasonNotFound), nil
		default:
			return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update canvas object")
		}
	}

	fields["object_id"] = json.RawMessage(strconv.FormatInt(id, 10))
	broadcast, err := json.Marshal(fields)
	if err != nil {
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode broadcast payload")
	}
	return models.Accept(broadcast), nil
}

func (s *Service) applyOptionChange(ctx context.Context, boardUID string, data json.RawMessage) (models.EventResult, error) {
	var payload struct {
		Options map[string]string `json:"options"`
	}
	if len(data) == 0 || json.Unmarshal(data, &payload) != nil {
		return models.Reject(models.ReasonInvalidOptions), nil
	}

	if err := s.canvas.MergeOptions(ctx, boardUID, payload.Options); err != nil {
		if errors.Is(err, sentinel.ErrInvalidOptions) {
			return models.Reject(models.ReasonInvalidOptions), nil
		}
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to merge options")
	}
	return models.Accept(data), nil
}

func (s *Service) applyBoardClear(ctx context.Context, boardUID string, event models.ChannelEvent) (models.EventResult, error) {
	if err := s.canvas.ClearObjects(ctx, boardUID); err != nil {
		return models.EventResult{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear canvas")
	}

	actorID := ""
	if event.Caller != nil {
		actorID = event.Caller.ID
	}
	s.audit(ctx, audit.EventBoardCleared, boardUID, actorID, "")
	return models.Accept(event.Data), nil
}

func (s *Service) finish(ctx context.Context, command string, result models.EventResult) models.EventResult {
	outcome := outcomeAccepted
	if !result.Accepted {
		outcome = outcomeRejected
	}
	s.metrics.ObserveEvent(command, outcome)

	span := trace.SpanFromContext(ctx)
	span.SetAttributes(attribute.String("event.outcome", outcome))
	if result.Reason != "" {
		span.SetAttributes(attribute.String("event.reject_reason", string(result.Reason)))
	}
	return result
}

// decodeObjectFields unpacks an event's data into its top-level fields,
// failing on anything that is not a JSON object.
func decodeObjectFields(data json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(data) == 0 {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

// parseObjectID accepts the id as a JSON number or a numeric string; clients
// have historically sent both forms.
func parseObjectID(raw json.RawMessage) (int64, bool) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" {
		return 0, false
	}
	trimmed = strings.Trim(trimmed, `"`)
	id, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
