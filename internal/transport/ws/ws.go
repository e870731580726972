// Package ws exposes the realtime board channel. Clients connect once per
// board, send commands as JSON frames, and receive the fan-out of every
// accepted event on that board.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"easel/internal/board/broadcast"
	"easel/internal/board/models"
	"easel/internal/platform/middleware"
	dErrors "easel/pkg/domain-errors"
	"easel/pkg/platform/httputil"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second

	// outBuffer bounds per-connection fan-out; a stalled client gets
	// disconnected rather than stalling the board.
	outBuffer = 64
)

// Dispatcher runs one inbound channel event to its terminal result and
// resolves boards for the connection handshake.
type Dispatcher interface {
	Dispatch(ctx context.Context, boardUID string, event models.ChannelEvent) (models.EventResult, error)
	GetBoard(ctx context.Context, uid string) (*models.Board, error)
}

// Frame is the wire format in both directions: inbound commands and
// outbound fan-out share it.
type Frame struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Ack answers the originating client only.
type Ack struct {
	Type     string              `json:"type"`
	Name     string              `json:"name"`
	Accepted bool                `json:"accepted"`
	Reason   models.RejectReason `json:"reason,omitempty"`
}

// Handler upgrades board channel connections.
type Handler struct {
	logger      *slog.Logger
	dispatcher  Dispatcher
	broadcaster broadcast.Broadcaster
	validator   middleware.TokenValidator
	upgrader    websocket.Upgrader
}

// New creates a new channel Handler.
func New(dispatcher Dispatcher, broadcaster broadcast.Broadcaster, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:      logger,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		validator:   validator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// Register registers the channel route with the chi router. Routes go on an
// inline group so the board REST handler can share the same parent router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.RequestID)
		r.Use(middleware.Authenticate(h.validator, h.logger))
		r.Get("/boards/{uid}/channel", h.handleChannel)
	})
}

func (h *Handler) handleChannel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	boardUID := chi.URLParam(r, "uid")
	caller := middleware.GetCaller(ctx)

	// Resolve the board before paying for the upgrade.
	if _, err := h.dispatcher.GetBoard(ctx, boardUID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	messages, cancel, err := h.broadcaster.Subscribe(ctx, boardUID)
	if err != nil {
		h.logger.ErrorContext(ctx, "subscribe failed", "board", boardUID, "error", err)
		httputil.WriteError(w, dErrors.New(dErrors.CodeInternal, "channel unavailable"))
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		cancel()
		h.logger.WarnContext(ctx, "websocket upgrade failed", "board", boardUID, "error", err)
		return
	}

	session := &channelSession{
		logger:      h.logger,
		dispatcher:  h.dispatcher,
		conn:        conn,
		boardUID:    boardUID,
		caller:      caller,
		messages:    messages,
		unsubscribe: cancel,
		out:         make(chan []byte, outBuffer),
		done:        make(chan struct{}),
	}
	go session.writeLoop()
	session.readLoop(ctx)
}

type channelSession struct {
	logger     *slog.Logger
	dispatcher Dispatcher
	conn       *websocket.Conn
	boardUID   string
	caller     *models.Caller

	messages    <-chan broadcast.Message
	unsubscribe func()
	out         chan []byte
	done        chan struct{}
}

// readLoop consumes inbound frames until the client goes away. Closing done
// tears down the write side.
func (s *channelSession) readLoop(ctx context.Context) {
	defer func() {
		close(s.done)
		s.unsubscribe()
		s.conn.Close()
	}()

	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var frame Frame
		if err := s.conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.WarnContext(ctx, "channel read failed", "board", s.boardUID, "error", err)
			}
			return
		}

		result, err := s.dispatcher.Dispatch(ctx, s.boardUID, models.ChannelEvent{
			Name:   frame.Name,
			Data:   frame.Data,
			Caller: s.caller,
		})
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeNotFound) {
				return // board destroyed underneath us
			}
			s.logger.ErrorContext(ctx, "dispatch failed", "board", s.boardUID, "event", frame.Name, "error", err)
			s.send(mustJSON(Ack{Type: "ack", Name: frame.Name}))
			continue
		}

		s.send(mustJSON(Ack{
			Type:     "ack",
			Name:     frame.Name,
			Accepted: result.Accepted,
			Reason:   result.Reason,
		}))
	}
}

// writeLoop is the only writer on the connection: acks, fan-out, pings.
func (s *channelSession) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case payload := <-s.out:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case msg, ok := <-s.messages:
			if !ok {
				return
			}
			if msg.Event == models.EventBoardDestroyed {
				_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = s.conn.WriteMessage(websocket.TextMessage, mustJSON(Frame{Name: msg.Event, Data: msg.Data}))
				s.conn.Close()
				return
			}
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.TextMessage, mustJSON(Frame{Name: msg.Event, Data: msg.Data})); err != nil {
				return
			}
		case <-ticker.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-s.done:
			return
		}
	}
}

// send queues payload for the writer, dropping when the client cannot keep
// up; the ping deadline will collect the connection shortly after.
func (s *channelSession) send(payload []byte) {
	select {
	case s.out <- payload:
	default:
	}
}

func mustJSON(v any) []byte {
	payload, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return payload
}
