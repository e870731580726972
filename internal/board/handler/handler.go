// Package handler exposes the board REST surface: lifecycle, membership,
// listing, and the snapshot document new clients replay.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"easel/internal/board/models"
	"easel/internal/board/service"
	"easel/internal/platform/middleware"
	"easel/pkg/platform/httputil"
)

// Service defines the board operations the HTTP layer needs.
type Service interface {
	CreateBoard(ctx context.Context, req service.CreateBoardRequest) (*models.Board, error)
	GetBoard(ctx context.Context, uid string) (*models.Board, error)
	UpdateBoard(ctx context.Context, uid string, req service.UpdateBoardRequest, callerID string) (*models.Board, error)
	DestroyBoard(ctx context.Context, uid string, callerID string) error
	AddMember(ctx context.Context, uid, userID, callerID string) error
	RemoveMember(ctx context.Context, uid, userID, callerID string) error
	AvailableBoards(ctx context.Context, callerID string) ([]*models.Board, error)
	Snapshot(ctx context.Context, uid string) (*models.Snapshot, error)
}

// Handler handles board endpoints.
type Handler struct {
	logger    *slog.Logger
	boards    Service
	validator middleware.TokenValidator
}

// New creates a new board Handler.
func New(boards Service, logger *slog.Logger, validator middleware.TokenValidator) *Handler {
	return &Handler{
		logger:    logger,
		boards:    boards,
		validator: validator,
	}
}

// Register registers the board routes with the chi router. Routes go on an
// inline group so the websocket channel handler can share the same parent
// router.
func (h *Handler) Register(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Recovery(h.logger))
		r.Use(middleware.RequestID)
		r.Use(middleware.RequestTime)
		r.Use(middleware.Logger(h.logger))
		r.Use(middleware.Authenticate(h.validator, h.logger))

		r.Post("/boards", h.handleCreateBoard)
		r.Get("/boards", h.handleListBoards)
		r.Get("/boards/{uid}", h.handleGetBoard)
		r.Patch("/boards/{uid}", h.handleUpdateBoard)
		r.Delete("/boards/{uid}", h.handleDestroyBoard)
		r.Get("/boards/{uid}/snapshot", h.handleSnapshot)
		r.Post("/boards/{uid}/members", h.handleAddMember)
		r.Delete("/boards/{uid}/members/{userID}", h.handleRemoveMember)
	})
}

func callerID(ctx context.Context) string {
	if caller := middleware.GetCaller(ctx); caller != nil {
		return caller.ID
	}
	return ""
}

func (h *Handler) handleCreateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createBoardRequest
	if r.ContentLength > 0 {
		if err := httputil.Decode(r, &req, h.logger); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}

	b, err := h.boards.CreateBoard(ctx, service.CreateBoardRequest{
		Name:           req.Name,
		Access:         models.AccessLevel(req.AccessLevel),
		Lock:           models.LockStatus(req.LockStatus),
		CallerID:       callerID(ctx),
		InitialObjects: req.Canvas.Objects,
		InitialOptions: req.Canvas.Options,
	})
	if err != nil {
		h.logError(ctx, "create board failed", err)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, newBoardResponse(b))
}

func (h *Handler) handleListBoards(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	boards, err := h.boards.AvailableBoards(ctx, callerID(ctx))
	if err != nil {
		h.logError(ctx, "list boards failed", err)
		httputil.WriteError(w, err)
		return
	}

	out := make([]boardResponse, 0, len(boards))
	for _, b := range boards {
		out = append(out, newBoardResponse(b))
	}
	httputil.WriteJSON(w, http.StatusOK, listBoardsResponse{Boards: out})
}

func (h *Handler) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	b, err := h.boards.GetBoard(ctx, chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newBoardResponse(b))
}

func (h *Handler) handleUpdateBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req updateBoardRequest
	if err := httputil.Decode(r, &req, h.logger); err != nil {
		httputil.WriteError(w, err)
		return
	}

	update := service.UpdateBoardRequest{Name: req.Name}
	if req.AccessLevel != nil {
		level := models.AccessLevel(*req.AccessLevel)
		update.Access = &level
	}
	if req.LockStatus != nil {
		status := models.LockStatus(*req.LockStatus)
		update.Lock = &status
	}

	b, err := h.boards.UpdateBoard(ctx, chi.URLParam(r, "uid"), update, callerID(ctx))
	if err != nil {
		h.logError(ctx, "update board failed", err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, newBoardResponse(b))
}

func (h *Handler) handleDestroyBoard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.boards.DestroyBoard(ctx, chi.URLParam(r, "uid"), callerID(ctx)); err != nil {
		h.logError(ctx, "destroy board failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	snap, err := h.boards.Snapshot(ctx, chi.URLParam(r, "uid"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, snap)
}

func (h *Handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req memberRequest
	if err := httputil.Decode(r, &req, h.logger); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if err := h.boards.AddMember(ctx, chi.URLParam(r, "uid"), req.UserID, callerID(ctx)); err != nil {
		h.logError(ctx, "add member failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleRemoveMember(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.boards.RemoveMember(ctx, chi.URLParam(r, "uid"), chi.URLParam(r, "userID"), callerID(ctx)); err != nil {
		h.logError(ctx, "remove member failed", err)
		httputil.WriteError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) logError(ctx context.Context, msg string, err error) {
	h.logger.WarnContext(ctx, msg, "error", err.Error())
}
