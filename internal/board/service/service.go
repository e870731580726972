// Package service hosts the board lifecycle service and the session
// dispatcher. All mutations for a single board are serialized through a
// per-board lock owned here; different boards never contend.
package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"easel/internal/board/broadcast"
	"easel/internal/board/metrics"
	"easel/internal/board/models"
	dErrors "easel/pkg/domain-errors"
	"easel/pkg/platform/audit"
	"easel/pkg/platform/sentinel"
	"easel/pkg/requestcontext"
)

// DirectoryStore is the board directory: identity, membership, lock state.
type DirectoryStore interface {
	Create(ctx context.Context, b *models.Board) error
	Find(ctx context.Context, uid string) (*models.Board, error)
	Exists(ctx context.Context, uid string) (bool, error)
	Update(ctx context.Context, b *models.Board) error
	Delete(ctx context.Context, uid string) error
	Touch(ctx context.Context, uid string, now time.Time) error
	ListAvailable(ctx context.Context, userID string) ([]*models.Board, error)
	ListExpiredOwnerless(ctx context.Context, cutoff time.Time) ([]*models.Board, error)
}

// CanvasStore is the per-board object log and options map.
type CanvasStore interface {
	AppendObject(ctx context.Context, boardUID string, object json.RawMessage) (int64, error)
	UpdateObject(ctx context.Context, boardUID string, objectID int64, object json.RawMessage) error
	ClearObjects(ctx context.Context, boardUID string) error
	ListObjects(ctx context.Context, boardUID string) ([]models.CanvasObject, error)
	MergeOptions(ctx context.Context, boardUID string, delta map[string]string) error
	Options(ctx context.Context, boardUID string) (map[string]string, error)
	DropBoard(ctx context.Context, boardUID string) error
}

// AuditPublisher records board lifecycle actions.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// DefaultBoardExpiry matches the historical three-day policy for inactive
// anonymous boards; override through WithBoardExpiry.
const DefaultBoardExpiry = 72 * time.Hour

// Service coordinates boards: lifecycle, membership, snapshots, and (in
// dispatcher.go) the channel event state machine.
type Service struct {
	directory   DirectoryStore
	canvas      CanvasStore
	broadcaster broadcast.Broadcaster

	logger      *slog.Logger
	metrics     *metrics.Metrics
	auditor     AuditPublisher
	boardExpiry time.Duration
	tracer      trace.Tracer

	locks *lockTable
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditor = publisher }
}

func WithBoardExpiry(d time.Duration) Option {
	return func(s *Service) { s.boardExpiry = d }
}

// New constructs the board service.
func New(directory DirectoryStore, canvas CanvasStore, broadcaster broadcast.Broadcaster, opts ...Option) *Service {
	s := &Service{
		directory:   directory,
		canvas:      canvas,
		broadcaster: broadcaster,
		logger:      slog.Default(),
		boardExpiry: DefaultBoardExpiry,
		tracer:      otel.Tracer("easel/board"),
		locks:       newLockTable(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateBoardRequest carries board creation parameters. An authenticated
// caller becomes the owner and the board turns private; anonymous creators
// get an ownerless board with the requested (or default) visibility.
type CreateBoardRequest struct {
	Name           string
	Access         models.AccessLevel
	Lock           models.LockStatus
	CallerID       string
	InitialObjects []json.RawMessage
	InitialOptions map[string]string
}

// CreateBoard creates a board with a fresh collision-checked uid and uploads
// any initial canvas content.
func (s *Service) CreateBoard(ctx context.Context, req CreateBoardRequest) (*models.Board, error) {
	now := requestcontext.Now(ctx)

	access := req.Access
	if access == "" {
		access = models.AccessPublic
	}
	lock := req.Lock
	if lock == "" {
		lock = models.LockUnlocked
	}
	ownerID := ""
	if req.CallerID != "" {
		ownerID = req.CallerID
		access = models.AccessPrivate
	}

	uid, err := s.newUID(ctx)
	if err != nil {
		return nil, err
	}

	b, err := models.NewBoard(uid, req.Name, access, lock, ownerID, now)
	if err != nil {
		return nil, err
	}
	if err := s.directory.Create(ctx, b); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, dErrors.New(dErrors.CodeConflict, "board uid already taken")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create board")
	}

	if err := s.uploadInitialCanvas(ctx, uid, req); err != nil {
		// Failed creation must not leave an orphan directory entry behind.
		if dropErr := s.canvas.DropBoard(ctx, uid); dropErr != nil {
			s.logger.ErrorContext(ctx, "failed to drop canvas of aborted board", "board", uid, "error", dropErr)
		}
		if delErr := s.directory.Delete(ctx, uid); delErr != nil {
			s.logger.ErrorContext(ctx, "failed to roll back aborted board", "board", uid, "error", delErr)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "board created",
		"board", uid,
		"access", access,
		"owner", ownerID,
	)
	s.metrics.IncBoardsCreated()
	s.audit(ctx, audit.EventBoardCreated, uid, req.CallerID, "")

	return b, nil
}

func (s *Service) uploadInitialCanvas(ctx context.Context, uid string, req CreateBoardRequest) error {
	for _, object := range req.InitialObjects {
		if _, err := s.canvas.AppendObject(ctx, uid, object); err != nil {
			if errors.Is(err, sentinel.ErrInvalidPayload) {
				return dErrors.New(dErrors.CodeValidation, "initial canvas object is malformed")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store initial canvas")
		}
	}
	// Invalid initial options are skipped rather than failing creation.
	if models.ValidOptions(req.InitialOptions) {
		if err := s.canvas.MergeOptions(ctx, uid, req.InitialOptions); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to store initial options")
		}
	}
	return nil
}

// GetBoard fetches directory state for one board.
func (s *Service) GetBoard(ctx context.Context, uid string) (*models.Board, error) {
	b, err := s.directory.Find(ctx, uid)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "board not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load board")
	}
	return b, nil
}

// UpdateBoardRequest carries partial board updates; nil fields are left
// untouched.
type UpdateBoardRequest struct {
	Name   *string
	Access *models.AccessLevel
	Lock   *models.LockStatus
}

// UpdateBoard applies directory-level changes and announces them on the
// board channel.
func (s *Service) UpdateBoard(ctx context.Context, uid string, req UpdateBoardRequest, callerID string) (*models.Board, error) {
	unlock := s.locks.lock(uid)
	defer unlock()

	now := requestcontext.Now(ctx)

	b, err := s.GetBoard(ctx, uid)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeManage(b, callerID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		b.Name = *req.Name
		b.UpdatedAt = now
	}
	if req.Access != nil {
		if err := b.SetAccess(*req.Access, now); err != nil {
			return nil, err
		}
	}
	if req.Lock != nil {
		if err := b.SetLock(*req.Lock, now); err != nil {
			return nil, err
		}
	}

	if err := s.directory.Update(ctx, b); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update board")
	}

	s.publish(ctx, uid, models.EventBoardUpdated, map[string]any{
		"board": map[string]any{
			"name":         b.Name,
			"access_level": b.Access,
			"lock_status":  b.Lock,
		},
	})
	s.audit(ctx, audit.EventBoardUpdated, uid, callerID, "")

	return b, nil
}

// DestroyBoard removes the board, its canvas, and its lock entry.
func (s *Service) DestroyBoard(ctx context.Context, uid string, callerID string) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	b, err := s.GetBoard(ctx, uid)
	if err != nil {
		return err
	}
	if err := s.authorizeManage(b, callerID); err != nil {
		return err
	}
	if err := s.destroyLocked(ctx, uid); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "board destroyed", "board", uid, "caller", callerID)
	s.audit(ctx, audit.EventBoardDestroyed, uid, callerID, "")
	return nil
}

// destroyLocked removes board state; callers hold the board lock.
func (s *Service) destroyLocked(ctx context.Context, uid string) error {
	if err := s.canvas.DropBoard(ctx, uid); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to drop board canvas")
	}
	if err := s.directory.Delete(ctx, uid); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete board")
	}

	s.publish(ctx, uid, models.EventBoardDestroyed, nil)
	s.metrics.IncBoardsDestroyed()
	s.locks.drop(uid)
	return nil
}

// AddMember inserts a user into the board's member set. Only the user
// themselves or the board owner may do this.
func (s *Service) AddMember(ctx context.Context, uid, userID, callerID string) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	now := requestcontext.Now(ctx)

	b, err := s.GetBoard(ctx, uid)
	if err != nil {
		return err
	}
	if callerID == "" || (callerID != userID && callerID != b.OwnerID) {
		return dErrors.New(dErrors.CodeForbidden, "cannot add another user")
	}
	if err := b.AddMember(userID, now); err != nil {
		return err
	}
	if err := s.directory.Update(ctx, b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update board members")
	}

	s.publish(ctx, uid, models.EventMemberAdded, map[string]any{"user_id": userID})
	s.audit(ctx, audit.EventMemberAdded, uid, callerID, "")
	return nil
}

// RemoveMember drops a user from the member set with the same self-or-owner
// rule. Removing the current owner fails.
func (s *Service) RemoveMember(ctx context.Context, uid, userID, callerID string) error {
	unlock := s.locks.lock(uid)
	defer unlock()

	now := requestcontext.Now(ctx)

	b, err := s.GetBoard(ctx, uid)
	if err != nil {
		return err
	}
	if callerID == "" || (callerID != userID && callerID != b.OwnerID) {
		return dErrors.New(dErrors.CodeForbidden, "cannot remove another user")
	}
	if err := b.RemoveMember(userID, now); err != nil {
		return err
	}
	if err := s.directory.Update(ctx, b); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update board members")
	}

	s.publish(ctx, uid, models.EventMemberRemoved, map[string]any{"user_id": userID})
	s.audit(ctx, audit.EventMemberRemoved, uid, callerID, "")
	return nil
}

// AvailableBoards lists boards the caller may join: public boards plus own
// memberships.
func (s *Service) AvailableBoards(ctx context.Context, callerID string) ([]*models.Board, error) {
	boards, err := s.directory.ListAvailable(ctx, callerID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list boards")
	}
	return boards, nil
}

// Snapshot builds the replay document for a newly joined client and counts
// as board activity.
func (s *Service) Snapshot(ctx context.Context, uid string) (*models.Snapshot, error) {
	if _, err := s.GetBoard(ctx, uid); err != nil {
		return nil, err
	}

	objects, err := s.canvas.ListObjects(ctx, uid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read canvas")
	}
	options, err := s.canvas.Options(ctx, uid)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to read options")
	}

	if err := s.directory.Touch(ctx, uid, requestcontext.Now(ctx)); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		s.logger.ErrorContext(ctx, "board touch failed", "board", uid, "error", err)
	}

	return &models.Snapshot{Options: options, Objects: objects}, nil
}

// authorizeManage gates destructive directory changes: ownerless boards are
// managed by whoever holds the uid, owned boards only by their owner.
func (s *Service) authorizeManage(b *models.Board, callerID string) error {
	if b.OwnerID != "" && b.OwnerID != callerID {
		return dErrors.New(dErrors.CodeForbidden, "only the board owner may do this")
	}
	return nil
}

// newUID generates a fresh 8-hex-digit board uid, re-rolling on the rare
// collision with an existing board.
func (s *Service) newUID(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 16; attempt++ {
		buf := make([]byte, 4)
		if _, err := rand.Read(buf); err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate board uid")
		}
		uid := hex.EncodeToString(buf)

		exists, err := s.directory.Exists(ctx, uid)
		if err != nil {
			return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to check board uid")
		}
		if !exists {
			return uid, nil
		}
	}
	return "", dErrors.New(dErrors.CodeInternal, "failed to allocate a unique board uid")
}

func (s *Service) publish(ctx context.Context, uid, event string, data any) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			s.logger.ErrorContext(ctx, "broadcast payload encode failed", "board", uid, "event", event, "error", err)
			return
		}
		raw = encoded
	}
	if err := s.broadcaster.Publish(ctx, uid, event, raw); err != nil {
		s.logger.ErrorContext(ctx, "broadcast publish failed", "board", uid, "event", event, "error", err)
	}
}

func (s *Service) audit(ctx context.Context, action audit.AuditEvent, uid, actorID, reason string) {
	if s.auditor == nil {
		return
	}
	err := s.auditor.Emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		BoardUID:  uid,
		ActorID:   actorID,
		Action:    string(action),
		Reason:    reason,
		RequestID: requestcontext.RequestID(ctx),
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed", "board", uid, "action", action, "error", err)
	}
}
