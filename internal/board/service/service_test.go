package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"easel/internal/board/broadcast"
	"easel/internal/board/models"
	boardstore "easel/internal/board/store/board"
	canvasstore "easel/internal/board/store/canvas"
	dErrors "easel/pkg/domain-errors"
	"easel/pkg/platform/audit"
	"easel/pkg/platform/audit/publisher"
	auditmem "easel/pkg/platform/audit/store/memory"
	"easel/pkg/requestcontext"
)

type BoardServiceSuite struct {
	suite.Suite
	svc         *Service
	directory   *boardstore.InMemory
	canvas      *canvasstore.InMemory
	broadcaster *broadcast.InMemory
	auditStore  *auditmem.InMemoryStore
	ctx         context.Context
	now         time.Time
}

func (s *BoardServiceSuite) SetupTest() {
	s.directory = boardstore.NewInMemory()
	s.canvas = canvasstore.NewInMemory()
	s.broadcaster = broadcast.NewInMemory()
	s.auditStore = auditmem.NewInMemoryStore()
	s.svc = New(s.directory, s.canvas, s.broadcaster,
		WithAuditPublisher(publisher.NewPublisher(s.auditStore)),
	)
	s.now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
}

func TestBoardServiceSuite(t *testing.T) {
	suite.Run(t, new(BoardServiceSuite))
}

func (s *BoardServiceSuite) TestCreateBoardAnonymous() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)

	s.Len(b.UID, 8)
	s.Equal(models.AccessPublic, b.Access)
	s.Equal(models.LockUnlocked, b.Lock)
	s.Empty(b.OwnerID)
	s.Empty(b.Members)

	events, err := s.auditStore.ListByBoard(s.ctx, b.UID)
	s.Require().NoError(err)
	s.Require().Len(events, 1)
	s.Equal(string(audit.EventBoardCreated), events[0].Action)
}

func (s *BoardServiceSuite) TestCreateBoardAuthenticatedBecomesPrivateOwner() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)

	s.Equal("u1", b.OwnerID)
	s.Equal(models.AccessPrivate, b.Access)
	s.True(b.IsMember("u1"))
}

func (s *BoardServiceSuite) TestCreateBoardWithInitialCanvas() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{
		InitialObjects: []json.RawMessage{
			json.RawMessage(`{"type":"path"}`),
			json.RawMessage(`{"type":"rect"}`),
		},
		InitialOptions: map[string]string{"background_color": "#ac7c7c"},
	})
	s.Require().NoError(err)

	snap, err := s.svc.Snapshot(s.ctx, b.UID)
	s.Require().NoError(err)
	s.Require().Len(snap.Objects, 2)
	s.Equal(int64(1), snap.Objects[0].ObjectID)
	s.Equal(int64(2), snap.Objects[1].ObjectID)
	s.Equal("#ac7c7c", snap.Options["background_color"])
}

func (s *BoardServiceSuite) TestCreateBoardSkipsInvalidInitialOptions() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{
		InitialOptions: map[string]string{"background_color": "not-a-color"},
	})
	s.Require().NoError(err)

	snap, err := s.svc.Snapshot(s.ctx, b.UID)
	s.Require().NoError(err)
	s.Empty(snap.Options)
}

func (s *BoardServiceSuite) TestCreateBoardRejectsMalformedInitialObject() {
	_, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{
		InitialObjects: []json.RawMessage{json.RawMessage(`{"type":`)},
	})
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeValidation))

	// The failed creation is rolled back in full; no orphan board stays
	// behind in the directory.
	boards, err := s.svc.AvailableBoards(s.ctx, "")
	s.Require().NoError(err)
	s.Empty(boards)
}

func (s *BoardServiceSuite) TestGetBoardNotFound() {
	_, err := s.svc.GetBoard(s.ctx, "deadbeef")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BoardServiceSuite) TestUpdateBoardByOwner() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)

	name := "retro"
	locked := models.LockLocked
	updated, err := s.svc.UpdateBoard(s.ctx, b.UID, UpdateBoardRequest{Name: &name, Lock: &locked}, "u1")
	s.Require().NoError(err)
	s.Equal("retro", updated.Name)
	s.Equal(models.LockLocked, updated.Lock)
}

func (s *BoardServiceSuite) TestUpdateBoardForbiddenForNonOwner() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)

	name := "hijack"
	_, err = s.svc.UpdateBoard(s.ctx, b.UID, UpdateBoardRequest{Name: &name}, "u2")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
}

func (s *BoardServiceSuite) TestLockingOwnerlessBoardFails() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)

	locked := models.LockLocked
	_, err = s.svc.UpdateBoard(s.ctx, b.UID, UpdateBoardRequest{Lock: &locked}, "")
	s.Require().Error(err)
	s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
}

func (s *BoardServiceSuite) TestDestroyBoardRemovesEverything() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)
	_, err = s.canvas.AppendObject(s.ctx, b.UID, json.RawMessage(`{"type":"path"}`))
	s.Require().NoError(err)

	s.Require().NoError(s.svc.DestroyBoard(s.ctx, b.UID, "u1"))

	_, err = s.svc.GetBoard(s.ctx, b.UID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
}

func (s *BoardServiceSuite) TestMembershipSelfOrOwnerRule() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "owner"})
	s.Require().NoError(err)

	s.Run("self join", func() {
		s.Require().NoError(s.svc.AddMember(s.ctx, b.UID, "u2", "u2"))
	})
	s.Run("owner adds", func() {
		s.Require().NoError(s.svc.AddMember(s.ctx, b.UID, "u3", "owner"))
	})
	s.Run("third party cannot add", func() {
		err := s.svc.AddMember(s.ctx, b.UID, "u4", "u2")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("anonymous cannot add", func() {
		err := s.svc.AddMember(s.ctx, b.UID, "u5", "")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
	s.Run("duplicate join conflicts", func() {
		err := s.svc.AddMember(s.ctx, b.UID, "u2", "u2")
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})
	s.Run("owner cannot be removed", func() {
		err := s.svc.RemoveMember(s.ctx, b.UID, "owner", "owner")
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
	s.Run("self leave", func() {
		s.Require().NoError(s.svc.RemoveMember(s.ctx, b.UID, "u2", "u2"))
	})
	s.Run("third party cannot remove", func() {
		err := s.svc.RemoveMember(s.ctx, b.UID, "u3", "u4")
		s.True(dErrors.HasCode(err, dErrors.CodeForbidden))
	})
}

func (s *BoardServiceSuite) TestAvailableBoards() {
	public, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)
	private, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)

	forMember, err := s.svc.AvailableBoards(s.ctx, "u1")
	s.Require().NoError(err)
	s.Len(forMember, 2)

	forStranger, err := s.svc.AvailableBoards(s.ctx, "u2")
	s.Require().NoError(err)
	s.Require().Len(forStranger, 1)
	s.Equal(public.UID, forStranger[0].UID)
	_ = private
}

func (s *BoardServiceSuite) TestSnapshotEmptyBoard() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)

	snap, err := s.svc.Snapshot(s.ctx, b.UID)
	s.Require().NoError(err)
	s.NotNil(snap.Objects)
	s.NotNil(snap.Options)
	s.Empty(snap.Objects)
	s.Empty(snap.Options)
}

func (s *BoardServiceSuite) TestSnapshotTouchesBoard() {
	b, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)

	later := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	_, err = s.svc.Snapshot(later, b.UID)
	s.Require().NoError(err)

	touched, err := s.svc.GetBoard(s.ctx, b.UID)
	s.Require().NoError(err)
	s.Equal(s.now.Add(time.Hour), touched.UpdatedAt)
}

func (s *BoardServiceSuite) TestSweepExpiredCollectsIdleOwnerlessBoards() {
	stale, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{})
	s.Require().NoError(err)
	owned, err := s.svc.CreateBoard(s.ctx, CreateBoardRequest{CallerID: "u1"})
	s.Require().NoError(err)

	fresh, err := s.svc.CreateBoard(requestcontext.WithTime(context.Background(), s.now.Add(71*time.Hour)), CreateBoardRequest{})
	s.Require().NoError(err)

	sweepCtx := requestcontext.WithTime(context.Background(), s.now.Add(72*time.Hour))
	s.Require().NoError(s.svc.SweepExpired(sweepCtx))

	_, err = s.svc.GetBoard(s.ctx, stale.UID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound), "idle ownerless board should be gone")

	_, err = s.svc.GetBoard(s.ctx, owned.UID)
	s.NoError(err, "owned board survives regardless of idleness")

	_, err = s.svc.GetBoard(s.ctx, fresh.UID)
	s.NoError(err, "recently active board survives")

	events, err := s.auditStore.ListByBoard(s.ctx, stale.UID)
	s.Require().NoError(err)
	s.Equal(string(audit.EventBoardExpired), events[len(events)-1].Action)
}
