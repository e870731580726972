package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"easel/internal/board/handler/mocks"
	"easel/internal/board/models"
	"easel/internal/board/service"
	jwttoken "easel/internal/jwt_token"
	dErrors "easel/pkg/domain-errors"
)

//go:generate mockgen -source=handler.go -destination=mocks/board-mocks.go -package=mocks Service

var testJWT = jwttoken.NewJWTService("test-signing-key", "easel", "easel")

type BoardHandlerSuite struct {
	suite.Suite
	router  chi.Router
	service *mocks.MockService
	now     time.Time
}

func (s *BoardHandlerSuite) SetupTest() {
	ctrl := gomock.NewController(s.T())
	s.service = mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.router = chi.NewRouter()
	New(s.service, logger, jwttoken.NewCallerAdapter(testJWT)).Register(s.router)
	s.now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)
}

func TestBoardHandlerSuite(t *testing.T) {
	suite.Run(t, new(BoardHandlerSuite))
}

func (s *BoardHandlerSuite) testBoard(ownerID string) *models.Board {
	access := models.AccessPublic
	if ownerID != "" {
		access = models.AccessPrivate
	}
	b, err := models.NewBoard("a1b2c3d4", "retro", access, models.LockUnlocked, ownerID, s.now)
	s.Require().NoError(err)
	return b
}

func (s *BoardHandlerSuite) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *BoardHandlerSuite) TestCreateBoardAnonymous() {
	s.service.EXPECT().
		CreateBoard(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req service.CreateBoardRequest) (*models.Board, error) {
			s.Empty(req.CallerID)
			return s.testBoard(""), nil
		})

	w := s.do(httptest.NewRequest(http.MethodPost, "/boards", nil))
	s.Require().Equal(http.StatusCreated, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("a1b2c3d4", resp["uid"])
	s.Equal("Board #a1b2c3d4", resp["title"])
	s.Equal("public", resp["access_level"])
	s.Equal("unlocked", resp["lock_status"])
}

func (s *BoardHandlerSuite) TestCreateBoardAuthenticated() {
	token, err := testJWT.GenerateAccessToken("u1", nil, time.Hour)
	s.Require().NoError(err)

	s.service.EXPECT().
		CreateBoard(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, req service.CreateBoardRequest) (*models.Board, error) {
			s.Equal("u1", req.CallerID)
			s.Equal("retro", req.Name)
			return s.testBoard("u1"), nil
		})

	body := bytes.NewBufferString(`{"name":"retro","canvas":{"objects":[{"type":"path"}],"options":{"background_color":"#ac7c7c"}}}`)
	req := httptest.NewRequest(http.MethodPost, "/boards", body)
	req.Header.Set("Authorization", "Bearer "+token)

	w := s.do(req)
	s.Require().Equal(http.StatusCreated, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("u1", resp["owner_id"])
	s.Equal("private", resp["access_level"])
}

func (s *BoardHandlerSuite) TestCreateBoardRejectsInvalidToken() {
	w := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/boards", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		return s.do(req)
	}()
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *BoardHandlerSuite) TestGetBoardNotFound() {
	s.service.EXPECT().
		GetBoard(gomock.Any(), "deadbeef").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "board not found"))

	w := s.do(httptest.NewRequest(http.MethodGet, "/boards/deadbeef", nil))
	s.Require().Equal(http.StatusNotFound, w.Code)

	var resp map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("not_found", resp["error"])
}

func (s *BoardHandlerSuite) TestListBoards() {
	s.service.EXPECT().
		AvailableBoards(gomock.Any(), "").
		Return([]*models.Board{s.testBoard("")}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/boards", nil))
	s.Require().Equal(http.StatusOK, w.Code)

	var resp listBoardsResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Require().Len(resp.Boards, 1)
	s.Equal("a1b2c3d4", resp.Boards[0].UID)
}

func (s *BoardHandlerSuite) TestUpdateBoard() {
	token, err := testJWT.GenerateAccessToken("u1", nil, time.Hour)
	s.Require().NoError(err)

	s.service.EXPECT().
		UpdateBoard(gomock.Any(), "a1b2c3d4", gomock.Any(), "u1").
		DoAndReturn(func(_ any, _ string, req service.UpdateBoardRequest, _ string) (*models.Board, error) {
			s.Require().NotNil(req.Lock)
			s.Equal(models.LockLocked, *req.Lock)
			s.Nil(req.Name)
			return s.testBoard("u1"), nil
		})

	req := httptest.NewRequest(http.MethodPatch, "/boards/a1b2c3d4", bytes.NewBufferString(`{"lock_status":"locked"}`))
	req.Header.Set("Authorization", "Bearer "+token)

	s.Equal(http.StatusOK, s.do(req).Code)
}

func (s *BoardHandlerSuite) TestUpdateBoardForbidden() {
	s.service.EXPECT().
		UpdateBoard(gomock.Any(), "a1b2c3d4", gomock.Any(), "").
		Return(nil, dErrors.New(dErrors.CodeForbidden, "only the board owner may do this"))

	req := httptest.NewRequest(http.MethodPatch, "/boards/a1b2c3d4", bytes.NewBufferString(`{"name":"x"}`))
	s.Equal(http.StatusForbidden, s.do(req).Code)
}

func (s *BoardHandlerSuite) TestDestroyBoard() {
	s.service.EXPECT().DestroyBoard(gomock.Any(), "a1b2c3d4", "").Return(nil)

	w := s.do(httptest.NewRequest(http.MethodDelete, "/boards/a1b2c3d4", nil))
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *BoardHandlerSuite) TestSnapshot() {
	s.service.EXPECT().
		Snapshot(gomock.Any(), "a1b2c3d4").
		Return(&models.Snapshot{
			Options: map[string]string{"background_color": "#ac7c7c"},
			Objects: []models.CanvasObject{{ObjectID: 1, Object: json.RawMessage(`{"type":"path"}`)}},
		}, nil)

	w := s.do(httptest.NewRequest(http.MethodGet, "/boards/a1b2c3d4/snapshot", nil))
	s.Require().Equal(http.StatusOK, w.Code)
	s.JSONEq(`{"options":{"background_color":"#ac7c7c"},"objects":[{"object_id":1,"object":{"type":"path"}}]}`, w.Body.String())
}

func (s *BoardHandlerSuite) TestAddMember() {
	s.service.EXPECT().AddMember(gomock.Any(), "a1b2c3d4", "u2", "").Return(nil)

	req := httptest.NewRequest(http.MethodPost, "/boards/a1b2c3d4/members", bytes.NewBufferString(`{"user_id":"u2"}`))
	s.Equal(http.StatusNoContent, s.do(req).Code)
}

func (s *BoardHandlerSuite) TestAddMemberMalformedBody() {
	req := httptest.NewRequest(http.MethodPost, "/boards/a1b2c3d4/members", bytes.NewBufferString(`{"user_id":`))
	s.Equal(http.StatusBadRequest, s.do(req).Code)
}

func (s *BoardHandlerSuite) TestRemoveMember() {
	s.service.EXPECT().RemoveMember(gomock.Any(), "a1b2c3d4", "u2", "").Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/boards/a1b2c3d4/members/u2", nil)
	s.Equal(http.StatusNoContent, s.do(req).Code)
}

func TestNewBoardResponseEmptyMembers(t *testing.T) {
	b := &models.Board{UID: "a1b2c3d4", Access: models.AccessPublic, Lock: models.LockUnlocked}
	resp := newBoardResponse(b)
	require.NotNil(t, resp.Members)
	assert.Empty(t, resp.Members)
}
