//go:build integration

package canvas_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"

	"easel/internal/board/store/canvas"
	"easel/pkg/platform/sentinel"
	"easel/pkg/testutil/containers"
)

type PostgresCanvasSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *canvas.PostgresStore
}

func TestPostgresCanvasSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresCanvasSuite))
}

func (s *PostgresCanvasSuite) SetupSuite() {
	s.postgres = containers.GetPostgres(s.T())
	s.store = canvas.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresCanvasSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateTables(ctx, "canvas_objects", "canvas_options"))
}

func (s *PostgresCanvasSuite) TestAppendUpdateListRoundtrip() {
	ctx := context.Background()
	const uid = "a1b2c3d4"

	id1, err := s.store.AppendObject(ctx, uid, json.RawMessage(`{"type":"path"}`))
	s.Require().NoError(err)
	s.Equal(int64(1), id1)

	id2, err := s.store.AppendObject(ctx, uid, json.RawMessage(`{"type":"rect"}`))
	s.Require().NoError(err)
	s.Equal(int64(2), id2)

	s.Require().NoError(s.store.UpdateObject(ctx, uid, id1, json.RawMessage(`{"type":"text"}`)))

	objects, err := s.store.ListObjects(ctx, uid)
	s.Require().NoError(err)
	s.Require().Len(objects, 2)
	s.Equal(int64(1), objects[0].ObjectID)
	s.JSONEq(`{"type":"text"}`, string(objects[0].Object))
	s.JSONEq(`{"type":"rect"}`, string(objects[1].Object))
}

func (s *PostgresCanvasSuite) TestUpdateUnknownIDIsNotFound() {
	ctx := context.Background()
	err := s.store.UpdateObject(ctx, "a1b2c3d4", 42, json.RawMessage(`{}`))
	s.Require().ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresCanvasSuite) TestClearResetsIDAllocation() {
	ctx := context.Background()
	const uid = "a1b2c3d4"

	for i := 0; i < 3; i++ {
		_, err := s.store.AppendObject(ctx, uid, json.RawMessage(`{"type":"path"}`))
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.ClearObjects(ctx, uid))

	id, err := s.store.AppendObject(ctx, uid, json.RawMessage(`{"type":"path"}`))
	s.Require().NoError(err)
	s.Equal(int64(1), id)
}

func (s *PostgresCanvasSuite) TestOptionsMergeAndIsolation() {
	ctx := context.Background()

	s.Require().NoError(s.store.MergeOptions(ctx, "board-a", map[string]string{"background_color": "#ac7c7c"}))
	s.Require().NoError(s.store.MergeOptions(ctx, "board-a", map[string]string{"background_color": "#ffffff"}))

	err := s.store.MergeOptions(ctx, "board-a", map[string]string{"other_key": "x"})
	s.Require().ErrorIs(err, sentinel.ErrInvalidOptions)

	opts, err := s.store.Options(ctx, "board-a")
	s.Require().NoError(err)
	s.Equal(map[string]string{"background_color": "#ffffff"}, opts)

	other, err := s.store.Options(ctx, "board-b")
	s.Require().NoError(err)
	s.Empty(other)
}

func (s *PostgresCanvasSuite) TestDropBoard() {
	ctx := context.Background()
	const uid = "a1b2c3d4"

	_, err := s.store.AppendObject(ctx, uid, json.RawMessage(`{"type":"path"}`))
	s.Require().NoError(err)
	s.Require().NoError(s.store.MergeOptions(ctx, uid, map[string]string{"background_color": "#ac7c7c"}))

	s.Require().NoError(s.store.DropBoard(ctx, uid))

	objects, err := s.store.ListObjects(ctx, uid)
	s.Require().NoError(err)
	s.Empty(objects)
	opts, err := s.store.Options(ctx, uid)
	s.Require().NoError(err)
	s.Empty(opts)
}
