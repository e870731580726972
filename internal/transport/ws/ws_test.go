package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"easel/internal/board/broadcast"
	"easel/internal/board/models"
	"easel/internal/board/service"
	boardstore "easel/internal/board/store/board"
	canvasstore "easel/internal/board/store/canvas"
	jwttoken "easel/internal/jwt_token"
)

var testJWT = jwttoken.NewJWTService("test-signing-key", "easel", "easel")

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()

	broadcaster := broadcast.NewInMemory()
	svc := service.New(boardstore.NewInMemory(), canvasstore.NewInMemory(), broadcaster)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	New(svc, broadcaster, logger, jwttoken.NewCallerAdapter(testJWT)).Register(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, svc
}

func dial(t *testing.T, srv *httptest.Server, boardUID string, header http.Header) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/boards/" + boardUID + "/channel"
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	return conn
}

// readUntil drains frames until pred accepts one; acks and fan-out frames
// arrive in no fixed relative order.
func readUntil(t *testing.T, conn *websocket.Conn, pred func(raw map[string]json.RawMessage) bool) map[string]json.RawMessage {
	t.Helper()
	for i := 0; i < 10; i++ {
		var raw map[string]json.RawMessage
		require.NoError(t, conn.ReadJSON(&raw))
		if pred(raw) {
			return raw
		}
	}
	t.Fatal("expected frame never arrived")
	return nil
}

func isAck(raw map[string]json.RawMessage) bool {
	return string(raw["type"]) == `"ack"`
}

func isEvent(name string) func(raw map[string]json.RawMessage) bool {
	return func(raw map[string]json.RawMessage) bool {
		return !isAck(raw) && string(raw["name"]) == `"`+name+`"`
	}
}

func TestChannelCreateObjectRoundTrip(t *testing.T) {
	srv, svc := newTestServer(t)
	b, err := svc.CreateBoard(context.Background(), service.CreateBoardRequest{})
	require.NoError(t, err)

	sender := dial(t, srv, b.UID, nil)
	watcher := dial(t, srv, b.UID, nil)

	require.NoError(t, sender.WriteJSON(Frame{
		Name: models.CommandObjectCreate,
		Data: json.RawMessage(`{"object":{"type":"path"}}`),
	}))

	ack := readUntil(t, sender, isAck)
	assert.Equal(t, "true", string(ack["accepted"]))

	frame := readUntil(t, watcher, isEvent(models.CommandObjectCreate))
	var data struct {
		ObjectID int64           `json:"object_id"`
		Object   json.RawMessage `json:"object"`
	}
	require.NoError(t, json.Unmarshal(frame["data"], &data))
	assert.Equal(t, int64(1), data.ObjectID)
	assert.JSONEq(t, `{"type":"path"}`, string(data.Object))
}

func TestChannelRejectionGoesToSenderOnly(t *testing.T) {
	srv, svc := newTestServer(t)
	b, err := svc.CreateBoard(context.Background(), service.CreateBoardRequest{})
	require.NoError(t, err)

	sender := dial(t, srv, b.UID, nil)
	require.NoError(t, sender.WriteJSON(Frame{
		Name: models.CommandObjectCreate,
		Data: json.RawMessage(`{"object":null}`),
	}))

	ack := readUntil(t, sender, isAck)
	assert.Equal(t, "false", string(ack["accepted"]))
	assert.Equal(t, `"invalid_payload"`, string(ack["reason"]))
}

func TestChannelPointerNeedsCapability(t *testing.T) {
	srv, svc := newTestServer(t)
	b, err := svc.CreateBoard(context.Background(), service.CreateBoardRequest{})
	require.NoError(t, err)

	token, err := testJWT.GenerateAccessToken("u1", []string{models.CapabilityPointer}, time.Hour)
	require.NoError(t, err)
	header := http.Header{"Authorization": []string{"Bearer " + token}}

	pointer := dial(t, srv, b.UID, header)
	plain := dial(t, srv, b.UID, nil)

	require.NoError(t, plain.WriteJSON(Frame{Name: models.CommandPointerMove, Data: json.RawMessage(`{"x":1}`)}))
	ack := readUntil(t, plain, isAck)
	assert.Equal(t, `"unauthorized"`, string(ack["reason"]))

	require.NoError(t, pointer.WriteJSON(Frame{Name: models.CommandPointerMove, Data: json.RawMessage(`{"x":1}`)}))
	ack = readUntil(t, pointer, isAck)
	assert.Equal(t, "true", string(ack["accepted"]))
}

func TestChannelUnknownBoardRejectsHandshake(t *testing.T) {
	srv, _ := newTestServer(t)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/boards/deadbeef/channel"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
