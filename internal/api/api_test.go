package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedytypey/raceserver/internal/api"
	"github.com/seedytypey/raceserver/internal/api/response"
	"github.com/seedytypey/raceserver/internal/factory"
	"github.com/seedytypey/raceserver/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.App
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	// API tests are integration tests - use production factory with real random/clock
	app, err := factory.New(factory.Config{})
	require.NoError(t, err)
	require.NoError(t, app.QuoteService.LoadDefaults(context.Background()))

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Coordinator: app.Coordinator,
		Sessions:    app.SessionService,
		Hub:         app.Hub,
		Gateway:     app.Gateway,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(t *testing.T, method, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v1/health")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRoomsEmpty(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Rooms
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Empty(t, resp.Rooms)
}

func TestRoomsListsLiveRooms(t *testing.T) {
	ts := newTestServer(t)

	sess, err := ts.app.SessionService.Identify(context.Background(), "", "Alice", "happy")
	require.NoError(t, err)
	_, err = ts.app.Coordinator.JoinPublic(context.Background(), "conn-alice", sess)
	require.NoError(t, err)

	rr := ts.request(t, http.MethodGet, "/api/v1/rooms")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Rooms
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 1)
	assert.Equal(t, string(model.PublicRoomID), resp.Rooms[0].ID)
	assert.Equal(t, 1, resp.Rooms[0].PlayerCount)
	assert.Equal(t, string(model.RoomStatusWaiting), resp.Rooms[0].Status)
	assert.False(t, resp.Rooms[0].IsPrivate)
}

func TestStats(t *testing.T) {
	ts := newTestServer(t)

	sess, err := ts.app.SessionService.Identify(context.Background(), "", "Alice", "happy")
	require.NoError(t, err)
	_, err = ts.app.Coordinator.JoinPublic(context.Background(), "conn-alice", sess)
	require.NoError(t, err)

	rr := ts.request(t, http.MethodGet, "/api/v1/stats")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.Stats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.TotalRooms)
	assert.Equal(t, 1, resp.TotalPlayers)
	assert.Equal(t, 0, resp.ConnectedClients)
	assert.Equal(t, 0, resp.ActiveRaces)
}

func TestUnknownRouteReturns404(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodGet, "/api/v1/nope")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRoomsRejectsWrongMethod(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(t, http.MethodPost, "/api/v1/rooms")
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
