package handler

import (
	"net/http"

	"github.com/seedytypey/raceserver/internal/api/apierr"
	"github.com/seedytypey/raceserver/internal/api/response"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/services/session"
	"github.com/seedytypey/raceserver/internal/ws"
)

// DiagnosticsHandler exposes read-only operational endpoints
type DiagnosticsHandler struct {
	coordinator *race.Coordinator
	sessions    *session.Service
	hub         *ws.Hub
}

// NewDiagnosticsHandler creates a new diagnostics handler
func NewDiagnosticsHandler(coordinator *race.Coordinator, sessions *session.Service, hub *ws.Hub) *DiagnosticsHandler {
	return &DiagnosticsHandler{
		coordinator: coordinator,
		sessions:    sessions,
		hub:         hub,
	}
}

// Health handles GET /api/v1/health
func (h *DiagnosticsHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.Health{Status: "ok"})
}

// Rooms handles GET /api/v1/rooms
func (h *DiagnosticsHandler) Rooms(w http.ResponseWriter, r *http.Request) {
	summaries := h.coordinator.Summaries()
	rooms := make([]response.Room, len(summaries))
	for i, s := range summaries {
		rooms[i] = response.RoomFromSummary(s)
	}
	response.JSON(w, http.StatusOK, response.Rooms{Rooms: rooms})
}

// Stats handles GET /api/v1/stats
func (h *DiagnosticsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	totalRooms, _, activeRaces := h.coordinator.Stats()

	totalPlayers, err := h.sessions.Count(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.Stats{
		TotalRooms:       totalRooms,
		TotalPlayers:     totalPlayers,
		ConnectedClients: h.hub.ClientCount(),
		ActiveRaces:      activeRaces,
	})
}
