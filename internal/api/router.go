package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/seedytypey/raceserver/internal/api/apierr"
	"github.com/seedytypey/raceserver/internal/api/handler"
	"github.com/seedytypey/raceserver/internal/middleware"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/services/session"
	"github.com/seedytypey/raceserver/internal/ws"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger      *slog.Logger
	Coordinator *race.Coordinator
	Sessions    *session.Service
	Hub         *ws.Hub
	Gateway     *ws.Gateway
}

// NewRouter creates a new router with the diagnostics API and the
// websocket upgrade endpoint configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	diagnostics := handler.NewDiagnosticsHandler(cfg.Coordinator, cfg.Sessions, cfg.Hub)

	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger, panicHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	api.HandleFunc("/health", diagnostics.Health).Methods(http.MethodGet)
	api.HandleFunc("/rooms", diagnostics.Rooms).Methods(http.MethodGet)
	api.HandleFunc("/stats", diagnostics.Stats).Methods(http.MethodGet)

	// The upgrade endpoint skips the logging middleware; a websocket
	// connection is long-lived and would log a single giant request
	r.HandleFunc("/ws", cfg.Gateway.ServeWS).Methods(http.MethodGet)

	return r
}

func panicHandler(w http.ResponseWriter, _ *http.Request, _ any) {
	apierr.WriteError(w, apierr.NewInternalError())
}
