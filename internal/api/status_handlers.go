// Package api exposes the read-only status surface: live presence and room
// occupancy snapshots from the in-memory registries, health, and metrics.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/realtime"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// API holds the dependencies for the stateless status handlers.
type API struct {
	registry *realtime.ConnectionRegistry
	rooms    *realtime.RoomRegistry
	logger   zerolog.Logger
}

// NewAPI creates the status API over the two registries.
func NewAPI(registry *realtime.ConnectionRegistry, rooms *realtime.RoomRegistry, logger zerolog.Logger) *API {
	return &API{
		registry: registry,
		rooms:    rooms,
		logger:   logger.With().Str("component", "API").Logger(),
	}
}

// Register attaches the status routes to mux. The auth middleware guards the
// presence and room snapshots; health and metrics stay open for probes and
// scrapers.
func (a *API) Register(mux *http.ServeMux, authMiddleware func(http.Handler) http.Handler) {
	mux.Handle("GET /api/status/presence", authMiddleware(http.HandlerFunc(a.PresenceHandler)))
	mux.Handle("GET /api/status/rooms", authMiddleware(http.HandlerFunc(a.RoomsHandler)))
	mux.HandleFunc("GET /healthz", a.HealthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())
}

type presenceResponse struct {
	Keys            []live.Key `json:"keys"`
	ConnectionCount int        `json:"connectionCount"`
}

// PresenceHandler returns the identities currently connected.
func (a *API) PresenceHandler(w http.ResponseWriter, r *http.Request) {
	keys := a.registry.Keys()
	if keys == nil {
		keys = []live.Key{}
	}
	a.writeJSON(w, http.StatusOK, presenceResponse{
		Keys:            keys,
		ConnectionCount: a.registry.ConnectionCount(),
	})
}

type roomStatus struct {
	Room    live.RoomName `json:"room"`
	Members []live.Key    `json:"members"`
	Count   int           `json:"count"`
}

// RoomsHandler returns a snapshot of every room with members.
func (a *API) RoomsHandler(w http.ResponseWriter, r *http.Request) {
	snapshot := a.rooms.GetAllRoomsWithUsers()
	out := make([]roomStatus, 0, len(snapshot))
	for room, members := range snapshot {
		out = append(out, roomStatus{Room: room, Members: members, Count: len(members)})
	}
	a.writeJSON(w, http.StatusOK, out)
}

// HealthHandler is the liveness probe.
func (a *API) HealthHandler(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error().Err(err).Msg("failed to write response")
	}
}
