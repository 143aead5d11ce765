package hub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/metrics"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/middleware"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/realtime"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// operationHandler handles one inbound operation for a session.
type operationHandler func(ctx context.Context, s *Session, frame Frame) error

// validationError is reported to the caller as a structured failure frame
// instead of being logged as an internal fault.
type validationError struct{ msg string }

func (e *validationError) Error() string { return e.msg }

func validationf(format string, args ...any) error {
	return &validationError{msg: fmt.Sprintf(format, args...)}
}

// Hub orchestrates presence and live event fan-out. It runs its own dedicated
// HTTP server for WebSocket upgrades, owns the operation registry, and keeps
// the connection registry, room registry, and broadcast groups consistent
// through the connection lifecycle.
type Hub struct {
	server   *http.Server
	upgrader websocket.Upgrader

	registry    *realtime.ConnectionRegistry
	rooms       *realtime.RoomRegistry
	broadcaster *Broadcaster
	deps        live.Dependencies

	operations map[string]operationHandler
	logger     zerolog.Logger
}

// New creates and wires up the hub. The auth middleware must place the
// authenticated identity in the request context before the upgrade.
func New(
	port string,
	authMiddleware func(http.Handler) http.Handler,
	registry *realtime.ConnectionRegistry,
	rooms *realtime.RoomRegistry,
	deps live.Dependencies,
	logger zerolog.Logger,
) (*Hub, error) {
	if deps.Tracking == nil || deps.Chat == nil || deps.Queue == nil {
		return nil, errors.New("hub dependencies cannot be nil")
	}

	h := &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured CORS origins.
				return true
			},
		},
		registry:    registry,
		rooms:       rooms,
		broadcaster: NewBroadcaster(logger),
		deps:        deps,
		logger:      logger.With().Str("component", "Hub").Logger(),
	}
	h.operations = map[string]operationHandler{
		OpSendCurrentCoordinates:  h.handleSendCurrentCoordinates,
		OpSendLiveCoordinates:     h.handleSendLiveCoordinates,
		OpSendGoogleDirectionPath: h.handleSendGoogleDirectionPath,
		OpSendMessage:             h.handleSendMessage,
		OpJoinRoom:                h.handleJoinRoom,
		OpChatJoinRoom:            h.handleChatJoinRoom,
		OpSendTypingNotification:  h.handleSendTypingNotification,
		OpLeaveRoom:               h.handleLeaveRoom,
	}

	mux := http.NewServeMux()
	mux.Handle("/hub", authMiddleware(http.HandlerFunc(h.connectHandler)))
	h.server = &http.Server{
		Addr:    ":" + port,
		Handler: mux,
	}

	return h, nil
}

// Start runs the WebSocket HTTP server until shutdown.
func (h *Hub) Start(ctx context.Context) error {
	h.logger.Info().Str("addr", h.server.Addr).Msg("hub server starting")
	if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("hub server failed: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and closes live sessions.
func (h *Hub) Shutdown(ctx context.Context) error {
	h.logger.Info().Msg("shutting down hub")
	err := h.server.Shutdown(ctx)

	h.broadcaster.mu.Lock()
	sessions := make([]*Session, 0, len(h.broadcaster.sessions))
	for _, s := range h.broadcaster.sessions {
		sessions = append(sessions, s)
	}
	h.broadcaster.mu.Unlock()
	for _, s := range sessions {
		s.close()
	}

	if err != nil {
		h.logger.Error().Err(err).Msg("hub server shutdown failed")
		return err
	}
	return nil
}

// Handler exposes the hub's HTTP handler for tests.
func (h *Hub) Handler() http.Handler { return h.server.Handler }

// connectHandler upgrades an authenticated request and runs the session until
// disconnect.
func (h *Hub) connectHandler(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to upgrade connection")
		return
	}

	key := live.Key(identity)
	connID := live.ConnectionID(uuid.NewString())
	s := newSession(key, connID, conn, h.logger)

	h.onConnect(s)
	defer h.onDisconnect(s)

	go s.writePump()
	s.readPump(h.dispatchFrame)
}

// onConnect registers the session; there is no failure path.
func (h *Hub) onConnect(s *Session) {
	h.registry.Add(s.Key, s.ConnID)
	h.broadcaster.register(s)
	metrics.ConnectedConnections.Inc()
	s.logger.Info().Msg("session connected")
}

// onDisconnect tears a session down. Each cleanup step is attempted even if
// an earlier one panics. Logical room membership is removed only when the
// identity's last connection drops, so a second device keeps its rooms.
func (h *Hub) onDisconnect(s *Session) {
	metrics.ConnectedConnections.Dec()

	step := func(name string, fn func()) {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Str("step", name).Msg("disconnect cleanup panicked")
			}
		}()
		fn()
	}

	step("broadcaster", func() { h.broadcaster.unregister(s.ConnID) })
	step("registry", func() { h.registry.Remove(s.Key, s.ConnID) })
	step("rooms", func() {
		if len(h.registry.GetConnections(s.Key)) == 0 {
			h.rooms.RemoveUserFromAllRooms(s.Key)
		}
	})

	s.logger.Info().Msg("session disconnected")
}

// dispatchFrame decodes one inbound frame and routes it to the registered
// operation. An unexpected panic or error inside a handler is caught here,
// logged with context, and converted into a no-op for that call so it cannot
// corrupt shared state or break other callers.
func (h *Hub) dispatchFrame(s *Session, data []byte) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		s.logger.Warn().Err(err).Msg("malformed frame")
		h.sendError(s, "", "malformed frame")
		return
	}

	handler, ok := h.operations[frame.Target]
	if !ok {
		s.logger.Warn().Str("target", frame.Target).Msg("unknown operation")
		h.sendError(s, frame.Target, "unknown operation")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			metrics.OperationsHandled.WithLabelValues(frame.Target, "panic").Inc()
			s.logger.Error().Interface("panic", r).Str("target", frame.Target).Msg("operation panicked")
		}
	}()

	err := handler(context.Background(), s, frame)
	switch {
	case err == nil:
		metrics.OperationsHandled.WithLabelValues(frame.Target, "ok").Inc()
	default:
		var verr *validationError
		if errors.As(err, &verr) {
			metrics.OperationsHandled.WithLabelValues(frame.Target, "invalid").Inc()
			s.logger.Warn().Str("target", frame.Target).Str("reason", verr.msg).Msg("operation rejected")
			h.sendError(s, frame.Target, verr.msg)
			return
		}
		metrics.OperationsHandled.WithLabelValues(frame.Target, "error").Inc()
		s.logger.Error().Err(err).Str("target", frame.Target).Msg("operation failed")
	}
}

// sendError reports a structured failure back to the caller.
func (h *Hub) sendError(s *Session, operation, message string) {
	h.broadcaster.SendToConnection(s.ConnID, EventError, ErrorPayload{
		Operation: operation,
		Message:   message,
	})
}
