package hub

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/internal/metrics"
	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// Broadcaster is the outbound dispatch primitive. It tracks live sessions by
// connection id and the transport-level room groups (room -> connection set),
// and fans encoded frames out to a single connection, an identity's
// connections, or a whole group.
//
// Room groups here are transport state keyed by ConnectionID; logical room
// membership keyed by identity lives in realtime.RoomRegistry. The hub keeps
// the two reconciled.
type Broadcaster struct {
	mu       sync.RWMutex
	sessions map[live.ConnectionID]*Session
	groups   map[live.RoomName]map[live.ConnectionID]*Session
	logger   zerolog.Logger
}

// NewBroadcaster creates an empty broadcaster.
func NewBroadcaster(logger zerolog.Logger) *Broadcaster {
	return &Broadcaster{
		sessions: make(map[live.ConnectionID]*Session),
		groups:   make(map[live.RoomName]map[live.ConnectionID]*Session),
		logger:   logger.With().Str("component", "Broadcaster").Logger(),
	}
}

// register adds a live session.
func (b *Broadcaster) register(s *Session) {
	b.mu.Lock()
	b.sessions[s.ConnID] = s
	b.mu.Unlock()
}

// unregister drops a session and removes it from every group, deleting
// groups left empty.
func (b *Broadcaster) unregister(connID live.ConnectionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.sessions, connID)
	for room, group := range b.groups {
		delete(group, connID)
		if len(group) == 0 {
			delete(b.groups, room)
		}
	}
}

// joinGroup adds the session's connection to the room's broadcast group.
func (b *Broadcaster) joinGroup(room live.RoomName, s *Session) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.groups[room]
	if !ok {
		group = make(map[live.ConnectionID]*Session)
		b.groups[room] = group
	}
	group[s.ConnID] = s
}

// leaveGroup removes a connection from the room's broadcast group.
func (b *Broadcaster) leaveGroup(room live.RoomName, connID live.ConnectionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	group, ok := b.groups[room]
	if !ok {
		return
	}
	delete(group, connID)
	if len(group) == 0 {
		delete(b.groups, room)
	}
}

// groupHasKey reports whether any connection of the identity remains in the
// room's group. The hub uses this to decide when a group leave also ends the
// identity's logical membership.
func (b *Broadcaster) groupHasKey(room live.RoomName, key live.Key) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, s := range b.groups[room] {
		if s.Key == key {
			return true
		}
	}
	return false
}

// session returns the live session for a connection id, if any.
func (b *Broadcaster) session(connID live.ConnectionID) (*Session, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	s, ok := b.sessions[connID]
	return s, ok
}

// SendToConnection delivers an event to one connection.
func (b *Broadcaster) SendToConnection(connID live.ConnectionID, event string, args ...any) {
	frame, err := encodeFrame(event, args...)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return
	}
	if s, ok := b.session(connID); ok {
		s.enqueue(frame)
		metrics.BroadcastsSent.WithLabelValues("connection").Inc()
	}
}

// SendToConnections delivers an event to each listed connection. Used for an
// identity's full connection set.
func (b *Broadcaster) SendToConnections(connIDs []live.ConnectionID, event string, args ...any) {
	frame, err := encodeFrame(event, args...)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return
	}
	for _, connID := range connIDs {
		if s, ok := b.session(connID); ok {
			s.enqueue(frame)
			metrics.BroadcastsSent.WithLabelValues("identity").Inc()
		}
	}
}

// SendToGroup delivers an event to every connection in the room's group,
// skipping any connection ids listed in except.
func (b *Broadcaster) SendToGroup(room live.RoomName, event string, args []any, except ...live.ConnectionID) {
	frame, err := encodeFrame(event, args...)
	if err != nil {
		b.logger.Error().Err(err).Str("event", event).Msg("failed to encode frame")
		return
	}

	skip := make(map[live.ConnectionID]struct{}, len(except))
	for _, id := range except {
		skip[id] = struct{}{}
	}

	b.mu.RLock()
	targets := make([]*Session, 0, len(b.groups[room]))
	for connID, s := range b.groups[room] {
		if _, skipped := skip[connID]; !skipped {
			targets = append(targets, s)
		}
	}
	b.mu.RUnlock()

	for _, s := range targets {
		s.enqueue(frame)
		metrics.BroadcastsSent.WithLabelValues("group").Inc()
	}
}
