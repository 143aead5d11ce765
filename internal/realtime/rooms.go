package realtime

import (
	"sort"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// memberSet is one room's identity set, with the same per-entry locking and
// tombstone scheme as connSet.
type memberSet struct {
	mu      sync.Mutex
	members map[live.Key]struct{}
	dead    bool
}

// RoomRegistry maps a room name to the set of identities currently members of
// it. Membership is keyed by identity, not connection, so it survives
// transport churn on the same device. No retained room ever has an empty
// member set.
type RoomRegistry struct {
	mu     sync.RWMutex
	byRoom map[live.RoomName]*memberSet
	logger zerolog.Logger
}

// NewRoomRegistry creates an empty registry.
func NewRoomRegistry(logger zerolog.Logger) *RoomRegistry {
	return &RoomRegistry{
		byRoom: make(map[live.RoomName]*memberSet),
		logger: logger.With().Str("component", "RoomRegistry").Logger(),
	}
}

// AddToRoom idempotently adds key to room, creating the room if absent.
func (r *RoomRegistry) AddToRoom(room live.RoomName, key live.Key) {
	for {
		r.mu.Lock()
		set, ok := r.byRoom[room]
		if !ok {
			set = &memberSet{members: make(map[live.Key]struct{})}
			r.byRoom[room] = set
		}
		r.mu.Unlock()

		set.mu.Lock()
		if set.dead {
			set.mu.Unlock()
			continue
		}
		set.members[key] = struct{}{}
		set.mu.Unlock()
		break
	}

	r.logger.Debug().Str("room", string(room)).Str("key", string(key)).Msg("member joined room")
}

// RemoveFromRoom removes key from room, deleting the room when its last
// member leaves. Unknown room or key is a no-op.
func (r *RoomRegistry) RemoveFromRoom(room live.RoomName, key live.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeLocked(room, key)
}

// removeLocked removes key from room. Caller holds r.mu.
func (r *RoomRegistry) removeLocked(room live.RoomName, key live.Key) {
	set, ok := r.byRoom[room]
	if !ok {
		return
	}

	set.mu.Lock()
	delete(set.members, key)
	if len(set.members) == 0 {
		set.dead = true
		delete(r.byRoom, room)
		r.logger.Debug().Str("room", string(room)).Msg("last member left, room dropped")
	}
	set.mu.Unlock()
}

// RemoveUserFromAllRooms scans every room and removes key from each, deleting
// rooms left empty. O(rooms), acceptable at expected room cardinality. Runs
// once per identity cleanup at disconnect.
func (r *RoomRegistry) RemoveUserFromAllRooms(key live.Key) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for room := range r.byRoom {
		r.removeLocked(room, key)
	}
	r.logger.Debug().Str("key", string(key)).Msg("member removed from all rooms")
}

// GetUsers returns a snapshot of room's members, empty if the room is absent.
func (r *RoomRegistry) GetUsers(room live.RoomName) []live.Key {
	r.mu.RLock()
	set, ok := r.byRoom[room]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	out := make([]live.Key, 0, len(set.members))
	for key := range set.members {
		out = append(out, key)
	}
	return out
}

// GetConnectionCount returns the number of members in room.
func (r *RoomRegistry) GetConnectionCount(room live.RoomName) int {
	r.mu.RLock()
	set, ok := r.byRoom[room]
	r.mu.RUnlock()
	if !ok {
		return 0
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	return len(set.members)
}

// GetAllUserIDsInRoomCommaSeparated renders room's members as a sorted
// comma-separated string. Render helper for the status surface.
func (r *RoomRegistry) GetAllUserIDsInRoomCommaSeparated(room live.RoomName) string {
	users := r.GetUsers(room)
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, string(u))
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// GetAllRoomsWithUsers returns a full snapshot of every room and its members.
func (r *RoomRegistry) GetAllRoomsWithUsers() map[live.RoomName][]live.Key {
	r.mu.RLock()
	rooms := make([]live.RoomName, 0, len(r.byRoom))
	for room := range r.byRoom {
		rooms = append(rooms, room)
	}
	r.mu.RUnlock()

	out := make(map[live.RoomName][]live.Key, len(rooms))
	for _, room := range rooms {
		if users := r.GetUsers(room); len(users) > 0 {
			out[room] = users
		}
	}
	return out
}

// RoomCount returns the number of rooms with at least one member.
func (r *RoomRegistry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byRoom)
}
