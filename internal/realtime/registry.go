// Package realtime holds the in-process presence state: which identities are
// connected, on which connections, and which rooms they belong to. Both
// registries are process-scoped singletons constructed at startup and injected
// into the hub; nothing here survives a restart.
package realtime

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// connSet is one identity's connection set. Its own mutex guards mutation of
// the set contents so unrelated identities never contend. dead marks a set
// that Remove has unlinked from the registry; an Add that raced the unlink
// must not resurrect it.
type connSet struct {
	mu    sync.Mutex
	conns map[live.ConnectionID]struct{}
	dead  bool
}

// ConnectionRegistry maps an identity to the set of live transport
// connections it currently owns. A coarse RWMutex guards insertion and
// deletion of identities; each set carries its own lock for membership
// changes. No retained identity ever has an empty set: the last Remove
// deletes the entry.
type ConnectionRegistry struct {
	mu     sync.RWMutex
	byKey  map[live.Key]*connSet
	logger zerolog.Logger
}

// NewConnectionRegistry creates an empty registry.
func NewConnectionRegistry(logger zerolog.Logger) *ConnectionRegistry {
	return &ConnectionRegistry{
		byKey:  make(map[live.Key]*connSet),
		logger: logger.With().Str("component", "ConnectionRegistry").Logger(),
	}
}

// Add idempotently inserts connID under key, creating the set if absent.
func (r *ConnectionRegistry) Add(key live.Key, connID live.ConnectionID) {
	for {
		r.mu.Lock()
		set, ok := r.byKey[key]
		if !ok {
			set = &connSet{conns: make(map[live.ConnectionID]struct{})}
			r.byKey[key] = set
		}
		r.mu.Unlock()

		set.mu.Lock()
		if set.dead {
			// Lost a race with a concurrent Remove that unlinked this set.
			set.mu.Unlock()
			continue
		}
		set.conns[connID] = struct{}{}
		set.mu.Unlock()
		break
	}

	r.logger.Debug().Str("key", string(key)).Str("conn", string(connID)).Msg("connection added")
}

// Remove removes connID from key's set. Removing the last connection deletes
// the identity entirely. Unknown key or connID is a no-op.
func (r *ConnectionRegistry) Remove(key live.Key, connID live.ConnectionID) {
	// Take the structural lock for the whole call: the emptiness check and
	// the map delete must be atomic or a concurrent Add could be lost.
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.byKey[key]
	if !ok {
		return
	}

	set.mu.Lock()
	delete(set.conns, connID)
	if len(set.conns) == 0 {
		set.dead = true
		delete(r.byKey, key)
		r.logger.Debug().Str("key", string(key)).Msg("last connection removed, identity dropped")
	}
	set.mu.Unlock()
}

// GetConnections returns a snapshot copy of key's connection ids, empty if
// the identity is not present.
func (r *ConnectionRegistry) GetConnections(key live.Key) []live.ConnectionID {
	r.mu.RLock()
	set, ok := r.byKey[key]
	r.mu.RUnlock()
	if !ok {
		return nil
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	out := make([]live.ConnectionID, 0, len(set.conns))
	for id := range set.conns {
		out = append(out, id)
	}
	return out
}

// IsConnectionActive reports whether connID is currently registered under key.
func (r *ConnectionRegistry) IsConnectionActive(key live.Key, connID live.ConnectionID) bool {
	r.mu.RLock()
	set, ok := r.byKey[key]
	r.mu.RUnlock()
	if !ok {
		return false
	}

	set.mu.Lock()
	defer set.mu.Unlock()
	_, active := set.conns[connID]
	return active
}

// Keys returns a snapshot of every identity with at least one connection.
func (r *ConnectionRegistry) Keys() []live.Key {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]live.Key, 0, len(r.byKey))
	for key := range r.byKey {
		out = append(out, key)
	}
	return out
}

// ConnectionCount returns the number of live connections across all
// identities. Used by the status API and metrics.
func (r *ConnectionRegistry) ConnectionCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	total := 0
	for _, set := range r.byKey {
		set.mu.Lock()
		total += len(set.conns)
		set.mu.Unlock()
	}
	return total
}
