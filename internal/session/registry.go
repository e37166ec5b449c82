// Package session implements the bidirectional endpoint↔player-id registry
// and the join/disconnect request queues the simulation loop drains each
// tick. Grounded on the teacher's source/server/server.go Players map (one
// mutex guarding a map, short-held for lookup/insert/erase) generalized to
// the two-directional lookup §4.4 requires.
package session

import (
	"sync"

	"github.com/riftforged/gameserver/internal/transport"
)

// PlayerID is a monotonically increasing identifier assigned at join time.
type PlayerID uint64

// JoinRequest is enqueued by the dispatch path and drained by the
// simulation thread.
type JoinRequest struct {
	Endpoint    transport.Endpoint
	CharacterID string
}

// DisconnectRequest is enqueued by the Packet Handler's reliability reaper
// (a peer exceeding its retry budget or going stale) or by an explicit
// disconnect notification.
type DisconnectRequest struct {
	Endpoint transport.Endpoint
}

// Registry holds the endpoint↔player-id bidirectional mapping and the
// join/disconnect queues. All map access goes through one mutex; the
// queues have their own mutex so a burst of inbound joins never blocks a
// concurrent lookup.
type Registry struct {
	mu            sync.Mutex
	byEndpoint    map[string]PlayerID
	byPlayer      map[PlayerID]transport.Endpoint
	nextPlayerID  PlayerID

	qmu          sync.Mutex
	joinQueue    []JoinRequest
	disconnectQueue []DisconnectRequest
}

// NewRegistry constructs an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byEndpoint: make(map[string]PlayerID),
		byPlayer:   make(map[PlayerID]transport.Endpoint),
	}
}

// Lookup resolves a player id for an endpoint, returning ok=false if the
// endpoint has no active session.
func (r *Registry) Lookup(ep transport.Endpoint) (PlayerID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEndpoint[ep.Key()]
	return id, ok
}

// EndpointFor resolves the endpoint for a player id.
func (r *Registry) EndpointFor(id PlayerID) (transport.Endpoint, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ep, ok := r.byPlayer[id]
	return ep, ok
}

// IsLoggedIn reports whether the endpoint already has an active session.
func (r *Registry) IsLoggedIn(ep transport.Endpoint) bool {
	_, ok := r.Lookup(ep)
	return ok
}

// Insert records a new bidirectional mapping. Called only from the
// simulation thread while processing a join.
func (r *Registry) Insert(ep transport.Endpoint, id PlayerID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byEndpoint[ep.Key()] = id
	r.byPlayer[id] = ep
}

// Remove erases the bidirectional mapping for an endpoint, returning the
// player id that was mapped, if any.
func (r *Registry) Remove(ep transport.Endpoint) (PlayerID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEndpoint[ep.Key()]
	if !ok {
		return 0, false
	}
	delete(r.byEndpoint, ep.Key())
	delete(r.byPlayer, id)
	return id, true
}

// AllEndpoints returns every currently mapped endpoint. Used by the
// simulation loop for the global broadcasts (CombatEvent, RiftStepInitiated)
// that §4.6 specifies as "Broadcast" rather than unicast to a single owning
// session.
func (r *Registry) AllEndpoints() []transport.Endpoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	eps := make([]transport.Endpoint, 0, len(r.byPlayer))
	for _, ep := range r.byPlayer {
		eps = append(eps, ep)
	}
	return eps
}

// AllocatePlayerID returns a fresh monotonic player id.
func (r *Registry) AllocatePlayerID() PlayerID {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextPlayerID++
	return r.nextPlayerID
}

// EnqueueJoin is called from the dispatch path.
func (r *Registry) EnqueueJoin(req JoinRequest) {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	r.joinQueue = append(r.joinQueue, req)
}

// EnqueueDisconnect is called from the reliability reaper or an explicit
// disconnect handler.
func (r *Registry) EnqueueDisconnect(req DisconnectRequest) {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	r.disconnectQueue = append(r.disconnectQueue, req)
}

// DrainJoins removes and returns every queued join request. Called once per
// tick by the simulation loop.
func (r *Registry) DrainJoins() []JoinRequest {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	if len(r.joinQueue) == 0 {
		return nil
	}
	drained := r.joinQueue
	r.joinQueue = nil
	return drained
}

// DrainDisconnects removes and returns every queued disconnect request.
func (r *Registry) DrainDisconnects() []DisconnectRequest {
	r.qmu.Lock()
	defer r.qmu.Unlock()
	if len(r.disconnectQueue) == 0 {
		return nil
	}
	drained := r.disconnectQueue
	r.disconnectQueue = nil
	return drained
}
