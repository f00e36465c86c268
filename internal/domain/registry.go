package domain

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jpillora/backoff"
)

// Registry guarantees at most one live connection per room within a process
// and owns reconnection. It is an injectable object rather than a package
// singleton so tests can run isolated registries side by side.
type Registry struct {
	ctx    context.Context
	dialer Dialer

	mu         sync.Mutex
	backoff    *backoff.Backoff
	conns      map[string]*Connection
	carryovers map[string]*carryover
}

// carryover holds the listeners of a closed connection while the
// reconnection delay runs down.
type carryover struct {
	timer    *time.Timer
	state    map[uuid.UUID]StateListener
	expiry   map[uuid.UUID]ExpiryListener
	reaction map[uuid.UUID]ReactionListener
}

func (c *carryover) empty() bool {
	return len(c.state)+len(c.expiry)+len(c.reaction) == 0
}

const reconnectDelay = 2 * time.Second

type RegistryOption func(r *Registry)

// WithReconnectBackoff replaces the reconnection delay policy. The default
// is a fixed 2 second delay; sustained-outage deployments can hand in an
// exponential policy with jitter instead.
func WithReconnectBackoff(b *backoff.Backoff) RegistryOption {
	return func(r *Registry) {
		r.backoff = b
	}
}

func NewRegistry(ctx context.Context, dialer Dialer, opts ...RegistryOption) *Registry {
	r := &Registry{
		ctx:    ctx,
		dialer: dialer,
		backoff: &backoff.Backoff{
			Min:    reconnectDelay,
			Max:    reconnectDelay,
			Factor: 1,
		},
		conns:      make(map[string]*Connection),
		carryovers: make(map[string]*carryover),
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Acquire returns the live connection for roomID, creating it lazily.
// Repeated calls return the same instance until the channel closes.
func (r *Registry) Acquire(roomID string) *Connection {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.acquireLocked(roomID)
}

func (r *Registry) acquireLocked(roomID string) *Connection {
	if conn, ok := r.conns[roomID]; ok {
		return conn
	}

	conn := newConnection(roomID, r.handleClose)
	r.conns[roomID] = conn

	go conn.run(r.ctx, r.dialer)

	return conn
}

// handleClose is bound to the connection instance that installed it, not to
// the room identifier: a stale handler must never evict the fresh connection
// that has since replaced it.
func (r *Registry) handleClose(conn *Connection) {
	r.mu.Lock()
	defer r.mu.Unlock()

	roomID := conn.RoomID()
	if r.conns[roomID] == conn {
		delete(r.conns, roomID)
	}

	if conn.reconnectSuppressed() {
		return
	}

	state, expiry, reaction := conn.snapshotListeners()

	if existing, ok := r.carryovers[roomID]; ok {
		// A replacement died while an earlier reconnect was still armed;
		// fold the listeners together and let the armed timer revive them.
		for token, fn := range state {
			existing.state[token] = fn
		}
		for token, fn := range expiry {
			existing.expiry[token] = fn
		}
		for token, fn := range reaction {
			existing.reaction[token] = fn
		}
		return
	}

	co := &carryover{state: state, expiry: expiry, reaction: reaction}
	if co.empty() {
		// Nobody is listening anymore: the room is abandoned by this client.
		return
	}

	if conn.receivedState() {
		r.backoff.Reset()
	}

	co.timer = time.AfterFunc(r.backoff.Duration(), func() { r.revive(roomID) })
	r.carryovers[roomID] = co
}

// revive re-creates the connection after the delay and transfers every
// carried-over listener onto it.
func (r *Registry) revive(roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	co, ok := r.carryovers[roomID]
	delete(r.carryovers, roomID)
	if !ok || co.empty() {
		return
	}

	conn := r.acquireLocked(roomID)
	conn.adopt(co.state, co.expiry, co.reaction)
}

// Dispose tears a room down deterministically: the connection closes, no
// reconnection fires and armed carryovers are dropped.
func (r *Registry) Dispose(roomID string) {
	r.mu.Lock()
	conn := r.conns[roomID]
	delete(r.conns, roomID)

	if co, ok := r.carryovers[roomID]; ok {
		co.timer.Stop()
		delete(r.carryovers, roomID)
	}
	r.mu.Unlock()

	if conn != nil {
		conn.shutdown()
	}
}

// Subscription is the handle returned by every subscribe call. Tokens key
// the backing sets, so subscribing the same callback twice yields two
// independent subscriptions.
type Subscription struct {
	registry *Registry
	roomID   string
	token    uuid.UUID
}

func (s *Subscription) Cancel() {
	s.registry.cancel(s.roomID, s.token)
}

func (r *Registry) cancel(roomID string, token uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if conn, ok := r.conns[roomID]; ok {
		conn.removeListener(token)
	}

	if co, ok := r.carryovers[roomID]; ok {
		delete(co.state, token)
		delete(co.expiry, token)
		delete(co.reaction, token)

		if co.empty() {
			co.timer.Stop()
			delete(r.carryovers, roomID)
		}
	}
}

// SubscribeState registers a state listener and synchronously catches it up
// with the cached state when one exists, so late subscribers never miss the
// current picture.
func (r *Registry) SubscribeState(roomID string, fn StateListener) *Subscription {
	token := uuid.New()

	r.mu.Lock()
	conn := r.acquireLocked(roomID)
	conn.addStateListener(token, fn)
	r.mu.Unlock()

	if state, ok := conn.CurrentState(); ok {
		fn(state)
	}

	return &Subscription{registry: r, roomID: roomID, token: token}
}

func (r *Registry) SubscribeExpiry(roomID string, fn ExpiryListener) *Subscription {
	token := uuid.New()

	r.mu.Lock()
	conn := r.acquireLocked(roomID)
	conn.addExpiryListener(token, fn)
	r.mu.Unlock()

	return &Subscription{registry: r, roomID: roomID, token: token}
}

func (r *Registry) SubscribeReactions(roomID string, fn ReactionListener) *Subscription {
	token := uuid.New()

	r.mu.Lock()
	conn := r.acquireLocked(roomID)
	conn.addReactionListener(token, fn)
	r.mu.Unlock()

	return &Subscription{registry: r, roomID: roomID, token: token}
}
