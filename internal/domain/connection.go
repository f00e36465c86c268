package domain

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/arthurdotwork/songroom/internal/protocol"
	"github.com/google/uuid"
)

var ErrConnectionClosed = errors.New("connection closed")

type StateListener func(state RoomState)

type ExpiryListener func()

type ReactionListener func(emoji string)

type connState int

const (
	connConnecting connState = iota
	connOpen
	connClosed
)

// Connection owns one duplex channel bound to a single room. It caches the
// last pushed state and fans inbound messages out to three disjoint
// listener sets. Closed is terminal: a closed connection is superseded by a
// fresh one for the same room, never resurrected.
type Connection struct {
	roomID string

	mu          sync.Mutex
	state       connState
	channel     Channel
	cached      *RoomState
	pending     [][]byte
	sawState    bool
	noReconnect bool

	stateListeners    map[uuid.UUID]StateListener
	expiryListeners   map[uuid.UUID]ExpiryListener
	reactionListeners map[uuid.UUID]ReactionListener

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}

	closeHook func(conn *Connection)
}

func newConnection(roomID string, closeHook func(conn *Connection)) *Connection {
	return &Connection{
		roomID:            roomID,
		state:             connConnecting,
		stateListeners:    make(map[uuid.UUID]StateListener),
		expiryListeners:   make(map[uuid.UUID]ExpiryListener),
		reactionListeners: make(map[uuid.UUID]ReactionListener),
		ready:             make(chan struct{}),
		done:              make(chan struct{}),
		closeHook:         closeHook,
	}
}

func (c *Connection) RoomID() string {
	return c.roomID
}

// run dials the channel and pumps inbound payloads until the channel dies.
// It is the only goroutine that reads from the channel.
func (c *Connection) run(ctx context.Context, dialer Dialer) {
	channel, err := dialer.Dial(ctx, c.roomID)
	if err != nil {
		slog.DebugContext(ctx, "dial failed", "room_id", c.roomID, "error", err)
		c.terminate()
		return
	}

	if !c.open(ctx, channel) {
		// Shut down while dialing.
		_ = channel.Close()
		return
	}

	for {
		payload, err := channel.Receive()
		if err != nil {
			slog.DebugContext(ctx, "channel closed", "room_id", c.roomID, "error", err)
			break
		}

		c.handle(ctx, payload)
	}

	c.terminate()
}

// open transitions Connecting -> Open, requests the full state and flushes
// messages queued while the channel was still connecting, in call order.
func (c *Connection) open(ctx context.Context, channel Channel) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != connConnecting {
		return false
	}

	c.channel = channel
	c.state = connOpen

	greeting, err := protocol.Encode(protocol.NewGetState())
	if err != nil {
		slog.ErrorContext(ctx, "encode getState", "error", err)
		return true
	}

	outbound := append([][]byte{greeting}, c.pending...)
	c.pending = nil

	for _, payload := range outbound {
		if err := channel.Send(payload); err != nil {
			slog.DebugContext(ctx, "flush failed", "room_id", c.roomID, "error", err)
			break
		}
	}

	return true
}

// Send writes one payload, or queues it until the channel opens. Messages
// never outlive the connection: queued payloads on a closed connection are
// dropped, which matches the send-and-forget contract of every action.
func (c *Connection) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case connConnecting:
		c.pending = append(c.pending, payload)
		return nil
	case connOpen:
		return c.channel.Send(payload)
	default:
		return ErrConnectionClosed
	}
}

func (c *Connection) handle(ctx context.Context, payload []byte) {
	message, err := protocol.Decode(payload)
	if err != nil {
		// Malformed or unknown payloads never affect cached state.
		slog.DebugContext(ctx, "dropping message", "room_id", c.roomID, "error", err)
		return
	}

	switch m := message.(type) {
	case protocol.StateMessage:
		state := RoomState{Playlist: []Song{}}
		if len(m.State) > 0 {
			if err := json.Unmarshal(m.State, &state); err != nil {
				slog.DebugContext(ctx, "dropping state message", "room_id", c.roomID, "error", err)
				return
			}
		}
		if state.Playlist == nil {
			state.Playlist = []Song{}
		}

		c.mu.Lock()
		c.cached = &state
		c.sawState = true
		listeners := make([]StateListener, 0, len(c.stateListeners))
		for _, fn := range c.stateListeners {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()

		c.readyOnce.Do(func() { close(c.ready) })

		for _, fn := range listeners {
			fn(state)
		}
	case protocol.RoomExpiredMessage:
		c.mu.Lock()
		c.noReconnect = true
		listeners := make([]ExpiryListener, 0, len(c.expiryListeners))
		for _, fn := range c.expiryListeners {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()

		for _, fn := range listeners {
			fn()
		}
	case protocol.ReactionMessage:
		c.mu.Lock()
		listeners := make([]ReactionListener, 0, len(c.reactionListeners))
		for _, fn := range c.reactionListeners {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(m.Emoji)
		}
	}
}

// terminate moves the connection to its terminal state and reports the
// closure exactly once.
func (c *Connection) terminate() {
	c.mu.Lock()
	if c.state == connClosed {
		c.mu.Unlock()
		return
	}

	c.state = connClosed
	channel := c.channel
	c.channel = nil
	c.pending = nil
	c.mu.Unlock()

	if channel != nil {
		_ = channel.Close()
	}

	close(c.done)

	if c.closeHook != nil {
		c.closeHook(c)
	}
}

// shutdown closes the connection without triggering reconnection.
func (c *Connection) shutdown() {
	c.mu.Lock()
	c.noReconnect = true
	c.mu.Unlock()

	c.terminate()
}

func (c *Connection) reconnectSuppressed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.noReconnect
}

func (c *Connection) receivedState() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.sawState
}

// CurrentState returns the cached state, synchronously, once any state
// message has arrived on this connection.
func (c *Connection) CurrentState() (RoomState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached == nil {
		return RoomState{}, false
	}

	return *c.cached, true
}

// WaitState blocks until the first state message arrives. The gate resolves
// exactly once; later calls return the cache immediately.
func (c *Connection) WaitState(ctx context.Context) (RoomState, error) {
	select {
	case <-c.ready:
		state, _ := c.CurrentState()
		return state, nil
	case <-c.done:
		select {
		case <-c.ready:
			state, _ := c.CurrentState()
			return state, nil
		default:
			return RoomState{}, ErrConnectionClosed
		}
	case <-ctx.Done():
		return RoomState{}, ctx.Err()
	}
}

func (c *Connection) addStateListener(token uuid.UUID, fn StateListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stateListeners[token] = fn
}

func (c *Connection) addExpiryListener(token uuid.UUID, fn ExpiryListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.expiryListeners[token] = fn
}

func (c *Connection) addReactionListener(token uuid.UUID, fn ReactionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.reactionListeners[token] = fn
}

func (c *Connection) removeListener(token uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.stateListeners, token)
	delete(c.expiryListeners, token)
	delete(c.reactionListeners, token)
}

func (c *Connection) listenerCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.stateListeners) + len(c.expiryListeners) + len(c.reactionListeners)
}

func (c *Connection) snapshotListeners() (map[uuid.UUID]StateListener, map[uuid.UUID]ExpiryListener, map[uuid.UUID]ReactionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state := make(map[uuid.UUID]StateListener, len(c.stateListeners))
	for token, fn := range c.stateListeners {
		state[token] = fn
	}

	expiry := make(map[uuid.UUID]ExpiryListener, len(c.expiryListeners))
	for token, fn := range c.expiryListeners {
		expiry[token] = fn
	}

	reaction := make(map[uuid.UUID]ReactionListener, len(c.reactionListeners))
	for token, fn := range c.reactionListeners {
		reaction[token] = fn
	}

	return state, expiry, reaction
}

// adopt re-registers listeners carried over from a previous connection for
// the same room, in the order state, expiry, reaction.
func (c *Connection) adopt(state map[uuid.UUID]StateListener, expiry map[uuid.UUID]ExpiryListener, reaction map[uuid.UUID]ReactionListener) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for token, fn := range state {
		c.stateListeners[token] = fn
	}
	for token, fn := range expiry {
		c.expiryListeners[token] = fn
	}
	for token, fn := range reaction {
		c.reactionListeners[token] = fn
	}
}
