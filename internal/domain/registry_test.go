package domain_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/jpillora/backoff"
	"github.com/stretchr/testify/require"
)

func fastBackoff() *backoff.Backoff {
	return &backoff.Backoff{Min: 10 * time.Millisecond, Max: 10 * time.Millisecond, Factor: 1}
}

func TestRegistry_Acquire(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should return the identical connection for repeated acquires", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		first := registry.Acquire("room-1")
		second := registry.Acquire("room-1")

		require.Same(t, first, second)

		dialer.channel(t, 0).waitSent(t, 1)
		require.Equal(t, 1, dialer.dialCount())
	})

	t.Run("it should open one channel per room identifier", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		registry.Acquire("room-a")
		registry.Acquire("room-b")

		dialer.channel(t, 0).waitSent(t, 1)
		dialer.channel(t, 1).waitSent(t, 1)
		require.Equal(t, 2, dialer.dialCount())
	})

	t.Run("it should request the full state as soon as the channel opens", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		registry.Acquire("room-1")

		sent := dialer.channel(t, 0).waitSent(t, 1)
		require.JSONEq(t, `{"type":"getState"}`, sent[0])
	})
}

func TestRegistry_StateDelivery(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should deliver pushed states to subscribers", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		states := make(chan domain.RoomState, 4)
		registry.SubscribeState("room-1", func(state domain.RoomState) {
			states <- state
		})

		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, statePayload(t, song("1", false)))

		select {
		case state := <-states:
			require.Len(t, state.Playlist, 1)
			require.Equal(t, "1", state.Playlist[0].ID)
		case <-time.After(time.Second):
			t.Fatal("no state delivered")
		}
	})

	t.Run("it should catch a late subscriber up synchronously", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		conn := registry.Acquire("room-1")
		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, statePayload(t, song("1", false)))

		require.Eventually(t, func() bool {
			_, ok := conn.CurrentState()
			return ok
		}, time.Second, time.Millisecond)

		var caught atomic.Bool
		registry.SubscribeState("room-1", func(state domain.RoomState) {
			caught.Store(true)
		})

		require.True(t, caught.Load())
	})

	t.Run("it should drop malformed payloads without touching the cache", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		conn := registry.Acquire("room-1")
		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)

		channel.push(t, statePayload(t, song("1", false)))
		require.Eventually(t, func() bool {
			_, ok := conn.CurrentState()
			return ok
		}, time.Second, time.Millisecond)

		channel.push(t, `{not json`)
		channel.push(t, `{"type":"unheard-of"}`)
		channel.push(t, statePayload(t, song("2", false)))

		require.Eventually(t, func() bool {
			state, _ := conn.CurrentState()
			return len(state.Playlist) == 1 && state.Playlist[0].ID == "2"
		}, time.Second, time.Millisecond)
	})

	t.Run("it should resolve the ready gate on the first state", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		conn := registry.Acquire("room-1")
		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, statePayload(t, song("1", false)))

		state, err := conn.WaitState(ctx)
		require.NoError(t, err)
		require.Len(t, state.Playlist, 1)

		// Later waits return the cache immediately.
		state, err = conn.WaitState(ctx)
		require.NoError(t, err)
		require.Len(t, state.Playlist, 1)
	})
}

func TestRegistry_Reconnect(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should carry subscribers over to the replacement connection", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		states := make(chan domain.RoomState, 4)
		reactions := make(chan string, 4)
		registry.SubscribeState("room-1", func(state domain.RoomState) { states <- state })
		registry.SubscribeReactions("room-1", func(emoji string) { reactions <- emoji })

		first := dialer.channel(t, 0)
		first.waitSent(t, 1)
		require.NoError(t, first.Close())

		second := dialer.channel(t, 1)
		second.waitSent(t, 1)
		second.push(t, statePayload(t, song("after", false)))
		second.push(t, `{"type":"emoji","emoji":"🔥"}`)

		select {
		case state := <-states:
			require.Equal(t, "after", state.Playlist[0].ID)
		case <-time.After(time.Second):
			t.Fatal("state not delivered after reconnect")
		}

		select {
		case emoji := <-reactions:
			require.Equal(t, "🔥", emoji)
		case <-time.After(time.Second):
			t.Fatal("reaction not delivered after reconnect")
		}
	})

	t.Run("it should replace the registry entry with a fresh connection", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		registry.SubscribeState("room-1", func(domain.RoomState) {})
		first := registry.Acquire("room-1")

		dialer.channel(t, 0).waitSent(t, 1)
		require.NoError(t, dialer.channel(t, 0).Close())
		dialer.channel(t, 1).waitSent(t, 1)

		require.NotSame(t, first, registry.Acquire("room-1"))
	})

	t.Run("it should abandon the room when no listener remains", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		registry.Acquire("room-1")
		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		require.NoError(t, channel.Close())

		time.Sleep(100 * time.Millisecond)
		require.Equal(t, 1, dialer.dialCount())
	})

	t.Run("it should not reconnect when the last subscriber cancels during the gap", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		sub := registry.SubscribeState("room-1", func(domain.RoomState) {})
		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		require.NoError(t, channel.Close())

		sub.Cancel()

		time.Sleep(100 * time.Millisecond)
		require.Equal(t, 1, dialer.dialCount())
	})

	t.Run("it should not reconnect an expired room", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		expired := make(chan struct{}, 2)
		registry.SubscribeExpiry("room-1", func() { expired <- struct{}{} })

		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, `{"type":"room_expired"}`)

		select {
		case <-expired:
		case <-time.After(time.Second):
			t.Fatal("expiry not delivered")
		}

		require.NoError(t, channel.Close())

		time.Sleep(100 * time.Millisecond)
		require.Equal(t, 1, dialer.dialCount())
	})

	t.Run("it should treat a room-not-found error as expiry", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		expired := make(chan struct{}, 2)
		registry.SubscribeExpiry("room-1", func() { expired <- struct{}{} })

		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, `{"type":"error","error":"Room not found"}`)

		select {
		case <-expired:
		case <-time.After(time.Second):
			t.Fatal("expiry not delivered")
		}
	})
}

func TestRegistry_Dispose(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should tear the room down without reconnecting", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer, domain.WithReconnectBackoff(fastBackoff()))

		registry.SubscribeState("room-1", func(domain.RoomState) {})
		dialer.channel(t, 0).waitSent(t, 1)

		registry.Dispose("room-1")

		time.Sleep(100 * time.Millisecond)
		require.Equal(t, 1, dialer.dialCount())
	})

	t.Run("it should let a later acquire start from scratch", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		first := registry.Acquire("room-1")
		dialer.channel(t, 0).waitSent(t, 1)

		registry.Dispose("room-1")

		second := registry.Acquire("room-1")
		require.NotSame(t, first, second)
		dialer.channel(t, 1).waitSent(t, 1)
	})
}

func TestRegistry_Subscriptions(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	t.Run("it should give the same callback two independent subscriptions", func(t *testing.T) {
		dialer := newFakeDialer()
		registry := domain.NewRegistry(ctx, dialer)

		var deliveries atomic.Int32
		fn := func(domain.RoomState) { deliveries.Add(1) }

		first := registry.SubscribeState("room-1", fn)
		registry.SubscribeState("room-1", fn)

		channel := dialer.channel(t, 0)
		channel.waitSent(t, 1)
		channel.push(t, statePayload(t, song("1", false)))

		require.Eventually(t, func() bool {
			return deliveries.Load() == 2
		}, time.Second, time.Millisecond)

		first.Cancel()
		channel.push(t, statePayload(t, song("2", false)))

		require.Eventually(t, func() bool {
			return deliveries.Load() == 3
		}, time.Second, time.Millisecond)
	})
}
