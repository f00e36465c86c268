package domain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/arthurdotwork/songroom/internal/protocol"
)

// Client is the surface UI consumers talk to. Every action is
// send-and-forget: success or failure is only ever observable through the
// next pushed room state.
type Client struct {
	registry *Registry
	profiles ProfileStore
}

func NewClient(registry *Registry, profiles ProfileStore) *Client {
	return &Client{registry: registry, profiles: profiles}
}

func (c *Client) Registry() *Registry {
	return c.registry
}

func (c *Client) send(roomID string, message any) error {
	payload, err := protocol.Encode(message)
	if err != nil {
		return fmt.Errorf("protocol.Encode: %w", err)
	}

	if err := c.registry.Acquire(roomID).Send(payload); err != nil {
		return fmt.Errorf("conn.Send: %w", err)
	}

	return nil
}

// AddSong queues a song. The singer name falls back to the stored guest
// profile for the room, then to "Guest"; profile store failures read as
// absence, they never fail the action.
func (c *Client) AddSong(ctx context.Context, roomID string, song Song, position InsertPosition) error {
	if position == "" {
		position = InsertAppend
	}

	singer := song.SingerName
	if singer == "" {
		singer = c.resolveSingerName(ctx, roomID)
	}

	return c.send(roomID, protocol.AddVideo{
		Type:           protocol.TypeAddVideo,
		ID:             song.ID,
		Title:          song.Title,
		Artist:         song.Artist,
		CoverURL:       song.CoverURL,
		SingerName:     singer,
		InsertPosition: string(position),
	})
}

func (c *Client) resolveSingerName(ctx context.Context, roomID string) string {
	if c.profiles == nil {
		return DefaultSingerName
	}

	profile, ok, err := c.profiles.Profile(ctx, roomID)
	if err != nil {
		slog.DebugContext(ctx, "profile lookup failed", "room_id", roomID, "error", err)
		return DefaultSingerName
	}
	if !ok || profile.Name == "" {
		return DefaultSingerName
	}

	return profile.Name
}

func (c *Client) RemoveSong(ctx context.Context, roomID string, songID string) error {
	return c.send(roomID, protocol.NewRemoveVideo(songID))
}

func (c *Client) SetMeta(ctx context.Context, roomID string, name string) error {
	return c.send(roomID, protocol.NewSetRoomMeta(name))
}

// MoveSong moves a song to the given upcoming-queue slot. Out-of-range
// targets clamp; moves of absent songs and moves that resolve to no change
// are suppressed and nothing is sent.
func (c *Client) MoveSong(ctx context.Context, roomID string, songID string, target int) error {
	conn := c.registry.Acquire(roomID)
	state, _ := conn.CurrentState()

	ids, changed := MovedUpcomingIDs(state.Playlist, songID, target)
	if !changed {
		return nil
	}

	return c.send(roomID, protocol.NewReorderUpcoming(ids))
}

// SetNowPlaying bumps a song to the front of the upcoming queue.
func (c *Client) SetNowPlaying(ctx context.Context, roomID string, songID string) error {
	conn := c.registry.Acquire(roomID)
	state, _ := conn.CurrentState()

	ids, changed := FrontedUpcomingIDs(state.Playlist, songID)
	if !changed {
		return nil
	}

	return c.send(roomID, protocol.NewReorderUpcoming(ids))
}

// SkipToNext marks the now-playing song as played. With nothing playing it
// is a no-op.
func (c *Client) SkipToNext(ctx context.Context, roomID string) error {
	conn := c.registry.Acquire(roomID)
	state, _ := conn.CurrentState()

	current, ok := CurrentSong(state.Playlist)
	if !ok {
		return nil
	}

	return c.send(roomID, protocol.NewMarkAsPlayed(current.ID))
}

func (c *Client) BroadcastReaction(ctx context.Context, roomID string, emoji string) error {
	return c.send(roomID, protocol.NewEmoji(emoji))
}

// RoomState returns the cached state synchronously, or blocks until the
// first state push when none has arrived yet.
func (c *Client) RoomState(ctx context.Context, roomID string) (RoomState, error) {
	conn := c.registry.Acquire(roomID)
	if state, ok := conn.CurrentState(); ok {
		return state, nil
	}

	state, err := conn.WaitState(ctx)
	if err != nil {
		return RoomState{}, fmt.Errorf("conn.WaitState: %w", err)
	}

	return state, nil
}

func (c *Client) SubscribeState(roomID string, fn StateListener) *Subscription {
	return c.registry.SubscribeState(roomID, fn)
}

// SubscribeView is the reactive projector binding: each state delivery
// re-derives the view from scratch and hands the consumer a full
// replacement, including the synchronous catch-up delivery.
func (c *Client) SubscribeView(roomID string, fn func(view View)) *Subscription {
	return c.registry.SubscribeState(roomID, func(state RoomState) {
		fn(Project(state))
	})
}

func (c *Client) SubscribeExpiry(roomID string, fn ExpiryListener) *Subscription {
	return c.registry.SubscribeExpiry(roomID, fn)
}

func (c *Client) SubscribeReactions(roomID string, fn ReactionListener) *Subscription {
	return c.registry.SubscribeReactions(roomID, fn)
}

// GuestProfile reads the locally persisted display identity for a room.
func (c *Client) GuestProfile(ctx context.Context, roomID string) (GuestProfile, bool) {
	if c.profiles == nil {
		return GuestProfile{}, false
	}

	profile, ok, err := c.profiles.Profile(ctx, roomID)
	if err != nil {
		slog.DebugContext(ctx, "profile lookup failed", "room_id", roomID, "error", err)
		return GuestProfile{}, false
	}

	return profile, ok
}

func (c *Client) SaveGuestProfile(ctx context.Context, roomID string, profile GuestProfile) error {
	if c.profiles == nil {
		return nil
	}

	if err := c.profiles.SaveProfile(ctx, roomID, profile); err != nil {
		return fmt.Errorf("profiles.SaveProfile: %w", err)
	}

	return nil
}
