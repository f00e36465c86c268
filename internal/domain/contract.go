package domain

import (
	"context"
)

// Channel is one open duplex link to the room service.
type Channel interface {
	Send(payload []byte) error
	// Receive blocks until the next inbound payload or a transport error.
	Receive() ([]byte, error)
	Close() error
}

// Dialer opens a channel for one room. Dial may block; the connection calls
// it from its own goroutine so Acquire never does.
type Dialer interface {
	Dial(ctx context.Context, roomID string) (Channel, error)
}

// ProfileStore persists guest profiles per room. A missing profile is
// reported through the bool, never as an error the caller must branch on.
type ProfileStore interface {
	Profile(ctx context.Context, roomID string) (GuestProfile, bool, error)
	SaveProfile(ctx context.Context, roomID string, profile GuestProfile) error
}
