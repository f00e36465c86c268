package domain

// GuestProfile is the locally persisted display identity of an
// unauthenticated room participant, keyed by room identifier.
type GuestProfile struct {
	Name   string `json:"name"`
	UserID string `json:"userId,omitempty"`
}

// DefaultSingerName is used when no guest profile is known for a room.
const DefaultSingerName = "Guest"
