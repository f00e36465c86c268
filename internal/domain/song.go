package domain

// Song is one entry of a room playlist. A nil PlayedAt means the song is
// still upcoming; the service assigns PlayedAt, never the client.
type Song struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Artist     string  `json:"artist,omitempty"`
	CoverURL   string  `json:"coverUrl,omitempty"`
	Duration   string  `json:"duration,omitempty"`
	SingerName string  `json:"singerName,omitempty"`
	CreatedAt  string  `json:"createdAt,omitempty"`
	PlayedAt   *string `json:"playedAt"`
}

func (s Song) Played() bool {
	return s.PlayedAt != nil
}

type RoomMeta struct {
	Name string `json:"name,omitempty"`
}

// RoomState is the unit the service pushes on every change. The playlist
// order is the single source of truth for play order.
type RoomState struct {
	Meta     *RoomMeta `json:"meta"`
	Playlist []Song    `json:"playlist"`
}

// InsertPosition tells the service where an added song goes.
type InsertPosition string

const (
	InsertAppend InsertPosition = "append"
	InsertNext   InsertPosition = "next"
)
