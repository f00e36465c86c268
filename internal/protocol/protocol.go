// Package protocol defines the JSON envelopes exchanged with the room
// service. Every envelope carries a "type" discriminator.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

const (
	TypeGetState        = "getState"
	TypeSetRoomMeta     = "setRoomMeta"
	TypeAddVideo        = "add-video"
	TypeRemoveVideo     = "remove-video"
	TypeReorderUpcoming = "reorder-upcoming"
	TypeMarkAsPlayed    = "mark-as-played"
	TypeEmoji           = "emoji"

	TypeState       = "state"
	TypeRoomExpired = "room_expired"
	TypeError       = "error"
)

var ErrUnknownMessage = errors.New("unknown message type")

// GetState asks the service for a full state push. It is the only way a
// client learns the current playlist; there is no implicit snapshot.
type GetState struct {
	Type string `json:"type"`
}

type MetaPatch struct {
	Name string `json:"name"`
}

type SetRoomMeta struct {
	Type  string    `json:"type"`
	Patch MetaPatch `json:"patch"`
}

type AddVideo struct {
	Type           string `json:"type"`
	ID             string `json:"id"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	CoverURL       string `json:"coverUrl"`
	SingerName     string `json:"singerName"`
	InsertPosition string `json:"insertPosition"`
}

type RemoveVideo struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

// ReorderUpcoming carries the full ordered list of unplayed ids, never a
// delta. The last full list applied by the service wins.
type ReorderUpcoming struct {
	Type string   `json:"type"`
	IDs  []string `json:"ids"`
}

type MarkAsPlayed struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type Emoji struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

func NewGetState() GetState {
	return GetState{Type: TypeGetState}
}

func NewSetRoomMeta(name string) SetRoomMeta {
	return SetRoomMeta{Type: TypeSetRoomMeta, Patch: MetaPatch{Name: name}}
}

func NewRemoveVideo(id string) RemoveVideo {
	return RemoveVideo{Type: TypeRemoveVideo, ID: id}
}

func NewReorderUpcoming(ids []string) ReorderUpcoming {
	return ReorderUpcoming{Type: TypeReorderUpcoming, IDs: ids}
}

func NewMarkAsPlayed(id string) MarkAsPlayed {
	return MarkAsPlayed{Type: TypeMarkAsPlayed, ID: id}
}

func NewEmoji(emoji string) Emoji {
	return Emoji{Type: TypeEmoji, Emoji: emoji}
}

func Encode(message any) ([]byte, error) {
	payload, err := json.Marshal(message)
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return payload, nil
}

// ServerMessage is one decoded inbound envelope.
type ServerMessage interface {
	isServerMessage()
}

// StateMessage keeps the state body raw; the consumer owns its shape.
type StateMessage struct {
	State json.RawMessage
}

type RoomExpiredMessage struct{}

type ReactionMessage struct {
	Emoji string
}

func (StateMessage) isServerMessage()       {}
func (RoomExpiredMessage) isServerMessage() {}
func (ReactionMessage) isServerMessage()    {}

type envelope struct {
	Type  string          `json:"type"`
	State json.RawMessage `json:"state"`
	Error string          `json:"error"`
	Emoji string          `json:"emoji"`
}

// Decode parses one inbound payload. A "Room not found" error decodes to
// RoomExpiredMessage; the connection layer treats both identically.
func Decode(payload []byte) (ServerMessage, error) {
	var env envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}

	switch env.Type {
	case TypeState:
		return StateMessage{State: env.State}, nil
	case TypeRoomExpired:
		return RoomExpiredMessage{}, nil
	case TypeError:
		if env.Error == "Room not found" {
			return RoomExpiredMessage{}, nil
		}

		return nil, fmt.Errorf("%w: error %q", ErrUnknownMessage, env.Error)
	case TypeEmoji:
		if env.Emoji == "" {
			return nil, fmt.Errorf("%w: empty emoji", ErrUnknownMessage)
		}

		return ReactionMessage{Emoji: env.Emoji}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMessage, env.Type)
	}
}
