package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/stretchr/testify/require"
)

// fakeChannel is a scriptable duplex channel: tests inspect what the
// connection sent and push inbound payloads.
type fakeChannel struct {
	mu        sync.Mutex
	sent      [][]byte
	inbound   chan []byte
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		inbound: make(chan []byte, 16),
		closed:  make(chan struct{}),
	}
}

func (c *fakeChannel) Send(payload []byte) error {
	select {
	case <-c.closed:
		return errors.New("channel closed")
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.sent = append(c.sent, append([]byte(nil), payload...))
	return nil
}

func (c *fakeChannel) Receive() ([]byte, error) {
	select {
	case payload := <-c.inbound:
		return payload, nil
	case <-c.closed:
		return nil, errors.New("channel closed")
	}
}

func (c *fakeChannel) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeChannel) push(t *testing.T, payload string) {
	t.Helper()

	select {
	case c.inbound <- []byte(payload):
	case <-time.After(time.Second):
		t.Fatal("inbound buffer full")
	}
}

func (c *fakeChannel) sentPayloads() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	payloads := make([]string, len(c.sent))
	for i, p := range c.sent {
		payloads[i] = string(p)
	}

	return payloads
}

func (c *fakeChannel) waitSent(t *testing.T, n int) []string {
	t.Helper()

	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return len(c.sent) >= n
	}, time.Second, time.Millisecond)

	return c.sentPayloads()
}

// fakeDialer hands out fake channels and can hold dials behind a gate so
// tests can exercise the Connecting state.
type fakeDialer struct {
	mu       sync.Mutex
	channels []*fakeChannel
	gate     chan struct{}
}

func newFakeDialer() *fakeDialer {
	return &fakeDialer{}
}

func newGatedDialer() *fakeDialer {
	return &fakeDialer{gate: make(chan struct{})}
}

func (d *fakeDialer) Dial(ctx context.Context, roomID string) (domain.Channel, error) {
	if d.gate != nil {
		select {
		case <-d.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	channel := newFakeChannel()
	d.channels = append(d.channels, channel)
	return channel, nil
}

func (d *fakeDialer) open() {
	close(d.gate)
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.channels)
}

func (d *fakeDialer) channel(t *testing.T, i int) *fakeChannel {
	t.Helper()

	require.Eventually(t, func() bool {
		d.mu.Lock()
		defer d.mu.Unlock()
		return len(d.channels) > i
	}, time.Second, time.Millisecond)

	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channels[i]
}

func song(id string, played bool) domain.Song {
	s := domain.Song{ID: id, Title: "title-" + id}
	if played {
		at := "2024-01-01T00:00:00Z"
		s.PlayedAt = &at
	}

	return s
}

func statePayload(t *testing.T, songs ...domain.Song) string {
	t.Helper()

	payload, err := json.Marshal(map[string]any{
		"type": "state",
		"state": domain.RoomState{
			Playlist: songs,
		},
	})
	require.NoError(t, err)

	return string(payload)
}

type sentMessage struct {
	Type           string   `json:"type"`
	ID             string   `json:"id"`
	IDs            []string `json:"ids"`
	Emoji          string   `json:"emoji"`
	SingerName     string   `json:"singerName"`
	InsertPosition string   `json:"insertPosition"`
}

func decodeSent(t *testing.T, payload string) sentMessage {
	t.Helper()

	var m sentMessage
	require.NoError(t, json.Unmarshal([]byte(payload), &m))
	return m
}
