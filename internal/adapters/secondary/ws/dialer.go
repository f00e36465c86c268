// Package ws implements the room channel over a websocket, the wire the
// room service speaks.
package ws

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/arthurdotwork/songroom/internal/domain"
	"github.com/gorilla/websocket"
)

type Dialer struct {
	host   string
	dialer *websocket.Dialer
}

// NewDialer builds a dialer for the given host. http(s) schemes are
// rewritten to ws(s); a bare host gets the ws scheme.
func NewDialer(host string) *Dialer {
	return &Dialer{
		host:   normalizeHost(host),
		dialer: websocket.DefaultDialer,
	}
}

func normalizeHost(host string) string {
	host = strings.TrimSuffix(strings.TrimSpace(host), "/")

	switch {
	case strings.HasPrefix(host, "https://"):
		return "wss://" + strings.TrimPrefix(host, "https://")
	case strings.HasPrefix(host, "http://"):
		return "ws://" + strings.TrimPrefix(host, "http://")
	case strings.HasPrefix(host, "ws://"), strings.HasPrefix(host, "wss://"):
		return host
	default:
		return "ws://" + host
	}
}

func (d *Dialer) Dial(ctx context.Context, roomID string) (domain.Channel, error) {
	endpoint := fmt.Sprintf("%s/ws/%s", d.host, url.PathEscape(roomID))

	conn, resp, err := d.dialer.DialContext(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("dialer.DialContext: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	return &channel{conn: conn}, nil
}

// channel wraps one websocket connection. Writes are serialized because
// gorilla allows at most one concurrent writer.
type channel struct {
	writeMu sync.Mutex
	conn    *websocket.Conn
}

func (c *channel) Send(payload []byte) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		return fmt.Errorf("conn.WriteMessage: %w", err)
	}

	return nil
}

func (c *channel) Receive() ([]byte, error) {
	for {
		messageType, payload, err := c.conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("conn.ReadMessage: %w", err)
		}

		if messageType != websocket.TextMessage {
			continue
		}

		return payload, nil
	}
}

func (c *channel) Close() error {
	return c.conn.Close()
}
