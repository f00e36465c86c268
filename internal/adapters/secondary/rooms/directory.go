// Package rooms is the REST client used to bootstrap a room identifier
// before any channel is opened: existence checks, listing and creation.
package rooms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

type Room struct {
	Key       string `json:"room_key"`
	Name      string `json:"room_name"`
	CreatedAt string `json:"created_at"`
	ExpiredAt string `json:"expired_at"`
	IsExpired bool   `json:"is_expired"`
}

type Directory struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewDirectory builds a client for the room directory API. token may be
// empty; listing and creation require it, existence checks do not.
func NewDirectory(baseURL string, token string) *Directory {
	return &Directory{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// CheckRoom reports whether a room code exists. Failures of any kind read
// as absence; the caller only ever gets a boolean answer.
func (d *Directory) CheckRoom(ctx context.Context, roomKey string) (Room, bool) {
	endpoint := fmt.Sprintf("%s/api/rooms/%s", d.baseURL, url.PathEscape(roomKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Room{}, false
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Room{}, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Room{}, false
	}

	var room Room
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return Room{}, false
	}

	return room, true
}

func (d *Directory) ListRooms(ctx context.Context) ([]Room, error) {
	endpoint := fmt.Sprintf("%s/api/rooms", d.baseURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	d.authorize(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list rooms: unexpected status %d", resp.StatusCode)
	}

	var listed []Room
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	return listed, nil
}

func (d *Directory) CreateRoom(ctx context.Context, name string) (Room, error) {
	endpoint := fmt.Sprintf("%s/api/rooms", d.baseURL)

	body, err := json.Marshal(map[string]string{"name": name})
	if err != nil {
		return Room{}, fmt.Errorf("json.Marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return Room{}, fmt.Errorf("http.NewRequestWithContext: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	d.authorize(req)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return Room{}, fmt.Errorf("httpClient.Do: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return Room{}, fmt.Errorf("create room: unexpected status %d", resp.StatusCode)
	}

	var room Room
	if err := json.NewDecoder(resp.Body).Decode(&room); err != nil {
		return Room{}, fmt.Errorf("json.Decode: %w", err)
	}

	return room, nil
}

func (d *Directory) authorize(req *http.Request) {
	if d.token != "" {
		req.Header.Set("Authorization", "Bearer "+d.token)
	}
}
