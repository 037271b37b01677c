package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ittycoon/internal/cheat"
	"ittycoon/internal/game"
)

// Client talks to a running tycoon-api.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		HTTP: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// APIError is a non-2xx reply. Message is the server's error field when present.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api status %d: %s", e.Status, e.Message)
}

type stateReply struct {
	State  game.GameState `json:"state"`
	Paused bool           `json:"paused"`
}

func (c *Client) State(ctx context.Context) (View, error) {
	var out stateReply
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/state", nil, &out)
	return View(out), err
}

func (c *Client) Act(ctx context.Context, name string, payload json.RawMessage) (View, error) {
	var out stateReply
	var in any
	if len(payload) > 0 {
		in = payload
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/actions/"+url.PathEscape(name), in, &out)
	return View(out), err
}

func (c *Client) Reset(ctx context.Context) (View, error) {
	var out stateReply
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/reset", nil, &out)
	return View(out), err
}

func (c *Client) Tick(ctx context.Context, n int) (View, error) {
	var out stateReply
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/tick?n="+strconv.Itoa(n), nil, &out)
	return View(out), err
}

func (c *Client) SetPaused(ctx context.Context, paused bool) (View, error) {
	var out stateReply
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/pause", map[string]any{"paused": paused}, &out)
	return View(out), err
}

func (c *Client) CheatKeys(ctx context.Context, keys []string) ([]cheat.Toggled, error) {
	var out struct {
		Toggled []cheat.Toggled `json:"toggled"`
	}
	err := c.jsonRequest(ctx, http.MethodPost, "/v1/cheats/keys", map[string]any{"keys": keys}, &out)
	return out.Toggled, err
}

func (c *Client) Price(ctx context.Context, base float64) (float64, error) {
	var out struct {
		Price float64 `json:"price"`
	}
	q := url.Values{"base": {strconv.FormatFloat(base, 'f', -1, 64)}}
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/price?"+q.Encode(), nil, &out)
	return out.Price, err
}

// NextNotification returns false when the server queue is empty.
func (c *Client) NextNotification(ctx context.Context) (game.Notification, bool, error) {
	var out game.Notification
	err := c.jsonRequest(ctx, http.MethodGet, "/v1/notifications/next", nil, &out)
	if errors.Is(err, errNoContent) {
		return game.Notification{}, false, nil
	}
	if err != nil {
		return game.Notification{}, false, err
	}
	return out, true, nil
}

var errNoContent = errors.New("no content")

func (c *Client) jsonRequest(ctx context.Context, method, path string, in any, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNoContent {
		return errNoContent
	}
	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		var payload struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &payload) == nil && payload.Error != "" {
			msg = payload.Error
		}
		return &APIError{Status: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
