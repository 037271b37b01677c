package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ittycoon/internal/config"
	"ittycoon/internal/game"
	"ittycoon/internal/persist"
	"ittycoon/internal/sim"
)

func newTestServer(t *testing.T, cfg config.APIConfig) (*httptest.Server, *sim.Container) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := sim.New(context.Background(), sim.Options{Store: persist.NewMemoryStore(), Logger: logger})
	if err != nil {
		t.Fatalf("new container: %v", err)
	}
	if cfg.RateLimitRPS == 0 {
		cfg.RateLimitRPS = 1000
		cfg.RateLimitBurst = 1000
	}
	ts := httptest.NewServer(New(cfg, logger, c).Handler())
	t.Cleanup(ts.Close)
	return ts, c
}

func do(t *testing.T, method, url, body string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(resp.Body)
	return resp, raw
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})
	resp, _ := do(t, http.MethodGet, ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status: %d", resp.StatusCode)
	}
}

func TestStateAndAction(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})

	resp, raw := do(t, http.MethodPost, ts.URL+"/v1/actions/take_credit", `{"optionId":"micro"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, raw)
	}
	var out stateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.State.Stats.Money != 1000 {
		t.Fatalf("money: got %v", out.State.Stats.Money)
	}

	resp, raw = do(t, http.MethodGet, ts.URL+"/v1/state", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("state status %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out.State.Banking.Credits) != 1 {
		t.Fatalf("state not updated: %s", raw)
	}
}

func TestActionErrorsMapToStatus(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})
	tests := []struct {
		path string
		body string
		want int
	}{
		{path: "/v1/actions/fly", body: "", want: http.StatusNotFound},
		{path: "/v1/actions/take_credit", body: `{`, want: http.StatusBadRequest},
		{path: "/v1/actions/repay_credit", body: "", want: http.StatusNotFound},
		{path: "/v1/actions/buy_hardware", body: `{"itemId":"cpu_p4"}`, want: http.StatusBadRequest},
		{path: "/v1/actions/apply_job", body: `{"jobId":"support"}`, want: http.StatusForbidden},
		{path: "/v1/actions/finish_rest", body: "", want: http.StatusConflict},
	}
	for _, tc := range tests {
		resp, raw := do(t, http.MethodPost, ts.URL+tc.path, tc.body)
		if resp.StatusCode != tc.want {
			t.Fatalf("%s: status %d want %d (%s)", tc.path, resp.StatusCode, tc.want, raw)
		}
		var body map[string]any
		if err := json.Unmarshal(raw, &body); err != nil || body["error"] == nil {
			t.Fatalf("%s: expected error body, got %s", tc.path, raw)
		}
	}
}

func TestResetPauseAndTick(t *testing.T) {
	ts, c := newTestServer(t, config.APIConfig{})
	do(t, http.MethodPost, ts.URL+"/v1/actions/set_locale", `{"locale":"ru"}`)

	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/tick?n=4", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("tick status %d", resp.StatusCode)
	}
	if got := c.Snapshot().Date; got != game.DefaultState().Date.AddMinutes(4*c.Rules().MinutesPerTick) {
		t.Fatalf("date after ticks: %v", got)
	}

	resp, _ = do(t, http.MethodPost, ts.URL+"/v1/pause", `{"paused":true}`)
	if resp.StatusCode != http.StatusOK || !c.Paused() {
		t.Fatalf("pause failed: status %d", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodPost, ts.URL+"/v1/pause", `{"paused":"yes"}`); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad pause body: status %d", resp.StatusCode)
	}

	do(t, http.MethodPost, ts.URL+"/v1/reset", "")
	s := c.Snapshot()
	if s.Date != game.DefaultState().Date || s.Locale != "ru" {
		t.Fatalf("reset: date=%v locale=%q", s.Date, s.Locale)
	}
}

func TestCheatsAndNotifications(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})

	resp, _ := do(t, http.MethodGet, ts.URL+"/v1/notifications/next", "")
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("empty queue: status %d", resp.StatusCode)
	}

	resp, raw := do(t, http.MethodPost, ts.URL+"/v1/cheats/keys", `{"keys":["i","d","d","q","d"]}`)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"god"`) {
		t.Fatalf("cheat keys: %d %s", resp.StatusCode, raw)
	}

	_, raw = do(t, http.MethodGet, ts.URL+"/v1/cheats", "")
	var active struct {
		Active []string `json:"active"`
	}
	if err := json.Unmarshal(raw, &active); err != nil || len(active.Active) != 1 || active.Active[0] != "god" {
		t.Fatalf("active cheats: %s", raw)
	}

	resp, raw = do(t, http.MethodGet, ts.URL+"/v1/notifications/next", "")
	var note game.Notification
	if resp.StatusCode != http.StatusOK || json.Unmarshal(raw, &note) != nil || note.Kind != game.NotifyCheat {
		t.Fatalf("expected cheat notification, got %d %s", resp.StatusCode, raw)
	}
}

func TestPrice(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{})
	resp, raw := do(t, http.MethodGet, ts.URL+"/v1/price?base=100", "")
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(raw), `"price":100`) {
		t.Fatalf("price: %d %s", resp.StatusCode, raw)
	}
	for _, base := range []string{"abc", "-1", "NaN", "Inf", "-Inf", "infinity"} {
		resp, raw := do(t, http.MethodGet, ts.URL+"/v1/price?base="+base, "")
		if resp.StatusCode != http.StatusBadRequest || !strings.Contains(string(raw), `"error"`) {
			t.Fatalf("base=%s: %d %s", base, resp.StatusCode, raw)
		}
	}
}

func TestRateLimitOnActions(t *testing.T) {
	ts, _ := newTestServer(t, config.APIConfig{RateLimitRPS: 0.001, RateLimitBurst: 1})
	if resp, _ := do(t, http.MethodPost, ts.URL+"/v1/actions/set_volume", `{"volume":0.3}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("first request: status %d", resp.StatusCode)
	}
	resp, _ := do(t, http.MethodPost, ts.URL+"/v1/actions/set_volume", `{"volume":0.3}`)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("second request: status %d want 429", resp.StatusCode)
	}
	if resp, _ := do(t, http.MethodGet, ts.URL+"/v1/state", ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("reads must not be limited: status %d", resp.StatusCode)
	}
}
