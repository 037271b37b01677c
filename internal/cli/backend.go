package cli

import (
	"context"
	"encoding/json"

	"ittycoon/internal/cheat"
	"ittycoon/internal/game"
	"ittycoon/internal/sim"
)

// View is what the terminal front ends render.
type View struct {
	State  game.GameState
	Paused bool
}

// Backend is either an in-process container or a remote tycoon-api.
type Backend interface {
	State(ctx context.Context) (View, error)
	Act(ctx context.Context, name string, payload json.RawMessage) (View, error)
	Reset(ctx context.Context) (View, error)
	Tick(ctx context.Context, n int) (View, error)
	SetPaused(ctx context.Context, paused bool) (View, error)
	CheatKeys(ctx context.Context, keys []string) ([]cheat.Toggled, error)
	Price(ctx context.Context, base float64) (float64, error)
	NextNotification(ctx context.Context) (game.Notification, bool, error)
}

var (
	_ Backend = (*Client)(nil)
	_ Backend = (*Local)(nil)
)

// Local drives a container in the same process.
type Local struct {
	C *sim.Container
}

func (l *Local) view() View {
	return View{State: l.C.Snapshot(), Paused: l.C.Paused()}
}

func (l *Local) State(context.Context) (View, error) {
	return l.view(), nil
}

func (l *Local) Act(ctx context.Context, name string, payload json.RawMessage) (View, error) {
	action, err := game.DecodeAction(name, payload)
	if err != nil {
		return l.view(), err
	}
	if _, err := l.C.Dispatch(ctx, action); err != nil {
		return l.view(), err
	}
	return l.view(), nil
}

func (l *Local) Reset(ctx context.Context) (View, error) {
	l.C.Reset(ctx)
	return l.view(), nil
}

func (l *Local) Tick(ctx context.Context, n int) (View, error) {
	for range max(n, 1) {
		l.C.Tick(ctx)
	}
	return l.view(), nil
}

func (l *Local) SetPaused(_ context.Context, paused bool) (View, error) {
	l.C.SetPaused(paused)
	return l.view(), nil
}

func (l *Local) CheatKeys(ctx context.Context, keys []string) ([]cheat.Toggled, error) {
	return l.C.FeedKeys(ctx, keys), nil
}

func (l *Local) Price(_ context.Context, base float64) (float64, error) {
	return l.C.Price(base), nil
}

func (l *Local) NextNotification(context.Context) (game.Notification, bool, error) {
	n, ok := l.C.Notifications().Pop()
	return n, ok, nil
}
