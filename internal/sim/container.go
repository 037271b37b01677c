// Package sim owns the single live GameState: it serializes every change,
// drives the tick clock and persists after each commit.
package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ittycoon/internal/cheat"
	"ittycoon/internal/game"
	"ittycoon/internal/persist"
)

type Options struct {
	Store     persist.Store
	Codec     persist.Codec
	Key       string
	Catalog   *game.Catalog
	Rules     game.Rules
	Cheats    *cheat.Registry
	Codes     []cheat.Code
	Logger    *slog.Logger
	Now       func() time.Time
	Rand      func() float64
	QueueSize int
}

type Container struct {
	mu      sync.Mutex
	state   game.GameState
	paused  bool
	warned  map[string]int
	overMsg bool

	store   persist.Store
	codec   persist.Codec
	key     string
	catalog *game.Catalog
	rules   game.Rules
	cheats  *cheat.Registry
	matcher *cheat.Matcher
	eval    *game.Evaluator
	notes   *Queue
	log     *slog.Logger
	now     func() time.Time
	rand    func() float64
}

// New loads the snapshot under opts.Key, falling back to a fresh game when it
// is missing, stale or unreadable.
func New(ctx context.Context, opts Options) (*Container, error) {
	if opts.Store == nil {
		opts.Store = persist.NewMemoryStore()
	}
	if opts.Key == "" {
		opts.Key = "it-tycoon-save"
	}
	if opts.Catalog == nil {
		opts.Catalog = game.DefaultCatalog()
	}
	if opts.Rules == (game.Rules{}) {
		opts.Rules = game.DefaultRules()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Cheats == nil {
		opts.Cheats = cheat.NewRegistry(opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	c := &Container{
		warned:  map[string]int{},
		store:   opts.Store,
		codec:   opts.Codec,
		key:     opts.Key,
		catalog: opts.Catalog,
		rules:   opts.Rules,
		cheats:  opts.Cheats,
		matcher: cheat.NewMatcher(opts.Cheats, opts.Codes),
		notes:   NewQueue(opts.QueueSize),
		log:     opts.Logger.With("component", "sim"),
		now:     opts.Now,
		rand:    opts.Rand,
	}

	raw, err := c.store.Load(ctx, c.key)
	if err != nil && !errors.Is(err, persist.ErrNotFound) {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}
	state, outcome, err := c.codec.Decode(raw)
	if err != nil {
		c.log.Warn("snapshot unreadable, starting fresh", "key", c.key, "err", err)
	}
	c.log.Info("snapshot loaded", "key", c.key, "outcome", string(outcome), "date", state.Date.String())
	c.state = state
	c.overMsg = state.GameOver
	c.eval = game.NewEvaluator(c.catalog, state)
	return c, nil
}

func (c *Container) env() game.Env {
	return game.Env{Catalog: c.catalog, Rules: c.rules, Now: c.now(), Rand: c.rand}
}

// Snapshot returns a copy the caller may keep or modify.
func (c *Container) Snapshot() game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

func (c *Container) Catalog() *game.Catalog { return c.catalog }

func (c *Container) Rules() game.Rules { return c.rules }

func (c *Container) Cheats() *cheat.Registry { return c.cheats }

func (c *Container) Notifications() *Queue { return c.notes }

// Price is base adjusted for the current inflation.
func (c *Container) Price(base float64) float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return game.DynamicPrice(base, c.state)
}

func (c *Container) SetPaused(p bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.paused = p
	c.log.Info("clock paused", "paused", p)
}

func (c *Container) Paused() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused
}

// Dispatch applies a and commits the result. A rejected action leaves the
// state exactly as it was and returns the current state with the error.
func (c *Container) Dispatch(ctx context.Context, a game.Action) (game.GameState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next, err := a.Apply(c.state, c.env())
	if err != nil {
		c.log.Debug("action rejected", "action", a.Name(), "err", err)
		return c.state.Clone(), err
	}
	next, notes := c.eval.Evaluate(next)
	c.commit(ctx, next)
	c.notes.Push(notes...)
	c.log.Debug("action applied", "action", a.Name())
	return c.state.Clone(), nil
}

// Reset starts a new game, keeping only the player's locale and volume.
func (c *Container) Reset(ctx context.Context) game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	fresh := game.DefaultState()
	fresh.Locale = c.state.Locale
	fresh.Volume = c.state.Volume
	c.warned = map[string]int{}
	c.overMsg = false
	c.eval.Reset(fresh)
	c.commit(ctx, fresh)
	c.log.Info("game reset")
	return c.state.Clone()
}

// Tick runs one full step of the clock: finished activities, the pure tick,
// cheat overrides, notifications, goals, then persistence.
func (c *Container) Tick(ctx context.Context) game.GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.GameOver {
		return c.state.Clone()
	}

	env := c.env()
	cur := c.state
	for _, poll := range []game.Action{game.FinishRest{}, game.FinishStudy{}} {
		if next, err := poll.Apply(cur, env); err == nil {
			cur = next
		}
	}

	next, report := game.Tick(cur, c.rules)
	next = c.cheats.Apply(next, c.rules)

	var out []game.Notification
	out = append(out, c.creditNotes(next, report.CreditWarnings)...)
	if next.GameOver && !c.overMsg {
		c.overMsg = true
		out = append(out, game.Notification{
			Kind:    game.NotifyGameOver,
			ID:      string(next.GameOverReason),
			Message: gameOverMessage(next.GameOverReason),
		})
		c.log.Info("game over", "reason", string(next.GameOverReason), "date", next.Date.String())
	}
	next, goalNotes := c.eval.Evaluate(next)
	out = append(out, goalNotes...)

	c.commit(ctx, next)
	c.notes.Push(out...)
	return c.state.Clone()
}

// creditNotes emits a warning only when a credit's days-left value changes, so
// a steady countdown does not repeat itself within a day.
func (c *Container) creditNotes(s game.GameState, warnings []game.CreditWarning) []game.Notification {
	seen := make(map[string]bool, len(warnings))
	var out []game.Notification
	for _, w := range warnings {
		seen[w.CreditID] = true
		if last, ok := c.warned[w.CreditID]; ok && last == w.DaysLeft {
			continue
		}
		c.warned[w.CreditID] = w.DaysLeft
		out = append(out, game.Notification{
			Kind:    game.NotifyCreditWarning,
			ID:      w.CreditID,
			Message: fmt.Sprintf("Credit of %.2f is due in %d day(s)", w.TotalDue, w.DaysLeft),
		})
	}
	for id := range c.warned {
		if !seen[id] {
			delete(c.warned, id)
		}
	}
	return out
}

func gameOverMessage(r game.GameOverReason) string {
	switch r {
	case game.ReasonHealth:
		return "Game over: your health ran out"
	case game.ReasonMood:
		return "Game over: you burned out"
	case game.ReasonCredit:
		return "Game over: an overdue credit was not repaid"
	default:
		return "Game over"
	}
}

// FeedKeys runs key tokens through the cheat matcher and applies any toggled
// override right away.
func (c *Container) FeedKeys(ctx context.Context, keys []string) []cheat.Toggled {
	c.mu.Lock()
	defer c.mu.Unlock()
	toggled := c.matcher.FeedAll(keys)
	if len(toggled) == 0 {
		return nil
	}
	for _, t := range toggled {
		state := "off"
		if t.Active {
			state = "on"
		}
		c.notes.Push(game.Notification{
			Kind:    game.NotifyCheat,
			ID:      string(t.Flag),
			Message: fmt.Sprintf("Cheat %s %s", strings.ToUpper(string(t.Flag)), state),
		})
	}
	if !c.state.GameOver {
		c.commit(ctx, c.cheats.Apply(c.state, c.rules))
	}
	return toggled
}

// commit must be called with c.mu held. Persistence errors are logged and do
// not roll back the in-memory state.
func (c *Container) commit(ctx context.Context, next game.GameState) {
	c.state = next
	raw, err := c.codec.Encode(next)
	if err != nil {
		c.log.Error("encode snapshot failed", "err", err)
		return
	}
	if err := c.store.Save(ctx, c.key, raw); err != nil {
		c.log.Error("save snapshot failed", "key", c.key, "err", err)
	}
}

// Run ticks every Rules.TickEvery until ctx is done. Ticks are skipped while
// paused or once the game is over.
func (c *Container) Run(ctx context.Context) {
	ticker := time.NewTicker(c.rules.TickEvery)
	defer ticker.Stop()

	c.log.Info("clock started", "tick_every", c.rules.TickEvery.String())
	for {
		select {
		case <-ctx.Done():
			c.log.Info("clock stopped")
			return
		case <-ticker.C:
			if c.idle() {
				continue
			}
			c.Tick(ctx)
		}
	}
}

func (c *Container) idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.paused || c.state.GameOver
}
