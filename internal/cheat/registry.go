// Package cheat holds the player-facing cheat toggles and the override step that
// runs after every tick.
package cheat

import (
	"log/slog"
	"slices"
	"sync"

	"ittycoon/internal/game"
)

type Flag string

const (
	FlagGod      Flag = "god"
	FlagRich     Flag = "rich"
	FlagImmortal Flag = "immortal"
)

// Registry is a set of active flags. It has no persistence; every session
// starts with everything off.
type Registry struct {
	mu     sync.RWMutex
	active map[Flag]bool
	log    *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{active: map[Flag]bool{}, log: logger}
}

// Toggle flips name and reports whether it is active afterwards.
func (r *Registry) Toggle(name Flag) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	on := !r.active[name]
	if on {
		r.active[name] = true
	} else {
		delete(r.active, name)
	}
	r.log.Info("cheat toggled", "flag", string(name), "active", on)
	return on
}

func (r *Registry) IsActive(name Flag) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.active[name]
}

func (r *Registry) Active() []Flag {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Flag, 0, len(r.active))
	for f := range r.active {
		out = append(out, f)
	}
	slices.Sort(out)
	return out
}

// Apply overwrites fields for every active flag. It must be the last writer of a
// tick: it replaces values outright instead of merging with what the tick
// computed.
func (r *Registry) Apply(s game.GameState, rules game.Rules) game.GameState {
	r.mu.RLock()
	god, rich, immortal := r.active[FlagGod], r.active[FlagRich], r.active[FlagImmortal]
	r.mu.RUnlock()
	if !god && !rich && !immortal {
		return s
	}
	next := s.Clone()
	if god || rich {
		next.Stats.Money = rules.CheatMoney
	}
	if god || immortal {
		next.Stats.Health = next.Stats.MaxHealth
		next.Stats.Mood = next.Stats.MaxMood
	}
	if god {
		next.Stats.Stamina = next.Stats.MaxStamina
	}
	return next
}
