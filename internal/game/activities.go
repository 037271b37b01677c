package game

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strings"
)

// StartRest pays for a rest up front. The effect only lands through FinishRest,
// so an abandoned rest keeps the money spent.
type StartRest struct {
	OptionID string `json:"optionId"`
}

func (StartRest) Name() string { return "start_rest" }

func (a StartRest) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if s.Activity != nil {
		return s, ErrBusy
	}
	opt, ok := env.Catalog.RestOption(a.OptionID)
	if !ok {
		return s, fmt.Errorf("%w: rest option %q", ErrUnknownItem, a.OptionID)
	}
	price, err := charge(s, opt.BasePrice)
	if err != nil {
		return s, err
	}
	next := s.Clone()
	next.Stats.Money -= price
	next.Activity = &Activity{
		Kind:      "rest",
		OptionID:  opt.ID,
		StartedAt: env.Now,
		Duration:  opt.Duration,
	}
	return next, nil
}

type FinishRest struct{}

func (FinishRest) Name() string { return "finish_rest" }

func (FinishRest) Apply(s GameState, env Env) (GameState, error) {
	if s.Activity == nil || s.Activity.Kind != "rest" || !s.Activity.DoneAt(env.Now) {
		return s, ErrNotReady
	}
	next := s.Clone()
	next.Activity = nil
	opt, ok := env.Catalog.RestOption(s.Activity.OptionID)
	if !ok {
		return next, nil
	}
	if !next.GameOver {
		next.Stats.adjust(opt.Mood, opt.Health, opt.Stamina)
	}
	appendLog(&next, "rest", "Finished "+strings.ToLower(opt.Name), opt.ID)
	return next, nil
}

// Hack tries to break into a target. A failed attempt costs an
// inflation-adjusted fine, capped at what the player holds.
type Hack struct {
	TargetID string `json:"targetId"`
}

func (Hack) Name() string { return "hack" }

func (a Hack) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if !s.HasInternet {
		return s, ErrNoInternet
	}
	target, ok := env.Catalog.HackTarget(a.TargetID)
	if !ok {
		return s, fmt.Errorf("%w: hack target %q", ErrUnknownItem, a.TargetID)
	}
	if env.Catalog.SoftwareTier(s, "hacking") < target.MinHackingTier {
		return s, fmt.Errorf("%w: hacking tier %d required", ErrRequirementsNotMet, target.MinHackingTier)
	}
	if s.Stats.Stamina < target.StaminaCost {
		return s, ErrInsufficientStamina
	}

	next := s.Clone()
	next.Stats.adjust(0, 0, -target.StaminaCost)
	if env.roll() < target.SuccessChance {
		next.Stats.Money += target.Reward
		appendLog(&next, "hack", fmt.Sprintf("Hacked %s, looted %.2f", target.Name, target.Reward), target.ID)
		return next, nil
	}
	fine := math.Min(DynamicPrice(target.Fine, s), next.Stats.Money)
	next.Stats.Money -= fine
	next.Stats.adjust(-5, 0, 0)
	appendLog(&next, "hack_fail", fmt.Sprintf("Caught hacking %s, fined %.2f", target.Name, fine), target.ID)
	return next, nil
}

// DistinctHackTargets counts successful hacks still in the log window.
func DistinctHackTargets(s GameState) int {
	var seen []string
	for _, l := range s.Logs {
		if l.Kind == "hack" && !slices.Contains(seen, l.Target) {
			seen = append(seen, l.Target)
		}
	}
	return len(seen)
}

type SetLocale struct {
	Locale string `json:"locale"`
}

func (SetLocale) Name() string { return "set_locale" }

func (a SetLocale) Apply(s GameState, _ Env) (GameState, error) {
	loc := strings.TrimSpace(a.Locale)
	if loc == "" {
		return s, fmt.Errorf("%w: empty locale", ErrAmountOutOfRange)
	}
	next := s.Clone()
	next.Locale = loc
	return next, nil
}

type SetVolume struct {
	Volume float64 `json:"volume"`
}

func (SetVolume) Name() string { return "set_volume" }

func (a SetVolume) Apply(s GameState, _ Env) (GameState, error) {
	next := s.Clone()
	next.Volume = clamp(a.Volume, 0, 1)
	return next, nil
}

// SaveMinigame stores a minigame's own state. The blob is never interpreted here.
type SaveMinigame struct {
	Game string          `json:"game"`
	Blob json.RawMessage `json:"blob"`
}

func (SaveMinigame) Name() string { return "save_minigame" }

func (a SaveMinigame) Apply(s GameState, _ Env) (GameState, error) {
	if strings.TrimSpace(a.Game) == "" {
		return s, fmt.Errorf("%w: minigame name required", ErrUnknownItem)
	}
	if len(a.Blob) > 0 && !json.Valid(a.Blob) {
		return s, fmt.Errorf("minigame %s: blob is not valid JSON", a.Game)
	}
	next := s.Clone()
	if next.Minigames == nil {
		next.Minigames = map[string]json.RawMessage{}
	}
	if len(a.Blob) == 0 {
		delete(next.Minigames, a.Game)
	} else {
		next.Minigames[a.Game] = slices.Clone(a.Blob)
	}
	return next, nil
}
