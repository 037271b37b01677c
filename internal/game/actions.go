package game

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/oklog/ulid/v2"
)

// Env is everything an action may read besides the state itself.
type Env struct {
	Catalog *Catalog
	Rules   Rules
	Now     time.Time
	Rand    func() float64
}

func (e Env) roll() float64 {
	if e.Rand == nil {
		return rand.Float64()
	}
	return e.Rand()
}

// Action is a reducer: it either returns the complete next state or an error and
// leaves the input untouched. Partial application is never observable.
type Action interface {
	Name() string
	Apply(s GameState, env Env) (GameState, error)
}

// ActionFunc adapts a producer function into an Action.
type ActionFunc func(s GameState, env Env) (GameState, error)

func (f ActionFunc) Name() string { return "func" }

func (f ActionFunc) Apply(s GameState, env Env) (GameState, error) {
	return f(s.Clone(), env)
}

var actionRegistry = map[string]func() Action{
	"take_credit":      func() Action { return &TakeCredit{} },
	"repay_credit":     func() Action { return &RepayCredit{} },
	"open_deposit":     func() Action { return &OpenDeposit{} },
	"withdraw_deposit": func() Action { return &WithdrawDeposit{} },
	"apply_job":        func() Action { return &ApplyJob{} },
	"work":             func() Action { return &Work{} },
	"buy_hardware":     func() Action { return &BuyHardware{} },
	"buy_software":     func() Action { return &BuySoftware{} },
	"buy_shop_item":    func() Action { return &BuyShopItem{} },
	"start_study":      func() Action { return &StartStudy{} },
	"finish_study":     func() Action { return &FinishStudy{} },
	"answer_quiz":      func() Action { return &AnswerQuiz{} },
	"start_rest":       func() Action { return &StartRest{} },
	"finish_rest":      func() Action { return &FinishRest{} },
	"hack":             func() Action { return &Hack{} },
	"set_locale":       func() Action { return &SetLocale{} },
	"set_volume":       func() Action { return &SetVolume{} },
	"save_minigame":    func() Action { return &SaveMinigame{} },
}

// ActionNames lists every action DecodeAction understands.
func ActionNames() []string {
	out := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		out = append(out, name)
	}
	return out
}

// DecodeAction builds an action from its wire name and JSON payload.
func DecodeAction(name string, payload []byte) (Action, error) {
	mk, ok := actionRegistry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, name)
	}
	a := mk()
	if len(payload) > 0 && string(payload) != "null" {
		if err := json.Unmarshal(payload, a); err != nil {
			return nil, fmt.Errorf("decode %s payload: %w", name, err)
		}
	}
	return a, nil
}

func requireAlive(s GameState) error {
	if s.GameOver {
		return ErrGameOver
	}
	return nil
}

// charge returns the inflation-adjusted price of base against s.
func charge(s GameState, base float64) (float64, error) {
	price := DynamicPrice(base, s)
	if s.Stats.Money < price {
		return price, fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientFunds, price, s.Stats.Money)
	}
	return price, nil
}

func appendLog(s *GameState, kind, message, target string) {
	entry := LogEntry{
		ID:      ulid.Make().String(),
		Kind:    kind,
		Message: message,
		Target:  target,
		Date:    s.Date,
	}
	logs := make([]LogEntry, 0, min(len(s.Logs)+1, LogCapacity))
	logs = append(logs, entry)
	for _, l := range s.Logs {
		if len(logs) == LogCapacity {
			break
		}
		logs = append(logs, l)
	}
	s.Logs = logs
}

func (s *Stats) adjust(mood, health, stamina float64) {
	s.Mood = clamp(s.Mood+mood, 0, s.MaxMood)
	s.Health = clamp(s.Health+health, 0, s.MaxHealth)
	s.Stamina = clamp(s.Stamina+stamina, 0, s.MaxStamina)
}

func refreshDerived(s *GameState) {
	s.HasInternet = s.Computer["modem"] != ""
}
