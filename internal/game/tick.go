package game

import (
	"math"
	"time"
)

type Rules struct {
	TickEvery           time.Duration
	MinutesPerTick      int
	HealthDecayPerTick  float64
	MoodDecayPerTick    float64
	StaminaRegenPerTick float64
	CreditWarningDays   int
	CheatMoney          float64
}

func DefaultRules() Rules {
	return Rules{
		TickEvery:           time.Second,
		MinutesPerTick:      30,
		HealthDecayPerTick:  0.05,
		MoodDecayPerTick:    0.08,
		StaminaRegenPerTick: 0.5,
		CreditWarningDays:   3,
		CheatMoney:          999_999,
	}
}

type CreditWarning struct {
	CreditID string
	DaysLeft int
	TotalDue float64
}

type TickReport struct {
	DaysElapsed    int
	GameOver       bool
	CreditWarnings []CreditWarning
}

// Tick advances prev by one tick. It is pure: the same input always yields the
// same output, and prev is never modified. A finished game does not advance.
//
// Order matters: derived fields, clock, decay, regen, deposit accrual, then
// terminal checks, so a breach caused by this tick's decay ends the game in the
// same tick.
func Tick(prev GameState, rules Rules) (GameState, TickReport) {
	var report TickReport
	if prev.GameOver {
		return prev, report
	}
	next := prev.Clone()

	refreshDerived(&next)

	next.Date = prev.Date.AddMinutes(rules.MinutesPerTick)

	next.Stats.Health = math.Max(0, next.Stats.Health-rules.HealthDecayPerTick)
	next.Stats.Mood = math.Max(0, next.Stats.Mood-rules.MoodDecayPerTick)

	next.Stats.Stamina = clamp(next.Stats.Stamina+rules.StaminaRegenPerTick, 0, next.Stats.MaxStamina)

	report.DaysElapsed = next.Date.DayNumber() - prev.Date.DayNumber()
	if report.DaysElapsed > 0 {
		accrueDeposits(&next, report.DaysElapsed)
	}

	if reason := TerminalReason(next); reason != ReasonNone {
		next.GameOver = true
		next.GameOverReason = reason
		report.GameOver = true
		return next, report
	}

	report.CreditWarnings = CreditWarnings(next, rules.CreditWarningDays)
	return next, report
}

// TerminalReason reports why s should end, or ReasonNone.
func TerminalReason(s GameState) GameOverReason {
	switch {
	case s.Stats.Health <= 0:
		return ReasonHealth
	case s.Stats.Mood <= 0:
		return ReasonMood
	case CreditOverdue(s):
		return ReasonCredit
	default:
		return ReasonNone
	}
}

// CreditWarnings lists active credits due within warnDays. It never mutates s.
func CreditWarnings(s GameState, warnDays int) []CreditWarning {
	var out []CreditWarning
	for _, c := range s.Banking.Credits {
		left := CreditDaysLeft(c, s.Date)
		if left >= 0 && left <= warnDays {
			out = append(out, CreditWarning{CreditID: c.ID, DaysLeft: left, TotalDue: c.TotalDue})
		}
	}
	return out
}
