package game

import (
	"errors"
	"math"
)

const (
	// StateVersion is bumped whenever the persisted shape changes incompatibly.
	StateVersion = 3

	StartingMoney = 500.0
	StartingYear  = 2000

	DefaultMaxStat = 100.0

	LogCapacity = 100

	// InflationBase ^ (total job levels / InflationStep)
	InflationBase = 1.2
	InflationStep = 5.0
)

var (
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInsufficientStamina = errors.New("not enough stamina")
	ErrCreditActive        = errors.New("a credit is already active")
	ErrNoCredit            = errors.New("no active credit")
	ErrDepositActive       = errors.New("a deposit is already active")
	ErrNoDeposit           = errors.New("no active deposit")
	ErrAmountOutOfRange    = errors.New("amount out of range")
	ErrGameOver            = errors.New("game is over")
	ErrUnknownItem         = errors.New("unknown catalog item")
	ErrAlreadyOwned        = errors.New("item already owned")
	ErrRequirementsNotMet  = errors.New("requirements not met")
	ErrCooldown            = errors.New("cooldown not elapsed")
	ErrBusy                = errors.New("another activity is in progress")
	ErrNotReady            = errors.New("activity not finished yet")
	ErrNoInternet          = errors.New("internet access required")
	ErrUnknownAction       = errors.New("unknown action")
)

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// roundCents keeps money values readable after inflation multipliers.
func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
