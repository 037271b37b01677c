package game

import (
	"errors"
	"math"
	"testing"
)

func testEnv() Env {
	return Env{Catalog: DefaultCatalog(), Rules: DefaultRules()}
}

func TestTakeCredit(t *testing.T) {
	env := testEnv()
	s := DefaultState()

	next, err := TakeCredit{OptionID: "micro"}.Apply(s, env)
	if err != nil {
		t.Fatalf("take credit: %v", err)
	}
	if next.Stats.Money != 1000 {
		t.Fatalf("money: got %v want 1000", next.Stats.Money)
	}
	if len(next.Banking.Credits) != 1 {
		t.Fatalf("expected one credit, got %d", len(next.Banking.Credits))
	}
	c := next.Banking.Credits[0]
	if c.TotalDue != 550 {
		t.Fatalf("total due: got %v want 550", c.TotalDue)
	}
	if c.DueDate != (GameDate{Year: 2000, Month: 2, Day: 1}) {
		t.Fatalf("due date: got %v", c.DueDate)
	}
	if got := CreditDaysLeft(c, next.Date); got != 30 {
		t.Fatalf("days left: got %d want 30", got)
	}
	if s.Stats.Money != StartingMoney || len(s.Banking.Credits) != 0 {
		t.Fatalf("input state was modified")
	}
	if next.Logs[0].Kind != "credit" {
		t.Fatalf("expected credit log, got %q", next.Logs[0].Kind)
	}

	again, err := TakeCredit{OptionID: "standard"}.Apply(next, env)
	if !errors.Is(err, ErrCreditActive) {
		t.Fatalf("expected ErrCreditActive, got %v", err)
	}
	if again.Stats.Money != next.Stats.Money || len(again.Banking.Credits) != 1 {
		t.Fatalf("rejected credit changed state")
	}
}

func TestTakeCreditUnknownOption(t *testing.T) {
	_, err := TakeCredit{OptionID: "nope"}.Apply(DefaultState(), testEnv())
	if !errors.Is(err, ErrUnknownItem) {
		t.Fatalf("expected ErrUnknownItem, got %v", err)
	}
}

func TestRepayCredit(t *testing.T) {
	env := testEnv()
	s, err := TakeCredit{OptionID: "micro"}.Apply(DefaultState(), env)
	if err != nil {
		t.Fatalf("take credit: %v", err)
	}

	poor := s.Clone()
	poor.Stats.Money = 100
	if _, err := (RepayCredit{}).Apply(poor, env); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	next, err := RepayCredit{}.Apply(s, env)
	if err != nil {
		t.Fatalf("repay: %v", err)
	}
	if next.Stats.Money != 450 {
		t.Fatalf("money: got %v want 450", next.Stats.Money)
	}
	if len(next.Banking.Credits) != 0 {
		t.Fatalf("credit not removed")
	}
	if _, err := (RepayCredit{}).Apply(next, env); !errors.Is(err, ErrNoCredit) {
		t.Fatalf("expected ErrNoCredit, got %v", err)
	}
}

func TestOpenDepositBounds(t *testing.T) {
	env := testEnv()
	s := DefaultState()
	for _, amount := range []float64{50, 600} {
		if _, err := (OpenDeposit{OptionID: "saver", Amount: amount}).Apply(s, env); !errors.Is(err, ErrAmountOutOfRange) {
			t.Fatalf("amount=%v expected ErrAmountOutOfRange, got %v", amount, err)
		}
	}
	next, err := OpenDeposit{OptionID: "saver", Amount: 300}.Apply(s, env)
	if err != nil {
		t.Fatalf("open deposit: %v", err)
	}
	if next.Stats.Money != 200 || len(next.Banking.Deposits) != 1 {
		t.Fatalf("unexpected state: money=%v deposits=%d", next.Stats.Money, len(next.Banking.Deposits))
	}
	if _, err := (OpenDeposit{OptionID: "saver", Amount: 100}).Apply(next, env); !errors.Is(err, ErrDepositActive) {
		t.Fatalf("expected ErrDepositActive, got %v", err)
	}
}

func TestDepositAccruesOnlyOnDayRollover(t *testing.T) {
	env := testEnv()
	s, err := OpenDeposit{OptionID: "saver", Amount: 300}.Apply(DefaultState(), env)
	if err != nil {
		t.Fatalf("open deposit: %v", err)
	}
	daily := DailyInterest(s.Banking.Deposits[0])
	ticksPerDay := HoursPerDay * MinutesPerHour / env.Rules.MinutesPerTick
	for i := range ticksPerDay {
		prev := s
		s, _ = Tick(s, env.Rules)
		before := prev.Banking.Deposits[0].AccumulatedInterest
		after := s.Banking.Deposits[0].AccumulatedInterest
		rolled := s.Date.DayNumber() != prev.Date.DayNumber()
		if !rolled && after != before {
			t.Fatalf("tick %d (%s): interest moved from %v to %v within a day", i, s.Date, before, after)
		}
		if rolled && math.Abs(after-before-daily) > 1e-9 {
			t.Fatalf("tick %d (%s): rollover added %v want %v", i, s.Date, after-before, daily)
		}
	}
	got := s.Banking.Deposits[0].AccumulatedInterest
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("interest after one day: got %v want 0.5", got)
	}

	next, err := WithdrawDeposit{}.Apply(s, env)
	if err != nil {
		t.Fatalf("withdraw: %v", err)
	}
	if math.Abs(next.Stats.Money-500.5) > 1e-9 {
		t.Fatalf("money after withdraw: got %v want 500.5", next.Stats.Money)
	}
	if _, err := (WithdrawDeposit{}).Apply(next, env); !errors.Is(err, ErrNoDeposit) {
		t.Fatalf("expected ErrNoDeposit, got %v", err)
	}
}

func TestDepositInterestAfterThreeDays(t *testing.T) {
	env := testEnv()
	s, err := OpenDeposit{OptionID: "saver", Amount: 100}.Apply(DefaultState(), env)
	if err != nil {
		t.Fatalf("open deposit: %v", err)
	}
	rollovers := 0
	for rollovers < 3 {
		var report TickReport
		s, report = Tick(s, env.Rules)
		rollovers += report.DaysElapsed
	}
	got := s.Banking.Deposits[0].AccumulatedInterest
	if math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("interest after three rollovers: got %v want 0.5", got)
	}
	if want := (GameDate{Year: StartingYear, Month: 1, Day: 4}); s.Date != want {
		t.Fatalf("date: got %s want %s", s.Date, want)
	}
}

func TestBankingRejectedAfterGameOver(t *testing.T) {
	s := DefaultState()
	s.GameOver = true
	if _, err := (TakeCredit{OptionID: "micro"}).Apply(s, testEnv()); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}
