package game

import (
	"fmt"

	"github.com/google/uuid"
)

// TakeCredit issues a loan from the credit table. Only one credit may be active.
type TakeCredit struct {
	OptionID string `json:"optionId"`
}

func (TakeCredit) Name() string { return "take_credit" }

func (a TakeCredit) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if len(s.Banking.Credits) > 0 {
		return s, ErrCreditActive
	}
	opt, ok := env.Catalog.CreditOption(a.OptionID)
	if !ok {
		return s, fmt.Errorf("%w: credit option %q", ErrUnknownItem, a.OptionID)
	}
	next := s.Clone()
	rec := NewCreditRecord(opt, s.Date)
	next.Stats.Money += rec.Amount
	next.Banking.Credits = append(next.Banking.Credits, rec)
	appendLog(&next, "credit", fmt.Sprintf("Took a credit of %.2f, %.2f due on %s", rec.Amount, rec.TotalDue, rec.DueDate), rec.ID)
	return next, nil
}

// NewCreditRecord fixes TotalDue and DueDate at issuance; later inflation does
// not touch them.
func NewCreditRecord(opt CreditOption, takenAt GameDate) CreditRecord {
	return CreditRecord{
		ID:           uuid.NewString(),
		Amount:       opt.Amount,
		TotalDue:     roundCents(opt.Amount * (1 + opt.InterestRate/100)),
		InterestRate: opt.InterestRate,
		TakenAt:      takenAt,
		DueDate:      takenAt.AddDays(opt.TermDays),
		TermDays:     opt.TermDays,
	}
}

// RepayCredit pays the whole amount due. There is no partial repayment.
type RepayCredit struct{}

func (RepayCredit) Name() string { return "repay_credit" }

func (RepayCredit) Apply(s GameState, _ Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if len(s.Banking.Credits) == 0 {
		return s, ErrNoCredit
	}
	rec := s.Banking.Credits[0]
	if s.Stats.Money < rec.TotalDue {
		return s, fmt.Errorf("%w: need %.2f to repay", ErrInsufficientFunds, rec.TotalDue)
	}
	next := s.Clone()
	next.Stats.Money -= rec.TotalDue
	next.Banking.Credits = next.Banking.Credits[1:]
	appendLog(&next, "repay", fmt.Sprintf("Repaid credit of %.2f", rec.TotalDue), rec.ID)
	return next, nil
}

// OpenDeposit moves money into a savings deposit.
type OpenDeposit struct {
	OptionID string  `json:"optionId"`
	Amount   float64 `json:"amount"`
}

func (OpenDeposit) Name() string { return "open_deposit" }

func (a OpenDeposit) Apply(s GameState, env Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if len(s.Banking.Deposits) > 0 {
		return s, ErrDepositActive
	}
	opt, ok := env.Catalog.DepositOption(a.OptionID)
	if !ok {
		return s, fmt.Errorf("%w: deposit option %q", ErrUnknownItem, a.OptionID)
	}
	if a.Amount < opt.MinAmount || a.Amount > s.Stats.Money {
		return s, fmt.Errorf("%w: %.2f not in [%.2f, %.2f]", ErrAmountOutOfRange, a.Amount, opt.MinAmount, s.Stats.Money)
	}
	next := s.Clone()
	next.Stats.Money -= a.Amount
	rec := DepositRecord{
		ID:           uuid.NewString(),
		Amount:       a.Amount,
		InterestRate: opt.InterestRate,
		StartDate:    s.Date,
	}
	next.Banking.Deposits = append(next.Banking.Deposits, rec)
	appendLog(&next, "deposit", fmt.Sprintf("Opened a deposit of %.2f at %.1f%%/month", rec.Amount, rec.InterestRate), rec.ID)
	return next, nil
}

// WithdrawDeposit closes the deposit and pays out principal plus interest.
type WithdrawDeposit struct{}

func (WithdrawDeposit) Name() string { return "withdraw_deposit" }

func (WithdrawDeposit) Apply(s GameState, _ Env) (GameState, error) {
	if err := requireAlive(s); err != nil {
		return s, err
	}
	if len(s.Banking.Deposits) == 0 {
		return s, ErrNoDeposit
	}
	rec := s.Banking.Deposits[0]
	payout := rec.Amount + rec.AccumulatedInterest
	next := s.Clone()
	next.Stats.Money += payout
	next.Banking.Deposits = next.Banking.Deposits[1:]
	appendLog(&next, "withdraw", fmt.Sprintf("Withdrew deposit: %.2f", payout), rec.ID)
	return next, nil
}

// DailyInterest applies a monthly rate to one day.
func DailyInterest(rec DepositRecord) float64 {
	return rec.Amount * (rec.InterestRate / 100) / DaysPerMonth
}

func accrueDeposits(s *GameState, days int) {
	for i := range s.Banking.Deposits {
		for range days {
			s.Banking.Deposits[i].AccumulatedInterest += DailyInterest(s.Banking.Deposits[i])
		}
	}
}

// CreditDaysLeft is negative once the credit is overdue.
func CreditDaysLeft(rec CreditRecord, now GameDate) int {
	return rec.DueDate.DayNumber() - now.DayNumber()
}

func CreditOverdue(s GameState) bool {
	for _, c := range s.Banking.Credits {
		if CreditDaysLeft(c, s.Date) < 0 {
			return true
		}
	}
	return false
}
