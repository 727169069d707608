package risk

import (
	"time"

	"github.com/shopspring/decimal"
)

// Policy holds the thresholds of the fraud rule table.
type Policy struct {
	// High-value transfer (detective)
	HighValueThreshold       decimal.Decimal // 5000
	HighValueMaxPriorInvests int             // 3
	HighValueScoreDelta      int             // 20

	// Rapid withdrawal (preventive)
	RapidWithdrawalWindow     time.Duration // 60s
	RapidWithdrawalScoreDelta int           // 40

	// Odd-hour login (informational)
	OddHourScoreDelta int // 0
}

// DefaultPolicy returns the demo policy thresholds.
func DefaultPolicy() Policy {
	return Policy{
		HighValueThreshold:        decimal.NewFromInt(5000),
		HighValueMaxPriorInvests:  3,
		HighValueScoreDelta:       20,
		RapidWithdrawalWindow:     60 * time.Second,
		RapidWithdrawalScoreDelta: 40,
		OddHourScoreDelta:         0,
	}
}

type ActionKind string

const (
	ActionLogin    ActionKind = "LOGIN"
	ActionInvest   ActionKind = "INVEST"
	ActionWithdraw ActionKind = "WITHDRAW"
)

// Action is the user action being evaluated.
type Action struct {
	Kind   ActionKind
	Amount decimal.Decimal // zero for logins
	Time   time.Time
}

// History is the slice of session state the rules consult.
type History struct {
	PriorInvestments int
	LastInvestment   time.Time // zero when there is no investment yet
}

func (h History) hasInvestment() bool {
	return h.PriorInvestments > 0 && !h.LastInvestment.IsZero()
}
