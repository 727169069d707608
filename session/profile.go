package session

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// PanicProne is the behavior tag carried while the emotional score is
// below PanicProneBelow.
const (
	PanicProne      = "Panic Prone"
	PanicProneBelow = 40
)

const (
	MinEmotionalScore = 0
	MaxEmotionalScore = 100
)

// Profile is the user state a session owns.
type Profile struct {
	ID    string
	Name  string
	Email string

	KYCVerified bool

	// RiskScore only grows through fraud rules and has no upper bound.
	RiskScore      int
	WalletBalance  decimal.Decimal
	EmotionalScore int
	BehaviorTags   []string
}

func (p Profile) HasTag(tag string) bool {
	return slices.Contains(p.BehaviorTags, tag)
}

func (p Profile) clone() Profile {
	p.BehaviorTags = slices.Clone(p.BehaviorTags)
	return p
}

// Investment is an immutable ledger entry.
type Investment struct {
	ID        string
	AssetID   string
	Amount    decimal.Decimal
	Time      time.Time
	Recurring bool
}
