// journal/journal.go
package journal

import (
	"time"

	"github.com/shopspring/decimal"
)

// SignalRecord is one entry of a user's fraud signal audit trail.
type SignalRecord struct {
	SignalID    string
	UserID      string
	Type        string
	Severity    string
	Verdict     string
	ScoreDelta  int
	RiskScore   int // risk score after the delta was applied
	Time        time.Time
	Description string
}

// InvestmentRecord is one committed investment.
type InvestmentRecord struct {
	InvestmentID string
	UserID       string
	AssetID      string
	Amount       decimal.Decimal
	Recurring    bool
	Balance      decimal.Decimal // wallet balance after the debit
	Time         time.Time
}

// TradeRecord is one executed simulator trade.
type TradeRecord struct {
	TradeID  string
	RunID    string
	UserID   string
	Day      int
	Side     string // BUY or SELL
	Units    int
	Price    float64
	Balance  float64 // simulator balance after the trade
	Holdings int     // units held after the trade
	Panic    bool
	Time     time.Time
}

// Journal is an append-only sink. Records are never updated or deleted.
type Journal interface {
	RecordSignal(SignalRecord) error
	RecordInvestment(InvestmentRecord) error
	RecordTrade(TradeRecord) error
	Close() error
}

// Nop discards everything. It is the default when no journal is configured.
type Nop struct{}

func (Nop) RecordSignal(SignalRecord) error         { return nil }
func (Nop) RecordInvestment(InvestmentRecord) error { return nil }
func (Nop) RecordTrade(TradeRecord) error           { return nil }
func (Nop) Close() error                            { return nil }
