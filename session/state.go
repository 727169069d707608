package session

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/pkg/id"
	"github.com/trustvest/trustvest/risk"
)

// State is the write handle passed to Update. It is only valid inside the
// callback.
type State struct {
	s       *Session
	Profile *Profile
	now     time.Time
	pending []func(journal.Journal) error
}

// Now is the timestamp of the update, read once from the session clock.
func (st *State) Now() time.Time { return st.now }

func (st *State) Policy() risk.Policy { return st.s.policy }

func (st *State) Investments() []Investment { return st.s.investments }

// History summarizes the ledger for the fraud rules.
func (st *State) History() risk.History {
	h := risk.History{PriorInvestments: len(st.s.investments)}
	if n := len(st.s.investments); n > 0 {
		h.LastInvestment = st.s.investments[n-1].Time
	}
	return h
}

// Record appends the decision's signal, if any, and applies its score
// delta. It returns the stored signal.
func (st *State) Record(d risk.Decision) *risk.Signal {
	if d.Signal == nil {
		return nil
	}

	sig := *d.Signal
	sig.ID = id.NewAt(sig.Time)
	st.s.signals = append(st.s.signals, sig)
	applyScoreDelta(st.Profile, d.ScoreDelta)

	st.s.log.Warn("fraud signal detected",
		zap.String("signal_id", sig.ID),
		zap.String("type", string(sig.Type)),
		zap.String("severity", string(sig.Severity)),
		zap.String("verdict", string(d.Verdict)),
		zap.Int("score_delta", d.ScoreDelta),
		zap.Int("risk_score", st.Profile.RiskScore),
	)

	rec := journal.SignalRecord{
		SignalID:    sig.ID,
		UserID:      st.Profile.ID,
		Type:        string(sig.Type),
		Severity:    string(sig.Severity),
		Verdict:     string(d.Verdict),
		ScoreDelta:  d.ScoreDelta,
		RiskScore:   st.Profile.RiskScore,
		Time:        sig.Time,
		Description: sig.Description,
	}
	st.pending = append(st.pending, func(j journal.Journal) error { return j.RecordSignal(rec) })
	return &sig
}

// Debit removes amount from the wallet. Callers check the balance first;
// overdrawing is a programming error.
func (st *State) Debit(amount decimal.Decimal) {
	next := st.Profile.WalletBalance.Sub(amount)
	if next.IsNegative() {
		panic(fmt.Sprintf("session: debit %s overdraws wallet %s", amount, st.Profile.WalletBalance))
	}
	st.Profile.WalletBalance = next
}

func (st *State) Credit(amount decimal.Decimal) {
	st.Profile.WalletBalance = st.Profile.WalletBalance.Add(amount)
}

// AppendInvestment adds an entry to the ledger stamped with the update time.
// A clock that steps backwards is clamped to the previous entry so the
// ledger stays time-ordered.
func (st *State) AppendInvestment(assetID string, amount decimal.Decimal, recurring bool) Investment {
	at := st.now
	if n := len(st.s.investments); n > 0 && at.Before(st.s.investments[n-1].Time) {
		at = st.s.investments[n-1].Time
	}

	inv := Investment{
		ID:        id.NewAt(at),
		AssetID:   assetID,
		Amount:    amount,
		Time:      at,
		Recurring: recurring,
	}
	st.s.investments = append(st.s.investments, inv)

	rec := journal.InvestmentRecord{
		InvestmentID: inv.ID,
		UserID:       st.Profile.ID,
		AssetID:      assetID,
		Amount:       amount,
		Recurring:    recurring,
		Balance:      st.Profile.WalletBalance,
		Time:         at,
	}
	st.pending = append(st.pending, func(j journal.Journal) error { return j.RecordInvestment(rec) })
	return inv
}

// flush writes queued journal records in order. Persistence is best
// effort: a failed write is logged and never undoes the state change.
func (st *State) flush() {
	for _, w := range st.pending {
		if err := w(st.s.journal); err != nil {
			st.s.log.Error("journal write failed", zap.Error(err))
		}
	}
	st.pending = nil
}

// applyScoreDelta is the only place the risk score changes.
func applyScoreDelta(p *Profile, delta int) {
	p.RiskScore += delta
	if p.RiskScore < 0 {
		p.RiskScore = 0
	}
}
