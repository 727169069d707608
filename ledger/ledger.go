package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trustvest/trustvest/catalog"
	"github.com/trustvest/trustvest/risk"
	"github.com/trustvest/trustvest/session"
)

const DefaultCatalogTimeout = 2 * time.Second

// Ledger runs invest and withdraw operations against a session. Each
// operation evaluates the fraud rules and commits its balance change inside
// a single session update.
type Ledger struct {
	s              *session.Session
	catalog        catalog.Catalog
	catalogTimeout time.Duration
	log            *zap.Logger
}

type Option func(*Ledger)

// WithCatalog enables asset id validation on Invest.
func WithCatalog(c catalog.Catalog) Option {
	return func(l *Ledger) { l.catalog = c }
}

func WithCatalogTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.catalogTimeout = d }
}

func WithLogger(log *zap.Logger) Option {
	return func(l *Ledger) { l.log = log }
}

func New(s *session.Session, opts ...Option) *Ledger {
	l := &Ledger{
		s:              s,
		catalogTimeout: DefaultCatalogTimeout,
		log:            s.Logger(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Receipt describes a committed investment and the warning signal it
// raised, if any.
type Receipt struct {
	Investment session.Investment
	Signal     *risk.Signal
	Balance    decimal.Decimal
}

// Invest debits amount from the wallet into assetID.
//
// An insufficient balance rejects the call without touching state or the
// signal log. The high-value rule only warns: its signal and score delta are
// recorded and the investment still commits.
func (l *Ledger) Invest(ctx context.Context, assetID string, amount decimal.Decimal, recurring bool) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}
	if !amount.IsPositive() {
		return Receipt{}, fmt.Errorf("invest %s: %w", amount, ErrInvalidAmount)
	}
	if err := l.checkAsset(ctx, assetID); err != nil {
		return Receipt{}, err
	}

	var rcpt Receipt
	err := l.s.Update(func(st *session.State) error {
		if st.Profile.WalletBalance.LessThan(amount) {
			return fmt.Errorf("invest %s with balance %s: %w", amount, st.Profile.WalletBalance, ErrInsufficientFunds)
		}

		d := risk.Evaluate(st.Policy(), risk.Action{
			Kind:   risk.ActionInvest,
			Amount: amount,
			Time:   st.Now(),
		}, st.History())
		if d.Blocked() {
			// No invest rule blocks today; honour the verdict if one is added.
			sig := st.Record(d)
			return &FraudBlockedError{Signal: *sig}
		}
		rcpt.Signal = st.Record(d)

		st.Debit(amount)
		rcpt.Investment = st.AppendInvestment(assetID, amount, recurring)
		rcpt.Balance = st.Profile.WalletBalance
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}

	l.log.Info("invest",
		zap.String("asset_id", assetID),
		zap.String("amount", amount.String()),
		zap.Bool("recurring", recurring),
		zap.String("balance", rcpt.Balance.String()),
	)
	return rcpt, nil
}

// Withdraw credits amount back to the wallet unless the rapid-withdrawal
// rule blocks it. A blocked withdrawal returns *FraudBlockedError and leaves
// the balance alone; the signal and score delta are still recorded.
func (l *Ledger) Withdraw(ctx context.Context, amount decimal.Decimal) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !amount.IsPositive() {
		return fmt.Errorf("withdraw %s: %w", amount, ErrInvalidAmount)
	}

	err := l.s.Update(func(st *session.State) error {
		d := risk.Evaluate(st.Policy(), risk.Action{
			Kind:   risk.ActionWithdraw,
			Amount: amount,
			Time:   st.Now(),
		}, st.History())

		sig := st.Record(d)
		if d.Blocked() {
			return &FraudBlockedError{Signal: *sig}
		}

		// Demo funds only: there is no upper bound on what can come back.
		st.Credit(amount)
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrFraudBlocked) {
			l.log.Warn("withdraw blocked", zap.String("amount", amount.String()), zap.Error(err))
		}
		return err
	}

	l.log.Info("withdraw", zap.String("amount", amount.String()))
	return nil
}

// Investments returns the session's ledger.
func (l *Ledger) Investments() []session.Investment { return l.s.Investments() }

// Signals returns the session's fraud signal log.
func (l *Ledger) Signals() []risk.Signal { return l.s.Signals() }

// checkAsset runs before the session lock is taken. A catalog that cannot
// answer is logged and skipped.
func (l *Ledger) checkAsset(ctx context.Context, assetID string) error {
	if l.catalog == nil {
		return nil
	}

	cctx, cancel := context.WithTimeout(ctx, l.catalogTimeout)
	defer cancel()

	_, ok, err := catalog.Find(cctx, l.catalog, assetID)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		l.log.Warn("asset catalog unavailable, skipping asset check",
			zap.String("asset_id", assetID), zap.Error(err))
		return nil
	}
	if !ok {
		return fmt.Errorf("invest %q: %w", assetID, ErrUnknownAsset)
	}
	return nil
}
