package sim

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/session"
)

type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Trade is one executed simulator order.
type Trade struct {
	ID       string
	RunID    string
	Side     Side
	Day      int
	Units    int
	Price    float64
	Balance  float64
	Holdings int
	Time     time.Time

	// Sell only. Outcome is nil when no tracker is attached.
	Panic   bool
	Outcome *session.SellOutcome
}

// Buy purchases one lot at the current price.
func (e *Engine) Buy() (Trade, error) {
	e.mu.Lock()
	if err := e.tradableLocked("buy"); err != nil {
		e.mu.Unlock()
		return Trade{}, err
	}

	price := e.path[e.day].Price
	cost := float64(e.params.LotSize) * price
	if e.balance < cost {
		e.mu.Unlock()
		return Trade{}, fmt.Errorf("buy %d @ %.2f needs %.2f, have %.2f: %w",
			e.params.LotSize, price, cost, e.balance, ErrInsufficientFunds)
	}
	e.balance -= cost
	e.holdings += e.params.LotSize
	e.buys++

	tr := e.fillLocked(SideBuy, e.params.LotSize, price)
	events := []Event{{Kind: EventTrade, Snapshot: e.snapshotLocked()}}
	listener := e.listener
	e.mu.Unlock()

	e.recordTrade(tr)
	notify(listener, events)
	return tr, nil
}

// Sell sells up to one lot at the current price and scores the sale with
// the emotion tracker.
func (e *Engine) Sell() (Trade, error) {
	e.mu.Lock()
	if err := e.tradableLocked("sell"); err != nil {
		e.mu.Unlock()
		return Trade{}, err
	}
	if e.holdings == 0 {
		e.mu.Unlock()
		return Trade{}, fmt.Errorf("sell on day %d: %w", e.day, ErrNoHoldings)
	}

	price := e.path[e.day].Price
	units := min(e.holdings, e.params.LotSize)

	// lock order: engine then session
	var outcome *session.SellOutcome
	panicked := price < session.PanicSellRatio*e.params.Baseline
	if e.tracker != nil {
		o, err := e.tracker.OnSell(price, e.params.Baseline)
		if err != nil {
			e.log.Warn("sell not scored", zap.Int("day", e.day), zap.Error(err))
		} else {
			outcome = &o
			panicked = o.Panic
			e.emotional = o.Score
		}
	}

	e.holdings -= units
	if e.holdings < 0 {
		panic(fmt.Sprintf("sim: negative holdings %d", e.holdings))
	}
	e.balance += float64(units) * price
	e.sells++

	events := []Event{{Kind: EventTrade}}
	if panicked {
		e.panicSells++
		e.notice = PanicSellNotice
		events = append(events, Event{Kind: EventPanicSell, Text: PanicSellNotice})
	}

	tr := e.fillLocked(SideSell, units, price)
	tr.Panic = panicked
	tr.Outcome = outcome
	snap := e.snapshotLocked()
	for i := range events {
		events[i].Snapshot = snap
	}
	listener := e.listener
	e.mu.Unlock()

	e.recordTrade(tr)
	notify(listener, events)
	return tr, nil
}

func (e *Engine) tradableLocked(op string) error {
	if e.closed {
		return ErrClosed
	}
	if e.state == Finished {
		return e.invalidLocked(op)
	}
	return nil
}

func (e *Engine) fillLocked(side Side, units int, price float64) Trade {
	now := e.now()
	return Trade{
		ID:       newTradeID(now),
		RunID:    e.runID,
		Side:     side,
		Day:      e.day,
		Units:    units,
		Price:    price,
		Balance:  e.balance,
		Holdings: e.holdings,
		Time:     now,
	}
}

func (e *Engine) recordTrade(t Trade) {
	err := e.journal.RecordTrade(journal.TradeRecord{
		TradeID:  t.ID,
		RunID:    t.RunID,
		UserID:   e.userID,
		Day:      t.Day,
		Side:     string(t.Side),
		Units:    t.Units,
		Price:    t.Price,
		Balance:  t.Balance,
		Holdings: t.Holdings,
		Panic:    t.Panic,
		Time:     t.Time,
	})
	if err != nil {
		e.log.Error("journal trade", zap.String("trade_id", t.ID), zap.Error(err))
	}
}
