package sim

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/session"
)

type memJournal struct {
	journal.Nop

	mu     sync.Mutex
	trades []journal.TradeRecord
	runs   []journal.RunSummary
}

func (j *memJournal) RecordTrade(t journal.TradeRecord) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.trades = append(j.trades, t)
	return nil
}

func (j *memJournal) RecordRun(r journal.RunSummary) error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.runs = append(j.runs, r)
	return nil
}

func (j *memJournal) Runs() []journal.RunSummary {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.RunSummary(nil), j.runs...)
}

// flatParams gives a jitter-free path stepped by hand.
func flatParams() Params {
	p := DefaultParams()
	p.Jitter = 0
	p.TickPeriod = 0
	return p
}

func newManual(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e, err := New(flatParams(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func stepTo(t *testing.T, e *Engine, day int) {
	t.Helper()
	for e.Snapshot().Day < day {
		require.NoError(t, e.Tick(), "day %d", e.Snapshot().Day)
	}
}

func testSession(score int) *session.Session {
	return session.New(session.Profile{
		ID:             "user-1",
		Name:           "Test",
		WalletBalance:  decimal.NewFromInt(1000),
		EmotionalScore: score,
	})
}

func TestNewRejectsBadParams(t *testing.T) {
	t.Parallel()

	for name, mut := range map[string]func(*Params){
		"days":     func(p *Params) { p.Days = 1 },
		"lot":      func(p *Params) { p.LotSize = 0 },
		"baseline": func(p *Params) { p.Baseline = 0 },
		"balance":  func(p *Params) { p.InitialBalance = -1 },
		"period":   func(p *Params) { p.TickPeriod = -time.Second },
	} {
		t.Run(name, func(t *testing.T) {
			p := DefaultParams()
			mut(&p)
			_, err := New(p)
			assert.Error(t, err)
		})
	}
}

func TestInitialSnapshot(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	s := e.Snapshot()
	assert.Equal(t, Idle, s.State)
	assert.Equal(t, 0, s.Day)
	assert.Equal(t, 44, s.LastDay)
	assert.Equal(t, 10000.0, s.Balance)
	assert.Equal(t, 0, s.Holdings)
	assert.Equal(t, WaitingHeadline, s.Headline)
	assert.Empty(t, s.Intervention)
	assert.NotEmpty(t, s.RunID)
	assert.Empty(t, e.News())
	assert.Len(t, e.History(), 1)
	assert.Len(t, e.Path(), 45)
}

func TestCrashInterventionAndResume(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	require.NoError(t, e.Play())
	_, err := e.Buy()
	require.NoError(t, err)

	stepTo(t, e, 19)
	s := e.Snapshot()
	assert.Equal(t, Paused, s.State)
	assert.Equal(t, InterventionMessage, s.Intervention)
	assert.Equal(t, 19, s.Day)

	err = e.Tick()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 19, e.Snapshot().Day)

	// Play does not acknowledge an intervention.
	assert.ErrorIs(t, e.Play(), ErrInvalidState)

	require.NoError(t, e.Resume())
	s = e.Snapshot()
	assert.Equal(t, Running, s.State)
	assert.Empty(t, s.Intervention)

	// day 20 falls another 14%
	require.NoError(t, e.Tick())
	assert.Equal(t, Paused, e.Snapshot().State)
	assert.Equal(t, 2, e.Summary().Interventions)
}

func TestNoInterventionWithoutHoldings(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	require.NoError(t, e.Play())
	stepTo(t, e, 44)

	s := e.Snapshot()
	assert.Equal(t, Finished, s.State)
	assert.True(t, s.Terminal())
	assert.Empty(t, s.Intervention)
	assert.Equal(t, 0, e.Summary().Interventions)

	assert.ErrorIs(t, e.Tick(), ErrInvalidState)
	_, err := e.Buy()
	assert.ErrorIs(t, err, ErrInvalidState)
	_, err = e.Sell()
	assert.ErrorIs(t, err, ErrInvalidState)
	assert.Equal(t, 44, e.Snapshot().Day)
}

func TestNewsMostRecentFirst(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	require.NoError(t, e.Play())
	stepTo(t, e, 4)
	assert.Equal(t, WaitingHeadline, e.Snapshot().Headline)

	stepTo(t, e, 16)
	news := e.News()
	require.Len(t, news, 3)
	assert.Equal(t, []int{16, 14, 5}, []int{news[0].Day, news[1].Day, news[2].Day})
	assert.Equal(t, news[0].Text, e.Snapshot().Headline)
	assert.Len(t, e.History(), 17)
}

func TestBuy(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	e := newManual(t, WithJournal(j), WithUserID("user-1"))

	tr, err := e.Buy()
	require.NoError(t, err)
	assert.Equal(t, SideBuy, tr.Side)
	assert.Equal(t, 10, tr.Units)
	assert.InDelta(t, 100.0, tr.Price, 1e-9)

	s := e.Snapshot()
	assert.InDelta(t, 9000.0, s.Balance, 1e-9)
	assert.Equal(t, 10, s.Holdings)
	assert.Equal(t, Idle, s.State, "trading does not start the clock")

	require.Len(t, j.trades, 1)
	assert.Equal(t, tr.ID, j.trades[0].TradeID)
	assert.Equal(t, s.RunID, j.trades[0].RunID)
	assert.Equal(t, "user-1", j.trades[0].UserID)
	assert.Equal(t, "BUY", j.trades[0].Side)
}

func TestBuyInsufficientFunds(t *testing.T) {
	t.Parallel()

	p := flatParams()
	p.InitialBalance = 999
	e, err := New(p)
	require.NoError(t, err)

	_, err = e.Buy()
	assert.ErrorIs(t, err, ErrInsufficientFunds)
	s := e.Snapshot()
	assert.Equal(t, 999.0, s.Balance)
	assert.Equal(t, 0, s.Holdings)
}

func TestSellWithoutHoldings(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	_, err := e.Sell()
	assert.ErrorIs(t, err, ErrNoHoldings)
	assert.Equal(t, 10000.0, e.Snapshot().Balance)
}

func TestSellOneLotAtATime(t *testing.T) {
	t.Parallel()

	p := flatParams()
	p.LotSize = 10
	e, err := New(p)
	require.NoError(t, err)

	_, err = e.Buy()
	require.NoError(t, err)
	_, err = e.Buy()
	require.NoError(t, err)

	tr, err := e.Sell()
	require.NoError(t, err)
	assert.Equal(t, 10, tr.Units)
	assert.Equal(t, 10, tr.Holdings)
	assert.InDelta(t, 9000.0, tr.Balance, 1e-9)
}

func TestCalmSell(t *testing.T) {
	t.Parallel()

	sess := testSession(80)
	e := newManual(t, WithTracker(sess))

	_, err := e.Buy()
	require.NoError(t, err)
	tr, err := e.Sell()
	require.NoError(t, err)

	assert.False(t, tr.Panic)
	require.NotNil(t, tr.Outcome)
	assert.Equal(t, 82, tr.Outcome.Score)
	assert.Equal(t, 82, sess.Profile().EmotionalScore)
	assert.Empty(t, e.Snapshot().Notice)
	assert.InDelta(t, 10000.0, e.Snapshot().Balance, 1e-9)
}

func TestPanicSellAtBottom(t *testing.T) {
	t.Parallel()

	sess := testSession(45)
	j := &memJournal{}
	var mu sync.Mutex
	var kinds []EventKind
	e := newManual(t,
		WithTracker(sess),
		WithJournal(j),
		WithListener(func(ev Event) {
			mu.Lock()
			kinds = append(kinds, ev.Kind)
			mu.Unlock()
		}),
	)

	require.NoError(t, e.Play())
	_, err := e.Buy()
	require.NoError(t, err)
	stepTo(t, e, 19)
	require.NoError(t, e.Resume())
	stepTo(t, e, 20)
	require.NoError(t, e.Resume())
	stepTo(t, e, 21)
	require.Equal(t, Paused, e.Snapshot().State)

	// selling is allowed during an intervention
	tr, err := e.Sell()
	require.NoError(t, err)
	assert.True(t, tr.Panic)
	assert.Less(t, tr.Price, 60.0)
	assert.Equal(t, 35, sess.Profile().EmotionalScore)
	assert.True(t, sess.Profile().HasTag(session.PanicProne))

	s := e.Snapshot()
	assert.Equal(t, PanicSellNotice, s.Notice)
	assert.Equal(t, 0, s.Holdings)
	assert.Equal(t, 1, e.Summary().PanicSells)
	assert.Equal(t, 35, e.Summary().EmotionalScore)

	e.DismissNotice()
	assert.Empty(t, e.Snapshot().Notice)

	require.Len(t, j.trades, 2)
	assert.True(t, j.trades[1].Panic)

	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, kinds, EventIntervention)
	assert.Contains(t, kinds, EventPanicSell)
	assert.Contains(t, kinds, EventNews)
}

func TestPanicSellWithoutTracker(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	require.NoError(t, e.Play())
	_, err := e.Buy()
	require.NoError(t, err)
	for e.Snapshot().Day < 21 {
		if e.Snapshot().State == Paused {
			require.NoError(t, e.Resume())
		}
		require.NoError(t, e.Tick())
	}
	tr, err := e.Sell()
	require.NoError(t, err)
	assert.True(t, tr.Panic)
	assert.Nil(t, tr.Outcome)
	assert.Equal(t, -1, e.Summary().EmotionalScore)
}

func TestSellAfterLogoutKeepsPriceFlag(t *testing.T) {
	t.Parallel()

	sess := testSession(45)
	e := newManual(t, WithTracker(sess))
	require.NoError(t, e.Play())
	_, err := e.Buy()
	require.NoError(t, err)
	for e.Snapshot().Day < 21 {
		if e.Snapshot().State == Paused {
			require.NoError(t, e.Resume())
		}
		require.NoError(t, e.Tick())
	}

	sess.Logout()
	tr, err := e.Sell()
	require.NoError(t, err, "the fill does not depend on scoring")
	assert.True(t, tr.Panic)
	assert.Nil(t, tr.Outcome)
	assert.Equal(t, PanicSellNotice, e.Snapshot().Notice)
	assert.Equal(t, 1, e.Summary().PanicSells)
	assert.Equal(t, 45, e.Summary().EmotionalScore, "last known score is kept")
	assert.Equal(t, 45, sess.EmotionalScore())
}

func TestSummaryStartsFromTrackerScore(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	e := newManual(t, WithTracker(testSession(73)), WithJournal(j))
	assert.Equal(t, 73, e.Summary().EmotionalScore)

	require.NoError(t, e.Play())
	stepTo(t, e, 3)
	require.NoError(t, e.Reset())

	runs := j.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, 73, runs[0].EmotionalScore)
}

func TestResetIsIdempotent(t *testing.T) {
	t.Parallel()

	e := newManual(t)
	require.NoError(t, e.Play())
	_, err := e.Buy()
	require.NoError(t, err)
	stepTo(t, e, 10)

	require.NoError(t, e.Reset())
	first, firstPath := e.Snapshot(), e.Path()
	require.NoError(t, e.Reset())
	second, secondPath := e.Snapshot(), e.Path()

	first.RunID, second.RunID = "", ""
	assert.Equal(t, first, second)
	assert.Equal(t, firstPath, secondPath)
	assert.Equal(t, Idle, second.State)
	assert.Equal(t, 10000.0, second.Balance)
	assert.Empty(t, e.News())
}

func TestInvalidTransitionsLeaveStateAlone(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	e := newManual(t, WithLogger(zap.New(core)))

	before := e.Snapshot()
	assert.ErrorIs(t, e.Tick(), ErrInvalidState)
	assert.ErrorIs(t, e.Pause(), ErrInvalidState)
	assert.ErrorIs(t, e.Resume(), ErrInvalidState)
	assert.Equal(t, before, e.Snapshot())
	assert.Equal(t, 3, logs.Len())

	require.NoError(t, e.Play())
	assert.NoError(t, e.Play(), "play while running is a no-op")
	assert.ErrorIs(t, e.Resume(), ErrInvalidState)

	// user pause then play continues
	require.NoError(t, e.Pause())
	assert.Equal(t, Paused, e.Snapshot().State)
	assert.Empty(t, e.Snapshot().Intervention)
	require.NoError(t, e.Play())
	assert.Equal(t, Running, e.Snapshot().State)
}

func TestRunSummaryJournaledOnce(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	e, err := New(flatParams(), WithJournal(j), WithUserID("user-1"))
	require.NoError(t, err)

	require.NoError(t, e.Play())
	stepTo(t, e, 44)
	runs := j.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, 44, runs[0].Days)
	assert.Equal(t, "user-1", runs[0].UserID)
	assert.False(t, runs[0].Finished.IsZero())

	require.NoError(t, e.Reset())
	require.NoError(t, e.Close())
	assert.Len(t, j.Runs(), 1, "finished run is not re-recorded, fresh run is empty")
}

func TestAbandonedRunJournaledOnReset(t *testing.T) {
	t.Parallel()

	j := &memJournal{}
	e, err := New(flatParams(), WithJournal(j))
	require.NoError(t, err)

	require.NoError(t, e.Play())
	stepTo(t, e, 3)
	runID := e.Snapshot().RunID
	require.NoError(t, e.Reset())
	require.NoError(t, e.Close())

	runs := j.Runs()
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].RunID)
	assert.Equal(t, 3, runs[0].Days)
}

func TestSnapshotPnL(t *testing.T) {
	t.Parallel()

	s := Snapshot{Balance: 9000, Holdings: 10, Price: 120, StartBalance: 10000}
	assert.InDelta(t, 10200.0, s.PortfolioValue(), 1e-9)
	assert.InDelta(t, 200.0, s.PnL(), 1e-9)
	assert.InDelta(t, 2.0, s.PnLPct(), 1e-9)
	assert.Equal(t, 0.0, Snapshot{}.PnLPct())
}

func TestClosedEngine(t *testing.T) {
	t.Parallel()

	e, err := New(flatParams())
	require.NoError(t, err)
	require.NoError(t, e.Close())
	require.NoError(t, e.Close())

	assert.True(t, errors.Is(e.Play(), ErrClosed))
	assert.ErrorIs(t, e.Reset(), ErrClosed)
	_, err = e.Buy()
	assert.ErrorIs(t, err, ErrClosed)
}

func TestRunJournaledToSQLite(t *testing.T) {
	t.Parallel()

	j, err := journal.NewSQLite(filepath.Join(t.TempDir(), "sim.sqlite"))
	require.NoError(t, err)
	defer j.Close()

	sess := testSession(80)
	e, err := New(flatParams(), WithJournal(j), WithTracker(sess), WithUserID("user-1"))
	require.NoError(t, err)

	require.NoError(t, e.Play())
	_, err = e.Buy()
	require.NoError(t, err)
	for e.Snapshot().State != Finished {
		if e.Snapshot().State == Paused {
			require.NoError(t, e.Resume())
			continue
		}
		require.NoError(t, e.Tick())
	}
	_, err = e.Sell()
	assert.ErrorIs(t, err, ErrInvalidState)
	runID := e.Snapshot().RunID
	require.NoError(t, e.Close())

	trades, err := j.ListTrades(runID)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "BUY", trades[0].Side)

	run, err := j.GetRun(runID)
	require.NoError(t, err)
	assert.Equal(t, "user-1", run.UserID)
	assert.Equal(t, int64(DefaultSeed), run.Seed)
	assert.Equal(t, 44, run.Days)
	assert.Equal(t, 10, run.Holdings)
	assert.Equal(t, 1, run.Buys)
	assert.GreaterOrEqual(t, run.Interventions, 4)
}
