package sim

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/pkg/id"
)

// RunRecorder is implemented by journals that keep run summaries.
type RunRecorder interface {
	RecordRun(journal.RunSummary) error
}

// Engine replays a scripted market day by day. All state is guarded by mu;
// the clock goroutine takes mu for every tick, so at most one tick is in
// flight and none lands after the clock is stopped.
type Engine struct {
	mu     sync.Mutex
	params Params

	log      *zap.Logger
	journal  journal.Journal
	tracker  EmotionTracker
	listener Listener
	userID   string
	now      func() time.Time

	runID        string
	started      time.Time
	path         []Tick
	state        State
	day          int
	balance      float64
	holdings     int
	headline     string
	news         []NewsItem // most recent first
	intervention string
	notice       string
	emotional    int

	buys, sells, panicSells, interventions int

	recorded bool // summary of the current run already journaled
	closed   bool

	// clock
	gen    uint64
	cancel context.CancelFunc
	clocks sync.WaitGroup
}

func New(p Params, opts ...Option) (*Engine, error) {
	if p.Days < 2 {
		return nil, fmt.Errorf("sim: need at least 2 days, got %d", p.Days)
	}
	if p.LotSize <= 0 {
		return nil, fmt.Errorf("sim: lot size must be positive, got %d", p.LotSize)
	}
	if p.Baseline <= 0 {
		return nil, fmt.Errorf("sim: baseline must be positive, got %v", p.Baseline)
	}
	if p.InitialBalance < 0 {
		return nil, fmt.Errorf("sim: initial balance must not be negative, got %v", p.InitialBalance)
	}
	if p.TickPeriod < 0 {
		return nil, fmt.Errorf("sim: tick period must not be negative, got %v", p.TickPeriod)
	}
	if p.News == nil {
		p.News = map[int]string{}
	}

	e := &Engine{
		params:  p,
		log:     zap.NewNop(),
		journal: journal.Nop{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	e.resetLocked()
	return e, nil
}

func (e *Engine) Params() Params { return e.params }

// Reset regenerates the path and returns to IDLE. The previous run's
// summary is journaled when anything happened in it.
func (e *Engine) Reset() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	e.stopClockLocked()
	prev, pending := e.pendingSummaryLocked()
	e.resetLocked()
	e.mu.Unlock()

	if pending {
		e.recordRun(prev)
	}
	return nil
}

func (e *Engine) resetLocked() {
	e.runID = uuid.NewString()
	e.started = e.now()
	e.path = GeneratePath(e.params.Seed, e.params.Days, e.params.Jitter)
	e.state = Idle
	e.day = 0
	e.balance = e.params.InitialBalance
	e.holdings = 0
	e.headline = WaitingHeadline
	e.news = nil
	e.intervention = ""
	e.notice = ""
	e.recorded = false
	e.emotional = -1
	if e.tracker != nil {
		e.emotional = e.tracker.EmotionalScore()
	}
	e.buys, e.sells, e.panicSells, e.interventions = 0, 0, 0, 0
}

// Play starts the run from IDLE, or continues a user pause. A pending
// intervention must be acknowledged with Resume.
func (e *Engine) Play() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}

	switch {
	case e.state == Running:
		return nil
	case e.state == Idle, e.state == Paused && e.intervention == "":
		e.state = Running
		e.startClockLocked()
		return nil
	default:
		return e.invalidLocked("play")
	}
}

// Pause halts the clock without an intervention.
func (e *Engine) Pause() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.state != Running {
		return e.invalidLocked("pause")
	}
	e.stopClockLocked()
	e.state = Paused
	return nil
}

// Resume clears any intervention and restarts the clock.
func (e *Engine) Resume() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if e.state != Paused {
		return e.invalidLocked("resume")
	}
	e.intervention = ""
	e.state = Running
	e.startClockLocked()
	return nil
}

// Tick advances one day. It is what the clock calls; with a zero tick
// period callers step manually.
func (e *Engine) Tick() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if e.state != Running {
		err := e.invalidLocked("tick")
		e.mu.Unlock()
		return err
	}
	events, finished := e.tickLocked()
	sum := e.summaryLocked()
	listener := e.listener
	e.mu.Unlock()

	notify(listener, events)
	if finished {
		e.recordRun(sum)
	}
	return nil
}

func (e *Engine) tickLocked() (events []Event, finished bool) {
	e.day++
	prev, curr := e.path[e.day-1].Price, e.path[e.day].Price

	if text, ok := e.params.News[e.day]; ok {
		e.headline = text
		e.news = slices.Insert(e.news, 0, NewsItem{Day: e.day, Text: text})
		events = append(events, Event{Kind: EventNews, Text: text})
	}
	events = append(events, Event{Kind: EventTick})

	switch {
	case e.day == len(e.path)-1:
		e.stopClockLocked()
		e.state = Finished
		e.recorded = true
		finished = true
		events = append(events, Event{Kind: EventFinished})
		e.log.Info("simulation finished",
			zap.String("run_id", e.runID),
			zap.Float64("balance", e.balance),
			zap.Int("holdings", e.holdings),
		)
	case Drop(prev, curr) > e.params.CrashDrop && e.holdings > 0:
		e.stopClockLocked()
		e.state = Paused
		e.intervention = InterventionMessage
		e.interventions++
		events = append(events, Event{Kind: EventIntervention, Text: InterventionMessage})
		e.log.Info("crash intervention",
			zap.String("run_id", e.runID),
			zap.Int("day", e.day),
			zap.Float64("drop", Drop(prev, curr)),
			zap.Int("holdings", e.holdings),
		)
	}

	snap := e.snapshotLocked()
	for i := range events {
		events[i].Snapshot = snap
	}
	return events, finished
}

func (e *Engine) invalidLocked(op string) error {
	e.log.Warn("ignored simulation operation",
		zap.String("op", op),
		zap.Stringer("state", e.state),
		zap.String("run_id", e.runID),
	)
	return fmt.Errorf("%s in %s: %w", op, e.state, ErrInvalidState)
}

// Close stops the clock, waits for it to exit and journals the run.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.stopClockLocked()
	sum, pending := e.pendingSummaryLocked()
	e.mu.Unlock()

	e.clocks.Wait()
	if pending {
		e.recordRun(sum)
	}
	return nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

func (e *Engine) snapshotLocked() Snapshot {
	return Snapshot{
		RunID:        e.runID,
		State:        e.state,
		Day:          e.day,
		LastDay:      len(e.path) - 1,
		Price:        e.path[e.day].Price,
		Balance:      e.balance,
		StartBalance: e.params.InitialBalance,
		Holdings:     e.holdings,
		Headline:     e.headline,
		Intervention: e.intervention,
		Notice:       e.notice,
	}
}

// Path is the full generated path, including days not yet revealed.
func (e *Engine) Path() []Tick {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.path)
}

// History is the path up to and including the current day.
func (e *Engine) History() []Tick {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.path[:e.day+1])
}

// News returns released headlines, most recent first.
func (e *Engine) News() []NewsItem {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.news)
}

func (e *Engine) DismissNotice() {
	e.mu.Lock()
	e.notice = ""
	e.mu.Unlock()
}

func (e *Engine) Summary() journal.RunSummary {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.summaryLocked()
}

func (e *Engine) summaryLocked() journal.RunSummary {
	s := journal.RunSummary{
		RunID:          e.runID,
		UserID:         e.userID,
		Seed:           e.params.Seed,
		Started:        e.started,
		Days:           e.day,
		StartBalance:   e.params.InitialBalance,
		EndBalance:     e.balance,
		Holdings:       e.holdings,
		FinalPrice:     e.path[e.day].Price,
		Buys:           e.buys,
		Sells:          e.sells,
		PanicSells:     e.panicSells,
		Interventions:  e.interventions,
		EmotionalScore: e.emotional,
	}
	if e.state == Finished {
		s.Finished = e.now()
	}
	return s
}

// pendingSummaryLocked returns the summary of an abandoned run that has
// not been journaled yet.
func (e *Engine) pendingSummaryLocked() (journal.RunSummary, bool) {
	if e.recorded || (e.day == 0 && e.buys == 0 && e.sells == 0) {
		return journal.RunSummary{}, false
	}
	e.recorded = true
	s := e.summaryLocked()
	s.Finished = e.now()
	return s, true
}

func (e *Engine) recordRun(s journal.RunSummary) {
	rr, ok := e.journal.(RunRecorder)
	if !ok {
		return
	}
	if err := rr.RecordRun(s); err != nil {
		e.log.Error("journal run", zap.String("run_id", s.RunID), zap.Error(err))
	}
}

func notify(l Listener, events []Event) {
	if l == nil {
		return
	}
	for _, ev := range events {
		l(ev)
	}
}

func newTradeID(t time.Time) string { return id.NewAt(t) }
