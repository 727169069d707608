package sim

import (
	"time"

	"go.uber.org/zap"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/session"
)

// Params are the tunables of a simulation run.
type Params struct {
	Seed           int64
	Days           int
	Jitter         float64
	InitialBalance float64
	LotSize        int
	Baseline       float64
	CrashDrop      float64       // intervention fires when a day drops more than this fraction
	TickPeriod     time.Duration // 0 disables the clock
	News           map[int]string
}

func DefaultParams() Params {
	return Params{
		Seed:           DefaultSeed,
		Days:           DefaultDays,
		Jitter:         DefaultJitter,
		InitialBalance: 10000,
		LotSize:        10,
		Baseline:       100,
		CrashDrop:      0.12,
		TickPeriod:     time.Second,
		News:           DefaultNews(),
	}
}

// EmotionTracker scores sells. *session.Session satisfies it.
type EmotionTracker interface {
	OnSell(executionPrice, baselinePrice float64) (session.SellOutcome, error)
	EmotionalScore() int
}

// Listener receives engine events after the engine lock is released.
type Listener func(Event)

type Option func(*Engine)

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func WithJournal(j journal.Journal) Option {
	return func(e *Engine) { e.journal = j }
}

func WithTracker(t EmotionTracker) Option {
	return func(e *Engine) { e.tracker = t }
}

func WithUserID(id string) Option {
	return func(e *Engine) { e.userID = id }
}

func WithListener(l Listener) Option {
	return func(e *Engine) { e.listener = l }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}
