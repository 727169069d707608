package session

import (
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/risk"
)

var ErrClosed = errors.New("session closed")

// Session is the single mutable state graph of one logged-in user. All
// writes go through Update, which holds the session lock for the whole
// evaluate-then-commit sequence.
type Session struct {
	mu          sync.Mutex
	closed      bool
	profile     Profile
	investments []Investment
	signals     []risk.Signal

	policy  risk.Policy
	now     func() time.Time
	journal journal.Journal
	log     *zap.Logger
}

type Option func(*Session)

// WithClock replaces time.Now as the source of action timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithPolicy(p risk.Policy) Option {
	return func(s *Session) { s.policy = p }
}

func WithJournal(j journal.Journal) Option {
	return func(s *Session) { s.journal = j }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Session) { s.log = l }
}

// New starts a session for p. The emotional score is clamped into range and
// the behavior tags are re-derived from it.
func New(p Profile, opts ...Option) *Session {
	s := &Session{
		profile: p.clone(),
		policy:  risk.DefaultPolicy(),
		now:     time.Now,
		journal: journal.Nop{},
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	if s.profile.RiskScore < 0 {
		s.profile.RiskScore = 0
	}
	if s.profile.WalletBalance.IsNegative() {
		s.profile.WalletBalance = decimal.Zero
	}
	s.profile.EmotionalScore = clampEmotion(s.profile.EmotionalScore)
	deriveTags(&s.profile)

	s.log = s.log.With(zap.String("user_id", s.profile.ID))
	return s
}

// Update runs fn with exclusive access to the session state. Signals
// recorded by fn stay recorded even when fn returns an error, so a blocking
// rule leaves its audit entry behind while the caller skips its mutation.
func (s *Session) Update(fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	st := &State{s: s, Profile: &s.profile, now: s.now()}
	err := fn(st)
	st.flush()
	return err
}

// Logout discards the session. Later updates fail with ErrClosed.
func (s *Session) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.log.Info("session closed")
}

func (s *Session) Policy() risk.Policy { return s.policy }

func (s *Session) Logger() *zap.Logger { return s.log }

func (s *Session) Now() time.Time { return s.now() }

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.ID
}

// Profile returns a copy of the current profile.
func (s *Session) Profile() Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.clone()
}

// Investments returns the ledger in append order.
func (s *Session) Investments() []Investment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.investments)
}

// Signals returns the fraud signal log in append order.
func (s *Session) Signals() []risk.Signal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.signals)
}

// CompleteKYC marks the profile verified once the external KYC flow has
// accepted the submission.
func (s *Session) CompleteKYC(fullName string) error {
	if fullName == "" {
		return errors.New("kyc: full name is required")
	}
	return s.Update(func(st *State) error {
		st.Profile.KYCVerified = true
		st.Profile.Name = fullName
		return nil
	})
}
