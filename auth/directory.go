// Package auth is an in-memory account directory. It stands in for the
// hosted auth service in the demo and in tests.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/trustvest/trustvest/session"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidInput       = errors.New("invalid registration input")
	ErrUnknownUser        = errors.New("unknown user")
)

const (
	DefaultRiskScore      = 10
	DefaultEmotionalScore = 80
	NewInvestorTag        = "New Investor"
	MinPasswordLen        = 6
)

// DefaultWallet is the opening balance of a fresh account.
var DefaultWallet = decimal.NewFromInt(1000)

type account struct {
	hash    []byte
	profile session.Profile
}

// Directory keeps accounts keyed by normalized email.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]*account
	cost     int
}

type Option func(*Directory)

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(d *Directory) { d.cost = cost }
}

func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		accounts: make(map[string]*account),
		cost:     bcrypt.DefaultCost,
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

var _ session.Authenticator = (*Directory)(nil)

func (d *Directory) Register(ctx context.Context, username, email, password string) (session.Profile, error) {
	if err := ctx.Err(); err != nil {
		return session.Profile{}, err
	}
	username = strings.TrimSpace(username)
	key, err := normalizeEmail(email)
	if err != nil {
		return session.Profile{}, err
	}
	if username == "" {
		return session.Profile{}, fmt.Errorf("empty username: %w", ErrInvalidInput)
	}
	if len(password) < MinPasswordLen {
		return session.Profile{}, fmt.Errorf("password shorter than %d: %w", MinPasswordLen, ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return session.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[key]; ok {
		return session.Profile{}, fmt.Errorf("%s: %w", key, ErrEmailTaken)
	}
	p := session.Profile{
		ID:             uuid.NewString(),
		Name:           username,
		Email:          key,
		RiskScore:      DefaultRiskScore,
		WalletBalance:  DefaultWallet,
		EmotionalScore: DefaultEmotionalScore,
		BehaviorTags:   []string{NewInvestorTag},
	}
	d.accounts[key] = &account{hash: hash, profile: p}
	return copyProfile(p), nil
}

func (d *Directory) Login(ctx context.Context, email, password string) (session.Profile, error) {
	if err := ctx.Err(); err != nil {
		return session.Profile{}, err
	}
	key, err := normalizeEmail(email)
	if err != nil {
		return session.Profile{}, ErrInvalidCredentials
	}

	d.mu.RLock()
	acct, ok := d.accounts[key]
	var hash []byte
	var p session.Profile
	if ok {
		hash, p = acct.hash, copyProfile(acct.profile)
	}
	d.mu.RUnlock()

	if !ok {
		return session.Profile{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(hash, []byte(password)); err != nil {
		return session.Profile{}, ErrInvalidCredentials
	}
	return p, nil
}

// Save writes back a profile, e.g. when a session logs out, so the next
// login sees the updated balance and scores.
func (d *Directory) Save(p session.Profile) error {
	key, err := normalizeEmail(p.Email)
	if err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[key]
	if !ok || acct.profile.ID != p.ID {
		return fmt.Errorf("save %s: %w", key, ErrUnknownUser)
	}
	acct.profile = copyProfile(p)
	return nil
}

func normalizeEmail(email string) (string, error) {
	e := strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(e)
	if err != nil || addr.Address != e {
		return "", fmt.Errorf("email %q: %w", email, ErrInvalidInput)
	}
	return e, nil
}

func copyProfile(p session.Profile) session.Profile {
	p.BehaviorTags = append([]string(nil), p.BehaviorTags...)
	return p
}
