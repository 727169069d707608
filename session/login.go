package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/trustvest/trustvest/risk"
)

// Authenticator is the external auth service. It verifies credentials and
// hands back the stored profile.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (Profile, error)
	Register(ctx context.Context, username, email, password string) (Profile, error)
}

// Login authenticates against a and starts a session, running the login
// rules before the session is handed to the caller.
func Login(ctx context.Context, a Authenticator, email, password string, opts ...Option) (*Session, risk.Decision, error) {
	p, err := a.Login(ctx, email, password)
	if err != nil {
		return nil, risk.Decision{}, fmt.Errorf("login: %w", err)
	}

	s := New(p, opts...)

	var d risk.Decision
	err = s.Update(func(st *State) error {
		d = risk.Evaluate(st.Policy(), risk.Action{Kind: risk.ActionLogin, Time: st.Now()}, st.History())
		st.Record(d)
		return nil
	})
	if err != nil {
		return nil, d, err
	}
	s.log.Info("login", zap.Bool("signal", d.Triggered()))
	return s, d, nil
}

// Register creates the account and starts a session. No login rules run on
// registration.
func Register(ctx context.Context, a Authenticator, username, email, password string, opts ...Option) (*Session, error) {
	p, err := a.Register(ctx, username, email, password)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s := New(p, opts...)
	s.log.Info("registered")
	return s, nil
}
