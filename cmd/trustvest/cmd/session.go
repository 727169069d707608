package cmd

import (
	"context"
	"fmt"

	"github.com/trustvest/trustvest/auth"
	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/session"
)

// demoSession registers a throwaway account in an in-memory directory and
// opens a session on it.
func demoSession(ctx context.Context, name string, j journal.Journal, opts ...session.Option) (*session.Session, error) {
	policy, err := cfg.Risk.Policy()
	if err != nil {
		return nil, err
	}
	dir := auth.NewDirectory()
	opts = append([]session.Option{
		session.WithLogger(logger),
		session.WithJournal(j),
		session.WithPolicy(policy),
	}, opts...)

	s, err := session.Register(ctx, dir, name, name+"@trustvest.local", "demo-password", opts...)
	if err != nil {
		return nil, fmt.Errorf("demo session: %w", err)
	}
	return s, nil
}
