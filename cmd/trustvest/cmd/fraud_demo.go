package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/trustvest/trustvest/auth"
	"github.com/trustvest/trustvest/catalog"
	"github.com/trustvest/trustvest/ledger"
	"github.com/trustvest/trustvest/session"
)

var fraudDemoCmd = &cobra.Command{
	Use:   "fraud-demo",
	Short: "Walk through the fraud rules on a demo wallet",
	Long: `Opens a 10,000 wallet and runs:
  1. a high-value investment (warns, still commits)
  2. a withdrawal shortly after it (blocked)
  3. a withdrawal after the window has passed (allowed)

Examples:
  trustvest fraud-demo
  trustvest fraud-demo --amount 4000 --gap 90s`,
	Args: cobra.NoArgs,
	RunE: runFraudDemo,
}

var (
	fraudAmount string
	fraudGap    time.Duration
	fraudAsset  string
)

func init() {
	rootCmd.AddCommand(fraudDemoCmd)

	fraudDemoCmd.Flags().StringVar(&fraudAmount, "amount", "6000", "amount of the first investment")
	fraudDemoCmd.Flags().DurationVar(&fraudGap, "gap", 30*time.Second, "time between the investment and the first withdrawal")
	fraudDemoCmd.Flags().StringVar(&fraudAsset, "asset", "index-fund-500", "asset id to invest in")
}

func runFraudDemo(cmd *cobra.Command, args []string) error {
	amount, err := decimal.NewFromString(fraudAmount)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	policy, err := cfg.Risk.Policy()
	if err != nil {
		return err
	}
	j, err := cfg.Journal.Open()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	p, err := auth.NewDirectory().Register(ctx, "demo", "demo@trustvest.local", "demo-password")
	if err != nil {
		return err
	}
	p.WalletBalance = decimal.NewFromInt(10000)

	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s := session.New(p,
		session.WithClock(func() time.Time { return now }),
		session.WithPolicy(policy),
		session.WithJournal(j),
		session.WithLogger(logger),
	)
	defer s.Logout()

	if err := s.CompleteKYC("Demo Investor"); err != nil {
		return err
	}
	l := ledger.New(s,
		ledger.WithCatalog(catalog.Demo()),
		ledger.WithCatalogTimeout(cfg.Session.CatalogTimeoutDuration()),
		ledger.WithLogger(logger),
	)

	fmt.Fprintf(out, "user %s  wallet %s  risk %d\n\n", p.ID, s.Profile().WalletBalance.StringFixed(2), s.Profile().RiskScore)

	rec, err := l.Invest(ctx, fraudAsset, amount, false)
	if err != nil {
		return fmt.Errorf("invest: %w", err)
	}
	fmt.Fprintf(out, "%s  invest %s in %s -> balance %s\n", now.Format(time.TimeOnly), amount, fraudAsset, rec.Balance.StringFixed(2))
	if rec.Signal != nil {
		fmt.Fprintf(out, "          %s %s: %s\n", rec.Signal.Severity, rec.Signal.Type, rec.Signal.Description)
	}

	withdraw := func(amt decimal.Decimal) error {
		err := l.Withdraw(ctx, amt)
		var blocked *ledger.FraudBlockedError
		switch {
		case errors.As(err, &blocked):
			fmt.Fprintf(out, "%s  withdraw %s BLOCKED\n          %s %s: %s\n", now.Format(time.TimeOnly), amt,
				blocked.Signal.Severity, blocked.Signal.Type, blocked.Signal.Description)
			return nil
		case err != nil:
			return err
		}
		fmt.Fprintf(out, "%s  withdraw %s -> balance %s\n", now.Format(time.TimeOnly), amt, s.Profile().WalletBalance.StringFixed(2))
		return nil
	}

	now = now.Add(fraudGap)
	if err := withdraw(decimal.NewFromInt(500)); err != nil {
		return err
	}
	now = now.Add(policy.RapidWithdrawalWindow + time.Second)
	if err := withdraw(decimal.NewFromInt(500)); err != nil {
		return err
	}

	prof := s.Profile()
	fmt.Fprintf(out, "\nrisk score %d, %d signal(s), %d investment(s)\n", prof.RiskScore, len(l.Signals()), len(l.Investments()))
	return nil
}
