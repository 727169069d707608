package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/trustvest/trustvest/journal"
	"github.com/trustvest/trustvest/sim"
)

var simCmd = &cobra.Command{
	Use:   "sim",
	Short: "Replay the crash simulator",
	Long: `Play the 45-day boom, crash and recovery market.

The run buys on day 0 and reacts to every crash intervention with the
chosen reaction:
  hold  - resume without trading
  panic - sell everything at the intervention price
  dip   - buy another lot when funds allow

Examples:
  trustvest sim
  trustvest sim --react panic --period 0
  trustvest sim --seed 7 --org run.org`,
	Args: cobra.NoArgs,
	RunE: runSim,
}

var (
	simSeed    int64
	simJitter  float64
	simPeriod  time.Duration
	simReact   string
	simLots    int
	simOrgPath string
	simQuiet   bool
)

func init() {
	rootCmd.AddCommand(simCmd)

	simCmd.Flags().Int64Var(&simSeed, "seed", sim.DefaultSeed, "price path seed (overrides simulation.seed)")
	simCmd.Flags().Float64Var(&simJitter, "jitter", sim.DefaultJitter, "price jitter (overrides simulation.jitter)")
	simCmd.Flags().DurationVar(&simPeriod, "period", 0, "tick period, 0 steps as fast as possible (overrides simulation.tick_period)")
	simCmd.Flags().StringVar(&simReact, "react", "hold", "reaction to a crash intervention: hold, panic or dip")
	simCmd.Flags().IntVar(&simLots, "lots", 1, "lots to buy on day 0")
	simCmd.Flags().StringVar(&simOrgPath, "org", "", "write the run summary as Org-mode to this path")
	simCmd.Flags().BoolVarP(&simQuiet, "quiet", "q", false, "only print interventions and the summary")
}

func runSim(cmd *cobra.Command, args []string) error {
	switch simReact {
	case "hold", "panic", "dip":
	default:
		return fmt.Errorf("unknown reaction %q", simReact)
	}

	params, err := cfg.Simulation.Params()
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		params.Seed = simSeed
	}
	if flags.Changed("jitter") {
		params.Jitter = simJitter
	}
	if flags.Changed("period") {
		params.TickPeriod = simPeriod
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	j, err := cfg.Journal.Open()
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	sess, err := demoSession(ctx, "simulator", j)
	if err != nil {
		return err
	}
	defer sess.Logout()

	out := cmd.OutOrStdout()
	wake := make(chan struct{}, 1)
	e, err := sim.New(params,
		sim.WithLogger(logger),
		sim.WithJournal(j),
		sim.WithTracker(sess),
		sim.WithUserID(sess.UserID()),
		sim.WithListener(func(ev sim.Event) {
			printEvent(out, ev)
			switch ev.Kind {
			case sim.EventIntervention, sim.EventFinished:
				select {
				case wake <- struct{}{}:
				default:
				}
			}
		}),
	)
	if err != nil {
		return err
	}
	defer e.Close()

	for j := 0; j < simLots; j++ {
		if _, err := e.Buy(); err != nil {
			return fmt.Errorf("opening buy: %w", err)
		}
	}
	if err := e.Play(); err != nil {
		return err
	}

	if err := drive(ctx, e, params.TickPeriod == 0, wake); err != nil {
		return err
	}

	sum := e.Summary()
	sum.EmotionalScore = sess.Profile().EmotionalScore
	text, err := journal.FormatRunOrg(sum)
	if err != nil {
		return err
	}
	fmt.Fprint(out, text)

	if simOrgPath != "" {
		if err := journal.WriteRunOrg(simOrgPath, sum); err != nil {
			return err
		}
	}
	return nil
}

// drive runs the engine to the last day, applying the chosen reaction at
// every intervention. With manual stepping it calls Tick itself.
func drive(ctx context.Context, e *sim.Engine, manual bool, wake <-chan struct{}) error {
	for {
		s := e.Snapshot()
		switch {
		case s.State == sim.Finished:
			return nil
		case s.State == sim.Paused && s.Intervention != "":
			if err := react(e); err != nil {
				return err
			}
			if err := e.Resume(); err != nil {
				return err
			}
			continue
		case manual:
			if err := e.Tick(); err != nil && !errors.Is(err, sim.ErrInvalidState) {
				return err
			}
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-wake:
		}
	}
}

func react(e *sim.Engine) error {
	switch simReact {
	case "panic":
		for {
			_, err := e.Sell()
			if errors.Is(err, sim.ErrNoHoldings) {
				return nil
			}
			if err != nil {
				return err
			}
		}
	case "dip":
		_, err := e.Buy()
		if errors.Is(err, sim.ErrInsufficientFunds) {
			return nil
		}
		return err
	}
	return nil
}

func printEvent(w io.Writer, ev sim.Event) {
	s := ev.Snapshot
	switch ev.Kind {
	case sim.EventTick:
		if !simQuiet {
			fmt.Fprintf(w, "day %2d  price %8.2f  cash %10.2f  units %4d  value %10.2f\n",
				s.Day, s.Price, s.Balance, s.Holdings, s.PortfolioValue())
		}
	case sim.EventNews:
		if !simQuiet {
			fmt.Fprintf(w, "        NEWS  %s\n", ev.Text)
		}
	case sim.EventTrade:
		if !simQuiet {
			fmt.Fprintf(w, "        TRADE cash %.2f  units %d\n", s.Balance, s.Holdings)
		}
	case sim.EventIntervention:
		fmt.Fprintf(w, "\n!! day %d: %s\n\n", s.Day, ev.Text)
	case sim.EventPanicSell:
		fmt.Fprintf(w, "!! %s\n", ev.Text)
	case sim.EventFinished:
		fmt.Fprintf(w, "\nmarket closed on day %d, P&L %.2f (%.1f%%)\n\n", s.Day, s.PnL(), s.PnLPct())
	}
}
