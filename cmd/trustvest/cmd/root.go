package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/trustvest/trustvest/config"
	"github.com/trustvest/trustvest/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "trustvest",
	Short: "Behavioral investing core: fraud rules, ledger and crash simulator",
	Long: `Trustvest drives the investing core from the command line.

It provides tools for:
  - Replaying the 2008-style crash simulator with a scripted reaction
  - Walking through the fraud rules on a demo wallet
  - Asking the advisor backend for an investment debate
  - Querying the signal, investment and trade journal`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

var (
	cfgFile  string
	logLevel string
	devLog   bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	defer func() { _ = logger.Sync() }()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON); defaults apply when empty")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log.level")
	rootCmd.PersistentFlags().BoolVar(&devLog, "dev", false, "human-readable development logging")
}

func setup(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		cfg = config.Default()
	} else {
		c, err := config.LoadFromFile(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if devLog {
		cfg.Log.Development = true
	}

	l, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = l
	return nil
}
