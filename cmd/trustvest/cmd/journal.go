package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trustvest/trustvest/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the SQLite journal",
	Long: `Query and display journal records from a SQLite database.

Subcommands:
  signals     - Fraud signals raised for a user
  investments - Investments committed by a user
  trades      - Simulator trades of a run
  run         - Summary of a simulator run

Examples:
  trustvest journal signals <user-id>
  trustvest journal trades <run-id>
  trustvest journal run <run-id>`,
}

var journalSignalsCmd = &cobra.Command{
	Use:   "signals <user-id>",
	Short: "List fraud signals of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalSignals,
}

var journalInvestmentsCmd = &cobra.Command{
	Use:   "investments <user-id>",
	Short: "List investments of a user",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalInvestments,
}

var journalTradesCmd = &cobra.Command{
	Use:   "trades <run-id>",
	Short: "List simulator trades of a run",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalTrades,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show a simulator run summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalDBPath string

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalSignalsCmd)
	journalCmd.AddCommand(journalInvestmentsCmd)
	journalCmd.AddCommand(journalTradesCmd)
	journalCmd.AddCommand(journalRunCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default journal.db_path)")
}

func openJournalDB() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		path = cfg.Journal.DBPath
	}
	if path == "" {
		path = "./trustvest.sqlite"
	}
	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalSignals(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListSignals(args[0])
	if err != nil {
		return fmt.Errorf("query signals: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatSignalsOrg(recs))
	return nil
}

func runJournalInvestments(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListInvestments(args[0])
	if err != nil {
		return fmt.Errorf("query investments: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatInvestmentsOrg(recs))
	return nil
}

func runJournalTrades(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListTrades(args[0])
	if err != nil {
		return fmt.Errorf("query trades: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), journal.FormatTradesOrg(recs))
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openJournalDB()
	if err != nil {
		return err
	}
	defer j.Close()

	r, err := j.GetRun(args[0])
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	s, err := journal.FormatRunOrg(r)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), s)
	return nil
}
