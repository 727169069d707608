package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/trustvest/trustvest/advisor"
	"github.com/trustvest/trustvest/catalog"
	"github.com/trustvest/trustvest/journal"
)

var adviseCmd = &cobra.Command{
	Use:   "advise <asset-id> <amount>",
	Short: "Ask the advisor agents to debate an investment",
	Long: `Runs the Optimist / Risk / Data debate for an investment. Without
advisor.url, or when the backend is down, the offline debate is shown.

Examples:
  trustvest advise tech-startup-fund 2500
  trustvest assets`,
	Args: cobra.ExactArgs(2),
	RunE: runAdvise,
}

var chatCmd = &cobra.Command{
	Use:   "chat <message>...",
	Short: "Send one message to the advisor twin",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runChat,
}

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List the demo asset catalog",
	Args:  cobra.NoArgs,
	RunE:  runAssets,
}

func init() {
	rootCmd.AddCommand(adviseCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(assetsCmd)
}

func newAdvisor() advisor.Advisor {
	if cfg.Advisor.URL == "" {
		return advisor.WithFallback(nil, logger)
	}
	var opts []advisor.ClientOption
	if d := cfg.Advisor.TimeoutDuration(); d > 0 {
		opts = append(opts, advisor.WithTimeout(d))
	}
	return advisor.WithFallback(advisor.NewClient(cfg.Advisor.URL, opts...), logger)
}

func runAdvise(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	amount, err := decimal.NewFromString(args[1])
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	lookup, cancel := context.WithTimeout(ctx, cfg.Session.CatalogTimeoutDuration())
	defer cancel()
	asset, ok, err := catalog.Find(lookup, catalog.Demo(), args[0])
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("asset %q not in catalog", args[0])
	}

	sess, err := demoSession(ctx, "advisee", journal.Nop{})
	if err != nil {
		return err
	}
	defer sess.Logout()

	res, _ := newAdvisor().Debate(ctx, advisor.NewDebateRequest(asset, amount, sess.Profile()))

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s (%s risk), %s\n\n", asset.Name, asset.RiskLevel, amount)
	for _, t := range res.Turns {
		fmt.Fprintf(out, "%-9s %s\n", t.Agent+":", t.Message)
	}
	fmt.Fprintf(out, "\n%s\nverdict: %s\n", res.Conclusion, res.Verdict)
	return nil
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	sess, err := demoSession(ctx, "advisee", journal.Nop{})
	if err != nil {
		return err
	}
	defer sess.Logout()

	history := []advisor.ChatMessage{{Role: advisor.RoleUser, Text: strings.Join(args, " ")}}
	text, _ := newAdvisor().Chat(ctx, history, sess.Profile())
	fmt.Fprintln(cmd.OutOrStdout(), text)
	return nil
}

func runAssets(cmd *cobra.Command, args []string) error {
	assets, err := catalog.Demo().ListAssets(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, a := range assets {
		fmt.Fprintf(out, "%-18s %-6s min %-6s %-20s %s\n", a.ID, a.RiskLevel, a.MinInvestment, a.ExpectedReturn, a.Name)
	}
	return nil
}
