package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatSignalOrg renders a SignalRecord as an Org-mode block for a review
// log, with the structured facts in a PROPERTIES drawer.
func FormatSignalOrg(s SignalRecord) string {
	heading := fmt.Sprintf("** %s %s (%s)", s.Severity, s.Type, shortID(s.SignalID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":SIGNAL_ID: %s\n", s.SignalID))
	b.WriteString(fmt.Sprintf(":USER_ID: %s\n", s.UserID))
	b.WriteString(fmt.Sprintf(":TYPE: %s\n", s.Type))
	b.WriteString(fmt.Sprintf(":SEVERITY: %s\n", s.Severity))
	b.WriteString(fmt.Sprintf(":VERDICT: %s\n", s.Verdict))
	b.WriteString(fmt.Sprintf(":SCORE_DELTA: %+d\n", s.ScoreDelta))
	b.WriteString(fmt.Sprintf(":RISK_SCORE: %d\n", s.RiskScore))
	b.WriteString(fmt.Sprintf(":TIME: %s\n", s.Time.UTC().Format(time.RFC3339)))
	b.WriteString(":END:\n")
	b.WriteString(s.Description)
	b.WriteString("\n")

	return b.String()
}

// FormatSignalsOrg renders multiple signals separated by blank lines.
func FormatSignalsOrg(signals []SignalRecord) string {
	var b strings.Builder
	for i, s := range signals {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatSignalOrg(s))
	}
	return b.String()
}

// FormatInvestmentsOrg renders a ledger as an Org table.
func FormatInvestmentsOrg(invs []InvestmentRecord) string {
	var b strings.Builder
	b.WriteString("| Time | Asset | Amount | Recurring | Balance |\n")
	b.WriteString("|------+-------+--------+-----------+---------|\n")
	for _, i := range invs {
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %t | %s |\n",
			i.Time.UTC().Format(time.RFC3339), i.AssetID, i.Amount.StringFixed(2),
			i.Recurring, i.Balance.StringFixed(2)))
	}
	return b.String()
}

// FormatTradesOrg renders simulator trades as an Org table.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	b.WriteString("| Day | Side | Units | Price | Balance | Holdings | Panic |\n")
	b.WriteString("|-----+------+-------+-------+---------+----------+-------|\n")
	for _, t := range trades {
		b.WriteString(fmt.Sprintf("| %d | %s | %d | %.2f | %.2f | %d | %t |\n",
			t.Day, t.Side, t.Units, t.Price, t.Balance, t.Holdings, t.Panic))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[len(full)-8:]
}
