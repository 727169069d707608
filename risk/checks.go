package risk

// Decision is the outcome of evaluating one action.
type Decision struct {
	Rule       string
	Signal     *Signal // nil when no rule fired
	ScoreDelta int
	Verdict    Verdict
}

func (d Decision) Blocked() bool { return d.Verdict == Block }

// Triggered reports whether a rule produced a signal.
func (d Decision) Triggered() bool { return d.Signal != nil }

type rule struct {
	name        string
	kind        ActionKind
	signal      SignalType
	severity    Severity
	verdict     Verdict
	description string
	delta       func(Policy) int
	match       func(Policy, Action, History) bool
}

// rules is the policy table. Each action kind has at most one matching rule
// in the current set, so Evaluate produces at most one signal per call.
var rules = []rule{
	{
		name:        "odd_hour_login",
		kind:        ActionLogin,
		signal:      OddHours,
		severity:    SeverityLow,
		verdict:     Allow,
		description: "Login detected during unusual activity window (Simulated).",
		delta:       func(p Policy) int { return p.OddHourScoreDelta },
		match: func(_ Policy, a Action, _ History) bool {
			return a.Time.Minute()%2 != 0
		},
	},
	{
		name:        "high_value_transfer",
		kind:        ActionInvest,
		signal:      HighValueTransfer,
		severity:    SeverityMedium,
		verdict:     Allow, // warn-only: the investment still goes through
		description: "Large investment attempt by new user.",
		delta:       func(p Policy) int { return p.HighValueScoreDelta },
		match: func(p Policy, a Action, h History) bool {
			return a.Amount.GreaterThan(p.HighValueThreshold) &&
				h.PriorInvestments < p.HighValueMaxPriorInvests
		},
	},
	{
		name:        "rapid_withdrawal",
		kind:        ActionWithdraw,
		signal:      RapidWithdrawal,
		severity:    SeverityCritical,
		verdict:     Block,
		description: "Withdrawal attempted immediately after deposit. Money Laundering Signal.",
		delta:       func(p Policy) int { return p.RapidWithdrawalScoreDelta },
		match: func(p Policy, a Action, h History) bool {
			if !h.hasInvestment() {
				return false
			}
			return a.Time.Sub(h.LastInvestment) < p.RapidWithdrawalWindow
		},
	},
}

// Evaluate runs the rule table against an action. It is a pure function:
// the returned signal carries no id, and applying the decision to session
// state is the caller's job.
func Evaluate(p Policy, a Action, h History) Decision {
	for _, r := range rules {
		if r.kind != a.Kind || !r.match(p, a, h) {
			continue
		}
		return Decision{
			Rule: r.name,
			Signal: &Signal{
				Type:        r.signal,
				Severity:    r.severity,
				Time:        a.Time,
				Description: r.description,
			},
			ScoreDelta: r.delta(p),
			Verdict:    r.verdict,
		}
	}
	return Decision{Verdict: Allow}
}
