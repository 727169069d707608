package sim

// NewsItem is a headline released on a given day.
type NewsItem struct {
	Day  int    `json:"day"`
	Text string `json:"text"`
}

const (
	WaitingHeadline = "Waiting for market open..."

	InterventionMessage = "Market Crash Detected! Fear is at peak levels. " +
		"Many investors panic sell here. If you sell now, you lock in losses forever. " +
		"Historically, markets recover. What will you do?"

	PanicSellNotice = "You sold at the bottom! This is a classic emotional mistake. " +
		"Your Emotional Score has dropped."
)

// DefaultNews is the scripted 2008-style storyline keyed by day.
func DefaultNews() map[int]string {
	return map[int]string{
		5:  "BULL RUN: Tech stocks reach all-time highs. Optimism is everywhere.",
		14: "RUMORS: Major investment bank reports severe liquidity issues.",
		16: "CRASH: Lehman-style collapse! Panic selling begins across global markets.",
		22: "MARKET BLEEDING: Global sell-off continues. Circuit breakers triggered.",
		28: "GOVT INTERVENTION: Emergency bailout package announced by Central Bank.",
		36: "RECOVERY: Early signs of stabilization detected. Smart money is buying.",
	}
}
