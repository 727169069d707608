package sim

import "errors"

var (
	ErrInvalidState      = errors.New("invalid simulation state")
	ErrInsufficientFunds = errors.New("insufficient simulation balance")
	ErrNoHoldings        = errors.New("no holdings to sell")
	ErrClosed            = errors.New("simulation closed")
)

type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case Running:
		return "RUNNING"
	case Paused:
		return "PAUSED"
	case Finished:
		return "FINISHED"
	default:
		return "UNKNOWN"
	}
}

// Snapshot is a consistent copy of the engine state.
type Snapshot struct {
	RunID        string  `json:"run_id"`
	State        State   `json:"state"`
	Day          int     `json:"day"`
	LastDay      int     `json:"last_day"`
	Price        float64 `json:"price"`
	Balance      float64 `json:"balance"`
	StartBalance float64 `json:"start_balance"`
	Holdings     int     `json:"holdings"`
	Headline     string  `json:"headline"`
	Intervention string  `json:"intervention,omitempty"`
	Notice       string  `json:"notice,omitempty"`
}

// Terminal reports whether the last day has been reached.
func (s Snapshot) Terminal() bool { return s.Day == s.LastDay }

// PortfolioValue is cash plus holdings marked at the current price.
func (s Snapshot) PortfolioValue() float64 {
	return s.Balance + float64(s.Holdings)*s.Price
}

func (s Snapshot) PnL() float64 { return s.PortfolioValue() - s.StartBalance }

func (s Snapshot) PnLPct() float64 {
	if s.StartBalance == 0 {
		return 0
	}
	return s.PnL() / s.StartBalance * 100
}
