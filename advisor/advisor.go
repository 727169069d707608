// Package advisor talks to the AI advisory backend: a three-agent debate
// before an investment and a free-form chat with the user's twin.
package advisor

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/trustvest/trustvest/catalog"
	"github.com/trustvest/trustvest/session"
)

// ErrUnavailable marks a backend that could not be reached or answered
// with an error status.
var ErrUnavailable = errors.New("advisor unavailable")

type Verdict string

const (
	Proceed Verdict = "PROCEED"
	Caution Verdict = "CAUTION"
	Wait    Verdict = "WAIT"
)

func (v Verdict) Valid() bool {
	return v == Proceed || v == Caution || v == Wait
}

type UserContext struct {
	BehaviorTags   []string `json:"behaviorTags"`
	EmotionalScore int      `json:"emotionalScore"`
}

type DebateRequest struct {
	AssetName string      `json:"asset_name"`
	AssetRisk string      `json:"asset_risk"`
	Amount    float64     `json:"amount"`
	User      UserContext `json:"user"`
}

type Turn struct {
	Agent   string `json:"agent"`
	Message string `json:"message"`
}

type DebateResult struct {
	Turns      []Turn  `json:"turns"`
	Conclusion string  `json:"conclusion"`
	Verdict    Verdict `json:"verdict"`
}

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type ChatMessage struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type Advisor interface {
	Debate(ctx context.Context, req DebateRequest) (DebateResult, error)
	Chat(ctx context.Context, history []ChatMessage, p session.Profile) (string, error)
}

// NewDebateRequest builds the debate payload for investing amount in a.
func NewDebateRequest(a catalog.Asset, amount decimal.Decimal, p session.Profile) DebateRequest {
	return DebateRequest{
		AssetName: a.Name,
		AssetRisk: string(a.RiskLevel),
		Amount:    amount.InexactFloat64(),
		User: UserContext{
			BehaviorTags:   append([]string(nil), p.BehaviorTags...),
			EmotionalScore: p.EmotionalScore,
		},
	}
}
