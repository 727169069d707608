package advisor

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/trustvest/trustvest/session"
)

const (
	OfflineConclusion = "Simulation Mode: advisor backend not connected."
	OfflineChat       = "I am your AI Assistant. (Start the advisor backend!)"
)

// OfflineDebate is the canned debate shown when the backend is down.
func OfflineDebate(req DebateRequest) DebateResult {
	amount := strconv.FormatFloat(req.Amount, 'f', -1, 64)
	return DebateResult{
		Turns: []Turn{
			{Agent: "Optimist", Message: fmt.Sprintf("This %s looks promising!", req.AssetName)},
			{Agent: "Risk", Message: fmt.Sprintf("Verify your risk tolerance before spending ₹%s.", amount)},
			{Agent: "Data", Message: "Historical data suggests volatility in the short term."},
		},
		Conclusion: OfflineConclusion,
		Verdict:    Caution,
	}
}

type fallback struct {
	next Advisor
	log  *zap.Logger
}

// WithFallback wraps a so that failures turn into the offline texts. The
// returned Advisor never returns an error.
func WithFallback(a Advisor, log *zap.Logger) Advisor {
	if log == nil {
		log = zap.NewNop()
	}
	return &fallback{next: a, log: log}
}

func (f *fallback) Debate(ctx context.Context, req DebateRequest) (DebateResult, error) {
	if f.next != nil {
		res, err := f.next.Debate(ctx, req)
		if err == nil {
			return res, nil
		}
		f.log.Warn("advisor debate failed, using offline debate", zap.Error(err))
	}
	return OfflineDebate(req), nil
}

func (f *fallback) Chat(ctx context.Context, history []ChatMessage, p session.Profile) (string, error) {
	if f.next != nil {
		text, err := f.next.Chat(ctx, history, p)
		if err == nil && text != "" {
			return text, nil
		}
		if err != nil {
			f.log.Warn("advisor chat failed, using offline reply", zap.Error(err))
		}
	}
	return OfflineChat, nil
}
