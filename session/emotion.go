package session

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

const (
	// PanicSellRatio is the fraction of the baseline below which a sell
	// counts as selling the bottom.
	PanicSellRatio = 0.6

	PanicSellDelta = -10
	CalmSellDelta  = 2
)

// SellOutcome reports how a simulator sell moved the emotional score.
type SellOutcome struct {
	Panic bool
	Delta int
	Score int
	Tags  []string
}

// OnSell scores a sell executed at executionPrice against baselinePrice.
// It fails with ErrClosed after Logout.
func (s *Session) OnSell(executionPrice, baselinePrice float64) (SellOutcome, error) {
	var out SellOutcome
	err := s.Update(func(st *State) error {
		out = st.OnSell(executionPrice, baselinePrice)
		return nil
	})
	if err != nil {
		return SellOutcome{}, fmt.Errorf("score sell: %w", err)
	}
	return out, nil
}

// EmotionalScore returns the current score.
func (s *Session) EmotionalScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.EmotionalScore
}

// AdjustEmotionalScore applies delta, clamped to [0,100], and returns the
// new score.
func (s *Session) AdjustEmotionalScore(delta int) (int, error) {
	var score int
	err := s.Update(func(st *State) error {
		score = st.AdjustEmotion(delta)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("adjust emotional score: %w", err)
	}
	return score, nil
}

func (st *State) OnSell(executionPrice, baselinePrice float64) SellOutcome {
	out := SellOutcome{Delta: CalmSellDelta}
	if executionPrice < PanicSellRatio*baselinePrice {
		out.Panic = true
		out.Delta = PanicSellDelta
	}
	out.Score = st.AdjustEmotion(out.Delta)
	out.Tags = slices.Clone(st.Profile.BehaviorTags)

	if out.Panic {
		st.s.log.Info("panic sell",
			zap.Float64("price", executionPrice),
			zap.Float64("baseline", baselinePrice),
			zap.Int("emotional_score", out.Score),
		)
	}
	return out
}

func (st *State) AdjustEmotion(delta int) int {
	st.Profile.EmotionalScore = clampEmotion(st.Profile.EmotionalScore + delta)
	if st.Profile.EmotionalScore < MinEmotionalScore || st.Profile.EmotionalScore > MaxEmotionalScore {
		panic(fmt.Sprintf("session: emotional score %d out of range", st.Profile.EmotionalScore))
	}
	deriveTags(st.Profile)
	return st.Profile.EmotionalScore
}

func clampEmotion(v int) int {
	return max(MinEmotionalScore, min(MaxEmotionalScore, v))
}

// deriveTags keeps PanicProne in sync with the score. Other tags are left
// alone.
func deriveTags(p *Profile) {
	want := p.EmotionalScore < PanicProneBelow
	has := p.HasTag(PanicProne)
	switch {
	case want && !has:
		p.BehaviorTags = append(p.BehaviorTags, PanicProne)
	case !want && has:
		p.BehaviorTags = slices.DeleteFunc(p.BehaviorTags, func(t string) bool { return t == PanicProne })
	}
}
