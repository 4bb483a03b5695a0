package signal

import "strings"

// Direction constants for candidate signals
const (
	DirectionLong  = "long"
	DirectionShort = "short"
)

// CandidateSignal is a trade setup produced by the upstream signal pipeline.
// The engine only reads it. Any numeric field may be absent in the source
// payload; the zero value stands in for absence and never causes an error.
type CandidateSignal struct {
	Symbol            string   `json:"symbol"`
	Direction         string   `json:"direction"` // "long"/"short", "buy" accepted as long
	EntryPrice        float64  `json:"entry_price"`
	StopLoss          float64  `json:"stop_loss"`
	TakeProfit1       float64  `json:"take_profit_1,omitempty"`
	RiskRewardRatio   float64  `json:"risk_reward_ratio,omitempty"`
	ConfidenceScore   float64  `json:"confidence_score"`
	ConfluenceFactors []string `json:"confluence_factors"`
}

// IsLong reports whether the signal direction counts as long.
// Matching is deliberately loose: a lowercased direction containing "buy"
// or equal to "long" is long, anything else is short.
func (s *CandidateSignal) IsLong() bool {
	dir := strings.ToLower(s.Direction)
	return strings.Contains(dir, "buy") || dir == DirectionLong
}

// RewardRisk returns the signal's reward:risk ratio. When the upstream
// pipeline did not supply one it is derived from the first take-profit and
// the stop; missing prices or a zero stop distance yield 0, which always
// fails the reward:risk gate downstream.
func (s *CandidateSignal) RewardRisk() float64 {
	if s.RiskRewardRatio != 0 {
		return s.RiskRewardRatio
	}
	risk := s.EntryPrice - s.StopLoss
	if risk < 0 {
		risk = -risk
	}
	if risk == 0 || s.TakeProfit1 == 0 || s.EntryPrice == 0 {
		return 0
	}
	reward := s.TakeProfit1 - s.EntryPrice
	if reward < 0 {
		reward = -reward
	}
	return reward / risk
}

// StrategyConfig holds the tunable thresholds for signal validation and
// risk sizing. All fields have documented defaults; callers may pass an
// adjusted copy per evaluation.
type StrategyConfig struct {
	MinConfidenceScore        float64 `json:"min_confidence_score"`        // 0..100
	RequiredConfluenceFactors int     `json:"required_confluence_factors"` // minimum factor count
	SessionFilterEnabled      bool    `json:"session_filter_enabled"`
	RiskPercentage            float64 `json:"risk_percentage"`       // % of account per trade
	MaxConcurrentTrades       int     `json:"max_concurrent_trades"` // risk manager gate
	MaxDailyDrawdown          float64 `json:"max_daily_drawdown"`    // % of account per day
}

// DefaultStrategyConfig returns the stock configuration used by the
// dashboard when a user has not tuned anything.
func DefaultStrategyConfig() StrategyConfig {
	return StrategyConfig{
		MinConfidenceScore:        88,
		RequiredConfluenceFactors: 5,
		SessionFilterEnabled:      true,
		RiskPercentage:            1.0,
		MaxConcurrentTrades:       3,
		MaxDailyDrawdown:          5.0,
	}
}
