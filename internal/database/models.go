package database

import (
	"time"
)

// SignalEvaluation is one persisted engine run: the candidate signal
// snapshot plus the validator and classifier output. The engine core never
// touches these rows; handlers write them after each evaluation so the
// dashboard can show history.
type SignalEvaluation struct {
	ID                string    `json:"id"`
	Symbol            string    `json:"symbol"`
	Direction         string    `json:"direction"`
	EntryPrice        float64   `json:"entry_price"`
	StopLoss          float64   `json:"stop_loss"`
	TakeProfit        *float64  `json:"take_profit,omitempty"`
	ConfidenceScore   float64   `json:"confidence_score"`
	RiskRewardRatio   float64   `json:"risk_reward_ratio"`
	ConfluenceFactors []string  `json:"confluence_factors"`
	IsValid           bool      `json:"is_valid"`
	Score             int       `json:"score"`
	Reasons           []string  `json:"reasons"`
	Quality           *string   `json:"quality,omitempty"`
	ExpectedWinRate   *float64  `json:"expected_win_rate,omitempty"`
	ExpectedRRR       *float64  `json:"expected_rrr,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
}

// AccountSnapshot is a broker-reported balance observation.
type AccountSnapshot struct {
	ID         int64     `json:"id"`
	Balance    float64   `json:"balance"`
	Source     string    `json:"source"`
	RecordedAt time.Time `json:"recorded_at"`
}
