package validator

import (
	"fmt"
	"time"

	"smc-signal-engine/internal/confluence"
	"smc-signal-engine/internal/signal"
)

// MinRewardRisk is the reward:risk floor every signal must clear. Policy
// constant, shared with the quality classifier's "excellent" tier.
const MinRewardRisk = 4.0

// ValidationResult is the outcome of running a candidate through the gates.
// Reasons holds one human-readable entry per failed gate, in gate order, and
// is meant for direct display.
type ValidationResult struct {
	IsValid bool     `json:"is_valid"`
	Reasons []string `json:"reasons"`
	Score   int      `json:"score"` // confluence score, 0..10
}

// Validator applies the gating thresholds that decide whether a candidate
// signal is tradeable. Pure except for the session gate, which reads the
// wall clock; the clock is injected so tests can pin it.
type Validator struct {
	scorer *confluence.Scorer
	now    func() time.Time
}

// New creates a validator using the real clock.
func New() *Validator {
	return NewWithClock(time.Now)
}

// NewWithClock creates a validator with an injected clock.
func NewWithClock(now func() time.Time) *Validator {
	return &Validator{
		scorer: confluence.NewScorer(),
		now:    now,
	}
}

// Validate runs every gate and collects the failures. Gates are independent:
// a failing gate never short-circuits the rest, so Reasons always explains
// the full picture. The confluence score is computed regardless of validity.
func (v *Validator) Validate(sig *signal.CandidateSignal, cfg signal.StrategyConfig) ValidationResult {
	result := ValidationResult{
		IsValid: true,
		Reasons: make([]string, 0),
	}

	// Gate 1: confidence threshold
	if sig.ConfidenceScore < cfg.MinConfidenceScore {
		result.IsValid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("confidence score %.1f below minimum %.1f", sig.ConfidenceScore, cfg.MinConfidenceScore))
	}

	// Gate 2: reward:risk floor
	if rr := sig.RewardRisk(); rr < MinRewardRisk {
		result.IsValid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("reward:risk %.2f below minimum %.1f", rr, MinRewardRisk))
	}

	// Gate 3: confluence factor count
	if len(sig.ConfluenceFactors) < cfg.RequiredConfluenceFactors {
		result.IsValid = false
		result.Reasons = append(result.Reasons,
			fmt.Sprintf("only %d confluence factors, need %d", len(sig.ConfluenceFactors), cfg.RequiredConfluenceFactors))
	}

	// Gate 4: session timing
	if cfg.SessionFilterEnabled {
		hour := v.now().UTC().Hour()
		if signal.ActiveSessionFor(sig.Symbol, hour) == nil {
			result.IsValid = false
			result.Reasons = append(result.Reasons,
				fmt.Sprintf("no active session for %s at %02d:00 UTC", sig.Symbol, hour))
		}
	}

	result.Score = v.scorer.Score(sig.ConfluenceFactors)
	return result
}
