// Package quality grades validated signals into coarse tiers for display.
package quality

import (
	"smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"
)

// Quality tiers
const (
	QualityExcellent = "excellent"
	QualityGood      = "good"
	QualityPoor      = "poor"
)

// Assessment is the classifier's verdict, ready for direct display. The
// expected win rate and reward:risk per tier are fixed heuristics, not
// derived from historical performance at call time.
type Assessment struct {
	Quality         string   `json:"quality"`
	Improvements    []string `json:"improvements"`
	ExpectedWinRate float64  `json:"expected_win_rate"` // percentage
	ExpectedRRR     float64  `json:"expected_rrr"`
}

// Thresholds holds the tier boundaries and per-tier expectations. Named
// and overridable so the heuristic can be recalibrated without code changes.
type Thresholds struct {
	ExcellentFactors int     // factor count for the excellent tier
	ExcellentRRR     float64 // reward:risk for the excellent tier
	GoodScore        int     // confluence score for the good tier
	GoodRRR          float64 // reward:risk for the good tier
	PoorFactorsNote  int     // below this factor count, poor gets an extra note

	ExcellentWinRate float64
	ExcellentExpRRR  float64
	GoodWinRate      float64
	GoodExpRRR       float64
	PoorWinRate      float64
	PoorExpRRR       float64
}

// DefaultThresholds returns the stock tier policy.
func DefaultThresholds() Thresholds {
	return Thresholds{
		ExcellentFactors: 6,
		ExcellentRRR:     4.0,
		GoodScore:        7,
		GoodRRR:          3.0,
		PoorFactorsNote:  5,
		ExcellentWinRate: 75,
		ExcellentExpRRR:  4.5,
		GoodWinRate:      65,
		GoodExpRRR:       3.5,
		PoorWinRate:      45,
		PoorExpRRR:       2.0,
	}
}

// Classifier combines the validator's verdict with reward:risk and factor
// count into a quality tier. Stateless apart from its thresholds.
type Classifier struct {
	validator  *validator.Validator
	thresholds Thresholds
}

// New creates a classifier with the default thresholds and clock.
func New() *Classifier {
	return NewWithValidator(validator.New(), DefaultThresholds())
}

// NewWithValidator creates a classifier over an explicit validator and
// threshold set, for tests and calibration runs.
func NewWithValidator(v *validator.Validator, th Thresholds) *Classifier {
	return &Classifier{validator: v, thresholds: th}
}

// Classify grades the signal. The improvements list is never nil; for poor
// signals with validator failures it is never empty.
func (c *Classifier) Classify(sig *signal.CandidateSignal, cfg signal.StrategyConfig) Assessment {
	result := c.validator.Validate(sig, cfg)
	rr := sig.RewardRisk()
	factors := len(sig.ConfluenceFactors)
	th := c.thresholds

	switch {
	case result.IsValid && factors >= th.ExcellentFactors && rr >= th.ExcellentRRR:
		return Assessment{
			Quality:         QualityExcellent,
			Improvements:    []string{},
			ExpectedWinRate: th.ExcellentWinRate,
			ExpectedRRR:     th.ExcellentExpRRR,
		}

	case result.Score >= th.GoodScore && rr >= th.GoodRRR:
		improvements := make([]string, 0, 2)
		if factors < th.ExcellentFactors {
			improvements = append(improvements, "add more confluence factors before entry")
		}
		if rr < th.ExcellentRRR {
			improvements = append(improvements, "look for a better reward:risk entry point")
		}
		return Assessment{
			Quality:         QualityGood,
			Improvements:    improvements,
			ExpectedWinRate: th.GoodWinRate,
			ExpectedRRR:     th.GoodExpRRR,
		}

	default:
		improvements := make([]string, 0, len(result.Reasons)+1)
		improvements = append(improvements, result.Reasons...)
		if factors < th.PoorFactorsNote {
			improvements = append(improvements, "wait for stronger confluence before taking this setup")
		}
		return Assessment{
			Quality:         QualityPoor,
			Improvements:    improvements,
			ExpectedWinRate: th.PoorWinRate,
			ExpectedRRR:     th.PoorExpRRR,
		}
	}
}
