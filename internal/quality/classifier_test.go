package quality

import (
	"testing"
	"time"

	"smc-signal-engine/internal/signal"
	"smc-signal-engine/internal/validator"
)

func classifierAt(hour int) *Classifier {
	v := validator.NewWithClock(func() time.Time {
		return time.Date(2024, 3, 4, hour, 0, 0, 0, time.UTC)
	})
	return NewWithValidator(v, DefaultThresholds())
}

func strongSignal() *signal.CandidateSignal {
	return &signal.CandidateSignal{
		Symbol:          "EURUSD",
		Direction:       "long",
		EntryPrice:      1.1050,
		StopLoss:        1.1030,
		TakeProfit1:     1.1130,
		ConfidenceScore: 92,
		ConfluenceFactors: []string{
			"choch_confirmation",
			"daily_structure_confirmation",
			"h4_structure_confirmation",
			"optimal_session_timing",
			"order_block_alignment",
			"liquidity_sweep",
		},
	}
}

func TestClassifyExcellent(t *testing.T) {
	c := classifierAt(8)
	got := c.Classify(strongSignal(), signal.DefaultStrategyConfig())

	if got.Quality != QualityExcellent {
		t.Fatalf("Quality = %s, want excellent (improvements: %v)", got.Quality, got.Improvements)
	}
	if got.ExpectedWinRate != 75 || got.ExpectedRRR != 4.5 {
		t.Errorf("expectations = %v/%v, want 75/4.5", got.ExpectedWinRate, got.ExpectedRRR)
	}
}

func TestClassifyGoodWithImprovements(t *testing.T) {
	c := classifierAt(8)
	sig := strongSignal()
	// Five factors scoring >= 7, reward:risk between 3 and 4: good tier.
	sig.ConfluenceFactors = sig.ConfluenceFactors[:5] // score 2+2+2+1+1 = 8
	sig.TakeProfit1 = 1.1120                          // RRR 3.5
	sig.ConfidenceScore = 92

	got := c.Classify(sig, signal.DefaultStrategyConfig())
	if got.Quality != QualityGood {
		t.Fatalf("Quality = %s, want good (improvements: %v)", got.Quality, got.Improvements)
	}
	if got.ExpectedWinRate != 65 || got.ExpectedRRR != 3.5 {
		t.Errorf("expectations = %v/%v, want 65/3.5", got.ExpectedWinRate, got.ExpectedRRR)
	}
	// Fewer than 6 factors and RRR below 4 both warrant suggestions.
	if len(got.Improvements) != 2 {
		t.Errorf("Improvements = %v, want 2 entries", got.Improvements)
	}
}

func TestClassifyPoorCarriesValidatorReasons(t *testing.T) {
	c := classifierAt(3) // outside every session
	sig := &signal.CandidateSignal{
		Symbol:            "EURUSD",
		Direction:         "long",
		ConfidenceScore:   20,
		ConfluenceFactors: []string{"momentum_divergence"},
	}

	got := c.Classify(sig, signal.DefaultStrategyConfig())
	if got.Quality != QualityPoor {
		t.Fatalf("Quality = %s, want poor", got.Quality)
	}
	if len(got.Improvements) == 0 {
		t.Fatal("poor assessment with validator failures has empty improvements")
	}
	if got.ExpectedWinRate != 45 || got.ExpectedRRR != 2.0 {
		t.Errorf("expectations = %v/%v, want 45/2.0", got.ExpectedWinRate, got.ExpectedRRR)
	}
}

func TestClassifyPoorExtraNoteOnThinConfluence(t *testing.T) {
	c := classifierAt(3)
	sig := &signal.CandidateSignal{
		Symbol:            "EURUSD",
		Direction:         "short",
		ConfidenceScore:   20,
		ConfluenceFactors: []string{"momentum_divergence", "fibonacci_confluence"},
	}

	got := c.Classify(sig, signal.DefaultStrategyConfig())
	// 4 failed gates plus the thin-confluence note.
	if len(got.Improvements) != 5 {
		t.Errorf("Improvements = %v, want 5 entries", got.Improvements)
	}
}
