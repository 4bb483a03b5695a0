package signal

// PairRule carries per-instrument trading preferences. The fields are
// non-uniform on purpose: each pair only sets what matters for it. The risk
// sizer consults the buffer multiplier; the remaining fields are surfaced
// over the API for the dashboard. Extension point for future per-pair
// gating.
type PairRule struct {
	StopBufferMultiplier float64  `json:"stop_buffer_multiplier,omitempty"`
	RequiredSessions     []string `json:"required_sessions,omitempty"`
	PreferredTimeframes  []string `json:"preferred_timeframes,omitempty"`
	AvoidNews            bool     `json:"avoid_news,omitempty"`
	RoundNumberTargets   bool     `json:"round_number_targets,omitempty"`
}

// PairRules is the fixed per-symbol rule table. Read-only.
var PairRules = map[string]PairRule{
	"EURUSD": {
		StopBufferMultiplier: 1.0,
		RequiredSessions:     []string{SessionLondon, SessionLondonNY},
		PreferredTimeframes:  []string{"H1", "H4"},
	},
	"GBPUSD": {
		StopBufferMultiplier: 1.0,
		RequiredSessions:     []string{SessionLondon},
		PreferredTimeframes:  []string{"H1", "H4"},
		AvoidNews:            true,
	},
	"GBPJPY": {
		StopBufferMultiplier: 1.5,
		RequiredSessions:     []string{SessionLondon},
		PreferredTimeframes:  []string{"H4"},
		AvoidNews:            true,
	},
	"USDJPY": {
		StopBufferMultiplier: 1.0,
		RequiredSessions:     []string{SessionNewYork},
		PreferredTimeframes:  []string{"H1", "H4"},
	},
	"USDCAD": {
		StopBufferMultiplier: 1.0,
		RequiredSessions:     []string{SessionNewYork},
		PreferredTimeframes:  []string{"H1"},
		AvoidNews:            true,
	},
	"XAUUSD": {
		StopBufferMultiplier: 1.5,
		RequiredSessions:     []string{SessionLondon, SessionNewYork},
		PreferredTimeframes:  []string{"M15", "H1"},
		RoundNumberTargets:   true,
	},
	"US30": {
		StopBufferMultiplier: 1.0,
		RequiredSessions:     []string{SessionNewYork},
		PreferredTimeframes:  []string{"M15", "H1"},
		RoundNumberTargets:   true,
	},
	"NAS100": {
		StopBufferMultiplier: 1.5,
		RequiredSessions:     []string{SessionNewYork},
		PreferredTimeframes:  []string{"M15", "H1"},
		AvoidNews:            true,
		RoundNumberTargets:   true,
	},
}

// RuleFor returns the rule for a symbol, and whether one exists.
func RuleFor(symbol string) (PairRule, bool) {
	r, ok := PairRules[symbol]
	return r, ok
}
