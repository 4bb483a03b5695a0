package confluence

// Priority levels for confluence factors
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Factor is one named piece of supporting evidence for a trade setup.
// Name is the stable string the upstream pipeline emits and the scorer
// matches on; the catalog key is an internal label.
type Factor struct {
	Name     string `json:"name"`
	Points   int    `json:"points"`
	Priority string `json:"priority"`
}

// catalogEntry pairs the internal key with its factor, preserving the
// declaration order for the fallback matching phase.
type catalogEntry struct {
	Key    string
	Factor Factor
}

// catalog is the fixed confluence-factor table. Read-only, process-lifetime
// constant. Weights are policy constants, not derived from data.
var catalog = []catalogEntry{
	{"DAILY_STRUCTURE", Factor{Name: "daily_structure_confirmation", Points: 2, Priority: PriorityHigh}},
	{"H4_STRUCTURE", Factor{Name: "h4_structure_confirmation", Points: 2, Priority: PriorityHigh}},
	{"H1_STRUCTURE", Factor{Name: "h1_structure_confirmation", Points: 1, Priority: PriorityMedium}},
	{"CHOCH", Factor{Name: "choch_confirmation", Points: 2, Priority: PriorityHigh}},
	{"BOS", Factor{Name: "bos_confirmation", Points: 2, Priority: PriorityHigh}},
	{"LIQUIDITY_SWEEP", Factor{Name: "liquidity_sweep", Points: 2, Priority: PriorityHigh}},
	{"ORDER_BLOCK", Factor{Name: "order_block_alignment", Points: 1, Priority: PriorityMedium}},
	{"BREAKER_BLOCK", Factor{Name: "breaker_block_retest", Points: 1, Priority: PriorityMedium}},
	{"FVG", Factor{Name: "fair_value_gap_fill", Points: 1, Priority: PriorityMedium}},
	{"SUPPLY_ZONE", Factor{Name: "supply_zone_rejection", Points: 1, Priority: PriorityMedium}},
	{"DEMAND_ZONE", Factor{Name: "demand_zone_rejection", Points: 1, Priority: PriorityMedium}},
	{"EQUAL_LEVELS", Factor{Name: "equal_highs_lows_taken", Points: 1, Priority: PriorityLow}},
	{"SESSION_TIMING", Factor{Name: "optimal_session_timing", Points: 1, Priority: PriorityMedium}},
	{"KILLZONE", Factor{Name: "killzone_entry", Points: 1, Priority: PriorityMedium}},
	{"MOMENTUM_DIVERGENCE", Factor{Name: "momentum_divergence", Points: 1, Priority: PriorityLow}},
	{"FIBONACCI", Factor{Name: "fibonacci_confluence", Points: 1, Priority: PriorityLow}},
	{"NEWS_CATALYST", Factor{Name: "news_catalyst_alignment", Points: 1, Priority: PriorityLow}},
}

// byName is the exact-match index over the catalog.
var byName = func() map[string]Factor {
	m := make(map[string]Factor, len(catalog))
	for _, e := range catalog {
		m[e.Factor.Name] = e.Factor
	}
	return m
}()

// Catalog returns the factor table keyed by internal label, for display.
func Catalog() map[string]Factor {
	m := make(map[string]Factor, len(catalog))
	for _, e := range catalog {
		m[e.Key] = e.Factor
	}
	return m
}
