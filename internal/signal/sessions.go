package signal

// SessionTiming describes a UTC trading window and the pairs that are
// actively traded inside it. All table entries satisfy StartHour <= EndHour;
// overnight wraparound is not modeled (no current session needs it, and the
// inclusive-range check below would have to become a circular-interval test).
type SessionTiming struct {
	Name      string   `json:"name"`
	StartHour int      `json:"start_hour"` // 0..23 UTC, inclusive
	EndHour   int      `json:"end_hour"`   // 0..23 UTC, inclusive
	Timezone  string   `json:"timezone"`
	Pairs     []string `json:"pairs"`
}

// Session names
const (
	SessionLondon   = "London"
	SessionNewYork  = "New York"
	SessionLondonNY = "London-NY Overlap"
)

// Sessions is the fixed session table. Read-only, process-lifetime constant.
var Sessions = []SessionTiming{
	{
		Name:      SessionLondon,
		StartHour: 7,
		EndHour:   16,
		Timezone:  "GMT",
		Pairs:     []string{"EURUSD", "GBPUSD", "EURGBP", "GBPJPY", "XAUUSD"},
	},
	{
		Name:      SessionNewYork,
		StartHour: 12,
		EndHour:   21,
		Timezone:  "GMT",
		Pairs:     []string{"EURUSD", "GBPUSD", "USDJPY", "USDCAD", "XAUUSD", "US30", "NAS100"},
	},
	{
		Name:      SessionLondonNY,
		StartHour: 12,
		EndHour:   16,
		Timezone:  "GMT",
		Pairs:     []string{"EURUSD", "GBPUSD", "GBPJPY", "XAUUSD"},
	},
}

// Contains reports whether the session trades the given symbol.
func (s *SessionTiming) Contains(symbol string) bool {
	for _, p := range s.Pairs {
		if p == symbol {
			return true
		}
	}
	return false
}

// InWindow reports whether the UTC hour falls inside the session window.
// Bounds are inclusive on both ends.
func (s *SessionTiming) InWindow(utcHour int) bool {
	return utcHour >= s.StartHour && utcHour <= s.EndHour
}

// ActiveSessionFor returns the first session that trades the symbol and is
// open at the given UTC hour, or nil when none is.
func ActiveSessionFor(symbol string, utcHour int) *SessionTiming {
	for i := range Sessions {
		if Sessions[i].Contains(symbol) && Sessions[i].InWindow(utcHour) {
			return &Sessions[i]
		}
	}
	return nil
}
