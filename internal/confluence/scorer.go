package confluence

import "strings"

// MaxScore caps the aggregate confluence score. The 0-10 range keeps the
// rating coarse and explainable for the dashboard.
const MaxScore = 10

// Scorer maps the factor labels attached to a candidate signal onto the
// fixed catalog and produces a bounded score. Stateless; safe for
// concurrent use.
type Scorer struct{}

// NewScorer creates a confluence scorer over the built-in catalog.
func NewScorer() *Scorer {
	return &Scorer{}
}

// Score sums the catalog weights of every matched label and clamps the
// total at MaxScore. Matching is order-independent and duplicate-tolerant:
// a label that appears twice is scored twice. Unknown labels contribute
// nothing. An empty input scores 0.
func (s *Scorer) Score(labels []string) int {
	total := 0
	for _, label := range labels {
		if f, ok := Match(label); ok {
			total += f.Points
		}
	}
	if total > MaxScore {
		total = MaxScore
	}
	return total
}

// Match resolves a label against the catalog in two phases: an exact name
// lookup first, then a fallback scan where a catalog name's first
// underscore-delimited segment being a substring of the label counts as a
// match. The fallback tolerates slightly different label spellings from the
// upstream pipeline, at the cost of possible false positives on shared
// prefixes; it is a heuristic, not a classifier.
func Match(label string) (Factor, bool) {
	if f, ok := byName[label]; ok {
		return f, true
	}
	for _, e := range catalog {
		segment, _, _ := strings.Cut(e.Factor.Name, "_")
		if strings.Contains(label, segment) {
			return e.Factor, true
		}
	}
	return Factor{}, false
}
