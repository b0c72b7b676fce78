package suggest

import "math"

// kindWeights is how much each kind of suggestion lowers the confidence score
var kindWeights = map[Kind]float64{
	Formatting:   0.8,
	Naming:       0.6,
	BestPractice: 0.7,
	Logical:      0.9,
	Security:     0.95,
}

const (
	defaultKindWeight = 0.5
	minConfidence     = 0.1
)

// ConfidenceScore is 1 minus the average kind weight, floored at 0.1. It is 1.0 for an
// empty list.
func ConfidenceScore(suggestions []Suggestion) float64 {
	if len(suggestions) == 0 {
		return 1.0
	}
	total := 0.0
	for _, s := range suggestions {
		w, ok := kindWeights[s.Kind]
		if !ok {
			w = defaultKindWeight
		}
		total += w
	}
	return math.Min(1.0, math.Max(minConfidence, 1-total/float64(len(suggestions))))
}
