package belief

import "github.com/aventine/socius/internal/expression"

// Intent is a nearest-prototype read of a belief vector. The label is a
// convenience for events and the API; the vector stays the source of truth.
type Intent struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
	Distance   float64 `json:"distance"`
}

type prototype struct {
	label  string
	vector expression.ApparentStateVector
}

// Prototype anchors in apparent-vector space. Roughly one per behavioral
// stance an observer would care to name.
var prototypes = []prototype{
	{"friendly", expression.ApparentStateVector{Tension: -0.4, Openness: 0.7, Dominance: 0.1, Focus: 0.2}},
	{"hostile", expression.ApparentStateVector{Tension: 0.8, Openness: -0.5, Dominance: 0.7, Focus: 0.3}},
	{"fearful", expression.ApparentStateVector{Tension: 0.8, Openness: -0.4, Dominance: -0.7, Focus: -0.3}},
	{"dominant", expression.ApparentStateVector{Tension: 0.2, Openness: 0.1, Dominance: 0.8, Focus: 0.5}},
	{"withdrawn", expression.ApparentStateVector{Tension: 0.1, Openness: -0.8, Dominance: -0.4, Focus: -0.2}},
	{"focused", expression.ApparentStateVector{Tension: 0.0, Openness: 0.0, Dominance: 0.2, Focus: 0.9}},
	{"neutral", expression.ApparentStateVector{}},
}

// Classify maps a vector to its nearest prototype. Confidence falls off with
// distance as 1/(1+d), so a read equidistant from everything is an uncertain
// "neutral" rather than a coin flip.
func Classify(v expression.ApparentStateVector) Intent {
	best := prototypes[0]
	bestDist := v.Distance(best.vector)
	for _, p := range prototypes[1:] {
		if d := v.Distance(p.vector); d < bestDist {
			best, bestDist = p, d
		}
	}
	return Intent{
		Label:      best.label,
		Confidence: 1 / (1 + bestDist),
		Distance:   bestDist,
	}
}
