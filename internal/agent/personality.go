// Personality is the OCEAN five-factor model, [0, 1] per trait. Traits are
// fixed at spawn except for rare small permanent shifts caused by traumatic
// events.
package agent

import "github.com/aventine/socius/internal/entropy"

// Personality holds the five-factor traits.
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`
}

// PopulationDistribution describes how traits are sampled at spawn. Passed as
// an immutable struct at initialization, never read from ambient state.
type PopulationDistribution struct {
	Mean   Personality
	Spread float64 // uniform half-width around each mean
}

// DefaultPopulation returns a mildly varied population centered near 0.5.
func DefaultPopulation() PopulationDistribution {
	return PopulationDistribution{
		Mean: Personality{
			Openness:          0.5,
			Conscientiousness: 0.5,
			Extraversion:      0.5,
			Agreeableness:     0.55,
			Neuroticism:       0.45,
		},
		Spread: 0.25,
	}
}

// Sample draws one personality from the distribution.
func (d PopulationDistribution) Sample(src *entropy.Source) Personality {
	draw := func(mean float64) float64 {
		return Clamp01(mean + src.Symmetric(d.Spread))
	}
	return Personality{
		Openness:          draw(d.Mean.Openness),
		Conscientiousness: draw(d.Mean.Conscientiousness),
		Extraversion:      draw(d.Mean.Extraversion),
		Agreeableness:     draw(d.Mean.Agreeableness),
		Neuroticism:       draw(d.Mean.Neuroticism),
	}
}

// ApplyTrauma makes the rare permanent shift: intensity is the stimulus
// strength in [0, 1], and the shift is small even at full intensity.
// Neuroticism hardens upward, openness and extraversion retreat.
func (p *Personality) ApplyTrauma(intensity float64) {
	shift := 0.02 * Clamp01(intensity)
	p.Neuroticism = Clamp01(p.Neuroticism + shift)
	p.Openness = Clamp01(p.Openness - shift*0.5)
	p.Extraversion = Clamp01(p.Extraversion - shift*0.5)
}
