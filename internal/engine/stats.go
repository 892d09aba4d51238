package engine

import (
	"github.com/aventine/socius/internal/agent"
	"github.com/aventine/socius/internal/belief"
)

// SimStats are aggregate readings over the living population, refreshed
// hourly. All averages are over living agents only.
type SimStats struct {
	Population    int               `json:"population"`
	AvgValence    float64           `json:"avg_valence"`
	AvgArousal    float64           `json:"avg_arousal"`
	AvgAcute      float64           `json:"avg_acute_stress"`
	AvgChronic    float64           `json:"avg_chronic_stress"`
	AvgCertainty  float64           `json:"avg_belief_certainty"`
	Allostatic    int               `json:"allostatic"`
	PostTraumatic int               `json:"post_traumatic"`
	Overrides     uint64            `json:"overrides"`            // cumulative forced actions
	Conflicts     uint64            `json:"conflicts"`            // cumulative near-tie arbitrations
	ActionMix     map[string]uint64 `json:"action_mix"`           // cumulative per-kind counts
}

func (s *Simulation) refreshStats() {
	st := SimStats{
		Overrides: s.stats.Overrides,
		Conflicts: s.stats.Conflicts,
		ActionMix: s.stats.ActionMix,
	}

	var certSum float64
	var certN int
	s.Beliefs.Each(func(_, _ agent.ID, b belief.Belief) {
		certSum += b.Certainty
		certN++
	})

	for _, a := range s.Store.All() {
		if !a.Alive {
			continue
		}
		st.Population++
		st.AvgValence += a.Emotion.Valence
		st.AvgArousal += a.Emotion.Arousal
		st.AvgAcute += a.Stress.Acute
		st.AvgChronic += a.Stress.Chronic
		switch a.Stress.Phase {
		case agent.Allostasis:
			st.Allostatic++
		case agent.PostTraumatic:
			st.PostTraumatic++
		}
	}
	if st.Population > 0 {
		n := float64(st.Population)
		st.AvgValence /= n
		st.AvgArousal /= n
		st.AvgAcute /= n
		st.AvgChronic /= n
	}
	if certN > 0 {
		st.AvgCertainty = certSum / float64(certN)
	}
	s.stats = st
}

// Stats returns a copy of the current aggregates.
func (s *Simulation) Stats() SimStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.stats
	mix := make(map[string]uint64, len(st.ActionMix))
	for k, v := range st.ActionMix {
		mix[k] = v
	}
	st.ActionMix = mix
	return st
}
