// Needs model physiological and social pressure. All values are [0, 1] with
// 0 = fully satisfied; the value is the unmet pressure, so decay pushes
// pressures up and actions push them back down.
package agent

// Needs tracks the four core need pressures.
type Needs struct {
	Hunger float64 `json:"hunger"`
	Energy float64 `json:"energy"` // fatigue pressure: 1 = exhausted
	Safety float64 `json:"safety"`
	Social float64 `json:"social"`
}

// NeedsDecayParams are the externally supplied decay rates, all per sim-hour.
type NeedsDecayParams struct {
	HungerRate    float64 // base hunger growth
	EnergyRate    float64 // fatigue accumulation
	IsolationRate float64 // social pressure growth while isolated
	ThreatRate    float64 // safety pressure growth per unit of ambient threat
	SafetyRelax   float64 // safety pressure relief when no threat is present
}

// Decay advances need pressures by dtHours of simulated time. threat is the
// ambient threat level at the agent's position in [0, 1]; isolated reports
// whether the agent had no neighbors within social range this tick.
//
// Hunger grows faster in rested agents (a working metabolism), following
// hunger += rate · dt · (2 − energyPressure).
func (n *Needs) Decay(dtHours float64, threat float64, isolated bool, p NeedsDecayParams) {
	n.Hunger = Clamp01(n.Hunger + p.HungerRate*dtHours*(2-n.Energy))
	n.Energy = Clamp01(n.Energy + p.EnergyRate*dtHours)

	if isolated {
		n.Social = Clamp01(n.Social + p.IsolationRate*dtHours)
	}

	if threat > 0 {
		n.Safety = Clamp01(n.Safety + threat*p.ThreatRate*dtHours)
	} else {
		n.Safety = Clamp01(n.Safety - p.SafetyRelax*dtHours)
	}
}

// Relieve reduces a single pressure by amount, clamped at fully satisfied.
func (n *Needs) Relieve(target *float64, amount float64) {
	*target = Clamp01(*target - amount)
}

// Urgency returns the overall pressure level, weighting survival-critical
// needs more heavily.
func (n *Needs) Urgency() float64 {
	return Clamp01((n.Hunger*4 + n.Safety*3 + n.Energy*2 + n.Social*1) / 10)
}
