// StressLevel separates fast-moving acute stress from slowly accumulating
// chronic (allostatic) load. The phase is a derived classification with
// hysteresis, never a source of truth.
package agent

// StressPhase classifies the agent's allostatic condition.
type StressPhase uint8

const (
	// Homeostasis: normal regulation.
	Homeostasis StressPhase = iota
	// Allostasis: sustained load, regulation running hot.
	Allostasis
	// PostTraumatic: entered by traumatic events, exits only when chronic
	// load drops below the exit threshold.
	PostTraumatic
)

// String returns the phase name for logs and the inspection API.
func (p StressPhase) String() string {
	switch p {
	case Allostasis:
		return "allostasis"
	case PostTraumatic:
		return "post_traumatic"
	default:
		return "homeostasis"
	}
}

// StressLevel holds the two stress scalars and the derived phase.
type StressLevel struct {
	Acute   float64     `json:"acute_stress"`
	Chronic float64     `json:"chronic_load"`
	Phase   StressPhase `json:"phase"`
}

// StressParams are the externally supplied stress dynamics constants.
type StressParams struct {
	EnterThreshold float64 // chronic load that enters Allostasis (0.7)
	ExitThreshold  float64 // chronic load that returns to Homeostasis (0.5)
	AcuteDecay     float64 // acute relief per sim-hour
	ChronicGain    float64 // chronic accumulation per unit acute per sim-hour
	ChronicDecay   float64 // chronic relief per sim-hour while calm
}

// AddAcute raises acute stress and feeds the update path.
func (s *StressLevel) AddAcute(amount float64, p StressParams) {
	s.Acute = Clamp01(s.Acute + amount)
	s.updatePhase(p)
}

// MarkTrauma forces the post-traumatic phase. Recovery is only via Decay
// pulling chronic load under the exit threshold.
func (s *StressLevel) MarkTrauma(intensity float64, p StressParams) {
	s.Acute = Clamp01(s.Acute + intensity)
	s.Chronic = Clamp01(s.Chronic + intensity*0.5)
	s.Phase = PostTraumatic
}

// Decay advances stress dynamics by dtHours: acute bleeds off, chronic load
// integrates whatever acute stress remains and otherwise relaxes.
func (s *StressLevel) Decay(dtHours float64, p StressParams) {
	if s.Acute > 0.3 {
		s.Chronic = Clamp01(s.Chronic + s.Acute*p.ChronicGain*dtHours)
	} else {
		s.Chronic = Clamp01(s.Chronic - p.ChronicDecay*dtHours)
	}
	s.Acute = Clamp01(s.Acute - p.AcuteDecay*dtHours)
	s.updatePhase(p)
}

// updatePhase applies the hysteretic classification. Crossing the enter
// threshold flips into Allostasis; only dropping below the lower exit
// threshold flips back, so the phase cannot oscillate around one boundary.
func (s *StressLevel) updatePhase(p StressParams) {
	switch s.Phase {
	case Homeostasis:
		if s.Chronic >= p.EnterThreshold {
			s.Phase = Allostasis
		}
	case Allostasis, PostTraumatic:
		if s.Chronic < p.ExitThreshold {
			s.Phase = Homeostasis
		}
	}
}
