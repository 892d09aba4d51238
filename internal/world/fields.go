package world

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/aventine/socius/internal/agent"
)

// Fields are the slow environmental layers: where it is dangerous and where
// food is. Both are smooth noise over (x, y, time), so hotspots drift rather
// than teleport.
type Fields struct {
	threat   opensimplex.Noise
	resource opensimplex.Noise
	scale    float64
	drift    float64 // field time units per sim hour
}

// NewFields creates the environmental layers for a run.
func NewFields(seed int64, scale float64) *Fields {
	if scale <= 0 {
		scale = 24
	}
	return &Fields{
		threat:   opensimplex.NewNormalized(seed + 11),
		resource: opensimplex.NewNormalized(seed + 13),
		scale:    scale,
		drift:    0.02,
	}
}

// Threat samples danger at a point, [0, 1]. Sharpened so most of the plane
// reads as safe with distinct hot pockets.
func (f *Fields) Threat(p agent.Position, simHours float64) float64 {
	v := f.threat.Eval3(p.X/f.scale, p.Y/f.scale, simHours*f.drift)
	return agent.Clamp01((v - 0.55) * 2.2)
}

// Resource samples food availability at a point, [0, 1].
func (f *Fields) Resource(p agent.Position, simHours float64) float64 {
	return agent.Clamp01(f.resource.Eval3(p.X/f.scale, p.Y/f.scale, simHours*f.drift))
}
