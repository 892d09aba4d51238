// Spawner creates agents with population-sampled personalities. Deterministic
// per seed: the same seed always produces the same population.
package agent

import (
	"fmt"

	"github.com/aventine/socius/internal/entropy"
)

// Spawner produces new agents for a run.
type Spawner struct {
	src  *entropy.Source
	dist PopulationDistribution
}

// NewSpawner creates a spawner with its own entropy stream.
func NewSpawner(seed int64, dist PopulationDistribution) *Spawner {
	return &Spawner{src: entropy.NewSource(seed).Fork(7919), dist: dist}
}

var nameHeads = []string{
	"Al", "Bren", "Cor", "Dess", "El", "Fen", "Gar", "Hest", "Is", "Jor",
	"Kel", "Lor", "Mira", "Nol", "Ost", "Pell", "Quin", "Ros", "Sel", "Tam",
	"Ul", "Ver", "Wyn", "Yel", "Zan",
}

var nameTails = []string{
	"an", "ric", "wen", "eth", "ia", "or", "ys", "mund", "la", "den",
	"ira", "ost", "une", "ell", "ar",
}

// SpawnInto creates count agents scattered over the given extent and adds
// them to the store.
func (sp *Spawner) SpawnInto(store *Store, count int, extent float64, tick uint64) []*Agent {
	out := make([]*Agent, 0, count)
	for i := 0; i < count; i++ {
		a := sp.newAgent(extent, tick)
		store.Spawn(a)
		out = append(out, a)
	}
	return out
}

func (sp *Spawner) newAgent(extent float64, tick uint64) *Agent {
	p := sp.dist.Sample(sp.src)

	a := &Agent{
		Name: sp.name(),
		Position: Position{
			X: sp.src.Float() * extent,
			Y: sp.src.Float() * extent,
		},
		Needs: Needs{
			Hunger: sp.src.Float() * 0.3,
			Energy: sp.src.Float() * 0.3,
			Safety: sp.src.Float() * 0.2,
			Social: sp.src.Float() * 0.4,
		},
		Personality: p,
		Emotion:     p.Baseline(),
		Weights:     WeightsForPersonality(p),
		SimRate:     1.0,
		BornTick:    tick,
		Alive:       true,
	}
	a.Modulators = DeriveModulators(a.Personality, a.Stress, a.Needs)
	return a
}

func (sp *Spawner) name() string {
	head := nameHeads[sp.src.Intn(len(nameHeads))]
	tail := nameTails[sp.src.Intn(len(nameTails))]
	if sp.src.Chance(0.15) {
		return fmt.Sprintf("%s%s %s%s",
			head, tail,
			nameHeads[sp.src.Intn(len(nameHeads))],
			nameTails[sp.src.Intn(len(nameTails))])
	}
	return head + tail
}
