// Package world provides the plane the agents live on: a spatial index for
// proximity queries and slow-moving environmental fields for threat and
// resource availability.
package world

import (
	"math"
	"sort"

	"github.com/aventine/socius/internal/agent"
)

// Neighbor is one proximity-query hit.
type Neighbor struct {
	ID       agent.ID
	Distance float64
	Position agent.Position
}

// Grid is a uniform-cell spatial hash, rebuilt from committed positions at
// the top of every tick. Queries between rebuilds therefore see a consistent
// snapshot regardless of what the stages are doing to the agents.
type Grid struct {
	cell  float64
	cells map[cellKey][]entry
}

type cellKey struct{ x, y int }

type entry struct {
	id  agent.ID
	pos agent.Position
}

// NewGrid creates a grid with the given cell size. Cell size should be on
// the order of the largest query radius.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{cell: cellSize, cells: make(map[cellKey][]entry)}
}

// Rebuild reindexes the living population. Despawned agents simply are not
// inserted, which is what makes stale-ID queries naturally empty.
func (g *Grid) Rebuild(agents []*agent.Agent) {
	for k := range g.cells {
		delete(g.cells, k)
	}
	for _, a := range agents {
		if !a.Alive {
			continue
		}
		k := g.keyFor(a.Position)
		g.cells[k] = append(g.cells[k], entry{id: a.ID, pos: a.Position})
	}
}

// Query returns every indexed agent within radius of origin, nearest first,
// excluding the given ID (pass 0 to exclude nobody).
func (g *Grid) Query(origin agent.Position, radius float64, exclude agent.ID) []Neighbor {
	if radius <= 0 {
		return nil
	}
	r2 := radius * radius
	span := int(math.Ceil(radius / g.cell))
	center := g.keyFor(origin)

	var out []Neighbor
	for dx := -span; dx <= span; dx++ {
		for dy := -span; dy <= span; dy++ {
			k := cellKey{center.x + dx, center.y + dy}
			for _, e := range g.cells[k] {
				if e.id == exclude {
					continue
				}
				ddx := e.pos.X - origin.X
				ddy := e.pos.Y - origin.Y
				d2 := ddx*ddx + ddy*ddy
				if d2 > r2 {
					continue
				}
				out = append(out, Neighbor{ID: e.id, Distance: math.Sqrt(d2), Position: e.pos})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func (g *Grid) keyFor(p agent.Position) cellKey {
	return cellKey{
		x: int(math.Floor(p.X / g.cell)),
		y: int(math.Floor(p.Y / g.cell)),
	}
}
