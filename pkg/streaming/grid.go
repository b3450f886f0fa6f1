package streaming

import "github.com/opd-ai/sampcore/pkg/types"

// Grid is a uniform spatial hash keyed by (virtual world, cell x, cell
// y), with a fixed cell size. It is an opt-in broad-phase optimisation
// over the naive O(players × entities) scan; the observable streaming
// contract is unchanged whether or not it is enabled (spec.md §9
// "Streaming scan cost").
//
// A uniform grid is used instead of a quadtree because entity density is
// roughly uniform across a virtual world and cell size never needs to
// adapt: it is fixed to the engine's stream distance, so one cell lookup
// covers the search radius with an 8-neighbour ring instead of a
// recursive descent.
type Grid struct {
	cellSize float64
	cells    map[cellKey][]int
	cellOf   map[int]cellKey
}

type cellKey struct {
	world int32
	x, y  int64
}

// NewGrid creates a grid with the given cell size, expected to match the
// owning engine's stream distance.
func NewGrid(cellSize float64) *Grid {
	if cellSize <= 0 {
		cellSize = 1
	}
	return &Grid{
		cellSize: cellSize,
		cells:    make(map[cellKey][]int),
		cellOf:   make(map[int]cellKey),
	}
}

func (g *Grid) keyFor(world int32, pos types.Vector3) cellKey {
	return cellKey{
		world: world,
		x:     int64(pos.X / g.cellSize),
		y:     int64(pos.Y / g.cellSize),
	}
}

// Update (re)inserts id at its cell for (world, pos), removing it from
// any previous cell first.
func (g *Grid) Update(id int, world int32, pos types.Vector3) {
	g.Remove(id)
	key := g.keyFor(world, pos)
	g.cells[key] = append(g.cells[key], id)
	g.cellOf[id] = key
}

// Remove drops id from the grid entirely.
func (g *Grid) Remove(id int) {
	key, ok := g.cellOf[id]
	if !ok {
		return
	}
	bucket := g.cells[key]
	for i, v := range bucket {
		if v == id {
			g.cells[key] = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(g.cells[key]) == 0 {
		delete(g.cells, key)
	}
	delete(g.cellOf, id)
}

// Query returns every tracked id within the 3x3 block of cells centered
// on (world, center), a superset of everything within radius, plus
// anything tracked under AnyWorld at that same position (entities
// visible from every world are inserted into the AnyWorld partition so
// they still land in a bounded neighbourhood rather than forcing a full
// scan).
func (g *Grid) Query(world int32, center types.Vector3, radius float64) []int {
	var out []int
	for _, w := range [2]int32{world, AnyWorld} {
		key := g.keyFor(w, center)
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				neighbor := cellKey{world: key.world, x: key.x + dx, y: key.y + dy}
				out = append(out, g.cells[neighbor]...)
			}
		}
		if world == AnyWorld {
			break
		}
	}
	return out
}
