package grid

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Tile is one coarse grid cell. X is the column, Y is the row.
type Tile struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (t Tile) String() string { return fmt.Sprintf("(%d,%d)", t.X, t.Y) }

// Add returns t offset by (dx, dy).
func (t Tile) Add(dx, dy int) Tile { return Tile{X: t.X + dx, Y: t.Y + dy} }

// Grid is the coarse occupancy table, indexed Occupied[iy][ix].
type Grid struct {
	Occupied [][]bool
}

// NewGrid returns an all-free grid of rows×cols tiles.
func NewGrid(rows, cols int) *Grid {
	occ := make([][]bool, rows)
	for i := range occ {
		occ[i] = make([]bool, cols)
	}
	return &Grid{Occupied: occ}
}

// Rows returns the number of tile rows.
func (g *Grid) Rows() int { return len(g.Occupied) }

// Cols returns the number of tile columns.
func (g *Grid) Cols() int {
	if len(g.Occupied) == 0 {
		return 0
	}
	return len(g.Occupied[0])
}

// InBounds reports whether t lies inside the grid.
func (g *Grid) InBounds(t Tile) bool {
	return t.Y >= 0 && t.Y < g.Rows() && t.X >= 0 && t.X < g.Cols()
}

// IsFree reports whether t is inside the grid and not occupied.
func (g *Grid) IsFree(t Tile) bool {
	return g.InBounds(t) && !g.Occupied[t.Y][t.X]
}

// OccupiedCount returns the number of occupied tiles.
func (g *Grid) OccupiedCount() int {
	n := 0
	for _, row := range g.Occupied {
		for _, occ := range row {
			if occ {
				n++
			}
		}
	}
	return n
}

// FreeCount returns the number of free tiles.
func (g *Grid) FreeCount() int {
	return g.Rows()*g.Cols() - g.OccupiedCount()
}

// neighbourOffsets lists the 4-connected steps in right, up, left, down order.
var neighbourOffsets = [4][2]int{{1, 0}, {0, 1}, {-1, 0}, {0, -1}}

// Neighbors4 returns the free 4-connected neighbours of t.
func (g *Grid) Neighbors4(t Tile) []Tile {
	out := make([]Tile, 0, 4)
	for _, o := range neighbourOffsets {
		n := t.Add(o[0], o[1])
		if g.IsFree(n) {
			out = append(out, n)
		}
	}
	return out
}

// Scale converts between tile indices and world coordinates for one
// planning request.
type Scale struct {
	// TileSize is the world length of one tile edge.
	TileSize float64
	// Origin is the world position tile offsets are measured from: the
	// centre of fine cell (0, 0).
	Origin r2.Vec
}

// TileCenter returns the world position of the centre of t.
func (s Scale) TileCenter(t Tile) r2.Vec {
	return r2.Vec{
		X: float64(t.X)*s.TileSize + s.Origin.X + s.TileSize*0.5,
		Y: float64(t.Y)*s.TileSize + s.Origin.Y + s.TileSize*0.5,
	}
}

// TileAt returns the tile containing world position p.
func (s Scale) TileAt(p r2.Vec) Tile {
	return Tile{
		X: int(math.Floor((p.X - s.Origin.X) / s.TileSize)),
		Y: int(math.Floor((p.Y - s.Origin.Y) / s.TileSize)),
	}
}

// Result is everything Build derives from one map.
type Result struct {
	Grid     *Grid
	Scale    Scale
	NodeSize int
	// Start is the start pose expressed as a tile index.
	Start Tile
	// StartYaw is the rotation angle of the start orientation.
	StartYaw float64
}
