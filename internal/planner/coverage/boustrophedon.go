package coverage

import (
	"fmt"

	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// BoustrophedonName is the registry key of the boustrophedon strategy.
const BoustrophedonName = "boustrophedon"

// Boustrophedon sweeps rows back and forth. At the end of a row it steps one
// tile vertically and reverses; when boxed in it walks the shortest free
// route to the nearest unvisited tile.
//
// A turn sense is recorded wherever the visit order doubles back on its last
// step, as when a reroute leaves a dead end. Row ends are two quarter turns
// and record nothing. The sense is chosen so the intermediate heading of the
// turn-in-place faces the rows still to be swept (or, for a vertical
// reversal, the current sweep side).
type Boustrophedon struct {
	// SweepDown steps to lower rows between sweeps instead of higher ones.
	SweepDown bool
}

// NewBoustrophedon returns an upward-sweeping strategy.
func NewBoustrophedon() *Boustrophedon {
	return &Boustrophedon{}
}

func (b *Boustrophedon) Name() string { return BoustrophedonName }

// Plan visits every free tile reachable from start.
func (b *Boustrophedon) Plan(g *grid.Grid, start grid.Tile) (Visit, error) {
	if err := checkStart(g, start); err != nil {
		return Visit{}, fmt.Errorf("%s: %w (%s)", b.Name(), err, start)
	}

	w := newWalker(g, start)
	w.vdir = 1
	if b.SweepDown {
		w.vdir = -1
	}
	rowTurns, reroutes := 0, 0

	for {
		w.sweep()

		if next := w.cur.Add(0, w.vdir); w.open(next) {
			w.step(next)
			w.hdir = -w.hdir
			rowTurns++
			continue
		}

		route := w.routeToUnvisited()
		if route == nil {
			break
		}
		reroutes++
		for _, t := range route {
			w.step(t)
		}
		// Prefer the side that still has work.
		if !w.open(w.cur.Add(w.hdir, 0)) && w.open(w.cur.Add(-w.hdir, 0)) {
			w.hdir = -w.hdir
		}
	}

	diagf("%s: %d tiles visited (%d free), %d row turns, %d reroutes, %d reversals",
		b.Name(), w.count, g.FreeCount(), rowTurns, reroutes, len(w.turns))
	return Visit{Tiles: w.tiles, Turns: w.turns}, nil
}

// reversalSense picks the turn sense for doubling back onto the unit step
// (dx, dy). The composer rotates through the new heading offset by -π/2 for
// clockwise and +π/2 for counter-clockwise; the sense returned makes that
// intermediate heading point along vdir for horizontal reversals and along
// hdir for vertical ones.
func reversalSense(dx, dy, hdir, vdir int) path.TurnDirection {
	if dx != 0 {
		if dx*vdir < 0 {
			return path.Clockwise
		}
		return path.CounterClockwise
	}
	if dy*hdir > 0 {
		return path.Clockwise
	}
	return path.CounterClockwise
}

type walker struct {
	g       *grid.Grid
	visited [][]bool
	cur     grid.Tile
	tiles   []grid.Tile
	turns   []path.TurnDirection
	count   int

	hdir, vdir int
	// lastDX, lastDY is the previous unit step; zero before the first move.
	lastDX, lastDY int
}

func newWalker(g *grid.Grid, start grid.Tile) *walker {
	visited := make([][]bool, g.Rows())
	for i := range visited {
		visited[i] = make([]bool, g.Cols())
	}
	w := &walker{g: g, visited: visited, hdir: 1}
	w.visited[start.Y][start.X] = true
	w.count = 1
	w.cur = start
	w.tiles = append(w.tiles, start)
	return w
}

// open reports whether t is free and not yet visited.
func (w *walker) open(t grid.Tile) bool {
	return w.g.IsFree(t) && !w.visited[t.Y][t.X]
}

// step moves to the 4-neighbour t, recording a turn sense when the move
// reverses the previous one.
func (w *walker) step(t grid.Tile) {
	dx, dy := t.X-w.cur.X, t.Y-w.cur.Y
	if (dx != 0 || dy != 0) && dx == -w.lastDX && dy == -w.lastDY {
		sense := reversalSense(dx, dy, w.hdir, w.vdir)
		tracef("reversal at %s towards %s: %s", w.cur, t, sense)
		w.turns = append(w.turns, sense)
	}
	w.lastDX, w.lastDY = dx, dy

	if !w.visited[t.Y][t.X] {
		w.visited[t.Y][t.X] = true
		w.count++
	}
	w.cur = t
	w.tiles = append(w.tiles, t)
}

func (w *walker) sweep() {
	for next := w.cur.Add(w.hdir, 0); w.open(next); next = w.cur.Add(w.hdir, 0) {
		w.step(next)
	}
}

// routeToUnvisited returns the shortest 4-connected route, excluding the
// current tile, to the nearest unvisited free tile, or nil if none remains.
func (w *walker) routeToUnvisited() []grid.Tile {
	rows, cols := w.g.Rows(), w.g.Cols()
	prev := make([]int, rows*cols)
	for i := range prev {
		prev[i] = -1
	}
	index := func(t grid.Tile) int { return t.Y*cols + t.X }

	origin := index(w.cur)
	prev[origin] = origin
	queue := []grid.Tile{w.cur}
	for len(queue) > 0 {
		t := queue[0]
		queue = queue[1:]
		if !w.visited[t.Y][t.X] {
			var route []grid.Tile
			for i := index(t); i != origin; i = prev[i] {
				route = append(route, grid.Tile{X: i % cols, Y: i / cols})
			}
			for l, r := 0, len(route)-1; l < r; l, r = l+1, r-1 {
				route[l], route[r] = route[r], route[l]
			}
			return route
		}
		for _, n := range w.g.Neighbors4(t) {
			if prev[index(n)] == -1 {
				prev[index(n)] = index(t)
				queue = append(queue, n)
			}
		}
	}
	return nil
}
