package grid

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/occupancy"
)

// ErrInvalidMap is returned when the map cannot be down-sampled. Callers
// must abort the planning request.
var ErrInvalidMap = errors.New("invalid map")

// DefaultCoverageCost is the cost above which a fine cell blocks its tile.
const DefaultCoverageCost uint8 = 65

// NodeSize returns the number of fine cells per tile edge. It is never less
// than one, so a tile finer than the map still makes progress.
func NodeSize(tileEdge, resolution float64) int {
	n := int(math.Ceil(tileEdge / resolution))
	if n < 1 {
		return 1
	}
	return n
}

// Build down-samples m into tiles of edge tileEdge (metres). A tile is
// occupied iff some fine cell in its footprint, clipped to the map, costs
// more than threshold. The start pose is rescaled into tile coordinates.
func Build(m occupancy.Costmap, tileEdge float64, start geom.Pose, threshold uint8) (*Result, error) {
	resolution := m.Resolution()
	if resolution <= 0 || math.IsNaN(resolution) {
		return nil, fmt.Errorf("%w: resolution must be positive, got %f", ErrInvalidMap, resolution)
	}
	if tileEdge <= 0 || math.IsNaN(tileEdge) {
		return nil, fmt.Errorf("%w: tile edge must be positive, got %f", ErrInvalidMap, tileEdge)
	}

	nodeSize := NodeSize(tileEdge, resolution)
	nRows := m.SizeInCellsY()
	nCols := m.SizeInCellsX()
	diagf("n_rows: %d, n_cols: %d, node_size: %d", nRows, nCols, nodeSize)

	if nRows <= 0 || nCols <= 0 {
		opsf("refusing to build grid from empty map (%dx%d)", nCols, nRows)
		return nil, fmt.Errorf("%w: map has %d rows and %d columns", ErrInvalidMap, nRows, nCols)
	}
	data := m.Data()
	if len(data) < nRows*nCols {
		return nil, fmt.Errorf("%w: cost array holds %d cells, want %d", ErrInvalidMap, len(data), nRows*nCols)
	}

	ox, oy := m.MapToWorld(0, 0)
	scale := Scale{TileSize: float64(nodeSize) * resolution}
	scale.Origin.X, scale.Origin.Y = ox, oy

	res := &Result{
		Scale:    scale,
		NodeSize: nodeSize,
		Start: Tile{
			X: scaleStart(start.Position.X, ox, scale.TileSize, nCols),
			Y: scaleStart(start.Position.Y, oy, scale.TileSize, nRows),
		},
		StartYaw: geom.RotationAngle(start.Orientation),
	}

	g := &Grid{Occupied: make([][]bool, 0, ceilDiv(nRows, nodeSize))}
	for iy := 0; iy < nRows; iy += nodeSize {
		row := make([]bool, 0, ceilDiv(nCols, nodeSize))
		for ix := 0; ix < nCols; ix += nodeSize {
			occ := tileOccupied(data, nRows, nCols, ix, iy, nodeSize, threshold)
			if occ {
				tracef("tile (%d,%d) occupied", ix/nodeSize, iy/nodeSize)
			}
			row = append(row, occ)
		}
		g.Occupied = append(g.Occupied, row)
	}
	res.Grid = g

	diagf("grid %dx%d tiles, tile_size=%.3f, origin=(%.3f,%.3f), start=%s yaw=%.3f, occupied=%d",
		g.Cols(), g.Rows(), scale.TileSize, ox, oy, res.Start, res.StartYaw, g.OccupiedCount())
	return res, nil
}

// tileOccupied scans the footprint of the tile whose first fine cell is
// (ix, iy) and stops at the first cell above threshold.
func tileOccupied(data []uint8, nRows, nCols, ix, iy, nodeSize int, threshold uint8) bool {
	for r := 0; r < nodeSize && iy+r < nRows; r++ {
		base := (iy + r) * nCols
		for c := 0; c < nodeSize && ix+c < nCols; c++ {
			if data[base+ix+c] > threshold {
				return true
			}
		}
	}
	return false
}

// scaleStart maps a world coordinate onto a tile index, clamped to
// [0, floor(cells/tileSize)].
func scaleStart(world, origin, tileSize float64, cells int) int {
	v := (world - origin) / tileSize
	hi := math.Floor(float64(cells) / tileSize)
	if v < 0 || math.IsNaN(v) {
		v = 0
	}
	if v > hi {
		v = hi
	}
	return int(v)
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }
