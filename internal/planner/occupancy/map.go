// Package occupancy provides the fine-resolution cost map the grid builder
// down-samples.
package occupancy

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r2"
)

// Costmap cell values, matching the costmap_2d convention.
const (
	FreeSpace     uint8 = 0
	Lethal        uint8 = 254
	NoInformation uint8 = 255
)

// Costmap is the read-only view of an occupancy map the grid builder needs.
type Costmap interface {
	SizeInCellsX() int
	SizeInCellsY() int
	// Resolution is the edge length of one cell in metres.
	Resolution() float64
	// Data is the row-major cost array, indexed my*SizeInCellsX()+mx.
	Data() []uint8
	// MapToWorld returns the world coordinate of the centre of cell (mx, my).
	MapToWorld(mx, my int) (wx, wy float64)
}

// Map is an in-memory Costmap.
type Map struct {
	Width  int
	Height int
	// CellSize is the resolution in metres per cell.
	CellSize float64
	// Origin is the world coordinate of the outer corner of cell (0, 0).
	Origin r2.Vec
	Cells  []uint8
}

// NewMap allocates an all-free map.
func NewMap(width, height int, resolution float64, origin r2.Vec) (*Map, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("map dimensions must be non-negative, got %dx%d", width, height)
	}
	if resolution <= 0 {
		return nil, fmt.Errorf("resolution must be positive, got %f", resolution)
	}
	return &Map{
		Width:    width,
		Height:   height,
		CellSize: resolution,
		Origin:   origin,
		Cells:    make([]uint8, width*height),
	}, nil
}

func (m *Map) SizeInCellsX() int   { return m.Width }
func (m *Map) SizeInCellsY() int   { return m.Height }
func (m *Map) Resolution() float64 { return m.CellSize }
func (m *Map) Data() []uint8       { return m.Cells }

// MapToWorld returns the centre of cell (mx, my) in world coordinates.
func (m *Map) MapToWorld(mx, my int) (float64, float64) {
	return m.Origin.X + (float64(mx)+0.5)*m.CellSize,
		m.Origin.Y + (float64(my)+0.5)*m.CellSize
}

// SetCost sets the cost of cell (mx, my). Out-of-range cells are ignored.
func (m *Map) SetCost(mx, my int, cost uint8) {
	if mx < 0 || my < 0 || mx >= m.Width || my >= m.Height {
		return
	}
	m.Cells[my*m.Width+mx] = cost
}

// Cost returns the cost of cell (mx, my), or NoInformation outside the map.
func (m *Map) Cost(mx, my int) uint8 {
	if mx < 0 || my < 0 || mx >= m.Width || my >= m.Height {
		return NoInformation
	}
	return m.Cells[my*m.Width+mx]
}

// FillRect sets every cell in the half-open rectangle [x0,x1)×[y0,y1).
func (m *Map) FillRect(x0, y0, x1, y1 int, cost uint8) {
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			m.SetCost(x, y, cost)
		}
	}
}
