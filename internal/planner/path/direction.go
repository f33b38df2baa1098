package path

import (
	"errors"
	"fmt"
	"math"

	"github.com/banshee-data/coverage.planner/internal/planner/grid"
)

// ErrObliqueStep is returned when two consecutive tiles differ on both axes.
// Headings are only defined for axis-aligned travel.
var ErrObliqueStep = errors.New("oblique step between tiles")

// Direction is the axis-aligned direction of travel between two tiles.
type Direction int

const (
	DirNone Direction = iota
	DirRight
	DirUp
	DirLeft
	DirDown
)

var directionNames = [...]string{
	DirNone:  "none",
	DirRight: "right",
	DirUp:    "up",
	DirLeft:  "left",
	DirDown:  "down",
}

var directionAngles = [...]float64{
	DirRight: 0,
	DirUp:    math.Pi / 2,
	DirLeft:  math.Pi,
	DirDown:  math.Pi * 1.5,
}

var directionSteps = [...][2]int{
	DirNone:  {0, 0},
	DirRight: {1, 0},
	DirUp:    {0, 1},
	DirLeft:  {-1, 0},
	DirDown:  {0, -1},
}

func (d Direction) String() string {
	if d < DirNone || d > DirDown {
		return fmt.Sprintf("Direction(%d)", int(d))
	}
	return directionNames[d]
}

// Angle returns the heading for d. ok is false for DirNone, which keeps
// whatever heading was assigned before.
func (d Direction) Angle() (angle float64, ok bool) {
	if d <= DirNone || d > DirDown {
		return 0, false
	}
	return directionAngles[d], true
}

// Step returns the unit (dx, dy) for d.
func (d Direction) Step() (dx, dy int) {
	if d < DirNone || d > DirDown {
		return 0, 0
	}
	s := directionSteps[d]
	return s[0], s[1]
}

// Code returns the dx + 2*dy key of d (right 1, up 2, left -1, down -2,
// none 0).
func (d Direction) Code() int {
	dx, dy := d.Step()
	return dx + 2*dy
}

// Opposite returns the reverse of d. DirNone is its own opposite.
func (d Direction) Opposite() Direction {
	switch d {
	case DirRight:
		return DirLeft
	case DirLeft:
		return DirRight
	case DirUp:
		return DirDown
	case DirDown:
		return DirUp
	}
	return DirNone
}

// DirectionBetween returns the direction of travel from a to b. Steps longer
// than one tile along a single axis are accepted; adjacency is not checked.
func DirectionBetween(a, b grid.Tile) (Direction, error) {
	dx, dy := sign(b.X-a.X), sign(b.Y-a.Y)
	switch {
	case dx == 0 && dy == 0:
		return DirNone, nil
	case dx != 0 && dy != 0:
		return DirNone, fmt.Errorf("%w: %s -> %s", ErrObliqueStep, a, b)
	case dx > 0:
		return DirRight, nil
	case dx < 0:
		return DirLeft, nil
	case dy > 0:
		return DirUp, nil
	default:
		return DirDown, nil
	}
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
