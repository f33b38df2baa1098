package path

import (
	"fmt"

	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
)

// Kind records why a waypoint is in the plan.
type Kind int

const (
	// KindStart is the literal start pose that anchors every plan.
	KindStart Kind = iota
	// KindConnector bridges the start pose to the first tile waypoint.
	KindConnector
	// KindTile is derived from a visited tile.
	KindTile
	// KindTurn is an intermediate turn-in-place heading at a reversal.
	KindTurn
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "start"
	case KindConnector:
		return "connector"
	case KindTile:
		return "tile"
	case KindTurn:
		return "turn"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	for k := KindStart; k <= KindTurn; k++ {
		if k.String() == s {
			return k, nil
		}
	}
	return KindStart, fmt.Errorf("unknown waypoint kind %q", s)
}

// Waypoint is one pose the path follower must reach, in order.
type Waypoint struct {
	geom.Pose
	// Yaw is the heading encoded in Orientation.
	Yaw  float64
	Kind Kind
	// Tile is the source tile for KindTile and KindTurn waypoints.
	Tile grid.Tile
}

func (w Waypoint) String() string {
	return fmt.Sprintf("%s (%.3f,%.3f) yaw=%.3f", w.Kind, w.Position.X, w.Position.Y, w.Yaw)
}

// CountKind returns how many waypoints in wps have kind k.
func CountKind(wps []Waypoint, k Kind) int {
	n := 0
	for _, w := range wps {
		if w.Kind == k {
			n++
		}
	}
	return n
}
