package monitor

import (
	"time"

	"github.com/banshee-data/coverage.planner/internal/planner/emit"
)

// WaypointJSON is the wire form of one waypoint.
type WaypointJSON struct {
	Seq   int     `json:"seq"`
	Kind  string  `json:"kind"`
	Frame string  `json:"frame_id"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Yaw   float64 `json:"yaw"`
	QX    float64 `json:"qx"`
	QY    float64 `json:"qy"`
	QZ    float64 `json:"qz"`
	QW    float64 `json:"qw"`
	TileX int     `json:"tile_x"`
	TileY int     `json:"tile_y"`
}

// PlanJSON is the wire form of a plan.
type PlanJSON struct {
	ID        string         `json:"plan_id"`
	Frame     string         `json:"frame_id"`
	Strategy  string         `json:"strategy"`
	Stamp     time.Time      `json:"stamp"`
	Waypoints []WaypointJSON `json:"waypoints"`
}

// NewPlanJSON converts a plan for encoding.
func NewPlanJSON(p *emit.Plan) PlanJSON {
	out := PlanJSON{
		ID:        p.ID,
		Frame:     string(p.Frame),
		Strategy:  p.Strategy,
		Stamp:     p.Stamp,
		Waypoints: make([]WaypointJSON, len(p.Waypoints)),
	}
	for i, w := range p.Waypoints {
		out.Waypoints[i] = WaypointJSON{
			Seq:   i,
			Kind:  w.Kind.String(),
			Frame: string(w.Frame),
			X:     w.Position.X,
			Y:     w.Position.Y,
			Yaw:   w.Yaw,
			QX:    w.Orientation.Imag,
			QY:    w.Orientation.Jmag,
			QZ:    w.Orientation.Kmag,
			QW:    w.Orientation.Real,
			TileX: w.Tile.X,
			TileY: w.Tile.Y,
		}
	}
	return out
}
