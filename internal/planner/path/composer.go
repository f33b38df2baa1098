package path

import (
	"fmt"

	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
)

// Composer converts tile visit orders into waypoint lists for one map scale.
// It holds configuration only and is safe for concurrent use.
type Composer struct {
	Scale grid.Scale
	// Frame tags every tile-derived waypoint.
	Frame geom.FrameID
	// Tolerance is the per-axis distance under which the start pose counts
	// as already sitting on the first tile waypoint.
	Tolerance float64
	// DefaultTurn resolves reversals once the supplied turns run out.
	DefaultTurn TurnDirection
}

// NewComposer returns a Composer with the map frame, the float32 colocation
// tolerance and clockwise reversals.
func NewComposer(scale grid.Scale) *Composer {
	return &Composer{
		Scale:       scale,
		Frame:       geom.DefaultFrame,
		Tolerance:   geom.ColocationTolerance,
		DefaultTurn: Clockwise,
	}
}

// composeState is the memory of one Compose call.
type composeState struct {
	plan    []Waypoint
	heading float64
	lastDir Direction
	turns   *TurnStack
}

// Compose returns the waypoint list for visiting tiles in order, starting
// from start. An empty tile list yields a nil plan. turns are consumed
// last-in-first-out at each 180° reversal.
//
// Each tile waypoint carries the heading of travel leaving it, so a 90° turn
// is a rotation on arrival at the corner waypoint. Only a reversal adds a
// separate turn-in-place waypoint at the corner.
//
// The result always begins with start itself, followed by a connector pair
// when start is not already on the first tile waypoint.
func (c *Composer) Compose(start geom.Pose, tiles []grid.Tile, turns []TurnDirection) ([]Waypoint, error) {
	diagf("received %d tiles", len(tiles))
	if len(tiles) == 0 {
		opsf("empty tile list, nothing to compose")
		return nil, nil
	}

	st := &composeState{turns: NewTurnStack(turns, c.DefaultTurn)}
	if len(tiles) == 1 {
		st.emit(c.tileWaypoint(tiles[0], 0, KindTile))
	} else if err := c.composeTiles(st, tiles); err != nil {
		return nil, err
	}

	plan := c.prependStart(start, st.plan)
	diagf("plan ready containing %d waypoints (%d from tiles)", len(plan), CountKind(plan, KindTile))
	return plan, nil
}

func (c *Composer) composeTiles(st *composeState, tiles []grid.Tile) error {
	dirs := make([]Direction, len(tiles)-1)
	for i := range dirs {
		d, err := DirectionBetween(tiles[i], tiles[i+1])
		if err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
		dirs[i] = d
	}

	last := len(tiles) - 1
	for i, t := range tiles {
		// Direction leaving this tile; the last tile has no further motion.
		next := DirNone
		if i < last {
			next = dirs[i]
		}
		if i != 0 && i != last && dirs[i-1] == next {
			continue
		}

		if angle, ok := next.Angle(); ok {
			if i > 0 && next == st.lastDir.Opposite() {
				turn := st.turns.Pop()
				mid := geom.NormalizeAngle(angle + turn.Offset())
				tracef("reversal at %s: %s -> %s via %.3f (%s)", t, st.lastDir, next, mid, turn)
				st.emit(c.tileWaypoint(t, mid, KindTurn))
			}
			st.heading = angle
			st.lastDir = next
		}
		st.emit(c.tileWaypoint(t, st.heading, KindTile))
	}
	return nil
}

func (st *composeState) emit(w Waypoint) {
	tracef("emit %s", w)
	st.plan = append(st.plan, w)
}

func (c *Composer) tileWaypoint(t grid.Tile, yaw float64, kind Kind) Waypoint {
	return Waypoint{
		Pose: geom.Pose{
			Frame:       c.Frame,
			Position:    c.Scale.TileCenter(t),
			Orientation: geom.QuaternionFromYaw(yaw),
		},
		Yaw:  yaw,
		Kind: kind,
		Tile: t,
	}
}

// prependStart adds the literal start pose and, when start is away from the
// first waypoint, a rotate-then-translate connector pair.
func (c *Composer) prependStart(start geom.Pose, plan []Waypoint) []Waypoint {
	out := make([]Waypoint, 0, len(plan)+3)
	out = append(out, Waypoint{Pose: start, Yaw: geom.Yaw(start.Orientation), Kind: KindStart})

	first := plan[0]
	if !geom.Colocated(start.Position, first.Position, c.Tolerance) {
		yaw := geom.HeadingTo(start.Position, first.Position)
		out = append(out,
			Waypoint{Pose: start.WithYaw(yaw), Yaw: yaw, Kind: KindConnector},
			Waypoint{Pose: first.Pose.WithYaw(yaw), Yaw: yaw, Kind: KindConnector, Tile: first.Tile},
		)
	}
	return append(out, plan...)
}
