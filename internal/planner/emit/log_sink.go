package emit

import (
	"context"

	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// LogSink writes a one-line summary of every plan.
type LogSink struct {
	Logf func(format string, args ...interface{})
}

func (s LogSink) PublishPlan(_ context.Context, plan *Plan) error {
	if s.Logf == nil {
		return nil
	}
	s.Logf("plan %s (%s) frame=%s waypoints=%d tiles=%d turns=%d connectors=%d",
		plan.ID, plan.Strategy, plan.Frame, len(plan.Waypoints),
		path.CountKind(plan.Waypoints, path.KindTile),
		path.CountKind(plan.Waypoints, path.KindTurn),
		path.CountKind(plan.Waypoints, path.KindConnector))
	return nil
}
