package planner

import (
	"context"
	"errors"
	"fmt"

	"github.com/banshee-data/coverage.planner/internal/config"
	"github.com/banshee-data/coverage.planner/internal/planner/coverage"
	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/occupancy"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
	"github.com/banshee-data/coverage.planner/internal/timeutil"
)

// Options configures a Planner.
type Options struct {
	// TileSize is the coarse tile edge in metres.
	TileSize float64
	// CostThreshold is the highest fine-cell cost a free tile may contain.
	CostThreshold uint8
	Frame         geom.FrameID
	DefaultTurn   path.TurnDirection
	Strategy      coverage.Strategy
}

// DefaultOptions returns 0.5 m tiles, the default coverage cost, the map
// frame and the boustrophedon strategy.
func DefaultOptions() Options {
	return Options{
		TileSize:      0.5,
		CostThreshold: grid.DefaultCoverageCost,
		Frame:         geom.DefaultFrame,
		DefaultTurn:   path.Clockwise,
		Strategy:      coverage.NewBoustrophedon(),
	}
}

// OptionsFromConfig resolves cfg against registry. Configured strategies
// are copies, so the registry's instances are never modified.
func OptionsFromConfig(cfg *config.PlannerConfig, registry *coverage.Registry) (Options, error) {
	name := cfg.GetStrategy()
	s, ok := registry.Lookup(name)
	if !ok {
		return Options{}, fmt.Errorf("unknown strategy %q", name)
	}
	if b, ok := s.(*coverage.Boustrophedon); ok {
		configured := *b
		configured.SweepDown = cfg.GetSweepDown()
		s = &configured
	}
	return Options{
		TileSize:      cfg.GetTileSize(),
		CostThreshold: cfg.GetCoverageCostThreshold(),
		Frame:         cfg.GetFrameID(),
		DefaultTurn:   cfg.GetDefaultTurn(),
		Strategy:      s,
	}, nil
}

// Result is everything one MakePlan call produced.
type Result struct {
	Grid      *grid.Result
	Visit     coverage.Visit
	Waypoints []path.Waypoint
	// Plan is nil when nothing was published.
	Plan *emit.Plan
}

// Planner runs planning requests. It keeps no per-request state, so
// concurrent MakePlan calls are safe.
type Planner struct {
	opts    Options
	emitter *emit.Emitter
	clock   timeutil.Clock
}

// New returns a Planner publishing through emitter. A nil emitter skips
// publication.
func New(opts Options, emitter *emit.Emitter) (*Planner, error) {
	if opts.Strategy == nil {
		return nil, errors.New("planner requires a coverage strategy")
	}
	if opts.TileSize <= 0 {
		return nil, fmt.Errorf("tile size must be positive, got %f", opts.TileSize)
	}
	if opts.Frame == "" {
		opts.Frame = geom.DefaultFrame
	}
	return &Planner{opts: opts, emitter: emitter, clock: timeutil.RealClock{}}, nil
}

// MakePlan plans full coverage of m from start and publishes the waypoints.
// Map errors wrap grid.ErrInvalidMap and abort before any coverage planning.
func (p *Planner) MakePlan(ctx context.Context, m occupancy.Costmap, start geom.Pose) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if start.Frame == "" {
		start.Frame = p.opts.Frame
	}
	began := p.clock.Now()

	gr, err := grid.Build(m, p.opts.TileSize, start, p.opts.CostThreshold)
	if err != nil {
		opsf("grid build failed: %v", err)
		return nil, fmt.Errorf("build grid: %w", err)
	}
	diagf("grid %dx%d tiles, %d occupied, start tile %s yaw %.3f",
		gr.Grid.Cols(), gr.Grid.Rows(), gr.Grid.OccupiedCount(), gr.Start, gr.StartYaw)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	visit, err := p.opts.Strategy.Plan(gr.Grid, gr.Start)
	if err != nil {
		opsf("%s failed from %s: %v", p.opts.Strategy.Name(), gr.Start, err)
		return nil, fmt.Errorf("coverage %s: %w", p.opts.Strategy.Name(), err)
	}
	tracef("visit order: %d tiles, %d turns", len(visit.Tiles), len(visit.Turns))

	composer := path.NewComposer(gr.Scale)
	composer.Frame = p.opts.Frame
	composer.DefaultTurn = p.opts.DefaultTurn
	waypoints, err := composer.Compose(start, visit.Tiles, visit.Turns)
	if err != nil {
		return nil, fmt.Errorf("compose path: %w", err)
	}

	res := &Result{Grid: gr, Visit: visit, Waypoints: waypoints}
	diagf("composed %d waypoints from %d tiles in %s", len(waypoints), len(visit.Tiles), p.clock.Since(began))
	if p.emitter == nil {
		return res, nil
	}
	plan, err := p.emitter.Publish(ctx, waypoints, p.opts.Strategy.Name())
	res.Plan = plan
	if err != nil {
		return res, fmt.Errorf("publish plan: %w", err)
	}
	return res, nil
}
