// Package emit hands finished waypoint lists to downstream consumers.
//
// An Emitter must be initialised with its sinks before use; publishing on an
// uninitialised emitter is reported and does nothing.
package emit

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
	"github.com/banshee-data/coverage.planner/internal/timeutil"
)

// ErrUninitialized is returned by Publish before Initialize has been called.
var ErrUninitialized = errors.New("planner has not been initialized, call Initialize() before use")

// Plan is one published waypoint list.
type Plan struct {
	ID        string
	Frame     geom.FrameID
	Stamp     time.Time
	Strategy  string
	Waypoints []path.Waypoint
}

// Sink consumes published plans.
type Sink interface {
	PublishPlan(ctx context.Context, plan *Plan) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, plan *Plan) error

func (f SinkFunc) PublishPlan(ctx context.Context, plan *Plan) error { return f(ctx, plan) }

// Emitter fans plans out to its sinks.
type Emitter struct {
	mu          sync.RWMutex
	initialized bool
	sinks       []Sink

	// Clock stamps plans.
	Clock timeutil.Clock
}

// NewEmitter returns an uninitialised emitter.
func NewEmitter() *Emitter {
	return &Emitter{Clock: timeutil.RealClock{}}
}

// Initialize sets the sinks and marks the emitter ready. Calling it again
// replaces the sinks.
func (e *Emitter) Initialize(sinks ...Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sinks = append([]Sink(nil), sinks...)
	e.initialized = true
	diagf("initialized with %d sinks", len(sinks))
}

// Initialized reports whether Initialize has been called.
func (e *Emitter) Initialized() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.initialized
}

// Publish wraps waypoints in a Plan and hands it to every sink. Frame comes
// from the first waypoint. An empty waypoint list publishes nothing and
// returns a nil plan. Every sink is tried; their errors are joined.
func (e *Emitter) Publish(ctx context.Context, waypoints []path.Waypoint, strategy string) (*Plan, error) {
	e.mu.RLock()
	initialized, sinks := e.initialized, e.sinks
	e.mu.RUnlock()

	if !initialized {
		opsf("%v", ErrUninitialized)
		return nil, ErrUninitialized
	}
	if len(waypoints) == 0 {
		opsf("not publishing empty plan")
		return nil, nil
	}

	frame := waypoints[0].Frame
	if frame == "" {
		frame = geom.DefaultFrame
	}
	var clock timeutil.Clock = timeutil.RealClock{}
	if e.Clock != nil {
		clock = e.Clock
	}
	plan := &Plan{
		ID:        uuid.New().String(),
		Frame:     frame,
		Stamp:     clock.Now(),
		Strategy:  strategy,
		Waypoints: append([]path.Waypoint(nil), waypoints...),
	}

	var errs []error
	for i, s := range sinks {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := s.PublishPlan(ctx, plan); err != nil {
			opsf("sink %d failed for plan %s: %v", i, plan.ID, err)
			errs = append(errs, fmt.Errorf("sink %d: %w", i, err))
			continue
		}
		tracef("sink %d accepted plan %s", i, plan.ID)
	}
	diagf("published plan %s with %d waypoints in frame %q", plan.ID, len(plan.Waypoints), plan.Frame)
	return plan, errors.Join(errs...)
}
