// Package coverage defines the coverage-order capability and the strategies
// that produce a tile visit order from a coarse grid.
package coverage

import (
	"errors"
	"sort"
	"sync"

	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

var (
	// ErrStartOutOfBounds is returned when the start tile is outside the grid.
	ErrStartOutOfBounds = errors.New("start tile outside grid")
	// ErrStartOccupied is returned when the start tile is occupied.
	ErrStartOccupied = errors.New("start tile occupied")
)

// Visit is a strategy's output: the tiles in visiting order and the turn
// senses for the reversals in that order, oldest first. The slice is a
// stack with the most recent decision on top, ready for path.Composer.
type Visit struct {
	Tiles []grid.Tile
	Turns []path.TurnDirection
}

// Strategy abstracts the coverage-order algorithm so the composer never
// depends on how the visit order was produced.
type Strategy interface {
	// Name identifies the strategy in configuration.
	Name() string
	// Plan returns a connected visit order over the free tiles of g
	// reachable from start.
	Plan(g *grid.Grid, start grid.Tile) (Visit, error)
}

// Registry holds strategies by name.
type Registry struct {
	mu         sync.RWMutex
	strategies map[string]Strategy
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// DefaultRegistry returns a registry holding the built-in strategies.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewBoustrophedon())
	return r
}

// Register adds s, replacing any strategy with the same name.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Lookup returns the strategy registered under name.
func (r *Registry) Lookup(name string) (Strategy, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.strategies[name]
	return s, ok
}

// Names returns the registered strategy names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func checkStart(g *grid.Grid, start grid.Tile) error {
	if !g.InBounds(start) {
		return ErrStartOutOfBounds
	}
	if g.Occupied[start.Y][start.X] {
		return ErrStartOccupied
	}
	return nil
}
