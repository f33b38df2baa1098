package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/banshee-data/coverage.planner/internal/planner/coverage"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// DefaultConfigPath is the path to the canonical planner defaults file.
const DefaultConfigPath = "config/planner.defaults.json"

// PlannerConfig is the JSON configuration of the coverage planner. Unset
// fields fall back to the defaults returned by the Get* methods, so partial
// files are safe.
type PlannerConfig struct {
	// Coarse grid
	TileSize              *float64 `json:"tile_size,omitempty"` // metres
	CoverageCostThreshold *int     `json:"coverage_cost_threshold,omitempty"`

	// Path composition
	FrameID     *string `json:"frame_id,omitempty"`
	Strategy    *string `json:"strategy,omitempty"`
	SweepDown   *bool   `json:"sweep_down,omitempty"`
	DefaultTurn *string `json:"default_turn,omitempty"` // "clockwise" or "counterclockwise"

	// Sinks
	DBPath     *string `json:"db_path,omitempty"`
	ListenAddr *string `json:"listen_addr,omitempty"`
}

// LoadPlannerConfig loads a PlannerConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadPlannerConfig(path string) (*PlannerConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &PlannerConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so tests can call it from any package. Panics on failure.
func MustLoadDefaultConfig() *PlannerConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/config/
		"../../../" + DefaultConfigPath, // from internal/planner/*
		"../../../../" + DefaultConfigPath,
	}
	for _, path := range candidates {
		if cfg, err := LoadPlannerConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks the values that are set.
func (c *PlannerConfig) Validate() error {
	if c.TileSize != nil && *c.TileSize <= 0 {
		return fmt.Errorf("tile_size must be positive, got %f", *c.TileSize)
	}
	if c.CoverageCostThreshold != nil {
		if v := *c.CoverageCostThreshold; v < 0 || v > 255 {
			return fmt.Errorf("coverage_cost_threshold must be between 0 and 255, got %d", v)
		}
	}
	if c.FrameID != nil && *c.FrameID == "" {
		return fmt.Errorf("frame_id must not be empty")
	}
	if c.DefaultTurn != nil {
		if _, err := path.ParseTurnDirection(*c.DefaultTurn); err != nil {
			return fmt.Errorf("invalid default_turn: %w", err)
		}
	}
	if c.Strategy != nil {
		if _, ok := coverage.DefaultRegistry().Lookup(*c.Strategy); !ok {
			return fmt.Errorf("unknown strategy %q (known: %v)", *c.Strategy, coverage.DefaultRegistry().Names())
		}
	}
	return nil
}

// GetTileSize returns the tile edge in metres (default 0.5).
func (c *PlannerConfig) GetTileSize() float64 {
	if c.TileSize == nil {
		return 0.5
	}
	return *c.TileSize
}

// GetCoverageCostThreshold returns the cost above which a fine cell marks
// its tile occupied (default grid.DefaultCoverageCost).
func (c *PlannerConfig) GetCoverageCostThreshold() uint8 {
	if c.CoverageCostThreshold == nil {
		return grid.DefaultCoverageCost
	}
	return uint8(*c.CoverageCostThreshold)
}

func (c *PlannerConfig) GetFrameID() geom.FrameID {
	if c.FrameID == nil {
		return geom.DefaultFrame
	}
	return geom.FrameID(*c.FrameID)
}

func (c *PlannerConfig) GetStrategy() string {
	if c.Strategy == nil {
		return coverage.BoustrophedonName
	}
	return *c.Strategy
}

func (c *PlannerConfig) GetSweepDown() bool {
	if c.SweepDown == nil {
		return false
	}
	return *c.SweepDown
}

// GetDefaultTurn returns the turn used when the turn stack is exhausted.
// Validate rejects unparsable values, so this falls back to Clockwise.
func (c *PlannerConfig) GetDefaultTurn() path.TurnDirection {
	if c.DefaultTurn == nil {
		return path.Clockwise
	}
	t, err := path.ParseTurnDirection(*c.DefaultTurn)
	if err != nil {
		return path.Clockwise
	}
	return t
}

func (c *PlannerConfig) GetDBPath() string {
	if c.DBPath == nil {
		return ""
	}
	return *c.DBPath
}

func (c *PlannerConfig) GetListenAddr() string {
	if c.ListenAddr == nil {
		return ""
	}
	return *c.ListenAddr
}
