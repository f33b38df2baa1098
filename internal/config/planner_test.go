package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/coverage.planner/internal/planner/coverage"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := &PlannerConfig{}

	if cfg.GetTileSize() != 0.5 {
		t.Errorf("GetTileSize() = %f, want 0.5", cfg.GetTileSize())
	}
	if cfg.GetCoverageCostThreshold() != grid.DefaultCoverageCost {
		t.Errorf("GetCoverageCostThreshold() = %d, want %d", cfg.GetCoverageCostThreshold(), grid.DefaultCoverageCost)
	}
	if cfg.GetFrameID() != geom.DefaultFrame {
		t.Errorf("GetFrameID() = %q, want %q", cfg.GetFrameID(), geom.DefaultFrame)
	}
	if cfg.GetStrategy() != coverage.BoustrophedonName {
		t.Errorf("GetStrategy() = %q", cfg.GetStrategy())
	}
	if cfg.GetDefaultTurn() != path.Clockwise {
		t.Errorf("GetDefaultTurn() = %v, want clockwise", cfg.GetDefaultTurn())
	}
	if cfg.GetSweepDown() || cfg.GetDBPath() != "" || cfg.GetListenAddr() != "" {
		t.Error("expected sinks and sweep_down to be off by default")
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	require.NotNil(t, cfg.TileSize)
	assert.Equal(t, 0.5, cfg.GetTileSize())
	assert.Equal(t, uint8(65), cfg.GetCoverageCostThreshold())
	assert.Equal(t, coverage.BoustrophedonName, cfg.GetStrategy())
}

func TestLoadPlannerConfig(t *testing.T) {
	p := writeConfig(t, "planner.json", `{
  "tile_size": 0.3,
  "coverage_cost_threshold": 100,
  "frame_id": "odom",
  "sweep_down": true,
  "default_turn": "ccw",
  "db_path": "plans.db"
}`)

	cfg, err := LoadPlannerConfig(p)
	require.NoError(t, err)
	assert.Equal(t, 0.3, cfg.GetTileSize())
	assert.Equal(t, uint8(100), cfg.GetCoverageCostThreshold())
	assert.Equal(t, geom.FrameID("odom"), cfg.GetFrameID())
	assert.True(t, cfg.GetSweepDown())
	assert.Equal(t, path.CounterClockwise, cfg.GetDefaultTurn())
	assert.Equal(t, "plans.db", cfg.GetDBPath())
	// Omitted fields keep their defaults.
	assert.Equal(t, coverage.BoustrophedonName, cfg.GetStrategy())
}

func TestLoadPlannerConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "planner.yaml", `{}`, ".json extension"},
		{"bad json", "planner.json", `{`, "parse config JSON"},
		{"zero tile", "planner.json", `{"tile_size": 0}`, "tile_size must be positive"},
		{"threshold range", "planner.json", `{"coverage_cost_threshold": 300}`, "between 0 and 255"},
		{"empty frame", "planner.json", `{"frame_id": ""}`, "frame_id"},
		{"bad turn", "planner.json", `{"default_turn": "sideways"}`, "default_turn"},
		{"unknown strategy", "planner.json", `{"strategy": "spiral"}`, "unknown strategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadPlannerConfig(writeConfig(t, tt.file, tt.body))
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestLoadPlannerConfig_TooLarge(t *testing.T) {
	big := `{"frame_id": "` + strings.Repeat("x", 1024*1024) + `"}`
	_, err := LoadPlannerConfig(writeConfig(t, "big.json", big))
	assert.ErrorContains(t, err, "too large")
}

func TestLoadPlannerConfig_Missing(t *testing.T) {
	_, err := LoadPlannerConfig(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorContains(t, err, "stat config file")
}
