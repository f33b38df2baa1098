package monitor

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/coverage.planner/internal/fsutil"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// writeArtifact creates file on fsys, including its parent directory, and
// fills it with render.
func writeArtifact(fsys fsutil.FileSystem, file string, render func(io.Writer) error) error {
	if err := fsys.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	f, err := fsys.Create(file)
	if err != nil {
		return fmt.Errorf("create %s: %w", file, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// SaveChart writes the HTML chart of a plan to file.
func SaveChart(fsys fsutil.FileSystem, file, title string, g *grid.Grid, scale grid.Scale, waypoints []path.Waypoint) error {
	return writeArtifact(fsys, file, func(w io.Writer) error {
		return RenderChart(w, title, g, scale, waypoints)
	})
}

// SavePlot writes the plan plot to file. The format follows the extension
// (png, svg, pdf, jpg, ...).
func SavePlot(fsys fsutil.FileSystem, file, title string, g *grid.Grid, scale grid.Scale, waypoints []path.Waypoint) error {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(file), "."))
	p, err := newPathPlot(title, g, scale, waypoints)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, format)
	if err != nil {
		return fmt.Errorf("save plan plot: %w", err)
	}
	return writeArtifact(fsys, file, func(w io.Writer) error {
		if _, err := wt.WriteTo(w); err != nil {
			return fmt.Errorf("write plot: %w", err)
		}
		return nil
	})
}
