package monitor

import (
	"fmt"
	"image/color"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// newPathPlot builds a plot of occupied tile centres and the waypoint route.
func newPathPlot(title string, g *grid.Grid, scale grid.Scale, waypoints []path.Waypoint) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "X (m)"
	p.Y.Label.Text = "Y (m)"

	if g != nil && g.OccupiedCount() > 0 {
		pts := make(plotter.XYs, 0, g.OccupiedCount())
		for y := 0; y < g.Rows(); y++ {
			for x := 0; x < g.Cols(); x++ {
				if g.Occupied[y][x] {
					c := scale.TileCenter(grid.Tile{X: x, Y: y})
					pts = append(pts, plotter.XY{X: c.X, Y: c.Y})
				}
			}
		}
		occ, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("occupied scatter: %w", err)
		}
		occ.GlyphStyle.Shape = draw.BoxGlyph{}
		occ.GlyphStyle.Color = color.RGBA{R: 80, G: 80, B: 80, A: 255}
		occ.GlyphStyle.Radius = vg.Points(3)
		p.Add(occ)
		p.Legend.Add("occupied", occ)
	}

	if len(waypoints) > 0 {
		route := make(plotter.XYs, len(waypoints))
		for i, wp := range waypoints {
			route[i] = plotter.XY{X: wp.Position.X, Y: wp.Position.Y}
		}
		line, err := plotter.NewLine(route)
		if err != nil {
			return nil, fmt.Errorf("route line: %w", err)
		}
		line.Color = color.RGBA{R: 31, G: 158, B: 137, A: 255}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("path", line)

		start, err := plotter.NewScatter(route[:1])
		if err != nil {
			return nil, fmt.Errorf("start marker: %w", err)
		}
		start.GlyphStyle.Shape = draw.CircleGlyph{}
		start.GlyphStyle.Color = color.RGBA{R: 220, G: 50, B: 47, A: 255}
		start.GlyphStyle.Radius = vg.Points(4)
		p.Add(start)
		p.Legend.Add("start", start)
	}

	p.Add(plotter.NewGrid())
	p.Legend.Top = true
	p.Legend.Left = false
	p.Legend.XOffs = -10
	p.Legend.YOffs = -10
	return p, nil
}

// WritePlotPNG renders the plan as a PNG to w.
func WritePlotPNG(w io.Writer, title string, g *grid.Grid, scale grid.Scale, waypoints []path.Waypoint) error {
	p, err := newPathPlot(title, g, scale, waypoints)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(8*vg.Inch, 8*vg.Inch, "png")
	if err != nil {
		return fmt.Errorf("png writer: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write plot: %w", err)
	}
	return nil
}
