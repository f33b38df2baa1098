// Package monitor renders coverage plans for humans: an interactive echarts
// page, a static PNG, and a small HTTP server exposing stored plans.
package monitor

import (
	"bytes"
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
)

// echartsAssetsPrefix is served by the go-echarts default CDN.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// RenderChart writes an HTML page showing occupied tiles as a scatter and
// the waypoint sequence as a line. g may be nil when only the path is known.
func RenderChart(w io.Writer, title string, g *grid.Grid, scale grid.Scale, waypoints []path.Waypoint) error {
	occupied := make([]opts.ScatterData, 0)
	if g != nil {
		for y := 0; y < g.Rows(); y++ {
			for x := 0; x < g.Cols(); x++ {
				if !g.Occupied[y][x] {
					continue
				}
				c := scale.TileCenter(grid.Tile{X: x, Y: y})
				occupied = append(occupied, opts.ScatterData{Value: []interface{}{c.X, c.Y}})
			}
		}
	}

	route := make([]opts.LineData, 0, len(waypoints))
	turns := make([]opts.ScatterData, 0)
	for i, wp := range waypoints {
		route = append(route, opts.LineData{Value: []interface{}{wp.Position.X, wp.Position.Y}, Name: fmt.Sprintf("%d %s", i, wp.Kind)})
		if wp.Kind == path.KindTurn {
			turns = append(turns, opts.ScatterData{Value: []interface{}{wp.Position.X, wp.Position.Y}})
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Coverage Plan", Theme: "dark", Width: "900px", Height: "900px", AssetsHost: echartsAssetsPrefix}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("waypoints=%d tiles=%d turns=%d occupied=%d",
			len(waypoints), path.CountKind(waypoints, path.KindTile), len(turns), len(occupied))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("occupied", occupied, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))
	scatter.AddSeries("turns", turns, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 12}))

	line := charts.NewLine()
	line.AddSeries("path", route, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(true)}))
	scatter.Overlap(line)

	var buf bytes.Buffer
	if err := scatter.Render(&buf); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}
