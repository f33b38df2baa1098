package monitor

import (
	"bytes"
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/coverage.planner/internal/fsutil"
	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/path"
	"github.com/banshee-data/coverage.planner/internal/planner/storage/sqlite"
	"github.com/banshee-data/coverage.planner/internal/testutil"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func fixture() (*grid.Grid, grid.Scale, []path.Waypoint) {
	g := grid.NewGrid(2, 3)
	g.Occupied[1][2] = true
	scale := grid.Scale{TileSize: 1}
	wps := []path.Waypoint{
		{Pose: geom.NewPose(geom.DefaultFrame, 0.2, 0.1, 0), Kind: path.KindStart},
		{Pose: geom.NewPose(geom.DefaultFrame, 0, 0, 0), Kind: path.KindTile},
		{Pose: geom.NewPose(geom.DefaultFrame, 1, 0, 0), Kind: path.KindTile, Tile: grid.Tile{X: 1}},
		{Pose: geom.NewPose(geom.DefaultFrame, 1, 0, 3.14), Yaw: 3.14, Kind: path.KindTurn, Tile: grid.Tile{X: 1}},
	}
	return g, scale, wps
}

func TestRenderChart(t *testing.T) {
	g, scale, wps := fixture()

	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "test plan", g, scale, wps))
	html := buf.String()
	assert.Contains(t, html, "Coverage Plan")
	assert.Contains(t, html, "test plan")
	assert.Contains(t, html, "waypoints=4 tiles=2 turns=1 occupied=1")
}

func TestRenderChart_NilGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderChart(&buf, "empty", nil, grid.Scale{TileSize: 1}, nil))
	assert.Contains(t, buf.String(), "occupied=0")
}

func TestWritePlotPNG(t *testing.T) {
	g, scale, wps := fixture()

	var buf bytes.Buffer
	require.NoError(t, WritePlotPNG(&buf, "plan", g, scale, wps))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestSavePlot(t *testing.T) {
	g, scale, wps := fixture()
	file := filepath.Join(t.TempDir(), "plots", "plan.png")

	require.NoError(t, SavePlot(fsutil.OSFileSystem{}, file, "plan", g, scale, wps))
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))
}

func TestSavePlot_FormatFromExtension(t *testing.T) {
	g, scale, wps := fixture()
	mem := fsutil.NewMemoryFileSystem()

	require.NoError(t, SavePlot(mem, "/out/plan.svg", "plan", g, scale, wps))
	data, err := mem.ReadFile("/out/plan.svg")
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	err = SavePlot(mem, "/out/plan.bogus", "plan", g, scale, wps)
	assert.Error(t, err)
	assert.False(t, mem.Exists("/out/plan.bogus"))
}

func TestSaveChart(t *testing.T) {
	g, scale, wps := fixture()
	mem := fsutil.NewMemoryFileSystem()

	require.NoError(t, SaveChart(mem, "/charts/plan.html", "saved plan", g, scale, wps))
	data, err := mem.ReadFile("/charts/plan.html")
	require.NoError(t, err)
	assert.Contains(t, string(data), "saved plan")
}

func TestNewPlanJSON(t *testing.T) {
	_, _, wps := fixture()
	got := NewPlanJSON(&emit.Plan{ID: "p", Frame: geom.DefaultFrame, Waypoints: wps})

	require.Len(t, got.Waypoints, 4)
	assert.Equal(t, "map", got.Frame)
	assert.Equal(t, "turn", got.Waypoints[3].Kind)
	assert.Equal(t, 3, got.Waypoints[3].Seq)
	assert.Equal(t, 1, got.Waypoints[2].TileX)
	assert.InDelta(t, 1.0, got.Waypoints[0].QW, 1e-12)
}

func newServerWithStore(t *testing.T) (*WebServer, *sqlite.PlanStore) {
	t.Helper()
	db, err := sqlite.Open(filepath.Join(t.TempDir(), "plans.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewPlanStore(db)
	return NewWebServer(WebServerConfig{Address: "127.0.0.1:0", Store: store}), store
}

func publish(t *testing.T, sinks ...emit.Sink) *emit.Plan {
	t.Helper()
	_, _, wps := fixture()
	e := emit.NewEmitter()
	e.Initialize(sinks...)
	plan, err := e.Publish(context.Background(), wps, "boustrophedon")
	require.NoError(t, err)
	return plan
}

func TestWebServer_Health(t *testing.T) {
	ws := NewWebServer(WebServerConfig{})
	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/health"))

	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var body map[string]string
	testutil.DecodeJSON(t, rec, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestWebServer_ListAndGetPlans(t *testing.T) {
	ws, store := newServerWithStore(t)
	plan := publish(t, store, ws)

	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/plans"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var list []sqlite.PlanSummary
	testutil.DecodeJSON(t, rec, &list)
	require.Len(t, list, 1)
	assert.Equal(t, plan.ID, list[0].ID)
	assert.Equal(t, 4, list[0].WaypointCount)

	rec = testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/plans/"+plan.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	var got PlanJSON
	testutil.DecodeJSON(t, rec, &got)
	assert.Equal(t, plan.ID, got.ID)
	assert.Len(t, got.Waypoints, 4)
}

func TestWebServer_GetFallsBackToStore(t *testing.T) {
	ws, store := newServerWithStore(t)
	plan := publish(t, store)
	ws.PublishPlan(context.Background(), &emit.Plan{ID: "other", Stamp: time.Now()})

	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/plans/"+plan.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
}

func TestWebServer_Errors(t *testing.T) {
	ws, _ := newServerWithStore(t)
	h := ws.Handler()

	tests := []struct {
		name   string
		method string
		target string
		want   int
	}{
		{"unknown plan", http.MethodGet, "/api/plans/nope", http.StatusNotFound},
		{"bad limit", http.MethodGet, "/api/plans?limit=x", http.StatusBadRequest},
		{"wrong method", http.MethodPost, "/api/plans", http.StatusMethodNotAllowed},
		{"no latest chart", http.MethodGet, "/debug/plan", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewTestRecorder()
			h.ServeHTTP(rec, testutil.NewTestRequest(tt.method, tt.target))
			testutil.AssertStatusCode(t, rec.Code, tt.want)
		})
	}
}

func TestWebServer_NoStore(t *testing.T) {
	ws := NewWebServer(WebServerConfig{})
	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/api/plans"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusServiceUnavailable)
}

func TestWebServer_DebugRenderings(t *testing.T) {
	ws := NewWebServer(WebServerConfig{})
	g, scale, _ := fixture()
	ws.SetGrid(g, scale)
	plan := publish(t, ws)

	rec := testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/plan"))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/html"))
	assert.Contains(t, rec.Body.String(), plan.ID)

	rec = testutil.NewTestRecorder()
	ws.Handler().ServeHTTP(rec, testutil.NewTestRequest(http.MethodGet, "/debug/plan.png?id="+plan.ID))
	testutil.AssertStatusCode(t, rec.Code, http.StatusOK)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngMagic))
}

func TestWebServer_StartStopsOnCancel(t *testing.T) {
	ws := NewWebServer(WebServerConfig{Address: "127.0.0.1:0"})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ws.Start(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
