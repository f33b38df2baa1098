package monitor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/banshee-data/coverage.planner/internal/httputil"
	"github.com/banshee-data/coverage.planner/internal/monitoring"
	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/grid"
	"github.com/banshee-data/coverage.planner/internal/planner/storage/sqlite"
	"github.com/banshee-data/coverage.planner/internal/version"
)

// PlanSource is the read side of the plan store.
type PlanSource interface {
	Get(ctx context.Context, id string) (*emit.Plan, error)
	List(ctx context.Context, limit int) ([]sqlite.PlanSummary, error)
}

// WebServer serves stored plans and debug renderings. It is also an
// emit.Sink that remembers the most recent plan.
type WebServer struct {
	address string
	store   PlanSource
	server  *http.Server

	mu     sync.RWMutex
	latest *emit.Plan
	grid   *grid.Grid
	scale  grid.Scale
}

var _ emit.Sink = (*WebServer)(nil)

// WebServerConfig contains configuration options for the web server
type WebServerConfig struct {
	Address string
	// Store is optional; without it only the latest plan is served.
	Store PlanSource
}

// NewWebServer creates a new web server with the provided configuration
func NewWebServer(config WebServerConfig) *WebServer {
	ws := &WebServer{
		address: config.Address,
		store:   config.Store,
	}
	ws.server = &http.Server{
		Addr:              ws.address,
		Handler:           ws.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ws
}

// PublishPlan records plan as the latest.
func (ws *WebServer) PublishPlan(_ context.Context, plan *emit.Plan) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.latest = plan
	return nil
}

// SetGrid sets the tile grid drawn behind rendered plans.
func (ws *WebServer) SetGrid(g *grid.Grid, scale grid.Scale) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.grid = g
	ws.scale = scale
}

// Start serves until ctx is cancelled.
func (ws *WebServer) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		monitoring.Logf("Starting HTTP server on %s", ws.address)
		if err := ws.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	monitoring.Logf("shutting down HTTP server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()
	if err := ws.server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
		if err := ws.server.Close(); err != nil {
			monitoring.Logf("HTTP server force close error: %v", err)
		}
	}
	monitoring.Logf("HTTP server routine stopped")
	return nil
}

// Handler returns the routes without starting a listener.
func (ws *WebServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", ws.handleHealth)
	mux.HandleFunc("/api/plans", ws.handlePlans)
	mux.HandleFunc("/api/plans/{id}", ws.handlePlan)
	mux.HandleFunc("/debug/plan", ws.handlePlanChart)
	mux.HandleFunc("/debug/plan.png", ws.handlePlanPNG)
	return mux
}

func (ws *WebServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
		"git_sha": version.GitSHA,
	})
}

// handlePlans lists stored plans, newest first.
// Query params:
//
//	limit (optional, default 20)
func (ws *WebServer) handlePlans(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	if ws.store == nil {
		httputil.WriteJSONError(w, http.StatusServiceUnavailable, "no plan store configured")
		return
	}
	limit, err := httputil.QueryInt(r, "limit", 20)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusBadRequest, err.Error())
		return
	}
	plans, err := ws.store.List(r.Context(), limit)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list plans: %v", err))
		return
	}
	if plans == nil {
		plans = []sqlite.PlanSummary{}
	}
	httputil.WriteJSON(w, http.StatusOK, plans)
}

func (ws *WebServer) handlePlan(w http.ResponseWriter, r *http.Request) {
	if !httputil.RequireMethod(w, r, http.MethodGet) {
		return
	}
	plan, status, err := ws.lookup(r.Context(), r.PathValue("id"))
	if err != nil {
		httputil.WriteJSONError(w, status, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, NewPlanJSON(plan))
}

func (ws *WebServer) handlePlanChart(w http.ResponseWriter, r *http.Request) {
	plan, status, err := ws.lookup(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		httputil.WriteJSONError(w, status, err.Error())
		return
	}
	g, scale := ws.gridSnapshot()

	var buf bytes.Buffer
	if err := RenderChart(&buf, "Coverage Plan "+plan.ID, g, scale, plan.Waypoints); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteBody(w, "text/html; charset=utf-8", buf.Bytes())
}

func (ws *WebServer) handlePlanPNG(w http.ResponseWriter, r *http.Request) {
	plan, status, err := ws.lookup(r.Context(), r.URL.Query().Get("id"))
	if err != nil {
		httputil.WriteJSONError(w, status, err.Error())
		return
	}
	g, scale := ws.gridSnapshot()

	var buf bytes.Buffer
	if err := WritePlotPNG(&buf, "Coverage Plan "+plan.ID, g, scale, plan.Waypoints); err != nil {
		httputil.WriteJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteBody(w, "image/png", buf.Bytes())
}

// lookup resolves id against the latest plan and then the store. An empty
// id means the latest plan.
func (ws *WebServer) lookup(ctx context.Context, id string) (*emit.Plan, int, error) {
	ws.mu.RLock()
	latest := ws.latest
	ws.mu.RUnlock()

	if id == "" || (latest != nil && latest.ID == id) {
		if latest == nil {
			return nil, http.StatusNotFound, errors.New("no plan published yet")
		}
		return latest, http.StatusOK, nil
	}
	if ws.store == nil {
		return nil, http.StatusNotFound, fmt.Errorf("plan %s not found", id)
	}
	plan, err := ws.store.Get(ctx, id)
	if errors.Is(err, sqlite.ErrPlanNotFound) {
		return nil, http.StatusNotFound, fmt.Errorf("plan %s not found", id)
	}
	if err != nil {
		return nil, http.StatusInternalServerError, fmt.Errorf("get plan: %w", err)
	}
	return plan, http.StatusOK, nil
}

func (ws *WebServer) gridSnapshot() (*grid.Grid, grid.Scale) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	return ws.grid, ws.scale
}

// Close stops the server immediately.
func (ws *WebServer) Close() error {
	return ws.server.Close()
}
