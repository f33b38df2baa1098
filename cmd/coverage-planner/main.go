// Command coverage-planner plans a full-coverage path over an occupancy map
// and publishes it to the configured sinks.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/banshee-data/coverage.planner/internal/config"
	"github.com/banshee-data/coverage.planner/internal/fsutil"
	"github.com/banshee-data/coverage.planner/internal/monitoring"
	"github.com/banshee-data/coverage.planner/internal/planner"
	"github.com/banshee-data/coverage.planner/internal/planner/coverage"
	"github.com/banshee-data/coverage.planner/internal/planner/emit"
	"github.com/banshee-data/coverage.planner/internal/planner/geom"
	"github.com/banshee-data/coverage.planner/internal/planner/monitor"
	"github.com/banshee-data/coverage.planner/internal/planner/occupancy"
	"github.com/banshee-data/coverage.planner/internal/planner/storage/sqlite"
	"github.com/banshee-data/coverage.planner/internal/version"
)

const binaryName = "coverage-planner"

type options struct {
	mapPath    string
	configPath string
	startX     float64
	startY     float64
	startYaw   float64
	dbPath     string
	chartPath  string
	plotPath   string
	listen     string
	verbose    bool
	trace      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet(binaryName, flag.ContinueOnError)
	fs.SetOutput(stderr)

	o := &options{}
	fs.StringVar(&o.mapPath, "map", "", "Map descriptor (YAML) to plan over")
	fs.StringVar(&o.configPath, "config", "", "Planner config JSON (default "+config.DefaultConfigPath+" when present)")
	fs.Float64Var(&o.startX, "start-x", 0, "Start X in the map frame (m)")
	fs.Float64Var(&o.startY, "start-y", 0, "Start Y in the map frame (m)")
	fs.Float64Var(&o.startYaw, "start-yaw", 0, "Start heading (rad)")
	fs.StringVar(&o.dbPath, "db", "", "SQLite database for plans (overrides db_path; empty disables)")
	fs.StringVar(&o.chartPath, "chart", "", "Write an HTML chart of the plan to this file")
	fs.StringVar(&o.plotPath, "plot", "", "Write a PNG plot of the plan to this file")
	fs.StringVar(&o.listen, "listen", "", "Serve the plan monitor on this address until interrupted (overrides listen_addr)")
	fs.BoolVar(&o.verbose, "v", false, "Enable planner diagnostic logging")
	fs.BoolVar(&o.trace, "trace", false, "Enable per-tile trace logging")
	fs.BoolVar(&o.version, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if !o.version && o.mapPath == "" {
		return nil, errors.New("-map is required")
	}
	return o, nil
}

// loadConfig reads the explicit -config file or, failing that, the default
// file when it exists. Without either, built-in defaults apply.
func loadConfig(fsys fsutil.FileSystem, path string) (*config.PlannerConfig, error) {
	if path != "" {
		return config.LoadPlannerConfig(path)
	}
	if fsys.Exists(config.DefaultConfigPath) {
		return config.LoadPlannerConfig(config.DefaultConfigPath)
	}
	return &config.PlannerConfig{}, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	return runWith(ctx, fsutil.OSFileSystem{}, args, stdout, stderr)
}

// runWith plans one map, writing chart and plot artifacts through fsys.
func runWith(ctx context.Context, fsys fsutil.FileSystem, args []string, stdout, stderr io.Writer) error {
	o, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if o.version {
		fmt.Fprintln(stdout, version.String(binaryName))
		return nil
	}

	var diag, trace io.Writer
	if o.verbose {
		diag = monitoring.Writer("")
	}
	if o.trace {
		trace = monitoring.Writer("")
	}
	planner.SetLogWriters(monitoring.Writer(""), diag, trace)

	cfg, err := loadConfig(fsys, o.configPath)
	if err != nil {
		return err
	}
	opts, err := planner.OptionsFromConfig(cfg, coverage.DefaultRegistry())
	if err != nil {
		return err
	}

	m, err := occupancy.LoadMap(o.mapPath)
	if err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	monitoring.Logf("loaded map %s: %dx%d cells at %.3f m", o.mapPath, m.Width, m.Height, m.CellSize)

	sinks := []emit.Sink{emit.LogSink{Logf: monitoring.Logf}}

	dbPath := cfg.GetDBPath()
	if o.dbPath != "" {
		dbPath = o.dbPath
	}
	var store *sqlite.PlanStore
	if dbPath != "" {
		db, err := sqlite.Open(dbPath)
		if err != nil {
			return err
		}
		defer db.Close()
		store = sqlite.NewPlanStore(db)
		sinks = append(sinks, store)
	}

	listen := cfg.GetListenAddr()
	if o.listen != "" {
		listen = o.listen
	}
	var ws *monitor.WebServer
	if listen != "" {
		wsCfg := monitor.WebServerConfig{Address: listen}
		if store != nil {
			wsCfg.Store = store
		}
		ws = monitor.NewWebServer(wsCfg)
		sinks = append(sinks, ws)
	}

	emitter := emit.NewEmitter()
	emitter.Initialize(sinks...)
	p, err := planner.New(opts, emitter)
	if err != nil {
		return err
	}

	start := geom.NewPose(opts.Frame, o.startX, o.startY, o.startYaw)
	res, err := p.MakePlan(ctx, m, start)
	if err != nil {
		return err
	}
	if res.Plan != nil {
		fmt.Fprintf(stdout, "plan %s: %d waypoints over %d tiles\n", res.Plan.ID, len(res.Waypoints), len(res.Visit.Tiles))
	}

	title := "Coverage Plan " + filepath.Base(o.mapPath)
	if o.chartPath != "" {
		if err := monitor.SaveChart(fsys, o.chartPath, title, res.Grid.Grid, res.Grid.Scale, res.Waypoints); err != nil {
			return err
		}
	}
	if o.plotPath != "" {
		if err := monitor.SavePlot(fsys, o.plotPath, title, res.Grid.Grid, res.Grid.Scale, res.Waypoints); err != nil {
			return err
		}
	}

	if ws != nil {
		ws.SetGrid(res.Grid.Grid, res.Grid.Scale)
		return ws.Start(ctx)
	}
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Printf("%s: %v", binaryName, err)
		stop()
		os.Exit(1)
	}
}
