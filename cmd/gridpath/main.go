// gridpath builds a walkability grid from a GAT file or a collider scene and
// answers path queries on it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/config"
	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/metrics"
	"github.com/Faultbox/gridpath/internal/watch"
	"github.com/Faultbox/gridpath/pkg/math"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "info":
		err = withApp(cfg, func(a *app) error { return cmdInfo(a) })
	case "path":
		err = withApp(cfg, func(a *app) error { return cmdPath(a, rest) })
	case "watch":
		err = withApp(cfg, func(a *app) error { return cmdWatch(a) })
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`gridpath - walkability grids and A* path queries

Usage:
  gridpath [flags] <command> [args]

Commands:
  info                     Show grid size and walkable cell count
  path <x1> <y1> <x2> <y2> Find a path between two in-plane positions
  watch                    Re-classify the grid whenever the source file changes

Flags:
  -config <file>   Config file (default ./gridpath.yaml)
  -gat <file>      GAT walkability file
  -scene <file>    YAML collider scene
  -metrics <addr>  Serve Prometheus metrics, e.g. :9100
  -aggression <n>  Heuristic weight
  -no-diagonal     Only move along the grid axes
  -debug           Enable debug logging

Examples:
  gridpath -gat prontera.gat info
  gridpath -scene arena.yaml path 0 0 12 7
  gridpath -scene arena.yaml -metrics :9100 watch`)
}

func withApp(cfg *config.Config, fn func(*app) error) error {
	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Metrics.Addr != "" {
		serveMetrics(cfg.Metrics)
	}
	return fn(a)
}

func serveMetrics(mc config.MetricsConfig) {
	mux := http.NewServeMux()
	mux.Handle(mc.Path, metrics.Handler())
	srv := &http.Server{Addr: mc.Addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", zap.String("addr", mc.Addr), zap.String("path", mc.Path))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
}

func cmdInfo(a *app) error {
	m := a.Map()
	walkable := m.WalkableCount()

	fmt.Printf("Map:      %s\n", a.world.DefaultName())
	fmt.Printf("Source:   %s\n", a.sourcePath)
	fmt.Printf("Tiles:    %d x %d\n", m.TilesX(), m.TilesY())
	fmt.Printf("Extent:   %v .. %v\n", m.Start(), m.End())
	fmt.Printf("Walkable: %d of %d (%.1f%%)\n", walkable, m.Len(), 100*float64(walkable)/float64(m.Len()))
	return nil
}

func cmdPath(a *app, args []string) error {
	if len(args) != 4 {
		return errors.New("usage: gridpath path <x1> <y1> <x2> <y2>")
	}
	var coords [4]float32
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return fmt.Errorf("coordinate %q: %w", s, err)
		}
		coords[i] = float32(v)
	}

	m := a.Map()
	grid := m.ConfigRef()
	start := grid.WorldPoint(math.Vec2{X: coords[0], Y: coords[1]}, grid.DefaultDepth)
	end := grid.WorldPoint(math.Vec2{X: coords[2], Y: coords[3]}, grid.DefaultDepth)

	p, err := a.engine.RequestPathDefault(m, start, end)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		return err
	}

	res, err := p.Result()
	if err != nil {
		return err
	}
	if !res.Found {
		fmt.Println("No path")
		return nil
	}
	for i, wp := range res.Waypoints {
		fmt.Printf("%4d  %v\n", i, wp)
	}
	fmt.Printf("Cost: %.2f  Waypoints: %d\n", res.Cost, len(res.Waypoints))
	return nil
}

func cmdWatch(a *app) error {
	w, err := watch.New(a.sourcePath, a.cfg.Source.Debounce, a.reload)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := a.Map()
	fmt.Printf("Watching %s (%d walkable cells), Ctrl+C to stop\n", w.Path(), m.WalkableCount())
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-w.Reloaded:
			if err != nil {
				fmt.Fprintf(os.Stderr, "Reload failed: %v\n", err)
				continue
			}
			fmt.Printf("Reloaded: %d walkable cells\n", m.WalkableCount())
		}
	}
}
