package main

import (
	"errors"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/config"
	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/scene"
	"github.com/Faultbox/gridpath/internal/watch"
	"github.com/Faultbox/gridpath/internal/world"
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/gridpath"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/sources/gatsource"
)

var errNoSource = errors.New("no source: set -gat or -scene")

// app is one generated map plus the means to reload it.
type app struct {
	cfg        *config.Config
	engine     *gridpath.Engine
	world      *world.Manager
	sourcePath string
	reload     func() error
}

func newApp(cfg *config.Config) (*app, error) {
	a := &app{cfg: cfg, world: world.NewManager()}

	var (
		src   generator.Classifier
		grid  navgrid.Config
		bind  func(gen *generator.Generator, m *navgrid.Map) func() error
		gsrc  *gatsource.Source
		live  *watch.Source
		err   error
		kind  string
		fixed = cfg.Grid
	)

	switch {
	case cfg.Source.GAT != "":
		kind, a.sourcePath = "gat", cfg.Source.GAT
		gsrc, err = gatsource.Open(a.sourcePath, cfg.Source.GATCellSize)
		if err != nil {
			return nil, err
		}
		grid = gsrc.Config()
		grid.ForceWalkable = append(grid.ForceWalkable, fixed.ForceWalkable...)
		grid.ForceNonWalkable = append(grid.ForceNonWalkable, fixed.ForceNonWalkable...)
		src = gsrc
		bind = func(gen *generator.Generator, m *navgrid.Map) func() error {
			return watch.GATReload(a.sourcePath, gsrc, gen, m)
		}
	case cfg.Source.Scene != "":
		kind, a.sourcePath = "scene", cfg.Source.Scene
		s, err := scene.Load(a.sourcePath)
		if err != nil {
			return nil, err
		}
		built, err := s.Build()
		if err != nil {
			return nil, err
		}
		grid = s.GridConfig(fixed)
		live = watch.NewSource(built)
		src = live
		bind = func(gen *generator.Generator, m *navgrid.Map) func() error {
			return watch.SceneReload(a.sourcePath, live, gen, m)
		}
	default:
		return nil, errNoSource
	}

	a.engine = gridpath.New(src, gridpath.WithDefaults(cfg.Search.Options()))

	name := strings.TrimSuffix(filepath.Base(a.sourcePath), filepath.Ext(a.sourcePath))
	m, err := a.world.Generate(name, a.engine.Generator(), grid)
	if err != nil {
		return nil, err
	}
	a.reload = bind(a.engine.Generator(), m)

	logger.Info("grid ready",
		zap.String("source", kind),
		zap.String("path", a.sourcePath),
		zap.Int("tiles_x", m.TilesX()),
		zap.Int("tiles_y", m.TilesY()),
		zap.Int("walkable", m.WalkableCount()))
	return a, nil
}

// Map returns the generated map.
func (a *app) Map() *navgrid.Map {
	return a.world.Default()
}

func (a *app) Close() {
	for _, name := range a.world.Names() {
		a.world.Remove(name)
	}
}
