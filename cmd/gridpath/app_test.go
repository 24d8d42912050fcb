package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/gridpath/internal/config"
)

const sceneHeader = `
grid:
  cell_size: {x: 1, y: 1}
  end: {x: 4, y: 4}
  walkable_layers: [{layer: 1, cost: 1}]
  non_walkable_layers: [2]
  match_any: true
colliders:
  - id: floor
    layer: 1
    tag: floor
    box: {min: {x: -0.5, y: -0.5}, max: {x: 4.5, y: 4.5}}
`

const sceneWall = `
  - id: wall
    layer: 2
    tag: wall
    box: {min: {x: 1.6, y: -0.5}, max: {x: 2.4, y: 3.4}}
`

func writeScene(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("writing scene: %v", err)
	}
}

func sceneApp(t *testing.T) (*app, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "arena.yaml")
	writeScene(t, path, sceneHeader+sceneWall)

	cfg := config.Default()
	cfg.Source.Scene = path
	a, err := newApp(cfg)
	if err != nil {
		t.Fatalf("newApp() error = %v", err)
	}
	t.Cleanup(a.Close)
	return a, path
}

func TestNewAppScene(t *testing.T) {
	a, _ := sceneApp(t)

	if got := a.world.DefaultName(); got != "arena" {
		t.Errorf("map name = %q, want arena", got)
	}
	m := a.Map()
	if m.TilesX() != 5 || m.TilesY() != 5 {
		t.Fatalf("tiles = %dx%d, want 5x5", m.TilesX(), m.TilesY())
	}
	if got := m.WalkableCount(); got != 21 {
		t.Errorf("walkable = %d, want 21", got)
	}
}

func TestNewAppNoSource(t *testing.T) {
	if _, err := newApp(config.Default()); !errors.Is(err, errNoSource) {
		t.Fatalf("newApp() error = %v, want errNoSource", err)
	}
}

func TestAppReload(t *testing.T) {
	a, path := sceneApp(t)

	writeScene(t, path, sceneHeader)
	if err := a.reload(); err != nil {
		t.Fatalf("reload() error = %v", err)
	}
	if got := a.Map().WalkableCount(); got != 25 {
		t.Errorf("walkable after reload = %d, want 25", got)
	}
}

func TestCmdPath(t *testing.T) {
	a, _ := sceneApp(t)

	if err := cmdPath(a, []string{"0", "0", "4", "0"}); err != nil {
		t.Fatalf("cmdPath() error = %v", err)
	}
	if err := cmdPath(a, []string{"0", "0"}); err == nil {
		t.Error("cmdPath accepted two coordinates")
	}
	if err := cmdPath(a, []string{"0", "0", "x", "0"}); err == nil {
		t.Error("cmdPath accepted a non-numeric coordinate")
	}
}
