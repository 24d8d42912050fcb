// Package world keeps the live maps of a process and moves agents across
// them.
package world

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// ErrUnknownMap is returned for map names that were never added.
var ErrUnknownMap = errors.New("unknown map")

// Manager holds named maps. The first map added becomes the default.
type Manager struct {
	mu      sync.RWMutex
	maps    map[string]*navgrid.Map
	def     string
	loading int
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{maps: make(map[string]*navgrid.Map)}
}

// Add stores m under name, replacing any map with that name.
func (w *Manager) Add(name string, m *navgrid.Map) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.maps[name] = m
	if w.def == "" {
		w.def = name
	}
}

// Generate builds a map with gen and stores it under name.
func (w *Manager) Generate(name string, gen *generator.Generator, cfg navgrid.Config) (*navgrid.Map, error) {
	w.mu.Lock()
	w.loading++
	w.mu.Unlock()
	defer func() {
		w.mu.Lock()
		w.loading--
		w.mu.Unlock()
	}()

	m, err := gen.Generate(cfg)
	if err != nil {
		return nil, fmt.Errorf("generating map %s: %w", name, err)
	}
	w.Add(name, m)
	logger.Named("world").Info("map added", zap.String("name", name), zap.Int("cells", m.Len()))
	return m, nil
}

// Get returns the map stored under name.
func (w *Manager) Get(name string) (*navgrid.Map, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	m, ok := w.maps[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMap, name)
	}
	return m, nil
}

// Default returns the default map, or nil when the manager is empty.
func (w *Manager) Default() *navgrid.Map {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.maps[w.def]
}

// DefaultName returns the name of the default map.
func (w *Manager) DefaultName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.def
}

// SetDefault makes name the default map.
func (w *Manager) SetDefault(name string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.maps[name]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownMap, name)
	}
	w.def = name
	return nil
}

// Remove drops name. Removing the default map promotes the first remaining
// name in sorted order.
func (w *Manager) Remove(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	delete(w.maps, name)
	if w.def != name {
		return
	}
	w.def = ""
	if names := w.sortedNames(); len(names) > 0 {
		w.def = names[0]
	}
}

// Names returns the stored map names in sorted order.
func (w *Manager) Names() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sortedNames()
}

func (w *Manager) sortedNames() []string {
	names := make([]string, 0, len(w.maps))
	for name := range w.maps {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsLoading reports whether a Generate call is in progress.
func (w *Manager) IsLoading() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.loading > 0
}
