package watch

import (
	"fmt"
	"sync"

	"github.com/Faultbox/gridpath/internal/scene"
	"github.com/Faultbox/gridpath/pkg/formats"
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/sources/gatsource"
)

// Source is a Classifier whose backing source can be replaced while maps
// built from it stay live.
type Source struct {
	mu  sync.RWMutex
	src generator.Classifier
}

// NewSource wraps src.
func NewSource(src generator.Classifier) *Source {
	return &Source{src: src}
}

// Swap replaces the backing source.
func (s *Source) Swap(src generator.Classifier) {
	s.mu.Lock()
	s.src = src
	s.mu.Unlock()
}

// Classify delegates to the current backing source.
func (s *Source) Classify(dst []generator.Hit, pos math.Vec3, cfg *navgrid.Config) []generator.Hit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.src.Classify(dst, pos, cfg)
}

// SceneReload returns a reload function that rebuilds the scene at path into
// src and re-classifies all of m. The map keeps its grid; a changed grid
// section in the scene is ignored until the map is regenerated.
func SceneReload(path string, src *Source, gen *generator.Generator, m *navgrid.Map) func() error {
	return func() error {
		s, err := scene.Load(path)
		if err != nil {
			return err
		}
		built, err := s.Build()
		if err != nil {
			return err
		}
		src.Swap(built)
		return gen.Update(m, generator.WholeMap())
	}
}

// GATReload returns a reload function that re-reads the GAT file at path into
// src and re-classifies all of m. The new file must keep the grid size.
func GATReload(path string, src *gatsource.Source, gen *generator.Generator, m *navgrid.Map) func() error {
	return func() error {
		g, err := formats.ParseGATFile(path)
		if err != nil {
			return err
		}
		if int(g.Width) != m.TilesX() || int(g.Height) != m.TilesY() {
			return fmt.Errorf("%w: %s is %dx%d, map is %dx%d",
				navgrid.ErrInvalidConfig, path, g.Width, g.Height, m.TilesX(), m.TilesY())
		}
		src.Replace(g)
		return gen.Update(m, generator.WholeMap())
	}
}
