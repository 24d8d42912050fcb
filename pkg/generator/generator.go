package generator

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/gridpath/internal/logger"
	"github.com/Faultbox/gridpath/internal/metrics"
	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// ErrNoSource is returned when a Generator has no Classifier.
var ErrNoSource = errors.New("generator: no classification source")

// ForcedPolicy controls whether runtime updates consult the forced override
// lists. Generation always does.
type ForcedPolicy int

const (
	// ForcedRecheck applies the forced lists on every update.
	ForcedRecheck ForcedPolicy = iota
	// ForcedSkip resolves updated cells from the layer and tag rules only.
	// Forced ids present in the hits are ignored.
	ForcedSkip
)

// String returns the policy name.
func (p ForcedPolicy) String() string {
	switch p {
	case ForcedRecheck:
		return "recheck"
	case ForcedSkip:
		return "skip"
	default:
		return "unknown"
	}
}

// Generator builds and patches maps from a classification source.
type Generator struct {
	Source Classifier
	Forced ForcedPolicy
}

// New returns a Generator that rechecks forced overrides on update.
func New(src Classifier) *Generator {
	return &Generator{Source: src}
}

// Generate builds a Map from cfg and classifies every cell once.
// cfg is copied; later changes to it do not affect the Map.
func (g *Generator) Generate(cfg navgrid.Config) (*navgrid.Map, error) {
	if g.Source == nil {
		return nil, ErrNoSource
	}
	start := time.Now()

	m, err := navgrid.NewMap(cfg)
	if err != nil {
		return nil, err
	}

	m.Acquire()
	c := m.ConfigRef()
	r := compileRules(c)
	nodes := m.Nodes()
	var buf []Hit
	for i := range nodes {
		buf = g.classify(c, r, &nodes[i], buf, true)
	}
	walkable := m.WalkableCount()
	m.Release()

	metrics.CellsClassified(len(nodes))
	logger.Named("generator").Info("map generated",
		zap.Int("tiles_x", m.TilesX()),
		zap.Int("tiles_y", m.TilesY()),
		zap.Int("walkable", walkable),
		zap.Bool("use_3d", c.Use3D),
		zap.Duration("took", time.Since(start)))
	return m, nil
}

// classify queries the source at the node position and writes the verdict.
// buf is reused across calls and returned for the next one.
func (g *Generator) classify(cfg *navgrid.Config, r *rules, n *navgrid.Node, buf []Hit, checkForced bool) []Hit {
	buf = g.Source.Classify(buf[:0], n.Position, cfg)
	v := r.resolve(buf, checkForced)
	n.Walkable = v.walkable
	if !v.walkable {
		n.MoveCost = 0
		return buf
	}
	n.MoveCost = v.cost
	n.Position = n.Position.WithAxis(cfg.DepthAxis(), v.depth)
	return buf
}
