package generator

import (
	"github.com/zyedidia/generic/mapset"

	"github.com/Faultbox/gridpath/pkg/navgrid"
)

// rules is a Config's walkability section compiled into lookup sets.
type rules struct {
	walkLayers []navgrid.CostLayer
	layerCost  map[int]float32
	tagCost    map[string]float32

	blockLayers mapset.Set[int]
	blockTags   mapset.Set[string]

	forceBlock   mapset.Set[string]
	forceWalk    []navgrid.ForcedCost
	forceWalkIDs mapset.Set[string]

	matchAny     bool
	pinDepth     bool
	defaultDepth float32
}

func compileRules(cfg *navgrid.Config) *rules {
	r := &rules{
		walkLayers:   cfg.WalkableLayers,
		layerCost:    make(map[int]float32, len(cfg.WalkableLayers)),
		tagCost:      make(map[string]float32, len(cfg.WalkableTags)),
		blockLayers:  mapset.New[int](),
		blockTags:    mapset.New[string](),
		forceBlock:   mapset.New[string](),
		forceWalk:    cfg.ForceWalkable,
		forceWalkIDs: mapset.New[string](),
		matchAny:     cfg.MatchAny,
		pinDepth:     cfg.IgnoreDepth || !cfg.Use3D,
		defaultDepth: cfg.DefaultDepth,
	}
	// First entry wins for duplicated layers, tags and ids.
	for _, l := range cfg.WalkableLayers {
		if _, ok := r.layerCost[l.Layer]; !ok {
			r.layerCost[l.Layer] = l.Cost
		}
	}
	for _, t := range cfg.WalkableTags {
		if _, ok := r.tagCost[t.Tag]; !ok {
			r.tagCost[t.Tag] = t.Cost
		}
	}
	for _, l := range cfg.NonWalkableLayers {
		r.blockLayers.Put(l)
	}
	for _, t := range cfg.NonWalkableTags {
		r.blockTags.Put(t)
	}
	for _, id := range cfg.ForceNonWalkable {
		r.forceBlock.Put(id)
	}
	for _, f := range cfg.ForceWalkable {
		r.forceWalkIDs.Put(f.ID)
	}
	return r
}

// verdict is the classification of one cell.
type verdict struct {
	walkable bool
	cost     float32
	depth    float32
}

// resolve applies the rules to the hits of one cell. The first matching step
// wins: forced blocked, forced walkable, blocked layer/tag, walkable
// layer/tag, then blocked by default.
func (r *rules) resolve(hits []Hit, checkForced bool) verdict {
	if checkForced {
		for _, h := range hits {
			if r.forceBlock.Has(h.ID) {
				return verdict{}
			}
		}
		if r.anyForcedWalkable(hits) {
			// Override list order decides between two forced hits.
			for _, f := range r.forceWalk {
				for _, h := range hits {
					if h.ID == f.ID {
						return r.walkable(f.Cost, h.Depth)
					}
				}
			}
		}
	}

	for _, h := range hits {
		layer, tag := r.blockLayers.Has(h.Layer), r.blockTags.Has(h.Tag)
		if (r.matchAny && (layer || tag)) || (layer && tag) {
			return verdict{}
		}
	}

	if r.matchAny {
		for _, h := range hits {
			if cost, ok := r.layerCost[h.Layer]; ok {
				return r.walkable(cost, h.Depth)
			}
			if cost, ok := r.tagCost[h.Tag]; ok {
				return r.walkable(cost, h.Depth)
			}
		}
		return verdict{}
	}

	for _, l := range r.walkLayers {
		for _, h := range hits {
			if h.Layer != l.Layer {
				continue
			}
			if cost, ok := r.tagCost[h.Tag]; ok {
				return r.walkable(cost*l.Cost, h.Depth)
			}
		}
	}
	return verdict{}
}

func (r *rules) walkable(cost, depth float32) verdict {
	if r.pinDepth {
		depth = r.defaultDepth
	}
	return verdict{walkable: true, cost: cost, depth: depth}
}

func (r *rules) anyForcedWalkable(hits []Hit) bool {
	for _, h := range hits {
		if r.forceWalkIDs.Has(h.ID) {
			return true
		}
	}
	return false
}
