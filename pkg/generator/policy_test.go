package generator

import (
	"testing"

	"github.com/Faultbox/gridpath/pkg/navgrid"
)

func TestResolve(t *testing.T) {
	base := navgrid.Config{
		Use3D: true,
		WalkableLayers: []navgrid.CostLayer{
			{Layer: layerWater, Cost: 3},
			{Layer: layerGround, Cost: 1},
		},
		WalkableTags: []navgrid.CostTag{
			{Tag: "floor", Cost: 1},
			{Tag: "sand", Cost: 2},
		},
		NonWalkableLayers: []int{layerWall},
		NonWalkableTags:   []string{"lava"},
		ForceWalkable:     []navgrid.ForcedCost{{ID: "plank", Cost: 0.5}, {ID: "rope", Cost: 4}},
		ForceNonWalkable:  []string{"spikes"},
	}

	tests := []struct {
		name     string
		matchAny bool
		hits     []Hit
		want     verdict
	}{
		{
			name: "no hits",
			want: verdict{},
		},
		{
			name: "forced blocked beats forced walkable",
			hits: []Hit{{ID: "plank"}, {ID: "spikes"}},
			want: verdict{},
		},
		{
			name: "forced walkable uses list order",
			hits: []Hit{{ID: "rope", Depth: 1}, {ID: "plank", Depth: 2}},
			want: verdict{walkable: true, cost: 0.5, depth: 2},
		},
		{
			name: "forced walkable beats blocked layer",
			hits: []Hit{{ID: "w", Layer: layerWall, Tag: "lava"}, {ID: "plank", Depth: 5}},
			want: verdict{walkable: true, cost: 0.5, depth: 5},
		},
		{
			name: "and: blocked needs layer and tag",
			hits: []Hit{{Layer: layerWall, Tag: "floor"}, {Layer: layerGround, Tag: "floor", Depth: 1}},
			want: verdict{walkable: true, cost: 1, depth: 1},
		},
		{
			name: "and: blocked layer and tag",
			hits: []Hit{{Layer: layerWall, Tag: "lava"}, {Layer: layerGround, Tag: "floor"}},
			want: verdict{},
		},
		{
			name: "and: layer priority over hit order",
			hits: []Hit{{Layer: layerGround, Tag: "floor", Depth: 1}, {Layer: layerWater, Tag: "sand", Depth: 2}},
			want: verdict{walkable: true, cost: 6, depth: 2},
		},
		{
			name: "and: layer without tag",
			hits: []Hit{{Layer: layerGround, Tag: "grass"}},
			want: verdict{},
		},
		{
			name:     "or: blocked layer alone",
			matchAny: true,
			hits:     []Hit{{Layer: layerGround, Tag: "floor"}, {Layer: layerWall, Tag: "floor"}},
			want:     verdict{},
		},
		{
			name:     "or: blocked tag alone",
			matchAny: true,
			hits:     []Hit{{Layer: 9, Tag: "lava"}},
			want:     verdict{},
		},
		{
			name:     "or: first hit decides",
			matchAny: true,
			hits:     []Hit{{Layer: layerGround, Tag: "grass", Depth: 1}, {Layer: layerWater, Depth: 2}},
			want:     verdict{walkable: true, cost: 1, depth: 1},
		},
		{
			name:     "or: layer before tag",
			matchAny: true,
			hits:     []Hit{{Layer: layerWater, Tag: "sand"}},
			want:     verdict{walkable: true, cost: 3},
		},
		{
			name:     "or: tag alone",
			matchAny: true,
			hits:     []Hit{{Layer: 9, Tag: "sand", Depth: 7}},
			want:     verdict{walkable: true, cost: 2, depth: 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base.Clone()
			cfg.MatchAny = tt.matchAny
			got := compileRules(&cfg).resolve(tt.hits, true)
			if got != tt.want {
				t.Errorf("resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestResolveSkipForced(t *testing.T) {
	cfg := navgrid.Config{
		WalkableLayers:   []navgrid.CostLayer{{Layer: layerGround, Cost: 1}},
		WalkableTags:     []navgrid.CostTag{{Tag: "floor", Cost: 1}},
		ForceNonWalkable: []string{"crate"},
		DefaultDepth:     3,
	}
	r := compileRules(&cfg)
	hits := []Hit{{ID: "crate", Layer: layerGround, Tag: "floor", Depth: 9}}

	if got := r.resolve(hits, true); got.walkable {
		t.Error("forced blocked ignored with recheck")
	}
	got := r.resolve(hits, false)
	if !got.walkable || got.depth != 3 {
		t.Errorf("skip forced = %+v, want walkable at default depth", got)
	}
}
