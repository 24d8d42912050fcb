// Package config handles gridpath configuration loading and management.
package config

import (
	"time"

	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/pathfind"
)

// Config holds all gridpath settings.
type Config struct {
	Logging LoggingConfig  `yaml:"logging"`
	Grid    navgrid.Config `yaml:"grid"`
	Search  SearchConfig   `yaml:"search"`
	Source  SourceConfig   `yaml:"source"`
	Metrics MetricsConfig  `yaml:"metrics"`
}

// SearchConfig holds the default search options.
type SearchConfig struct {
	Aggression float32 `yaml:"aggression"`
	Diagonal   bool    `yaml:"diagonal"`
	// MaxDepthDifference <= 0 means unlimited.
	MaxDepthDifference   float32              `yaml:"max_depth_difference"`
	DepthCostWeight      float32              `yaml:"depth_cost_weight"`
	PreventCornerCutting bool                 `yaml:"prevent_corner_cutting"`
	Disallowed           []navgrid.Coordinate `yaml:"disallowed"`
}

// Options converts the section into search options.
func (s SearchConfig) Options() pathfind.Options {
	opts := pathfind.DefaultOptions()
	opts.Aggression = s.Aggression
	opts.Diagonal = s.Diagonal
	if s.MaxDepthDifference > 0 {
		opts.MaxDepthDifference = s.MaxDepthDifference
	}
	opts.DepthCostWeight = s.DepthCostWeight
	opts.PreventCornerCutting = s.PreventCornerCutting
	opts.Disallowed = append([]navgrid.Coordinate(nil), s.Disallowed...)
	return opts
}

// SourceConfig selects the classification source. GAT takes priority over
// Scene when both are set.
type SourceConfig struct {
	Scene       string        `yaml:"scene"`
	GAT         string        `yaml:"gat"`
	GATCellSize float32       `yaml:"gat_cell_size"`
	Debounce    time.Duration `yaml:"debounce"` // file watch settle time
}

// MetricsConfig holds the Prometheus endpoint settings.
type MetricsConfig struct {
	Addr string `yaml:"addr"` // empty disables the endpoint
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
		Grid: navgrid.Config{
			CellSize: math.Vec2{X: 1, Y: 1},
			End:      math.Vec2{X: 31, Y: 31},
		},
		Search: SearchConfig{
			Aggression: 1,
			Diagonal:   true,
		},
		Source: SourceConfig{
			GATCellSize: 1,
			Debounce:    100 * time.Millisecond,
		},
		Metrics: MetricsConfig{
			Path: "/metrics",
		},
	}
}
