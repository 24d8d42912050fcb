package config

import "flag"

var (
	flagConfig     = flag.String("config", "", "Path to config file")
	flagDebug      = flag.Bool("debug", false, "Enable debug logging")
	flagScene      = flag.String("scene", "", "Scene file describing colliders")
	flagGAT        = flag.String("gat", "", "GAT walkability file")
	flagMetrics    = flag.String("metrics", "", "Serve Prometheus metrics on this address")
	flagAggression = flag.Float64("aggression", 0, "Heuristic weight (0 keeps the configured value)")
	flagNoDiagonal = flag.Bool("no-diagonal", false, "Disable diagonal moves")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the positional arguments left after flag parsing.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagScene != "" {
		cfg.Source.Scene = *flagScene
	}
	if *flagGAT != "" {
		cfg.Source.GAT = *flagGAT
	}
	if *flagMetrics != "" {
		cfg.Metrics.Addr = *flagMetrics
	}
	if *flagAggression != 0 {
		cfg.Search.Aggression = float32(*flagAggression)
	}
	if *flagNoDiagonal {
		cfg.Search.Diagonal = false
	}
}
