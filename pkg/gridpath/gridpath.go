package gridpath

import (
	"github.com/Faultbox/gridpath/pkg/generator"
	"github.com/Faultbox/gridpath/pkg/math"
	"github.com/Faultbox/gridpath/pkg/navgrid"
	"github.com/Faultbox/gridpath/pkg/pathfind"
)

type (
	Map        = navgrid.Map
	Config     = navgrid.Config
	Coordinate = navgrid.Coordinate
	Path       = pathfind.Path
	Options    = pathfind.Options
	Scope      = generator.Scope
)

// Update scopes.
var (
	WholeMap = generator.WholeMap
	Indexes  = generator.Indexes
	Range    = generator.Range
	Single   = generator.Single
)

// Settings holds the engine-wide knobs.
type Settings struct {
	Defaults  pathfind.Options
	Scheduler pathfind.Scheduler
	Forced    generator.ForcedPolicy
}

// Option is a function that modifies Settings.
type Option func(*Settings)

// WithDefaults sets the search options used by FindPath and RequestPathDefault.
func WithDefaults(opts pathfind.Options) Option {
	return func(s *Settings) { s.Defaults = opts }
}

// WithScheduler defers queued path completion through sched.
func WithScheduler(sched pathfind.Scheduler) Option {
	return func(s *Settings) { s.Scheduler = sched }
}

// WithForcedPolicy sets whether updates re-apply the forced override lists.
func WithForcedPolicy(p generator.ForcedPolicy) Option {
	return func(s *Settings) { s.Forced = p }
}

// Engine generates maps from one classification source and runs searches on
// them. Every Engine owns its own request queue; searches of all engines
// still run one at a time.
type Engine struct {
	gen      *generator.Generator
	queue    *pathfind.Queue
	defaults pathfind.Options
}

// New returns an engine classifying with src.
func New(src generator.Classifier, options ...Option) *Engine {
	settings := Settings{Defaults: pathfind.DefaultOptions()}
	for _, option := range options {
		option(&settings)
	}
	gen := generator.New(src)
	gen.Forced = settings.Forced
	return &Engine{
		gen:      gen,
		queue:    pathfind.NewQueue(settings.Scheduler),
		defaults: settings.Defaults,
	}
}

// Generator returns the engine's generator.
func (e *Engine) Generator() *generator.Generator { return e.gen }

// Queue returns the engine's request queue.
func (e *Engine) Queue() *pathfind.Queue { return e.queue }

// Defaults returns a copy of the default search options.
func (e *Engine) Defaults() pathfind.Options {
	o := e.defaults
	o.Disallowed = append([]navgrid.Coordinate(nil), o.Disallowed...)
	return o
}

// Generate builds and classifies a Map.
func (e *Engine) Generate(cfg navgrid.Config) (*navgrid.Map, error) {
	return e.gen.Generate(cfg)
}

// FindPathImmediate searches from start to end on the calling goroutine.
func (e *Engine) FindPathImmediate(m *navgrid.Map, start, end math.Vec3, opts pathfind.Options) (*pathfind.Path, error) {
	return pathfind.FindPathImmediate(m, start, end, opts)
}

// FindPath is FindPathImmediate with the engine defaults.
func (e *Engine) FindPath(m *navgrid.Map, start, end math.Vec3) (*pathfind.Path, error) {
	return pathfind.FindPathImmediate(m, start, end, e.Defaults())
}

// RequestPath queues a search and returns its pending Path.
func (e *Engine) RequestPath(m *navgrid.Map, start, end math.Vec3, opts pathfind.Options) (*pathfind.Path, error) {
	return e.queue.RequestPath(m, start, end, opts)
}

// RequestPathDefault is RequestPath with the engine defaults.
func (e *Engine) RequestPathDefault(m *navgrid.Map, start, end math.Vec3) (*pathfind.Path, error) {
	return e.queue.RequestPath(m, start, end, e.Defaults())
}

// Update re-classifies the cells in scope and notifies the map's subscribers.
func (e *Engine) Update(m *navgrid.Map, scope generator.Scope) error {
	return e.gen.Update(m, scope)
}

// IndexesBetween returns the cells whose origin lies inside the world-space
// rectangle spanned by a and b.
func (e *Engine) IndexesBetween(m *navgrid.Map, a, b math.Vec3) []navgrid.Coordinate {
	return m.IndexesBetween(a, b)
}
