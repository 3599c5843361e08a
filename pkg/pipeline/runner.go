package pipeline

import (
	"github.com/arthur-debert/simctl/pkg/errors"
	"github.com/arthur-debert/simctl/pkg/logging"
	"github.com/arthur-debert/simctl/pkg/registry"
	"github.com/rs/zerolog"
)

// Registry holds the named pipelines for one arguments type.
type Registry[A Args] struct {
	pipelines registry.Registry[*Pipeline[A]]
}

// NewRegistry creates an empty pipeline registry.
func NewRegistry[A Args](pipelines ...*Pipeline[A]) (*Registry[A], error) {
	r := &Registry[A]{pipelines: registry.New[*Pipeline[A]]()}
	for _, p := range pipelines {
		if err := r.Register(p); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds p under its name.
func (r *Registry[A]) Register(p *Pipeline[A]) error {
	if p == nil {
		return errors.New(errors.ErrInvalidInput, "pipeline cannot be nil")
	}
	return r.pipelines.Register(p.Name, p)
}

// Get finds a pipeline by name.
func (r *Registry[A]) Get(name string) (*Pipeline[A], error) {
	p, err := r.pipelines.Get(name)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrPipelineNotFound, "pipeline %q is not registered", name).
			WithDetail("pipeline", name)
	}
	return p, nil
}

// Names lists registered pipelines in registration order.
func (r *Registry[A]) Names() []string {
	return r.pipelines.List()
}

// Options configures a Runner.
type Options struct {
	// Hooks replace the default log hook when set.
	Hooks  []Hook
	Logger zerolog.Logger
}

// Runner executes pipelines from a registry by name.
type Runner[A Args] struct {
	registry *Registry[A]
	hooks    []Hook
	logger   zerolog.Logger
}

// NewRunner creates a runner over reg.
func NewRunner[A Args](reg *Registry[A], opts Options) *Runner[A] {
	logger := opts.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = logging.GetLogger("pipeline")
	}
	hooks := opts.Hooks
	if len(hooks) == 0 {
		hooks = []Hook{NewLogHook(logger)}
	}
	return &Runner[A]{registry: reg, hooks: hooks, logger: logger}
}

// Run executes the named pipeline. An unknown name returns
// PIPELINE_NOT_FOUND and a nil Result.
func (r *Runner[A]) Run(name string, args A) (*Result, error) {
	p, err := r.registry.Get(name)
	if err != nil {
		r.logger.Error().Err(err).Str("pipeline", name).Msg("Unknown pipeline")
		return nil, err
	}
	done := logging.LogOperationStart(r.logger, "pipeline "+p.Name)
	defer done()
	return p.Execute(args, r.hooks...)
}
