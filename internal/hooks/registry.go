package hooks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"git.home.luguber.info/inful/sitehooks/internal/metrics"
)

// Registry holds hooks per stage in registration order.
type Registry struct {
	mu       sync.RWMutex
	hooks    map[Stage][]Hook
	recorder metrics.Recorder
	logger   *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(recorder metrics.Recorder, logger *slog.Logger) *Registry {
	return &Registry{
		hooks:    make(map[Stage][]Hook),
		recorder: metrics.OrNoop(recorder),
		logger:   orDefault(logger),
	}
}

// DefaultRegistry registers PreBuildHook and PostBuildHook.
func DefaultRegistry(recorder metrics.Recorder, logger *slog.Logger) *Registry {
	r := NewRegistry(recorder, logger)
	// Both names are fixed and distinct; registration cannot fail.
	_ = r.Register(NewPreBuildHook(r.recorder, r.logger))
	_ = r.Register(NewPostBuildHook(r.recorder, r.logger))
	return r
}

// Register adds a hook. A hook with the same name in the same stage is rejected.
func (r *Registry) Register(h Hook) error {
	if h == nil {
		return fmt.Errorf("cannot register nil hook")
	}
	switch h.Stage() {
	case StagePreBuild, StagePostBuild:
	default:
		return fmt.Errorf("hook %s: unknown stage %q", h.Name(), h.Stage())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.hooks[h.Stage()] {
		if existing.Name() == h.Name() {
			return fmt.Errorf("hook %s already registered for %s", h.Name(), h.Stage())
		}
	}
	r.hooks[h.Stage()] = append(r.hooks[h.Stage()], h)
	return nil
}

// Hooks returns the hooks registered for stage.
func (r *Registry) Hooks(stage Stage) []Hook {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Hook(nil), r.hooks[stage]...)
}

// Run executes the hooks of stage in order; the first error aborts the stage.
func (r *Registry) Run(ctx context.Context, stage Stage, site *SiteConfig) ([]Result, error) {
	hooks := r.Hooks(stage)
	results := make([]Result, 0, len(hooks))
	for _, h := range hooks {
		res, err := timed(ctx, h, site, r.recorder, r.logger)
		results = append(results, res)
		if err != nil {
			return results, fmt.Errorf("%s hook %s: %w", stage, h.Name(), err)
		}
	}
	return results, nil
}
