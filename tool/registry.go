package tool

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	ai "github.com/moneypilot/moneypilot"
)

// Registry manages the tools available to agents.
// It is safe for concurrent use and read-only once sealed.
type Registry struct {
	mu     sync.RWMutex
	tools  map[string]Tool
	sealed bool
	logger *slog.Logger
}

// NewRegistry creates an empty tool registry logging to logger, or to
// the default logger when nil.
func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		tools:  make(map[string]Tool),
		logger: logger,
	}
}

// Register adds a tool. It fails once the registry is sealed and for a
// name that is already taken.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	if err := r.checkLocked(t); err != nil {
		return err
	}
	r.tools[t.Schema().Name] = t
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(t Tool) {
	if err := r.Register(t); err != nil {
		panic(err)
	}
}

func (r *Registry) checkLocked(t Tool) error {
	if t == nil {
		return errors.New("tool: nil tool")
	}
	name := t.Schema().Name
	if name == "" {
		return errors.New("tool: empty name")
	}
	if _, exists := r.tools[name]; exists {
		return &ErrToolAlreadyRegistered{Name: name}
	}
	return nil
}

// Discover registers every tool offered by sources, in order, and then
// seals the registry. Either all discovered tools are registered or, on
// error, none are.
func (r *Registry) Discover(ctx context.Context, sources ...Source) error {
	var found []Tool
	for i, src := range sources {
		tools, err := src.Tools(ctx)
		if err != nil {
			return fmt.Errorf("tool: discovering source %d: %w", i, err)
		}
		found = append(found, tools...)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}
	seen := make(map[string]bool, len(found))
	for _, t := range found {
		if err := r.checkLocked(t); err != nil {
			return err
		}
		name := t.Schema().Name
		if seen[name] {
			return &ErrToolAlreadyRegistered{Name: name}
		}
		seen[name] = true
	}
	for _, t := range found {
		r.tools[t.Schema().Name] = t
	}
	r.sealed = true
	r.logger.Info("tools discovered", "sources", len(sources), "discovered", len(found), "total", len(r.tools))
	return nil
}

// Seal stops further registration.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Register is still allowed.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Override installs t even when the registry is sealed, replacing any
// tool with the same name. Calling restore reinstates the previous state.
// Intended for tests.
func (r *Registry) Override(t Tool) (restore func()) {
	name := t.Schema().Name

	r.mu.Lock()
	prev, had := r.tools[name]
	r.tools[name] = t
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if had {
			r.tools[name] = prev
			return
		}
		delete(r.tools, name)
	}
}

// Get retrieves a tool by name.
func (r *Registry) Get(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return nil, &ErrToolNotFound{Name: name}
	}
	return t, nil
}

// Names returns the names of all registered tools, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// ListSchemas returns every tool schema, sorted by name.
func (r *Registry) ListSchemas() []ai.ToolSchema {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ai.ToolSchema, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.Schema())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Schemas returns the schemas of the named tools in the order given.
func (r *Registry) Schemas(names ...string) ([]ai.ToolSchema, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ai.ToolSchema, 0, len(names))
	for _, name := range names {
		t, ok := r.tools[name]
		if !ok {
			return nil, &ErrToolNotFound{Name: name}
		}
		out = append(out, t.Schema())
	}
	return out, nil
}

// Execute validates args against the named tool's schema and runs it.
// A failure inside the tool, including a panic, is returned as
// *ErrToolExecution.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (result any, err error) {
	t, err := r.Get(name)
	if err != nil {
		return nil, err
	}
	if args == nil {
		args = map[string]any{}
	}
	if err := Validate(t.Schema(), args); err != nil {
		return nil, err
	}

	defer func() {
		if p := recover(); p != nil {
			result, err = nil, &ErrToolExecution{Name: name, Err: fmt.Errorf("panic: %v", p)}
		}
	}()
	result, err = t.Execute(ctx, args)
	if err != nil {
		return nil, &ErrToolExecution{Name: name, Err: err}
	}
	return result, nil
}
