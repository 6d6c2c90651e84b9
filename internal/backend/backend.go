// Package backend resolves a backend name to an implementation and runs it
// against a snapshot file.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/jwebster45206/ml-interface/internal/config"
	"github.com/jwebster45206/ml-interface/internal/telemetry"
	"github.com/jwebster45206/ml-interface/pkg/chat"
	"github.com/jwebster45206/ml-interface/pkg/prompts"
	"github.com/jwebster45206/ml-interface/pkg/snapshot"
)

// ErrBackendNotRegistered is returned by Create when no factory has been
// registered under the requested name.
var ErrBackendNotRegistered = errors.New("backend: not registered")

// Backend produces the text written to standard output for one snapshot file.
type Backend interface {
	Predict(ctx context.Context, path string) (string, error)
}

// Responder is implemented by backends that can answer a snapshot already
// in memory.
type Responder interface {
	Respond(ctx context.Context, s *snapshot.Snapshot) (*Response, error)
}

// Response is the outcome of one Respond call.
type Response struct {
	Result chat.GenerationResult
	// Messages are the blocks sent in the primary generation call.
	Messages []chat.ChatMessage
	// Rating is the raw text of the disposition call, empty when it was not made.
	Rating string
}

// Deps carries what factories need to construct a backend.
type Deps struct {
	Config    *config.Config
	Logger    *slog.Logger
	Telemetry telemetry.Sink // nil disables telemetry
	Rand      prompts.Rand
	// Stderr receives the disposition call's text.
	Stderr io.Writer
}

// Factory constructs a backend.
type Factory func(ctx context.Context, deps Deps) (Backend, error)

// Registry maps backend names to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any earlier registration.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// Names lists the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Create constructs the backend registered under name.
// Returns ErrBackendNotRegistered if there is none.
func (r *Registry) Create(ctx context.Context, name string, deps Deps) (Backend, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrBackendNotRegistered, name)
	}

	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Stderr == nil {
		deps.Stderr = io.Discard
	}
	if deps.Config == nil {
		deps.Config = config.Default()
	}

	b, err := factory(ctx, deps)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend %q: %w", name, err)
	}
	return b, nil
}
