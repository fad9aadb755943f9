// Package registry manages source and sink adapter registration. Each
// adapter package registers a factory from its init function; the
// driver instantiates adapters by backend name.
package registry

import (
	"sync"

	"github.com/helioslabs/bronzeflow/pkg/config"
	"github.com/helioslabs/bronzeflow/pkg/connector/core"
	"github.com/helioslabs/bronzeflow/pkg/errors"
)

// SourceFactory creates an EventSource from source configuration.
type SourceFactory func(cfg *config.SourceConfig) (core.EventSource, error)

// SinkFactory creates an ObjectSink from sink configuration.
type SinkFactory func(cfg *config.SinkConfig) (core.ObjectSink, error)

// Registry holds registered adapter factories. It is constructed during
// package initialization and must not touch the global logger, which is
// not configured until the driver runs.
type Registry struct {
	sources map[string]SourceFactory
	sinks   map[string]SinkFactory
	mu      sync.RWMutex
}

var globalRegistry = NewRegistry()

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		sources: make(map[string]SourceFactory),
		sinks:   make(map[string]SinkFactory),
	}
}

// RegisterSource registers a source adapter factory.
func (r *Registry) RegisterSource(name string, factory SourceFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sources[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "source adapter %s already registered", name)
	}

	r.sources[name] = factory
	return nil
}

// RegisterSink registers a sink adapter factory.
func (r *Registry) RegisterSink(name string, factory SinkFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sinks[name]; exists {
		return errors.Newf(errors.ErrorTypeConfig, "sink adapter %s already registered", name)
	}

	r.sinks[name] = factory
	return nil
}

// CreateSource instantiates the named source adapter.
func (r *Registry) CreateSource(name string, cfg *config.SourceConfig) (core.EventSource, error) {
	r.mu.RLock()
	factory, exists := r.sources[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "source adapter %s not found", name)
	}

	source, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create source adapter "+name)
	}

	return source, nil
}

// CreateSink instantiates the named sink adapter.
func (r *Registry) CreateSink(name string, cfg *config.SinkConfig) (core.ObjectSink, error) {
	r.mu.RLock()
	factory, exists := r.sinks[name]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.Newf(errors.ErrorTypeConfig, "sink adapter %s not found", name)
	}

	sink, err := factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeConfig, "failed to create sink adapter "+name)
	}

	return sink, nil
}

// ListSources returns the registered source adapter names.
func (r *Registry) ListSources() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sources))
	for name := range r.sources {
		names = append(names, name)
	}
	return names
}

// ListSinks returns the registered sink adapter names.
func (r *Registry) ListSinks() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.sinks))
	for name := range r.sinks {
		names = append(names, name)
	}
	return names
}

// Global registry functions

// RegisterSource registers a source adapter in the global registry.
func RegisterSource(name string, factory SourceFactory) error {
	return globalRegistry.RegisterSource(name, factory)
}

// RegisterSink registers a sink adapter in the global registry.
func RegisterSink(name string, factory SinkFactory) error {
	return globalRegistry.RegisterSink(name, factory)
}

// CreateSource instantiates a source adapter from the global registry.
func CreateSource(name string, cfg *config.SourceConfig) (core.EventSource, error) {
	return globalRegistry.CreateSource(name, cfg)
}

// CreateSink instantiates a sink adapter from the global registry.
func CreateSink(name string, cfg *config.SinkConfig) (core.ObjectSink, error) {
	return globalRegistry.CreateSink(name, cfg)
}

// ListSources returns registered sources from the global registry.
func ListSources() []string {
	return globalRegistry.ListSources()
}

// ListSinks returns registered sinks from the global registry.
func ListSinks() []string {
	return globalRegistry.ListSinks()
}
