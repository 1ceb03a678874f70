package resolution

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/glimte/intercept-go/contracts"
)

// Scope defines the lifetime of a registered component.
type Scope int

const (
	// Singleton shares one instance across all resolutions.
	Singleton Scope = iota
	// Transient creates a new instance for each resolution.
	Transient
)

// Factory creates a component instance.
type Factory func(ctx context.Context) (any, error)

type registrationKey struct {
	t    reflect.Type
	name string
}

type registration struct {
	factory Factory
	scope   Scope
}

// Registry is a minimal dependency-resolution collaborator: components are
// registered by prototype type (and optionally name) and resolved on demand.
// It implements interception.DependencyResolver.
type Registry struct {
	mu            sync.Mutex
	registrations map[registrationKey]registration
	singletons    map[registrationKey]any
	disposed      bool
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		registrations: make(map[registrationKey]registration),
		singletons:    make(map[registrationKey]any),
	}
}

// RegisterOption configures a registration.
type RegisterOption func(*registration)

// WithScope sets the component's lifetime; the default is Singleton.
func WithScope(scope Scope) RegisterOption {
	return func(r *registration) {
		r.scope = scope
	}
}

// Register registers a factory under the prototype's type, e.g.
// Register(&LoggingInterceptor{}, factory). Registering a type twice is an
// error.
func (r *Registry) Register(prototype any, factory Factory, options ...RegisterOption) error {
	return r.RegisterNamed(prototype, "", factory, options...)
}

// RegisterNamed registers a factory under the prototype's type and a name,
// so several components of one type can coexist.
func (r *Registry) RegisterNamed(prototype any, name string, factory Factory, options ...RegisterOption) error {
	if prototype == nil {
		return fmt.Errorf("prototype cannot be nil")
	}
	if factory == nil {
		return fmt.Errorf("factory cannot be nil")
	}

	reg := registration{factory: factory, scope: Singleton}
	for _, opt := range options {
		opt(&reg)
	}

	key := registrationKey{t: reflect.TypeOf(prototype), name: name}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return contracts.ErrRegistryDisposed
	}
	if _, exists := r.registrations[key]; exists {
		return fmt.Errorf("component %s already registered", keyString(key))
	}

	r.registrations[key] = reg
	return nil
}

// RegisterInstance registers an existing instance as a singleton under the
// prototype's type. The prototype may be the instance itself.
func (r *Registry) RegisterInstance(prototype any, instance any) error {
	return r.Register(prototype, func(context.Context) (any, error) {
		return instance, nil
	})
}

// Resolve supplies the component registered for the type/name pair, building
// it on first use for singletons. An unregistered pair yields an error
// wrapping contracts.ErrComponentNotFound.
func (r *Registry) Resolve(ctx context.Context, t reflect.Type, name string) (any, error) {
	key := registrationKey{t: t, name: name}

	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return nil, contracts.ErrRegistryDisposed
	}
	reg, ok := r.registrations[key]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", contracts.ErrComponentNotFound, keyString(key))
	}
	if reg.scope == Singleton {
		if instance, cached := r.singletons[key]; cached {
			r.mu.Unlock()
			return instance, nil
		}
	}
	r.mu.Unlock()

	// Factories may resolve other components; run them unlocked.
	instance, err := reg.factory(ctx)
	if err != nil {
		return nil, fmt.Errorf("building component %s: %w", keyString(key), err)
	}

	if reg.scope != Singleton {
		return instance, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil, contracts.ErrRegistryDisposed
	}
	// A racing builder may have won; the first stored instance is shared.
	if existing, cached := r.singletons[key]; cached {
		return existing, nil
	}
	r.singletons[key] = instance
	return instance, nil
}

// Close disposes the registry. Subsequent operations return
// contracts.ErrRegistryDisposed. Close is idempotent.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return nil
	}

	r.disposed = true
	r.registrations = nil
	r.singletons = nil
	return nil
}

func keyString(key registrationKey) string {
	if key.name != "" {
		return fmt.Sprintf("%s (name %q)", key.t, key.name)
	}
	return key.t.String()
}
