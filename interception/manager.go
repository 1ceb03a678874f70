package interception

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sync"

	"github.com/glimte/intercept-go/contracts"
)

// PipelineManager owns the mapping from method identity to pipeline. It
// builds pipelines lazily through the declaration resolver, shares one
// pipeline object across all identities aliasing the same base-method slot,
// and serves concurrent lookups from the proxy layer.
//
// Pipelines are typically built during a warm-up phase and then read by many
// goroutines; published pipelines are immutable, so reads only need the read
// lock, and every check-then-publish runs under the write lock so racing
// initializations of one identity converge on a single published object.
type PipelineManager struct {
	mu        sync.RWMutex
	pipelines map[contracts.Identity]*Pipeline
	resolver  *DeclarationResolver
	base      BaseResolver
	mapper    InterfaceMapper
	logger    *slog.Logger
	disposed  bool
}

// ManagerOption configures the PipelineManager.
type ManagerOption func(*PipelineManager)

// WithManagerLogger sets the logger.
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(m *PipelineManager) {
		m.logger = logger
	}
}

// WithBaseResolver sets the base-method-definition collaborator.
func WithBaseResolver(base BaseResolver) ManagerOption {
	return func(m *PipelineManager) {
		m.base = base
	}
}

// WithInterfaceMapper sets the interface-mapping collaborator used by
// InitializeType.
func WithInterfaceMapper(mapper InterfaceMapper) ManagerOption {
	return func(m *PipelineManager) {
		m.mapper = mapper
	}
}

// NewPipelineManager creates a manager over a declaration resolver. Without
// options it uses an empty override graph (every method is its own base), a
// fresh ReflectMapper and slog.Default().
func NewPipelineManager(resolver *DeclarationResolver, options ...ManagerOption) *PipelineManager {
	m := &PipelineManager{
		pipelines: make(map[contracts.Identity]*Pipeline),
		resolver:  resolver,
		base:      NewOverrideGraph(),
		mapper:    NewReflectMapper(),
		logger:    slog.Default(),
	}

	for _, opt := range options {
		opt(m)
	}

	return m
}

// GetPipeline returns the pipeline registered for the method's identity, or
// EmptyPipeline if none is registered. It fails only when the manager has
// been closed.
func (m *PipelineManager) GetPipeline(method contracts.Method) (*Pipeline, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.disposed {
		return nil, contracts.ErrManagerDisposed
	}

	if p, ok := m.pipelines[method.Identity()]; ok {
		return p, nil
	}
	return EmptyPipeline, nil
}

// SetPipeline unconditionally publishes a pipeline for the method's
// identity, last writer wins. A nil pipeline publishes EmptyPipeline.
func (m *PipelineManager) SetPipeline(method contracts.Method, pipeline *Pipeline) error {
	if method.IsZero() {
		return fmt.Errorf("%w: cannot set pipeline", contracts.ErrNilMethod)
	}
	if pipeline == nil {
		pipeline = EmptyPipeline
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return contracts.ErrManagerDisposed
	}

	m.pipelines[method.Identity()] = pipeline
	return nil
}

// InitializePipeline builds (or reuses) the pipeline for an implementation
// method and publishes it under the implementation identity and the
// interface method's identity when one is supplied. It reports whether the
// resulting pipeline is non-empty.
//
// A method that declares no interceptors of its own shares its base-method
// slot's pipeline by object identity: if the base slot already has a
// published pipeline that same object is aliased for this method, and
// otherwise the (empty) pipeline is published under the base identity too so
// later overrides of the slot share it. A method that re-declares
// interceptors owns its chain: the pipeline built from its declarations is
// published for the method alone and the base slot is left untouched.
func (m *PipelineManager) InitializePipeline(ctx context.Context, ifaceMethod *contracts.Method, implMethod contracts.Method) (bool, error) {
	if implMethod.IsZero() {
		return false, fmt.Errorf("%w: implementation method", contracts.ErrNilMethod)
	}

	m.mu.RLock()
	disposed := m.disposed
	m.mu.RUnlock()
	if disposed {
		return false, contracts.ErrManagerDisposed
	}

	// Resolution may recurse into the dependency collaborator and block;
	// keep it outside the registry lock. On failure nothing is published.
	interceptors, err := m.resolver.Resolve(ctx, ifaceMethod, implMethod)
	if err != nil {
		return false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return false, contracts.ErrManagerDisposed
	}

	base := implMethod
	if m.base != nil {
		base = m.base.BaseDefinition(implMethod)
	}

	ownChain := len(interceptors) > 0 && base.Identity() != implMethod.Identity()

	pipeline, shared := m.pipelines[base.Identity()]
	switch {
	case !shared:
		// First initialization of the slot: build from this method's
		// declarations. An override that re-declares interceptors owns
		// its chain and leaves the base slot untouched.
		pipeline = NewPipeline(interceptors)
		if !ownChain {
			m.pipelines[base.Identity()] = pipeline
		}
	case ownChain:
		pipeline = NewPipeline(interceptors)
	}

	m.pipelines[implMethod.Identity()] = pipeline
	if ifaceMethod != nil && !ifaceMethod.IsZero() {
		m.pipelines[ifaceMethod.Identity()] = pipeline
	}

	m.logger.Debug("pipeline initialized",
		"method", implMethod.Identity().String(),
		"base", base.Identity().String(),
		"interceptors", pipeline.Count(),
		"shared", shared,
	)

	return !pipeline.IsEmpty(), nil
}

// InitializeType initializes pipelines for every interface method of the
// target's type, pairing interface methods with implementing methods through
// the interface mapper. An implementing method reachable through several
// interfaces is initialized exactly once: the first interface discovered
// wins and later interfaces routing to the same method are skipped.
//
// The target may be a value of the implementation type or a reflect.Type.
func (m *PipelineManager) InitializeType(ctx context.Context, target any) error {
	if target == nil {
		return fmt.Errorf("target cannot be nil")
	}

	implType, ok := target.(reflect.Type)
	if !ok {
		implType = reflect.TypeOf(target)
	}

	pairs, err := m.mapper.MapInterfaces(implType)
	if err != nil {
		return fmt.Errorf("mapping interfaces of %s: %w", implType, err)
	}

	seen := make(map[contracts.Identity]struct{}, len(pairs))
	for _, pair := range pairs {
		if _, dup := seen[pair.Implementation.Identity()]; dup {
			m.logger.Debug("skipping already initialized implementation method",
				"method", pair.Implementation.Identity().String(),
				"interface", pair.Interface.Identity().String(),
			)
			continue
		}
		seen[pair.Implementation.Identity()] = struct{}{}

		iface := pair.Interface
		if _, err := m.InitializePipeline(ctx, &iface, pair.Implementation); err != nil {
			return fmt.Errorf("initializing pipeline for %s: %w", pair.Implementation.Identity(), err)
		}
	}

	return nil
}

// Close disposes the manager. Subsequent operations return
// contracts.ErrManagerDisposed. Close is idempotent.
func (m *PipelineManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.disposed {
		return nil
	}

	m.disposed = true
	m.pipelines = nil
	return nil
}
