package intercept

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/glimte/intercept-go/contracts"
	"github.com/glimte/intercept-go/interception"
	"github.com/glimte/intercept-go/resolution"
)

// Registry is the main entry point for intercept-go. It wires a declaration
// set, an override graph, an interface mapper, a component registry and a
// pipeline manager behind one surface; one Registry per service container.
type Registry struct {
	declarations *interception.DeclarationSet
	graph        *interception.OverrideGraph
	mapper       *interception.ReflectMapper
	components   *resolution.Registry
	deps         interception.DependencyResolver
	manager      *interception.PipelineManager
	logger       *slog.Logger
}

type registryConfig struct {
	logger *slog.Logger
	deps   interception.DependencyResolver
}

// Option configures a Registry.
type Option func(*registryConfig)

// WithLogger sets the logger for all components.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *registryConfig) {
		cfg.logger = logger
	}
}

// WithDependencyResolver replaces the built-in component registry with an
// external container. RegisterInterceptor is unavailable in that mode;
// interceptor instances come from the supplied resolver.
func WithDependencyResolver(deps interception.DependencyResolver) Option {
	return func(cfg *registryConfig) {
		cfg.deps = deps
	}
}

// New creates a Registry.
func New(options ...Option) *Registry {
	cfg := &registryConfig{
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(cfg)
	}

	r := &Registry{
		declarations: interception.NewDeclarationSet(),
		graph:        interception.NewOverrideGraph(),
		mapper:       interception.NewReflectMapper(),
		logger:       cfg.logger,
	}

	if cfg.deps != nil {
		r.deps = cfg.deps
	} else {
		r.components = resolution.NewRegistry()
		r.deps = r.components
	}

	resolver := interception.NewDeclarationResolver(
		r.declarations,
		r.deps,
		interception.WithResolverLogger(cfg.logger),
	)

	r.manager = interception.NewPipelineManager(
		resolver,
		interception.WithManagerLogger(cfg.logger),
		interception.WithBaseResolver(r.graph),
		interception.WithInterfaceMapper(r.mapper),
	)

	return r
}

// Declarations returns the declaration set for direct registration.
func (r *Registry) Declarations() *interception.DeclarationSet {
	return r.declarations
}

// Manager returns the pipeline manager.
func (r *Registry) Manager() *interception.PipelineManager {
	return r.manager
}

// Components returns the built-in component registry, or nil when an
// external dependency resolver is in use.
func (r *Registry) Components() *resolution.Registry {
	return r.components
}

// RegisterInterceptor registers an interceptor factory with the built-in
// component registry under the prototype's type.
func (r *Registry) RegisterInterceptor(prototype any, factory resolution.Factory, options ...resolution.RegisterOption) error {
	if r.components == nil {
		return fmt.Errorf("registry uses an external dependency resolver; register interceptors there")
	}
	return r.components.Register(prototype, factory, options...)
}

// RegisterInterface registers an interface for type-level initialization,
// via a nil pointer prototype such as (*OrderService)(nil).
func (r *Registry) RegisterInterface(prototype any) error {
	return r.mapper.RegisterInterface(prototype)
}

// Declare registers interceptor declarations for a method.
func (r *Registry) Declare(method contracts.Method, decls ...interception.InterceptorDeclaration) error {
	return r.declarations.Declare(method, decls...)
}

// DeclareOverride records that derived overrides base, so both share one
// pipeline slot.
func (r *Registry) DeclareOverride(derived, base contracts.Method) error {
	return r.graph.DeclareOverride(derived, base)
}

// InitializeType builds pipelines for every registered interface the
// target's type implements.
func (r *Registry) InitializeType(ctx context.Context, target any) error {
	return r.manager.InitializeType(ctx, target)
}

// InitializePipeline builds the pipeline for an implementation method,
// optionally linked to an interface method. It reports whether the pipeline
// is non-empty.
func (r *Registry) InitializePipeline(ctx context.Context, ifaceMethod *contracts.Method, implMethod contracts.Method) (bool, error) {
	return r.manager.InitializePipeline(ctx, ifaceMethod, implMethod)
}

// GetPipeline returns the pipeline for a method, or the shared empty
// pipeline when none is registered.
func (r *Registry) GetPipeline(method contracts.Method) (*interception.Pipeline, error) {
	return r.manager.GetPipeline(method)
}

// Invoke runs a method call on target through its pipeline. An empty
// pipeline calls the target directly, bypassing interception machinery.
func (r *Registry) Invoke(ctx context.Context, target any, methodName string, args ...any) ([]any, error) {
	method, err := contracts.MethodOf(target, methodName)
	if err != nil {
		return nil, err
	}

	pipeline, err := r.manager.GetPipeline(method)
	if err != nil {
		return nil, err
	}

	inv := contracts.NewInvocation(method, target, args...)
	final := interception.HandlerFunc(callTarget)

	if pipeline.IsEmpty() {
		return final.Invoke(ctx, inv)
	}
	return pipeline.Execute(ctx, inv, final)
}

// Close disposes the pipeline manager and, when owned, the component
// registry.
func (r *Registry) Close() error {
	err := r.manager.Close()
	if r.components != nil {
		if cerr := r.components.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

var errType = reflect.TypeOf((*error)(nil)).Elem()

// callTarget invokes the target method reflectively. When the method's last
// return value is an error it is split off into the handler's error result.
func callTarget(_ context.Context, inv *contracts.Invocation) ([]any, error) {
	fn := reflect.ValueOf(inv.Target).MethodByName(inv.Method.Name())
	if !fn.IsValid() {
		return nil, fmt.Errorf("%w: target %T has no method %s", contracts.ErrNilMethod, inv.Target, inv.Method.Name())
	}

	ft := fn.Type()
	if ft.NumIn() != len(inv.Args) {
		return nil, fmt.Errorf("method %s expects %d arguments, got %d", inv.Method.Identity(), ft.NumIn(), len(inv.Args))
	}

	in := make([]reflect.Value, len(inv.Args))
	for i, arg := range inv.Args {
		if arg == nil {
			in[i] = reflect.Zero(ft.In(i))
			continue
		}
		in[i] = reflect.ValueOf(arg)
	}

	out := fn.Call(in)

	var err error
	if n := len(out); n > 0 && ft.Out(n-1).Implements(errType) {
		if e := out[n-1].Interface(); e != nil {
			err = e.(error)
		}
		out = out[:n-1]
	}

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}
	return results, err
}
