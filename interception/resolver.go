package interception

import (
	"context"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/glimte/intercept-go/contracts"
)

// DependencyResolver supplies interceptor instances by type and optional
// name. Implementations must return an error wrapping
// contracts.ErrComponentNotFound when they cannot supply an instance.
// Resolution may block or allocate; that is opaque to this package.
type DependencyResolver interface {
	Resolve(ctx context.Context, t reflect.Type, name string) (any, error)
}

// DeclarationResolver turns the declarations of a method pair into the
// ordered interceptor sequence of its pipeline. It does not cache instances;
// caching happens at the pipeline level in the manager.
type DeclarationResolver struct {
	set    *DeclarationSet
	deps   DependencyResolver
	logger *slog.Logger
}

// ResolverOption configures the DeclarationResolver.
type ResolverOption func(*DeclarationResolver)

// WithResolverLogger sets the logger.
func WithResolverLogger(logger *slog.Logger) ResolverOption {
	return func(r *DeclarationResolver) {
		r.logger = logger
	}
}

// NewDeclarationResolver creates a resolver over a declaration set and a
// dependency-resolution collaborator.
func NewDeclarationResolver(set *DeclarationSet, deps DependencyResolver, options ...ResolverOption) *DeclarationResolver {
	r := &DeclarationResolver{
		set:    set,
		deps:   deps,
		logger: slog.Default(),
	}

	for _, opt := range options {
		opt(r)
	}

	return r
}

// Resolve collects the interface method's declarations (if any) followed by
// the implementation method's own, stable-sorts them by Order ascending, and
// materializes each via the dependency resolver. Any resolution failure
// aborts the build; no partial sequence is returned.
func (r *DeclarationResolver) Resolve(ctx context.Context, ifaceMethod *contracts.Method, implMethod contracts.Method) ([]Interceptor, error) {
	if implMethod.IsZero() {
		return nil, fmt.Errorf("%w: implementation method", contracts.ErrNilMethod)
	}

	var decls []InterceptorDeclaration
	if ifaceMethod != nil && !ifaceMethod.IsZero() {
		decls = append(decls, r.set.DeclarationsFor(*ifaceMethod)...)
	}
	decls = append(decls, r.set.DeclarationsFor(implMethod)...)

	if len(decls) == 0 {
		return nil, nil
	}

	sort.SliceStable(decls, func(i, j int) bool {
		return decls[i].Order < decls[j].Order
	})

	interceptors := make([]Interceptor, 0, len(decls))
	for _, d := range decls {
		obj, err := r.deps.Resolve(ctx, d.Type, d.Name)
		if err != nil {
			return nil, &contracts.ResolutionError{Interceptor: d.Type.String(), Name: d.Name, Err: err}
		}

		interceptor, ok := obj.(Interceptor)
		if !ok {
			return nil, &contracts.ResolutionError{
				Interceptor: d.Type.String(),
				Name:        d.Name,
				Err:         fmt.Errorf("resolved %T does not implement Interceptor", obj),
			}
		}

		interceptors = append(interceptors, interceptor)
	}

	r.logger.Debug("resolved interceptor declarations",
		"method", implMethod.Identity().String(),
		"count", len(interceptors),
	)

	return interceptors, nil
}
