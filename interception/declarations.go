package interception

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/glimte/intercept-go/contracts"
)

// InterceptorDeclaration binds an interceptor component to a method. Type
// (and optionally Name) select the component from the dependency resolver at
// pipeline-build time; Order controls its position in the pipeline, lowest
// first, ties broken by declaration order with interface-level declarations
// preceding implementation-level ones.
type InterceptorDeclaration struct {
	Type  reflect.Type
	Name  string
	Order int
}

// Declaration creates a declaration from a prototype value of the
// interceptor's registered type, e.g. Declaration(&LoggingInterceptor{}, 0).
func Declaration(prototype any, order int) InterceptorDeclaration {
	return InterceptorDeclaration{Type: reflect.TypeOf(prototype), Order: order}
}

// NamedDeclaration creates a declaration that resolves a named registration
// of the prototype's type.
func NamedDeclaration(prototype any, name string, order int) InterceptorDeclaration {
	return InterceptorDeclaration{Type: reflect.TypeOf(prototype), Name: name, Order: order}
}

// DeclarationSet is the statically-registered table of interceptor
// declarations, keyed by method identity. It is populated at
// type-registration time and read by the declaration resolver during
// pipeline builds.
type DeclarationSet struct {
	mu    sync.RWMutex
	decls map[contracts.Identity][]InterceptorDeclaration
}

// NewDeclarationSet creates an empty declaration set.
func NewDeclarationSet() *DeclarationSet {
	return &DeclarationSet{
		decls: make(map[contracts.Identity][]InterceptorDeclaration),
	}
}

// Declare appends declarations for a method, preserving registration order.
func (s *DeclarationSet) Declare(method contracts.Method, decls ...InterceptorDeclaration) error {
	if method.IsZero() {
		return fmt.Errorf("%w: cannot declare interceptors", contracts.ErrNilMethod)
	}
	for _, d := range decls {
		if d.Type == nil {
			return fmt.Errorf("declaration for %s has no interceptor type", method)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := method.Identity()
	s.decls[id] = append(s.decls[id], decls...)
	return nil
}

// DeclarationsFor returns a copy of the declarations registered for a method,
// in registration order.
func (s *DeclarationSet) DeclarationsFor(method contracts.Method) []InterceptorDeclaration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	decls, ok := s.decls[method.Identity()]
	if !ok {
		return nil
	}

	out := make([]InterceptorDeclaration, len(decls))
	copy(out, decls)
	return out
}
