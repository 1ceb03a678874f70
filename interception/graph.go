package interception

import (
	"fmt"
	"sync"

	"github.com/glimte/intercept-go/contracts"
)

// BaseResolver resolves a method to the root declaration of its override
// slot. The root of a method that overrides nothing is the method itself.
type BaseResolver interface {
	BaseDefinition(m contracts.Method) contracts.Method
}

// OverrideGraph is an explicit method-override graph: each method may declare
// at most one "overrides" edge, and base definition lookup walks edges to the
// root. It replaces language-level virtual-slot reflection with declared
// edges registered alongside the types themselves.
type OverrideGraph struct {
	mu   sync.RWMutex
	base map[contracts.Identity]contracts.Method
}

// NewOverrideGraph creates an empty override graph.
func NewOverrideGraph() *OverrideGraph {
	return &OverrideGraph{
		base: make(map[contracts.Identity]contracts.Method),
	}
}

// DeclareOverride records that derived overrides base. A method may override
// only one base, and an edge that would close a cycle is rejected.
func (g *OverrideGraph) DeclareOverride(derived, base contracts.Method) error {
	if derived.IsZero() || base.IsZero() {
		return fmt.Errorf("%w: override declaration", contracts.ErrNilMethod)
	}
	if derived.Identity() == base.Identity() {
		return fmt.Errorf("method %s cannot override itself", derived)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if existing, ok := g.base[derived.Identity()]; ok {
		return fmt.Errorf("method %s already overrides %s", derived, existing)
	}

	// Walking up from base must not reach derived again.
	for cur := base; ; {
		next, ok := g.base[cur.Identity()]
		if !ok {
			break
		}
		if next.Identity() == derived.Identity() {
			return fmt.Errorf("override of %s by %s would create a cycle", base, derived)
		}
		cur = next
	}

	g.base[derived.Identity()] = base
	return nil
}

// BaseDefinition implements BaseResolver by walking override edges to the
// root declaration.
func (g *OverrideGraph) BaseDefinition(m contracts.Method) contracts.Method {
	g.mu.RLock()
	defer g.mu.RUnlock()

	cur := m
	for {
		base, ok := g.base[cur.Identity()]
		if !ok {
			return cur
		}
		cur = base
	}
}
