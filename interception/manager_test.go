package interception

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glimte/intercept-go/contracts"
)

// mapDeps supplies fixed instances per interceptor type and counts calls.
type mapDeps struct {
	mu        sync.Mutex
	calls     int
	instances map[reflect.Type]any
}

func newMapDeps(instances ...any) *mapDeps {
	d := &mapDeps{instances: make(map[reflect.Type]any)}
	for _, inst := range instances {
		d.instances[reflect.TypeOf(inst)] = inst
	}
	return d
}

func (d *mapDeps) Resolve(_ context.Context, t reflect.Type, _ string) (any, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.calls++
	if inst, ok := d.instances[t]; ok {
		return inst, nil
	}
	return nil, fmt.Errorf("%w: %s", contracts.ErrComponentNotFound, t)
}

func (d *mapDeps) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.calls
}

type orderService interface {
	Place(id string) error
	Cancel(id string) error
}

// refundService shares Place with orderService, so both interfaces route to
// the same implementing method.
type refundService interface {
	Place(id string) error
}

type orders struct{}

func (*orders) Place(id string) error  { return nil }
func (*orders) Cancel(id string) error { return nil }

func managerFixture(t *testing.T, deps DependencyResolver, opts ...ManagerOption) (*PipelineManager, *DeclarationSet) {
	t.Helper()
	set := NewDeclarationSet()
	resolver := NewDeclarationResolver(set, deps)
	return NewPipelineManager(resolver, opts...), set
}

func method(t *testing.T, target any, name string) contracts.Method {
	t.Helper()
	m, err := contracts.MethodOf(target, name)
	assert.NoError(t, err)
	return m
}

func TestGetPipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("unregistered method yields the shared empty pipeline", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())

		p, err := manager.GetPipeline(method(t, &orders{}, "Place"))

		assert.NoError(t, err)
		assert.Same(t, EmptyPipeline, p)
		assert.Equal(t, 0, p.Count())
	})

	t.Run("is reference stable until overwritten", func(t *testing.T) {
		manager, set := managerFixture(t, newMapDeps(&alphaInterceptor{}))
		impl := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(impl, Declaration(&alphaInterceptor{}, 0)))

		nonEmpty, err := manager.InitializePipeline(ctx, nil, impl)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		p1, err1 := manager.GetPipeline(impl)
		p2, err2 := manager.GetPipeline(impl)
		assert.NoError(t, err1)
		assert.NoError(t, err2)
		assert.Same(t, p1, p2)

		replacement := NewPipeline([]Interceptor{&betaInterceptor{}})
		assert.NoError(t, manager.SetPipeline(impl, replacement))

		p3, err3 := manager.GetPipeline(impl)
		assert.NoError(t, err3)
		assert.Same(t, replacement, p3)
	})
}

func TestSetPipeline(t *testing.T) {
	t.Run("last writer wins", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())
		impl := method(t, &orders{}, "Place")

		first := NewPipeline([]Interceptor{&alphaInterceptor{}})
		second := NewPipeline([]Interceptor{&betaInterceptor{}})
		assert.NoError(t, manager.SetPipeline(impl, first))
		assert.NoError(t, manager.SetPipeline(impl, second))

		p, err := manager.GetPipeline(impl)
		assert.NoError(t, err)
		assert.Same(t, second, p)
	})

	t.Run("nil publishes the empty pipeline", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())
		impl := method(t, &orders{}, "Place")

		assert.NoError(t, manager.SetPipeline(impl, nil))

		p, err := manager.GetPipeline(impl)
		assert.NoError(t, err)
		assert.Same(t, EmptyPipeline, p)
	})

	t.Run("rejects zero method", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())

		assert.ErrorIs(t, manager.SetPipeline(contracts.Method{}, EmptyPipeline), contracts.ErrNilMethod)
	})
}

func TestInitializePipeline(t *testing.T) {
	ctx := context.Background()

	t.Run("rejects zero implementation method", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())

		_, err := manager.InitializePipeline(ctx, nil, contracts.Method{})

		assert.ErrorIs(t, err, contracts.ErrNilMethod)
	})

	t.Run("returns whether the pipeline is non-empty", func(t *testing.T) {
		manager, set := managerFixture(t, newMapDeps(&alphaInterceptor{}))
		place := method(t, &orders{}, "Place")
		cancel := method(t, &orders{}, "Cancel")
		assert.NoError(t, set.Declare(place, Declaration(&alphaInterceptor{}, 0)))

		nonEmpty, err := manager.InitializePipeline(ctx, nil, place)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		nonEmpty, err = manager.InitializePipeline(ctx, nil, cancel)
		assert.NoError(t, err)
		assert.False(t, nonEmpty)

		p, err := manager.GetPipeline(cancel)
		assert.NoError(t, err)
		assert.Same(t, EmptyPipeline, p)
	})

	t.Run("interface and implementation share one pipeline object in declared order", func(t *testing.T) {
		manager, set := managerFixture(t, newMapDeps(&alphaInterceptor{}, &betaInterceptor{}, &gammaInterceptor{}))
		iface := method(t, (*orderService)(nil), "Place")
		impl := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(iface,
			Declaration(&alphaInterceptor{}, 2),
			Declaration(&betaInterceptor{}, 1),
		))
		assert.NoError(t, set.Declare(impl, Declaration(&gammaInterceptor{}, 0)))

		nonEmpty, err := manager.InitializePipeline(ctx, &iface, impl)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		implPipeline, err := manager.GetPipeline(impl)
		assert.NoError(t, err)
		ifacePipeline, err := manager.GetPipeline(iface)
		assert.NoError(t, err)

		assert.Same(t, implPipeline, ifacePipeline)
		assert.Equal(t, []string{"gamma", "beta", "alpha"}, interceptorNames(implPipeline.Interceptors()))
	})

	t.Run("publishes nothing when resolution fails", func(t *testing.T) {
		manager, set := managerFixture(t, newMapDeps())
		impl := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(impl, Declaration(&alphaInterceptor{}, 0)))

		_, err := manager.InitializePipeline(ctx, nil, impl)
		assert.ErrorIs(t, err, contracts.ErrComponentNotFound)

		p, err := manager.GetPipeline(impl)
		assert.NoError(t, err)
		assert.Same(t, EmptyPipeline, p)
	})
}

func TestBaseMethodSharing(t *testing.T) {
	ctx := context.Background()

	t.Run("override without own declarations inherits the base pipeline object", func(t *testing.T) {
		graph := NewOverrideGraph()
		deps := newMapDeps(&alphaInterceptor{})
		manager, set := managerFixture(t, deps, WithBaseResolver(graph))

		base := method(t, &rootStore{}, "Load")
		derived := method(t, &midStore{}, "Load")
		assert.NoError(t, graph.DeclareOverride(derived, base))
		assert.NoError(t, set.Declare(base, Declaration(&alphaInterceptor{}, 0)))

		nonEmpty, err := manager.InitializePipeline(ctx, nil, base)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		nonEmpty, err = manager.InitializePipeline(ctx, nil, derived)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		basePipeline, _ := manager.GetPipeline(base)
		derivedPipeline, _ := manager.GetPipeline(derived)
		assert.Same(t, basePipeline, derivedPipeline)
		assert.Equal(t, 1, derivedPipeline.Count())
	})

	t.Run("override with own declarations owns its chain and the base stays empty", func(t *testing.T) {
		graph := NewOverrideGraph()
		deps := newMapDeps(&alphaInterceptor{})
		manager, set := managerFixture(t, deps, WithBaseResolver(graph))

		base := method(t, &rootStore{}, "Load")
		derived := method(t, &midStore{}, "Load")
		assert.NoError(t, graph.DeclareOverride(derived, base))
		assert.NoError(t, set.Declare(derived, Declaration(&alphaInterceptor{}, 0)))

		nonEmpty, err := manager.InitializePipeline(ctx, nil, derived)
		assert.NoError(t, err)
		assert.True(t, nonEmpty)

		derivedPipeline, _ := manager.GetPipeline(derived)
		basePipeline, _ := manager.GetPipeline(base)
		assert.Equal(t, 1, derivedPipeline.Count())
		assert.Same(t, EmptyPipeline, basePipeline)
		assert.NotSame(t, basePipeline, derivedPipeline)
	})

	t.Run("first initialization of an undeclared slot aliases base and derived", func(t *testing.T) {
		graph := NewOverrideGraph()
		manager, _ := managerFixture(t, newMapDeps(), WithBaseResolver(graph))

		base := method(t, &rootStore{}, "Load")
		derived := method(t, &midStore{}, "Load")
		assert.NoError(t, graph.DeclareOverride(derived, base))

		nonEmpty, err := manager.InitializePipeline(ctx, nil, derived)
		assert.NoError(t, err)
		assert.False(t, nonEmpty)

		basePipeline, _ := manager.GetPipeline(base)
		derivedPipeline, _ := manager.GetPipeline(derived)
		assert.Same(t, basePipeline, derivedPipeline)
	})
}

func TestInitializeType(t *testing.T) {
	ctx := context.Background()

	t.Run("initializes every interface method once", func(t *testing.T) {
		mapper := NewReflectMapper()
		assert.NoError(t, mapper.RegisterInterface((*orderService)(nil)))

		deps := newMapDeps(&alphaInterceptor{})
		manager, set := managerFixture(t, deps, WithInterfaceMapper(mapper))

		implPlace := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(implPlace, Declaration(&alphaInterceptor{}, 0)))

		assert.NoError(t, manager.InitializeType(ctx, &orders{}))

		p, err := manager.GetPipeline(implPlace)
		assert.NoError(t, err)
		assert.Equal(t, 1, p.Count())

		ifacePlace := method(t, (*orderService)(nil), "Place")
		ip, err := manager.GetPipeline(ifacePlace)
		assert.NoError(t, err)
		assert.Same(t, p, ip)
	})

	t.Run("deduplicates implementation methods shared by several interfaces", func(t *testing.T) {
		mapper := NewReflectMapper()
		assert.NoError(t, mapper.RegisterInterface((*orderService)(nil)))
		assert.NoError(t, mapper.RegisterInterface((*refundService)(nil)))

		deps := newMapDeps(&alphaInterceptor{})
		manager, set := managerFixture(t, deps, WithInterfaceMapper(mapper))

		implPlace := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(implPlace, Declaration(&alphaInterceptor{}, 0)))

		assert.NoError(t, manager.InitializeType(ctx, &orders{}))

		// One resolver call for Place's single declaration; Cancel has none.
		assert.Equal(t, 1, deps.callCount())

		// First interface wins the link; the second is never registered.
		first, err := manager.GetPipeline(method(t, (*orderService)(nil), "Place"))
		assert.NoError(t, err)
		assert.Equal(t, 1, first.Count())

		second, err := manager.GetPipeline(method(t, (*refundService)(nil), "Place"))
		assert.NoError(t, err)
		assert.Same(t, EmptyPipeline, second)
	})

	t.Run("rejects nil target", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())

		assert.Error(t, manager.InitializeType(ctx, nil))
	})

	t.Run("accepts a reflect.Type target", func(t *testing.T) {
		mapper := NewReflectMapper()
		assert.NoError(t, mapper.RegisterInterface((*orderService)(nil)))
		manager, _ := managerFixture(t, newMapDeps(), WithInterfaceMapper(mapper))

		assert.NoError(t, manager.InitializeType(ctx, reflect.TypeOf(&orders{})))
	})
}

func TestConcurrentInitialization(t *testing.T) {
	ctx := context.Background()

	manager, set := managerFixture(t, newMapDeps(&alphaInterceptor{}))
	impl := method(t, &orders{}, "Place")
	assert.NoError(t, set.Declare(impl, Declaration(&alphaInterceptor{}, 0)))

	const goroutines = 32
	pipelines := make([]*Pipeline, goroutines)

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func(i int) {
			defer wg.Done()

			nonEmpty, err := manager.InitializePipeline(ctx, nil, impl)
			assert.NoError(t, err)
			assert.True(t, nonEmpty)

			p, err := manager.GetPipeline(impl)
			assert.NoError(t, err)
			pipelines[i] = p
		}(i)
	}
	wg.Wait()

	// Exactly one pipeline object is observable by all readers.
	for i := 1; i < goroutines; i++ {
		assert.Same(t, pipelines[0], pipelines[i])
	}
	assert.Equal(t, 1, pipelines[0].Count())
}

func TestManagerClose(t *testing.T) {
	ctx := context.Background()

	t.Run("operations on a disposed manager fail distinguishably", func(t *testing.T) {
		manager, set := managerFixture(t, newMapDeps(&alphaInterceptor{}))
		impl := method(t, &orders{}, "Place")
		assert.NoError(t, set.Declare(impl, Declaration(&alphaInterceptor{}, 0)))

		assert.NoError(t, manager.Close())

		_, err := manager.GetPipeline(impl)
		assert.ErrorIs(t, err, contracts.ErrManagerDisposed)

		assert.ErrorIs(t, manager.SetPipeline(impl, EmptyPipeline), contracts.ErrManagerDisposed)

		_, err = manager.InitializePipeline(ctx, nil, impl)
		assert.ErrorIs(t, err, contracts.ErrManagerDisposed)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		manager, _ := managerFixture(t, newMapDeps())

		assert.NoError(t, manager.Close())
		assert.NoError(t, manager.Close())
	})
}
