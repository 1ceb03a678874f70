package interception

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/glimte/intercept-go/contracts"
)

// MethodPair links an interface method to the method implementing it.
type MethodPair struct {
	Interface      contracts.Method
	Implementation contracts.Method
}

// InterfaceMapper enumerates the interface/implementation method pairs of a
// type, in a stable order.
type InterfaceMapper interface {
	MapInterfaces(implType reflect.Type) ([]MethodPair, error)
}

// ReflectMapper maps implementation types against explicitly registered
// interfaces. Go reflection cannot enumerate the interfaces a type
// satisfies, so interfaces of interest are registered up front and checked
// with reflect.Type.Implements.
type ReflectMapper struct {
	mu         sync.RWMutex
	interfaces []reflect.Type
}

// NewReflectMapper creates a mapper with no registered interfaces.
func NewReflectMapper() *ReflectMapper {
	return &ReflectMapper{}
}

// RegisterInterface registers an interface type via a nil pointer prototype,
// e.g. RegisterInterface((*OrderService)(nil)). Re-registering is a no-op.
func (m *ReflectMapper) RegisterInterface(prototype any) error {
	t := reflect.TypeOf(prototype)
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Interface {
		return fmt.Errorf("expected a nil interface pointer prototype, got %T", prototype)
	}

	iface := t.Elem()

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.interfaces {
		if existing == iface {
			return nil
		}
	}
	m.interfaces = append(m.interfaces, iface)
	return nil
}

// MapInterfaces implements InterfaceMapper. Pairs are ordered by interface
// registration order, then by interface method order, so a method reachable
// through several interfaces is always discovered through the same first
// interface.
func (m *ReflectMapper) MapInterfaces(implType reflect.Type) ([]MethodPair, error) {
	if implType == nil {
		return nil, fmt.Errorf("implementation type is nil")
	}

	m.mu.RLock()
	interfaces := make([]reflect.Type, len(m.interfaces))
	copy(interfaces, m.interfaces)
	m.mu.RUnlock()

	var pairs []MethodPair
	for _, iface := range interfaces {
		if !implType.Implements(iface) {
			continue
		}

		for i := 0; i < iface.NumMethod(); i++ {
			im := iface.Method(i)

			rm, ok := implType.MethodByName(im.Name)
			if !ok {
				return nil, fmt.Errorf("%s implements %s but has no method %s", implType, iface, im.Name)
			}

			ifaceMethod, err := contracts.ForMethod(iface, im)
			if err != nil {
				return nil, err
			}
			implMethod, err := contracts.ForMethod(implType, rm)
			if err != nil {
				return nil, err
			}

			pairs = append(pairs, MethodPair{Interface: ifaceMethod, Implementation: implMethod})
		}
	}

	return pairs, nil
}
