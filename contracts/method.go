package contracts

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// Identity canonically identifies a method for pipeline lookup. It is
// structural: two reflective handles that denote the same logical method
// produce equal identities, and distinct closed instantiations of one
// generic type collapse to the identity of the generic definition.
//
// An interface method and the implementation method that satisfies it have
// different identities; linking them is the pipeline manager's job.
type Identity struct {
	Declaring string // declaring type with generic type arguments stripped
	Method    string
	Signature string // canonical parameter signature
	TypeArity int    // number of type arguments on the declaring type
}

// String returns a printable form of the identity.
func (id Identity) String() string {
	return fmt.Sprintf("%s.%s(%s)", id.Declaring, id.Method, id.Signature)
}

// IsZero reports whether the identity is the zero value.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

// Method describes a single method on a declaring type. The zero Method is
// invalid and is rejected by every operation that consumes one.
type Method struct {
	declaring reflect.Type
	name      string
	identity  Identity
}

// MethodOf returns the descriptor for a named method on the target's type.
// Pass a value (or pointer, for pointer-receiver methods) for concrete
// types, or a nil pointer to an interface type, e.g. (*OrderService)(nil),
// for interface methods.
func MethodOf(target any, name string) (Method, error) {
	if target == nil {
		return Method{}, fmt.Errorf("%w: target is nil", ErrNilMethod)
	}

	t := reflect.TypeOf(target)
	if t.Kind() == reflect.Ptr && t.Elem().Kind() == reflect.Interface {
		t = t.Elem()
	}

	m, ok := t.MethodByName(name)
	if !ok {
		return Method{}, fmt.Errorf("%w: %s has no method %s", ErrNilMethod, t, name)
	}

	return ForMethod(t, m)
}

// ForMethod returns the descriptor for a reflective method of the declaring
// type, normalizing the identity per the rules on Identity.
func ForMethod(declaring reflect.Type, m reflect.Method) (Method, error) {
	if declaring == nil {
		return Method{}, fmt.Errorf("%w: declaring type is nil", ErrNilMethod)
	}
	if m.Name == "" || m.Type == nil {
		return Method{}, fmt.Errorf("%w: empty reflect.Method", ErrNilMethod)
	}

	base, arity := splitGenericName(declaring.String())

	// Methods on concrete types carry the receiver as parameter zero;
	// interface methods do not.
	offset := 0
	if declaring.Kind() != reflect.Interface {
		offset = 1
	}

	return Method{
		declaring: declaring,
		name:      m.Name,
		identity: Identity{
			Declaring: base,
			Method:    m.Name,
			Signature: canonicalSignature(m.Type, offset, arity > 0),
			TypeArity: arity,
		},
	}, nil
}

// Declaring returns the declaring type the descriptor was built from.
func (m Method) Declaring() reflect.Type { return m.declaring }

// Name returns the method name.
func (m Method) Name() string { return m.name }

// Identity returns the lookup key for the method.
func (m Method) Identity() Identity { return m.identity }

// IsZero reports whether the descriptor is the zero value.
func (m Method) IsZero() bool { return m.identity.IsZero() }

// String returns the method's identity in printable form.
func (m Method) String() string { return m.identity.String() }

// splitGenericName strips the instantiation arguments from a reflected type
// name: "pkg.Box[int,string]" yields ("pkg.Box", 2).
func splitGenericName(name string) (string, int) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, 0
	}

	args := name[open+1 : len(name)-1]
	arity := 1
	depth := 0
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				arity++
			}
		}
	}

	return name[:open], arity
}

// canonicalSignature renders the parameter list of a method func type.
// For methods declared on generic types the signature degrades to the
// parameter count: reflection only sees the instantiated parameter types,
// so occurrences of a type parameter cannot be told apart from
// coincidentally equal concrete types. Method names are unique per type in
// Go, so the count is sufficient to keep identities distinct.
func canonicalSignature(fn reflect.Type, offset int, generic bool) string {
	n := fn.NumIn() - offset
	if generic {
		return strconv.Itoa(n)
	}

	params := make([]string, 0, n)
	for i := offset; i < fn.NumIn(); i++ {
		params = append(params, fn.In(i).String())
	}
	return strings.Join(params, ",")
}
