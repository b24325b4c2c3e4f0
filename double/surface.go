package double

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// Kind classifies a type descriptor for auto-value generation.
type Kind int

const (
	KindVoid Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSlice
	KindMap
	KindObject
	KindFunc
	KindChan
	KindUnresolved
)

// String returns a readable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindVoid:
		return "void"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindSlice:
		return "slice"
	case KindMap:
		return "map"
	case KindObject:
		return "object"
	case KindFunc:
		return "func"
	case KindChan:
		return "chan"
	case KindUnresolved:
		return "unresolved"
	default:
		return "unknown"
	}
}

// TypeDescriptor describes a parameter or result type. Type is nil for
// synthesized descriptors (additional methods, FromMap surfaces); those are
// judged by Kind alone.
type TypeDescriptor struct {
	Kind     Kind
	Nullable bool
	Type     reflect.Type
}

//nolint:gochecknoglobals // canonical reflect.Type for the error interface
var errType = reflect.TypeOf((*error)(nil)).Elem()

// DescriptorOf derives a TypeDescriptor from a reflect type. A nil type
// produces a nullable object descriptor (the absent value).
func DescriptorOf(t reflect.Type) TypeDescriptor {
	if t == nil {
		return TypeDescriptor{Kind: KindObject, Nullable: true}
	}

	switch t.Kind() {
	case reflect.Bool:
		return TypeDescriptor{Kind: KindBool, Type: t}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return TypeDescriptor{Kind: KindInt, Type: t}
	case reflect.Float32, reflect.Float64:
		return TypeDescriptor{Kind: KindFloat, Type: t}
	case reflect.String:
		return TypeDescriptor{Kind: KindString, Type: t}
	case reflect.Slice, reflect.Array:
		return TypeDescriptor{Kind: KindSlice, Type: t}
	case reflect.Map:
		return TypeDescriptor{Kind: KindMap, Type: t}
	case reflect.Pointer:
		return TypeDescriptor{Kind: KindObject, Nullable: true, Type: t}
	case reflect.Interface:
		// error is nullable by Go convention - an absent error means success.
		return TypeDescriptor{Kind: KindObject, Nullable: t == errType, Type: t}
	case reflect.Struct:
		return TypeDescriptor{Kind: KindObject, Type: t}
	case reflect.Func:
		return TypeDescriptor{Kind: KindFunc, Type: t}
	case reflect.Chan:
		return TypeDescriptor{Kind: KindChan, Type: t}
	default:
		return TypeDescriptor{Kind: KindUnresolved, Type: t}
	}
}

// compatible reports whether two descriptors agree. Descriptors with concrete
// reflect types compare by type identity; synthesized descriptors compare by
// kind.
func (d TypeDescriptor) compatible(o TypeDescriptor) bool {
	if d.Type != nil && o.Type != nil {
		return d.Type == o.Type
	}

	return d.Kind == o.Kind
}

// MethodSignature describes one callable operation on a surface. Immutable
// once resolved.
type MethodSignature struct {
	Name          string
	Params        []TypeDescriptor
	Results       []TypeDescriptor
	Variadic      bool
	Static        bool
	Interceptable bool

	// ftype is the receiverless func type backing the typed projection.
	// Nil for synthesized signatures.
	ftype reflect.Type
}

// MethodOf builds an interceptable signature from a name and a function
// prototype, e.g. MethodOf("Ping", (func(int) string)(nil)).
func MethodOf(name string, prototype any) MethodSignature {
	return signatureFromFuncType(name, reflect.TypeOf(prototype), true)
}

// StaticMethodOf builds a static-shaped signature. Static operations are
// exposed on a double but always fail when invoked.
func StaticMethodOf(name string, prototype any) MethodSignature {
	sig := signatureFromFuncType(name, reflect.TypeOf(prototype), false)
	sig.Static = true

	return sig
}

func signatureFromFuncType(name string, ftype reflect.Type, interceptable bool) MethodSignature {
	if ftype == nil || ftype.Kind() != reflect.Func {
		return MethodSignature{Name: name, Interceptable: interceptable}
	}

	params := make([]TypeDescriptor, ftype.NumIn())
	for i := range params {
		params[i] = DescriptorOf(ftype.In(i))
	}

	results := make([]TypeDescriptor, ftype.NumOut())
	for i := range results {
		results[i] = DescriptorOf(ftype.Out(i))
	}

	return MethodSignature{
		Name:          name,
		Params:        params,
		Results:       results,
		Variadic:      ftype.IsVariadic(),
		Interceptable: interceptable,
		ftype:         ftype,
	}
}

// compatibleWith reports whether two signatures could describe the same
// operation.
func (s MethodSignature) compatibleWith(o MethodSignature) bool {
	if s.Variadic != o.Variadic || s.Static != o.Static {
		return false
	}

	if len(s.Params) != len(o.Params) || len(s.Results) != len(o.Results) {
		return false
	}

	for i := range s.Params {
		if !s.Params[i].compatible(o.Params[i]) {
			return false
		}
	}

	for i := range s.Results {
		if !s.Results[i].compatible(o.Results[i]) {
			return false
		}
	}

	return true
}

// Surface is a method surface descriptor: the set of callable operations a
// target exposes. Immutable once resolved.
type Surface struct {
	name    string
	methods map[string]MethodSignature
}

// NewSurface builds a surface from explicit signatures. Duplicate method
// names fail with ErrMethodConflict.
func NewSurface(name string, sigs ...MethodSignature) (*Surface, error) {
	methods := make(map[string]MethodSignature, len(sigs))

	for _, sig := range sigs {
		if _, ok := methods[sig.Name]; ok {
			return nil, fmt.Errorf("%w: %q declared twice on surface %q", ErrMethodConflict, sig.Name, name)
		}

		methods[sig.Name] = sig
	}

	return &Surface{name: name, methods: methods}, nil
}

// Name returns the target name this surface describes.
func (s *Surface) Name() string {
	return s.name
}

// MethodNames returns the sorted operation names.
func (s *Surface) MethodNames() []string {
	return slices.Sorted(maps.Keys(s.methods))
}

// Signature returns the signature for an operation name.
func (s *Surface) Signature(name string) (MethodSignature, bool) {
	sig, ok := s.methods[name]

	return sig, ok
}

// MergeSurfaces unions the signatures of several surfaces. Two inputs
// declaring the same method name with incompatible signatures fail with
// ErrIncompatibleSurface; identical declarations coalesce.
func MergeSurfaces(surfaces ...*Surface) (*Surface, error) {
	names := make([]string, 0, len(surfaces))
	methods := make(map[string]MethodSignature)

	for _, s := range surfaces {
		names = append(names, s.name)

		for name, sig := range s.methods {
			existing, ok := methods[name]
			if !ok {
				methods[name] = sig

				continue
			}

			if !existing.compatibleWith(sig) {
				return nil, fmt.Errorf(
					"%w: method %q declared with conflicting signatures", ErrIncompatibleSurface, name)
			}

			// Prefer the declaration that carries concrete type information.
			if existing.ftype == nil && sig.ftype != nil {
				methods[name] = sig
			}
		}
	}

	return &Surface{name: strings.Join(names, "+"), methods: methods}, nil
}

// DescribeInterface resolves the method surface of an interface type. This is
// the default introspection collaborator.
func DescribeInterface[T any]() (*Surface, error) {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Kind() != reflect.Interface {
		return nil, fmt.Errorf("%w: %s is not an interface", ErrUnresolvableType, t)
	}

	return DescribeType(t)
}

// DescribeType resolves the method surface of an interface or struct type.
// Struct surfaces include pointer-receiver methods; unexported methods are
// reported non-interceptable.
func DescribeType(t reflect.Type) (*Surface, error) {
	switch t.Kind() {
	case reflect.Interface:
		sigs := make([]MethodSignature, 0, t.NumMethod())

		for i := range t.NumMethod() {
			m := t.Method(i)
			// Interface method types carry no receiver.
			sig := signatureFromFuncType(m.Name, m.Type, m.PkgPath == "")
			sigs = append(sigs, sig)
		}

		return NewSurface(t.Name(), sigs...)
	case reflect.Struct, reflect.Pointer:
		pt := t
		if t.Kind() == reflect.Struct {
			pt = reflect.PointerTo(t)
		}

		if pt.Elem().Kind() != reflect.Struct {
			return nil, fmt.Errorf("%w: cannot describe %s", ErrUnresolvableType, t)
		}

		sigs := make([]MethodSignature, 0, pt.NumMethod())

		for i := range pt.NumMethod() {
			m := pt.Method(i)
			sigs = append(sigs, signatureFromFuncType(m.Name, receiverless(m.Type), m.PkgPath == ""))
		}

		return NewSurface(pt.Elem().Name(), sigs...)
	default:
		return nil, fmt.Errorf("%w: cannot describe %s", ErrUnresolvableType, t)
	}
}

// receiverless strips the receiver from a concrete method's func type.
func receiverless(ftype reflect.Type) reflect.Type {
	ins := make([]reflect.Type, 0, ftype.NumIn()-1)
	for i := 1; i < ftype.NumIn(); i++ {
		ins = append(ins, ftype.In(i))
	}

	outs := make([]reflect.Type, 0, ftype.NumOut())
	for i := range ftype.NumOut() {
		outs = append(outs, ftype.Out(i))
	}

	return reflect.FuncOf(ins, outs, ftype.IsVariadic())
}
