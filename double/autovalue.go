package double

import (
	"fmt"
	"reflect"
)

// maxAutoDepth caps recursive stub synthesis for object-typed returns so a
// self-referential surface cannot loop forever.
const maxAutoDepth = 8

// GenerateValue produces the canonical default value for a type descriptor:
// 0 for integers, 0.0 for floats, false for booleans, the empty string, empty
// sequences, nil for nullable descriptors, a zero struct for concrete object
// descriptors, and a fresh unconfigured stub double for interface-typed
// descriptors. Func, chan, and unresolved descriptors fail with
// ErrUnresolvableType - the engine never guesses.
func GenerateValue(desc TypeDescriptor) (any, error) {
	return autoValue(desc, 0)
}

//nolint:cyclop // one arm per descriptor kind
func autoValue(desc TypeDescriptor, depth int) (any, error) {
	if depth > maxAutoDepth {
		return nil, fmt.Errorf("%w: auto-value recursion deeper than %d levels", ErrUnresolvableType, maxAutoDepth)
	}

	if desc.Nullable {
		return nil, nil //nolint:nilnil // the absent value is the generated value
	}

	switch desc.Kind {
	case KindVoid:
		return nil, nil //nolint:nilnil // void produces no value
	case KindBool:
		return zeroOf(desc.Type, false), nil
	case KindInt:
		return zeroOf(desc.Type, 0), nil
	case KindFloat:
		return zeroOf(desc.Type, 0.0), nil
	case KindString:
		return zeroOf(desc.Type, ""), nil
	case KindSlice:
		return emptySequence(desc.Type), nil
	case KindMap:
		return emptyMap(desc.Type), nil
	case KindObject:
		return autoObject(desc, depth)
	case KindFunc, KindChan, KindUnresolved:
		return nil, fmt.Errorf("%w: no default for %s descriptor %s", ErrUnresolvableType, desc.Kind, typeName(desc.Type))
	default:
		return nil, fmt.Errorf("%w: unrecognized descriptor kind %d", ErrUnresolvableType, desc.Kind)
	}
}

// autoObject produces a zero struct for concrete object descriptors and a
// nested stub double for interface descriptors, so unconfigured chained calls
// resolve without failure.
func autoObject(desc TypeDescriptor, depth int) (any, error) {
	if desc.Type == nil {
		return nil, nil //nolint:nilnil // synthesized object descriptors default to absent
	}

	switch desc.Type.Kind() {
	case reflect.Struct:
		return reflect.Zero(desc.Type).Interface(), nil
	case reflect.Interface:
		surface, err := DescribeType(desc.Type)
		if err != nil {
			return nil, err
		}

		nested, err := buildStub(surface, depth+1)
		if err != nil {
			return nil, err
		}

		return nested, nil
	default:
		return nil, fmt.Errorf("%w: no default for object descriptor %s", ErrUnresolvableType, typeName(desc.Type))
	}
}

// zeroOf prefers the exact reflect zero value so int32, float32, and named
// types come back precisely typed; synthesized descriptors fall back to the
// canonical literal.
func zeroOf(t reflect.Type, canonical any) any {
	if t == nil {
		return canonical
	}

	return reflect.Zero(t).Interface()
}

func emptySequence(t reflect.Type) any {
	if t == nil {
		return []any{}
	}

	if t.Kind() == reflect.Slice {
		return reflect.MakeSlice(t, 0, 0).Interface()
	}

	return reflect.Zero(t).Interface()
}

func emptyMap(t reflect.Type) any {
	if t == nil {
		return map[any]any{}
	}

	return reflect.MakeMapWithSize(t, 0).Interface()
}

func typeName(t reflect.Type) string {
	if t == nil {
		return "<synthesized>"
	}

	return t.String()
}
