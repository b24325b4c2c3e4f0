package double

import (
	"reflect"
	"slices"
)

// InvocationRecord is one recorded call: method name, argument snapshot, and
// a monotonic per-double sequence number starting at 0.
type InvocationRecord struct {
	Method string
	Args   []any
	Seq    int
}

// Ledger is the append-only invocation record of a single double. Entries are
// never reordered or removed after append.
type Ledger struct {
	records []InvocationRecord
}

func (l *Ledger) append(method string, args []any) {
	l.records = append(l.records, InvocationRecord{
		Method: method,
		Args:   args,
		Seq:    len(l.records),
	})
}

// All returns every recorded invocation in call order.
func (l *Ledger) All() []InvocationRecord {
	return slices.Clone(l.records)
}

// Of returns the recorded invocations of one method, in call order.
func (l *Ledger) Of(method string) []InvocationRecord {
	var out []InvocationRecord

	for _, rec := range l.records {
		if rec.Method == method {
			out = append(out, rec)
		}
	}

	return out
}

// Count returns the number of recorded invocations of one method.
func (l *Ledger) Count(method string) int {
	count := 0

	for _, rec := range l.records {
		if rec.Method == method {
			count++
		}
	}

	return count
}

// Len returns the total number of recorded invocations.
func (l *Ledger) Len() int {
	return len(l.records)
}

// snapshotArgs copies the argument list for the ledger. By default elements
// share references with the caller; with cloning enabled each element is
// deep-copied so later mutation by the code under test cannot rewrite
// history.
func snapshotArgs(args []any, clone bool) []any {
	if args == nil {
		return nil
	}

	out := make([]any, len(args))

	for i, arg := range args {
		if clone {
			out[i] = cloneValue(arg)
		} else {
			out[i] = arg
		}
	}

	return out
}

func cloneValue(v any) any {
	if v == nil {
		return nil
	}

	return cloneReflected(reflect.ValueOf(v)).Interface()
}

// cloneReflected deep-copies pointers, slices, maps, arrays, and the exported
// fields of structs. Unexported struct fields are carried over by whole-value
// copy and stay shared.
func cloneReflected(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type().Elem())
		out.Elem().Set(cloneReflected(v.Elem()))

		return out
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			out.Index(i).Set(cloneReflected(v.Index(i)))
		}

		return out
	case reflect.Array:
		out := reflect.New(v.Type()).Elem()
		for i := range v.Len() {
			out.Index(i).Set(cloneReflected(v.Index(i)))
		}

		return out
	case reflect.Map:
		if v.IsNil() {
			return v
		}

		out := reflect.MakeMapWithSize(v.Type(), v.Len())
		iter := v.MapRange()

		for iter.Next() {
			out.SetMapIndex(cloneReflected(iter.Key()), cloneReflected(iter.Value()))
		}

		return out
	case reflect.Struct:
		out := reflect.New(v.Type()).Elem()
		out.Set(v)

		for i := range v.NumField() {
			field := out.Field(i)
			if field.CanSet() {
				field.Set(cloneReflected(v.Field(i)))
			}
		}

		return out
	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		out := reflect.New(v.Type()).Elem()
		out.Set(cloneReflected(v.Elem()))

		return out
	default:
		return v
	}
}
