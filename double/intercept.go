package double

import (
	"fmt"
	"reflect"
)

// Invoke routes a call through the interception core:
//
//  1. Reject unknown, static, and non-interceptable operations (the last are
//     passed through to the original, not failed).
//  2. Consult expectation verifiers in registration order; the first one
//     whose argument matcher accepts the call consumes it exclusively, and
//     over-saturation raises ErrUnexpectedInvocation synchronously.
//  3. Append to the invocation ledger. Over-saturated calls are appended too:
//     failures are observable.
//  4. Scan behavior rules in configuration order and execute the first whose
//     matcher accepts the arguments; otherwise delegate to the proxy target;
//     otherwise auto-generate the results.
func (d *Double) Invoke(method string, args ...any) ([]any, error) {
	sig, ok := d.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no operation %q", ErrUnknownMethod, d.name, method)
	}

	if sig.Static {
		return nil, fmt.Errorf("%w: %s.%s", ErrStaticInterception, d.name, method)
	}

	if !sig.Interceptable {
		return d.passthrough(sig, args)
	}

	saturation := d.applyVerifiers(method, args)

	d.ledger.append(method, snapshotArgs(args, d.cloneArgs))

	if saturation != nil {
		return nil, saturation
	}

	for _, r := range d.rules[method] {
		if r.matches(args) {
			return r.action.execute(d, sig, args)
		}
	}

	if d.proxy.IsValid() {
		return d.delegate(sig, args)
	}

	return d.autoResults(sig)
}

// Func returns a typed function value implementing the named operation,
// synthesized with reflect.MakeFunc and routed through Invoke. Engine
// failures (unexpected invocations, thrown errors, unresolvable auto values)
// surface as panics from the returned function, exactly as a raised failure
// surfaces from an intercepted call.
//
// Only operations with concrete type information (reflect-derived surfaces)
// have a typed projection; synthesized signatures fail with
// ErrUnresolvableType.
func (d *Double) Func(method string) (any, error) {
	sig, ok := d.methods[method]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no operation %q", ErrUnknownMethod, d.name, method)
	}

	if sig.ftype == nil {
		return nil, fmt.Errorf("%w: %s.%s carries no concrete type information",
			ErrUnresolvableType, d.name, method)
	}

	return d.makeFunc(method, sig.ftype).Interface(), nil
}

// Bind fills the exported func-typed fields of the struct pointed to by
// target with typed projections of the operations of the same name. This
// mirrors the dependency-struct pattern: the code under test receives a
// struct of functions, every one of which routes through the double.
func (d *Double) Bind(target any) error {
	ptr := reflect.ValueOf(target)
	if ptr.Kind() != reflect.Pointer || ptr.IsNil() || ptr.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("%w: bind target must be a non-nil pointer to struct, got %T",
			ErrUnresolvableType, target)
	}

	fields := ptr.Elem()
	ftypes := fields.Type()

	for i := range fields.NumField() {
		field := fields.Field(i)
		if !field.CanSet() || field.Kind() != reflect.Func {
			continue
		}

		name := ftypes.Field(i).Name
		if _, ok := d.methods[name]; !ok {
			return fmt.Errorf("%w: %s has no operation %q for field %s",
				ErrUnknownMethod, d.name, name, name)
		}

		field.Set(d.makeFunc(name, field.Type()))
	}

	return nil
}

// makeFunc builds the relayer function: it puts the call through Invoke and
// converts the results back to the func type's out values.
func (d *Double) makeFunc(method string, ftype reflect.Type) reflect.Value {
	relayer := func(in []reflect.Value) []reflect.Value {
		args := flattenArgs(ftype, in)

		results, err := d.Invoke(method, args...)
		if err != nil {
			panic(err)
		}

		out := make([]reflect.Value, ftype.NumOut())
		for i := range out {
			out[i] = convertResult(results, i, ftype.Out(i))
		}

		return out
	}

	return reflect.MakeFunc(ftype, relayer)
}

// flattenArgs unreflects the incoming values, expanding a variadic tail so
// the ledger records the arguments the caller actually passed.
func flattenArgs(ftype reflect.Type, in []reflect.Value) []any {
	if len(in) == 0 {
		return nil
	}

	args := []any{}

	for i, v := range in {
		if ftype.IsVariadic() && i == len(in)-1 {
			for j := range v.Len() {
				args = append(args, v.Index(j).Interface())
			}

			continue
		}

		args = append(args, v.Interface())
	}

	return args
}

// convertResult maps one Invoke result onto a static out type. Values that
// cannot satisfy the static type - a nested double standing in for an
// interface it does not implement, or an absent value - fall back to the zero
// value.
func convertResult(results []any, i int, out reflect.Type) reflect.Value {
	if i >= len(results) || results[i] == nil {
		return reflect.Zero(out)
	}

	value := reflect.ValueOf(results[i])
	if value.Type().AssignableTo(out) {
		return value
	}

	return reflect.Zero(out)
}
