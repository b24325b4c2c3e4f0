package double

import (
	"fmt"
	"reflect"
)

type actionKind int

const (
	actReturnValue actionKind = iota
	actReturnArgument
	actReturnSelf
	actReturnMap
	actReturnSequence
	actCallback
	actThrow
	actPanic
	actCallOriginal
)

// MapEntry pairs a tuple of leading argument values with the values to return
// when a call's arguments start with that tuple.
type MapEntry struct {
	Args    []any
	Returns []any
}

// action is the tagged variant a behavior rule executes.
type action struct {
	kind     actionKind
	values   []any
	argIndex int
	entries  []MapEntry
	sequence [][]any
	seqNext  int
	strict   bool
	callback reflect.Value
	thrown   error
	panicVal any
}

// rule is one (argument matcher, action) pair. A nil matcher list accepts any
// arguments.
type rule struct {
	matchers []any
	action   *action
}

func (r *rule) matches(args []any) bool {
	return matchersAccept(r.matchers, args)
}

func (a *action) execute(d *Double, sig MethodSignature, args []any) ([]any, error) {
	switch a.kind {
	case actReturnValue:
		return a.values, nil
	case actReturnArgument:
		if a.argIndex >= len(args) {
			return nil, fmt.Errorf("%w: %s.%s received %d arguments, cannot return argument %d",
				ErrReturnTypeMismatch, d.name, sig.Name, len(args), a.argIndex)
		}

		return []any{args[a.argIndex]}, nil
	case actReturnSelf:
		return []any{d}, nil
	case actReturnMap:
		for _, entry := range a.entries {
			if leadingArgsEqual(args, entry.Args) {
				return entry.Returns, nil
			}
		}

		// No entry keyed by these arguments: fall through to the default.
		return d.autoResults(sig)
	case actReturnSequence:
		if a.seqNext < len(a.sequence) {
			values := a.sequence[a.seqNext]
			a.seqNext++

			return values, nil
		}

		if a.strict {
			return nil, fmt.Errorf("%w: %s.%s consumed all %d configured values",
				ErrSequenceExhausted, d.name, sig.Name, len(a.sequence))
		}

		return a.sequence[len(a.sequence)-1], nil
	case actCallback:
		return invokeFunc(a.callback, args)
	case actThrow:
		// Raised verbatim, never wrapped.
		return nil, a.thrown
	case actPanic:
		panic(a.panicVal)
	case actCallOriginal:
		return d.delegate(sig, args)
	default:
		panic(fmt.Sprintf("unrecognized action kind %d", a.kind))
	}
}

func leadingArgsEqual(args, key []any) bool {
	if len(args) < len(key) {
		return false
	}

	for i, want := range key {
		if !reflect.DeepEqual(args[i], want) {
			return false
		}
	}

	return true
}

// Stubbing is the fluent handle returned by Double.On. Configure the argument
// matcher with With/WithAnyArgs, then pick an action with one of the terminal
// verbs. Terminal verbs report configuration errors; rules are applied in the
// order their terminal verbs ran.
type Stubbing struct {
	d        *Double
	method   string
	sig      MethodSignature
	matchers []any
	err      error
}

// With restricts the rule to calls whose arguments match position by
// position. Plain values compare with DeepEqual; values implementing the
// Matcher interface (including gomega matchers) are consulted directly.
func (s *Stubbing) With(argsOrMatchers ...any) *Stubbing {
	if s.err != nil {
		return s
	}

	if s.sig.ftype != nil && !s.sig.Variadic && len(argsOrMatchers) != len(s.sig.Params) {
		s.err = fmt.Errorf("%w: %s.%s takes %d arguments, matcher list has %d",
			ErrReturnTypeMismatch, s.d.name, s.method, len(s.sig.Params), len(argsOrMatchers))

		return s
	}

	s.matchers = argsOrMatchers

	return s
}

// WithAnyArgs makes the rule accept every argument list. This is the default.
func (s *Stubbing) WithAnyArgs() *Stubbing {
	s.matchers = nil

	return s
}

// Return configures a fixed-value rule. The values are validated against the
// method's result signature now, not at call time.
func (s *Stubbing) Return(values ...any) error {
	if s.err != nil {
		return s.err
	}

	if err := validateReturns(s.d.name, s.sig, values); err != nil {
		return err
	}

	s.add(&action{kind: actReturnValue, values: values})

	return nil
}

// ReturnArgument configures the rule to echo back the argument at the given
// position.
func (s *Stubbing) ReturnArgument(index int) error {
	if s.err != nil {
		return s.err
	}

	if index < 0 {
		return fmt.Errorf("%w: negative argument index %d", ErrReturnTypeMismatch, index)
	}

	if s.sig.ftype != nil && !s.sig.Variadic && index >= len(s.sig.Params) {
		return fmt.Errorf("%w: %s.%s takes %d arguments, cannot return argument %d",
			ErrReturnTypeMismatch, s.d.name, s.method, len(s.sig.Params), index)
	}

	s.add(&action{kind: actReturnArgument, argIndex: index})

	return nil
}

// ReturnSelf configures the rule to return the double itself, enabling
// fluent-interface stubbing. Only surfaces through the dynamic Invoke path;
// the typed projection substitutes a zero value when the double cannot
// satisfy the static result type.
func (s *Stubbing) ReturnSelf() error {
	if s.err != nil {
		return s.err
	}

	if len(s.sig.Results) != 1 {
		return fmt.Errorf("%w: %s.%s must have exactly one result to return self",
			ErrReturnTypeMismatch, s.d.name, s.method)
	}

	if res := s.sig.Results[0]; res.Type != nil && res.Type.Kind() != reflect.Interface {
		return fmt.Errorf("%w: %s.%s result %s cannot hold the double",
			ErrReturnTypeMismatch, s.d.name, s.method, res.Type)
	}

	s.add(&action{kind: actReturnSelf})

	return nil
}

// ReturnMap configures a value-lookup rule keyed by leading arguments. Calls
// whose arguments match no entry fall through to the auto-generated default.
func (s *Stubbing) ReturnMap(entries ...MapEntry) error {
	if s.err != nil {
		return s.err
	}

	for _, entry := range entries {
		if err := validateReturns(s.d.name, s.sig, entry.Returns); err != nil {
			return err
		}
	}

	s.add(&action{kind: actReturnMap, entries: entries})

	return nil
}

// ReturnSequence configures an ordered sequence of single return values
// consumed one per call. Exhaustion policy: the last value repeats. Use
// ReturnSequenceStrict to fail on exhaustion instead.
func (s *Stubbing) ReturnSequence(values ...any) error {
	return s.returnSequence(values, false)
}

// ReturnSequenceStrict configures an ordered sequence of single return values
// consumed one per call. Exhaustion policy: further calls fail with
// ErrSequenceExhausted.
func (s *Stubbing) ReturnSequenceStrict(values ...any) error {
	return s.returnSequence(values, true)
}

func (s *Stubbing) returnSequence(values []any, strict bool) error {
	if s.err != nil {
		return s.err
	}

	if len(values) == 0 {
		return fmt.Errorf("%w: %s.%s sequence needs at least one value",
			ErrReturnTypeMismatch, s.d.name, s.method)
	}

	if len(s.sig.Results) != 1 {
		return fmt.Errorf("%w: %s.%s must have exactly one result for a sequence; use Call for tuples",
			ErrReturnTypeMismatch, s.d.name, s.method)
	}

	sequence := make([][]any, len(values))

	for i, v := range values {
		if err := validateReturns(s.d.name, s.sig, []any{v}); err != nil {
			return err
		}

		sequence[i] = []any{v}
	}

	s.add(&action{kind: actReturnSequence, sequence: sequence, strict: strict})

	return nil
}

// Call configures the rule to invoke a callback with the actual arguments and
// return its results. A panic inside the callback propagates verbatim.
func (s *Stubbing) Call(callback any) error {
	if s.err != nil {
		return s.err
	}

	fn := reflect.ValueOf(callback)
	if !fn.IsValid() || fn.Kind() != reflect.Func {
		return fmt.Errorf("%w: callback for %s.%s must be a function, got %T",
			ErrReturnTypeMismatch, s.d.name, s.method, callback)
	}

	if s.sig.ftype != nil && !fn.Type().IsVariadic() && !s.sig.Variadic &&
		fn.Type().NumIn() != len(s.sig.Params) {
		return fmt.Errorf("%w: callback for %s.%s takes %d arguments, method has %d",
			ErrReturnTypeMismatch, s.d.name, s.method, fn.Type().NumIn(), len(s.sig.Params))
	}

	s.add(&action{kind: actCallback, callback: fn})

	return nil
}

// Throw configures the rule to raise the given error verbatim.
func (s *Stubbing) Throw(err error) error {
	if s.err != nil {
		return s.err
	}

	s.add(&action{kind: actThrow, thrown: err})

	return nil
}

// PanicWith configures the rule to panic with the given value verbatim.
func (s *Stubbing) PanicWith(value any) error {
	if s.err != nil {
		return s.err
	}

	s.add(&action{kind: actPanic, panicVal: value})

	return nil
}

// CallOriginal configures the rule to delegate to the proxy target.
func (s *Stubbing) CallOriginal() error {
	if s.err != nil {
		return s.err
	}

	if !s.d.proxy.IsValid() {
		return fmt.Errorf("%w: %s has no original to call for %s",
			ErrNoProxyTarget, s.d.name, s.method)
	}

	s.add(&action{kind: actCallOriginal})

	return nil
}

func (s *Stubbing) add(act *action) {
	s.d.rules[s.method] = append(s.d.rules[s.method], &rule{matchers: s.matchers, action: act})
}

// validateReturns checks configured values against the result signature at
// configuration time so a bad stub fails where it was written.
func validateReturns(doubleName string, sig MethodSignature, values []any) error {
	if len(values) != len(sig.Results) {
		return fmt.Errorf("%w: %s.%s has %d results, %d values configured",
			ErrReturnTypeMismatch, doubleName, sig.Name, len(sig.Results), len(values))
	}

	for i, v := range values {
		desc := sig.Results[i]

		if v == nil {
			if !nilable(desc) {
				return fmt.Errorf("%w: %s.%s result %d (%s) cannot be nil",
					ErrReturnTypeMismatch, doubleName, sig.Name, i, desc.Kind)
			}

			continue
		}

		if desc.Type != nil && !reflect.TypeOf(v).AssignableTo(desc.Type) {
			return fmt.Errorf("%w: %s.%s result %d wants %s, got %T",
				ErrReturnTypeMismatch, doubleName, sig.Name, i, desc.Type, v)
		}
	}

	return nil
}

func nilable(desc TypeDescriptor) bool {
	if desc.Nullable {
		return true
	}

	if desc.Type == nil {
		return desc.Kind == KindObject || desc.Kind == KindSlice || desc.Kind == KindMap
	}

	switch desc.Type.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Slice, reflect.Map, reflect.Chan, reflect.Func:
		return true
	default:
		return false
	}
}

// invokeFunc calls fn with the given args, converting untyped nils to the
// parameter's zero value. Variadic functions receive the tail flattened.
// Arity is checked here so a mismatched proxy method or callback fails with
// an error instead of a reflect panic.
func invokeFunc(fn reflect.Value, args []any) ([]any, error) {
	ftype := fn.Type()

	if ftype.IsVariadic() {
		if len(args) < ftype.NumIn()-1 {
			return nil, fmt.Errorf("%w: %s needs at least %d arguments, got %d",
				ErrIncompatibleSurface, ftype, ftype.NumIn()-1, len(args))
		}
	} else if len(args) != ftype.NumIn() {
		return nil, fmt.Errorf("%w: %s takes %d arguments, got %d",
			ErrIncompatibleSurface, ftype, ftype.NumIn(), len(args))
	}

	in := make([]reflect.Value, len(args))

	for i, arg := range args {
		paramType := variadicAwareIn(ftype, i)

		if arg == nil {
			in[i] = reflect.Zero(paramType)

			continue
		}

		in[i] = reflect.ValueOf(arg)
	}

	out := fn.Call(in)

	results := make([]any, len(out))
	for i, v := range out {
		results[i] = v.Interface()
	}

	return results, nil
}

// variadicAwareIn returns the effective parameter type at position i,
// unwrapping the variadic tail's element type.
func variadicAwareIn(ftype reflect.Type, i int) reflect.Type {
	last := ftype.NumIn() - 1

	if ftype.IsVariadic() && i >= last {
		return ftype.In(last).Elem()
	}

	if i < ftype.NumIn() {
		return ftype.In(i)
	}

	return reflect.TypeOf((*any)(nil)).Elem()
}
