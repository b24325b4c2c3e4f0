package double

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// TestReporter is the slice of testing.TB the engine needs. Satisfied by
// *testing.T and *testing.B.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// Double is a synthesized substitute object: the method surface of a target
// plus a behavior table, an append-only invocation ledger, and zero or more
// expectation verifiers. Create one through NewStub, NewMock, FromMap, or the
// Configure builder; configure it; exercise it; then hand it to FinalizeAll.
//
// A double is exclusively owned by the test scope that created it. All
// operations are synchronous; nothing here locks.
type Double struct {
	name        string
	methods     map[string]MethodSignature
	rules       map[string][]*rule
	verifiers   []*Expectation
	verifierTab map[string][]*Expectation
	ledger      *Ledger
	proxy       reflect.Value
	reporter    TestReporter
	verifiable  bool
	cloneArgs   bool
	keepClone   bool
	autoDepth   int
}

// Name returns the double's name: the configured override or
// "DoubleOf<Target>".
func (d *Double) Name() string {
	return d.name
}

func (d *Double) String() string {
	return d.name
}

// MethodNames returns the sorted names of every exposed operation.
func (d *Double) MethodNames() []string {
	return slices.Sorted(maps.Keys(d.methods))
}

// SignatureOf returns the signature of an exposed operation.
func (d *Double) SignatureOf(method string) (MethodSignature, bool) {
	sig, ok := d.methods[method]

	return sig, ok
}

// OriginalCloneEnabled reports whether the clone-invocation flag was set.
// Clone policy execution belongs to the host-language collaborator; the
// engine only carries the flag.
func (d *Double) OriginalCloneEnabled() bool {
	return d.keepClone
}

// On starts a stubbing rule for the named operation. Rules are matched in
// configuration order; the first rule whose matcher accepts the actual
// arguments wins.
func (d *Double) On(method string) *Stubbing {
	stubbing := &Stubbing{d: d, method: method}
	stubbing.sig, stubbing.err = d.configurable(method)

	return stubbing
}

// Expect starts an expectation for the named operation. Only doubles built as
// mocks accept expectations.
func (d *Double) Expect(method string) *Expectation {
	expectation := &Expectation{d: d, method: method}

	if !d.verifiable {
		expectation.err = fmt.Errorf("%w: %s is a stub", ErrNotAMock, d.name)

		return expectation
	}

	_, expectation.err = d.configurable(method)

	return expectation
}

// configurable validates that a method can carry rules or expectations.
func (d *Double) configurable(method string) (MethodSignature, error) {
	sig, ok := d.methods[method]
	if !ok {
		return sig, fmt.Errorf("%w: %s has no operation %q", ErrUnknownMethod, d.name, method)
	}

	if sig.Static {
		return sig, fmt.Errorf("%w: %s.%s", ErrStaticInterception, d.name, method)
	}

	if !sig.Interceptable {
		return sig, fmt.Errorf("%w: %s.%s is not interceptable", ErrUnknownMethod, d.name, method)
	}

	return sig, nil
}

// Invocations returns every recorded call in call order.
func (d *Double) Invocations() []InvocationRecord {
	return d.ledger.All()
}

// InvocationsOf returns the recorded calls of one method, in call order.
func (d *Double) InvocationsOf(method string) []InvocationRecord {
	return d.ledger.Of(method)
}

// CallCount returns how many times a method was invoked.
func (d *Double) CallCount(method string) int {
	return d.ledger.Count(method)
}

// autoResults generates the default value for each result of a signature.
func (d *Double) autoResults(sig MethodSignature) ([]any, error) {
	if len(sig.Results) == 0 {
		return nil, nil
	}

	out := make([]any, 0, len(sig.Results))

	for _, desc := range sig.Results {
		if desc.Kind == KindVoid {
			continue
		}

		value, err := autoValue(desc, d.autoDepth)
		if err != nil {
			return nil, err
		}

		out = append(out, value)
	}

	return out, nil
}

// delegate forwards a call to the proxy target's method of the same name.
func (d *Double) delegate(sig MethodSignature, args []any) ([]any, error) {
	method := d.proxy.MethodByName(sig.Name)
	if !method.IsValid() {
		return nil, fmt.Errorf("%w: proxy target %s has no method %q",
			ErrUnknownMethod, d.proxy.Type(), sig.Name)
	}

	return invokeFunc(method, args)
}

// passthrough handles non-interceptable members: original behavior when an
// original exists, otherwise the auto default. Never recorded, never
// verified.
func (d *Double) passthrough(sig MethodSignature, args []any) ([]any, error) {
	if d.proxy.IsValid() {
		return d.delegate(sig, args)
	}

	return d.autoResults(sig)
}
