package double

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
)

// Constructor is the construction collaborator: invoked at build time when
// construction is enabled, its product becomes the proxy target unless one
// was configured explicitly.
type Constructor func(args ...any) (any, error)

// Builder accumulates a build configuration for the double factory. Obtain
// one with Configure; every option returns the builder for chaining; Build
// consumes it exactly once.
type Builder struct {
	surface      *Surface
	only         []string
	additional   []MethodSignature
	ctor         Constructor
	ctorArgs     []any
	construction bool
	keepClone    bool
	cloneArgs    bool
	proxy        any
	name         string
	reporter     TestReporter
	verifiable   bool
	consumed     bool
}

// Configure starts a build configuration for the given surface with
// best-practice defaults: construction and clone invocation suppressed,
// argument cloning disabled, verification enabled.
func Configure(surface *Surface) *Builder {
	return &Builder{surface: surface, verifiable: true}
}

// OnlyMethods restricts interception to the named methods. Everything else on
// the surface passes through. Validated against the surface at build time.
func (b *Builder) OnlyMethods(names ...string) *Builder {
	b.only = names

	return b
}

// AddMethods exposes operations that are not present on the original surface,
// purely as interceptable stubs. Validated disjoint from the surface at build
// time.
func (b *Builder) AddMethods(sigs ...MethodSignature) *Builder {
	b.additional = append(b.additional, sigs...)

	return b
}

// EnableConstruction makes the factory invoke the construction collaborator
// with the given arguments. Default: construction is skipped entirely and
// fields default-initialize.
func (b *Builder) EnableConstruction(ctor Constructor, args ...any) *Builder {
	b.ctor = ctor
	b.ctorArgs = args
	b.construction = true

	return b
}

// EnableOriginalClone records the clone-invocation flag. Clone policy
// execution is the host-language collaborator's concern; the engine carries
// the flag and exposes it through Double.OriginalCloneEnabled.
func (b *Builder) EnableOriginalClone() *Builder {
	b.keepClone = true

	return b
}

// CloneArguments deep-copies argument snapshots into the ledger instead of
// sharing references with the caller.
func (b *Builder) CloneArguments() *Builder {
	b.cloneArgs = true

	return b
}

// ProxyTo delegates calls with no matching rule to an existing instance.
func (b *Builder) ProxyTo(target any) *Builder {
	b.proxy = target

	return b
}

// Named overrides the double's name. Default: "DoubleOf<Target>".
func (b *Builder) Named(name string) *Builder {
	b.name = name

	return b
}

// WithReporter attaches a test reporter used by the scope registry when it
// surfaces verification failures.
func (b *Builder) WithReporter(t TestReporter) *Builder {
	b.reporter = t

	return b
}

// StubOnly disables verification: the built double rejects Expect.
func (b *Builder) StubOnly() *Builder {
	b.verifiable = false

	return b
}

// Build runs the double factory over the accumulated configuration. The
// configuration is consumed: a second Build fails with ErrConfigConsumed.
func (b *Builder) Build() (*Double, error) {
	if b.consumed {
		return nil, ErrConfigConsumed
	}

	b.consumed = true

	if b.surface == nil {
		return nil, fmt.Errorf("%w: no surface to build from", ErrIncompatibleSurface)
	}

	methods := maps.Clone(b.surface.methods)

	for _, name := range b.only {
		if _, ok := methods[name]; !ok {
			return nil, fmt.Errorf("%w: restricted method %q is not on surface %s",
				ErrUnknownMethod, name, b.surface.name)
		}
	}

	if len(b.only) > 0 {
		for name, sig := range methods {
			if !slices.Contains(b.only, name) {
				sig.Interceptable = false
				methods[name] = sig
			}
		}
	}

	for _, sig := range b.additional {
		if _, ok := methods[sig.Name]; ok {
			return nil, fmt.Errorf("%w: additional method %q already on surface %s",
				ErrMethodConflict, sig.Name, b.surface.name)
		}

		if !sig.Static {
			sig.Interceptable = true
		}

		methods[sig.Name] = sig
	}

	proxy := b.proxy

	if b.construction && b.ctor != nil {
		built, err := b.ctor(b.ctorArgs...)
		if err != nil {
			return nil, fmt.Errorf("construction: %w", err)
		}

		if proxy == nil {
			proxy = built
		}
	}

	name := b.name
	if name == "" {
		name = "DoubleOf" + b.surface.name
	}

	d := &Double{
		name:        name,
		methods:     methods,
		rules:       make(map[string][]*rule),
		verifierTab: make(map[string][]*Expectation),
		ledger:      &Ledger{},
		reporter:    b.reporter,
		verifiable:  b.verifiable,
		cloneArgs:   b.cloneArgs,
		keepClone:   b.keepClone,
	}

	if proxy != nil {
		d.proxy = reflect.ValueOf(proxy)
	}

	return d, nil
}

// NewStub builds a double configured only to return values, with no
// verification attached. Best-practice defaults: construction and clone
// invocation suppressed, argument cloning disabled.
func NewStub(surface *Surface) (*Double, error) {
	return Configure(surface).StubOnly().Build()
}

// NewMock builds a double that accepts expectation verifiers, with the same
// defaults as NewStub.
func NewMock(t TestReporter, surface *Surface) (*Double, error) {
	return Configure(surface).WithReporter(t).Build()
}

// FromMap builds a stub from a mapping of method name to fixed return value:
// one ReturnValue rule per named method, over a synthesized variadic surface.
func FromMap(name string, returns map[string]any) (*Double, error) {
	sigs := make([]MethodSignature, 0, len(returns))

	for _, method := range slices.Sorted(maps.Keys(returns)) {
		sigs = append(sigs, MethodSignature{
			Name:          method,
			Variadic:      true,
			Interceptable: true,
			Results:       []TypeDescriptor{DescriptorOf(reflect.TypeOf(returns[method]))},
		})
	}

	surface, err := NewSurface(name, sigs...)
	if err != nil {
		return nil, err
	}

	d, err := Configure(surface).StubOnly().Named(name).Build()
	if err != nil {
		return nil, err
	}

	for _, method := range slices.Sorted(maps.Keys(returns)) {
		if err := d.On(method).Return(returns[method]); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// NewIntersectionStub merges the surfaces and builds a single stub satisfying
// all of them.
func NewIntersectionStub(surfaces ...*Surface) (*Double, error) {
	merged, err := MergeSurfaces(surfaces...)
	if err != nil {
		return nil, err
	}

	return NewStub(merged)
}

// NewIntersectionMock merges the surfaces and builds a single mock satisfying
// all of them.
func NewIntersectionMock(t TestReporter, surfaces ...*Surface) (*Double, error) {
	merged, err := MergeSurfaces(surfaces...)
	if err != nil {
		return nil, err
	}

	return NewMock(t, merged)
}

// buildStub is the auto-value generator's recursion into the factory: a
// fresh stub with an empty behavior table, carrying the recursion depth.
func buildStub(surface *Surface, depth int) (*Double, error) {
	d, err := NewStub(surface)
	if err != nil {
		return nil, err
	}

	d.autoDepth = depth

	return d, nil
}
