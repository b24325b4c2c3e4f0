package double

import "errors"

// Sentinel errors for the engine. Context is attached with fmt.Errorf and %w;
// callers unwrap with errors.Is.
var (
	// ErrUnknownMethod reports configuration or invocation of an operation
	// the double does not expose.
	ErrUnknownMethod = errors.New("unknown method")

	// ErrMethodConflict reports an additional method that collides with a
	// method already present on the surface.
	ErrMethodConflict = errors.New("method conflict")

	// ErrIncompatibleSurface reports a surface merge where two inputs declare
	// the same method name with incompatible signatures.
	ErrIncompatibleSurface = errors.New("incompatible surface")

	// ErrStaticInterception reports an attempt to route a static-shaped
	// operation through interception.
	ErrStaticInterception = errors.New("static method cannot be intercepted")

	// ErrUnexpectedInvocation reports a call that over-saturates its
	// configured count matcher. Raised synchronously at call time.
	ErrUnexpectedInvocation = errors.New("unexpected invocation")

	// ErrUnsatisfiedExpectation reports an unmet minimum or exact count
	// matcher. Raised at finalize time.
	ErrUnsatisfiedExpectation = errors.New("unsatisfied expectation")

	// ErrUnresolvableType reports a type descriptor the auto-value generator
	// cannot produce a default for. The engine never guesses.
	ErrUnresolvableType = errors.New("unresolvable type")

	// ErrSequenceExhausted reports a strict return sequence that received
	// more calls than configured values.
	ErrSequenceExhausted = errors.New("return sequence exhausted")

	// ErrReturnTypeMismatch reports a configured return value that does not
	// satisfy the method signature. Checked at configuration time.
	ErrReturnTypeMismatch = errors.New("return type mismatch")

	// ErrConfigConsumed reports a build configuration used more than once.
	ErrConfigConsumed = errors.New("build configuration already consumed")

	// ErrNoProxyTarget reports a CallOriginal rule configured on a double
	// without a proxy target.
	ErrNoProxyTarget = errors.New("no proxy target configured")

	// ErrNotAMock reports an expectation configured on a stub. Stubs only
	// return values; verification needs a mock.
	ErrNotAMock = errors.New("expectations require a mock")
)
