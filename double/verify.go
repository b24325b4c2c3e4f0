package double

import "fmt"

// CountMatcher judges an invocation count. Satisfiable detects
// over-saturation synchronously at call time; Satisfied is the final
// judgement at finalize time.
type CountMatcher interface {
	Describe() string
	Satisfiable(count int) bool
	Satisfied(count int) bool
}

// Never matches only a count of zero. Any call at all over-saturates.
func Never() CountMatcher { return exactCount{0} }

// AnyTimes matches every count and never fails.
func AnyTimes() CountMatcher { return anyCount{} }

// AtLeastOnce requires a minimum of one call. It can never over-saturate.
func AtLeastOnce() CountMatcher { return atLeastOnceCount{} }

// Once requires exactly one call.
func Once() CountMatcher { return exactCount{1} }

// Times requires exactly n calls.
func Times(n int) CountMatcher { return exactCount{n} }

type anyCount struct{}

func (anyCount) Describe() string     { return "any number of calls" }
func (anyCount) Satisfiable(int) bool { return true }
func (anyCount) Satisfied(int) bool   { return true }

type atLeastOnceCount struct{}

func (atLeastOnceCount) Describe() string     { return "at least one call" }
func (atLeastOnceCount) Satisfiable(int) bool { return true }
func (atLeastOnceCount) Satisfied(count int) bool {
	return count >= 1
}

type exactCount struct {
	n int
}

func (m exactCount) Describe() string {
	switch m.n {
	case 0:
		return "no calls"
	case 1:
		return "exactly 1 call"
	default:
		return fmt.Sprintf("exactly %d calls", m.n)
	}
}

func (m exactCount) Satisfiable(count int) bool { return count <= m.n }
func (m exactCount) Satisfied(count int) bool   { return count == m.n }

// Expectation is the fluent handle returned by Double.Expect. Configure an
// optional argument matcher with With, then register a count matcher with one
// of the terminal count verbs. Expectations for the same method are consulted
// in registration order; the first one whose argument matcher accepts the
// call consumes it exclusively.
type Expectation struct {
	d        *Double
	method   string
	matchers []any
	count    CountMatcher
	calls    int
	err      error
}

// With restricts the expectation to calls whose arguments match position by
// position. Calls it does not match are left to later expectations (or none).
func (e *Expectation) With(argsOrMatchers ...any) *Expectation {
	if e.err == nil {
		e.matchers = argsOrMatchers
	}

	return e
}

// Times registers the expectation with an exact count.
func (e *Expectation) Times(n int) error { return e.register(Times(n)) }

// Once registers the expectation with an exact count of one.
func (e *Expectation) Once() error { return e.register(Once()) }

// Never registers the expectation requiring zero calls.
func (e *Expectation) Never() error { return e.register(Never()) }

// AtLeastOnce registers the expectation with a minimum count of one.
func (e *Expectation) AtLeastOnce() error { return e.register(AtLeastOnce()) }

// AnyTimes registers the expectation with no count requirement.
func (e *Expectation) AnyTimes() error { return e.register(AnyTimes()) }

// Counted registers the expectation with a custom count matcher.
func (e *Expectation) Counted(m CountMatcher) error { return e.register(m) }

func (e *Expectation) register(m CountMatcher) error {
	if e.err != nil {
		return e.err
	}

	if e.count != nil {
		return fmt.Errorf("%w: expectation on %s.%s already registered",
			ErrConfigConsumed, e.d.name, e.method)
	}

	e.count = m
	e.d.verifiers = append(e.d.verifiers, e)
	e.d.verifierTab[e.method] = append(e.d.verifierTab[e.method], e)

	return nil
}

// Calls returns how many invocations this expectation has consumed so far.
func (e *Expectation) Calls() int {
	return e.calls
}

// applyVerifiers consults the method's expectations in registration order.
// Applicability is decided by the argument matcher alone: the first
// expectation whose matcher accepts the arguments consumes the call
// exclusively, and over-saturating its count matcher raises
// ErrUnexpectedInvocation even when a later expectation has capacity.
func (d *Double) applyVerifiers(method string, args []any) error {
	for _, e := range d.verifierTab[method] {
		if !matchersAccept(e.matchers, args) {
			continue
		}

		e.calls++

		if !e.count.Satisfiable(e.calls) {
			return fmt.Errorf("%w: %s.%s called %d times, expected %s",
				ErrUnexpectedInvocation, d.name, method, e.calls, e.count.Describe())
		}

		return nil
	}

	return nil
}

// finalize reports under-saturation. Over-saturation was already raised
// synchronously at call time and is not re-reported here.
func (e *Expectation) finalize() *VerificationFailure {
	if e.count == nil || e.count.Satisfied(e.calls) || !e.count.Satisfiable(e.calls) {
		return nil
	}

	return &VerificationFailure{
		Double:   e.d.name,
		Method:   e.method,
		Expected: e.count.Describe(),
		Actual:   e.calls,
		Err:      ErrUnsatisfiedExpectation,
	}
}

// VerificationFailure names one unmet expectation found at finalize time.
type VerificationFailure struct {
	Double   string
	Method   string
	Expected string
	Actual   int
	Err      error
}

func (f VerificationFailure) Error() string {
	return fmt.Sprintf("%v: %s.%s expected %s, got %d",
		f.Err, f.Double, f.Method, f.Expected, f.Actual)
}

// Unwrap exposes the sentinel for errors.Is.
func (f VerificationFailure) Unwrap() error {
	return f.Err
}

// FinalizeAll runs the end-of-use verification pass over every expectation
// registered on the double, in registration order. The engine never calls
// this implicitly; the host test scope does, once per test, after exercise.
func FinalizeAll(d *Double) []VerificationFailure {
	var failures []VerificationFailure

	for _, e := range d.verifiers {
		if failure := e.finalize(); failure != nil {
			failures = append(failures, *failure)
		}
	}

	return failures
}
