package double

import "strings"

// Scope is the host test-scope collaborator: it holds references to every
// double adopted into it and runs the end-of-use verification pass
// explicitly. There is no ambient global registry; each test owns its scope.
type Scope struct {
	t       TestReporter
	doubles []*Double
}

// NewScope creates a scope reporting through t.
func NewScope(t TestReporter) *Scope {
	return &Scope{t: t}
}

// Adopt registers a double for finalization and returns it for chaining.
func (s *Scope) Adopt(d *Double) *Double {
	s.doubles = append(s.doubles, d)

	return d
}

// FinalizeAll runs the finalize pass over every adopted double, in adoption
// order, and returns the aggregated verification failures.
func (s *Scope) FinalizeAll() []VerificationFailure {
	var failures []VerificationFailure

	for _, d := range s.doubles {
		failures = append(failures, FinalizeAll(d)...)
	}

	return failures
}

// Verify runs FinalizeAll and reports any failures through the scope's test
// reporter. Call it once per test, after exercise, before teardown.
func (s *Scope) Verify() {
	s.t.Helper()

	failures := s.FinalizeAll()
	if len(failures) == 0 {
		return
	}

	messages := make([]string, len(failures))
	for i, failure := range failures {
		messages[i] = failure.Error()
	}

	s.t.Fatalf("unmet expectations:\n%s", strings.Join(messages, "\n"))
}

// BindTo registers Verify as a cleanup on reporters that support it, like
// *testing.T. The verification pass still runs exactly once, at test end.
func (s *Scope) BindTo(t TestReporter) {
	if registrar, ok := t.(cleanupRegistrar); ok {
		registrar.Cleanup(s.Verify)
	}
}

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}
