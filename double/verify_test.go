package double_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/OskarStark/phpunit-documentation-english/double"
)

//nolint:varnamelen // Standard Go test parameter name
func TestExpect_ExactlySatisfied(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()

	if err := dbl.Expect("Fetch").Times(2); err != nil {
		t.Fatalf("Expect(Fetch).Times(2) error: %v", err)
	}

	for i := range 2 {
		if _, err := dbl.Invoke("Fetch", i); err != nil {
			t.Fatalf("Invoke %d error: %v", i, err)
		}
	}

	if failures := double.FinalizeAll(dbl); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures", failures)
	}

	// Both calls landed in the ledger.
	if got := dbl.CallCount("Fetch"); got != 2 {
		t.Errorf("CallCount(Fetch) = %d, want 2", got)
	}
}

func TestExpect_ExactlyOverSaturated(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").Times(2)

	for i := range 2 {
		if _, err := dbl.Invoke("Fetch", i); err != nil {
			t.Fatalf("Invoke %d error: %v", i, err)
		}
	}

	// The third call over-saturates and fails synchronously.
	_, err := dbl.Invoke("Fetch", 3)
	if !errors.Is(err, double.ErrUnexpectedInvocation) {
		t.Fatalf("third Invoke error = %v, want ErrUnexpectedInvocation", err)
	}

	// The over-saturated call is still recorded.
	if got := dbl.CallCount("Fetch"); got != 3 {
		t.Errorf("CallCount(Fetch) = %d, want 3", got)
	}

	// Finalize does not re-report what was already raised synchronously.
	if failures := double.FinalizeAll(dbl); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures", failures)
	}
}

func TestExpect_ExactlyUnderSaturated(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").Times(2)

	if _, err := dbl.Invoke("Fetch", 1); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}

	failures := double.FinalizeAll(dbl)
	if len(failures) != 1 {
		t.Fatalf("FinalizeAll() reported %d failures, want 1", len(failures))
	}

	failure := failures[0]
	if !errors.Is(failure, double.ErrUnsatisfiedExpectation) {
		t.Errorf("failure = %v, want ErrUnsatisfiedExpectation", failure)
	}

	if failure.Method != "Fetch" || failure.Actual != 1 {
		t.Errorf("failure = %+v, want Fetch with 1 actual call", failure)
	}
}

func TestExpect_Never(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").Never()

	// Zero calls: clean finalize.
	if failures := double.FinalizeAll(dbl); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures at zero calls", failures)
	}

	// Any call at all fails synchronously.
	_, err := dbl.Invoke("Fetch", 1)
	if !errors.Is(err, double.ErrUnexpectedInvocation) {
		t.Errorf("Invoke error = %v, want ErrUnexpectedInvocation", err)
	}
}

func TestExpect_AtLeastOnce(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").AtLeastOnce()

	failures := double.FinalizeAll(dbl)
	if len(failures) != 1 {
		t.Fatalf("FinalizeAll() before any call = %v, want 1 failure", failures)
	}

	// A fresh double with the same expectation, exercised once, is clean.
	dbl2, _ := double.Configure(surface).Build()
	_ = dbl2.Expect("Fetch").AtLeastOnce()

	if _, err := dbl2.Invoke("Fetch", 1); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}

	if failures := double.FinalizeAll(dbl2); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures", failures)
	}
}

func TestExpect_AnyTimesNeverFails(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").AnyTimes()

	for i := range 5 {
		if _, err := dbl.Invoke("Fetch", i); err != nil {
			t.Fatalf("Invoke %d error: %v", i, err)
		}
	}

	if failures := double.FinalizeAll(dbl); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures", failures)
	}
}

// Two identically-matched verifiers on the same method: the first one
// consumes every matching call exclusively. Its count matcher does not
// un-match it once saturated, so the second identical call over-saturates it
// even though the later verifier still has capacity.
func TestExpect_FirstConfiguredConsumesCall(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()

	first := dbl.Expect("Fetch").With(1)
	if err := first.Once(); err != nil {
		t.Fatalf("first expectation error: %v", err)
	}

	second := dbl.Expect("Fetch").With(1)
	if err := second.Once(); err != nil {
		t.Fatalf("second expectation error: %v", err)
	}

	if _, err := dbl.Invoke("Fetch", 1); err != nil {
		t.Fatalf("first Invoke error: %v", err)
	}

	if got := first.Calls(); got != 1 {
		t.Errorf("first.Calls() = %d, want 1", got)
	}

	if got := second.Calls(); got != 0 {
		t.Errorf("second.Calls() = %d, want 0", got)
	}

	_, err := dbl.Invoke("Fetch", 1)
	if !errors.Is(err, double.ErrUnexpectedInvocation) {
		t.Fatalf("second Invoke error = %v, want ErrUnexpectedInvocation", err)
	}

	// The excess call was consumed by the saturated first verifier, never
	// handed to the second.
	if got := second.Calls(); got != 0 {
		t.Errorf("second.Calls() = %d, want 0 after excess call", got)
	}
}

// Verifiers with disjoint argument matchers partition the calls: each call
// goes to the verifier whose matcher accepts it.
func TestExpect_DisjointMatchersPartitionCalls(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()

	_ = dbl.Expect("Fetch").With(1).Once()
	_ = dbl.Expect("Fetch").With(2).Once()

	if _, err := dbl.Invoke("Fetch", 2); err != nil {
		t.Fatalf("Invoke(2) error: %v", err)
	}

	if _, err := dbl.Invoke("Fetch", 1); err != nil {
		t.Fatalf("Invoke(1) error: %v", err)
	}

	if failures := double.FinalizeAll(dbl); len(failures) != 0 {
		t.Errorf("FinalizeAll() = %v, want no failures", failures)
	}
}

func TestExpect_ArgumentConstrainedVerifier(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	_ = dbl.Expect("Fetch").With(1).Times(1)

	// A call with different arguments is not consumed by the verifier.
	if _, err := dbl.Invoke("Fetch", 2); err != nil {
		t.Fatalf("Invoke(2) error: %v", err)
	}

	failures := double.FinalizeAll(dbl)
	if len(failures) != 1 {
		t.Fatalf("FinalizeAll() = %v, want 1 failure for the unmatched verifier", failures)
	}
}

func TestExpect_OnStubFails(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.NewStub(surface)

	err := dbl.Expect("Fetch").Once()
	if !errors.Is(err, double.ErrNotAMock) {
		t.Errorf("Expect on stub error = %v, want ErrNotAMock", err)
	}
}

func TestExpect_DoubleRegistrationFails(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()

	expectation := dbl.Expect("Fetch")
	if err := expectation.Once(); err != nil {
		t.Fatalf("Once() error: %v", err)
	}

	if err := expectation.Never(); !errors.Is(err, double.ErrConfigConsumed) {
		t.Errorf("second terminal verb error = %v, want ErrConfigConsumed", err)
	}
}

func TestVerificationFailure_Message(t *testing.T) {
	t.Parallel()

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Named("FakeFetcher").Build()
	_ = dbl.Expect("Fetch").Times(3)

	failures := double.FinalizeAll(dbl)
	if len(failures) != 1 {
		t.Fatalf("FinalizeAll() = %v, want 1 failure", failures)
	}

	msg := failures[0].Error()
	for _, want := range []string{"FakeFetcher", "Fetch", "exactly 3"} {
		if !strings.Contains(msg, want) {
			t.Errorf("failure message %q missing %q", msg, want)
		}
	}
}

//nolint:varnamelen // Standard Go test parameter name
func TestScope_VerifyReportsThroughReporter(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{}
	scope := double.NewScope(reporter)

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	scope.Adopt(dbl)

	_ = dbl.Expect("Fetch").Once()

	scope.Verify()

	if len(reporter.failures) != 1 {
		t.Fatalf("reporter captured %d failures, want 1", len(reporter.failures))
	}

	if !strings.Contains(reporter.failures[0], "Fetch") {
		t.Errorf("failure %q should name the method", reporter.failures[0])
	}
}

func TestScope_CleanVerify(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{}
	scope := double.NewScope(reporter)

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	scope.Adopt(dbl)

	_ = dbl.Expect("Fetch").Once()

	if _, err := dbl.Invoke("Fetch", 1); err != nil {
		t.Fatalf("Invoke error: %v", err)
	}

	scope.Verify()

	if len(reporter.failures) != 0 {
		t.Errorf("reporter captured %v, want none", reporter.failures)
	}
}

// cleanupSpy satisfies the registrar duck type Scope.BindTo looks for.
type cleanupSpy struct {
	recordingReporter

	fns []func()
}

func (c *cleanupSpy) Cleanup(fn func()) {
	c.fns = append(c.fns, fn)
}

func TestScope_BindToRunsVerifyAtCleanup(t *testing.T) {
	t.Parallel()

	reporter := &recordingReporter{}
	scope := double.NewScope(reporter)

	surface, _ := double.DescribeInterface[fetcher]()
	dbl, _ := double.Configure(surface).Build()
	scope.Adopt(dbl)
	_ = dbl.Expect("Fetch").Once()

	spy := &cleanupSpy{}
	scope.BindTo(spy)

	if len(spy.fns) != 1 {
		t.Fatalf("BindTo registered %d cleanups, want 1", len(spy.fns))
	}

	// Nothing reported until cleanup actually runs.
	if len(reporter.failures) != 0 {
		t.Fatalf("premature failures: %v", reporter.failures)
	}

	spy.fns[0]()

	if len(reporter.failures) != 1 {
		t.Errorf("reporter captured %d failures after cleanup, want 1", len(reporter.failures))
	}
}
