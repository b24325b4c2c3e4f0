package match_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/OskarStark/phpunit-documentation-english/match"
)

// Test the BeAny matcher directly.
//
//nolint:varnamelen // Standard Go test parameter name
func TestBeAny(t *testing.T) {
	t.Parallel()

	matcher := match.BeAny

	// Test Match always returns true
	ok, err := matcher.Match(42) //nolint:varnamelen // ok is idiomatic
	if !ok || err != nil {
		t.Errorf("BeAny.Match(42) = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = matcher.Match(nil)
	if !ok || err != nil {
		t.Errorf("BeAny.Match(nil) = (%v, %v), want (true, nil)", ok, err)
	}

	// Test FailureMessage is empty
	msg := matcher.FailureMessage(42)
	if msg != "" {
		t.Errorf("BeAny.FailureMessage(42) = %q, want empty string", msg)
	}
}

// Test the Satisfy() matcher.
//
//nolint:varnamelen // Standard Go test parameter name
func TestSatisfy_MatchFailure(t *testing.T) {
	t.Parallel()

	matcher := match.Satisfy(func(val int) error {
		if val <= 10 {
			return errors.New("must be greater than 10")
		}

		return nil
	})

	ok, err := matcher.Match(5)

	if ok || err != nil {
		t.Errorf("Satisfy().Match(5) = (%v, %v), want (false, nil)", ok, err)
	}

	msg := matcher.FailureMessage(5)

	expected := "value 5 does not satisfy predicate: must be greater than 10"

	if msg != expected {
		t.Errorf("Satisfy().FailureMessage(5) = %q, want %q", msg, expected)
	}
}

//nolint:varnamelen // Standard Go test parameter name
func TestSatisfy_MatchSuccess(t *testing.T) {
	t.Parallel()

	matcher := match.Satisfy(func(val int) error {
		if val <= 10 {
			return errors.New("must be greater than 10")
		}

		return nil
	})

	ok, err := matcher.Match(42)

	if !ok || err != nil {
		t.Errorf("Satisfy().Match(42) = (%v, %v), want (true, nil)", ok, err)
	}
}

//nolint:varnamelen // Standard Go test parameter name
func TestSatisfy_TypeMismatch(t *testing.T) {
	t.Parallel()

	matcher := match.Satisfy(func(int) error { return nil })

	ok, err := matcher.Match("not an int")

	if ok || err == nil {
		t.Errorf("Satisfy().Match(string) = (%v, %v), want (false, type mismatch)", ok, err)
	}
}

//nolint:varnamelen // Standard Go test parameter name
func TestEqualTo(t *testing.T) {
	t.Parallel()

	matcher := match.EqualTo([]int{1, 2, 3})

	ok, err := matcher.Match([]int{1, 2, 3})
	if !ok || err != nil {
		t.Errorf("EqualTo.Match(equal slice) = (%v, %v), want (true, nil)", ok, err)
	}

	ok, err = matcher.Match([]int{1, 2})
	if ok || err != nil {
		t.Errorf("EqualTo.Match(different slice) = (%v, %v), want (false, nil)", ok, err)
	}

	msg := matcher.FailureMessage([]int{1, 2})
	if !strings.Contains(msg, "expected") {
		t.Errorf("EqualTo.FailureMessage = %q, want a mismatch description", msg)
	}
}

func TestDiff_SingleLine(t *testing.T) {
	t.Parallel()

	msg := match.Diff(1, 2)

	expected := "expected 1, got 2"
	if msg != expected {
		t.Errorf("Diff(1, 2) = %q, want %q", msg, expected)
	}
}

func TestDiff_LongRendering(t *testing.T) {
	t.Parallel()

	long := strings.Repeat("x", 200)
	msg := match.Diff(long, long+"y")

	if !strings.Contains(msg, "---") || !strings.Contains(msg, "+++") {
		t.Errorf("Diff(long values) = %q, want a unified diff", msg)
	}
}
