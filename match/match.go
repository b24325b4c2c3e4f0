// Package match provides matchers for selecting stubbing rules and judging
// recorded arguments. This package is designed to be dot-imported alongside
// gomega matchers:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/OskarStark/phpunit-documentation-english/match"
//	)
//
//	dbl.On("Fetch").With(BeNumerically(">", 0), BeAny).Return("x")
package match

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/akedrou/textdiff"
)

// errTypeMismatch is a sentinel error for type assertion failures.
var errTypeMismatch = errors.New("type mismatch")

// Matcher judges a single value. The shape is gomega.GomegaMatcher's, on
// purpose: the engine accepts either through the same duck type, so stock
// matchers here and gomega matchers mix freely in one argument list.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// BeAny accepts every value. Use it to skip over argument positions a rule
// should not constrain.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Matcher = anyMatcher{}

// Satisfy wraps a typed predicate as a matcher. A nil return means the value
// matches; a non-nil error becomes the mismatch description.
//
// Example:
//
//	dbl.On("Store").With(Satisfy(func(x int) error {
//	    if x < 0 { return fmt.Errorf("expected positive, got %d", x) }
//	    return nil
//	})).Return(true)
func Satisfy[T any](predicate func(T) error) Matcher {
	return &satisfyMatcher[T]{predicate: predicate}
}

// EqualTo returns a matcher that compares against the expected value with
// reflect.DeepEqual. Failure messages include a unified diff when the values
// render across multiple lines.
func EqualTo(expected any) Matcher {
	return &equalMatcher{expected: expected}
}

// diffThreshold is the combined rendering length beyond which a plain
// "expected X, got Y" message stops being readable.
const diffThreshold = 120

// Diff renders a mismatch between an expected and an actual value. Short
// renderings produce a plain "expected X, got Y" message; long or multi-line
// renderings produce a unified diff.
func Diff(expected, actual any) string {
	want := fmt.Sprintf("%#v", expected)
	got := fmt.Sprintf("%#v", actual)

	short := len(want)+len(got) <= diffThreshold &&
		!strings.Contains(want, "\n") && !strings.Contains(got, "\n")
	if short {
		return fmt.Sprintf("expected %s, got %s", want, got)
	}

	return textdiff.Unified("expected", "actual", want+"\n", got+"\n")
}

type anyMatcher struct{}

// FailureMessage is never shown; anyMatcher cannot fail.
func (anyMatcher) FailureMessage(any) string {
	return ""
}

func (anyMatcher) Match(any) (bool, error) {
	return true, nil
}

type satisfyMatcher[T any] struct {
	predicate func(T) error
	lastErr   error
}

func (m *satisfyMatcher[T]) FailureMessage(actual any) string {
	if m.lastErr != nil {
		return fmt.Sprintf("value %v does not satisfy predicate: %v", actual, m.lastErr)
	}

	return fmt.Sprintf("value %v does not satisfy predicate", actual)
}

func (m *satisfyMatcher[T]) Match(actual any) (bool, error) {
	val, ok := actual.(T)

	if !ok {
		return false, fmt.Errorf("%w: expected %T, got %T", errTypeMismatch, *new(T), actual)
	}

	m.lastErr = m.predicate(val)

	return m.lastErr == nil, nil
}

type equalMatcher struct {
	expected any
}

func (m *equalMatcher) FailureMessage(actual any) string {
	return Diff(m.expected, actual)
}

func (m *equalMatcher) Match(actual any) (bool, error) {
	return reflect.DeepEqual(actual, m.expected), nil
}
