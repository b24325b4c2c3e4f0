package double

import (
	"reflect"

	"github.com/OskarStark/phpunit-documentation-english/match"
)

// Matcher is the argument-matcher contract accepted anywhere a rule or
// expectation takes matchers. The match package, gomega matchers, and
// anything else implementing these two methods all qualify via duck typing.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// MatchValue judges one argument against one expectation. A Matcher is
// consulted directly; a plain value compares with reflect.DeepEqual. The
// string is the mismatch rendering and is empty on success.
func MatchValue(actual, expected any) (bool, string) {
	if matcher, ok := expected.(Matcher); ok {
		success, err := matcher.Match(actual)
		if err != nil {
			return false, err.Error()
		}

		if !success {
			return false, matcher.FailureMessage(actual)
		}

		return true, ""
	}

	if reflect.DeepEqual(actual, expected) {
		return true, ""
	}

	return false, match.Diff(expected, actual)
}

// matchersAccept reports whether an argument list is accepted position by
// position. A nil matcher list accepts anything.
func matchersAccept(matchers []any, args []any) bool {
	if matchers == nil {
		return true
	}

	if len(matchers) != len(args) {
		return false
	}

	for i, m := range matchers {
		if ok, _ := MatchValue(args[i], m); !ok {
			return false
		}
	}

	return true
}
