//go:build mutation

package mutation_test

import (
	"testing"

	"github.com/gtramontina/ooze"
)

func TestMutation(t *testing.T) {
	ooze.Release(
		t,
		ooze.WithTestCommand("go test ./double/... ./match/..."),
		ooze.Parallel(),
		ooze.IgnoreSourceFiles("^_examples.*|.*_string.go|.*_test.go"),
		ooze.WithMinimumThreshold(1.00),
		ooze.WithRepositoryRoot("."),
		ooze.ForceColors(),
	)
}
