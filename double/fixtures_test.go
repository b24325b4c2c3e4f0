package double_test

import "fmt"

// fetcher is the single-method surface used throughout these tests.
type fetcher interface {
	Fetch(id int) string
}

// store is a second disjoint surface for intersection tests.
type store interface {
	Save(key string, value string) error
}

// repo exercises multiple results, variadic methods, and void returns.
type repo interface {
	Fetch(id int) string
	Lookup(ids ...int) ([]string, error)
	Close()
}

// chain exercises recursive auto-stubbing: Next returns another chain.
type chain interface {
	Next() chain
	Value() int
}

// realFetcher is a concrete implementation for proxy-target tests.
type realFetcher struct {
	prefix string
}

func (r *realFetcher) Fetch(id int) string {
	return fmt.Sprintf("%s%d", r.prefix, id)
}

// recordingReporter captures Fatalf calls instead of failing the test.
type recordingReporter struct {
	failures []string
}

func (r *recordingReporter) Helper() {}

func (r *recordingReporter) Fatalf(format string, args ...any) {
	r.failures = append(r.failures, fmt.Sprintf(format, args...))
}
