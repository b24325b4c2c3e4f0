// Package double synthesizes test doubles: substitute objects that present
// the same callable surface as a target type, intercept every call, return
// configured or auto-generated values, record invocations in an append-only
// ledger, and verify call-count expectations against a configured policy.
//
// A stub only returns values:
//
//	surface, _ := double.DescribeInterface[Repo]()
//	dbl, _ := double.NewStub(surface)
//	_ = dbl.On("Fetch").With(1).Return("x")
//	out, _ := dbl.Invoke("Fetch", 1) // ["x"], recorded as {Fetch, [1], seq 0}
//
// A mock adds expectations, checked at finalize time:
//
//	dbl, _ := double.NewMock(t, surface)
//	_ = dbl.Expect("Fetch").Times(2)
//	... exercise ...
//	for _, f := range double.FinalizeAll(dbl) { t.Error(f) }
//
// Unconfigured calls resolve to canonical defaults: zero scalars, empty
// sequences, nil for nullable types, and a fresh nested stub for
// interface-typed results, so chained calls never fail. The engine is
// synchronous and single-threaded by design; each test scope owns its
// doubles and finalizes them explicitly (see Scope).
package double
