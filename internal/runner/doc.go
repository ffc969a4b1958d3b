// Package runner is the dispatch scheduler for a volley run.
//
// A Runner keeps at most Concurrency requests in flight, issues exactly
// TotalRequests of them with strictly increasing request ids, and finishes once
// the budget is spent and every in-flight request has completed.
//
//	r := runner.New(runner.Options{
//		Concurrency:   20,
//		TotalRequests: 200,
//		Executor:      exec,
//		Reporter:      reporter,
//	})
//	result := r.Run(ctx)
//
// All scheduler counters and the statistics collector are owned by the
// goroutine calling Run. Workers only perform the network call and hand the
// [metrics.Outcome] back, so every update is applied one event at a time.
//
// Cancelling ctx stops issuance. Requests already in flight see the
// cancellation, complete as transport failures and are still counted; the
// summary is then reported with Interrupted set.
package runner
