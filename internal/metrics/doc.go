// Package metrics defines the per-request Outcome record and the online
// statistics computed from a stream of them.
//
// # Outcomes
//
// Every request attempt, successful or not, produces exactly one [Outcome]:
//
//	o := metrics.Outcome{
//		Status:        200,
//		RequestID:     7,
//		ResponseCount: 3,
//		ClientTime:    12,
//		ServerTime:    metrics.NotReported,
//	}
//
// A Status of [StatusTransportFailure] (0) means no HTTP response was
// received at all; the failure is still a normal, countable outcome.
//
// # Collector
//
// [Collector] folds Outcomes into [Stats] in O(1) per record without keeping
// the samples:
//
//	c := metrics.NewCollector()
//	c.Record(o)
//	stats := c.Finalize()
//
// A Collector has a single owner. The runner feeds it from one goroutine, so
// it carries no locks.
//
// # Percentiles
//
// Alongside the exact min/max/mean, client times are recorded into an
// HdrHistogram so the summary can report P50/P90/P99 at a fixed 3 significant
// figures of precision.
package metrics
