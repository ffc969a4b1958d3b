package runner

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/torosent/volley/internal/metrics"
)

// Executor performs one unit of load and always produces an Outcome.
type Executor interface {
	Execute(ctx context.Context, requestID int64) metrics.Outcome
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, requestID int64) metrics.Outcome

func (f ExecutorFunc) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	return f(ctx, requestID)
}

// Reporter receives outcomes in completion order and the summary exactly once.
type Reporter interface {
	Outcome(o metrics.Outcome)
	Summary(stats metrics.Stats)
}

// Observer is notified of scheduler events. inFlight is the count after the
// event was applied.
type Observer interface {
	Issued(requestID int64, inFlight int64)
	Completed(o metrics.Outcome, inFlight int64)
}

// Options configure the Runner.
type Options struct {
	Concurrency    int                         // maximum requests in flight
	TotalRequests  int                         // requests to issue; 0 ends the run immediately
	RatePerSecond  int                         // issue pacing (0 means unlimited)
	Executor       Executor                    // required
	Reporter       Reporter                    // optional
	Observers      []Observer                  // optional
	Logger         *zap.Logger                 // optional
	RunID          string                      // copied into the summary
	Now            func() time.Time            // optional clock for statistics
	LimiterFactory func(rps int) *rate.Limiter // optional injection for tests
}

func (o *Options) normalize() {
	if o.Concurrency <= 0 {
		o.Concurrency = 1
	}
	if o.TotalRequests < 0 {
		o.TotalRequests = 0
	}
	if o.RatePerSecond < 0 {
		o.RatePerSecond = 0
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.LimiterFactory == nil {
		o.LimiterFactory = func(rps int) *rate.Limiter {
			if rps <= 0 {
				return rate.NewLimiter(rate.Inf, 0)
			}
			// Burst of one spaces issues evenly at rps.
			return rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}
