package runner

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/torosent/volley/internal/metrics"
)

// Result captures the end state of a run.
type Result struct {
	Stats       metrics.Stats
	Issued      int64
	Interrupted bool
}

// Runner coordinates bounded-concurrency execution against one Executor.
type Runner struct {
	opt Options
}

func New(opt Options) *Runner {
	opt.normalize()
	return &Runner{opt: opt}
}

// dispatch is the per-run state of the loop in Run.
type dispatch struct {
	opt         Options
	concurrency int64
	total       int64
	state       SchedulerState
	collector   *metrics.Collector
	limiter     *rate.Limiter
	jobs        chan int64
}

func (r *Runner) Run(ctx context.Context) Result {
	d := &dispatch{
		opt:         r.opt,
		concurrency: int64(r.opt.Concurrency),
		total:       int64(r.opt.TotalRequests),
		collector:   metrics.NewCollectorWithClock(r.opt.Now),
		limiter:     r.opt.LimiterFactory(r.opt.RatePerSecond),
		jobs:        make(chan int64),
	}

	workers := min(d.concurrency, d.total)
	// A worker never blocks handing back an outcome: at most one outcome per
	// worker is pending at once.
	done := make(chan metrics.Outcome, workers)

	var g errgroup.Group
	for i := int64(0); i < workers; i++ {
		g.Go(func() error {
			for id := range d.jobs {
				done <- r.opt.Executor.Execute(ctx, id)
			}
			return nil
		})
	}

	d.opt.Logger.Debug("dispatch started",
		zap.String("run_id", r.opt.RunID),
		zap.Int64("concurrency", d.concurrency),
		zap.Int64("total", d.total),
		zap.Int64("workers", workers),
	)

	d.collector.Start()
	for i := int64(0); i < workers; i++ {
		d.tryAdvance(ctx)
	}

	for !d.state.Terminal(d.total) {
		d.complete(<-done)
		if !d.state.Interrupted && ctx.Err() != nil {
			d.interrupt(ctx.Err())
		}
		d.tryAdvance(ctx)
	}

	close(d.jobs)
	_ = g.Wait()

	return d.finalize()
}

// tryAdvance issues the next request if the window and the budget allow it.
func (d *dispatch) tryAdvance(ctx context.Context) {
	if d.state.Interrupted {
		return
	}
	// Not reached while each seed and each completion advance once.
	if d.state.InFlight >= d.concurrency {
		d.opt.Logger.Debug("too busy", zap.Int64("in_flight", d.state.InFlight))
		return
	}
	if !d.state.canIssue(d.concurrency, d.total) {
		return
	}
	if err := d.limiter.Wait(ctx); err != nil {
		d.interrupt(err)
		return
	}

	id := d.state.issue()
	d.jobs <- id
	for _, obs := range d.opt.Observers {
		obs.Issued(id, d.state.InFlight)
	}
}

func (d *dispatch) complete(o metrics.Outcome) {
	o.ResponseCount = d.state.complete()
	d.collector.Record(o)
	if d.opt.Reporter != nil {
		d.opt.Reporter.Outcome(o)
	}
	for _, obs := range d.opt.Observers {
		obs.Completed(o, d.state.InFlight)
	}
}

func (d *dispatch) interrupt(cause error) {
	d.state.Interrupted = true
	d.opt.Logger.Warn("run interrupted, draining in-flight requests",
		zap.Int64("issued", d.state.Issued),
		zap.Int64("in_flight", d.state.InFlight),
		zap.Error(cause),
	)
}

// finalize hands the terminal statistics to the reporter. It runs once per Run.
func (d *dispatch) finalize() Result {
	stats := d.collector.Finalize()
	stats.RunID = d.opt.RunID
	stats.Interrupted = d.state.Interrupted

	if !d.state.Finalized {
		d.state.Finalized = true
		if d.opt.Reporter != nil {
			d.opt.Reporter.Summary(stats)
		}
	}

	d.opt.Logger.Debug("dispatch finished",
		zap.Int64("issued", d.state.Issued),
		zap.Int64("responses", d.state.Responses),
	)

	return Result{
		Stats:        stats,
		Issued:      d.state.Issued,
		Interrupted: d.state.Interrupted,
	}
}
