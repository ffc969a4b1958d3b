package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// Client times are tracked in milliseconds from 0 up to one hour.
const maxTrackedMillis = int64(time.Hour / time.Millisecond)

// Collector aggregates Outcomes into running statistics. It is not safe for
// concurrent use; the runner owns it and feeds it from a single goroutine.
type Collector struct {
	now  func() time.Time
	hist *hdrhistogram.Histogram

	statuses map[int]int64
	errors   map[string]int64
	count    int64
	sum      int64
	min      int64
	max      int64
	rate     float64

	start     time.Time
	totalTime time.Duration
	finalized bool
}

// Stats is a snapshot of the aggregated statistics.
type Stats struct {
	RunID       string           `json:"run_id,omitempty"`
	Statuses    map[int]int64    `json:"statuses"`
	Min         int64            `json:"min"`
	Max         int64            `json:"max"`
	Avg         float64          `json:"avg"`
	Count       int64            `json:"count"`
	Rate        float64          `json:"rate"`
	P50         int64            `json:"p50"`
	P90         int64            `json:"p90"`
	P99         int64            `json:"p99"`
	Errors      map[string]int64 `json:"errors,omitempty"`
	Interrupted bool             `json:"interrupted,omitempty"`

	Start     time.Time     `json:"-"`
	TotalTime time.Duration `json:"-"`

	// JSON-friendly millisecond fields.
	StartMs     int64 `json:"start"`
	TotalTimeMs int64 `json:"total_time"`
}

// NewCollector returns a Collector whose clock starts now.
func NewCollector() *Collector {
	return NewCollectorWithClock(time.Now)
}

// NewCollectorWithClock returns a Collector reading time from now.
func NewCollectorWithClock(now func() time.Time) *Collector {
	if now == nil {
		now = time.Now
	}
	return &Collector{
		now:      now,
		hist:     hdrhistogram.New(1, maxTrackedMillis, 3),
		statuses: make(map[int]int64),
		errors:   make(map[string]int64),
		start:    now(),
	}
}

// Start resets the start timestamp used for rate and total time. Call it
// right before the first request is issued.
func (c *Collector) Start() {
	c.start = c.now()
}

// Record folds one Outcome into the statistics.
func (c *Collector) Record(o Outcome) {
	latency := o.ClientTime
	if latency < 0 {
		latency = 0
	}

	c.statuses[o.Status]++
	if o.Failed() {
		kind := o.ErrorKind
		if kind == "" {
			kind = ErrorKindOther
		}
		c.errors[kind]++
	}

	if c.count == 0 || latency < c.min {
		c.min = latency
	}
	if c.count == 0 || latency > c.max {
		c.max = latency
	}
	c.sum += latency
	c.count++

	tracked := latency
	if tracked > maxTrackedMillis {
		tracked = maxTrackedMillis
	}
	_ = c.hist.RecordValue(tracked)

	c.rate = 0
	if elapsed := c.now().Sub(c.start); elapsed > 0 {
		c.rate = float64(c.count) / elapsed.Seconds()
	}
}

// Snapshot returns the current statistics without finalizing them.
func (c *Collector) Snapshot() Stats {
	stats := Stats{
		Statuses: make(map[int]int64, len(c.statuses)),
		Count:    c.count,
		Rate:     c.rate,
		Start:    c.start,
		StartMs:  c.start.UnixMilli(),
	}
	for code, n := range c.statuses {
		stats.Statuses[code] = n
	}
	if len(c.errors) > 0 {
		stats.Errors = make(map[string]int64, len(c.errors))
		for kind, n := range c.errors {
			stats.Errors[kind] = n
		}
	}

	if c.count > 0 {
		stats.Min = c.min
		stats.Max = c.max
		stats.Avg = float64(c.sum) / float64(c.count)
		stats.P50 = c.hist.ValueAtQuantile(50)
		stats.P90 = c.hist.ValueAtQuantile(90)
		stats.P99 = c.hist.ValueAtQuantile(99)
	}

	stats.TotalTime = c.totalTime
	if !c.finalized {
		stats.TotalTime = c.now().Sub(c.start)
	}
	stats.TotalTimeMs = stats.TotalTime.Milliseconds()
	return stats
}

// Finalize captures the total run time and returns the terminal statistics.
// Later calls return the same total time.
func (c *Collector) Finalize() Stats {
	if !c.finalized {
		c.totalTime = c.now().Sub(c.start)
		c.finalized = true
	}
	return c.Snapshot()
}
