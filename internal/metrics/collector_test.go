package metrics_test

import (
	"encoding/json"
	"math"
	"math/rand"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

// fakeClock advances by step on every read.
type fakeClock struct {
	now  time.Time
	step time.Duration
}

func (f *fakeClock) Now() time.Time {
	t := f.now
	f.now = f.now.Add(f.step)
	return t
}

func ok(id, ms int64) metrics.Outcome {
	return metrics.Outcome{Status: 200, RequestID: id, ClientTime: ms, ServerTime: metrics.NotReported}
}

func TestCollectorThreeSequentialRequests(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(ok(0, 10))
	c.Record(ok(1, 20))
	c.Record(ok(2, 30))

	stats := c.Finalize()
	if stats.Count != 3 {
		t.Fatalf("expected count 3, got %d", stats.Count)
	}
	if stats.Min != 10 || stats.Max != 30 {
		t.Fatalf("expected min 10 max 30, got min %d max %d", stats.Min, stats.Max)
	}
	if stats.Avg != 20 {
		t.Fatalf("expected avg 20, got %v", stats.Avg)
	}
	if !reflect.DeepEqual(stats.Statuses, map[int]int64{200: 3}) {
		t.Fatalf("unexpected statuses %v", stats.Statuses)
	}
	if stats.Errors != nil {
		t.Fatalf("expected no errors, got %v", stats.Errors)
	}
}

func TestCollectorEmpty(t *testing.T) {
	c := metrics.NewCollector()
	stats := c.Finalize()
	if stats.Count != 0 {
		t.Fatalf("expected count 0, got %d", stats.Count)
	}
	if stats.Min != 0 || stats.Max != 0 || stats.Avg != 0 || stats.Rate != 0 {
		t.Fatalf("expected zero latency fields, got %+v", stats)
	}
	if len(stats.Statuses) != 0 {
		t.Fatalf("expected empty statuses, got %v", stats.Statuses)
	}
}

func TestCollectorCountsTransportFailures(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(ok(0, 5))
	c.Record(metrics.Outcome{
		Status:     metrics.StatusTransportFailure,
		RequestID:  1,
		ClientTime: 2,
		ServerTime: metrics.NotReported,
		ErrorKind:  metrics.ErrorKindConnectionRefused,
	})
	c.Record(metrics.Outcome{Status: metrics.StatusTransportFailure, RequestID: 2, ServerTime: metrics.NotReported})

	stats := c.Finalize()
	if stats.Statuses[0] != 2 {
		t.Fatalf("expected 2 transport failures under status 0, got %d", stats.Statuses[0])
	}
	if stats.Errors[metrics.ErrorKindConnectionRefused] != 1 {
		t.Fatalf("expected connection_refused=1, got %v", stats.Errors)
	}
	if stats.Errors[metrics.ErrorKindOther] != 1 {
		t.Fatalf("expected unclassified failure to count as other, got %v", stats.Errors)
	}
	if stats.Min != 0 {
		t.Fatalf("expected min 0, got %d", stats.Min)
	}
}

func TestCollectorRunningBoundsAndMean(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	c := metrics.NewCollector()

	var sum int64
	var minSeen, maxSeen int64
	for i := 0; i < 500; i++ {
		ms := int64(rnd.Intn(2000))
		c.Record(ok(int64(i), ms))
		sum += ms
		if i == 0 || ms < minSeen {
			minSeen = ms
		}
		if i == 0 || ms > maxSeen {
			maxSeen = ms
		}

		snap := c.Snapshot()
		if snap.Count != int64(i+1) {
			t.Fatalf("prefix %d: count %d", i, snap.Count)
		}
		if snap.Min != minSeen || snap.Max != maxSeen {
			t.Fatalf("prefix %d: bounds %d/%d, want %d/%d", i, snap.Min, snap.Max, minSeen, maxSeen)
		}
		if snap.Min > ms || snap.Max < ms {
			t.Fatalf("prefix %d: sample %d outside [%d, %d]", i, ms, snap.Min, snap.Max)
		}
		want := float64(sum) / float64(i+1)
		if math.Abs(snap.Avg-want) > 1e-9 {
			t.Fatalf("prefix %d: avg %v, want %v", i, snap.Avg, want)
		}
	}
}

func TestCollectorOrderIndependent(t *testing.T) {
	outcomes := []metrics.Outcome{ok(0, 7), ok(1, 13), ok(2, 1), ok(3, 99), ok(4, 42)}
	outcomes = append(outcomes, metrics.Outcome{Status: 503, RequestID: 5, ClientTime: 3, ServerTime: 1})
	outcomes = append(outcomes, metrics.Outcome{Status: 0, RequestID: 6, ClientTime: 8, ServerTime: -1, ErrorKind: metrics.ErrorKindTimeout})

	forward := metrics.NewCollector()
	for _, o := range outcomes {
		forward.Record(o)
	}
	backward := metrics.NewCollector()
	for i := len(outcomes) - 1; i >= 0; i-- {
		backward.Record(outcomes[i])
	}

	a, b := forward.Finalize(), backward.Finalize()
	a.Rate, b.Rate = 0, 0
	a.Start, b.Start = time.Time{}, time.Time{}
	a.StartMs, b.StartMs = 0, 0
	a.TotalTime, b.TotalTime = 0, 0
	a.TotalTimeMs, b.TotalTimeMs = 0, 0
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("stats differ by delivery order:\n%+v\n%+v", a, b)
	}
}

func TestCollectorRateAndTotalTime(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0), step: 250 * time.Millisecond}
	c := metrics.NewCollectorWithClock(clock.Now)
	// start read at t=0; each Record reads once more.
	c.Record(ok(0, 1)) // t=0.25s
	c.Record(ok(1, 1)) // t=0.5s

	stats := c.Finalize() // t=0.75s
	if math.Abs(stats.Rate-4.0) > 1e-9 {
		t.Fatalf("expected rate 4/s, got %v", stats.Rate)
	}
	if stats.TotalTime != 750*time.Millisecond || stats.TotalTimeMs != 750 {
		t.Fatalf("expected total time 750ms, got %s (%d)", stats.TotalTime, stats.TotalTimeMs)
	}
	if stats.StartMs != 1_700_000_000_000 {
		t.Fatalf("unexpected start %d", stats.StartMs)
	}

	again := c.Finalize()
	if again.TotalTime != stats.TotalTime {
		t.Fatalf("finalize should be stable, got %s then %s", stats.TotalTime, again.TotalTime)
	}
}

func TestCollectorPercentiles(t *testing.T) {
	c := metrics.NewCollector()
	for i := 1; i <= 100; i++ {
		c.Record(ok(int64(i), int64(i)))
	}
	stats := c.Finalize()
	if stats.P50 < 49 || stats.P50 > 51 {
		t.Errorf("expected P50 ~50, got %d", stats.P50)
	}
	if stats.P90 < 89 || stats.P90 > 91 {
		t.Errorf("expected P90 ~90, got %d", stats.P90)
	}
	if stats.P99 < 98 || stats.P99 > 100 {
		t.Errorf("expected P99 ~99, got %d", stats.P99)
	}
}

func TestStatsJSONSchema(t *testing.T) {
	c := metrics.NewCollector()
	c.Record(ok(0, 15))
	c.Record(ok(1, 25))

	data, err := json.Marshal(c.Finalize())
	if err != nil {
		t.Fatalf("failed to marshal stats: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("failed to unmarshal stats: %v", err)
	}
	for _, key := range []string{"statuses", "min", "max", "avg", "count", "rate", "start", "total_time"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %q in %s", key, data)
		}
	}
	if !strings.Contains(string(data), `"200":2`) {
		t.Errorf("expected status histogram keyed by code, got %s", data)
	}
}
