package output

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

func TestPrintReportBasic(t *testing.T) {
	stats := metrics.Stats{
		RunID:       "01JABCDEF",
		Statuses:    map[int]int64{200: 95, 0: 3, 503: 2},
		Min:         4,
		Max:         250,
		Avg:         31.5,
		Count:       100,
		Rate:        50.0,
		P50:         20,
		P90:         80,
		P99:         240,
		Errors:      map[string]int64{metrics.ErrorKindTimeout: 3},
		Start:       time.Unix(1_700_000_000, 0),
		TotalTime:   2 * time.Second,
		TotalTimeMs: 2000,
	}

	var buf bytes.Buffer
	PrintReport(&buf, stats)
	output := buf.String()

	for _, want := range []string{
		"Run ID:            01JABCDEF",
		"Responses:         100",
		"Rate:              50.00 req/s",
		"Min:             4",
		"Max:             250",
		"Avg:             31.50",
		"P99:             240",
		"(2000 ms)",
		"200: 95",
		"0 (transport failure): 3",
		"503: 2",
		"Timeout: 3",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("report missing %q:\n%s", want, output)
		}
	}
	if strings.Contains(output, "Interrupted") {
		t.Errorf("completed run reported as interrupted")
	}
	if strings.Index(output, "200: 95") > strings.Index(output, "503: 2") {
		t.Errorf("statuses not sorted by count")
	}
}

func TestPrintReportEmptyRun(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, metrics.Stats{Statuses: map[int]int64{}})
	output := buf.String()

	if !strings.Contains(output, "Responses:         0") {
		t.Errorf("expected zero responses:\n%s", output)
	}
	if !strings.Contains(output, "None") {
		t.Errorf("expected empty status section:\n%s", output)
	}
	if strings.Contains(output, "Transport Errors") {
		t.Errorf("unexpected errors section:\n%s", output)
	}
}

func TestPrintReportInterrupted(t *testing.T) {
	var buf bytes.Buffer
	PrintReport(&buf, metrics.Stats{Interrupted: true})
	if !strings.Contains(buf.String(), "Interrupted:       yes") {
		t.Errorf("interrupted flag missing:\n%s", buf.String())
	}
}
