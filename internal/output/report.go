package output

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/torosent/volley/internal/metrics"
)

// PrintReport outputs a human-readable summary report.
func PrintReport(w io.Writer, stats metrics.Stats) {
	fmt.Fprintln(w, "\n--- Volley Results ---")
	if stats.RunID != "" {
		fmt.Fprintf(w, "Run ID:            %s\n", stats.RunID)
	}
	if stats.Interrupted {
		fmt.Fprintln(w, "Interrupted:       yes")
	}
	fmt.Fprintf(w, "Started:           %s\n", stats.Start.Format(time.RFC3339Nano))
	fmt.Fprintf(w, "Total Time:        %s (%d ms)\n", stats.TotalTime, stats.TotalTimeMs)
	fmt.Fprintf(w, "Responses:         %d\n", stats.Count)
	fmt.Fprintf(w, "Rate:              %.2f req/s\n", stats.Rate)
	fmt.Fprintln(w, "\nClient Time (ms):")
	fmt.Fprintf(w, "  Min:             %d\n", stats.Min)
	fmt.Fprintf(w, "  Max:             %d\n", stats.Max)
	fmt.Fprintf(w, "  Avg:             %.2f\n", stats.Avg)
	fmt.Fprintf(w, "  P50:             %d\n", stats.P50)
	fmt.Fprintf(w, "  P90:             %d\n", stats.P90)
	fmt.Fprintf(w, "  P99:             %d\n", stats.P99)

	fmt.Fprintln(w, "\nStatuses:")
	writeStatuses(w, stats.Statuses, "  ")

	if len(stats.Errors) > 0 {
		fmt.Fprintln(w, "\nTransport Errors:")
		writeErrors(w, stats.Errors, "  ")
	}
}

func writeStatuses(w io.Writer, statuses map[int]int64, indent string) {
	rows := metrics.SortedStatuses(statuses)
	if len(rows) == 0 {
		fmt.Fprintf(w, "%sNone\n", indent)
		return
	}
	for _, row := range rows {
		label := fmt.Sprintf("%d", row.Code)
		if row.Code == metrics.StatusTransportFailure {
			label = "0 (transport failure)"
		}
		fmt.Fprintf(w, "%s%s: %d\n", indent, label, row.Count)
	}
}

func writeErrors(w io.Writer, errs map[string]int64, indent string) {
	kinds := make([]string, 0, len(errs))
	for kind := range errs {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		if errs[kinds[i]] == errs[kinds[j]] {
			return kinds[i] < kinds[j]
		}
		return errs[kinds[i]] > errs[kinds[j]]
	})
	for _, kind := range kinds {
		fmt.Fprintf(w, "%s%s: %d\n", indent, metrics.FriendlyErrorKind(kind), errs[kind])
	}
}
