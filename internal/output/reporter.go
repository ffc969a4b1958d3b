// Package output renders per-request lines and the run summary as coloured
// text or JSON lines.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/torosent/volley/internal/config"
	"github.com/torosent/volley/internal/metrics"
)

// Reporter receives every Outcome in completion order and one summary.
type Reporter interface {
	// Header is written once before the first request is issued.
	Header()
	Outcome(o metrics.Outcome)
	Summary(stats metrics.Stats)
}

// NewReporter returns the reporter for format writing to w.
func NewReporter(format config.OutputFormat, w io.Writer) (Reporter, error) {
	switch format {
	case config.OutputText, "":
		return NewTextReporter(w), nil
	case config.OutputJSON:
		return NewJSONReporter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", format)
	}
}

// TextReporter prints one line per request:
//
//	[200] 3 /2 time: 15 (12)
//
// status, response ordinal, request id, client time and server time in ms.
// Colours are only emitted when w is a terminal.
type TextReporter struct {
	mu sync.Mutex
	w  io.Writer

	ok     lipgloss.Style
	failed lipgloss.Style
	client lipgloss.Style
	server lipgloss.Style
}

func NewTextReporter(w io.Writer) *TextReporter {
	r := lipgloss.NewRenderer(w)
	return &TextReporter{
		w:      w,
		ok:     r.NewStyle().Foreground(lipgloss.Color("2")),
		failed: r.NewStyle().Foreground(lipgloss.Color("1")),
		client: r.NewStyle().Foreground(lipgloss.Color("4")),
		server: r.NewStyle().Foreground(lipgloss.Color("3")),
	}
}

func (t *TextReporter) Header() {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, "[status] response# /request_id time: client time (ms) (server time (ms))")
}

func (t *TextReporter) Outcome(o metrics.Outcome) {
	status := t.failed
	if o.Status == 200 {
		status = t.ok
	}
	line := fmt.Sprintf("[%s] %d /%d time: %s (%s)",
		status.Render(strconv.Itoa(o.Status)),
		o.ResponseCount,
		o.RequestID,
		t.client.Render(strconv.FormatInt(o.ClientTime, 10)),
		t.server.Render(strconv.FormatInt(o.ServerTime, 10)),
	)
	if o.Failed() && o.Error != "" {
		line += " error: " + o.Error
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.w, line)
}

func (t *TextReporter) Summary(stats metrics.Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()
	PrintReport(t.w, stats)
}

// JSONReporter writes one JSON object per line. Outcomes are written as they
// arrive; the summary is wrapped as {"stats": {...}}.
type JSONReporter struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{enc: json.NewEncoder(w)}
}

func (j *JSONReporter) Header() {}

func (j *JSONReporter) Outcome(o metrics.Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(o)
}

func (j *JSONReporter) Summary(stats metrics.Stats) {
	j.mu.Lock()
	defer j.mu.Unlock()
	_ = j.enc.Encode(struct {
		Stats metrics.Stats `json:"stats"`
	}{Stats: stats})
}
