package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/torosent/volley/internal/metrics"
	"github.com/torosent/volley/internal/target"
	"github.com/torosent/volley/internal/tracing"
)

// HeaderRequestID carries a per-request correlation id to the target.
const HeaderRequestID = "X-Request-Id"

// Executor issues one GET against a fixed target per call.
type Executor struct {
	client *http.Client
	target target.Target
	url    string
	tracer *tracing.Provider
	logger *zap.Logger
	now    func() time.Time
}

type ExecutorOption func(*Executor)

// WithTracing wraps every request in a client span and propagates its context.
func WithTracing(p *tracing.Provider) ExecutorOption {
	return func(e *Executor) { e.tracer = p }
}

func WithLogger(l *zap.Logger) ExecutorOption {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock replaces the wall clock used to measure client time.
func WithClock(now func() time.Time) ExecutorOption {
	return func(e *Executor) {
		if now != nil {
			e.now = now
		}
	}
}

func NewExecutor(client *http.Client, tgt target.Target, opts ...ExecutorOption) *Executor {
	if client == nil {
		client = http.DefaultClient
	}
	e := &Executor{
		client: client,
		target: tgt,
		url:    tgt.String(),
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute performs the GET for requestID. It never returns an error: a
// transport failure is reported as status 0 with no server time.
// ResponseCount is left for the caller to assign at completion.
func (e *Executor) Execute(ctx context.Context, requestID int64) metrics.Outcome {
	ctx, span := e.tracer.StartRequestSpan(ctx, e.target, requestID)

	outcome := e.do(ctx, requestID)

	tracing.EndRequestSpan(span, outcome)
	return outcome
}

func (e *Executor) do(ctx context.Context, requestID int64) metrics.Outcome {
	outcome := metrics.Outcome{
		RequestID:  requestID,
		ServerTime: metrics.NotReported,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url, nil)
	if err != nil {
		return e.fail(outcome, e.now(), err)
	}
	req.Header.Set(HeaderRequestID, uuid.NewString())
	e.tracer.Inject(ctx, req.Header)

	start := e.now()
	resp, err := e.client.Do(req)
	if err != nil {
		return e.fail(outcome, start, err)
	}
	defer resp.Body.Close()

	if _, err := io.Copy(io.Discard, resp.Body); err != nil {
		outcome.Status = metrics.StatusTransportFailure
		outcome.ClientTime = elapsedMillis(start, e.now())
		outcome.Error = fmt.Sprintf("read body: %v", err)
		outcome.ErrorKind = metrics.ErrorKindBodyRead
		if kind := metrics.ClassifyError(err); kind == metrics.ErrorKindTimeout || kind == metrics.ErrorKindCanceled {
			outcome.ErrorKind = kind
		}
		e.logFailure(outcome)
		return outcome
	}

	outcome.Status = resp.StatusCode
	outcome.ClientTime = elapsedMillis(start, e.now())
	outcome.ServerTime = ServerTime(resp.Header)
	return outcome
}

func (e *Executor) fail(o metrics.Outcome, start time.Time, err error) metrics.Outcome {
	o.Status = metrics.StatusTransportFailure
	o.ClientTime = elapsedMillis(start, e.now())
	o.ServerTime = metrics.NotReported
	o.Error = err.Error()
	o.ErrorKind = metrics.ClassifyError(err)
	e.logFailure(o)
	return o
}

func (e *Executor) logFailure(o metrics.Outcome) {
	e.logger.Warn("request failed",
		zap.Int64("request_id", o.RequestID),
		zap.String("kind", o.ErrorKind),
		zap.String("error", o.Error),
	)
}

func elapsedMillis(start, end time.Time) int64 {
	ms := end.Sub(start).Milliseconds()
	if ms < 0 {
		return 0
	}
	return ms
}
