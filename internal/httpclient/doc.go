// Package httpclient performs the outbound GET for each unit of load.
//
// [NewClient] builds the per-run *http.Client. Its transport caps connections
// to the target at the configured limit, which the caller sets to the
// concurrency limit plus a small margin:
//
//	client := httpclient.NewClient(httpclient.ClientOptions{
//		MaxConnsPerHost: cfg.Concurrency + httpclient.ConnHeadroom,
//		Timeout:         cfg.Timeout,
//	})
//
// [Executor] turns one request id into one [metrics.Outcome]. It drains the
// response body before stopping the clock, reads the server-reported compute
// time from X-Response-Time or X-Runtime (see [ServerTime]) and maps transport
// failures to status 0 instead of returning an error:
//
//	exec := httpclient.NewExecutor(client, tgt, httpclient.WithTracing(provider))
//	outcome := exec.Execute(ctx, 0)
package httpclient
