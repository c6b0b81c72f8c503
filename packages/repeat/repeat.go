// Package repeat drives a request through multiple executions: either a
// retry loop for flaky endpoints or a fixed-count benchmark. The executor
// itself never retries; this package is the caller-level loop that owns the
// request's attempt counter.
package repeat

import (
	"context"
	"errors"
	"time"

	"golang.org/x/time/rate"

	"github.com/restcall-dev/restcall/packages/rest"
)

// RetryPredicate decides whether another attempt should follow the given
// outcome. Exactly one of resp and err is non-nil.
type RetryPredicate func(resp *rest.Response, err error) bool

// DefaultRetryPredicate retries on transport failures and 5xx statuses.
func DefaultRetryPredicate(resp *rest.Response, err error) bool {
	if err != nil {
		var netErr *rest.NetworkError
		return errors.As(err, &netErr)
	}
	return resp.IsServerError()
}

// Report summarizes a loop's executions.
type Report struct {
	Executions int
	Successes  int
	Errors     int

	P50 time.Duration
	P95 time.Duration
	P99 time.Duration
	Max time.Duration

	// LastResponse and LastErr reflect the final attempt.
	LastResponse *rest.Response
	LastErr      error
}

// Runner repeats executions of a request against one executor.
type Runner struct {
	executor *rest.Executor
	attempts int
	limiter  *rate.Limiter
	retry    RetryPredicate
}

type Option func(*Runner)

// WithExecutor sets the executor; a default one is used otherwise.
func WithExecutor(e *rest.Executor) Option {
	return func(r *Runner) { r.executor = e }
}

// WithAttempts caps the retry loop. Defaults to rest.DefaultRetryCount.
func WithAttempts(n int) Option {
	return func(r *Runner) { r.attempts = n }
}

// WithRate paces executions to at most rps requests per second.
func WithRate(rps float64) Option {
	return func(r *Runner) { r.limiter = rate.NewLimiter(rate.Limit(rps), 1) }
}

// WithRetryPredicate replaces DefaultRetryPredicate.
func WithRetryPredicate(p RetryPredicate) Option {
	return func(r *Runner) { r.retry = p }
}

func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		attempts: rest.DefaultRetryCount,
		retry:    DefaultRetryPredicate,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.executor == nil {
		r.executor = rest.NewExecutor()
	}
	if r.attempts < 1 {
		r.attempts = 1
	}
	return r
}

// Run executes req until the retry predicate is satisfied or the attempt
// budget is exhausted, bumping the request's attempt counter once per try.
// The returned error is the final attempt's transport failure, if any; an
// HTTP error status is reported through the Report, not the error.
func (r *Runner) Run(ctx context.Context, req *rest.Request) (*Report, error) {
	m := newMetrics()

	var lastResp *rest.Response
	var lastErr error
	for i := 0; i < r.attempts; i++ {
		if err := r.wait(ctx); err != nil {
			return nil, err
		}

		req.IncrementAttempts()
		lastResp, lastErr = r.executor.ExecuteContext(ctx, req)
		m.record(elapsedOf(req, lastResp), lastErr)

		if !r.retry(lastResp, lastErr) {
			break
		}
	}

	report := m.report()
	report.LastResponse = lastResp
	report.LastErr = lastErr
	return &report, lastErr
}

// Benchmark executes req exactly count times regardless of outcome and
// reports aggregate latency percentiles. Transport failures are counted,
// not returned.
func (r *Runner) Benchmark(ctx context.Context, req *rest.Request, count int) (*Report, error) {
	m := newMetrics()

	var lastResp *rest.Response
	var lastErr error
	for i := 0; i < count; i++ {
		if err := r.wait(ctx); err != nil {
			return nil, err
		}

		req.IncrementAttempts()
		lastResp, lastErr = r.executor.ExecuteContext(ctx, req)
		m.record(elapsedOf(req, lastResp), lastErr)
	}

	report := m.report()
	report.LastResponse = lastResp
	report.LastErr = lastErr
	return &report, nil
}

func (r *Runner) wait(ctx context.Context) error {
	if r.limiter != nil {
		return r.limiter.Wait(ctx)
	}
	return ctx.Err()
}

// elapsedOf prefers the response's measured duration; on transport failure
// the request's stored elapsed time from a prior success would be stale, so
// zero is recorded instead.
func elapsedOf(req *rest.Request, resp *rest.Response) time.Duration {
	if resp != nil {
		return resp.Duration
	}
	return 0
}
