package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/courtdata/fastbreak-go/pkg/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for batch operations.
var (
	batchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "nbastats_batches_total",
		Help: "Total batch fetches by outcome",
	}, []string{"outcome"})

	batchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "nbastats_batch_size",
		Help:    "Number of requests per batch",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
	})
)

// progressThreshold is the batch size at which periodic progress events
// are emitted; smaller batches finish fast enough to stay silent.
const progressThreshold = 10

// BatchFailure is one failed request within a batch, tagged with its
// input position.
type BatchFailure struct {
	Index    int
	Endpoint string
	Err      error
}

// BatchError aggregates every terminal failure of a batch. The batch is
// all-or-nothing: one failure fails the whole batch, but siblings run to
// completion first and all of their failures are collected here rather
// than truncated to the first one observed.
type BatchError struct {
	Failures []BatchFailure
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "batch failed: %d request(s) errored", len(e.Failures))
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "; [%d] %s: %v", f.Index, f.Endpoint, f.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying errors to errors.Is/As.
func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// GetMany fans out one Get per endpoint with at most MaxConcurrency in
// flight, and returns the bodies aligned to input order regardless of
// completion order. On any failure the batch as a whole fails with a
// BatchError carrying every failed request.
func (c *Client) GetMany(ctx context.Context, eps []api.Endpoint) ([][]byte, error) {
	if len(eps) == 0 {
		return [][]byte{}, nil
	}

	start := time.Now()
	total := len(eps)
	batchSize.Observe(float64(total))

	c.logger.Info().
		Int("total", total).
		Int("max_concurrency", c.config.MaxConcurrency).
		Msg("Starting batch fetch")

	// Results and errors are populated by input index, never appended in
	// completion order.
	results := make([][]byte, total)
	errs := make([]error, total)

	gate := make(chan struct{}, c.config.MaxConcurrency)
	var completed atomic.Int64
	var wg sync.WaitGroup

	for i, ep := range eps {
		wg.Add(1)
		go func(i int, ep api.Endpoint) {
			defer wg.Done()

			select {
			case gate <- struct{}{}:
			case <-ctx.Done():
				errs[i] = fmt.Errorf("%w: %v", ErrContextCancelled, ctx.Err())
				return
			}

			body, err := c.Get(ctx, ep)
			<-gate

			if err != nil {
				errs[i] = err
			} else {
				results[i] = body
			}

			done := completed.Add(1)
			if total >= progressThreshold && done%progressThreshold == 0 && done < int64(total) {
				c.logger.Info().
					Int64("completed", done).
					Int("total", total).
					Msg("Batch fetch progress")
			}
		}(i, ep)
	}

	wg.Wait()

	var failures []BatchFailure
	for i, err := range errs {
		if err != nil {
			failures = append(failures, BatchFailure{
				Index:    i,
				Endpoint: eps[i].Path(),
				Err:      err,
			})
		}
	}

	if len(failures) > 0 {
		batchesTotal.WithLabelValues("error").Inc()
		c.logger.Warn().
			Int("failed", len(failures)).
			Int("total", total).
			Dur("duration", time.Since(start)).
			Msg("Batch fetch failed")
		return nil, &BatchError{Failures: failures}
	}

	batchesTotal.WithLabelValues("success").Inc()
	c.logger.Info().
		Int("total", total).
		Dur("duration", time.Since(start)).
		Msg("Batch fetch complete")
	return results, nil
}

// FetchMany performs GetMany and decodes every body into T, preserving
// input order. Decode failures are fatal and aggregate the same way
// request failures do.
func FetchMany[T any](ctx context.Context, c *Client, eps []api.Endpoint) ([]T, error) {
	bodies, err := c.GetMany(ctx, eps)
	if err != nil {
		return nil, err
	}

	out := make([]T, len(bodies))
	var failures []BatchFailure
	for i, body := range bodies {
		if err := json.Unmarshal(body, &out[i]); err != nil {
			failures = append(failures, BatchFailure{
				Index:    i,
				Endpoint: eps[i].Path(),
				Err:      &APIError{Endpoint: eps[i].Path(), Class: ErrorClassDecode, Attempts: 1, Err: err},
			})
		}
	}
	if len(failures) > 0 {
		return nil, &BatchError{Failures: failures}
	}
	return out, nil
}
