// Package batch runs independent generation requests concurrently and
// reports every outcome, successful or not.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fwojciec/watsonx"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Operation runs one unit. It must honor ctx.
type Operation func(ctx context.Context, unit watsonx.BatchUnit) (watsonx.GenerationResult, error)

// Option configures Run.
type Option func(*options)

type options struct {
	concurrency int
	logger      zerolog.Logger
}

// WithConcurrency caps the number of units in flight. Zero or negative
// means unlimited.
func WithConcurrency(n int) Option {
	return func(o *options) { o.concurrency = n }
}

// WithLogger sets the logger used to report failed items.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Run executes op for every unit and returns a report covering each unit
// exactly once. A failing unit never affects its siblings. When ctx ends,
// units that have not completed are reported with kind
// [watsonx.FailureCancelled].
func Run(ctx context.Context, units []watsonx.BatchUnit, op Operation, opts ...Option) watsonx.BatchReport {
	o := options{logger: zerolog.Nop()}
	for _, fn := range opts {
		fn(&o)
	}

	c := collector{items: make([]watsonx.BatchItemOutcome, 0, len(units)), log: o.logger}

	// Not errgroup.WithContext: item errors never cancel siblings.
	var g errgroup.Group
	if o.concurrency > 0 {
		g.SetLimit(o.concurrency)
	}

	start := time.Now()
	for i, u := range units {
		base := watsonx.BatchItemOutcome{Index: i, ID: UnitID(u, i), Prompt: u.Prompt}
		if err := ctx.Err(); err != nil {
			c.add(cancelled(base, err))
			continue
		}
		g.Go(func() error {
			c.add(runOne(ctx, op, u, base))
			return nil
		})
	}
	_ = g.Wait()

	return c.report(time.Since(start))
}

// UnitID returns the unit's ID, or "unit-<index>" when it has none.
func UnitID(u watsonx.BatchUnit, index int) string {
	if u.ID != "" {
		return u.ID
	}
	return fmt.Sprintf("unit-%d", index)
}

func runOne(ctx context.Context, op Operation, u watsonx.BatchUnit, out watsonx.BatchItemOutcome) (res watsonx.BatchItemOutcome) {
	if err := ctx.Err(); err != nil {
		return cancelled(out, err)
	}
	begin := time.Now()
	defer func() {
		if r := recover(); r != nil {
			out.Err = fmt.Errorf("panic: %v", r)
			out.Kind = watsonx.FailureError
			out.Duration = time.Since(begin)
			res = out
		}
	}()

	result, err := op(ctx, u)
	out.Duration = time.Since(begin)
	switch {
	case err == nil:
		out.Result = result
	case ctx.Err() != nil:
		out.Err = fmt.Errorf("%w: %w", watsonx.ErrCancelled, err)
		out.Kind = watsonx.FailureCancelled
	default:
		out.Err = err
		out.Kind = watsonx.FailureError
	}
	return out
}

func cancelled(out watsonx.BatchItemOutcome, cause error) watsonx.BatchItemOutcome {
	out.Err = fmt.Errorf("%w: %w", watsonx.ErrCancelled, cause)
	out.Kind = watsonx.FailureCancelled
	return out
}

type collector struct {
	mu    sync.Mutex
	items []watsonx.BatchItemOutcome
	log   zerolog.Logger
}

func (c *collector) add(o watsonx.BatchItemOutcome) {
	if o.Err != nil {
		c.log.Warn().Err(o.Err).Str("id", o.ID).Int("index", o.Index).Stringer("kind", o.Kind).Msg("batch item failed")
	}
	c.mu.Lock()
	c.items = append(c.items, o)
	c.mu.Unlock()
}

func (c *collector) report(d time.Duration) watsonx.BatchReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	r := watsonx.BatchReport{Total: len(c.items), Duration: d, Items: c.items}
	for _, it := range c.items {
		if it.OK() {
			r.Succeeded++
		} else {
			r.Failed++
		}
	}
	return r
}
