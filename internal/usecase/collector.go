package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
	logx "github.com/samalsubrat/mk-price-tracker/pkg/logger"
)

// Collector fetches every product source concurrently. A source that fails,
// panics or times out contributes an empty list; Collect itself never fails.
type Collector struct {
	timeout time.Duration
	logger  zerolog.Logger
}

// NewCollector creates a collector with a per-source timeout
func NewCollector(timeout time.Duration) *Collector {
	if timeout <= 0 {
		timeout = 60 * time.Second // Default 1 minute per vendor
	}

	return &Collector{
		timeout: timeout,
		logger:  logx.Component("collect"),
	}
}

// Collect returns the combined products in source order along with one
// report per source. Completion order does not affect the result.
func (c *Collector) Collect(ctx context.Context, sources []domain.ProductSource) ([]domain.RawProduct, []domain.SourceReport) {
	results := make([][]domain.RawProduct, len(sources))
	reports := make([]domain.SourceReport, len(sources))

	// Errors never propagate out of a goroutine, so the group is only used
	// to wait; one vendor must not cancel the others.
	var g errgroup.Group
	for i, source := range sources {
		g.Go(func() error {
			products, err := c.fetchOne(ctx, source)
			reports[i] = domain.SourceReport{
				Source:   source.Name(),
				Products: len(products),
			}
			if err != nil {
				reports[i].Failed = true
				reports[i].Error = err.Error()
				c.logger.Warn().Err(err).Str("source", source.Name()).Msg("source failed, using empty result")
				return nil
			}
			results[i] = products
			return nil
		})
	}
	_ = g.Wait()

	var combined []domain.RawProduct
	for _, products := range results {
		combined = append(combined, products...)
	}

	return combined, reports
}

// fetchOne calls a single source with its own deadline and turns a panic into an error
func (c *Collector) fetchOne(ctx context.Context, source domain.ProductSource) ([]domain.RawProduct, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	type fetchResult struct {
		products []domain.RawProduct
		err      error
	}
	done := make(chan fetchResult, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fetchResult{err: fmt.Errorf("%w: %s panicked: %v", domain.ErrSourceFailure, source.Name(), r)}
			}
		}()
		p, err := source.Fetch(ctx)
		done <- fetchResult{products: p, err: err}
	}()

	// A source that ignores its context must still not block the run
	select {
	case res := <-done:
		if res.err != nil {
			return nil, res.err
		}
		return res.products, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrSourceFailure, source.Name(), ctx.Err())
	}
}
