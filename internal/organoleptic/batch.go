package organoleptic

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// GradeBatch computes the freshness of many samples concurrently. Results are
// in input order. workers <= 0 means no limit. It stops early and returns the
// context error if ctx is cancelled.
func GradeBatch(ctx context.Context, samples []Parameters, workers int) ([]Freshness, error) {
	results := make([]Freshness, len(samples))

	eg, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		eg.SetLimit(workers)
	}

	for i := range samples {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			results[i] = CalculateFreshness(samples[i])
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
