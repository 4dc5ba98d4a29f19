// Package fleet resolves how many trucks each transporter can currently commit.
package fleet

import (
	"context"
	"fmt"
	"sync"

	customerrors "fleet-allocation/errors"
	"fleet-allocation/metrics"
	"fleet-allocation/models"

	"golang.org/x/sync/errgroup"
)

// maxConcurrentLookups bounds the per-transporter lookups in flight.
const maxConcurrentLookups = 8

// Source returns the number of active trucks a transporter has not committed
// elsewhere.
type Source interface {
	AvailableTrucks(ctx context.Context, companyID string) (int, error)
}

// BatchSource is implemented by sources that can answer many transporters in
// one round trip.
type BatchSource interface {
	Source
	AvailableTrucksMany(ctx context.Context, companyIDs []string) (models.FleetAvailability, error)
}

// Static is an in-memory Source. Unknown transporters have no trucks.
type Static models.FleetAvailability

func (s Static) AvailableTrucks(_ context.Context, companyID string) (int, error) {
	return s[companyID], nil
}

func (s Static) AvailableTrucksMany(_ context.Context, companyIDs []string) (models.FleetAvailability, error) {
	out := make(models.FleetAvailability, len(companyIDs))
	for _, id := range companyIDs {
		out[id] = s[id]
	}
	return out, nil
}

// Resolve fetches availability for every company ID before validation.
// Batch sources are queried once; other sources get one lookup per company,
// run concurrently. The first failure cancels the remaining lookups.
func Resolve(ctx context.Context, src Source, companyIDs []string) (_ models.FleetAvailability, err error) {
	defer metrics.Time(ctx, "fleet.Resolve")(&err)

	if src == nil {
		return nil, fmt.Errorf("%w: no fleet source configured", customerrors.ErrFleetLookup)
	}
	if len(companyIDs) == 0 {
		return models.FleetAvailability{}, nil
	}

	if b, ok := src.(BatchSource); ok {
		fleet, err := b.AvailableTrucksMany(ctx, companyIDs)
		if err != nil {
			metrics.FleetLookupErrorsTotal.Inc()
			return nil, fmt.Errorf("%w: %w", customerrors.ErrFleetLookup, err)
		}
		return fleet, nil
	}

	var (
		mu    sync.Mutex
		fleet = make(models.FleetAvailability, len(companyIDs))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)

	for _, id := range companyIDs {
		id := id // per-iteration copy; go directive is 1.21 (pre-loopvar semantics)
		g.Go(func() error {
			n, err := src.AvailableTrucks(gctx, id)
			if err != nil {
				metrics.FleetLookupErrorsTotal.Inc()
				return fmt.Errorf("%w: company %s: %w", customerrors.ErrFleetLookup, id, err)
			}
			mu.Lock()
			fleet[id] = n
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return fleet, nil
}
