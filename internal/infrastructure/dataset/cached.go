package dataset

import (
	"context"
	"log/slog"

	"FRELookup/internal/cache"
	"FRELookup/internal/domain"
	"FRELookup/internal/ports"
)

type snapshot struct {
	filings domain.Filings
	plans   domain.Plans
}

// Cached loads through source once and serves the result read-only until
// Invalidate is called. Failed loads are retried on the next call.
type Cached struct {
	source ports.DatasetSource
	slot   *cache.Value[snapshot]
	logger *slog.Logger
}

var _ ports.DatasetSource = (*Cached)(nil)

func NewCached(source ports.DatasetSource, log *slog.Logger) *Cached {
	return &Cached{
		source: source,
		slot:   cache.NewValue[snapshot](),
		logger: log,
	}
}

func (c *Cached) Load(ctx context.Context) (domain.Filings, domain.Plans, error) {
	snap, err := c.slot.Get(ctx, func(ctx context.Context) (snapshot, error) {
		filings, plans, err := c.source.Load(ctx)
		if err != nil {
			return snapshot{}, err
		}
		return snapshot{filings: filings, plans: plans}, nil
	})
	if err != nil {
		return domain.Filings{}, domain.Plans{}, err
	}
	return snap.filings, snap.plans, nil
}

// Invalidate drops the loaded datasets.
func (c *Cached) Invalidate() {
	c.slot.Invalidate()
	if c.logger != nil {
		c.logger.Info("dataset cache invalidated")
	}
}

// Loaded reports whether datasets are currently cached.
func (c *Cached) Loaded() bool {
	return c.slot.Loaded()
}
