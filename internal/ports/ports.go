package ports

import (
	"context"
	"time"

	"FRELookup/internal/domain"
)

// DatasetSource loads the filings index and the compensation-plans table.
type DatasetSource interface {
	Load(ctx context.Context) (domain.Filings, domain.Plans, error)
}

// ItemDiscoverer lists the chapter-8 items present in one filing.
type ItemDiscoverer interface {
	DiscoverItems(ctx context.Context, documentNumber string) (domain.ItemCodeMap, error)
}

// Scheduler controls when background maintenance jobs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
