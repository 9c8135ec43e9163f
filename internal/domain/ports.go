package domain

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// CensusProvider returns one demographic row per town. The live ACS client
// ignores the towns argument (the agency decides coverage); the synthetic
// generator derives its rows from it. An empty result is not an error —
// downstream merges simply carry no demographic fields.
type CensusProvider interface {
	TownDemographics(ctx context.Context, towns []string) ([]TownRecord, error)
}

type HousingRepository interface {
	// Write paths
	UpsertListings(ctx context.Context, ls []MergedListing) error
	UpsertTowns(ctx context.Context, ts []TownRecord) error
	UpsertTownSummaries(ctx context.Context, ss []TownSummary) error

	// Read paths
	GetTownSummary(ctx context.Context, town string) (TownSummary, error)
	ListTownSummaries(ctx context.Context, q TownsQuery) ([]TownSummary, error)
	ListTownListings(ctx context.Context, town string, limit int) ([]MergedListing, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}

// TownsQuery selects top-N town summaries by mean price descending, town
// name ascending on ties.
type TownsQuery struct {
	Limit int
}
