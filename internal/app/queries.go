package app

import (
	"context"
	"fmt"
	"time"

	"mass_housing/internal/domain"
)

type QueryService struct {
	repo     domain.HousingRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.HousingRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

func (s *QueryService) GetTown(ctx context.Context, town string) (domain.TownSummary, error) {
	key := fmt.Sprintf("town:%s", town)
	var ts domain.TownSummary
	if ok, _ := s.cache.Get(ctx, key, &ts); ok {
		return ts, nil
	}
	ts, err := s.repo.GetTownSummary(ctx, town)
	if err != nil {
		return domain.TownSummary{}, err
	}
	_ = s.cache.Set(ctx, key, ts, int(s.cacheTTL.Seconds()))
	return ts, nil
}

func (s *QueryService) ListTowns(ctx context.Context, q domain.TownsQuery) ([]domain.TownSummary, error) {
	key := fmt.Sprintf("towns:%d", q.Limit)
	var out []domain.TownSummary
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	ss, err := s.repo.ListTownSummaries(ctx, q)
	if err != nil {
		return nil, err
	}
	_ = s.cache.Set(ctx, key, ss, int(s.cacheTTL.Seconds()))
	return ss, nil
}

func (s *QueryService) ListTownListings(ctx context.Context, town string, limit int) ([]domain.MergedListing, error) {
	key := fmt.Sprintf("listings:%s:%d", town, limit)
	var out []domain.MergedListing
	if ok, _ := s.cache.Get(ctx, key, &out); ok {
		return out, nil
	}
	ls, err := s.repo.ListTownListings(ctx, town, limit)
	if err != nil {
		return nil, err
	}

	// copy to avoid aliasing the repo's backing array into the cache
	cp := make([]domain.MergedListing, len(ls))
	copy(cp, ls)
	_ = s.cache.Set(ctx, key, cp, int(s.cacheTTL.Seconds()))
	return cp, nil
}
