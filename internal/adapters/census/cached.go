package census

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"

	"mass_housing/internal/domain"
)

// CachedProvider wraps any CensusProvider with a cache so reruns of the
// pipeline skip the ACS round trip. The key covers the requested town set,
// which keeps synthetic results for different listing files apart.
type CachedProvider struct {
	inner  domain.CensusProvider
	cache  domain.Cache
	ttlSec int
}

func NewCached(inner domain.CensusProvider, cache domain.Cache, ttlSec int) *CachedProvider {
	return &CachedProvider{inner: inner, cache: cache, ttlSec: ttlSec}
}

func (p *CachedProvider) TownDemographics(ctx context.Context, towns []string) ([]domain.TownRecord, error) {
	key := "census:towns:" + townSetHash(towns)
	var cached []domain.TownRecord
	if ok, _ := p.cache.Get(ctx, key, &cached); ok {
		return cached, nil
	}
	out, err := p.inner.TownDemographics(ctx, towns)
	if err != nil {
		return nil, err
	}
	_ = p.cache.Set(ctx, key, out, p.ttlSec)
	return out, nil
}

func townSetHash(towns []string) string {
	sorted := make([]string, len(towns))
	copy(sorted, towns)
	sort.Strings(sorted)
	sum := sha1.Sum([]byte(strings.Join(sorted, "|")))
	return hex.EncodeToString(sum[:])
}
