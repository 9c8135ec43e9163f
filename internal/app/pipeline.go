package app

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"mass_housing/internal/adapters/observability"
	"mass_housing/internal/domain"
)

// PipelineResult holds every artifact of one batch run.
type PipelineResult struct {
	Cleaned   []domain.Listing
	Towns     []domain.TownRecord
	Mapping   map[string]string
	Merged    []domain.MergedListing
	Summaries []domain.TownSummary
	Report    ValidationReport

	DistinctTowns  int
	MatchedTowns   int
	UnmatchedTowns int
}

// PipelineService wires the stages into one synchronous batch run:
// normalize → validate → fetch demographics → resolve → aggregate → merge.
// Each stage fully consumes its input before the next begins; all state is
// stage-local, so a run is deterministic for identical inputs (modulo the
// synthetic provider, see adapters/census).
type PipelineService struct {
	normalizer *Normalizer
	provider   domain.CensusProvider
	threshold  int
}

func NewPipelineService(p domain.CensusProvider, threshold int) *PipelineService {
	if threshold <= 0 {
		threshold = MatchThreshold
	}
	return &PipelineService{
		normalizer: NewNormalizer(),
		provider:   p,
		threshold:  threshold,
	}
}

func (s *PipelineService) Run(ctx context.Context, raw []domain.RawListing) (*PipelineResult, error) {
	start := time.Now()

	cands := make([]domain.ListingCandidate, 0, len(raw))
	for _, r := range raw {
		cands = append(cands, s.normalizer.Normalize(r))
	}

	cleaned, rep := Validate(cands)
	observability.ObserveRows("normalized", rep.Input)
	observability.ObserveRows("cleaned", rep.Output)
	observability.ObserveDropped("duplicate", rep.Duplicates)
	observability.ObserveDropped("missing_critical", rep.MissingCritical)
	observability.ObserveDropped("out_of_range", rep.OutOfRange)
	log.Info().
		Int("input", rep.Input).
		Int("duplicates", rep.Duplicates).
		Int("missing_critical", rep.MissingCritical).
		Int("out_of_range", rep.OutOfRange).
		Int("output", rep.Output).
		Msg("listings cleaned")

	listingTowns := ListingTowns(cleaned)

	towns, err := s.provider.TownDemographics(ctx, listingTowns)
	if err != nil {
		return nil, fmt.Errorf("fetch town demographics: %w", err)
	}
	townIdx := IndexTowns(towns)
	censusNames := make([]string, 0, len(townIdx))
	for name := range townIdx {
		censusNames = append(censusNames, name)
	}

	mapping := ResolveTowns(listingTowns, censusNames, s.threshold)
	matched := len(mapping)
	unmatched := len(listingTowns) - matched
	observability.ObserveResolution("matched", matched)
	observability.ObserveResolution("unmatched", unmatched)
	log.Info().
		Int("distinct_towns", len(listingTowns)).
		Int("matched", matched).
		Int("unmatched", unmatched).
		Msg("towns resolved")
	if unmatched > 0 {
		log.Info().Strs("sample", unmatchedSample(listingTowns, mapping, 10)).Msg("unmatched towns")
	}

	aggs := AggregateTowns(cleaned)
	merged := MergeListings(cleaned, townIdx, mapping)
	summaries := MergeTownAggregates(aggs, townIdx, mapping)

	withIncome := 0
	for _, m := range merged {
		if m.MedianIncome != nil {
			withIncome++
		}
	}
	log.Info().
		Int("merged", len(merged)).
		Int("with_income", withIncome).
		Int("town_summaries", len(summaries)).
		Dur("elapsed", time.Since(start)).
		Msg("pipeline completed")
	observability.ObservePipelineDuration(time.Since(start))

	return &PipelineResult{
		Cleaned:        cleaned,
		Towns:          towns,
		Mapping:        mapping,
		Merged:         merged,
		Summaries:      summaries,
		Report:         rep,
		DistinctTowns:  len(listingTowns),
		MatchedTowns:   matched,
		UnmatchedTowns: unmatched,
	}, nil
}

func unmatchedSample(towns []string, mapping map[string]string, n int) []string {
	out := make([]string, 0, n)
	for _, t := range towns {
		if _, ok := mapping[t]; ok {
			continue
		}
		out = append(out, t)
		if len(out) == n {
			break
		}
	}
	return out
}
