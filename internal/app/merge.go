package app

import (
	"mass_housing/internal/domain"
)

// incomeEpsilon guards the price-to-income division. Incomes at or below it
// (zero, negative, agency sentinels that slipped through) yield a nil ratio
// instead of an infinity.
const incomeEpsilon = 1e-9

// IndexTowns builds a name → record index, first occurrence wins.
func IndexTowns(towns []domain.TownRecord) map[string]domain.TownRecord {
	idx := make(map[string]domain.TownRecord, len(towns))
	for _, t := range towns {
		if t.Town == "" {
			continue
		}
		if _, ok := idx[t.Town]; !ok {
			idx[t.Town] = t
		}
	}
	return idx
}

// MergeListings left-joins every cleaned listing with the demographic record
// reached via the resolved mapping from its own city name. Unmatched rows
// are retained with nil demographic fields, so the row count is invariant.
func MergeListings(ls []domain.Listing, towns map[string]domain.TownRecord, mapping map[string]string) []domain.MergedListing {
	out := make([]domain.MergedListing, 0, len(ls))
	for _, l := range ls {
		m := domain.MergedListing{Listing: l}
		if census, ok := mapping[l.City]; ok {
			if rec, ok := towns[census]; ok {
				ct := census
				m.CensusTown = &ct
				m.MedianIncome = rec.MedianIncome
				m.Population = rec.Population
				m.PriceToIncomeRatio = incomeRatio(&l.Price, rec.MedianIncome)
			}
		}
		out = append(out, m)
	}
	return out
}

// MergeTownAggregates is the place-level variant of the same join.
func MergeTownAggregates(aggs []domain.TownAggregate, towns map[string]domain.TownRecord, mapping map[string]string) []domain.TownSummary {
	out := make([]domain.TownSummary, 0, len(aggs))
	for _, a := range aggs {
		s := domain.TownSummary{TownAggregate: a}
		if census, ok := mapping[a.Town]; ok {
			if rec, ok := towns[census]; ok {
				ct := census
				s.CensusTown = &ct
				s.MedianIncome = rec.MedianIncome
				s.Population = rec.Population
				s.PriceToIncomeRatio = incomeRatio(a.MeanPrice, rec.MedianIncome)
			}
		}
		out = append(out, s)
	}
	return out
}

func incomeRatio(price, income *float64) *float64 {
	if price == nil || income == nil || *income <= incomeEpsilon {
		return nil
	}
	r := *price / *income
	return &r
}
