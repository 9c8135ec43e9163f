package app

import (
	"sort"

	"mass_housing/internal/domain"
)

// meanAcc is the "mean ignoring missing values" reducer shared by every
// optional field, so the five risk levels and three sub-scores behave
// identically. Mean() is nil when nothing was added.
type meanAcc struct {
	sum float64
	n   int
}

func (m *meanAcc) AddFloat(v *float64) {
	if v == nil {
		return
	}
	m.sum += *v
	m.n++
}

func (m *meanAcc) AddInt(v *int) {
	if v == nil {
		return
	}
	m.sum += float64(*v)
	m.n++
}

func (m *meanAcc) Add(v float64) {
	m.sum += v
	m.n++
}

func (m *meanAcc) Mean() *float64 {
	if m.n == 0 {
		return nil
	}
	f := m.sum / float64(m.n)
	return &f
}

// AggregateTowns groups cleaned listings by their own city name (resolution
// happens later and independently) and computes per-town means. Output is
// sorted by town name ascending.
func AggregateTowns(listings []domain.Listing) []domain.TownAggregate {
	type accs struct {
		count                        int
		price                        meanAcc
		flood, fire, heat, wind, air meanAcc
		walk, transit, bike          meanAcc
	}

	byTown := make(map[string]*accs)
	for _, l := range listings {
		a, ok := byTown[l.City]
		if !ok {
			a = &accs{}
			byTown[l.City] = a
		}
		a.count++
		a.price.Add(l.Price)
		a.flood.AddInt(l.FloodRisk)
		a.fire.AddInt(l.FireRisk)
		a.heat.AddInt(l.HeatRisk)
		a.wind.AddInt(l.WindRisk)
		a.air.AddInt(l.AirQualityRisk)
		a.walk.AddInt(l.WalkScore)
		a.transit.AddInt(l.TransitScore)
		a.bike.AddInt(l.BikeScore)
	}

	out := make([]domain.TownAggregate, 0, len(byTown))
	for town, a := range byTown {
		agg := domain.TownAggregate{
			Town:               town,
			Listings:           a.count,
			MeanPrice:          a.price.Mean(),
			MeanFloodRisk:      a.flood.Mean(),
			MeanFireRisk:       a.fire.Mean(),
			MeanHeatRisk:       a.heat.Mean(),
			MeanWindRisk:       a.wind.Mean(),
			MeanAirQualityRisk: a.air.Mean(),
			MeanWalkScore:      a.walk.Mean(),
			MeanTransitScore:   a.transit.Mean(),
			MeanBikeScore:      a.bike.Mean(),
		}

		var risk meanAcc
		risk.AddFloat(agg.MeanFloodRisk)
		risk.AddFloat(agg.MeanFireRisk)
		risk.AddFloat(agg.MeanHeatRisk)
		risk.AddFloat(agg.MeanWindRisk)
		risk.AddFloat(agg.MeanAirQualityRisk)
		agg.AvgRisk = risk.Mean()

		var live meanAcc
		live.AddFloat(agg.MeanWalkScore)
		live.AddFloat(agg.MeanTransitScore)
		live.AddFloat(agg.MeanBikeScore)
		agg.Livability = live.Mean()

		out = append(out, agg)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Town < out[j].Town })
	return out
}

// TopByMeanPrice returns the n most expensive towns: strict descending mean
// price, town name ascending on ties. Towns with no mean price sort last.
func TopByMeanPrice(aggs []domain.TownAggregate, n int) []domain.TownAggregate {
	sorted := make([]domain.TownAggregate, len(aggs))
	copy(sorted, aggs)
	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].MeanPrice, sorted[j].MeanPrice
		switch {
		case pi == nil && pj == nil:
			return sorted[i].Town < sorted[j].Town
		case pi == nil:
			return false
		case pj == nil:
			return true
		case *pi != *pj:
			return *pi > *pj
		default:
			return sorted[i].Town < sorted[j].Town
		}
	})
	if n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}
