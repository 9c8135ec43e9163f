package domain

// TownRecord is one town/city row from the demographic source. Deduplicated
// by town name, first occurrence wins.
type TownRecord struct {
	Town         string
	MedianIncome *float64
	Population   *int
}

// CountyRecord is the county-level variant fetched alongside town data by the
// live provider; kept as a secondary reference artifact.
type CountyRecord struct {
	County          string
	MedianIncome    *float64
	Population      *int
	MedianHomeValue *float64
}

// TownAggregate is the per-town rollup of cleaned listings, keyed by the
// listing's own city name (aggregation happens before resolution).
// Means ignore nil inputs; a field nil for every member stays nil.
type TownAggregate struct {
	Town               string
	Listings           int
	MeanPrice          *float64
	MeanFloodRisk      *float64
	MeanFireRisk       *float64
	MeanHeatRisk       *float64
	MeanWindRisk       *float64
	MeanAirQualityRisk *float64
	MeanWalkScore      *float64
	MeanTransitScore   *float64
	MeanBikeScore      *float64
	AvgRisk            *float64
	Livability         *float64
}

// TownSummary is a TownAggregate left-joined with its resolved demographic
// record. PriceToIncomeRatio here is mean price over median income, with the
// same zero-income guard as the listing-level ratio.
type TownSummary struct {
	TownAggregate
	CensusTown         *string
	MedianIncome       *float64
	Population         *int
	PriceToIncomeRatio *float64
}
