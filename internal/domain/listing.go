package domain

// Canonical property categories produced by the normalizer's synonym table.
// Unmapped raw values pass through title-cased.
const (
	CategorySingleFamily = "Single Family"
	CategoryCondo        = "Condo"
	CategoryTownhouse    = "Townhouse"
	CategoryMultiFamily  = "Multi Family"
)

// RawListing is one row of the listing file as received: every field is the
// untouched cell text. It exists only during normalization.
type RawListing struct {
	Price          string
	Sqft           string
	Bedrooms       string
	Bathrooms      string
	City           string
	PropertyType   string
	FloodRisk      string
	FireRisk       string
	HeatRisk       string
	WindRisk       string
	AirQualityRisk string
	WalkScore      string
	TransitScore   string
	BikeScore      string
}

// ListingCandidate is the normalizer's typed projection of a raw row, before
// range validation. Per-field parse failures degrade to nil; nothing is
// dropped at this stage.
type ListingCandidate struct {
	Price          *float64
	Sqft           *float64
	Bedrooms       *int
	Bathrooms      *int
	City           string // trimmed + title-cased; "" when missing
	PropertyType   *string
	FloodRisk      *int
	FireRisk       *int
	HeatRisk       *int
	WindRisk       *int
	AirQualityRisk *int
	WalkScore      *int
	TransitScore   *int
	BikeScore      *int
}

// Listing is a validated, immutable per-property record. Price and City are
// guaranteed present; PricePerSqft is nil when Sqft is nil or zero.
type Listing struct {
	Price          float64
	Sqft           *float64
	Bedrooms       *int
	Bathrooms      *int
	City           string
	PropertyType   *string
	FloodRisk      *int
	FireRisk       *int
	HeatRisk       *int
	WindRisk       *int
	AirQualityRisk *int
	WalkScore      *int
	TransitScore   *int
	BikeScore      *int
	PricePerSqft   *float64
}

// MergedListing extends a cleaned listing with the demographic fields of the
// town it resolved to. Unresolved listings carry nils; the row itself is
// always retained.
type MergedListing struct {
	Listing
	CensusTown         *string
	MedianIncome       *float64
	Population         *int
	PriceToIncomeRatio *float64
}
