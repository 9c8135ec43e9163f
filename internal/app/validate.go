package app

import (
	"fmt"
	"sort"
	"strings"

	"mass_housing/internal/domain"
)

// Domain range invariants for a plausible MA listing.
const (
	PriceMin     = 50_000
	PriceMax     = 10_000_000
	BedroomsMax  = 20
	BathroomsMax = 15
)

// ValidationReport summarizes silent corrections and drops. These are
// counted, logged, and exported as metrics — never treated as failures.
type ValidationReport struct {
	Input           int
	Duplicates      int
	MissingCritical int
	OutOfRange      int
	Output          int
}

// Validate applies the cleaning steps in a fixed order: exact-duplicate
// removal, critical-field drops (price, city), numeric range filters, then
// pricePerSqft derivation. The order is load-bearing — each step changes the
// row population the next one sees, and reordering would shift the reported
// counts between runs.
func Validate(cands []domain.ListingCandidate) ([]domain.Listing, ValidationReport) {
	rep := ValidationReport{Input: len(cands)}

	// 1) exact duplicates
	seen := make(map[string]struct{}, len(cands))
	deduped := make([]domain.ListingCandidate, 0, len(cands))
	for _, c := range cands {
		k := candidateKey(c)
		if _, dup := seen[k]; dup {
			rep.Duplicates++
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, c)
	}

	// 2) critical fields, 3) range filters
	out := make([]domain.Listing, 0, len(deduped))
	for _, c := range deduped {
		if c.Price == nil || c.City == "" {
			rep.MissingCritical++
			continue
		}
		if *c.Price < PriceMin || *c.Price > PriceMax {
			rep.OutOfRange++
			continue
		}
		if c.Bedrooms != nil && (*c.Bedrooms < 0 || *c.Bedrooms > BedroomsMax) {
			rep.OutOfRange++
			continue
		}
		if c.Bathrooms != nil && (*c.Bathrooms < 0 || *c.Bathrooms > BathroomsMax) {
			rep.OutOfRange++
			continue
		}

		l := domain.Listing{
			Price:          *c.Price,
			Sqft:           c.Sqft,
			Bedrooms:       c.Bedrooms,
			Bathrooms:      c.Bathrooms,
			City:           c.City,
			PropertyType:   c.PropertyType,
			FloodRisk:      c.FloodRisk,
			FireRisk:       c.FireRisk,
			HeatRisk:       c.HeatRisk,
			WindRisk:       c.WindRisk,
			AirQualityRisk: c.AirQualityRisk,
			WalkScore:      c.WalkScore,
			TransitScore:   c.TransitScore,
			BikeScore:      c.BikeScore,
		}
		// 4) derived pricePerSqft, guarded against nil and zero area
		if c.Sqft != nil && *c.Sqft != 0 {
			pps := l.Price / *c.Sqft
			l.PricePerSqft = &pps
		}
		out = append(out, l)
	}

	// canonical output order: city asc, price asc
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].City != out[j].City {
			return out[i].City < out[j].City
		}
		return out[i].Price < out[j].Price
	})

	rep.Output = len(out)
	return out, rep
}

// candidateKey is a stable fingerprint over every field, nil-aware, used for
// exact-duplicate detection.
func candidateKey(c domain.ListingCandidate) string {
	parts := []string{
		keyF(c.Price), keyF(c.Sqft), keyI(c.Bedrooms), keyI(c.Bathrooms),
		c.City, keyS(c.PropertyType),
		keyI(c.FloodRisk), keyI(c.FireRisk), keyI(c.HeatRisk), keyI(c.WindRisk), keyI(c.AirQualityRisk),
		keyI(c.WalkScore), keyI(c.TransitScore), keyI(c.BikeScore),
	}
	return strings.Join(parts, "|")
}

func keyF(p *float64) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%g", *p)
}

func keyI(p *int) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf("%d", *p)
}

func keyS(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
