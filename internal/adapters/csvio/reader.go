// Package csvio reads and writes the pipeline's tabular artifacts.
//
// Input headers vary by source vintage, so columns are located through an
// alias registry after lower-casing and underscore-normalizing the header
// row. A missing required column or an unreadable row is a fatal ingestion
// error; everything recoverable is left to the normalizer.
package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"mass_housing/internal/domain"
)

/********** header alias registry (single source of truth) **********/

var listingAliases = map[string][]string{
	"price":            {"price", "list_price", "listing_price"},
	"sqft":             {"sqft", "square_feet", "squarefeet", "living_area", "area"},
	"bedrooms":         {"bedrooms", "beds", "br"},
	"bathrooms":        {"bathrooms", "baths", "ba"},
	"city":             {"city", "town", "municipality"},
	"property_type":    {"property_type", "propertytype", "type", "home_type"},
	"flood_risk":       {"flood_risk", "flood_factor", "flood"},
	"fire_risk":        {"fire_risk", "fire_factor", "fire"},
	"heat_risk":        {"heat_risk", "heat_factor", "heat"},
	"wind_risk":        {"wind_risk", "wind_factor", "wind"},
	"air_quality_risk": {"air_quality_risk", "air_quality", "air_risk", "air_factor"},
	"walk_score":       {"walk_score", "walkscore"},
	"transit_score":    {"transit_score", "transitscore"},
	"bike_score":       {"bike_score", "bikescore"},
}

// requiredColumns must be present in the header; their absence aborts the
// run with an error naming the column.
var requiredColumns = []string{"price", "city"}

// ReadListings loads the raw listing file. Cell values are returned
// untouched; typing and degradation to null happen in the normalizer.
func ReadListings(path string) ([]domain.RawListing, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open listing file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read listing file %q: %w", path, err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("listing file %q has no header row", path)
	}

	cols, err := resolveColumns(rows[0])
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawListing, 0, len(rows)-1)
	for _, row := range rows[1:] {
		out = append(out, domain.RawListing{
			Price:          cell(row, cols, "price"),
			Sqft:           cell(row, cols, "sqft"),
			Bedrooms:       cell(row, cols, "bedrooms"),
			Bathrooms:      cell(row, cols, "bathrooms"),
			City:           cell(row, cols, "city"),
			PropertyType:   cell(row, cols, "property_type"),
			FloodRisk:      cell(row, cols, "flood_risk"),
			FireRisk:       cell(row, cols, "fire_risk"),
			HeatRisk:       cell(row, cols, "heat_risk"),
			WindRisk:       cell(row, cols, "wind_risk"),
			AirQualityRisk: cell(row, cols, "air_quality_risk"),
			WalkScore:      cell(row, cols, "walk_score"),
			TransitScore:   cell(row, cols, "transit_score"),
			BikeScore:      cell(row, cols, "bike_score"),
		})
	}
	return out, nil
}

// resolveColumns maps canonical field names to header indexes via the alias
// registry. Headers are matched after lower-casing and space→underscore
// normalization, the same canonical form both source vintages reduce to.
func resolveColumns(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[normalizeHeader(h)] = i
	}

	cols := make(map[string]int, len(listingAliases))
	for field, aliases := range listingAliases {
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				cols[field] = i
				break
			}
		}
	}

	for _, req := range requiredColumns {
		if _, ok := cols[req]; !ok {
			return nil, fmt.Errorf("listing file is missing required column %q", req)
		}
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.ReplaceAll(h, " ", "_")
}

func cell(row []string, cols map[string]int, field string) string {
	i, ok := cols[field]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
