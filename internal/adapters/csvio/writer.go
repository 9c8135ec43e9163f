package csvio

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"mass_housing/internal/domain"
)

// WriteCleaned writes the cleaned listing dataset.
func WriteCleaned(path string, ls []domain.Listing) error {
	header := []string{
		"city", "price", "sqft", "bedrooms", "bathrooms", "propertyType",
		"floodRisk", "fireRisk", "heatRisk", "windRisk", "airQualityRisk",
		"walkScore", "transitScore", "bikeScore", "pricePerSqft",
	}
	rows := make([][]string, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, listingCells(l))
	}
	return writeCSV(path, header, rows)
}

// WriteMerged writes the merged dataset, the canonical artifact consumed by
// the presentation layer purely by column name.
func WriteMerged(path string, ms []domain.MergedListing) error {
	header := []string{
		"city", "price", "sqft", "bedrooms", "bathrooms", "propertyType",
		"floodRisk", "fireRisk", "heatRisk", "windRisk", "airQualityRisk",
		"walkScore", "transitScore", "bikeScore", "pricePerSqft",
		"censusTown", "medianIncome", "population", "priceToIncomeRatio",
	}
	rows := make([][]string, 0, len(ms))
	for _, m := range ms {
		row := listingCells(m.Listing)
		row = append(row,
			fmtStr(m.CensusTown),
			fmtFloat(m.MedianIncome),
			fmtInt(m.Population),
			fmtFloat(m.PriceToIncomeRatio),
		)
		rows = append(rows, row)
	}
	return writeCSV(path, header, rows)
}

// WriteTowns writes the demographic rows as fetched/generated.
func WriteTowns(path string, ts []domain.TownRecord) error {
	header := []string{"townName", "medianIncome", "population"}
	rows := make([][]string, 0, len(ts))
	for _, t := range ts {
		rows = append(rows, []string{t.Town, fmtFloat(t.MedianIncome), fmtInt(t.Population)})
	}
	return writeCSV(path, header, rows)
}

// WriteCounties writes the county-level reference artifact.
func WriteCounties(path string, cs []domain.CountyRecord) error {
	header := []string{"countyName", "medianIncome", "population", "medianHomeValue"}
	rows := make([][]string, 0, len(cs))
	for _, c := range cs {
		rows = append(rows, []string{
			c.County, fmtFloat(c.MedianIncome), fmtInt(c.Population), fmtFloat(c.MedianHomeValue),
		})
	}
	return writeCSV(path, header, rows)
}

// WriteTownSummaries writes the per-town rollup joined with demographics.
func WriteTownSummaries(path string, ss []domain.TownSummary) error {
	header := []string{
		"town", "listings", "meanPrice",
		"meanFloodRisk", "meanFireRisk", "meanHeatRisk", "meanWindRisk", "meanAirQualityRisk",
		"meanWalkScore", "meanTransitScore", "meanBikeScore",
		"avgRisk", "livability",
		"censusTown", "medianIncome", "population", "priceToIncomeRatio",
	}
	rows := make([][]string, 0, len(ss))
	for _, s := range ss {
		rows = append(rows, []string{
			s.Town, strconv.Itoa(s.Listings), fmtFloat(s.MeanPrice),
			fmtFloat(s.MeanFloodRisk), fmtFloat(s.MeanFireRisk), fmtFloat(s.MeanHeatRisk),
			fmtFloat(s.MeanWindRisk), fmtFloat(s.MeanAirQualityRisk),
			fmtFloat(s.MeanWalkScore), fmtFloat(s.MeanTransitScore), fmtFloat(s.MeanBikeScore),
			fmtFloat(s.AvgRisk), fmtFloat(s.Livability),
			fmtStr(s.CensusTown), fmtFloat(s.MedianIncome), fmtInt(s.Population),
			fmtFloat(s.PriceToIncomeRatio),
		})
	}
	return writeCSV(path, header, rows)
}

func listingCells(l domain.Listing) []string {
	return []string{
		l.City,
		strconv.FormatFloat(l.Price, 'f', -1, 64),
		fmtFloat(l.Sqft),
		fmtInt(l.Bedrooms),
		fmtInt(l.Bathrooms),
		fmtStr(l.PropertyType),
		fmtInt(l.FloodRisk), fmtInt(l.FireRisk), fmtInt(l.HeatRisk),
		fmtInt(l.WindRisk), fmtInt(l.AirQualityRisk),
		fmtInt(l.WalkScore), fmtInt(l.TransitScore), fmtInt(l.BikeScore),
		fmtFloat(l.PricePerSqft),
	}
}

// writeCSV creates intermediate directories, truncates the target, and
// writes header + rows.
func writeCSV(path string, header []string, rows [][]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("csv: create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}
	for i, row := range rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row %d: %w", i, err)
		}
	}
	w.Flush()
	return w.Error()
}

// nil-aware cell formatting: missing values become empty cells.

func fmtFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fmtInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func fmtStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
