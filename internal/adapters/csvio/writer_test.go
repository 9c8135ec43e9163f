package csvio_test

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"mass_housing/internal/adapters/csvio"
	"mass_housing/internal/domain"
)

func pstr(s string) *string     { return &s }
func pint(i int) *int           { return &i }
func pfloat(f float64) *float64 { return &f }

func readBack(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return rows
}

func TestWriteCleaned_NilsBecomeEmptyCells(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "cleaned.csv") // dir does not exist yet
	ls := []domain.Listing{
		{
			City: "Boston", Price: 450000, Sqft: pfloat(1250),
			Bedrooms: pint(3), PropertyType: pstr("Condo"),
			FloodRisk: pint(1), PricePerSqft: pfloat(360),
		},
		{City: "Quincy", Price: 300000},
	}
	if err := csvio.WriteCleaned(path, ls); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readBack(t, path)
	if len(rows) != 3 {
		t.Fatalf("rows: %d", len(rows))
	}
	if rows[0][0] != "city" || rows[0][14] != "pricePerSqft" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][0] != "Boston" || rows[1][1] != "450000" || rows[1][2] != "1250" {
		t.Fatalf("row 1: %v", rows[1])
	}
	// second listing had only city and price; everything else must be blank
	for i, cell := range rows[2][2:] {
		if cell != "" {
			t.Fatalf("expected empty cell at %d, got %q", i+2, cell)
		}
	}
}

func TestWriteMerged_DemographicColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "merged.csv")
	ms := []domain.MergedListing{
		{
			Listing:            domain.Listing{City: "Somerville", Price: 700000},
			CensusTown:         pstr("Somerville"),
			MedianIncome:       pfloat(110000),
			Population:         pint(81000),
			PriceToIncomeRatio: pfloat(6.36),
		},
		{Listing: domain.Listing{City: "Atlantis", Price: 600000}},
	}
	if err := csvio.WriteMerged(path, ms); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readBack(t, path)
	if rows[0][15] != "censusTown" || rows[0][18] != "priceToIncomeRatio" {
		t.Fatalf("header: %v", rows[0])
	}
	if rows[1][15] != "Somerville" || rows[1][16] != "110000" || rows[1][17] != "81000" {
		t.Fatalf("matched row: %v", rows[1])
	}
	if rows[2][15] != "" || rows[2][16] != "" || rows[2][18] != "" {
		t.Fatalf("unmatched row should have blank demographics: %v", rows[2])
	}
}

func TestWriteTownSummaries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "town_stats.csv")
	ss := []domain.TownSummary{
		{
			TownAggregate: domain.TownAggregate{
				Town: "Boston", Listings: 12,
				MeanPrice: pfloat(812500), AvgRisk: pfloat(3.2), Livability: pfloat(81.5),
			},
			CensusTown:   pstr("Boston"),
			MedianIncome: pfloat(89000),
		},
	}
	if err := csvio.WriteTownSummaries(path, ss); err != nil {
		t.Fatalf("write: %v", err)
	}

	rows := readBack(t, path)
	if rows[1][0] != "Boston" || rows[1][1] != "12" || rows[1][2] != "812500" {
		t.Fatalf("row: %v", rows[1])
	}
	if rows[1][11] != "3.2" || rows[1][12] != "81.5" {
		t.Fatalf("composite columns: %v", rows[1])
	}
}

func TestWriteTowns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "census.csv")
	ts := []domain.TownRecord{
		{Town: "Weston", MedianIncome: pfloat(207413), Population: pint(12124)},
		{Town: "Gap"},
	}
	if err := csvio.WriteTowns(path, ts); err != nil {
		t.Fatalf("write: %v", err)
	}
	rows := readBack(t, path)
	if rows[1][1] != "207413" || rows[2][1] != "" {
		t.Fatalf("rows: %v", rows)
	}
}
