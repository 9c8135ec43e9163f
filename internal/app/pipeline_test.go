package app_test

import (
	"context"
	"errors"
	"testing"

	"mass_housing/internal/app"
	"mass_housing/internal/domain"
)

type fakeProvider struct {
	records []domain.TownRecord
	err     error
	asked   []string
}

func (f *fakeProvider) TownDemographics(_ context.Context, towns []string) ([]domain.TownRecord, error) {
	f.asked = towns
	return f.records, f.err
}

func rawRow(city, price string) domain.RawListing {
	return domain.RawListing{City: city, Price: price}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	provider := &fakeProvider{records: []domain.TownRecord{
		{Town: "Somerville", MedianIncome: pfloat(110000), Population: pint(81000)},
		{Town: "Boston", MedianIncome: pfloat(89000), Population: pint(650000)},
	}}
	pipe := app.NewPipelineService(provider, app.MatchThreshold)

	raw := []domain.RawListing{
		{City: "sommerville", Price: "$700,000", Sqft: "1,400", FloodRisk: "Moderate (4/10)", WalkScore: "88/100"},
		rawRow("boston", "500000"),
		rawRow("boston", "500000"), // duplicate
		rawRow("boston", "1200"),   // below price floor
		rawRow("", "400000"),       // missing city
		rawRow("atlantis", "600000"),
	}

	res, err := pipe.Run(context.Background(), raw)
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if res.Report.Input != 6 || res.Report.Duplicates != 1 || res.Report.MissingCritical != 1 || res.Report.OutOfRange != 1 {
		t.Fatalf("unexpected report: %+v", res.Report)
	}
	if len(res.Cleaned) != 3 {
		t.Fatalf("cleaned: %d", len(res.Cleaned))
	}

	// provider is asked for the distinct cleaned towns
	wantAsked := []string{"Atlantis", "Boston", "Sommerville"}
	if len(provider.asked) != len(wantAsked) {
		t.Fatalf("asked towns: %v", provider.asked)
	}
	for i := range wantAsked {
		if provider.asked[i] != wantAsked[i] {
			t.Fatalf("asked towns: %v", provider.asked)
		}
	}

	if res.DistinctTowns != 3 || res.MatchedTowns != 2 || res.UnmatchedTowns != 1 {
		t.Fatalf("resolution counts: %+v", res)
	}
	if res.Mapping["Sommerville"] != "Somerville" {
		t.Fatalf("mapping: %v", res.Mapping)
	}

	// merged rows keep the cleaned order (city asc, price asc)
	if len(res.Merged) != 3 {
		t.Fatalf("merged: %d", len(res.Merged))
	}
	for _, m := range res.Merged {
		switch m.City {
		case "Sommerville":
			if m.MedianIncome == nil || *m.MedianIncome != 110000 {
				t.Fatalf("Sommerville income: %+v", m)
			}
			if m.FloodRisk == nil || *m.FloodRisk != 4 || m.WalkScore == nil || *m.WalkScore != 88 {
				t.Fatalf("normalized fields lost in merge: %+v", m)
			}
		case "Atlantis":
			if m.CensusTown != nil {
				t.Fatalf("Atlantis should be unmatched: %+v", m)
			}
		}
	}

	if len(res.Summaries) != 3 {
		t.Fatalf("summaries: %d", len(res.Summaries))
	}
	if res.Summaries[0].Town != "Atlantis" {
		t.Fatalf("summaries not sorted by town: %v", res.Summaries[0].Town)
	}
}

func TestPipelineRun_ProviderError(t *testing.T) {
	provider := &fakeProvider{err: errors.New("acs timeout")}
	pipe := app.NewPipelineService(provider, app.MatchThreshold)

	_, err := pipe.Run(context.Background(), []domain.RawListing{rawRow("boston", "500000")})
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestPipelineRun_EmptyInput(t *testing.T) {
	provider := &fakeProvider{}
	pipe := app.NewPipelineService(provider, app.MatchThreshold)

	res, err := pipe.Run(context.Background(), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(res.Cleaned) != 0 || len(res.Merged) != 0 || len(res.Summaries) != 0 {
		t.Fatalf("empty input must produce empty artifacts: %+v", res)
	}
}
