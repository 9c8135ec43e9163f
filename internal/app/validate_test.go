package app_test

import (
	"testing"

	"mass_housing/internal/app"
	"mass_housing/internal/domain"
)

func cand(city string, price *float64) domain.ListingCandidate {
	return domain.ListingCandidate{City: city, Price: price}
}

func TestValidate_DropOrderAndCounts(t *testing.T) {
	dup := cand("Boston", pfloat(400000))
	in := []domain.ListingCandidate{
		dup,
		dup,                          // exact duplicate
		cand("Cambridge", nil),       // missing price
		cand("", pfloat(300000)),     // missing city
		cand("Quincy", pfloat(1000)), // below price floor
		{City: "Quincy", Price: pfloat(500000), Bedrooms: pint(25)},  // too many bedrooms
		{City: "Quincy", Price: pfloat(500000), Bathrooms: pint(16)}, // too many bathrooms
		cand("Worcester", pfloat(250000)),
	}

	out, rep := app.Validate(in)

	if rep.Input != 8 || rep.Duplicates != 1 || rep.MissingCritical != 2 || rep.OutOfRange != 3 || rep.Output != 2 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 listings, got %d", len(out))
	}
}

func TestValidate_DuplicateRemovedBeforeRangeCheck(t *testing.T) {
	// Both copies are out of range; only the survivor of dedupe reaches the
	// range filter, so it counts once as duplicate and once as out of range.
	bad := cand("Boston", pfloat(20_000_000))
	_, rep := app.Validate([]domain.ListingCandidate{bad, bad})
	if rep.Duplicates != 1 || rep.OutOfRange != 1 || rep.Output != 0 {
		t.Fatalf("unexpected report: %+v", rep)
	}
}

func TestValidate_PriceBoundsInclusive(t *testing.T) {
	in := []domain.ListingCandidate{
		cand("A", pfloat(app.PriceMin)),
		cand("B", pfloat(app.PriceMax)),
		cand("C", pfloat(app.PriceMin-1)),
		cand("D", pfloat(app.PriceMax+1)),
	}
	out, rep := app.Validate(in)
	if len(out) != 2 || rep.OutOfRange != 2 {
		t.Fatalf("bounds not inclusive: out=%d report=%+v", len(out), rep)
	}
}

func TestValidate_PricePerSqft(t *testing.T) {
	in := []domain.ListingCandidate{
		{City: "Boston", Price: pfloat(500000), Sqft: pfloat(2000)},
		{City: "Boston", Price: pfloat(500000), Sqft: pfloat(0)}, // zero area
		{City: "Boston", Price: pfloat(400000)},                  // no area
	}
	out, _ := app.Validate(in)
	if len(out) != 3 {
		t.Fatalf("expected 3 listings, got %d", len(out))
	}

	var derived *float64
	nilCount := 0
	for _, l := range out {
		if l.PricePerSqft == nil {
			nilCount++
			continue
		}
		derived = l.PricePerSqft
	}
	if nilCount != 2 || derived == nil || *derived != 250 {
		t.Fatalf("pricePerSqft wrong: nil=%d derived=%v", nilCount, derefF(derived))
	}
}

func TestValidate_OutputSortedCityThenPrice(t *testing.T) {
	in := []domain.ListingCandidate{
		cand("Quincy", pfloat(700000)),
		cand("Boston", pfloat(900000)),
		cand("Quincy", pfloat(300000)),
		cand("Boston", pfloat(200000)),
	}
	out, _ := app.Validate(in)
	if len(out) != 4 {
		t.Fatalf("expected 4 listings, got %d", len(out))
	}
	wantCities := []string{"Boston", "Boston", "Quincy", "Quincy"}
	wantPrices := []float64{200000, 900000, 300000, 700000}
	for i := range out {
		if out[i].City != wantCities[i] || out[i].Price != wantPrices[i] {
			t.Fatalf("row %d: got %s %.0f want %s %.0f", i, out[i].City, out[i].Price, wantCities[i], wantPrices[i])
		}
	}
}
