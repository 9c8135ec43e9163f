package app

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"mass_housing/internal/domain"
)

/********** category synonym registry (single source of truth) **********/

// DefaultCategorySynonyms maps lower-cased raw property types to canonical
// categories. Injectable so new sources can extend the table without
// touching normalizer logic.
var DefaultCategorySynonyms = map[string]string{
	"single family": domain.CategorySingleFamily,
	"singlefamily":  domain.CategorySingleFamily,
	"single-family": domain.CategorySingleFamily,
	"house":         domain.CategorySingleFamily,
	"condo":         domain.CategoryCondo,
	"condominium":   domain.CategoryCondo,
	"townhouse":     domain.CategoryTownhouse,
	"townhome":      domain.CategoryTownhouse,
	"multi family":  domain.CategoryMultiFamily,
	"multifamily":   domain.CategoryMultiFamily,
	"multi-family":  domain.CategoryMultiFamily,
}

var (
	// first numeric value after currency/thousands stripping
	numberRe = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
	// trailing "(n/10)" risk encoding, e.g. "Moderate (4/10)"
	riskRe = regexp.MustCompile(`\((\d{1,2})\s*/\s*10\)\s*$`)
	// "n/100" sub-score, the "/100" suffix optional for pre-formatted vintages
	subScoreRe = regexp.MustCompile(`^\s*(\d{1,3})\s*(?:/\s*100)?\s*$`)
)

// Normalizer turns raw listing rows into typed candidates. Per-field parse
// failures degrade to nil; rows are never dropped here.
//
// Not safe for concurrent use: the title caser carries state.
type Normalizer struct {
	categories map[string]string
	titler     cases.Caser
}

func NewNormalizer() *Normalizer {
	return NewNormalizerWithCategories(DefaultCategorySynonyms)
}

func NewNormalizerWithCategories(synonyms map[string]string) *Normalizer {
	return &Normalizer{
		categories: synonyms,
		titler:     cases.Title(language.AmericanEnglish),
	}
}

func (n *Normalizer) Normalize(raw domain.RawListing) domain.ListingCandidate {
	return domain.ListingCandidate{
		Price:          parseNumber(raw.Price),
		Sqft:           parseNumber(raw.Sqft),
		Bedrooms:       parseCount(raw.Bedrooms),
		Bathrooms:      parseCount(raw.Bathrooms),
		City:           n.NormalizeCity(raw.City),
		PropertyType:   n.normalizeCategory(raw.PropertyType),
		FloodRisk:      parseRisk(raw.FloodRisk),
		FireRisk:       parseRisk(raw.FireRisk),
		HeatRisk:       parseRisk(raw.HeatRisk),
		WindRisk:       parseRisk(raw.WindRisk),
		AirQualityRisk: parseRisk(raw.AirQualityRisk),
		WalkScore:      parseSubScore(raw.WalkScore),
		TransitScore:   parseSubScore(raw.TransitScore),
		BikeScore:      parseSubScore(raw.BikeScore),
	}
}

// NormalizeCity trims and title-cases a place name. Idempotent:
// NormalizeCity(NormalizeCity(x)) == NormalizeCity(x).
func (n *Normalizer) NormalizeCity(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return n.titler.String(strings.ToLower(s))
}

func (n *Normalizer) normalizeCategory(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	key := strings.ToLower(s)
	if canonical, ok := n.categories[key]; ok {
		return &canonical
	}
	t := n.titler.String(key)
	return &t
}

// parseNumber strips currency symbols, thousands separators, and unit
// suffixes (sqft etc.) by extracting the first numeric token. Anything that
// still has no number degrades to nil.
func parseNumber(s string) *float64 {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	s = strings.ReplaceAll(s, "$", "")
	m := numberRe.FindString(s)
	if m == "" {
		return nil
	}
	f, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	return &f
}

func parseCount(s string) *int {
	f := parseNumber(s)
	if f == nil {
		return nil
	}
	i := int(*f)
	return &i
}

// parseRisk extracts the integer inside a trailing "(n/10)" pattern.
// Non-matching values, including bare integers, yield nil.
func parseRisk(s string) *int {
	m := riskRe.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 10 {
		return nil
	}
	return &n
}

// parseSubScore accepts "n/100" (optionally whitespace-padded) or a bare
// integer; out-of-range values yield nil.
func parseSubScore(s string) *int {
	m := subScoreRe.FindStringSubmatch(s)
	if len(m) < 2 {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 0 || n > 100 {
		return nil
	}
	return &n
}
