package mysql

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"mass_housing/internal/domain"
)

func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}
func valInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}
func valF64(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func ptrStr(n sql.NullString) *string {
	if !n.Valid {
		return nil
	}
	s := n.String
	return &s
}
func ptrInt(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	i := int(n.Int64)
	return &i
}
func ptrF64(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	f := n.Float64
	return &f
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Fingerprint is the listing's natural key: a stable hash over the cleaned
// identity fields, so reruns upsert instead of duplicating. Every field
// occupies a fixed position, nil rendered as an empty slot, so listings
// differing only in which optional field is set hash differently.
func Fingerprint(l domain.Listing) string {
	parts := []string{
		l.City,
		strconv.FormatFloat(l.Price, 'f', -1, 64),
		fpFloat(l.Sqft),
		fpInt(l.Bedrooms),
		fpInt(l.Bathrooms),
		fpStr(l.PropertyType),
	}
	sum := sha1.Sum([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

func fpFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func fpInt(p *int) string {
	if p == nil {
		return ""
	}
	return strconv.Itoa(*p)
}

func fpStr(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func (r *Repo) UpsertListings(ctx context.Context, ls []domain.MergedListing) error {
	if len(ls) == 0 {
		return nil
	}
	values := make([]string, 0, len(ls))
	args := make([]any, 0, len(ls)*20) // 20 params per row
	for _, m := range ls {
		values = append(values, "(?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)")
		args = append(args,
			Fingerprint(m.Listing),
			m.City,
			m.Price,
			valF64(m.Sqft),
			valInt(m.Bedrooms),
			valInt(m.Bathrooms),
			valStr(m.PropertyType),
			valInt(m.FloodRisk),
			valInt(m.FireRisk),
			valInt(m.HeatRisk),
			valInt(m.WindRisk),
			valInt(m.AirQualityRisk),
			valInt(m.WalkScore),
			valInt(m.TransitScore),
			valInt(m.BikeScore),
			valF64(m.PricePerSqft),
			valStr(m.CensusTown),
			valF64(m.MedianIncome),
			valInt(m.Population),
			valF64(m.PriceToIncomeRatio),
		)
	}
	sqlStr := insertListingsPrefix + strings.Join(values, ",") + insertListingsOnDup
	if _, err := r.db.ExecContext(ctx, sqlStr, args...); err != nil {
		return fmt.Errorf("upsert %d listings: %w", len(ls), err)
	}
	return nil
}

func (r *Repo) UpsertTowns(ctx context.Context, ts []domain.TownRecord) error {
	for _, t := range ts {
		if _, err := r.db.ExecContext(ctx, upsertTownSQL,
			t.Town, valF64(t.MedianIncome), valInt(t.Population),
		); err != nil {
			return fmt.Errorf("upsert town %q: %w", t.Town, err)
		}
	}
	return nil
}

func (r *Repo) UpsertTownSummaries(ctx context.Context, ss []domain.TownSummary) error {
	for _, s := range ss {
		if _, err := r.db.ExecContext(ctx, upsertTownSummarySQL,
			s.Town, s.Listings, valF64(s.MeanPrice),
			valF64(s.MeanFloodRisk), valF64(s.MeanFireRisk), valF64(s.MeanHeatRisk),
			valF64(s.MeanWindRisk), valF64(s.MeanAirQualityRisk),
			valF64(s.MeanWalkScore), valF64(s.MeanTransitScore), valF64(s.MeanBikeScore),
			valF64(s.AvgRisk), valF64(s.Livability),
			valStr(s.CensusTown), valF64(s.MedianIncome), valInt(s.Population),
			valF64(s.PriceToIncomeRatio),
		); err != nil {
			return fmt.Errorf("upsert town summary %q: %w", s.Town, err)
		}
	}
	return nil
}

func (r *Repo) GetTownSummary(ctx context.Context, town string) (domain.TownSummary, error) {
	row := r.db.QueryRowContext(ctx, getTownSummarySQL, town)
	s, err := scanTownSummary(row.Scan)
	if err == sql.ErrNoRows {
		return domain.TownSummary{}, domain.ErrNotFound
	}
	return s, err
}

func (r *Repo) ListTownSummaries(ctx context.Context, q domain.TownsQuery) ([]domain.TownSummary, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = 30
	}
	rows, err := r.db.QueryContext(ctx, listTownSummariesSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.TownSummary
	for rows.Next() {
		s, err := scanTownSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func scanTownSummary(scan func(...any) error) (domain.TownSummary, error) {
	var s domain.TownSummary
	var (
		meanPrice, flood, fire, heat, wind, air sql.NullFloat64
		walk, transit, bike                     sql.NullFloat64
		avgRisk, livability                     sql.NullFloat64
		censusTown                              sql.NullString
		income, ratio                           sql.NullFloat64
		population                              sql.NullInt64
	)
	if err := scan(
		&s.Town, &s.Listings, &meanPrice,
		&flood, &fire, &heat, &wind, &air,
		&walk, &transit, &bike,
		&avgRisk, &livability,
		&censusTown, &income, &population, &ratio,
	); err != nil {
		return domain.TownSummary{}, err
	}
	s.MeanPrice = ptrF64(meanPrice)
	s.MeanFloodRisk = ptrF64(flood)
	s.MeanFireRisk = ptrF64(fire)
	s.MeanHeatRisk = ptrF64(heat)
	s.MeanWindRisk = ptrF64(wind)
	s.MeanAirQualityRisk = ptrF64(air)
	s.MeanWalkScore = ptrF64(walk)
	s.MeanTransitScore = ptrF64(transit)
	s.MeanBikeScore = ptrF64(bike)
	s.AvgRisk = ptrF64(avgRisk)
	s.Livability = ptrF64(livability)
	s.CensusTown = ptrStr(censusTown)
	s.MedianIncome = ptrF64(income)
	s.Population = ptrInt(population)
	s.PriceToIncomeRatio = ptrF64(ratio)
	return s, nil
}

func (r *Repo) ListTownListings(ctx context.Context, town string, limit int) ([]domain.MergedListing, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, listTownListingsSQL, town, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.MergedListing
	for rows.Next() {
		var m domain.MergedListing
		var (
			sqft, pps                    sql.NullFloat64
			beds, baths                  sql.NullInt64
			ptype                        sql.NullString
			flood, fire, heat, wind, air sql.NullInt64
			walk, transit, bike          sql.NullInt64
			censusTown                   sql.NullString
			income, ratio                sql.NullFloat64
			population                   sql.NullInt64
		)
		if err := rows.Scan(
			&m.City, &m.Price, &sqft, &beds, &baths, &ptype,
			&flood, &fire, &heat, &wind, &air,
			&walk, &transit, &bike, &pps,
			&censusTown, &income, &population, &ratio,
		); err != nil {
			return nil, err
		}
		m.Sqft = ptrF64(sqft)
		m.Bedrooms = ptrInt(beds)
		m.Bathrooms = ptrInt(baths)
		m.PropertyType = ptrStr(ptype)
		m.FloodRisk = ptrInt(flood)
		m.FireRisk = ptrInt(fire)
		m.HeatRisk = ptrInt(heat)
		m.WindRisk = ptrInt(wind)
		m.AirQualityRisk = ptrInt(air)
		m.WalkScore = ptrInt(walk)
		m.TransitScore = ptrInt(transit)
		m.BikeScore = ptrInt(bike)
		m.PricePerSqft = ptrF64(pps)
		m.CensusTown = ptrStr(censusTown)
		m.MedianIncome = ptrF64(income)
		m.Population = ptrInt(population)
		m.PriceToIncomeRatio = ptrF64(ratio)
		out = append(out, m)
	}
	return out, rows.Err()
}
