package mysql

// Listings carry a content fingerprint as their natural key so reruns of the
// pipeline upsert instead of duplicating rows.
const insertListingsPrefix = `INSERT INTO listings
  (fingerprint, city, price, sqft, bedrooms, bathrooms, property_type,
   flood_risk, fire_risk, heat_risk, wind_risk, air_quality_risk,
   walk_score, transit_score, bike_score, price_per_sqft,
   census_town, median_income, population, price_to_income_ratio)
VALUES `

const insertListingsOnDup = ` ON DUPLICATE KEY UPDATE
  census_town           = VALUES(census_town),
  median_income         = VALUES(median_income),
  population            = VALUES(population),
  price_to_income_ratio = VALUES(price_to_income_ratio),
  updated_at            = CURRENT_TIMESTAMP
`

const upsertTownSQL = `
INSERT INTO towns (name, median_income, population)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  median_income = VALUES(median_income),
  population    = VALUES(population),
  updated_at    = CURRENT_TIMESTAMP
`

const upsertTownSummarySQL = `
INSERT INTO town_stats
  (town, listings, mean_price,
   mean_flood_risk, mean_fire_risk, mean_heat_risk, mean_wind_risk, mean_air_quality_risk,
   mean_walk_score, mean_transit_score, mean_bike_score,
   avg_risk, livability,
   census_town, median_income, population, price_to_income_ratio)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  listings              = VALUES(listings),
  mean_price            = VALUES(mean_price),
  mean_flood_risk       = VALUES(mean_flood_risk),
  mean_fire_risk        = VALUES(mean_fire_risk),
  mean_heat_risk        = VALUES(mean_heat_risk),
  mean_wind_risk        = VALUES(mean_wind_risk),
  mean_air_quality_risk = VALUES(mean_air_quality_risk),
  mean_walk_score       = VALUES(mean_walk_score),
  mean_transit_score    = VALUES(mean_transit_score),
  mean_bike_score       = VALUES(mean_bike_score),
  avg_risk              = VALUES(avg_risk),
  livability            = VALUES(livability),
  census_town           = VALUES(census_town),
  median_income         = VALUES(median_income),
  population            = VALUES(population),
  price_to_income_ratio = VALUES(price_to_income_ratio),
  updated_at            = CURRENT_TIMESTAMP
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const townSummaryColumns = `
  town, listings, mean_price,
  mean_flood_risk, mean_fire_risk, mean_heat_risk, mean_wind_risk, mean_air_quality_risk,
  mean_walk_score, mean_transit_score, mean_bike_score,
  avg_risk, livability,
  census_town, median_income, population, price_to_income_ratio
`

const getTownSummarySQL = `SELECT` + townSummaryColumns + `FROM town_stats WHERE town = ?`

// Top-N selection policy: mean price strictly descending, town name
// ascending on ties.
const listTownSummariesSQL = `SELECT` + townSummaryColumns + `
FROM town_stats
ORDER BY mean_price DESC, town ASC
LIMIT ?`

const listTownListingsSQL = `
SELECT
  city, price, sqft, bedrooms, bathrooms, property_type,
  flood_risk, fire_risk, heat_risk, wind_risk, air_quality_risk,
  walk_score, transit_score, bike_score, price_per_sqft,
  census_town, median_income, population, price_to_income_ratio
FROM listings
WHERE city = ?
ORDER BY price DESC, fingerprint ASC
LIMIT ?`
