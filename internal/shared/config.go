package shared

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
)

type Config struct {
	AppEnv      string
	HTTPAddr    string
	MetricsAddr string
	MySQLDSN    string
	RedisAddr   string
	RedisDB     int
	RedisPass   string

	CensusBase     string
	CensusKey      string
	CensusYear     int
	StateFIPS      string
	CensusProvider string // "api" or "synthetic"
	SyntheticSeed  int64

	MatchThreshold int
	Workers        int
	CacheTTL       time.Duration

	RawListingsPath string
	CleanedPath     string
	CensusPath      string
	CountyPath      string
	MergedPath      string
	TownStatsPath   string
}

func Load() Config {
	atoi := func(k string, def int) int {
		if v := os.Getenv(k); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				return n
			}
		}
		return def
	}
	c := Config{
		AppEnv:      env("APP_ENV", "prod"),
		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MetricsAddr: env("METRICS_ADDR", ":9100"),
		MySQLDSN:    env("MYSQL_DSN", ""),
		RedisAddr:   env("REDIS_ADDR", "localhost:6379"),
		RedisDB:     atoi("REDIS_DB", 0),
		RedisPass:   env("REDIS_PASSWORD", ""),

		CensusBase:     env("CENSUS_BASE_URL", "https://api.census.gov/data"),
		CensusKey:      env("CENSUS_API_KEY", ""),
		CensusYear:     atoi("CENSUS_YEAR", 2022),
		StateFIPS:      env("STATE_FIPS", "25"),
		SyntheticSeed:  int64(atoi("SYNTHETIC_SEED", 42)),
		MatchThreshold: atoi("MATCH_THRESHOLD", 85),
		Workers:        atoi("PERSIST_WORKERS", 4),
		CacheTTL:       time.Duration(atoi("CACHE_TTL_SECONDS", 900)) * time.Second,

		RawListingsPath: env("RAW_LISTINGS_PATH", "data/raw/ma_housing_raw.csv"),
		CleanedPath:     env("CLEANED_PATH", "data/processed/housing_cleaned.csv"),
		CensusPath:      env("CENSUS_PATH", "data/processed/census_data.csv"),
		CountyPath:      env("COUNTY_PATH", "data/processed/census_county_data.csv"),
		MergedPath:      env("MERGED_PATH", "data/processed/merged_data.csv"),
		TownStatsPath:   env("TOWN_STATS_PATH", "data/processed/town_stats.csv"),
	}
	c.CensusProvider = env("CENSUS_PROVIDER", "")
	if c.CensusProvider == "" {
		if c.CensusKey != "" {
			c.CensusProvider = "api"
		} else {
			c.CensusProvider = "synthetic"
		}
	}
	if c.CensusProvider == "api" && c.CensusKey == "" {
		log.Warn().Msg("CENSUS_API_KEY is empty; falling back to synthetic demographics")
		c.CensusProvider = "synthetic"
	}
	return c
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
