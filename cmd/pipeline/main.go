package main

import (
	"context"
	"database/sql"
	"strconv"
	"sync"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"mass_housing/internal/adapters/census"
	"mass_housing/internal/adapters/csvio"
	"mass_housing/internal/adapters/observability"
	redisad "mass_housing/internal/adapters/redis"
	"mass_housing/internal/app"
	"mass_housing/internal/domain"
	"mass_housing/internal/shared"
	mysqlrepo "mass_housing/internal/storage/mysql"
)

// chunk size for listing upserts; keeps each INSERT under MySQL's
// max_allowed_packet for typical configurations.
const upsertChunk = 500

func main() {
	ctx := context.Background()
	cfg := shared.Load()

	log.Logger = observability.NewLogger(cfg.AppEnv)

	observability.Serve()

	log.Info().
		Str("input", cfg.RawListingsPath).
		Str("provider", cfg.CensusProvider).
		Int("threshold", cfg.MatchThreshold).
		Msg("pipeline starting")

	raw, err := csvio.ReadListings(cfg.RawListingsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("read raw listings failed")
	}

	provider, liveClient := buildProvider(cfg)

	pipe := app.NewPipelineService(provider, cfg.MatchThreshold)
	res, err := pipe.Run(ctx, raw)
	if err != nil {
		log.Fatal().Err(err).Msg("pipeline run failed")
	}

	writeArtifacts(ctx, cfg, res, liveClient)

	if cfg.MySQLDSN == "" {
		log.Warn().Msg("MYSQL_DSN is empty; skipping persistence")
		return
	}
	persist(ctx, cfg, res)

	log.Info().
		Int("cleaned", len(res.Cleaned)).
		Int("towns", len(res.Summaries)).
		Msg("pipeline completed")
}

// buildProvider wires the configured demographics source. The live client is
// returned separately because only it can serve county rollups.
func buildProvider(cfg shared.Config) (domain.CensusProvider, *census.Client) {
	if cfg.CensusProvider != "api" {
		log.Info().Int64("seed", cfg.SyntheticSeed).Msg("using synthetic demographics")
		return census.NewSynthetic(cfg.SyntheticSeed), nil
	}

	client, err := census.New(cfg.CensusBase, cfg.CensusKey, strconv.Itoa(cfg.CensusYear), cfg.StateFIPS, 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize census client")
	}
	cache := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	return census.NewCached(client, cache, int(cfg.CacheTTL.Seconds())), client
}

func writeArtifacts(ctx context.Context, cfg shared.Config, res *app.PipelineResult, liveClient *census.Client) {
	if err := csvio.WriteCleaned(cfg.CleanedPath, res.Cleaned); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CleanedPath).Msg("write cleaned failed")
	}
	if err := csvio.WriteTowns(cfg.CensusPath, res.Towns); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CensusPath).Msg("write census towns failed")
	}
	if err := csvio.WriteMerged(cfg.MergedPath, res.Merged); err != nil {
		log.Fatal().Err(err).Str("path", cfg.MergedPath).Msg("write merged failed")
	}
	if err := csvio.WriteTownSummaries(cfg.TownStatsPath, res.Summaries); err != nil {
		log.Fatal().Err(err).Str("path", cfg.TownStatsPath).Msg("write town stats failed")
	}

	// County rollups only exist upstream; the synthetic provider has none.
	if liveClient == nil {
		return
	}
	counties, err := liveClient.CountyDemographics(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("county demographics fetch failed; skipping artifact")
		return
	}
	if err := csvio.WriteCounties(cfg.CountyPath, counties); err != nil {
		log.Fatal().Err(err).Str("path", cfg.CountyPath).Msg("write counties failed")
	}
}

func persist(ctx context.Context, cfg shared.Config, res *app.PipelineResult) {
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)

	if err := repo.UpsertTowns(ctx, res.Towns); err != nil {
		log.Fatal().Err(err).Msg("upsert towns failed")
	}
	if err := repo.UpsertTownSummaries(ctx, res.Summaries); err != nil {
		log.Fatal().Err(err).Msg("upsert town summaries failed")
	}

	sem := semaphore.NewWeighted(int64(cfg.Workers))
	var wg sync.WaitGroup

	for start := 0; start < len(res.Merged); start += upsertChunk {
		end := start + upsertChunk
		if end > len(res.Merged) {
			end = len(res.Merged)
		}
		chunk := res.Merged[start:end]

		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			log.Fatal().Err(err).Msg("semaphore acquire failed")
		}

		wg.Add(1)
		go func(ls []domain.MergedListing) {
			defer wg.Done()
			defer sem.Release(1)

			if err := repo.UpsertListings(ctx, ls); err != nil {
				log.Warn().Int("rows", len(ls)).Err(err).Msg("upsert listings chunk failed")
				return
			}
		}(chunk)
	}

	wg.Wait()
	log.Info().Int("listings", len(res.Merged)).Msg("persistence completed")
}
