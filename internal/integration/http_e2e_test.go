//go:build integration || !unit

package integration

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	_ "github.com/go-sql-driver/mysql"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"

	"mass_housing/internal/adapters/census"
	server "mass_housing/internal/adapters/http_server"
	redisad "mass_housing/internal/adapters/redis"
	"mass_housing/internal/app"
	"mass_housing/internal/domain"
	mysqlrepo "mass_housing/internal/storage/mysql"
)

func mustEnv(t *testing.T, k string) string {
	t.Helper()
	v := os.Getenv(k)
	if v == "" {
		t.Fatalf("%s not set; export it (e.g. MIGRATIONS_DIR=/path/to/migrations)", k)
	}
	return v
}

func applyMigrations(t *testing.T, db *sql.DB) {
	t.Helper()
	dir := mustEnv(t, "MIGRATIONS_DIR")

	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("MIGRATIONS_DIR=%s is not a directory or missing", dir)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read migrations dir: %v", err)
	}
	var files []string
	for _, e := range ents {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".sql" {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	if len(files) == 0 {
		t.Fatalf("no .sql files in %s", dir)
	}
	sort.Strings(files)
	for _, f := range files {
		sqlBytes, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		if _, err := db.Exec(string(sqlBytes)); err != nil {
			t.Fatalf("exec %s: %v", f, err)
		}
	}
}

// TestHTTP_EndToEnd runs the whole chain: raw rows through the batch
// pipeline, persisted to MySQL, served by the real router with a Redis-backed
// read cache.
func TestHTTP_EndToEnd(t *testing.T) {
	// Start isolated MySQL container
	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("dockertest: %v", err)
	}
	runOpts := &dockertest.RunOptions{
		Repository: "mysql",
		Tag:        "8.0.36",
		Env: []string{
			"MYSQL_ROOT_PASSWORD=root",
			"MYSQL_DATABASE=housing",
		},
	}
	resource, err := pool.RunWithOptions(runOpts, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
		hc.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("run mysql: %v", err)
	}
	t.Cleanup(func() { _ = pool.Purge(resource) })

	hostPort := resource.GetPort("3306/tcp")
	dsn := fmt.Sprintf("root:%s@tcp(127.0.0.1:%s)/%s?parseTime=true&multiStatements=true&charset=utf8mb4,utf8&loc=UTC",
		"root", hostPort, "housing")

	var db *sql.DB
	if err := pool.Retry(func() error {
		var e error
		db, e = sql.Open("mysql", dsn)
		if e != nil {
			return e
		}
		return db.Ping()
	}); err != nil {
		t.Fatalf("connect mysql: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	applyMigrations(t, db)

	repo := mysqlrepo.New(db)
	ctx := context.Background()

	// Run the batch pipeline over a small raw set
	raw := []domain.RawListing{
		{City: "sommerville", Price: "$700,000", Sqft: "1,400", FloodRisk: "Moderate (4/10)", WalkScore: "88"},
		{City: "somerville", Price: "650000"},
		{City: "boston", Price: "900000"},
		{City: "boston", Price: "120"}, // dropped by range filter
	}
	pipe := app.NewPipelineService(census.NewSynthetic(42), app.MatchThreshold)
	res, err := pipe.Run(ctx, raw)
	if err != nil {
		t.Fatalf("pipeline: %v", err)
	}
	if len(res.Cleaned) != 3 {
		t.Fatalf("cleaned: %d", len(res.Cleaned))
	}

	if err := repo.UpsertTowns(ctx, res.Towns); err != nil {
		t.Fatalf("UpsertTowns: %v", err)
	}
	if err := repo.UpsertTownSummaries(ctx, res.Summaries); err != nil {
		t.Fatalf("UpsertTownSummaries: %v", err)
	}
	if err := repo.UpsertListings(ctx, res.Merged); err != nil {
		t.Fatalf("UpsertListings: %v", err)
	}

	// Serve through the real router with a Redis read cache
	mr := miniredis.RunT(t)
	cache := redisad.New(mr.Addr(), "", 0)
	q := app.NewQueryService(repo, cache, time.Minute)

	srv := server.New()
	srv.MountHandlers(&server.Handlers{Q: q})
	ts := httptest.NewServer(srv.Mux())
	defer ts.Close()

	// town summary
	resp, err := http.Get(ts.URL + "/v1/towns/Somerville")
	if err != nil {
		t.Fatalf("GET town: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("town status %d", resp.StatusCode)
	}
	var summary domain.TownSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode town: %v", err)
	}
	if summary.Town != "Somerville" || summary.Listings != 1 {
		t.Fatalf("summary: %+v", summary)
	}
	if summary.MedianIncome == nil {
		t.Fatalf("synthetic demographics missing: %+v", summary)
	}

	// listings under the town
	resp2, err := http.Get(ts.URL + "/v1/towns/Somerville/listings")
	if err != nil {
		t.Fatalf("GET listings: %v", err)
	}
	defer resp2.Body.Close()
	var ls []domain.MergedListing
	if err := json.NewDecoder(resp2.Body).Decode(&ls); err != nil {
		t.Fatalf("decode listings: %v", err)
	}
	if len(ls) != 1 || ls[0].Price != 650000 {
		t.Fatalf("listings: %+v", ls)
	}

	// top towns ranking comes straight from MySQL ordering
	resp3, err := http.Get(ts.URL + "/v1/towns?limit=10")
	if err != nil {
		t.Fatalf("GET towns: %v", err)
	}
	defer resp3.Body.Close()
	var tops []domain.TownSummary
	if err := json.NewDecoder(resp3.Body).Decode(&tops); err != nil {
		t.Fatalf("decode towns: %v", err)
	}
	if len(tops) != 3 || tops[0].Town != "Boston" {
		t.Fatalf("top towns: %+v", tops)
	}
}
