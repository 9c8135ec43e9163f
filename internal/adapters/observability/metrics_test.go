package observability_test

import (
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"mass_housing/internal/adapters/observability"
)

func TestMetricsRegistryAndHandler(t *testing.T) {
	reg := observability.InitRegistry()

	// record samples so counters are non-zero
	observability.ObserveHTTP("/test", "GET", 200, 12*time.Millisecond)
	observability.ObserveRows("cleaned", 42)
	observability.ObserveDropped("duplicate", 3)
	observability.ObserveResolution("matched", 7)

	mh := observability.MetricsHandler(reg)
	req := httptest.NewRequest("GET", "/metrics", nil)
	rr := httptest.NewRecorder()
	mh.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	out := string(body)
	for _, metric := range []string{
		"housing_http_requests_total",
		"housing_pipeline_rows_total",
		"housing_pipeline_rows_dropped_total",
		"housing_resolver_towns_total",
	} {
		if !strings.Contains(out, metric) {
			t.Fatalf("expected %s in output", metric)
		}
	}
}

// The batch binary has no router of its own; its only scrape surface is the
// standalone listener, so the housing families must be visible there.
func TestServe_StandaloneListenerExposesPipelineMetrics(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := ln.Addr().String()
	_ = ln.Close()

	t.Setenv("METRICS_ADDR", addr)
	observability.Serve()

	observability.ObserveRows("cleaned", 42)
	observability.ObservePipelineDuration(5 * time.Millisecond)

	var out string
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/metrics", addr))
		if err != nil {
			time.Sleep(20 * time.Millisecond)
			continue
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		out = string(body)
		break
	}
	if out == "" {
		t.Fatalf("metrics listener on %s never became reachable", addr)
	}
	for _, metric := range []string{
		"housing_pipeline_rows_total",
		"housing_pipeline_duration_seconds",
	} {
		if !strings.Contains(out, metric) {
			t.Fatalf("expected %s in standalone scrape", metric)
		}
	}
}
