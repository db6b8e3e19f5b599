package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"earthworks/strwriter/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// Helper function to create test config
func testConfig() *config.MetricsConfig {
	return &config.MetricsConfig{
		Enabled:         true,
		Namespace:       "test",
		DurationBuckets: []float64{0.1, 1},
	}
}

func TestCollector_NewCollector(t *testing.T) {
	cfg := testConfig()
	registry := prometheus.NewRegistry()

	collector := NewCollector(cfg, registry)

	if collector.config != cfg {
		t.Error("Collector config not set correctly")
	}
	if collector.Registry() != registry {
		t.Error("Collector registry not set correctly")
	}
}

func TestCollector_Defaults(t *testing.T) {
	cfg := &config.MetricsConfig{Enabled: true}
	NewCollector(cfg, nil)

	if cfg.Namespace != config.DefaultMetricsNamespace {
		t.Errorf("Namespace = %q, want %q", cfg.Namespace, config.DefaultMetricsNamespace)
	}
	if len(cfg.DurationBuckets) == 0 {
		t.Error("expected default duration buckets")
	}
}

func TestCollector_RecordExport(t *testing.T) {
	collector := NewCollector(testConfig(), nil)

	collector.RecordExport(ExportSample{
		Status:      StatusSuccess,
		Kind:        "line",
		Duration:    30 * time.Millisecond,
		DataLines:   5,
		Terminators: 2,
		Skipped:     1,
		Elevation:   map[string]int{"vertex": 3, "default": 2},
	})
	collector.RecordExport(ExportSample{Status: StatusError, Kind: "point"})

	em := collector.exportMetrics
	tests := []struct {
		name      string
		collector prometheus.Collector
		want      float64
	}{
		{"success count", em.exportsTotal.WithLabelValues(StatusSuccess), 1},
		{"error count", em.exportsTotal.WithLabelValues(StatusError), 1},
		{"data lines", em.linesTotal.WithLabelValues("data"), 5},
		{"terminators", em.linesTotal.WithLabelValues("terminator"), 2},
		{"skipped", em.featuresSkipped, 1},
		{"vertex source", em.elevationSources.WithLabelValues("vertex"), 3},
		{"default source", em.elevationSources.WithLabelValues("default"), 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := testutil.ToFloat64(tt.collector); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if n := testutil.CollectAndCount(em.exportDuration); n != 2 {
		t.Errorf("duration series = %d, want 2", n)
	}
}

func TestCollector_Disabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	collector := NewCollector(cfg, nil)

	collector.RecordExport(ExportSample{Status: StatusSuccess, Kind: "line"})

	if got := testutil.ToFloat64(collector.exportMetrics.exportsTotal.WithLabelValues(StatusSuccess)); got != 0 {
		t.Errorf("disabled collector recorded %v exports", got)
	}

	var nilCollector *Collector
	nilCollector.RecordExport(ExportSample{Status: StatusSuccess})
	if err := nilCollector.WriteTextfile("ignored.prom"); err != nil {
		t.Errorf("nil WriteTextfile() error = %v", err)
	}
}

func TestCollector_Handler(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordExport(ExportSample{Status: StatusSuccess, Kind: "point", DataLines: 1})

	srv := httptest.NewServer(collector.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `test_exports_total{status="success"} 1`) {
		t.Errorf("metrics output missing export counter:\n%s", body)
	}
}

func TestCollector_WriteTextfile(t *testing.T) {
	collector := NewCollector(testConfig(), nil)
	collector.RecordExport(ExportSample{Status: StatusCancelled, Kind: "line"})

	path := filepath.Join(t.TempDir(), "strwriter.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), `test_exports_total{status="cancelled"} 1`) {
		t.Errorf("textfile missing export counter:\n%s", data)
	}
}
