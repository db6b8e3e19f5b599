package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"earthworks/strwriter/pkg/config"
	"earthworks/strwriter/pkg/telemetry/health"
	"earthworks/strwriter/pkg/telemetry/metrics"
)

func enabledCollector() *metrics.Collector {
	c := metrics.NewCollector(&config.MetricsConfig{Enabled: true}, nil)
	c.RecordExport(metrics.ExportSample{Status: metrics.StatusSuccess, Kind: "line", DataLines: 4, Terminators: 1})
	return c
}

func TestHandler_Routes(t *testing.T) {
	srv := NewServer(Config{Build: BuildInfo{Version: "1.0.0"}}, enabledCollector(), nil, nil)
	handler := srv.Handler()

	tests := []struct {
		path     string
		wantCode int
		contains string
	}{
		{"/metrics", http.StatusOK, "strwriter_exports_total"},
		{"/health", http.StatusOK, `"status":"ok"`},
		{"/ready", http.StatusOK, `"status":"ready"`},
		{"/version", http.StatusOK, `"version":"1.0.0"`},
		{"/missing", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantCode {
				t.Errorf("code = %d, want %d", rec.Code, tt.wantCode)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body = %q, want it to contain %q", rec.Body.String(), tt.contains)
			}
		})
	}
}

func TestHandler_MetricsDisabled(t *testing.T) {
	srv := NewServer(Config{}, nil, nil, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("/metrics code = %d, want 404 when metrics are disabled", rec.Code)
	}
}

func TestHandler_ReadinessUsesChecker(t *testing.T) {
	checker := health.New(time.Second)
	checker.RegisterCheck("source", health.PathCheck("/definitely/not/here"))
	srv := NewServer(Config{}, nil, checker, nil)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("/ready code = %d, want 503", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	srv := NewServer(Config{}, nil, nil, nil)
	handler := srv.recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("code = %d, want 500", rec.Code)
	}
}

func TestServer_StartAndShutdown(t *testing.T) {
	srv := NewServer(Config{ListenAddress: "127.0.0.1:0"}, enabledCollector(), nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Start(ctx) }()

	select {
	case <-srv.Ready():
	case err := <-done:
		t.Fatalf("Start() returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not start")
	}

	if !srv.IsRunning() {
		t.Error("IsRunning() = false after start")
	}
	if err := srv.Start(ctx); err == nil {
		t.Error("second Start() error = nil")
	}

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), `strwriter_lines_total{record="data"} 4`) {
		t.Errorf("metrics body missing data lines:\n%s", body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Start() error after cancel = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
	if srv.IsRunning() {
		t.Error("IsRunning() = true after shutdown")
	}
}

func TestServer_ListenError(t *testing.T) {
	srv := NewServer(Config{ListenAddress: "256.0.0.1:bad"}, nil, nil, nil)
	if err := srv.Start(context.Background()); err == nil {
		t.Error("Start() with a bad address error = nil")
	}
}
