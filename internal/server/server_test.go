package server

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mobilcari/mobil-cari/internal/config"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

const testCSV = `Nama Mobil,Harga,Tahun,Transmisi,Bahan Bakar,Kapasitas Mesin (cc)
Toyota Avanza G,Rp 150.000.000,2019,Manual,Bensin,1300
Toyota Fortuner VRZ,Rp 470.000.000,2021,Otomatis,Solar,2400
Honda CR-V Turbo,Rp 420.000.000,2022,Otomatis,Bensin,1500
Mitsubishi Pajero Sport,Rp 190.000.000,2018,Manual,Diesel,2400
Daihatsu Xenia,Rp 95.000.000,2015,Manual,Bensin,1300
`

func newTestServer(t *testing.T) *Server {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "cars.csv")
	if err := os.WriteFile(path, []byte(testCSV), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	cfg.Dataset.Path = path
	cfg.Dataset.CurrentYear = 2025
	cfg.EnableML = false
	cfg.EnableNarrative = false

	srv, err := New(cfg, logger.Default())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return srv
}

func TestRecommendEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	body, _ := json.Marshal(map[string]any{
		"query": "mobil diesel manual di bawah 200 juta",
		"top_k": 3,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/recommend", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Results []struct {
			Name string `json:"name"`
		} `json:"results"`
		Match string `json:"match"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if len(resp.Results) != 3 {
		t.Fatalf("got %d results, want 3", len(resp.Results))
	}
	if resp.Results[0].Name != "Mitsubishi Pajero Sport" {
		t.Errorf("top result = %q, want Mitsubishi Pajero Sport", resp.Results[0].Name)
	}
}

func TestRecommendEndpointBadMethod(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/recommend", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Status != "ok" {
		t.Errorf("status = %q, want ok", resp.Status)
	}
	if !resp.Dataset.Loaded || resp.Dataset.Count != 5 {
		t.Errorf("dataset status = %+v, want loaded with 5 records", resp.Dataset)
	}
	if resp.ML.Enabled || resp.Qdrant.Enabled {
		t.Errorf("ml/qdrant should be disabled, got %+v %+v", resp.ML, resp.Qdrant)
	}
}

func TestReloadEndpoint(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/dataset/reload", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp ReloadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	if resp.Count != 5 {
		t.Errorf("count = %d, want 5", resp.Count)
	}
	if resp.Reindexed {
		t.Error("reindexed should be false without an index pipeline")
	}
}

func TestIndexEndpointUnavailable(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/index", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 when similarity path is disabled", rec.Code)
	}
}

func TestNarrativeRouteDisabled(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodPost, "/api/tanya", bytes.NewReader([]byte(`{"query":"x"}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 when narrative is disabled", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodOptions, "/api/recommend", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("Access-Control-Allow-Origin = %q, want *", got)
	}
}

func TestRequestIDLogged(t *testing.T) {
	srv := newTestServer(t)

	var buf bytes.Buffer
	srv.log = &logger.Logger{Logger: slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))}
	handler := srv.Routes()

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Request-ID"); got != "req-42" {
		t.Errorf("X-Request-ID = %q, want req-42", got)
	}
	if !strings.Contains(buf.String(), "request_id=req-42") {
		t.Errorf("request log missing request_id, got: %s", buf.String())
	}
}
