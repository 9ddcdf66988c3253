package ml

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
)

func newEmbedServer(t *testing.T, calls *atomic.Int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/embeddings":
			calls.Add(1)
			var req embedRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if req.Model == "" || req.Prompt == "" {
				http.Error(w, "missing model or prompt", http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(embedResponse{
				Embedding: []float64{0.1, 0.2, float64(len(req.Prompt))},
			})
		case "/api/version":
			w.Write([]byte(`{"version":"0.5.0"}`))
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestOllamaEmbed(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, &calls)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.BaseURL = srv.URL
	svc := NewOllamaService(cfg, logger.Default())

	vecs, err := svc.Embed(context.Background(), []string{"toyota avanza", "honda jazz"})
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}

	if len(vecs) != 2 {
		t.Fatalf("got %d vectors, want 2", len(vecs))
	}
	if len(vecs[0]) != 3 {
		t.Errorf("got dimension %d, want 3", len(vecs[0]))
	}
	if vecs[0][2] == vecs[1][2] {
		t.Errorf("different texts should embed differently in the stub")
	}
}

func TestOllamaEmbedCached(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, &calls)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.BaseURL = srv.URL
	svc := NewOllamaService(cfg, logger.Default())

	for i := 0; i < 3; i++ {
		if _, err := svc.Embed(context.Background(), []string{"toyota avanza"}); err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (cache)", got)
	}
}

func TestOllamaEmbedServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.BaseURL = srv.URL
	svc := NewOllamaService(cfg, logger.Default())

	if _, err := svc.Embed(context.Background(), []string{"toyota avanza"}); err == nil {
		t.Fatal("expected error for failing backend")
	}
}

func TestOllamaHealth(t *testing.T) {
	var calls atomic.Int64
	srv := newEmbedServer(t, &calls)
	defer srv.Close()

	cfg := DefaultOllamaConfig()
	cfg.BaseURL = srv.URL
	svc := NewOllamaService(cfg, logger.Default())

	status := svc.Health(context.Background())
	if !status.Healthy {
		t.Errorf("expected healthy, got %+v", status)
	}
	if status.Model != DefaultModel {
		t.Errorf("Model = %q", status.Model)
	}
}

func TestOllamaHealthDown(t *testing.T) {
	cfg := DefaultOllamaConfig()
	cfg.BaseURL = "http://127.0.0.1:1"
	svc := NewOllamaService(cfg, logger.Default())

	if status := svc.Health(context.Background()); status.Healthy {
		t.Error("expected unhealthy for unreachable backend")
	}
}

func TestEmbeddingCacheEviction(t *testing.T) {
	cache := NewEmbeddingCache(2)

	cache.Put("a", []float32{1})
	cache.Put("b", []float32{2})
	cache.Put("c", []float32{3})

	if cache.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", cache.Len())
	}
	if _, ok := cache.Get("a"); ok {
		t.Error("oldest entry should have been evicted")
	}
	if _, ok := cache.Get("c"); !ok {
		t.Error("newest entry missing")
	}
}
