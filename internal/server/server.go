// Package server provides the HTTP server that wires all services together.
package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/mobilcari/mobil-cari/internal/bus"
	"github.com/mobilcari/mobil-cari/internal/config"
	"github.com/mobilcari/mobil-cari/internal/dataset"
	"github.com/mobilcari/mobil-cari/internal/index"
	"github.com/mobilcari/mobil-cari/internal/ml"
	"github.com/mobilcari/mobil-cari/internal/narrative"
	"github.com/mobilcari/mobil-cari/internal/pkg/logger"
	"github.com/mobilcari/mobil-cari/internal/pkg/middleware"
	"github.com/mobilcari/mobil-cari/internal/qdrant"
	"github.com/mobilcari/mobil-cari/internal/recommend"
	"github.com/mobilcari/mobil-cari/internal/session"
)

// Server is the main HTTP server that wires all services together.
type Server struct {
	cfg        *config.Config
	log        *logger.Logger
	httpServer *http.Server

	// Services
	bus       bus.Bus
	ml        ml.Service
	qdrant    *qdrant.Client
	data      *dataset.Manager
	index     *index.Pipeline
	recommend *recommend.Service
	sessions  session.Store
	narrative narrative.Generator

	// Handlers
	recommendHandler *recommend.Handler
	narrativeHandler *narrative.Handler
	adminHandler     *AdminHandler
	healthHandler    *HealthHandler

	mu      sync.RWMutex
	started bool
}

// Version is stamped at build time.
var Version = "dev"

// New creates a new server with all dependencies.
func New(cfg *config.Config, log *logger.Logger) (*Server, error) {
	s := &Server{
		cfg: cfg,
		log: log,
	}

	eventBus, err := bus.NewBus(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("creating event bus: %w", err)
	}
	s.bus = bus.NewLoggedBus(eventBus, log)

	s.data = dataset.NewManager(cfg.Dataset.Path, cfg.Dataset.CurrentYear, log)
	if _, err := s.data.Reload(); err != nil {
		return nil, fmt.Errorf("loading dataset: %w", err)
	}

	// The similarity path is optional. When Qdrant or Ollama is not
	// reachable the recommender still serves filter-only results.
	var provider recommend.SimilarityProvider
	if cfg.EnableML {
		mlSvc := ml.NewOllamaService(ml.OllamaConfig{
			BaseURL:   cfg.Ollama.URL,
			Model:     cfg.Ollama.EmbedModel,
			CacheSize: cfg.Ollama.EmbedCacheSize,
		}, log)
		s.ml = mlSvc

		qc, err := qdrant.NewClient(qdrant.ClientConfig{
			Host:   cfg.Qdrant.Host,
			Port:   cfg.Qdrant.Port,
			APIKey: cfg.Qdrant.APIKey,
			UseTLS: cfg.Qdrant.UseTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("creating Qdrant client: %w", err)
		}
		s.qdrant = qc

		pipelineCfg := index.PipelineConfig{
			Collection: cfg.Qdrant.Collection,
			VectorSize: uint64(cfg.Ollama.EmbedDim),
			Workers:    cfg.Recommend.IndexWorkers,
		}
		s.index = index.NewPipeline(pipelineCfg, s.ml, s.qdrant, log, s.bus)
		provider = index.NewProvider(s.ml, s.qdrant, cfg.Qdrant.Collection)
	}

	s.sessions, err = newSessionStore(cfg.Session)
	if err != nil {
		return nil, fmt.Errorf("creating session store: %w", err)
	}

	recommendCfg := recommend.DefaultConfig()
	recommendCfg.PrefetchLimit = cfg.Recommend.PrefetchLimit
	recommendCfg.DefaultTopK = cfg.Recommend.DefaultTopK
	recommendCfg.Rank.AgePreferenceYears = cfg.Recommend.AgeThreshold
	s.recommend = recommend.NewService(provider, s.data, log, recommendCfg)
	s.recommendHandler = recommend.NewHandler(s.recommend, s.sessions, s.bus, log)

	if cfg.EnableNarrative {
		narrativeCfg := narrative.DefaultConfig()
		narrativeCfg.BaseURL = cfg.Ollama.URL
		narrativeCfg.Model = cfg.Ollama.GenerateModel
		s.narrative = narrative.NewOllamaGenerator(narrativeCfg, log)
		s.narrativeHandler = narrative.NewHandler(s.recommend, s.narrative, log)
	}

	s.adminHandler = NewAdminHandler(s.data, s.index, s.bus, log)
	s.healthHandler = NewHealthHandler(s.data, s.ml, s.qdrant, Version)

	return s, nil
}

func newSessionStore(cfg config.SessionConfig) (session.Store, error) {
	ttl := time.Duration(cfg.TTLMinutes) * time.Minute

	switch cfg.Type {
	case "redis":
		return session.NewRedisStore(cfg.RedisURL, ttl)
	default:
		return session.NewMemoryStore(ttl), nil
	}
}

// Start starts the HTTP server. It blocks until the listener fails or
// the server is stopped.
func (s *Server) Start() error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("server already started")
	}
	s.started = true
	s.mu.Unlock()

	// Index the catalog up front so the first query can use the
	// similarity path. Failures degrade, they do not abort startup.
	if s.index != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.index.Index(ctx, s.data.Snapshot(), false); err != nil {
			s.log.Warn("initial indexing failed, similarity retrieval degraded", "error", err)
		}
	}

	s.httpServer = &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.Routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute,
	}

	s.log.Info("starting HTTP server", "addr", s.cfg.Addr())
	return s.httpServer.ListenAndServe()
}

// Stop gracefully stops the server and closes its services.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}

	s.log.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.Error("HTTP shutdown error", "error", err)
		}
	}

	if s.qdrant != nil {
		s.qdrant.Close()
	}
	if s.ml != nil {
		s.ml.Close()
	}
	if closer, ok := s.sessions.(interface{ Close() error }); ok {
		closer.Close()
	}
	if s.bus != nil {
		s.bus.Close()
	}

	s.started = false
	s.log.Info("server stopped")

	return nil
}

// Routes builds the HTTP handler with all routes and middleware.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/recommend", s.recommendHandler.HandleRecommend)
	if s.narrativeHandler != nil {
		mux.HandleFunc("/api/tanya", s.narrativeHandler.HandleAsk)
	}
	mux.HandleFunc("/api/dataset/reload", s.adminHandler.HandleReload)
	mux.HandleFunc("/api/index", s.adminHandler.HandleIndex)
	mux.HandleFunc("/api/health", s.healthHandler.HandleHealth)

	var handler http.Handler = mux
	handler = corsMiddleware(s.cfg.Security.CORSOrigins, handler)

	if s.cfg.Security.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(middleware.RateLimiterConfig{
			RequestsPerSecond: float64(s.cfg.Security.RateLimit),
			Burst:             s.cfg.Security.RateBurst,
			CleanupInterval:   time.Minute,
		})
		handler = limiter.Middleware(handler)
	}

	handler = s.logRequests(handler)
	handler = middleware.RequestID(handler)

	return handler
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		s.log.Debug("HTTP request",
			"request_id", middleware.RequestIDFromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.status,
			"duration", time.Since(start),
		)
	})
}

func corsMiddleware(origins string, next http.Handler) http.Handler {
	if origins == "" {
		origins = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", origins)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Health reports whether the server has been started.
func (s *Server) Health() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}
