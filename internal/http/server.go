package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"spendcast/internal/cache"
	"spendcast/internal/services"
)

type Server struct {
	http.Server
	svc            *services.PredictionService
	rateLimiter    *rateLimiter
	metrics        *securityMetrics
	allowedOrigins []string

	// Cached insights responses, invalidated when the user ingests data.
	insightsCache *cache.LRUCache[insightsResponse]
	cacheManager  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. With no allowedOrigins, cross-origin requests from any
// origin are accepted.
func NewServer(addr string, svc *services.PredictionService, allowedOrigins ...string) *Server {
	mux := http.NewServeMux()

	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	s := &Server{
		Server: http.Server{
			Addr: addr,
		},
		svc:            svc,
		rateLimiter:    newRateLimiter(),
		metrics:        &securityMetrics{},
		allowedOrigins: allowedOrigins,
		insightsCache:  cache.NewLRUCache[insightsResponse](200, 5*time.Minute),
		cacheManager:   cache.NewManager(),
	}
	s.Server.Handler = s.corsHandler(mux)

	s.cacheManager.Register(s.insightsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /{$}", s.withMiddleware(s.handleIndex))
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/predictions/predict", s.withMiddleware(s.handlePredict))
	mux.HandleFunc("GET /api/predictions/insights/{user_id}", s.withMiddleware(s.handleInsights))
	mux.HandleFunc("GET /api/predictions/category/{user_id}/{category}", s.withMiddleware(s.handleCategoryPrediction))
	mux.HandleFunc("GET /api/predictions/compare/{user_id}", s.withMiddleware(s.handleCompare))
	mux.HandleFunc("GET /api/predictions/audit/{user_id}", s.withMiddleware(s.handleAudits))

	mux.HandleFunc("POST /api/transactions", s.withMiddleware(s.handleIngest))

	return s
}

// Shutdown gracefully shuts down the server and cleanup routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()

		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}

		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
