package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"collectrip/config"
	"collectrip/importer"
	"collectrip/services"
	"collectrip/storage"
)

// Server is the HTTP surface: auth, profiles, content browsing, check-ins and
// badges, plus health and metrics endpoints.
type Server struct {
	cfg        *config.Config
	store      *storage.PostgresStore
	auth       *services.AuthService
	users      *services.UserService
	collectors *services.CollectorService
	badges     *services.BadgeService
	metrics    *importer.Metrics
	httpServer *http.Server
}

func NewServer(
	cfg *config.Config,
	store *storage.PostgresStore,
	auth *services.AuthService,
	users *services.UserService,
	collectors *services.CollectorService,
	badges *services.BadgeService,
	metrics *importer.Metrics,
) *Server {
	return &Server{
		cfg:        cfg,
		store:      store,
		auth:       auth,
		users:      users,
		collectors: collectors,
		badges:     badges,
		metrics:    metrics,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", s.handleHealthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/social/kakao", s.handleKakaoLogin)
		r.Post("/auth/refresh", s.handleRefresh)
		r.Get("/users/check-nickname", s.handleCheckNickname)

		r.Get("/contents", s.handleListContents)
		r.Get("/contents/{contentID}", s.handleGetContent)
		r.Get("/badges", s.handleListBadges)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/users/me", s.handleGetMe)
			r.Patch("/users/me", s.handlePatchMe)
			r.Get("/users/me/badges", s.handleMyBadges)
			r.Post("/collectors", s.handleCheckin)
			r.Get("/collectors/me", s.handleMyCollectors)
		})
	})

	return r
}

// Start runs the HTTP server until ctx is cancelled, then shuts down with a
// short grace period.
func (s *Server) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:         s.cfg.Server.Addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http server listening on %s", s.cfg.Server.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Pool().Ping(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded", "database": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Warning: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
