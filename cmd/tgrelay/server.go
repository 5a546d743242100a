package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"tgrelay/internal/database"
	"tgrelay/internal/httputil"
	"tgrelay/internal/middleware"
	"tgrelay/internal/models"
	"tgrelay/internal/relay"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type Server struct {
	cfg         *models.Config
	router      *mux.Router
	logger      *logrus.Logger
	engine      *relay.Engine
	db          *database.Database
	rateLimiter *RateLimiter
	server      *http.Server
	verbose     bool
}

func NewServer(cfg *models.Config, engine *relay.Engine, db *database.Database, logger *logrus.Logger, verbose bool) *Server {
	s := &Server{
		cfg:         cfg,
		router:      mux.NewRouter(),
		logger:      logger,
		engine:      engine,
		db:          db,
		rateLimiter: NewRateLimiter(cfg.Server.RateLimitPerMinute, time.Minute),
		verbose:     verbose,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	webhook := s.router.PathPrefix("/webhook/telegram").Subrouter()
	webhook.Use(middleware.WebhookObservabilityMiddleware(s.logger, "telegram"))
	webhook.HandleFunc("", s.handleTelegramWebhook())
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(s.cfg.Server.IdleTimeoutSec) * time.Second,
	}

	s.logger.Infof("Starting server on port %d", s.cfg.Server.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.db.Ping(r.Context()); err != nil {
			s.logger.WithError(err).Error("Health check failed: store unreachable")
			http.Error(w, "store unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// handleTelegramWebhook accepts one Bot API update per request. Once a
// request authenticates, the response is 200 no matter what the update
// contained: the Bot API redelivers non-2xx responses, and redelivering
// a bad update can never make it good.
func (s *Server) handleTelegramWebhook() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// The Bot API only ever POSTs; anything else gets a bare
		// acknowledgement and no side effects.
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}

		if err := verifySecretToken(r, s.cfg.Telegram.WebhookSecret); err != nil {
			s.logger.WithFields(logrus.Fields{
				relay.LogFieldRemoteIP: httputil.GetClientIP(r),
			}).WithError(err).Warn("Webhook authentication failed")
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		if !s.rateLimiter.Allow(httputil.GetClientIP(r)) {
			http.Error(w, "too many requests", http.StatusTooManyRequests)
			return
		}

		var update models.Update
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			s.logger.WithError(err).Warn("Failed to decode webhook update")
			w.WriteHeader(http.StatusOK)
			return
		}

		ctx := context.WithValue(r.Context(), relay.VerboseContextKey, s.verbose)
		if err := s.engine.HandleUpdate(ctx, &update); err != nil {
			s.logger.WithFields(logrus.Fields{
				"update_id": update.UpdateID,
			}).WithError(err).Error("Failed to handle update")
		}

		w.WriteHeader(http.StatusOK)
	}
}
