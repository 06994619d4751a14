// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jeranaias/greenchat-tui/internal/config"
	"github.com/jeranaias/greenchat-tui/internal/gateway"
	"github.com/jeranaias/greenchat-tui/internal/inbox"
	"github.com/jeranaias/greenchat-tui/internal/logging"
	"github.com/jeranaias/greenchat-tui/internal/metrics"
	"github.com/jeranaias/greenchat-tui/internal/model"
)

// ============================================================================
// CONSTANTS
// ============================================================================

const (
	// DefaultAddr is used when the config leaves addr empty.
	DefaultAddr = ":8080"

	// DefaultMaxBodyBytes caps a webhook body (1MB).
	DefaultMaxBodyBytes = 1 << 20

	// DedupeSize is how many message ids the receiver remembers.
	DedupeSize = 4096

	shutdownTimeout = 10 * time.Second
)

// Saver stores received messages.
type Saver interface {
	Save(ctx context.Context, instanceID string, msg *model.Message) error
}

// ============================================================================
// SERVER
// ============================================================================

// Server is the webhook receiver.
type Server struct {
	cfg     config.WebhookConfig
	store   Saver
	dedupe  *inbox.Deduper
	logger  *slog.Logger
	router  chi.Router
	started time.Time

	httpServer *http.Server
}

// New builds a Server. store may be nil, in which case deliveries are only
// counted and logged.
func New(cfg config.WebhookConfig, store Saver, logger *slog.Logger) (*Server, error) {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if logger == nil {
		logger = logging.Discard()
	}

	dedupe, err := inbox.NewDeduper(DedupeSize)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:     cfg,
		store:   store,
		dedupe:  dedupe,
		logger:  logger,
		started: time.Now(),
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(RecoveryMiddleware(s.logger))
	r.Use(SecurityHeadersMiddleware)
	r.Use(metrics.Middleware)
	r.Use(LoggingMiddleware(s.logger))

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.With(AuthMiddleware(s.cfg.Token, s.logger)).Post("/webhook", s.handleWebhook)

	return r
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

// Addr returns the listen address.
func (s *Server) Addr() string { return s.cfg.Addr }

// Run serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("webhook server starting", "addr", s.cfg.Addr, "auth", s.cfg.Token != "")
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen on %s: %w", s.cfg.Addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	s.logger.Info("webhook server shutting down")
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// ============================================================================
// HANDLERS
// ============================================================================

// WebhookResponse acknowledges a delivery.
type WebhookResponse struct {
	OK     bool   `json:"ok"`
	Type   string `json:"type,omitempty"`
	Stored bool   `json:"stored"`
}

func (s *Server) handleWebhook(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), s.logger)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "read body")
		return
	}

	hook, err := gateway.DecodeWebhook(body)
	if err != nil {
		log.Warn("undecodable webhook", "error", err)
		writeError(w, http.StatusBadRequest, "invalid webhook")
		return
	}
	metrics.WebhookEventsTotal.WithLabelValues(hook.TypeWebhook).Inc()

	resp := WebhookResponse{OK: true, Type: hook.TypeWebhook}

	switch {
	case hook.TypeWebhook == gateway.TypeStateInstanceChanged:
		log.Info("instance state changed",
			"instance", hook.InstanceData.IDInstance, "state", hook.StateInstance)

	case hook.IsMessage():
		msg, ok := inbox.MessageFromWebhook(hook)
		if !ok || s.dedupe.Seen(msg.ID) {
			break
		}
		if s.store != nil {
			instanceID := strconv.FormatInt(hook.InstanceData.IDInstance, 10)
			if err := s.store.Save(r.Context(), instanceID, msg); err != nil {
				s.dedupe.Forget(msg.ID)
				log.Error("store webhook message", "id", msg.ID, "error", err)
				// The gateway redelivers on a non-2xx response.
				writeError(w, http.StatusInternalServerError, "store failed")
				return
			}
			resp.Stored = true
		}
		log.Debug("webhook message", "id", msg.ID, "chat", msg.ChatID, "direction", msg.Direction)
	}

	writeJSON(w, http.StatusOK, resp)
}

// HealthResponse is returned by /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.started).Round(time.Second).String(),
	})
}

// ============================================================================
// HELPERS
// ============================================================================

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": message,
			"code":    status,
		},
	})
}
