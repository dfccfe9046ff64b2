package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/jkaberg/bms-hass/internal/config"
	"github.com/jkaberg/bms-hass/internal/display"
	"github.com/jkaberg/bms-hass/internal/domain"
	"github.com/jkaberg/bms-hass/internal/entities"
	"github.com/jkaberg/bms-hass/internal/hass"
)

// Server exposes the latest derived state and the resolved entity map over
// a small read-only HTTP API.
type Server struct {
	card     *config.Card
	resolver *entities.Resolver
	logger   *logrus.Logger

	mu      sync.RWMutex
	latest  *display.View
	snap    hass.Snapshot
	updated time.Time
}

// NewServer creates a server for one card configuration.
func NewServer(card *config.Card, resolver *entities.Resolver, logger *logrus.Logger) *Server {
	return &Server{card: card, resolver: resolver, logger: logger}
}

// SetState replaces the state served by /api/state and the snapshot it was
// computed from.
func (s *Server) SetState(state *domain.State, snap hass.Snapshot, at time.Time) {
	if state == nil {
		return
	}
	view := display.NewView(state, s.card, s.resolver.TempCellLabels())
	s.mu.Lock()
	s.latest, s.snap, s.updated = view, snap, at
	s.mu.Unlock()
}

func (s *Server) current() (*display.View, hass.Snapshot, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest, s.snap, s.updated
}

// NewRouter registers every route.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	// Full paths on the root router; a subrouter answers 404 instead of 405
	// on a method mismatch.
	r.HandleFunc("/health", healthHandler).Methods("GET")
	r.HandleFunc("/api/state", s.getState).Methods("GET")
	r.HandleFunc("/api/entities", s.getEntities).Methods("GET")
	r.HandleFunc("/api/entities/{key}", s.getEntity).Methods("GET")
	r.HandleFunc("/api/alarms", s.getAlarms).Methods("GET")

	return r
}

// Run serves the API on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	accessLog := s.logger.WriterLevel(logrus.DebugLevel)
	defer accessLog.Close()

	handler := handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.logger),
		handlers.PrintRecoveryStack(s.logger.IsLevelEnabled(logrus.DebugLevel)),
	)(handlers.CombinedLoggingHandler(accessLog, s.NewRouter()))

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: config.HTTPReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", addr).Info("API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("API server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.HTTPShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("API shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("API server: %w", err)
	}
	return nil
}
