// Package httpserver exposes liveness and readiness probes next to the bot.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/m3rciful/bookingbot/core/buildinfo"
	"github.com/m3rciful/bookingbot/core/logger"
)

// Check reports whether a dependency is usable.
type Check func(ctx context.Context) error

// Server serves /healthz and /readyz.
type Server struct {
	srv    *http.Server
	checks map[string]Check
}

// New builds a server listening on addr. Checks run on every /readyz call.
func New(addr string, checks map[string]Check) *Server {
	s := &Server{checks: checks}
	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes returns the router; exported for tests.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := buildinfo.Fields()
		body["status"] = "ok"
		writeJSON(w, http.StatusOK, body)
	})
	r.Get("/readyz", s.ready)
	return r
}

func (s *Server) ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	report := make(map[string]string, len(s.checks))
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			status = http.StatusServiceUnavailable
			report[name] = err.Error()
			logger.HTTP.Warn("readiness check failed",
				slog.String("event", "http.ready"),
				slog.String("check", name),
				slog.String("err", err.Error()),
			)
			continue
		}
		report[name] = "ok"
	}
	writeJSON(w, status, report)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		logger.HTTP.Info("http listening",
			slog.String("event", "http.listen"),
			slog.String("listen", s.srv.Addr),
		)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
