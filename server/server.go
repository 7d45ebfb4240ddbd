// Package server exposes the wall over HTTP: its state, the navigation
// operations and prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/videowall/videowall/log"
	"github.com/videowall/videowall/wall"
)

const shutdownTimeout = 5 * time.Second

// Every navigation request tears down an embed and mounts another, so
// clients are limited per address.
const (
	navigationLimit  = 30
	navigationWindow = time.Minute
)

// Controller is the part of the runtime the API drives.
type Controller interface {
	Snapshot() wall.Snapshot
	LoadNextVideo() error
	GoBackInHistory() (bool, error)
	LoadRandomVideo() error
	TogglePlayPause() error
	LogMemoryUsage() wall.MemoryUsage
}

type Server struct {
	router     chi.Router
	controller Controller
}

// New builds the router. A nil gatherer disables /metrics.
func New(controller Controller, gatherer prometheus.Gatherer) *Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(logMiddleware)

	s := &Server{router: r, controller: controller}

	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	r.Get("/memory", s.handleMemory)
	r.Route("/player", func(r chi.Router) {
		r.Use(httprate.Limit(
			navigationLimit,
			navigationWindow,
			httprate.WithKeyFuncs(httprate.KeyByIP),
			httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Retry-After", strconv.Itoa(int(navigationWindow.Seconds())))
				writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "too many navigation requests"})
			}),
		))
		r.Post("/next", s.handleNext)
		r.Post("/back", s.handleBack)
		r.Post("/random", s.handleRandom)
		r.Post("/pause", s.handlePause)
	})

	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Run serves on addr until ctx is done.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Infof("control API listening on %s", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, wall.ErrNoSession):
		status = http.StatusConflict
	case errors.Is(err, wall.ErrClosed):
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleMemory(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.controller.LogMemoryUsage())
}

// respond answers a navigation request with the resulting state.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.controller.Snapshot())
}

func (s *Server) handleNext(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.controller.LoadNextVideo())
}

func (s *Server) handleBack(w http.ResponseWriter, _ *http.Request) {
	went, err := s.controller.GoBackInHistory()
	if err == nil && !went {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "history is empty"})
		return
	}
	s.respond(w, err)
}

func (s *Server) handleRandom(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.controller.LoadRandomVideo())
}

func (s *Server) handlePause(w http.ResponseWriter, _ *http.Request) {
	s.respond(w, s.controller.TogglePlayPause())
}
