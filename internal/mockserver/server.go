// Package mockserver serves canned WMATA responses for tests, demos and the
// CLI's mock command. URLs follow the live layout:
// /{Module}.svc/json/{Resource}?...&api_key=KEY.
package mockserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
)

// Response overrides what the server returns for one resource.
type Response struct {
	Status int
	Body   []byte
}

// Server is a fixture-backed stand-in for api.wmata.com.
type Server struct {
	apiKey string // when set, only this key is accepted

	mu        sync.Mutex
	fixtures  map[string]any
	overrides map[string]Response
	requests  []string
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey accepts only key. By default any non-empty key is accepted.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// New returns a Server loaded with the default fixtures.
func New(opts ...Option) *Server {
	s := &Server{
		fixtures:  defaultFixtures(),
		overrides: make(map[string]Response),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetResponse makes module/resource answer with status and a raw body,
// which need not be valid JSON.
func (s *Server) SetResponse(module, resource string, status int, body []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[module+"/"+resource] = Response{Status: status, Body: body}
}

// Requests returns the request URIs received so far, in arrival order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Handler wires the WMATA routes.
func (s *Server) Handler() http.Handler {
	root := mux.NewRouter()
	root.Use(recoverPanics, s.record, s.requireAPIKey)

	root.HandleFunc("/{module}.svc/json/GetPrediction/{codes}", s.prediction).Methods(http.MethodGet)
	root.HandleFunc("/{module}.svc/json/{resource}", s.resource).Methods(http.MethodGet)
	root.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Resource not found")
	})
	return root
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("mock WMATA server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down mock WMATA server")
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(ctxShutdown)
	case err := <-errCh:
		return err
	}
}

func (s *Server) resource(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	key := vars["module"] + "/" + vars["resource"]

	if s.override(w, key) {
		return
	}
	s.mu.Lock()
	body, ok := s.fixtures[key]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Sprintf("Resource %q not found", key))
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) prediction(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if vars["module"] != "StationPrediction" {
		writeError(w, http.StatusNotFound, "Resource not found")
		return
	}
	if s.override(w, "StationPrediction/GetPrediction") {
		return
	}
	writeJSON(w, http.StatusOK, predictionsFor(strings.Split(vars["codes"], ",")))
}

func (s *Server) override(w http.ResponseWriter, key string) bool {
	s.mu.Lock()
	resp, ok := s.overrides[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
	return true
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, r.URL.RequestURI())
		s.mu.Unlock()
		log.Debug().Str("method", r.Method).Str("path", r.URL.Path).Msg("mock request")
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("api_key")
		if key == "" || (s.apiKey != "" && key != s.apiKey) {
			writeError(w, http.StatusUnauthorized, "Access denied due to invalid subscription key.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// recoverPanics turns a handler panic into a 500.
func recoverPanics(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().
					Interface("panic", rec).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				writeError(w, http.StatusInternalServerError, "Internal Server Error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{StatusCode: status, Message: message})
}
