// Package rest exposes the queue over HTTP.
//
// The API is a thin binding: every route maps onto exactly one Queue
// operation and document statuses map onto HTTP status codes, so a plain
// HTTP client can drive the whole lifecycle without a library.
package rest

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/docflow-io/docflow/internal/core/ports/driving"
	"github.com/docflow-io/docflow/internal/logger"
)

// ErrorMIME marks a PUT body as an error report rather than a result.
const ErrorMIME = "application/prs.error+text"

// Options configures the REST server.
type Options struct {
	// Addr is the listen address, e.g. ":5001".
	Addr string

	// Token, when non-empty, requires every request to carry an
	// "Authorization: Token <value>" header.
	Token string
}

// Server serves the queue API over HTTP.
type Server struct {
	queue    driving.Queue
	token    string
	addr     string
	server   *http.Server
	listener net.Listener
	errChan  chan error
}

// NewServer creates a REST server over the given queue.
func NewServer(queue driving.Queue, opts Options) *Server {
	addr := opts.Addr
	if addr == "" {
		addr = ":5001"
	}
	return &Server{
		queue:   queue,
		token:   opts.Token,
		addr:    addr,
		errChan: make(chan error, 1),
	}
}

// Handler returns the routed handler, including authentication.
// It is exposed separately so tests can drive it without a listener.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/tools/{tool}/{$}", s.handleSubmit)
	mux.HandleFunc("GET /api/tools/{tool}/{$}", s.handleClaim)
	// GET patterns also serve HEAD; handleResult routes HEAD to the
	// status probe so one pattern covers both without a mux conflict
	// with the literal stats route.
	mux.HandleFunc("GET /api/tools/{tool}/{id}", s.handleResult)
	mux.HandleFunc("PUT /api/tools/{tool}/{id}", s.handleReport)
	mux.HandleFunc("GET /api/tools/{tool}/stats", s.handleStats)
	mux.HandleFunc("POST /api/tools/{tool}/bulk/process", s.handleBulkProcess)
	mux.HandleFunc("POST /api/tools/{tool}/bulk/status", s.handleBulkStatus)
	mux.HandleFunc("POST /api/tools/{tool}/bulk/result", s.handleBulkResult)

	return s.authenticate(mux)
}

// Start begins listening on the configured address. It returns once the
// listener is bound; serving continues in the background.
func (s *Server) Start() error {
	s.server = &http.Server{
		Handler:     s.Handler(),
		ReadTimeout: 30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errChan <- err:
			default:
			}
		}
	}()

	logger.Info("Queue API listening on %s", listener.Addr())
	return nil
}

// Addr returns the bound listen address. Only valid after Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.addr
	}
	return s.listener.Addr().String()
}

// Err exposes the background serve error, if any.
func (s *Server) Err() <-chan error {
	return s.errChan
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// authenticate enforces the optional static token on every request.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Token "+s.token {
			http.Error(w, "invalid or missing token", http.StatusForbidden)
			return
		}
		logger.Debug("%s %s", r.Method, r.URL.Path)
		next.ServeHTTP(w, r)
	})
}
