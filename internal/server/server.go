// Package server exposes the local store over the REST contract the
// board's HTTP gateway speaks, and pushes change notifications over a
// websocket.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dori/lifeos/internal/db"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"
)

// Options configures a Server
type Options struct {
	Addr           string
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server serves the REST API over a store
type Server struct {
	store    *db.DB
	hub      *Hub
	logger   *slog.Logger
	opts     Options
	upgrader websocket.Upgrader
	handler  http.Handler
}

// New builds the router. Start it with Run, or mount Handler in tests.
func New(store *db.DB, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}

	s := &Server{
		store:  store,
		hub:    NewHub(opts.Logger),
		logger: opts.Logger,
		opts:   opts,
	}

	c := cors.New(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	})
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Non-browser clients send no Origin
			return r.Header.Get("Origin") == "" || c.OriginAllowed(r)
		},
	}

	r := mux.NewRouter()
	r.HandleFunc("/api/tasks", s.listTasks).Methods("GET")
	r.HandleFunc("/api/tasks", s.createTask).Methods("POST")
	r.HandleFunc("/api/tasks/{id}", s.getTask).Methods("GET")
	r.HandleFunc("/api/tasks/{id}", s.updateTask).Methods("PATCH")
	r.HandleFunc("/api/tasks/{id}", s.deleteTask).Methods("DELETE")
	r.HandleFunc("/api/areas", s.listAreas).Methods("GET")
	r.HandleFunc("/api/areas", s.createArea).Methods("POST")
	r.HandleFunc("/api/areas/{id}", s.deleteArea).Methods("DELETE")
	r.HandleFunc("/api/areas/{id}/archive", s.archiveArea).Methods("POST")
	r.HandleFunc("/api/ws", s.websocket)
	r.HandleFunc("/healthz", s.healthz).Methods("GET")
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	r.Use(s.logRequests)

	s.handler = c.Handler(r)
	return s
}

// Handler returns the HTTP handler. Mutating routes block until the hub
// is running (see Hub.Run).
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Hub returns the notification hub
func (s *Server) Hub() *Hub {
	return s.hub
}

// Run listens on opts.Addr until ctx ends, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.opts.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.hub.Run(ctx)
	})
	g.Go(func() error {
		s.logger.Info("server listening", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start),
		)
	})
}
