// Package server exposes coin sessions over a small JSON HTTP API together
// with health and Prometheus endpoints.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/coinsim/internal/coin"
	"github.com/agbru/coinsim/internal/logging"
	"github.com/agbru/coinsim/internal/metrics"
	"github.com/agbru/coinsim/internal/orchestration"
	"github.com/agbru/coinsim/internal/stats"
	"github.com/agbru/coinsim/internal/store"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	writeTimeout      = 60 * time.Second
	idleTimeout       = 120 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// Config holds the settings of the HTTP server and of the sessions it
// creates. Start from DefaultConfig: a zero Probability is a coin that
// never lands heads.
type Config struct {
	Addr        string
	Probability float64
	BatchSize   int
	Confidence  float64
	// Seed makes every session reproducible when HasSeed is set.
	Seed     uint64
	HasSeed  bool
	Security SecurityConfig
}

// DefaultConfig returns a fair-coin configuration listening on :8080.
func DefaultConfig() Config {
	return Config{
		Addr:        ":8080",
		Probability: coin.FairProbability,
		BatchSize:   orchestration.DefaultBatchSize,
		Confidence:  stats.DefaultConfidence,
		Security:    DefaultSecurityConfig(),
	}
}

// Server serves the session API. Sessions are opened lazily from the store
// and kept in memory until deleted.
type Server struct {
	cfg     Config
	store   store.Store
	metrics *metrics.Metrics
	logger  logging.Logger

	mu       sync.Mutex
	sessions map[string]*orchestration.Session

	httpServer *http.Server
}

// New creates a Server. A nil store selects an in-memory store and a nil
// logger discards output.
func New(cfg Config, st store.Store, logger logging.Logger) *Server {
	if st == nil {
		st = store.NewMemoryStore()
	}
	if logger == nil {
		logger = logging.Nop()
	}
	if cfg.BatchSize == 0 {
		cfg.BatchSize = orchestration.DefaultBatchSize
	}
	if cfg.Confidence == 0 {
		cfg.Confidence = stats.DefaultConfidence
	}
	if cfg.Security.MaxFlips == 0 {
		cfg.Security = DefaultSecurityConfig()
	}
	s := &Server{
		cfg:      cfg,
		store:    st,
		metrics:  metrics.NewMetrics(),
		logger:   logger,
		sessions: make(map[string]*orchestration.Session),
	}
	s.httpServer = &http.Server{
		Addr:              cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

// Handler returns the routed and instrumented handler. Security headers and
// CORS preflight are handled before routing.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.route(mux, "GET /healthz", s.handleHealth)
	s.route(mux, "/metrics", s.handleMetrics)
	s.route(mux, "GET /api/sessions", s.handleListSessions)
	s.route(mux, "POST /api/sessions", s.handleCreateSession)
	s.route(mux, "GET /api/sessions/{id}", s.handleGetSession)
	s.route(mux, "DELETE /api/sessions/{id}", s.handleDeleteSession)
	s.route(mux, "POST /api/sessions/{id}/flip", s.handleFlip)
	s.route(mux, "POST /api/sessions/{id}/batch", s.handleBatch)
	s.route(mux, "POST /api/sessions/{id}/reset", s.handleReset)
	s.route(mux, "GET /api/sessions/{id}/history", s.handleHistory)
	return SecurityMiddleware(s.cfg.Security, mux.ServeHTTP)
}

func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, s.loggingMiddleware(s.metricsMiddleware(h)))
}

// Start listens on the configured address and serves until ctx is done,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)
	s.logger.Info("server listening", logging.String("addr", ln.Addr().String()))

	g.Go(func() error {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down server")
		return s.httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return nil
}

// session returns the live session for id, opening it from the store if
// needed. Ids the store does not know return store.ErrNotFound.
func (s *Server) session(ctx context.Context, id string) (*orchestration.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.sessions[id]; ok {
		return sess, nil
	}
	if !store.ValidSessionID(id) {
		return nil, store.ErrNotFound
	}
	if _, err := s.store.Load(ctx, id); err != nil {
		return nil, err
	}
	sess, err := orchestration.OpenSession(ctx, s.sessionOptions(id)...)
	if err != nil {
		return nil, err
	}
	s.sessions[id] = sess
	s.metrics.SetSessionsActive(len(s.sessions))
	return sess, nil
}

// createSession registers a new session and persists its empty tally.
// An empty id picks a random one.
func (s *Server) createSession(ctx context.Context, id string) (*orchestration.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id != "" {
		if _, ok := s.sessions[id]; ok {
			return nil, errSessionExists
		}
		if _, err := s.store.Load(ctx, id); err == nil {
			return nil, errSessionExists
		} else if !errors.Is(err, store.ErrNotFound) {
			return nil, err
		}
	}

	sess, err := orchestration.NewSession(s.sessionOptions(id)...)
	if err != nil {
		return nil, err
	}
	snap := sess.Snapshot()
	if err := s.store.Save(ctx, sess.ID(), &snap.State); err != nil {
		return nil, err
	}
	s.sessions[sess.ID()] = sess
	s.metrics.SetSessionsActive(len(s.sessions))
	s.logger.Info("session created", logging.String("session", sess.ID()))
	return sess, nil
}

func (s *Server) forget(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.metrics.SetSessionsActive(len(s.sessions))
	s.mu.Unlock()
}

func (s *Server) sessionOptions(id string) []orchestration.SessionOption {
	opts := []orchestration.SessionOption{
		orchestration.WithStore(s.store),
		orchestration.WithObserver(s.metrics),
		orchestration.WithLogger(s.logger),
		orchestration.WithProbability(s.cfg.Probability),
		orchestration.WithBatchSize(s.cfg.BatchSize),
		orchestration.WithConfidence(s.cfg.Confidence),
	}
	if id != "" {
		opts = append(opts, orchestration.WithID(id))
	}
	if s.cfg.HasSeed {
		opts = append(opts, orchestration.WithSource(coin.NewSeededSource(s.cfg.Seed)))
	}
	return opts
}
