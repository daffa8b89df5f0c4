package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

const shutdownGracePeriod = 5 * time.Second

type Server struct {
	config        *Config
	sessionHolder *SessionHolder
	matchHolder   *MatchHolder
	pipeline      *Pipeline
	stats         *Stats
	logger        *Logger

	httpServer *http.Server
}

func NewServer(config *Config, sessionHolder *SessionHolder, matchHolder *MatchHolder, pipeline *Pipeline, stats *Stats, logger *Logger) *Server {
	s := &Server{
		config:        config,
		sessionHolder: sessionHolder,
		matchHolder:   matchHolder,
		pipeline:      pipeline,
		stats:         stats,
		logger:        logger,
	}
	s.httpServer = &http.Server{
		MaxHeaderBytes: 5120,
		Handler:        s.Handler(),
	}
	return s
}

// Handler builds the HTTP routes. It is exposed so tests can mount it on httptest.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	// Do NOT enable compression on the websocket route, writes on the hijacked connection would fail.
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) }).Methods("GET")
	router.HandleFunc("/ws", NewSocketAcceptor(s.sessionHolder, s.config, s.pipeline, s.stats, s.logger)).Methods("GET")
	if !s.config.MetricsDisabled {
		router.Handle("/metrics", s.stats.Handler()).Methods("GET")
	}

	CORSHeaders := handlers.AllowedHeaders([]string{"Content-Type", "User-Agent"})
	CORSOrigins := handlers.AllowedOrigins([]string{"*"})
	CORSMethods := handlers.AllowedMethods([]string{"GET", "HEAD"})
	handlerWithCORS := handlers.CORS(CORSHeaders, CORSOrigins, CORSMethods)(router)

	return handlers.RecoveryHandler(handlers.PrintRecoveryStack(s.config.DevelopmentEnabled))(handlerWithCORS)
}

// ListenAndServe serves until ctx is cancelled or the listener fails, then shuts down and
// returns the first error seen.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", s.config.Port))
	if err != nil {
		return errors.Wrapf(err, "listen on port %d", s.config.Port)
	}
	return s.Serve(ctx, listener)
}

func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Infow("Starting server for websocket requests", "addr", listener.Addr().String())
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			return errors.Wrap(err, "serve http")
		}
		return nil
	})

	g.Go(func() error {
		interval := time.Duration(s.config.GameConfig.SweepInterval) * time.Second
		ttl := time.Duration(s.config.GameConfig.FinishedMatchTTL) * time.Second
		return s.matchHolder.RunSweeper(gctx, interval, ttl)
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Stop()
	})

	return g.Wait()
}

// Stop closes the listener, drops every socket and waits briefly for in-flight HTTP requests.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGracePeriod)
	defer cancel()

	var err error
	if shutdownErr := s.httpServer.Shutdown(ctx); shutdownErr != nil {
		err = multierr.Append(err, errors.Wrap(shutdownErr, "shutdown http server"))
		err = multierr.Append(err, s.httpServer.Close())
	}

	// Hijacked websocket connections are not tracked by http.Server.
	s.sessionHolder.CloseAll()

	s.logger.Infow("Server was stopped", "matches", s.matchHolder.Count())
	return err
}
