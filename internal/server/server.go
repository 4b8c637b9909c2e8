package server

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/kartoza/crop-advisor/internal/advisor"
	"github.com/kartoza/crop-advisor/internal/api"
	"github.com/kartoza/crop-advisor/internal/artifacts"
	"github.com/kartoza/crop-advisor/internal/config"
)

//go:embed static/*
var staticFS embed.FS

// Server holds all the components for the web application
type Server struct {
	cfg        config.Config
	httpServer *http.Server
	router     *mux.Router
	bundle     *artifacts.Bundle
	advisor    *advisor.Advisor
	logger     *zap.Logger
}

// New creates a new Server, loading the model artifacts once.
// A bundle that fails to load is logged and the form keeps serving.
func New(cfg config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		cfg:    cfg,
		router: mux.NewRouter(),
		logger: logger,
	}

	bundle, loadErr := cfg.LoadArtifacts()
	if loadErr != nil {
		logger.Warn("Model artifacts not available", zap.Error(loadErr))
	} else {
		s.bundle = bundle
		logger.Info("Loaded model artifacts",
			zap.String("source", bundle.Source),
			zap.String("version", bundle.Manifest.Version),
			zap.Any("classifier", bundle.Classifier.Info()))
	}

	adv, err := advisor.New(s.bundle, advisor.Options{
		CacheSize: cfg.Cache.Size,
		Logger:    logger,
		LoadErr:   loadErr,
	})
	if err != nil {
		return nil, err
	}
	s.advisor = adv

	s.setupRoutes()

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	staticContent, err := fs.Sub(staticFS, "static")
	if err != nil {
		s.logger.Warn("Could not load embedded static files", zap.Error(err))
	} else {
		s.router.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.FS(staticContent))))
	}

	apiHandler := api.NewHandler(s.advisor, s.cfg, s.logger)
	apiHandler.RegisterRoutes(s.router)
}

// Handler returns the router wrapped in the logging and recovery middleware.
// The wrap sits outside the router so 404 and 405 responses are logged too.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.logger)(recoverer(s.logger)(s.router))
}

// Advisor returns the recommendation core used by the handlers
func (s *Server) Advisor() *advisor.Advisor {
	return s.advisor
}

// Start begins listening for HTTP connections
func (s *Server) Start() error {
	l, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}
	return s.Serve(l)
}

// Serve accepts connections on l until Stop is called
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("Server listening", zap.String("addr", l.Addr().String()))
	if err := s.httpServer.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the server and releases the model
func (s *Server) Stop() error {
	timeout := s.cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := s.httpServer.Shutdown(ctx)

	if cerr := s.bundle.Close(); cerr != nil {
		s.logger.Warn("Error closing model", zap.Error(cerr))
	}
	return err
}
