// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the summarization service over HTTP: paper
// search, submission by upload, URL, or DOI, task polling, and summary and
// audio retrieval.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// DefaultMaxUploadBytes bounds multipart uploads when Config leaves it zero.
const DefaultMaxUploadBytes = 50 << 20

// Submitter queues a paper for background processing.
type Submitter interface {
	Submit(ctx context.Context, in pipeline.Input) (*types.Task, error)
}

// Searcher runs paper searches.
type Searcher interface {
	Search(ctx context.Context, q search.Query) ([]types.SearchResult, error)
}

// Config wires a Server.
type Config struct {
	Tasks     Submitter
	Searcher  Searcher
	Store     store.Store
	Artifacts artifact.Store

	MaxUploadBytes int64
	Logger         *zap.Logger
}

// Server holds the gin router and its dependencies.
type Server struct {
	tasks     Submitter
	searcher  Searcher
	store     store.Store
	artifacts artifact.Store
	maxUpload int64
	logger    *zap.Logger
	router    *gin.Engine
}

// New builds the router.
func New(cfg Config) *Server {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		tasks:     cfg.Tasks,
		searcher:  cfg.Searcher,
		store:     cfg.Store,
		artifacts: cfg.Artifacts,
		maxUpload: cfg.MaxUploadBytes,
		logger:    cfg.Logger,
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20
	router.Use(requestLogger(s.logger))
	router.Use(gin.Recovery())
	router.Use(requestMetrics().HandlerFunc())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	health := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
	router.GET("/health", health)
	router.HEAD("/health", health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	papers := router.Group("/papers")
	papers.POST("/search", s.searchPapers)
	papers.POST("/upload", s.uploadPaper)
	papers.POST("/url", s.submitURL)
	papers.POST("/doi", s.submitDOI)

	router.GET("/tasks/:id", s.getTask)
	router.GET("/summaries/:id", s.getSummary)
	router.GET("/summaries/:id/audio", s.getSummaryAudio)

	s.router = router
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("listening on %s: %w", addr, err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}
	return nil
}
