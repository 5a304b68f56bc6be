// Package api exposes the agent runner over HTTP: POST /run executes one
// instruction, GET /health reports liveness, GET /runs/:id retrieves a
// stored run record.
package api

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/deixis/courier/internal/config"
	"github.com/deixis/courier/internal/history"
	"github.com/deixis/courier/internal/runner"
)

// ServiceName identifies this service in the health payload.
const ServiceName = "courier"

// Executor runs one agent instruction to completion.
type Executor interface {
	Run(ctx context.Context, instruction string) (*runner.Result, error)
}

// Server holds shared dependencies for all HTTP handlers.
type Server struct {
	cfg   *config.Config
	exec  Executor
	store history.Store

	// sem bounds concurrent agent spawns when max_concurrent is set.
	// Nil means unbounded, matching the historical behavior.
	sem chan struct{}
}

// NewServer creates an HTTP server around the given executor and run store.
func NewServer(cfg *config.Config, exec Executor, store history.Store) *Server {
	s := &Server{
		cfg:   cfg,
		exec:  exec,
		store: store,
	}
	if cfg.MaxConcurrent > 0 {
		s.sem = make(chan struct{}, cfg.MaxConcurrent)
	}
	return s
}

// Router builds the gin engine with all routes and middleware registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"*"},
		ExposeHeaders: []string{"Content-Length", "X-Run-Id"},
	}))

	router.Use(requestLogger())

	router.GET("/health", s.getHealth)
	router.POST("/run", s.postRun)
	router.GET("/runs/:id", s.getRun)

	return router
}

// Serve runs the HTTP server until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.cfg.ListenAddr(),
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		_ = httpServer.Close()
	}()

	log.Printf("listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}
