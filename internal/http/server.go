// Package http serves the scoutdesk REST API over echo.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/honeycarbs/scoutdesk/internal/domain/candidate"
	"github.com/honeycarbs/scoutdesk/internal/domain/group"
	"github.com/honeycarbs/scoutdesk/internal/domain/posting"
	"github.com/honeycarbs/scoutdesk/internal/domain/scout"
	"github.com/honeycarbs/scoutdesk/internal/metrics"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
)

// Services are the domain services behind the API
type Services struct {
	Scout      scout.Service
	Exporter   *scout.Exporter
	Postings   posting.Service
	Candidates candidate.Service
	Groups     group.Service
}

type Config struct {
	Addr      string
	UploadDir string       // served under /uploads when set
	MCP       http.Handler // mounted at /mcp/stream when set
}

// Server is the REST API plus health, metrics and the MCP stream endpoint
type Server struct {
	echo *echo.Echo
	svc  Services
	cfg  Config
	log  *logging.Logger
}

func NewServer(cfg Config, svc Services, log *logging.Logger, m *metrics.Metrics) (*Server, error) {
	if svc.Scout == nil || svc.Postings == nil || svc.Candidates == nil || svc.Groups == nil {
		return nil, errors.New("http.Server: scout, posting, candidate and group services are required")
	}
	if log == nil {
		log = logging.NewNop()
	}
	log = log.Named("http")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errorHandler(log)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(instrument(m))

	s := &Server{echo: e, svc: svc, cfg: cfg, log: log}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if s.cfg.MCP != nil {
		s.echo.Any("/mcp/stream", echo.WrapHandler(s.cfg.MCP))
	}
	if s.cfg.UploadDir != "" {
		s.echo.Static("/uploads", s.cfg.UploadDir)
	}

	v1 := s.echo.Group("/api/v1", requirePrincipal())

	v1.GET("/candidates/:id/scout-stats", s.handleScoutStats)
	v1.GET("/candidates/:id/edit", s.handleCandidateEdit)
	v1.POST("/candidates/:id/draft", s.handleCandidateStage)
	v1.GET("/candidates/:id/draft", s.handleCandidateConfirm)
	v1.POST("/candidates/:id/back", s.handleCandidateBack)
	v1.POST("/candidates/:id/commit", s.handleCandidateCommit)

	v1.GET("/postings/:id", s.handlePostingGet)
	v1.GET("/postings/:id/related", s.handlePostingRelated)
	v1.GET("/postings/:id/edit", s.handlePostingEdit)
	v1.POST("/postings/:id/draft", s.handlePostingStage)
	v1.GET("/postings/:id/draft", s.handlePostingConfirm)
	v1.POST("/postings/:id/back", s.handlePostingBack)
	v1.POST("/postings/:id/commit", s.handlePostingCommit)
	v1.PUT("/postings/:id/publication", s.handlePostingPublication)
	v1.POST("/admin/postings/:id/status", s.handlePostingStatus)

	v1.GET("/groups", s.handleGroupList)
	v1.DELETE("/groups/:id", s.handleGroupDelete)

	v1.POST("/exports/scout-stats", s.handleScoutExport)
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler { return s.echo }

// Run serves until Shutdown is called
func (s *Server) Run() error {
	s.log.Info("http server listening", "addr", s.cfg.Addr)
	if err := s.echo.Start(s.cfg.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}
