// Package http exposes the streaming pipeline over HTTP: raw runtime events
// in via REST, normalized frames out via SSE and websocket, plus a read-only
// skills API.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"skillstream/internal/config"
	"skillstream/internal/server/app"
	"skillstream/internal/shared/logging"
	"skillstream/internal/skills"
)

// Server wires the gin engine, the session registry, and the broadcaster.
type Server struct {
	cfg         config.ServerConfig
	engine      *gin.Engine
	httpServer  *http.Server
	sessions    *app.SessionRegistry
	broadcaster *app.Broadcaster
	library     skills.Library
	logger      logging.Logger
}

// New builds a configured server. The skills library is loaded once at
// startup; the skills API serves metadata from memory.
func New(cfg config.ServerConfig, library skills.Library, logger logging.Logger) *Server {
	logger = logging.OrNop(logger)

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	corsConfig.AllowWebSockets = true
	engine.Use(cors.New(corsConfig))

	s := &Server{
		cfg:         cfg,
		engine:      engine,
		sessions:    app.NewSessionRegistry(),
		broadcaster: app.NewBroadcaster(cfg.HistoryLimit, logger),
		library:     library,
		logger:      logger,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", s.handleHealth)
	s.engine.GET("/api/stream", s.handleSSEStream)
	s.engine.GET("/ws", s.handleWebSocket)

	api := s.engine.Group("/api")
	api.POST("/sessions/:id/events", s.handleIngestEvent)
	api.POST("/sessions/:id/reset", s.handleResetSession)
	api.DELETE("/sessions/:id", s.handleRemoveSession)
	api.GET("/sessions", s.handleListSessions)
	api.GET("/skills", s.handleListSkills)
	api.GET("/skills/:name", s.handleSkillInfo)
	api.GET("/skills/:name/instructions", s.handleSkillInstructions)
	api.GET("/metrics", gin.WrapH(promhttp.HandlerFor(prometheus.DefaultGatherer, promhttp.HandlerOpts{})))
}

// Engine exposes the underlying gin engine for tests.
func (s *Server) Engine() *gin.Engine { return s.engine }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		s.logger.Info("listening on %s", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	})
	return group.Wait()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
