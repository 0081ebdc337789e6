package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"postdigest/internal/domain"
	"postdigest/internal/monitor"

	"github.com/gin-gonic/gin"
)

const (
	OperatorUser = "operator"

	readHeaderTimeout = 10 * time.Second
	// Refresh and newsletter generation wait on the language model.
	writeTimeout = 10 * time.Minute
)

// Archive is the read side of the newsletter archive.
type Archive interface {
	GetNewsletter(ctx context.Context, id string) (domain.Newsletter, error)
	LatestNewsletter(ctx context.Context) (domain.Newsletter, error)
	ListNewsletters(ctx context.Context, limit int) ([]domain.Newsletter, error)
}

type Config struct {
	Addr     string
	Password string
}

// Server is the operator HTTP API.
type Server struct {
	monitor *monitor.Monitor
	archive Archive
	engine  *gin.Engine
	srv     *http.Server
	log     *slog.Logger
}

func New(cfg Config, m *monitor.Monitor, archive Archive, log *slog.Logger) *Server {
	s := &Server{
		monitor: m,
		archive: archive,
		log:     log,
	}

	engine := gin.New()
	engine.UseRawPath = true
	engine.UnescapePathValues = true
	engine.Use(requestLogger(log))
	engine.Use(gin.CustomRecovery(handlePanics(log)))

	engine.GET("/healthz", s.healthz)

	api := engine.Group("/api")
	if password := strings.TrimSpace(cfg.Password); password != "" {
		api.Use(gin.BasicAuth(gin.Accounts{OperatorUser: password}))
	}
	{
		api.GET("/posts", s.getPosts)
		api.POST("/fetch", s.fetch)
		api.POST("/summaries", s.summarize)
		api.PUT("/posts/:id/included", s.setIncluded)
		api.DELETE("/posts/:id", s.excludePost)
		api.POST("/newsletter", s.generateNewsletter)
		api.GET("/newsletters", s.listNewsletters)
		api.GET("/newsletters/:id/download", s.downloadNewsletter)
	}

	s.engine = engine
	s.srv = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start serves until Shutdown is called.
func (s *Server) Start(ctx context.Context) error {
	s.log.InfoContext(ctx, "Dashboard is listening",
		"addr", s.srv.Addr)

	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("listen and serve: %w", err)
	}

	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}

		log.Log(c.Request.Context(), level, "Request is handled",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", status,
			"durationMs", time.Since(start).Milliseconds(),
			"clientIP", c.ClientIP())
	}
}

func handlePanics(log *slog.Logger) gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		log.ErrorContext(c.Request.Context(), "Recovered from panic",
			"panic", recovered,
			"method", c.Request.Method,
			"path", c.FullPath())

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
