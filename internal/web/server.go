package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nao1215/flixsearch/internal/model"
)

//go:embed templates/*.html
var templatesFS embed.FS

// readHeaderTimeout bounds slow clients sending request headers.
const readHeaderTimeout = 10 * time.Second

// Searcher runs a federated search. *aggregate.Aggregator implements it.
type Searcher interface {
	Aggregate(ctx context.Context, pattern string) (*model.GroupedResults, error)
}

// ProbeFunc checks every registered server.
type ProbeFunc func(ctx context.Context) []model.ServerStatus

// Server is the HTTP front end.
type Server struct {
	server   *http.Server
	searcher Searcher
	probe    ProbeFunc
	logger   *slog.Logger
	version  string
}

// Option configures a Server.
type Option func(*Server)

// WithProbe enables GET /api/servers.
func WithProbe(fn ProbeFunc) Option {
	return func(s *Server) {
		s.probe = fn
	}
}

// WithLogger sets the request and lifecycle logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version shown in the page footer and /healthz.
func WithVersion(version string) Option {
	return func(s *Server) {
		s.version = version
	}
}

// NewServer creates a Server listening on addr.
func NewServer(addr string, searcher Searcher, opts ...Option) (*Server, error) {
	s := &Server{
		searcher: searcher,
		version:  "dev",
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}

	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(s.logger))
	router.SetHTMLTemplate(tmpl)

	router.GET("/", s.handleIndex)
	router.GET("/search", s.handleSearch)
	router.GET("/healthz", s.handleHealth)

	api := router.Group("/api")
	api.GET("/search", s.handleAPISearch)
	api.GET("/servers", s.handleAPIServers)

	s.server = &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	return s, nil
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start serves until Stop is called. It returns nil after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.server.Addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Stop gracefully shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("stopping HTTP server")
	return s.server.Shutdown(ctx)
}

// LoggerMiddleware logs one line per request.
func LoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		logger.Info("HTTP request",
			"method", c.Request.Method,
			"path", path,
			"query", query,
			"status", c.Writer.Status(),
			"latency", time.Since(start),
			"ip", c.ClientIP(),
		)
	}
}
