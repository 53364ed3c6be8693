package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	mw "github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/api/middleware"
	v2 "github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/api/v2"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/conf"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/logger"
	"github.com/jovoneybrown2-dot/inspection-powered-by-zo-zi/internal/observability"
)

// Server is the HTTP server for the alert API.
type Server struct {
	echo     *echo.Echo
	config   *Config
	settings *conf.Settings
	log      logger.Logger
	metrics  *observability.Metrics
	services v2.Services

	apiController *v2.Controller
	startTime     time.Time
}

// ServerOption is a functional option for configuring the Server.
type ServerOption func(*Server)

// WithLogger sets the logger for the server.
func WithLogger(log logger.Logger) ServerOption {
	return func(s *Server) {
		s.log = log
	}
}

// WithMetrics sets the observability metrics for the server.
func WithMetrics(m *observability.Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithServices sets the alerting services exposed by the API.
func WithServices(svc v2.Services) ServerOption {
	return func(s *Server) {
		s.services = svc
	}
}

// WithConfig overrides the configuration derived from settings.
func WithConfig(cfg *Config) ServerOption {
	return func(s *Server) {
		s.config = cfg
	}
}

// New creates a new HTTP server with the given settings and options.
func New(settings *conf.Settings, opts ...ServerOption) (*Server, error) {
	s := &Server{
		config:    ConfigFromSettings(settings),
		settings:  settings,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	s.log = logger.OrDiscard(s.log).Module("api")

	s.echo = echo.New()
	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Server.ReadTimeout = s.config.ReadTimeout
	s.echo.Server.WriteTimeout = s.config.WriteTimeout
	s.echo.Server.IdleTimeout = s.config.IdleTimeout

	s.setupMiddleware()

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}

	s.log.Info("HTTP server initialized",
		logger.String("address", s.config.Address()),
		logger.Bool("metrics", s.config.Metrics),
		logger.Bool("debug", s.config.Debug))

	return s, nil
}

// setupMiddleware configures the Echo middleware stack.
func (s *Server) setupMiddleware() {
	// Recovery middleware - should be first
	s.echo.Use(echomw.Recover())
	s.echo.Use(mw.NewRequestID())

	skipMetricsScrape := func(c echo.Context) bool { return c.Path() == "/metrics" }
	s.echo.Use(mw.NewRequestLoggerWithSkipper(s.log, skipMetricsScrape))

	if s.metrics != nil {
		s.echo.Use(mw.NewMetrics(s.metrics.HTTP))
	}

	securityConfig := mw.DefaultSecurityConfig()
	securityConfig.AllowedOrigins = s.config.AllowedOrigins
	s.echo.Use(mw.NewCORS(securityConfig))
	s.echo.Use(mw.NewBodyLimit(s.config.BodyLimit))
	s.echo.Use(mw.NewSecureHeaders(securityConfig))

	if s.config.RateLimit > 0 {
		// submissions arrive from the inspection app's single address
		skipSubmissions := func(c echo.Context) bool {
			return c.Request().Method == http.MethodPost && c.Path() == "/api/v2/alerts"
		}
		s.echo.Use(mw.NewRateLimiterWithSkipper(s.config.RateLimit, skipSubmissions))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() error {
	if s.config.Metrics && s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler(s.log)))
	}

	opts := []v2.Option{v2.WithSystemStats(true)}
	if s.metrics != nil {
		opts = append(opts, v2.WithHTTPMetrics(s.metrics.HTTP))
	}

	apiController, err := v2.New(s.echo, s.settings, s.services, s.log, opts...)
	if err != nil {
		return fmt.Errorf("failed to initialize API v2: %w", err)
	}
	s.apiController = apiController
	return nil
}

// Start serves HTTP requests and blocks until ctx is cancelled or the
// server fails. On cancellation it shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting HTTP server", logger.String("address", s.config.Address()))
		if err := s.echo.Start(s.config.Address()); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	if err := s.Shutdown(); err != nil {
		return err
	}
	return <-errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(ctx); err != nil {
		s.log.Error("error during server shutdown", logger.Error(err))
		return fmt.Errorf("shutdown error: %w", err)
	}

	s.log.Info("server shutdown complete",
		logger.Duration("uptime", time.Since(s.startTime).Round(time.Second)))
	return nil
}

// APIController returns the v2 API controller.
func (s *Server) APIController() *v2.Controller {
	return s.apiController
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
