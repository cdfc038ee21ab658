// Package echoweb serves the role dashboards of the portal with echo.
package echoweb

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-portal/assets"
	"github.com/trezcool/masomo-portal/core"
	"github.com/trezcool/masomo-portal/core/form"
	"github.com/trezcool/masomo-portal/core/listing"
	"github.com/trezcool/masomo-portal/services/export"
)

type (
	ServerDeps struct {
		Conf        *core.Config
		Logger      core.Logger
		Workspaces  *listing.Workspaces
		Engine      *form.Engine
		Exporter    *export.Service
		Revocations core.RevocationStore
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

var _ http.Handler = (*Server)(nil)

func NewServer(deps ServerDeps) (*Server, error) {
	if deps.Exporter == nil {
		deps.Exporter = export.NewService()
	}
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)

	if err := s.setup(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Server) setup() error {
	conf := s.deps.Conf

	r, err := newRenderer(assets.Templates, conf.Debug || conf.TestMode)
	if err != nil {
		return errors.Wrap(err, "loading templates")
	}
	s.app.Renderer = r
	s.app.HideBanner = true

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.Server.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(s.sessionMiddleware)

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(conf.AppName, s.deps.Logger, s.SignalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", s.home)
	s.app.GET("/health", health)
	s.app.GET("/signin", s.signInPage)
	s.app.POST("/signin", s.signIn)
	s.app.POST("/signout", s.signOut)

	registerDashboards(s.app.Group("/:role", s.roleMiddleware), s)
	return nil
}

// Start listens on the configured address. Failures are reported on Errors().
func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// SignalShutdown asks the main goroutine to stop the server gracefully.
func (s *Server) SignalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	signal.Stop(s.shutdown)
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) sessionTTL() time.Duration {
	if ttl := s.deps.Conf.Server.SessionTTL; ttl > 0 {
		return ttl
	}
	return 8 * time.Hour
}

func health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "OK")
}
