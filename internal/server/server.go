// Package server is the web front end: it renders the catalog pages as HTML
// and keeps each visitor's add-movie view in a session. All catalog data
// comes from the gateway; the server itself holds only sessions and staged
// uploads.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharsanguruparan/cinebook/internal/catalog"
	"github.com/dharsanguruparan/cinebook/internal/config"
	"github.com/dharsanguruparan/cinebook/internal/processing"
	"github.com/dharsanguruparan/cinebook/internal/signing"
	"github.com/dharsanguruparan/cinebook/internal/storage"
	"github.com/dharsanguruparan/cinebook/internal/view"
)

// Server hosts the HTTP handlers.
type Server struct {
	cfg       *config.Config
	gateway   catalog.Gateway
	processor *processing.Processor
	blobs     storage.BlobStore
	sessions  *storage.SessionStore[*view.CreateView]
	signer    *signing.Signer
	logger    *slog.Logger
	echo      *echo.Echo
	once      sync.Once
}

// New creates a configured server. Sessions expire after cfg.SessionTTL of
// inactivity; their staged media are discarded when they do.
func New(cfg *config.Config, gateway catalog.Gateway, processor *processing.Processor,
	blobs storage.BlobStore, signer *signing.Signer, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}
	s := &Server{
		cfg:       cfg,
		gateway:   gateway,
		processor: processor,
		blobs:     blobs,
		signer:    signer,
		logger:    logger,
		sessions: storage.NewSessionStore[*view.CreateView](cfg.SessionTTL,
			storage.WithRelease(func(v *view.CreateView) { v.Reset() })),
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []slog.Attr{
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
			}
			level := slog.LevelInfo
			if v.Error != nil {
				level = slog.LevelWarn
				attrs = append(attrs, slog.String("error", v.Error.Error()))
			}
			logger.LogAttrs(c.Request().Context(), level, "request", attrs...)
			return nil
		},
	}))
	s.echo = e
	s.routes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.echo }

// Serve launches the HTTP server until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.once.Do(func() {
		s.processor.Start(ctx)
		go s.sweep(ctx)
	})
	httpServer := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.echo,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()
	s.logger.Info("cinebook listening",
		slog.String("addr", s.cfg.Address),
		slog.String("api", s.cfg.APIURL))
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// sweep drops expired sessions until ctx is done.
func (s *Server) sweep(ctx context.Context) {
	interval := s.cfg.SessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.Sweep(); n > 0 {
				s.logger.Debug("expired sessions swept", slog.Int("count", n))
			}
		}
	}
}

func (s *Server) routes() {
	e := s.echo
	e.GET("/healthz", s.handleHealth)

	e.GET("/", s.handleList)
	e.GET("/movies", s.handleList)
	e.GET("/movies/:id", s.handleDetail)
	e.POST("/movies/:id/delete", s.handleDelete)

	e.GET("/add-movie", s.handleAddForm)
	e.POST("/add-movie", s.handleSubmit)
	e.GET("/add-movie/media/:entry", s.handleMedia)
	e.POST("/add-movie/posters", s.handleStage)
	e.POST("/add-movie/posters/:entry/remove", s.handleRemovePoster)
	e.POST("/add-movie/trailer", s.handleStage)
	e.POST("/add-movie/trailer/remove", s.handleRemoveTrailer)
	e.POST("/add-movie/reset", s.handleReset)

	// Paths of the original single-page app.
	e.GET("/properties/:id", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/movies/"+c.Param("id"))
	})
	e.GET("/add-property", func(c echo.Context) error {
		return c.Redirect(http.StatusMovedPermanently, "/add-movie")
	})
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// handleError renders echo's own errors (unknown routes, oversized bodies,
// recovered panics) as an HTML page.
func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	status := http.StatusInternalServerError
	message := "Something went wrong."
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch status {
		case http.StatusNotFound:
			message = "Page not found."
		case http.StatusRequestEntityTooLarge:
			message = "The upload is too large."
		default:
			message = http.StatusText(status)
		}
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
	}
	if rerr := c.Render(status, "error", errorPage{page: page{Title: "Error"}, Message: message}); rerr != nil {
		_ = c.String(status, message)
	}
}
