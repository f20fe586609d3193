// Package ops exposes the worker's operational HTTP surface: health,
// cache inspection, and manual invalidation. Graph analysis itself stays in
// pkg/graph; these handlers only touch the store.
package ops

import (
	"context"
	"net/http"
	"time"

	"github.com/carta-graph/carta/pkg/graph/store"
	"github.com/carta-graph/carta/pkg/logger"

	"github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i any) error {
	if err := cv.validator.Struct(i); err != nil {
		return err
	}
	return nil
}

type Server struct {
	echo  *echo.Echo
	store *store.Store
	port  string
}

type NewServerParams struct {
	Store *store.Store
	Port  string
}

func NewServer(params NewServerParams) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = &CustomValidator{validator: validator.New()}
	e.Use(middleware.Recover())

	s := &Server{
		echo:  e,
		store: params.Store,
		port:  params.Port,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	e.GET("/projects", s.getProjectsHandler)
	e.POST("/invalidate", s.invalidateHandler)

	return s
}

func (s *Server) getProjectsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, s.store.Projects())
}

type invalidateRequest struct {
	ProjectID string `json:"project_id" validate:"required"`
}

type invalidateResponse struct {
	Message   string `json:"message"`
	ProjectID string `json:"project_id,omitempty"`
}

func (s *Server) invalidateHandler(c echo.Context) error {
	var req invalidateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidateResponse{Message: "Invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, invalidateResponse{Message: "project_id is required"})
	}

	s.store.Invalidate(req.ProjectID)
	return c.JSON(http.StatusOK, invalidateResponse{
		Message:   "Cache invalidated",
		ProjectID: req.ProjectID,
	})
}

// Start serves until ctx is canceled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) {
	go func() {
		logger.Info("[Ops] Starting server", "port", s.port)
		if err := s.echo.Start(":" + s.port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("[Ops] Failed shutting down server", "err", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("[Ops] Failed to shutdown server", "err", err)
	}
}

// Handler exposes the routing tree for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}
