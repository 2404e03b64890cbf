package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"deck_srv/internal/config"
	"deck_srv/internal/models"
	"deck_srv/internal/service"
	"deck_srv/internal/statusreport"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// HTTPServer is what the application lifecycle needs from the server
type HTTPServer interface {
	Start(address string) error
	Shutdown(ctx context.Context) error
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	service service.DeckService
	builder *statusreport.Builder
	logger  *logrus.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg config.Config, deckService service.DeckService, builder *statusreport.Builder, logger *logrus.Logger) *Server {
	e := echo.New()
	e.Debug = cfg.Server.Debug
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	if cfg.Server.Debug {
		e.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
			Format: "${time_rfc3339} ${id} ${method} ${uri} ${status} ${latency_human} ${error}\n",
		}))
	} else {
		e.Use(middleware.Logger())
	}

	server := &Server{
		echo:    e,
		service: deckService,
		builder: builder,
		logger:  logger,
	}

	server.setupRoutes()
	return server
}

// NewHTTPServer exposes the server through its lifecycle interface
func NewHTTPServer(s *Server) HTTPServer {
	return s
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.WithField("address", address).Info("Starting HTTP server")
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.echo.Shutdown(ctx)
}

// ServeHTTP lets the server be driven without a listener
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

// setupRoutes configures the server routes
func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)

	api := s.echo.Group("/api/v1")
	{
		api.GET("/tools", s.listTools)

		decks := api.Group("/decks")
		{
			decks.POST("", s.createDeck)
			decks.GET("", s.listDecks)
			decks.GET("/:id", s.getDeck)
			decks.DELETE("/:id", s.deleteDeck)
			decks.GET("/:id/download", s.downloadDeck)
			decks.GET("/:id/url", s.deckURL)
		}
	}
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   "deck-service",
	})
}

// listTools returns the tool definitions callers can invoke
func (s *Server) listTools(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"tools": s.builder.Tools(),
	})
}

// createDeck builds a deck synchronously
func (s *Server) createDeck(c echo.Context) error {
	raw, err := io.ReadAll(c.Request().Body)
	if err != nil {
		s.logger.WithError(err).Error("Failed to read request")
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"result": statusreport.Failed(errors.New("invalid request format")),
		})
	}

	req, err := statusreport.DecodeRequest(raw)
	if err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"result": statusreport.Failed(err),
		})
	}

	if req.ProjectName == "" || req.PeriodLabel == "" {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"result": statusreport.Failed(errors.New("project_name and period_label are required")),
		})
	}

	if err := service.ValidateOutputPath(req.OutputPath); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]interface{}{
			"result": statusreport.Failed(err),
		})
	}

	deck, res := s.service.Generate(c.Request().Context(), req)
	if !res.Success {
		s.logger.WithField("error", res.Error).Error("Failed to create deck")
		return c.JSON(http.StatusInternalServerError, map[string]interface{}{
			"deck":   deck,
			"result": res,
		})
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"deck":   deck,
		"result": res,
	})
}

// listDecks handles listing decks
func (s *Server) listDecks(c echo.Context) error {
	params := service.ListDeckParams{
		Search: c.QueryParam("search"),
	}
	params.Page, _ = strconv.Atoi(c.QueryParam("page"))
	params.PageSize, _ = strconv.Atoi(c.QueryParam("page_size"))

	if raw := c.QueryParam("status"); raw != "" {
		status := models.DeckStatus(raw)
		if !status.Valid() {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"error": fmt.Sprintf("Invalid status %q", raw),
			})
		}
		params.Status = &status
	}

	decks, err := s.service.ListDecks(c.Request().Context(), params)
	if err != nil {
		s.logger.WithError(err).Error("Failed to list decks")
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": "Failed to list decks",
		})
	}

	return c.JSON(http.StatusOK, decks)
}

// getDeck handles getting a single deck
func (s *Server) getDeck(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	deck, err := s.service.GetDeck(c.Request().Context(), id)
	if err != nil {
		return s.errorResponse(c, err, "Failed to get deck")
	}

	return c.JSON(http.StatusOK, deck)
}

// deleteDeck handles deck deletion
func (s *Server) deleteDeck(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := s.service.DeleteDeck(c.Request().Context(), id); err != nil {
		return s.errorResponse(c, err, "Failed to delete deck")
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Deck deleted successfully",
	})
}

// downloadDeck streams the deck or its companion workbook
func (s *Server) downloadDeck(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	workbook, err := parseFormat(c)
	if err != nil {
		return err
	}

	reader, file, err := s.service.GetDeckFile(c.Request().Context(), id, workbook)
	if err != nil {
		return s.errorResponse(c, err, "Failed to download deck")
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", file.Name))
	if file.Size > 0 {
		c.Response().Header().Set(echo.HeaderContentLength, strconv.FormatInt(file.Size, 10))
	}
	return c.Stream(http.StatusOK, file.ContentType, reader)
}

// deckURL returns a time-limited link to the stored file
func (s *Server) deckURL(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	workbook, err := parseFormat(c)
	if err != nil {
		return err
	}

	link, err := s.service.GetDeckURL(c.Request().Context(), id, workbook)
	if err != nil {
		return s.errorResponse(c, err, "Failed to create download link")
	}

	return c.JSON(http.StatusOK, link)
}

// parseFormat reports whether the workbook rather than the deck is requested
func parseFormat(c echo.Context) (bool, error) {
	switch format := c.QueryParam("format"); format {
	case "", "pptx":
		return false, nil
	case "xlsx":
		return true, nil
	default:
		return false, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("Unsupported format %q", format))
	}
}

func parseID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid deck ID")
	}
	return uint(id), nil
}

// errorResponse maps service errors onto HTTP statuses
func (s *Server) errorResponse(c echo.Context, err error, msg string) error {
	switch {
	case errors.Is(err, service.ErrDeckNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{
			"error": "Deck not found",
		})
	case errors.Is(err, service.ErrDeckNotReady):
		return c.JSON(http.StatusConflict, map[string]string{
			"error": "Deck file is not available",
		})
	default:
		s.logger.WithError(err).Error(msg)
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"error": msg,
		})
	}
}
