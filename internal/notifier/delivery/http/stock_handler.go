package http

import (
	"net/http"

	"tickrflow/internal/notifier/dto"
	"tickrflow/internal/notifier/repository"
	"tickrflow/pkg/logger"

	"github.com/labstack/echo/v4"
)

// StockHandler exposes stock search and profile lookups for the web app.
type StockHandler struct {
	newsRepo repository.NewsRepository
	logger   *logger.Logger
}

// NewStockHandler creates a new StockHandler.
func NewStockHandler(newsRepo repository.NewsRepository, logger *logger.Logger) *StockHandler {
	return &StockHandler{newsRepo: newsRepo, logger: logger}
}

// RegisterRoutes registers the stock routes to the Echo group.
func (h *StockHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/stocks/:symbol/profile", h.Profile)
}

// Search looks up stocks matching the q query parameter.
func (h *StockHandler) Search(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "q is required"})
	}

	result, err := h.newsRepo.SearchStocks(c.Request().Context(), query)
	if err != nil {
		h.logger.Error("Stock search failed", logger.ErrorField(err), logger.StringField("q", query))
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, result)
}

// Profile returns the company profile for one symbol.
func (h *StockHandler) Profile(c echo.Context) error {
	symbol := c.Param("symbol")

	profile, err := h.newsRepo.CompanyProfile(c.Request().Context(), symbol)
	if err != nil {
		h.logger.Error("Company profile lookup failed", logger.ErrorField(err), logger.StringField("symbol", symbol))
		return c.JSON(http.StatusBadGateway, dto.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(http.StatusOK, profile)
}
