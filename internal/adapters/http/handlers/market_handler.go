package handlers

import (
	"cryptex-console/internal/core/services"
	"cryptex-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// MarketHandler serves market data from the snapshot cache and relays
// per-symbol queries
type MarketHandler struct {
	marketService *services.MarketService
}

// NewMarketHandler creates a new market handler
func NewMarketHandler(marketService *services.MarketService) *MarketHandler {
	return &MarketHandler{marketService: marketService}
}

// Symbols returns the cached symbol listing
// @Summary List symbols
// @Description List trading pairs from the market snapshot cache
// @Tags Market
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /markets/symbols [get]
func (h *MarketHandler) Symbols(c *fiber.Ctx) error {
	body, apiErr := h.marketService.Symbols(c.Context())
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Tickers returns the cached 24h tickers
// @Summary List tickers
// @Description List 24h tickers from the market snapshot cache
// @Tags Market
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 502 {object} response.Response
// @Router /markets/tickers [get]
func (h *MarketHandler) Tickers(c *fiber.Ctx) error {
	body, apiErr := h.marketService.Tickers(c.Context())
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// OrderBook returns the order book for one symbol
// @Summary Order book
// @Description Get the current order book for a trading pair
// @Tags Market
// @Produce json
// @Security BearerAuth
// @Param symbol query string true "Trading pair"
// @Param depth query int false "Book depth"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /markets/orderbook [get]
func (h *MarketHandler) OrderBook(c *fiber.Ctx) error {
	symbol := c.Query("symbol")
	if symbol == "" {
		return response.BadRequest(c, "Symbol is required")
	}

	body, apiErr := h.marketService.OrderBook(c.Context(), symbol, c.Query("depth"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Trades returns recent trades for one symbol
// @Summary Recent trades
// @Description Get recent trades for a trading pair
// @Tags Market
// @Produce json
// @Security BearerAuth
// @Param symbol query string true "Trading pair"
// @Param limit query int false "Max trades"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /markets/trades [get]
func (h *MarketHandler) Trades(c *fiber.Ctx) error {
	symbol := c.Query("symbol")
	if symbol == "" {
		return response.BadRequest(c, "Symbol is required")
	}

	body, apiErr := h.marketService.Trades(c.Context(), symbol, c.Query("limit"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Candles returns candlestick data for one symbol
// @Summary Candles
// @Description Get candlestick data for a trading pair
// @Tags Market
// @Produce json
// @Security BearerAuth
// @Param symbol query string true "Trading pair"
// @Param interval query string false "Candle interval"
// @Param limit query int false "Max candles"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /markets/candles [get]
func (h *MarketHandler) Candles(c *fiber.Ctx) error {
	symbol := c.Query("symbol")
	if symbol == "" {
		return response.BadRequest(c, "Symbol is required")
	}
	interval := c.Query("interval", "1m")

	body, apiErr := h.marketService.Candles(c.Context(), symbol, interval, c.Query("limit"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}
