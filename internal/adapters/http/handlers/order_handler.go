package handlers

import (
	"cryptex-console/internal/core/services"
	"cryptex-console/internal/pkg/pagination"
	"cryptex-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// OrderHandler relays order oversight queries to the exchange backend
type OrderHandler struct {
	orderService *services.OrderService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// List returns a paginated order listing
// @Summary List orders
// @Description List exchange orders with pagination and filters
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param symbol query string false "Filter by trading pair"
// @Param status query string false "Filter by order status"
// @Param user_id query string false "Filter by owning user"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	query := params.Query(c.Query("search"))
	for _, key := range []string{"symbol", "status", "user_id"} {
		if v := c.Query(key); v != "" {
			query.Set(key, v)
		}
	}

	body, apiErr := h.orderService.List(c.Context(), bearerOf(c), query)
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Get returns one order
// @Summary Get order
// @Description Get a single order by ID
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /orders/{id} [get]
func (h *OrderHandler) Get(c *fiber.Ctx) error {
	body, apiErr := h.orderService.Get(c.Context(), bearerOf(c), c.Params("id"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Cancel force-cancels an open order
// @Summary Cancel order
// @Description Force-cancel an open order on the exchange
// @Tags Orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /orders/{id}/cancel [post]
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	body, apiErr := h.orderService.Cancel(c.Context(), bearerOf(c), c.Params("id"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}
