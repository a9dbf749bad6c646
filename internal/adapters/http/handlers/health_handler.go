package handlers

import (
	"time"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/core/services"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler reports console liveness and backend reachability
type HealthHandler struct {
	gw        *backend.Client
	market    *services.MarketService
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gw *backend.Client, market *services.MarketService) *HealthHandler {
	return &HealthHandler{
		gw:        gw,
		market:    market,
		startedAt: time.Now(),
	}
}

// Check returns console health and backend reachability
// @Summary Health check
// @Description Report console status and exchange backend reachability
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /healthz [get]
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	backendStatus := "ok"
	res := h.gw.Do(c.Context(), backend.Request{
		Method:     "GET",
		Path:       "/api/v1/health",
		Timeout:    2 * time.Second,
		Idempotent: true,
	})
	if !res.OK() {
		backendStatus = "unreachable"
	}

	payload := fiber.Map{
		"status":  "ok",
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
		"backend": backendStatus,
	}
	if refreshedAt := h.market.RefreshedAt(); !refreshedAt.IsZero() {
		payload["market_snapshot_at"] = refreshedAt.UTC().Format(time.RFC3339)
	}

	return c.JSON(payload)
}
