package handlers

import (
	"encoding/json"
	"log"

	"cryptex-console/internal/core/services"
	"cryptex-console/internal/pkg/pagination"
	"cryptex-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// SystemHandler relays system administration to the exchange backend:
// settings, audit log, maintenance mode, backups
type SystemHandler struct {
	adminService *services.AdminService
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(adminService *services.AdminService) *SystemHandler {
	return &SystemHandler{adminService: adminService}
}

// MaintenanceRequest represents maintenance toggle request body
type MaintenanceRequest struct {
	Enabled bool `json:"enabled"`
}

// GetSettings returns system settings
// @Summary Get settings
// @Description Get exchange system settings
// @Tags System
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /system/settings [get]
func (h *SystemHandler) GetSettings(c *fiber.Ctx) error {
	body, apiErr := h.adminService.GetSettings(c.Context(), bearerOf(c))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// UpdateSettings updates system settings
// @Summary Update settings
// @Description Update exchange system settings
// @Tags System
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /system/settings [put]
func (h *SystemHandler) UpdateSettings(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return response.BadRequest(c, "Request body is required")
	}

	body, apiErr := h.adminService.UpdateSettings(c.Context(), bearerOf(c), json.RawMessage(c.Body()))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	log.Println("✅ System settings updated")
	return response.Raw(c, body)
}

// ListAudit returns the audit log
// @Summary Audit log
// @Description List audit log entries with pagination
// @Tags System
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search term"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /system/audit [get]
func (h *SystemHandler) ListAudit(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	query := params.Query(c.Query("search"))
	if actor := c.Query("actor"); actor != "" {
		query.Set("actor", actor)
	}

	body, apiErr := h.adminService.ListAudit(c.Context(), bearerOf(c), query)
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// SetMaintenance toggles maintenance mode
// @Summary Toggle maintenance mode
// @Description Enable or disable exchange maintenance mode
// @Tags System
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body MaintenanceRequest true "Maintenance toggle"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /system/maintenance [put]
func (h *SystemHandler) SetMaintenance(c *fiber.Ctx) error {
	var req MaintenanceRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	body, apiErr := h.adminService.SetMaintenance(c.Context(), bearerOf(c), req.Enabled)
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// TriggerBackup starts a backend backup run
// @Summary Trigger backup
// @Description Ask the exchange backend to start a backup run
// @Tags System
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /system/backups [post]
func (h *SystemHandler) TriggerBackup(c *fiber.Ctx) error {
	body, apiErr := h.adminService.TriggerBackup(c.Context(), bearerOf(c))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}
