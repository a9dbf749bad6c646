package handlers

import (
	"encoding/json"

	"cryptex-console/internal/core/services"
	"cryptex-console/internal/pkg/pagination"
	"cryptex-console/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
)

// UserHandler relays admin-user management to the exchange backend
type UserHandler struct {
	adminService *services.AdminService
}

// NewUserHandler creates a new user handler
func NewUserHandler(adminService *services.AdminService) *UserHandler {
	return &UserHandler{adminService: adminService}
}

func bearerOf(c *fiber.Ctx) string {
	bearer, _ := c.Locals("accessToken").(string)
	return bearer
}

// List returns a paginated user listing
// @Summary List users
// @Description List admin users with pagination and search
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number"
// @Param limit query int false "Items per page"
// @Param search query string false "Search term"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) List(c *fiber.Ctx) error {
	params := pagination.GetParams(c)
	query := params.Query(c.Query("search"))

	body, apiErr := h.adminService.ListUsers(c.Context(), bearerOf(c), query)
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Get returns one user
// @Summary Get user
// @Description Get a single admin user by ID
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [get]
func (h *UserHandler) Get(c *fiber.Ctx) error {
	body, apiErr := h.adminService.GetUser(c.Context(), bearerOf(c), c.Params("id"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Create creates a user
// @Summary Create user
// @Description Create a new admin user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Success 201 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users [post]
func (h *UserHandler) Create(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return response.BadRequest(c, "Request body is required")
	}

	body, apiErr := h.adminService.CreateUser(c.Context(), bearerOf(c), json.RawMessage(c.Body()))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	c.Status(fiber.StatusCreated)
	return response.Raw(c, body)
}

// Update updates a user
// @Summary Update user
// @Description Update an admin user
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /users/{id} [put]
func (h *UserHandler) Update(c *fiber.Ctx) error {
	if len(c.Body()) == 0 {
		return response.BadRequest(c, "Request body is required")
	}

	body, apiErr := h.adminService.UpdateUser(c.Context(), bearerOf(c), c.Params("id"), json.RawMessage(c.Body()))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}

// Delete deletes a user
// @Summary Delete user
// @Description Delete an admin user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /users/{id} [delete]
func (h *UserHandler) Delete(c *fiber.Ctx) error {
	body, apiErr := h.adminService.DeleteUser(c.Context(), bearerOf(c), c.Params("id"))
	if apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Raw(c, body)
}
