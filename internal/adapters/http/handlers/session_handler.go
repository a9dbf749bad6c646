package handlers

import (
	"strconv"
	"strings"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/config"
	"cryptex-console/internal/core/services"
	"cryptex-console/internal/core/session"
	"cryptex-console/internal/pkg/rbac"
	"cryptex-console/internal/pkg/response"
	"cryptex-console/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// SessionHandler owns the console session endpoints. Each request gets
// a fresh session store bound to the request's cookie storage, so the
// browser cookie is the single source of session truth.
type SessionHandler struct {
	authService *services.AuthService
	cfg         *config.Config
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(authService *services.AuthService, cfg *config.Config) *SessionHandler {
	return &SessionHandler{
		authService: authService,
		cfg:         cfg,
	}
}

// LoginRequest represents login request body
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
	Remember   bool   `json:"remember"`
}

// ChangePasswordRequest represents password change request body
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func (h *SessionHandler) store(c *fiber.Ctx) *session.Store {
	return session.NewStore(h.authService, NewCookieStorage(c, h.cfg.Cookie))
}

// statusForBackendError maps a gateway error to the HTTP status this
// console reports. Backend HTTP statuses pass through; transport
// faults surface as bad gateway.
func statusForBackendError(apiErr *backend.Error) int {
	switch apiErr.Code {
	case backend.CodeUnauthenticated, "LOGIN_FAILED":
		return fiber.StatusUnauthorized
	case backend.CodeTimeout:
		return fiber.StatusGatewayTimeout
	case backend.CodeNetworkError, backend.CodeCancelled:
		return fiber.StatusBadGateway
	}
	if strings.HasPrefix(apiErr.Code, "HTTP_") {
		if status, err := strconv.Atoi(strings.TrimPrefix(apiErr.Code, "HTTP_")); err == nil {
			return status
		}
	}
	return fiber.StatusBadGateway
}

func sessionPayload(st session.State) fiber.Map {
	payload := fiber.Map{
		"authenticated": st.IsAuthenticated,
	}
	if st.User != nil {
		payload["user"] = st.User
		payload["permissions"] = rbac.UserPermissions(st.User)
	}
	return payload
}

// Login authenticates against the exchange backend and sets the
// session cookie
// @Summary Login
// @Description Authenticate an admin user and establish a session cookie
// @Tags Session
// @Accept json
// @Produce json
// @Param body body LoginRequest true "Login credentials"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session/login [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	if req.Identifier == "" {
		return response.BadRequest(c, "Identifier is required")
	}
	if req.Password == "" {
		return response.BadRequest(c, "Password is required")
	}

	st := h.store(c).Login(c.Context(), strings.TrimSpace(req.Identifier), req.Password, req.Remember)
	if st.LastError != nil {
		return response.ErrorWithCode(c, statusForBackendError(st.LastError), st.LastError.Code, st.LastError.Message)
	}
	if !st.IsAuthenticated {
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "LOGIN_FAILED", "Login failed")
	}

	return response.Success(c, "Login successful", sessionPayload(st))
}

// Logout drops the session cookie and revokes the backend session
// @Summary Logout
// @Description Clear the session cookie and revoke the backend session
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Router /session/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	h.store(c).Logout(c.Context())
	return response.Success(c, "Logged out successfully", nil)
}

// Me resolves the current session from the cookie
// @Summary Current session
// @Description Resolve the current session state from the session cookie
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session/me [get]
func (h *SessionHandler) Me(c *fiber.Ctx) error {
	storage := NewCookieStorage(c, h.cfg.Cookie)
	st := session.NewStore(h.authService, storage).Initialize(c.Context())
	if !st.IsAuthenticated {
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "UNAUTHENTICATED", "No active session")
	}

	payload := sessionPayload(st)
	if tok, ok := storage.Token(); ok {
		// Lets the page schedule its re-fetch before the token expires.
		payload["refresh_due_in_seconds"] = int(token.RefreshDueIn(tok).Seconds())
	}
	return response.Success(c, "Session resolved", payload)
}

// Refresh re-fetches the current user for an existing session
// @Summary Refresh session user
// @Description Re-fetch the session user from the exchange backend
// @Tags Session
// @Produce json
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session/refresh [post]
func (h *SessionHandler) Refresh(c *fiber.Ctx) error {
	store := h.store(c)
	store.Initialize(c.Context())
	st := store.RefreshUser(c.Context())
	if !st.IsAuthenticated {
		return response.ErrorWithCode(c, fiber.StatusUnauthorized, "SESSION_EXPIRED", "Session expired, please login again")
	}
	return response.Success(c, "Session refreshed", sessionPayload(st))
}

// ChangePassword relays a password change for the logged-in user
// @Summary Change password
// @Description Change the current user's password
// @Tags Session
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ChangePasswordRequest true "Password change data"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /session/change-password [post]
func (h *SessionHandler) ChangePassword(c *fiber.Ctx) error {
	var req ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.OldPassword == "" || req.NewPassword == "" {
		return response.BadRequest(c, "Old and new passwords are required")
	}
	if len(req.NewPassword) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	bearer, _ := c.Locals("accessToken").(string)
	if bearer == "" {
		return response.Unauthorized(c, "Unauthorized")
	}

	if apiErr := h.authService.ChangePassword(c.Context(), bearer, req.OldPassword, req.NewPassword); apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Success(c, "Password changed successfully", nil)
}

// ForgotPassword relays a password reset request
// @Summary Forgot password
// @Description Request a password reset email
// @Tags Session
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Router /session/forgot-password [post]
func (h *SessionHandler) ForgotPassword(c *fiber.Ctx) error {
	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Email == "" {
		return response.BadRequest(c, "Email is required")
	}

	if apiErr := h.authService.ForgotPassword(c.Context(), strings.TrimSpace(req.Email)); apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	// Same answer whether or not the email exists.
	return response.Success(c, "If the email exists, a reset link has been sent", nil)
}

// ResetPassword relays a password reset completion
// @Summary Reset password
// @Description Complete a password reset with the emailed token
// @Tags Session
// @Accept json
// @Produce json
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /session/reset-password [post]
func (h *SessionHandler) ResetPassword(c *fiber.Ctx) error {
	var req struct {
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if req.Token == "" {
		return response.BadRequest(c, "Reset token is required")
	}
	if len(req.NewPassword) < 8 {
		return response.BadRequest(c, "Password must be at least 8 characters")
	}

	if apiErr := h.authService.ResetPassword(c.Context(), req.Token, req.NewPassword); apiErr != nil {
		return response.ErrorWithCode(c, statusForBackendError(apiErr), apiErr.Code, apiErr.Message)
	}
	return response.Success(c, "Password reset successfully", nil)
}
