package services

import (
	"context"
	"encoding/json"
	"log"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/core/session"
)

// AuthService forwards credential operations to the exchange backend.
// The console never verifies or stores credentials itself.
type AuthService struct {
	gw *backend.Client
}

// NewAuthService creates a new auth service
func NewAuthService(gw *backend.Client) *AuthService {
	return &AuthService{gw: gw}
}

// Login authenticates against the backend and returns the issued
// token pair plus the user, or the backend's structured error.
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*session.AuthResult, *backend.Error) {
	res := s.gw.Post(ctx, "/api/v1/auth/login", map[string]string{
		"identifier": identifier,
		"password":   password,
	})
	if !res.OK() {
		return nil, res.Err
	}

	var result session.AuthResult
	if err := json.Unmarshal(res.Body, &result); err != nil {
		return nil, &backend.Error{Code: "DECODE_ERROR", Message: "unreadable login response"}
	}

	log.Printf("✅ User logged in: %s", identifier)
	return &result, nil
}

// Logout notifies the backend that the session is over. Callers treat
// this as best-effort; local state is cleared regardless.
func (s *AuthService) Logout(ctx context.Context, bearer string) *backend.Error {
	res := s.gw.Do(ctx, backend.Request{
		Method: "POST",
		Path:   "/api/v1/auth/logout",
		Bearer: bearer,
	})
	if !res.OK() {
		return res.Err
	}
	return nil
}

// CurrentUser fetches the authenticated user behind the token.
func (s *AuthService) CurrentUser(ctx context.Context, bearer string) (*domain.User, *backend.Error) {
	res := s.gw.Do(ctx, backend.Request{
		Method:     "GET",
		Path:       "/api/v1/auth/me",
		Bearer:     bearer,
		Retries:    -1,
		Idempotent: true,
	})
	if !res.OK() {
		return nil, res.Err
	}

	var payload struct {
		User *domain.User `json:"user"`
	}
	if err := json.Unmarshal(res.Body, &payload); err != nil || payload.User == nil {
		return nil, &backend.Error{Code: "DECODE_ERROR", Message: "unreadable user response"}
	}
	return payload.User, nil
}

// ChangePassword forwards a password change for the current user.
func (s *AuthService) ChangePassword(ctx context.Context, bearer, oldPassword, newPassword string) *backend.Error {
	res := s.gw.Do(ctx, backend.Request{
		Method: "POST",
		Path:   "/api/v1/auth/change-password",
		Bearer: bearer,
		Body: map[string]string{
			"old_password": oldPassword,
			"new_password": newPassword,
		},
	})
	if !res.OK() {
		return res.Err
	}
	return nil
}

// ForgotPassword asks the backend to start a password reset flow.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) *backend.Error {
	res := s.gw.Post(ctx, "/api/v1/auth/forgot-password", map[string]string{"email": email})
	if !res.OK() {
		return res.Err
	}
	return nil
}

// ResetPassword completes a password reset with the emailed token.
func (s *AuthService) ResetPassword(ctx context.Context, resetToken, newPassword string) *backend.Error {
	res := s.gw.Post(ctx, "/api/v1/auth/reset-password", map[string]string{
		"token":        resetToken,
		"new_password": newPassword,
	})
	if !res.OK() {
		return res.Err
	}
	return nil
}
