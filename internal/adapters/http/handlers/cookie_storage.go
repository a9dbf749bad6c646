package handlers

import (
	"time"

	"cryptex-console/internal/config"
	"cryptex-console/internal/core/session"
	"cryptex-console/internal/pkg/token"

	"github.com/gofiber/fiber/v2"
)

// CookieStorage keeps the access token in an HttpOnly cookie on the
// browser, scoped to one request. Remember selects a persistent cookie
// bounded by the token's own lifetime; otherwise the cookie dies with
// the browser session. Clear always overwrites with an expired cookie
// so stale logins cannot linger.
type CookieStorage struct {
	c   *fiber.Ctx
	cfg config.CookieConfig
}

var _ session.Storage = (*CookieStorage)(nil)

// NewCookieStorage creates a cookie storage bound to one request
func NewCookieStorage(c *fiber.Ctx, cfg config.CookieConfig) *CookieStorage {
	return &CookieStorage{c: c, cfg: cfg}
}

// Token reads the session cookie from the incoming request.
func (s *CookieStorage) Token() (string, bool) {
	tok := s.c.Cookies(s.cfg.Name)
	return tok, tok != ""
}

// Store writes the session cookie on the outgoing response.
func (s *CookieStorage) Store(tok string, remember bool) {
	cookie := &fiber.Cookie{
		Name:     s.cfg.Name,
		Value:    tok,
		Path:     "/",
		Secure:   s.cfg.Secure,
		HTTPOnly: true,
		SameSite: s.cfg.SameSite,
		Domain:   s.cfg.Domain,
	}
	if remember {
		// Persistent cookie, but never outliving the token itself.
		cookie.MaxAge = int(token.RemainingSeconds(tok))
	}
	s.c.Cookie(cookie)
}

// Clear expires the session cookie.
func (s *CookieStorage) Clear() {
	s.c.Cookie(&fiber.Cookie{
		Name:     s.cfg.Name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-1 * time.Hour),
		Secure:   s.cfg.Secure,
		HTTPOnly: true,
		SameSite: s.cfg.SameSite,
		Domain:   s.cfg.Domain,
	})
}
