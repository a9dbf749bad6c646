// Package testutil provides a mock exchange backend for handler and
// integration tests: seeded credentials, HS256 access tokens, and the
// backend wire envelope.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/pkg/password"
)

// SigningKey signs mock backend tokens. The console never verifies
// signatures, so the value only matters inside the mock.
const SigningKey = "testutil-signing-key"

// Account is one seeded credential in the mock backend.
type Account struct {
	User         domain.User
	PasswordHash string
}

// Backend is a fake exchange backend: enough surface for the console's
// auth, user, order, market, and system relays to exercise end to end.
type Backend struct {
	srv      *httptest.Server
	accounts map[string]*Account

	TokenTTL time.Duration

	// LoginCalls and LogoutCalls count auth endpoint hits.
	LoginCalls  atomic.Int64
	LogoutCalls atomic.Int64
}

// NewBackend starts a mock backend seeded with one account per console
// role plus a disabled account.
func NewBackend() *Backend {
	b := &Backend{
		accounts: map[string]*Account{},
		TokenTTL: time.Hour,
	}

	seed := []struct {
		email    string
		name     string
		roles    []string
		active   bool
		password string
	}{
		{"root@cryptex.test", "Root", []string{"super-admin"}, true, "root-pass-1"},
		{"admin@cryptex.test", "Admin", []string{"admin"}, true, "admin-pass-1"},
		{"ops@cryptex.test", "Operator", []string{"operator"}, true, "ops-pass-1"},
		{"audit@cryptex.test", "Auditor", []string{"auditor"}, true, "audit-pass-1"},
		{"view@cryptex.test", "Viewer", []string{"viewer"}, true, "view-pass-1"},
		{"gone@cryptex.test", "Disabled", []string{"admin"}, false, "gone-pass-1"},
	}
	for i, s := range seed {
		hash, err := password.Hash(s.password)
		if err != nil {
			panic(err)
		}
		b.accounts[s.email] = &Account{
			User: domain.User{
				ID:       "u-" + s.roles[0] + "-" + strconv.Itoa(i+1),
				Email:    s.email,
				Name:     s.name,
				Roles:    s.roles,
				IsActive: s.active,
			},
			PasswordHash: hash,
		}
	}

	b.srv = httptest.NewServer(http.HandlerFunc(b.route))
	return b
}

// URL returns the mock backend origin.
func (b *Backend) URL() string {
	return b.srv.URL
}

// Close shuts the mock backend down.
func (b *Backend) Close() {
	b.srv.Close()
}

// MintToken issues an HS256 access token for a seeded account.
func (b *Backend) MintToken(email string, ttl time.Duration) string {
	acct := b.accounts[email]
	if acct == nil {
		panic("testutil: no seeded account for " + email)
	}
	now := time.Now()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   acct.User.ID,
		"email": acct.User.Email,
		"name":  acct.User.Name,
		"roles": acct.User.Roles,
		"iat":   now.Unix(),
		"exp":   now.Add(ttl).Unix(),
	})
	signed, err := tok.SignedString([]byte(SigningKey))
	if err != nil {
		panic(err)
	}
	return signed
}

func (b *Backend) route(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/api/v1/auth/login" && r.Method == http.MethodPost:
		b.handleLogin(w, r)
	case r.URL.Path == "/api/v1/auth/logout" && r.Method == http.MethodPost:
		b.LogoutCalls.Add(1)
		writeSuccess(w, map[string]bool{"revoked": true})
	case r.URL.Path == "/api/v1/auth/me" && r.Method == http.MethodGet:
		b.handleMe(w, r)
	case r.URL.Path == "/api/v1/health":
		writeSuccess(w, map[string]string{"status": "ok"})
	case strings.HasPrefix(r.URL.Path, "/api/v1/users"):
		b.handleAuthed(w, r, func() {
			writeSuccess(w, map[string]interface{}{
				"items": b.userList(),
				"total": len(b.accounts),
			})
		})
	case strings.HasPrefix(r.URL.Path, "/api/v1/orders"):
		b.handleAuthed(w, r, func() {
			if strings.HasSuffix(r.URL.Path, "/cancel") {
				writeSuccess(w, map[string]string{"status": "cancelled"})
				return
			}
			writeSuccess(w, map[string]interface{}{"items": []domain.Order{
				{ID: "ord-1", Symbol: "BTC-USDT", Side: "buy", Type: "limit", Status: "open", Price: "64000", Quantity: "0.5", CreatedAt: time.Now()},
			}})
		})
	case r.URL.Path == "/api/v1/market/symbols":
		writeSuccess(w, []domain.Symbol{
			{Symbol: "BTC-USDT", BaseAsset: "BTC", QuoteAsset: "USDT", Status: "trading"},
			{Symbol: "ETH-USDT", BaseAsset: "ETH", QuoteAsset: "USDT", Status: "trading"},
		})
	case r.URL.Path == "/api/v1/market/tickers":
		writeSuccess(w, []domain.Ticker{
			{Symbol: "BTC-USDT", LastPrice: "64250.10", Change24h: "1.8", High24h: "65100", Low24h: "62900", Volume24h: "3120.4"},
		})
	case strings.HasPrefix(r.URL.Path, "/api/v1/market/"):
		writeSuccess(w, []map[string]string{{"symbol": "BTC-USDT"}})
	case strings.HasPrefix(r.URL.Path, "/api/v1/system/"):
		b.handleAuthed(w, r, func() {
			writeSuccess(w, map[string]bool{"ok": true})
		})
	default:
		writeError(w, http.StatusNotFound, "NOT_FOUND", "no such endpoint")
	}
}

func (b *Backend) handleLogin(w http.ResponseWriter, r *http.Request) {
	b.LoginCalls.Add(1)

	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid body")
		return
	}

	acct := b.accounts[req.Identifier]
	if acct == nil || !password.Verify(req.Password, acct.PasswordHash) {
		writeError(w, http.StatusUnauthorized, "LOGIN_FAILED", "invalid credentials")
		return
	}
	if !acct.User.IsActive {
		writeError(w, http.StatusForbidden, "ACCOUNT_DISABLED", "account is disabled")
		return
	}

	writeSuccess(w, map[string]interface{}{
		"user":         acct.User,
		"access_token": b.MintToken(acct.User.Email, b.TokenTTL),
		"expires_in":   int(b.TokenTTL.Seconds()),
	})
}

func (b *Backend) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := b.authenticate(r)
	if acct == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or missing token")
		return
	}
	writeSuccess(w, map[string]interface{}{"user": acct.User})
}

func (b *Backend) handleAuthed(w http.ResponseWriter, r *http.Request, serve func()) {
	if b.authenticate(r) == nil {
		writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "invalid or missing token")
		return
	}
	serve()
}

// authenticate verifies the bearer token signature and maps it back to
// a seeded account.
func (b *Backend) authenticate(r *http.Request) *Account {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return nil
	}
	raw := strings.TrimPrefix(header, "Bearer ")

	claims := jwt.MapClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(SigningKey), nil
	})
	if err != nil || !tok.Valid {
		return nil
	}

	email, _ := claims["email"].(string)
	acct := b.accounts[email]
	if acct == nil || !acct.User.IsActive {
		return nil
	}
	return acct
}

func (b *Backend) userList() []domain.User {
	users := make([]domain.User, 0, len(b.accounts))
	for _, acct := range b.accounts {
		users = append(users, acct.User)
	}
	return users
}

func writeSuccess(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "success",
		"body":   body,
	})
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "error",
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
	})
}
