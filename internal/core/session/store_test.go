package session

import (
	"context"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/pkg/token"
)

type mockAPI struct {
	mu           sync.Mutex
	loginResult  *AuthResult
	loginErr     *backend.Error
	loginDelay   time.Duration
	loginCalls   int
	logoutCalls  int
	currentUser  *domain.User
	currentErr   *backend.Error
	currentCalls int
}

func (m *mockAPI) Login(ctx context.Context, identifier, password string) (*AuthResult, *backend.Error) {
	m.mu.Lock()
	m.loginCalls++
	delay := m.loginDelay
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(delay):
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loginResult, m.loginErr
}

func (m *mockAPI) Logout(ctx context.Context, bearer string) *backend.Error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logoutCalls++
	return nil
}

func (m *mockAPI) CurrentUser(ctx context.Context, bearer string) (*domain.User, *backend.Error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentCalls++
	return m.currentUser, m.currentErr
}

func mintToken(t *testing.T, expiresIn time.Duration) string {
	t.Helper()
	claims := token.Claims{
		Email: "admin@example.com",
		Name:  "Admin",
		Roles: []string{"admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "u-1",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func adminUser() *domain.User {
	return &domain.User{ID: "u-1", Email: "admin@example.com", Name: "Admin", Roles: []string{"admin"}, IsActive: true}
}

func TestInitializeWithoutToken(t *testing.T) {
	store := NewStore(&mockAPI{}, NewMemoryStorage())

	st := store.Initialize(context.Background())

	if st.IsAuthenticated {
		t.Error("authenticated without a token")
	}
	if !st.Initialized || st.IsLoading {
		t.Errorf("initialized=%v loading=%v, want true/false", st.Initialized, st.IsLoading)
	}
}

func TestInitializeIdempotent(t *testing.T) {
	api := &mockAPI{currentUser: adminUser()}
	storage := NewMemoryStorage()
	storage.Store(mintToken(t, time.Hour), false)
	store := NewStore(api, storage)

	store.Initialize(context.Background())
	store.Initialize(context.Background())

	if api.currentCalls != 1 {
		t.Errorf("CurrentUser called %d times, want 1", api.currentCalls)
	}
}

func TestInitializeExpiredToken(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Store(mintToken(t, -time.Minute), true)
	store := NewStore(&mockAPI{}, storage)

	st := store.Initialize(context.Background())

	if st.IsAuthenticated {
		t.Error("expired token must not authenticate")
	}
	if !st.Initialized {
		t.Error("must end initialized")
	}
}

func TestInitializeFallsBackToTokenIdentity(t *testing.T) {
	api := &mockAPI{currentErr: &backend.Error{Code: backend.CodeNetworkError, Message: "down"}}
	storage := NewMemoryStorage()
	storage.Store(mintToken(t, time.Hour), false)
	store := NewStore(api, storage)

	st := store.Initialize(context.Background())

	if !st.IsAuthenticated {
		t.Fatal("expected fallback authentication from token payload")
	}
	if st.User == nil || st.User.ID != "u-1" || st.User.Email != "admin@example.com" {
		t.Errorf("user = %+v", st.User)
	}
}

func TestLoginSuccessSessionOnlyStorage(t *testing.T) {
	tok := mintToken(t, time.Hour)
	api := &mockAPI{loginResult: &AuthResult{User: adminUser(), AccessToken: tok}}
	storage := NewMemoryStorage()
	store := NewStore(api, storage)

	st := store.Login(context.Background(), "admin@example.com", "admin123", false)

	if !st.IsAuthenticated {
		t.Fatalf("login failed: %+v", st.LastError)
	}
	if storage.SessionToken() != tok {
		t.Error("token missing from session-only slot")
	}
	if storage.PersistentToken() != "" {
		t.Error("token must be absent from persistent slot when remember=false")
	}
}

func TestLoginRememberUsesPersistentStorage(t *testing.T) {
	tok := mintToken(t, time.Hour)
	api := &mockAPI{loginResult: &AuthResult{User: adminUser(), AccessToken: tok}}
	storage := NewMemoryStorage()
	store := NewStore(api, storage)

	store.Login(context.Background(), "admin@example.com", "admin123", true)

	if storage.PersistentToken() != tok {
		t.Error("token missing from persistent slot")
	}
	if storage.SessionToken() != "" {
		t.Error("session slot must be empty when remember=true")
	}
}

func TestLoginFailureIsStructuredNotThrown(t *testing.T) {
	api := &mockAPI{loginErr: &backend.Error{Code: "LOGIN_FAILED", Message: "Invalid credentials"}}
	store := NewStore(api, NewMemoryStorage())

	st := store.Login(context.Background(), "x@example.com", "wrong", false)

	if st.IsAuthenticated {
		t.Error("failed login must not authenticate")
	}
	if st.LastError == nil || st.LastError.Code != "LOGIN_FAILED" {
		t.Errorf("LastError = %+v, want LOGIN_FAILED", st.LastError)
	}
}

func TestLoginThenLogoutMatchesFreshInitialize(t *testing.T) {
	tok := mintToken(t, time.Hour)
	api := &mockAPI{loginResult: &AuthResult{User: adminUser(), AccessToken: tok}}
	storage := NewMemoryStorage()
	store := NewStore(api, storage)

	store.Login(context.Background(), "admin@example.com", "admin123", false)
	after := store.Logout(context.Background())

	fresh := NewStore(&mockAPI{}, NewMemoryStorage()).Initialize(context.Background())

	if !reflect.DeepEqual(after, fresh) {
		t.Errorf("state after login+logout = %+v, fresh initialize = %+v", after, fresh)
	}
	if _, ok := storage.Token(); ok {
		t.Error("token survived logout")
	}
	if api.logoutCalls != 1 {
		t.Errorf("backend logout called %d times, want 1", api.logoutCalls)
	}
}

func TestConcurrentLoginSecondIsNoOp(t *testing.T) {
	tok := mintToken(t, time.Hour)
	api := &mockAPI{
		loginResult: &AuthResult{User: adminUser(), AccessToken: tok},
		loginDelay:  50 * time.Millisecond,
	}
	store := NewStore(api, NewMemoryStorage())

	var wg sync.WaitGroup
	wg.Add(2)
	for i := 0; i < 2; i++ {
		go func() {
			defer wg.Done()
			store.Login(context.Background(), "admin@example.com", "admin123", false)
		}()
	}
	wg.Wait()

	api.mu.Lock()
	calls := api.loginCalls
	api.mu.Unlock()
	if calls != 1 {
		t.Errorf("backend login called %d times, want 1 (second call is a no-op)", calls)
	}
	if st := store.Snapshot(); !st.IsAuthenticated {
		t.Error("the surviving login must authenticate")
	}
}

func TestCancelledLoginDiscardsResponse(t *testing.T) {
	tok := mintToken(t, time.Hour)
	api := &mockAPI{
		loginResult: &AuthResult{User: adminUser(), AccessToken: tok},
		loginDelay:  30 * time.Millisecond,
	}
	storage := NewMemoryStorage()
	store := NewStore(api, storage)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	st := store.Login(ctx, "admin@example.com", "admin123", false)

	if st.IsAuthenticated {
		t.Error("cancelled login must not apply its response")
	}
	if _, ok := storage.Token(); ok {
		t.Error("cancelled login must not store a token")
	}
}

func TestRefreshUserClearsOnExpiredToken(t *testing.T) {
	storage := NewMemoryStorage()
	storage.Store(mintToken(t, -time.Minute), true)
	store := NewStore(&mockAPI{}, storage)

	st := store.RefreshUser(context.Background())

	if st.IsAuthenticated {
		t.Error("expired token must clear the session")
	}
	if _, ok := storage.Token(); ok {
		t.Error("expired token must be removed from storage")
	}
}

func TestRefreshUserMalformedTokenClears(t *testing.T) {
	api := &mockAPI{currentErr: &backend.Error{Code: backend.CodeNetworkError, Message: "down"}}
	storage := NewMemoryStorage()
	storage.Store("header.payload.sig", false)
	store := NewStore(api, storage)

	st := store.RefreshUser(context.Background())

	if st.IsAuthenticated {
		t.Error("must not stay authenticated")
	}
	if _, ok := storage.Token(); ok {
		t.Error("tokens must be cleared")
	}
}

func TestRefreshUserRefetches(t *testing.T) {
	updated := adminUser()
	updated.Name = "Renamed Admin"
	api := &mockAPI{currentUser: updated}
	storage := NewMemoryStorage()
	storage.Store(mintToken(t, time.Hour), false)
	store := NewStore(api, storage)

	st := store.RefreshUser(context.Background())

	if !st.IsAuthenticated || st.User == nil || st.User.Name != "Renamed Admin" {
		t.Errorf("state = %+v", st)
	}
}
