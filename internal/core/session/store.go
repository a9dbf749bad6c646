package session

import (
	"context"
	"sync"

	"cryptex-console/internal/adapters/backend"
	"cryptex-console/internal/core/domain"
	"cryptex-console/internal/pkg/token"
)

// AuthResult is what a successful backend login yields.
type AuthResult struct {
	User         *domain.User `json:"user"`
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"`
}

// AuthAPI is the slice of the backend the session store talks to.
type AuthAPI interface {
	Login(ctx context.Context, identifier, password string) (*AuthResult, *backend.Error)
	Logout(ctx context.Context, bearer string) *backend.Error
	CurrentUser(ctx context.Context, bearer string) (*domain.User, *backend.Error)
}

// State is the session's observable state. Snapshots are copies;
// mutating a snapshot has no effect on the store.
type State struct {
	User            *domain.User
	IsAuthenticated bool
	IsLoading       bool
	Initialized     bool
	LastError       *backend.Error
}

// Store holds one session's state. All mutating operations are
// serialized: two racing logins leave the store in the state of
// whichever holds the lock, never a merged partial state.
type Store struct {
	api     AuthAPI
	storage Storage

	mu            sync.Mutex
	loginInFlight bool
	state         State
}

// NewStore creates a session store over the given backend slice and
// token storage strategy.
func NewStore(api AuthAPI, storage Storage) *Store {
	return &Store{api: api, storage: storage}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Initialize populates the session from any stored token. Idempotent:
// once initialized it returns the current state. Absent or expired
// tokens yield unauthenticated; a live token yields the backend's view
// of the user, falling back to the token-decoded identity when the
// backend cannot be reached. Always ends initialized and not loading.
func (s *Store) Initialize(ctx context.Context) State {
	s.mu.Lock()
	if s.state.Initialized {
		defer s.mu.Unlock()
		return s.state
	}
	s.state.IsLoading = true
	s.mu.Unlock()

	tok, ok := s.storage.Token()
	if !ok || token.IsExpired(tok) {
		return s.apply(func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.Initialized = true
			st.IsLoading = false
		})
	}

	user := s.resolveUser(ctx, tok)

	if ctx.Err() != nil {
		// Discard the response of a cancelled call.
		return s.apply(func(st *State) { st.IsLoading = false })
	}

	return s.apply(func(st *State) {
		st.User = user
		st.IsAuthenticated = user != nil
		st.Initialized = true
		st.IsLoading = false
	})
}

// Login authenticates against the backend and stores the issued token
// per the remember flag. Expected failures (bad credentials, network
// errors) land in LastError; Login never panics for them. While one
// login is in flight a second call is a no-op returning the current
// state.
func (s *Store) Login(ctx context.Context, identifier, password string, remember bool) State {
	s.mu.Lock()
	if s.loginInFlight {
		defer s.mu.Unlock()
		return s.state
	}
	s.loginInFlight = true
	s.state.IsLoading = true
	s.state.LastError = nil
	s.mu.Unlock()

	result, apiErr := s.api.Login(ctx, identifier, password)

	if ctx.Err() != nil {
		// The caller went away; do not apply the discarded response.
		return s.apply(func(st *State) {
			st.IsLoading = false
			s.loginInFlight = false
		})
	}

	if apiErr != nil {
		return s.apply(func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsLoading = false
			st.Initialized = true
			st.LastError = apiErr
			s.loginInFlight = false
		})
	}

	s.storage.Store(result.AccessToken, remember)

	return s.apply(func(st *State) {
		st.User = result.User
		st.IsAuthenticated = true
		st.IsLoading = false
		st.Initialized = true
		st.LastError = nil
		s.loginInFlight = false
	})
}

// Logout clears stored tokens, best-effort notifies the backend, and
// resets the session to unauthenticated. A failing backend call never
// blocks the local reset.
func (s *Store) Logout(ctx context.Context) State {
	tok, had := s.storage.Token()
	s.storage.Clear()

	if had {
		_ = s.api.Logout(ctx, tok)
	}

	return s.apply(func(st *State) {
		st.User = nil
		st.IsAuthenticated = false
		st.IsLoading = false
		st.Initialized = true
		st.LastError = nil
	})
}

// RefreshUser re-validates the stored token and re-fetches the user.
// An invalid or absent token clears the session; a reachable backend
// refreshes the user; an unreachable one falls back to the token
// identity; when even that fails, tokens are cleared and a refresh
// failure is recorded.
func (s *Store) RefreshUser(ctx context.Context) State {
	tok, ok := s.storage.Token()
	if !ok || token.IsExpired(tok) {
		s.storage.Clear()
		return s.apply(func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsLoading = false
			st.Initialized = true
		})
	}

	user := s.resolveUser(ctx, tok)

	if ctx.Err() != nil {
		return s.apply(func(st *State) { st.IsLoading = false })
	}

	if user == nil {
		s.storage.Clear()
		return s.apply(func(st *State) {
			st.User = nil
			st.IsAuthenticated = false
			st.IsLoading = false
			st.Initialized = true
			st.LastError = &backend.Error{Code: "REFRESH_FAILED", Message: "could not refresh session"}
		})
	}

	return s.apply(func(st *State) {
		st.User = user
		st.IsAuthenticated = true
		st.IsLoading = false
		st.Initialized = true
		st.LastError = nil
	})
}

// resolveUser asks the backend who the token belongs to, falling back
// to the token's own payload when the backend call fails. A backend
// that answers "not authenticated" is not a fallback case: the token
// is bad, not the connection.
func (s *Store) resolveUser(ctx context.Context, tok string) *domain.User {
	user, apiErr := s.api.CurrentUser(ctx, tok)
	if apiErr == nil && user != nil {
		return user
	}
	if apiErr != nil && apiErr.Code == backend.CodeUnauthenticated {
		return nil
	}

	claims, err := token.Decode(tok)
	if err != nil {
		return nil
	}
	return &domain.User{
		ID:       claims.Subject,
		Email:    claims.Email,
		Name:     claims.Name,
		Roles:    claims.Roles,
		IsActive: true,
	}
}

// apply runs a state mutation under the lock and returns the new state.
func (s *Store) apply(fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
	return s.state
}
