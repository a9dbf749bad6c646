package guard

import "testing"

func TestStateOf(t *testing.T) {
	if StateOf(false, false) != StateUnknown {
		t.Error("uninitialized should be unknown")
	}
	if StateOf(false, true) != StateUnknown {
		t.Error("uninitialized wins over authenticated flag")
	}
	if StateOf(true, false) != StateUnauthenticated {
		t.Error("initialized+unauthenticated")
	}
	if StateOf(true, true) != StateAuthenticated {
		t.Error("initialized+authenticated")
	}
}

func TestDecide(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		state    State
		want     Action
		location string
	}{
		{
			name:     "protected while unauthenticated",
			path:     "/dashboard",
			state:    StateUnauthenticated,
			want:     Redirect,
			location: "/login?redirect=%2Fdashboard",
		},
		{
			name:     "nested protected while unauthenticated",
			path:     "/users/42/edit",
			state:    StateUnauthenticated,
			want:     Redirect,
			location: "/login?redirect=%2Fusers%2F42%2Fedit",
		},
		{
			name:     "login while authenticated",
			path:     "/login",
			state:    StateAuthenticated,
			want:     Redirect,
			location: "/dashboard",
		},
		{name: "protected while authenticated", path: "/dashboard", state: StateAuthenticated, want: Allow},
		{name: "protected while unknown passes through", path: "/dashboard", state: StateUnknown, want: Allow},
		{name: "login while unauthenticated", path: "/login", state: StateUnauthenticated, want: Allow},
		{name: "reset password while unauthenticated", path: "/reset-password", state: StateUnauthenticated, want: Allow},
		{name: "assets exempt", path: "/assets/app.js", state: StateUnauthenticated, want: Allow},
		{name: "health exempt", path: "/healthz", state: StateUnauthenticated, want: Allow},
		{name: "api exempt", path: "/api/session", state: StateUnauthenticated, want: Allow},
		{name: "swagger exempt", path: "/swagger/index.html", state: StateUnauthenticated, want: Allow},
		{name: "unlisted path exempt", path: "/about", state: StateUnauthenticated, want: Allow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Decide(tt.path, tt.state)
			if got.Action != tt.want {
				t.Fatalf("Decide(%q, %v).Action = %v, want %v", tt.path, tt.state, got.Action, tt.want)
			}
			if tt.want == Redirect && got.Location != tt.location {
				t.Errorf("Location = %q, want %q", got.Location, tt.location)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	if Classify("/usersearch") != ClassExempt {
		t.Error("/usersearch must not match the /users prefix")
	}
	if Classify("/users") != ClassProtected {
		t.Error("/users is protected")
	}
	if Classify("/orders/abc") != ClassProtected {
		t.Error("/orders/abc is protected")
	}
}
