package guard

import (
	"net/url"
	"strings"
)

// State is the coarse session state driving admit/redirect decisions.
type State int

const (
	// StateUnknown means the session has not finished initializing.
	StateUnknown State = iota
	StateUnauthenticated
	StateAuthenticated
)

// StateOf derives the guard state from the session store's flags.
func StateOf(initialized, authenticated bool) State {
	switch {
	case !initialized:
		return StateUnknown
	case authenticated:
		return StateAuthenticated
	default:
		return StateUnauthenticated
	}
}

// Action is the outcome of a guard decision.
type Action int

const (
	Allow Action = iota
	Redirect
)

// Decision is the admit/redirect outcome for one navigation.
type Decision struct {
	Action   Action
	Location string // target path when Action is Redirect
}

// Paths the guard cares about. Everything the table doesn't classify
// (assets, health, API passthrough, docs) is exempt from guarding.
const (
	LoginPath   = "/login"
	LandingPath = "/dashboard"
)

var protectedPrefixes = []string{
	"/dashboard",
	"/users",
	"/orders",
	"/markets",
	"/settings",
	"/audit",
	"/system",
}

var publicPaths = map[string]bool{
	LoginPath:          true,
	"/forgot-password": true,
	"/reset-password":  true,
}

var exemptPrefixes = []string{
	"/api/",
	"/assets/",
	"/swagger/",
	"/healthz",
	"/favicon.ico",
}

// Class is the route table classification of a path.
type Class int

const (
	ClassExempt Class = iota
	ClassProtected
	ClassPublic
)

// Classify places a path in the guard's route table.
func Classify(path string) Class {
	for _, p := range exemptPrefixes {
		if strings.HasPrefix(path, p) {
			return ClassExempt
		}
	}
	if publicPaths[path] {
		return ClassPublic
	}
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return ClassProtected
		}
	}
	return ClassExempt
}

// Decide applies the admit/redirect table:
//   - protected path while unauthenticated → redirect to login, keeping
//     the original target for post-login return
//   - public path while authenticated → redirect to the landing page
//   - everything else passes through unchanged
func Decide(path string, st State) Decision {
	switch Classify(path) {
	case ClassProtected:
		if st == StateUnauthenticated {
			return Decision{
				Action:   Redirect,
				Location: LoginPath + "?redirect=" + url.QueryEscape(path),
			}
		}
	case ClassPublic:
		if st == StateAuthenticated {
			return Decision{Action: Redirect, Location: LandingPath}
		}
	}
	return Decision{Action: Allow}
}
