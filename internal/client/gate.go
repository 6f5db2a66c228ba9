package client

import (
	"fmt"
	"net/url"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
)

// GateState is the state of a navigation decision.
type GateState int

const (
	// StateChecking means the snapshot is still loading; render nothing yet.
	StateChecking GateState = iota
	// StateAllowed means the target may render.
	StateAllowed
	// StateRedirecting means the caller must navigate to Decision.RedirectTo.
	StateRedirecting
)

func (s GateState) String() string {
	switch s {
	case StateChecking:
		return "checking"
	case StateAllowed:
		return "allowed"
	case StateRedirecting:
		return "redirecting"
	default:
		return fmt.Sprintf("GateState(%d)", int(s))
	}
}

// ForbiddenRedirect selects where an authenticated caller lacking a required
// role is sent.
type ForbiddenRedirect string

const (
	// RedirectUnauthorizedRoute sends forbidden callers to the unauthorized
	// page. This is the default.
	RedirectUnauthorizedRoute ForbiddenRedirect = "unauthorized-route"
	// RedirectSignInRoute sends forbidden callers back to sign-in, for
	// deployments that treat a missing role as a stale session.
	RedirectSignInRoute ForbiddenRedirect = "sign-in-route"
)

// UnmarshalText lets ForbiddenRedirect be parsed from configuration.
func (f *ForbiddenRedirect) UnmarshalText(text []byte) error {
	switch ForbiddenRedirect(text) {
	case RedirectUnauthorizedRoute, RedirectSignInRoute:
		*f = ForbiddenRedirect(text)
		return nil
	case "":
		*f = RedirectUnauthorizedRoute
		return nil
	default:
		return fmt.Errorf("invalid forbidden redirect %q", text)
	}
}

// Decision is the outcome of gating a navigation target.
type Decision struct {
	State      GateState
	RedirectTo string // set only when State is StateRedirecting
}

// Gate decides whether a navigation target may render given the current
// session snapshot. The zero value gates on authentication only and uses
// the default routes.
type Gate struct {
	// AllowedRoles admits callers holding at least one of these roles,
	// case-insensitively. Empty means any authenticated caller.
	AllowedRoles []string
	// SignInRoute is where unauthenticated callers are sent. Defaults to
	// "/login".
	SignInRoute string
	// UnauthorizedRoute is where forbidden callers are sent when
	// OnForbidden is RedirectUnauthorizedRoute. Defaults to "/unauthorized".
	UnauthorizedRoute string
	// OnForbidden selects the destination for authenticated callers missing
	// a required role.
	OnForbidden ForbiddenRedirect
}

// Decide gates currentPath against the snapshot. Decisions are pure: calling
// Decide again with the same inputs yields the same outcome, so a still-loading
// snapshot keeps the gate in StateChecking without flicker.
func (g Gate) Decide(snap Snapshot, currentPath string) Decision {
	if snap.Loading {
		return Decision{State: StateChecking}
	}

	if !snap.SignedIn() {
		return Decision{State: StateRedirecting, RedirectTo: g.signInRedirect(currentPath)}
	}

	if len(g.AllowedRoles) == 0 {
		return Decision{State: StateAllowed}
	}
	if domainauth.AnyRoleMatches(snap.Roles, g.AllowedRoles) {
		return Decision{State: StateAllowed}
	}

	if g.OnForbidden == RedirectSignInRoute {
		return Decision{State: StateRedirecting, RedirectTo: g.signInRedirect(currentPath)}
	}
	return Decision{State: StateRedirecting, RedirectTo: g.unauthorizedRoute()}
}

// signInRedirect builds the sign-in URL with the interrupted path embedded
// so sign-in can return the caller to where they were headed.
func (g Gate) signInRedirect(currentPath string) string {
	route := g.SignInRoute
	if route == "" {
		route = "/login"
	}
	if currentPath == "" {
		return route
	}
	return route + "?returnTo=" + url.QueryEscape(currentPath)
}

func (g Gate) unauthorizedRoute() string {
	if g.UnauthorizedRoute != "" {
		return g.UnauthorizedRoute
	}
	return "/unauthorized"
}
