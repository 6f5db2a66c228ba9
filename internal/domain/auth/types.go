package auth

// Package auth contains domain-level types for identity and session
// resolution. It is pure and free of framework/adapter concerns.

import (
	"strings"
	"time"
)

// Identity is the minimal authenticated principal: who is signed in.
// It deliberately excludes profile fields so callers that only need an
// "is someone logged in" check do not depend on profile-fetch success.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Profile is the full user row from the profile store, one-to-one with
// Identity by ID. This layer only ever reads profiles.
type Profile struct {
	ID          string    `json:"id"           db:"id"`
	Email       string    `json:"email"        db:"email"`
	PhoneNumber *string   `json:"phone_number" db:"phone_number"`
	Status      string    `json:"status"       db:"status"`
	CreatedAt   time.Time `json:"created_at"   db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"   db:"updated_at"`
}

// Identity projects the minimal principal out of a profile row.
func (p Profile) Identity() Identity {
	return Identity{ID: p.ID, Email: p.Email}
}

// Session is the record issued by the identity provider for an
// authenticated user. Token is an opaque identifier; validity and expiry
// are owned by the provider, not by this layer.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is past its expiry.
func (s Session) Expired(now time.Time) bool { return now.After(s.ExpiresAt) }

// Resolution is the {user, profile, roles} shape produced by the role
// resolver and returned by the identity endpoint.
type Resolution struct {
	User    Identity `json:"user"`
	Profile Profile  `json:"profile"`
	Roles   []string `json:"roles"`
}

// Event describes an identity-provider state change: sign-in, sign-out,
// token refresh, or a session change in another tab/process.
type Event string

const (
	EventSignedIn       Event = "signed_in"
	EventSignedOut      Event = "signed_out"
	EventTokenRefreshed Event = "token_refreshed"
)

// NormalizeRoles lower-cases role names, silently drops empty ones, and
// deduplicates while preserving first-seen order. Roles are a set: a join
// that yields the same name twice must not grant it twice.
func NormalizeRoles(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}

// AnyRoleMatches reports whether the caller's role set intersects the
// allow-list, comparing case-insensitively. An empty allow-list never
// matches; callers treat "no allow-list" as "any authenticated user".
func AnyRoleMatches(have, allow []string) bool {
	if len(have) == 0 || len(allow) == 0 {
		return false
	}
	allowed := make(map[string]struct{}, len(allow))
	for _, a := range allow {
		allowed[strings.ToLower(a)] = struct{}{}
	}
	for _, h := range have {
		if _, ok := allowed[strings.ToLower(h)]; ok {
			return true
		}
	}
	return false
}
