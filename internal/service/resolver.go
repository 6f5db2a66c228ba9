package service

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	"github.com/meridian/rolegate/internal/ports"
)

// RoleResolverOptions groups dependencies for RoleResolver.
type RoleResolverOptions struct {
	Profiles ports.ProfileStore
	Roles    ports.RoleStore
}

// RoleResolver turns a validated user identifier into the
// {identity, profile, roles} shape. It performs no authentication of its
// own: callers must already hold an authenticated identifier. Every call
// re-queries the store; there is no caching and no retry.
type RoleResolver struct {
	profiles ports.ProfileStore
	roles    ports.RoleStore
}

// NewRoleResolver constructs a new RoleResolver.
func NewRoleResolver(opts RoleResolverOptions) *RoleResolver {
	return &RoleResolver{
		profiles: opts.Profiles,
		roles:    opts.Roles,
	}
}

// Resolve loads the profile row and role memberships for userID.
// A missing profile row is a data-integrity fault (profile_not_found);
// a failed role join is role_lookup_failed; zero roles is a valid result.
// Role names come back lower-cased with empty names dropped and duplicates
// collapsed.
func (r *RoleResolver) Resolve(ctx context.Context, userID string) (*domainauth.Resolution, error) {
	if userID == "" {
		return nil, apperrors.Validation("user ID is required")
	}

	// Fetch the profile row and role memberships concurrently. Errors are
	// captured per fetch so the missing-profile case takes precedence over
	// a failed role join when both go wrong.
	g, gctx := errgroup.WithContext(ctx)
	var (
		profile    domainauth.Profile
		names      []string
		profileErr error
		rolesErr   error
	)

	g.Go(func() error {
		profile, profileErr = r.profiles.ProfileByID(gctx, userID)
		return nil
	})
	g.Go(func() error {
		names, rolesErr = r.roles.RoleNamesForUser(gctx, userID)
		return nil
	})
	_ = g.Wait() // goroutines report through profileErr and rolesErr

	if profileErr != nil {
		return nil, apperrors.ProfileNotFound(
			fmt.Sprintf("user profile not found for %s", userID), profileErr)
	}
	if rolesErr != nil {
		return nil, apperrors.RoleLookupFailed("role lookup failed", rolesErr)
	}

	return &domainauth.Resolution{
		User:    profile.Identity(),
		Profile: profile,
		Roles:   domainauth.NormalizeRoles(names),
	}, nil
}
