package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	mocks "github.com/meridian/rolegate/internal/mocks/auth"
	"github.com/meridian/rolegate/internal/ports"
)

func newTestAuthService(provider *mocks.MockIdentityProvider) (*AuthService, *mocks.StubProfileStore, *mocks.StubRoleStore) {
	profiles := mocks.NewStubProfileStore(domainauth.Profile{
		ID:     provider.DefaultIdentity.ID,
		Email:  provider.DefaultIdentity.Email,
		Status: "active",
	})
	roles := mocks.NewStubRoleStore(map[string][]string{
		provider.DefaultIdentity.ID: {"User"},
	})
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Resolver: NewRoleResolver(RoleResolverOptions{Profiles: profiles, Roles: roles}),
	})
	return svc, profiles, roles
}

func TestAuthService_Login_Success(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, _, _ := newTestAuthService(provider)

	sess, err := svc.Login(context.Background(), ports.Credentials{
		Email:    "a@x.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, "a@x.com", sess.Email)
}

func TestAuthService_Login_InvalidCredentials(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.SignInFunc = func(context.Context, ports.Credentials) (domainauth.Session, error) {
		return domainauth.Session{}, errors.New("invalid login credentials")
	}
	svc, _, _ := newTestAuthService(provider)

	_, err := svc.Login(context.Background(), ports.Credentials{
		Email:    "a@x.com",
		Password: "wrong",
	})

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	assert.Equal(t, "invalid login credentials", apperrors.MessageOf(err))
}

func TestAuthService_Login_MissingFields(t *testing.T) {
	svc, _, _ := newTestAuthService(mocks.NewMockIdentityProvider())

	_, err := svc.Login(context.Background(), ports.Credentials{Email: "a@x.com"})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	_, err = svc.Login(context.Background(), ports.Credentials{Password: "secret"})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestAuthService_Register(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, _, _ := newTestAuthService(provider)

	identity, err := svc.Register(context.Background(), ports.Credentials{
		Email:    "new@x.com",
		Password: "secret",
	})

	require.NoError(t, err)
	assert.Equal(t, "new@x.com", identity.Email)
}

func TestAuthService_Logout(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, _, _ := newTestAuthService(provider)

	require.NoError(t, svc.Logout(context.Background(), "tok"))
	assert.Equal(t, 1, provider.SignOutCalls)

	// Empty token is nothing to log out; the provider is not called.
	require.NoError(t, svc.Logout(context.Background(), ""))
	assert.Equal(t, 1, provider.SignOutCalls)
}

func TestAuthService_ResolveCurrent_Success(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, _, _ := newTestAuthService(provider)

	res, err := svc.ResolveCurrent(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, provider.DefaultIdentity, res.User)
	assert.Equal(t, []string{"user"}, res.Roles)
}

func TestAuthService_ResolveCurrent_UnauthorizedSkipsResolver(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	provider.UserFromTokenFunc = func(context.Context, string) (domainauth.Identity, error) {
		return domainauth.Identity{}, errors.New("token expired")
	}
	svc, profiles, roles := newTestAuthService(provider)

	_, err := svc.ResolveCurrent(context.Background(), "stale-token")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	assert.Equal(t, "Unauthorized", apperrors.MessageOf(err))
	assert.Zero(t, profiles.CallCount())
	assert.Zero(t, roles.CallCount())
}

func TestAuthService_ResolveCurrent_EmptyToken(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc, profiles, _ := newTestAuthService(provider)

	_, err := svc.ResolveCurrent(context.Background(), "")

	assert.Equal(t, apperrors.ErrCodeUnauthorized, apperrors.CodeOf(err))
	assert.Zero(t, provider.UserFromTokenCalls)
	assert.Zero(t, profiles.CallCount())
}

func TestAuthService_ResolveCurrent_MissingProfileIs500Class(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	profiles := mocks.NewStubProfileStore() // no rows
	roles := mocks.NewStubRoleStore(nil)
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Resolver: NewRoleResolver(RoleResolverOptions{Profiles: profiles, Roles: roles}),
	})

	_, err := svc.ResolveCurrent(context.Background(), "tok")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeProfileNotFound, apperrors.CodeOf(err))
	assert.Equal(t, 500, apperrors.StatusOf(err))
}

func TestAuthService_BeginOAuth(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	oauth := mocks.NewMockOAuthProvider()
	sessions := mocks.NewMemorySessionStore()
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Resolver: NewRoleResolver(RoleResolverOptions{
			Profiles: mocks.NewStubProfileStore(),
			Roles:    mocks.NewStubRoleStore(nil),
		}),
		OAuth:    oauth,
		Sessions: sessions,
	})

	result, err := svc.BeginOAuth(context.Background(), "http://localhost:8080/callback")
	require.NoError(t, err)
	assert.Equal(t, "https://mock-idp/auth", result.AuthURL)
	assert.Equal(t, "state-1", result.State)
	assert.Equal(t, "nonce-1", result.Nonce)
}

func TestAuthService_BeginOAuth_NotConfigured(t *testing.T) {
	svc, _, _ := newTestAuthService(mocks.NewMockIdentityProvider())

	_, err := svc.BeginOAuth(context.Background(), "http://localhost:8080/callback")
	assert.ErrorIs(t, err, ErrOAuthNotConfigured)
}

func TestAuthService_CompleteOAuth_MintsSession(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	oauth := mocks.NewMockOAuthProvider()
	sessions := mocks.NewMemorySessionStore()
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Resolver: NewRoleResolver(RoleResolverOptions{
			Profiles: mocks.NewStubProfileStore(),
			Roles:    mocks.NewStubRoleStore(nil),
		}),
		OAuth:           oauth,
		Sessions:        sessions,
		OAuthSessionTTL: time.Hour,
	})

	sess, err := svc.CompleteOAuth(context.Background(), CompleteOAuthInput{
		Code:  "code",
		State: "state-1",
		Nonce: "nonce-1",
	})

	require.NoError(t, err)
	assert.Equal(t, oauth.DefaultIdentity.ID, sess.UserID)
	assert.NotEmpty(t, sess.Token)
	assert.Equal(t, 1, sessions.Len())

	stored, err := sessions.Get(context.Background(), sess.Token)
	require.NoError(t, err)
	assert.Equal(t, sess.UserID, stored.UserID)
}

func TestAuthService_CompleteOAuth_Validation(t *testing.T) {
	provider := mocks.NewMockIdentityProvider()
	svc := NewAuthService(AuthServiceOptions{
		Provider: provider,
		Resolver: NewRoleResolver(RoleResolverOptions{
			Profiles: mocks.NewStubProfileStore(),
			Roles:    mocks.NewStubRoleStore(nil),
		}),
		OAuth:    mocks.NewMockOAuthProvider(),
		Sessions: mocks.NewMemorySessionStore(),
	})

	for _, input := range []CompleteOAuthInput{
		{State: "s", Nonce: "n"},
		{Code: "c", Nonce: "n"},
		{Code: "c", State: "s"},
	} {
		_, err := svc.CompleteOAuth(context.Background(), input)
		assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
	}
}
