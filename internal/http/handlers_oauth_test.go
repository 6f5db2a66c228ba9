package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mocksauth "github.com/meridian/rolegate/internal/mocks/auth"
	"github.com/meridian/rolegate/internal/service"
)

func newOAuthEnv(t *testing.T) (*AuthHandlers, *mocksauth.MemorySessionStore) {
	t.Helper()
	provider := mocksauth.NewMockIdentityProvider()
	sessions := mocksauth.NewMemorySessionStore()
	resolver := service.NewRoleResolver(service.RoleResolverOptions{
		Profiles: mocksauth.NewStubProfileStore(),
		Roles:    mocksauth.NewStubRoleStore(nil),
	})
	svc := service.NewAuthService(service.AuthServiceOptions{
		Provider: provider,
		Resolver: resolver,
		OAuth:    mocksauth.NewMockOAuthProvider(),
		Sessions: sessions,
	})
	return &AuthHandlers{Svc: svc, BaseURL: "http://localhost:8080"}, sessions
}

func TestOAuthLogin_RedirectsToProvider(t *testing.T) {
	h, _ := newOAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/login?redirect_uri=/reports", nil)
	rec := httptest.NewRecorder()
	h.OAuthLogin(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "https://mock-idp/auth")

	cookies := rec.Result().Cookies()
	var state, nonce, redirect string
	for _, c := range cookies {
		switch c.Name {
		case "oauth_state":
			state = c.Value
		case "oauth_nonce":
			nonce = c.Value
		case "post_login_redirect":
			redirect = c.Value
		}
	}
	assert.NotEmpty(t, state)
	assert.NotEmpty(t, nonce)
	assert.Equal(t, "/reports", redirect)
}

func TestOAuthCallback_MintsSessionAndRedirects(t *testing.T) {
	h, sessions := newOAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=authcode&state=state-1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "state-1"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
	req.AddCookie(&http.Cookie{Name: "post_login_redirect", Value: "/reports"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/reports", rec.Header().Get("Location"))
	assert.Equal(t, 1, sessions.Len())

	sessionCookie := cookieNamed(rec, SessionCookieName)
	require.NotNil(t, sessionCookie)
	assert.NotEmpty(t, sessionCookie.Value)
}

func TestOAuthCallback_StateMismatch(t *testing.T) {
	h, sessions := newOAuthEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=authcode&state=state-1", nil)
	req.AddCookie(&http.Cookie{Name: "oauth_state", Value: "different"})
	req.AddCookie(&http.Cookie{Name: "oauth_nonce", Value: "nonce-1"})
	rec := httptest.NewRecorder()
	h.OAuthCallback(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, 0, sessions.Len())
}

func TestOAuthCallback_MissingParams(t *testing.T) {
	h, _ := newOAuthEnv(t)

	tests := []struct {
		name   string
		target string
	}{
		{"missing code", "/auth/callback?state=state-1"},
		{"missing state", "/auth/callback?code=authcode"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			rec := httptest.NewRecorder()
			h.OAuthCallback(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
