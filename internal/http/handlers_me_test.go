package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
)

func seedProfile() domainauth.Profile {
	return domainauth.Profile{
		ID:        "mock-user-1",
		Email:     "mock.user@example.com",
		Status:    "active",
		CreatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestMe_Success(t *testing.T) {
	env := newTestAuthEnv(seedProfile())
	env.roles.Roles["mock-user-1"] = []string{"Admin", "editor", "ADMIN"}
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resolution domainauth.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
	assert.Equal(t, "mock-user-1", resolution.User.ID)
	assert.Equal(t, "mock.user@example.com", resolution.Profile.Email)
	// Lower-cased and deduplicated, first-seen order.
	assert.Equal(t, []string{"admin", "editor"}, resolution.Roles)
}

func TestMe_BearerToken(t *testing.T) {
	env := newTestAuthEnv(seedProfile())
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestMe_NoSession(t *testing.T) {
	env := newTestAuthEnv(seedProfile())
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "Unauthorized", body["error"])

	// Unauthorized requests never reach the profile or role stores.
	assert.Equal(t, 0, env.profiles.CallCount())
	assert.Equal(t, 0, env.roles.CallCount())
}

func TestMe_MissingProfile(t *testing.T) {
	// Authenticated session for a user with no profile row.
	env := newTestAuthEnv()
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Contains(t, body["error"], "user profile not found")
}

func TestMe_RoleLookupFailure(t *testing.T) {
	env := newTestAuthEnv(seedProfile())
	env.roles.Err = assert.AnError
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "role lookup failed", body["error"])
}

func TestMe_ZeroRolesIsNotAnError(t *testing.T) {
	env := newTestAuthEnv(seedProfile())
	h := &MeHandlers{Svc: env.svc}

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "tok-1"})
	rec := httptest.NewRecorder()
	h.Me(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resolution domainauth.Resolution
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolution))
	assert.Empty(t, resolution.Roles)
}
