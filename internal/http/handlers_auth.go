package httpx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
	"github.com/meridian/rolegate/internal/ports"
	"github.com/meridian/rolegate/internal/service"
)

// AuthServiceInterface defines the auth service operations the handlers and
// middleware consume.
type AuthServiceInterface interface {
	Login(ctx context.Context, creds ports.Credentials) (*domainauth.Session, error)
	Register(ctx context.Context, creds ports.Credentials) (*domainauth.Identity, error)
	Logout(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, token string) (*domainauth.Identity, error)
	ResolveCurrent(ctx context.Context, token string) (*domainauth.Resolution, error)
	BeginOAuth(ctx context.Context, redirectURL string) (*service.BeginOAuthResult, error)
	CompleteOAuth(ctx context.Context, input service.CompleteOAuthInput) (*domainauth.Session, error)
}

// AuthHandlers provides HTTP handlers for authentication operations.
type AuthHandlers struct {
	Svc          AuthServiceInterface
	CookieDomain string
	BaseURL      string // external base URL, used for the OAuth redirect
	Logger       *slog.Logger
}

func (h *AuthHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// credentialsRequest is the JSON body for login and register.
type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles credential sign-in.
// POST /api/auth/login.
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	session, err := h.Svc.Login(r.Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		WriteAppError(w, err)
		return
	}

	h.setSessionCookie(w, r, *session)
	WriteJSON(w, http.StatusOK, map[string]any{"session": session})
}

// Register provisions a new account.
// POST /api/auth/register.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	user, err := h.Svc.Register(r.Context(), ports.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		h.logger().WarnContext(r.Context(), "register failed", "error", err)
		// Registration failures are reported as 400 regardless of cause so
		// the response shape stays uniform for form handling.
		WriteError(w, http.StatusBadRequest, registerFailureMessage(err))
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout invalidates the current session and clears the cookie.
// POST /api/auth/logout.
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	token := SessionTokenFromRequest(r)
	if err := h.Svc.Logout(r.Context(), token); err != nil {
		h.logger().WarnContext(r.Context(), "logout failed", "error", err)
		WriteError(w, http.StatusBadRequest, apperrors.MessageOf(err))
		return
	}

	h.clearCookie(w, r, SessionCookieName)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "Signed out"})
}

// OAuthLogin starts the hosted OAuth flow.
// GET /auth/login?redirect_uri=<optional_redirect>.
func (h *AuthHandlers) OAuthLogin(w http.ResponseWriter, r *http.Request) {
	redirectURI := safeRedirectPath(r.URL.Query().Get("redirect_uri"))

	result, err := h.Svc.BeginOAuth(r.Context(), h.callbackURL())
	if err != nil {
		if errors.Is(err, service.ErrOAuthNotConfigured) {
			WriteError(w, http.StatusNotFound, "OAuth sign-in is not configured")
			return
		}
		h.logger().ErrorContext(r.Context(), "begin oauth failed", "error", err)
		WriteError(w, http.StatusInternalServerError, apperrors.UnknownErrorMessage)
		return
	}

	// State, nonce, and the post-login destination live in short-lived cookies
	// until the IdP redirects back.
	h.setOAuthCookies(w, r, oauthCookieParams{State: result.State, Nonce: result.Nonce, RedirectURI: redirectURI})
	http.Redirect(w, r, result.AuthURL, http.StatusFound)
}

// OAuthCallback completes the hosted OAuth flow.
// GET /auth/callback?code=<code>&state=<state>.
func (h *AuthHandlers) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" {
		WriteError(w, http.StatusBadRequest, "authorization code is required")
		return
	}
	if state == "" {
		WriteError(w, http.StatusBadRequest, "state parameter is required")
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value != state {
		WriteError(w, http.StatusBadRequest, "invalid or missing state parameter")
		return
	}
	nonceCookie, err := r.Cookie("oauth_nonce")
	if err != nil {
		WriteError(w, http.StatusBadRequest, "missing nonce parameter")
		return
	}

	session, err := h.Svc.CompleteOAuth(r.Context(), service.CompleteOAuthInput{
		Code:  code,
		State: state,
		Nonce: nonceCookie.Value,
	})
	if err != nil {
		h.logger().ErrorContext(r.Context(), "complete oauth failed", "error", err)
		WriteError(w, http.StatusInternalServerError, apperrors.UnknownErrorMessage)
		return
	}

	h.setSessionCookie(w, r, *session)
	h.clearCookie(w, r, "oauth_state")
	h.clearCookie(w, r, "oauth_nonce")

	redirectURI := h.getPostLoginRedirect(w, r)
	http.Redirect(w, r, redirectURI, http.StatusFound)
}

// registerFailureMessage picks the caller-facing message for a failed
// registration. Application errors carry safe messages; anything else
// collapses to the generic one.
func registerFailureMessage(err error) string {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		return appErr.Message
	}
	return apperrors.UnknownErrorMessage
}

// callbackURL returns the absolute OAuth callback URL.
func (h *AuthHandlers) callbackURL() string {
	base := strings.TrimSuffix(h.BaseURL, "/")
	return base + "/auth/callback"
}

// clearCookie clears a cookie by setting it to expire immediately.
// It mirrors key attributes (Secure, Path, Domain, SameSite) used when setting cookies
// to maximize compatibility across browsers during deletion.
func (h *AuthHandlers) clearCookie(w http.ResponseWriter, r *http.Request, name string) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0).UTC(),
		SameSite: http.SameSiteLaxMode,
	})
}

// oauthCookieParams groups values needed to set OAuth cookies.
type oauthCookieParams struct {
	State       string
	Nonce       string
	RedirectURI string
}

// setOAuthCookies stores OAuth state, nonce, and the post-login redirect in secure cookies.
func (h *AuthHandlers) setOAuthCookies(w http.ResponseWriter, r *http.Request, p oauthCookieParams) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")

	for _, c := range []struct{ name, value string }{
		{"oauth_state", p.State},
		{"oauth_nonce", p.Nonce},
		{"post_login_redirect", p.RedirectURI},
	} {
		http.SetCookie(w, &http.Cookie{
			Name:     c.name,
			Value:    c.value,
			Path:     "/",
			Domain:   h.CookieDomain,
			HttpOnly: true,
			Secure:   isSecure,
			SameSite: http.SameSiteLaxMode,
			MaxAge:   600, // 10 minutes
		})
	}
}

// setSessionCookie writes the session cookie based on the session's expiry.
func (h *AuthHandlers) setSessionCookie(w http.ResponseWriter, r *http.Request, s domainauth.Session) {
	isSecure := r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    s.Token,
		Path:     "/",
		Domain:   h.CookieDomain,
		HttpOnly: true,
		Secure:   isSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
	})
}

// getPostLoginRedirect returns the post-login redirect URL and clears the cookie.
func (h *AuthHandlers) getPostLoginRedirect(w http.ResponseWriter, r *http.Request) string {
	redirectURI := "/"
	if redirectCookie, err := r.Cookie("post_login_redirect"); err == nil {
		redirectURI = safeRedirectPath(redirectCookie.Value)
		h.clearCookie(w, r, "post_login_redirect")
	}
	return redirectURI
}

// safeRedirectPath ensures the provided redirect is a same-origin relative path
// starting with "/" and not an absolute URL. Returns "/" when invalid.
func safeRedirectPath(candidate string) string {
	if candidate == "" {
		return "/"
	}
	u, err := url.Parse(candidate)
	if err != nil || u.IsAbs() || u.Host != "" || !strings.HasPrefix(u.Path, "/") {
		return "/"
	}
	return candidate
}
