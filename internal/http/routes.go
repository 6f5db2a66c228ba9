package httpx

// Package httpx wires the HTTP surface: JSON auth endpoints, the identity
// endpoint, and role-gated route registration.

import (
	"log/slog"
	"net/http"
)

// RouterServices holds the services and configuration the router needs.
type RouterServices struct {
	Auth         AuthServiceInterface
	CookieDomain string
	BaseURL      string
	Logger       *slog.Logger // optional

	// Protected registers additional role-gated routes on the mux; used by
	// deployments embedding this API behind their own pages.
	Protected []ProtectedRoute
}

// ProtectedRoute declares a handler admitted only to callers holding at
// least one of AllowedRoles. An empty AllowedRoles list means any
// authenticated caller.
type ProtectedRoute struct {
	Pattern      string // ServeMux pattern, e.g. "GET /api/reports"
	AllowedRoles []string
	Handler      http.Handler
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		BaseURL:      services.BaseURL,
		Logger:       services.Logger,
	}
	meHandlers := &MeHandlers{Svc: services.Auth, Logger: services.Logger}

	mux.Handle("POST /api/auth/login", http.HandlerFunc(authHandlers.Login))
	mux.Handle("POST /api/auth/logout", http.HandlerFunc(authHandlers.Logout))
	mux.Handle("POST /api/auth/register", http.HandlerFunc(authHandlers.Register))
	mux.Handle("GET /api/me", http.HandlerFunc(meHandlers.Me))

	mux.Handle("GET /auth/login", http.HandlerFunc(authHandlers.OAuthLogin))
	mux.Handle("GET /auth/callback", http.HandlerFunc(authHandlers.OAuthCallback))

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	for _, route := range services.Protected {
		guard := RequireAuth(services.Auth)
		if len(route.AllowedRoles) > 0 {
			guard = RequireRoles(services.Auth, route.AllowedRoles...)
		}
		mux.Handle(route.Pattern, guard(route.Handler))
	}

	return mux
}
