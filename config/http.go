package config

import "strings"

// HTTPConfig contains the HTTP server settings.
type HTTPConfig struct {
	// Addr is the listen address for the HTTP server.
	Addr string `env:"HTTP_ADDR" envDefault:":8080"`

	// BaseURL is the externally visible base URL of this service. It is
	// used when building OAuth callback URLs.
	BaseURL string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// CookieDomain scopes the session cookie. Empty means host-only.
	CookieDomain string `env:"COOKIE_DOMAIN" envDefault:""`
}

// Sanitize normalizes HTTP configuration values.
func (h *HTTPConfig) Sanitize() {
	h.BaseURL = strings.TrimRight(h.BaseURL, "/")
	if h.Addr == "" {
		h.Addr = ":8080"
	}
}
