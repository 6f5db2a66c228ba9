package bootstrap

import (
	"github.com/meridian/rolegate/config"
	"github.com/meridian/rolegate/internal/client"
)

// BuildGate constructs a route gate from configuration. In-process consumers
// pair it with a SessionContext to gate their navigation targets.
func BuildGate(cfg config.AuthConfig, allowedRoles []string) client.Gate {
	return client.Gate{
		AllowedRoles:      allowedRoles,
		SignInRoute:       cfg.Gate.SignInRoute,
		UnauthorizedRoute: cfg.Gate.UnauthorizedRoute,
		OnForbidden:       cfg.Gate.OnForbidden,
	}
}
