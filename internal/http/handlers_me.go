package httpx

import (
	"log/slog"
	"net/http"

	apperrors "github.com/meridian/rolegate/internal/errors"
)

// MeHandlers serves the identity endpoint: the canonical
// {user, profile, roles} snapshot for the calling session.
type MeHandlers struct {
	Svc    AuthServiceInterface
	Logger *slog.Logger
}

func (h *MeHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// Me resolves the caller's session to identity, profile, and roles.
// GET /api/me.
//
// Responses:
//   - 200 with {user, profile, roles} for a valid session
//   - 401 {"error": "Unauthorized"} for a missing or invalid session;
//     the resolver is never consulted in that case
//   - 500 with the resolution failure message for an authenticated caller
//     whose profile or roles could not be loaded
func (h *MeHandlers) Me(w http.ResponseWriter, r *http.Request) {
	resolution, err := h.Svc.ResolveCurrent(r.Context(), SessionTokenFromRequest(r))
	if err != nil {
		if apperrors.CodeOf(err) != apperrors.ErrCodeUnauthorized {
			h.logger().ErrorContext(r.Context(), "identity resolution failed",
				"error", err, "code", apperrors.CodeOf(err))
		}
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, resolution)
}
