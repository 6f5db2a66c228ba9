package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	domainauth "github.com/meridian/rolegate/internal/domain/auth"
	apperrors "github.com/meridian/rolegate/internal/errors"
)

// SnapshotFetcher retrieves the canonical {user, profile, roles} snapshot
// for a session token.
type SnapshotFetcher interface {
	Fetch(ctx context.Context, token string) (*domainauth.Resolution, error)
}

// HTTPSnapshotFetcher fetches snapshots from the identity endpoint over HTTP.
type HTTPSnapshotFetcher struct {
	BaseURL string
	Client  *http.Client // optional, defaults to http.DefaultClient
}

var _ SnapshotFetcher = (*HTTPSnapshotFetcher)(nil)

func (f *HTTPSnapshotFetcher) client() *http.Client {
	if f.Client != nil {
		return f.Client
	}
	return http.DefaultClient
}

// Fetch calls GET /api/me with the token as a bearer credential. A 401 maps
// to an unauthorized application error; other non-200 responses surface the
// endpoint's error message.
func (f *HTTPSnapshotFetcher) Fetch(ctx context.Context, token string) (*domainauth.Resolution, error) {
	url := strings.TrimSuffix(f.BaseURL, "/") + "/api/me"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch identity: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	if resp.StatusCode != http.StatusOK {
		var body struct {
			Error string `json:"error"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil || body.Error == "" {
			return nil, fmt.Errorf("identity endpoint returned %d", resp.StatusCode)
		}
		return nil, apperrors.Internal(body.Error, nil)
	}

	var resolution domainauth.Resolution
	if err := json.NewDecoder(resp.Body).Decode(&resolution); err != nil {
		return nil, fmt.Errorf("decode identity response: %w", err)
	}
	return &resolution, nil
}
