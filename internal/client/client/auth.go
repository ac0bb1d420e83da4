package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/client/session"
)

// Login signs in with identifier and secret. It is sent without credentials
// and never goes through the refresh path, so a 401 here simply means the
// credentials were rejected. On success the session is established.
func (c *HTTPClient) Login(ctx context.Context, identifier, secret string, roleHint models.Role) (session.Snapshot, error) {
	body, err := json.Marshal(models.LoginRequest{Identifier: identifier, Secret: secret, RoleHint: roleHint})
	if err != nil {
		return session.Snapshot{}, fmt.Errorf("encode login request: %w", err)
	}

	spec := RequestSpec{Method: http.MethodPost, Path: c.paths.Login}
	out := c.issue(ctx, spec, body, uuid.NewString(), "")
	if out.kind != outcomeOK {
		return session.Snapshot{}, out.err
	}

	var ar models.AuthResponse
	if err := json.Unmarshal(out.resp.Body, &ar); err != nil {
		return session.Snapshot{}, fmt.Errorf("%w: login: %v", ErrInvalidResponse, err)
	}
	pair := ar.Tokens()
	if pair.AccessToken == "" || ar.User == nil {
		return session.Snapshot{}, fmt.Errorf("%w: login response lacks access token or user", ErrInvalidResponse)
	}

	profile := ar.User.Profile()
	if err := c.store.Establish(ctx, profile, pair.AccessToken, pair.RefreshToken); err != nil {
		return session.Snapshot{}, err
	}

	c.log.Info(ctx, "signed in", "user_id", profile.ID, "role", profile.Role)
	return c.store.Snapshot(), nil
}

// Logout asks the backend to revoke the refresh token and then always ends
// the local session, whatever the backend answered or whether it answered.
func (c *HTTPClient) Logout(ctx context.Context) {
	snap := c.store.Snapshot()

	if snap.AccessToken != "" || snap.RefreshToken != "" {
		body, err := json.Marshal(models.LogoutRequest{RefreshToken: snap.RefreshToken})
		if err == nil {
			spec := RequestSpec{Method: http.MethodPost, Path: c.paths.Logout}
			out := c.issue(ctx, spec, body, uuid.NewString(), snap.AccessToken)
			if out.kind != outcomeOK {
				c.log.Warn(ctx, "backend logout failed, signing out locally", "error", out.err)
			}
		}
	}

	if err := c.store.Terminate(ctx); err != nil {
		c.log.Error(ctx, "terminate session", "error", err)
	}
	c.log.Info(ctx, "signed out")
}

// FetchCurrentUser re-validates the session against the backend and
// re-affirms it with the returned profile. Tokens in the response are
// adopted when present; otherwise the current ones are kept.
// If the session was ended while the call was in flight, the profile is
// returned but the session is not re-established.
func (c *HTTPClient) FetchCurrentUser(ctx context.Context) (models.UserProfile, error) {
	ar, err := Request[models.AuthResponse](ctx, c, RequestSpec{Method: http.MethodGet, Path: c.paths.Me})
	if err != nil {
		return models.UserProfile{}, err
	}
	if ar.User == nil {
		return models.UserProfile{}, fmt.Errorf("%w: me response lacks user", ErrInvalidResponse)
	}
	profile := ar.User.Profile()

	snap := c.store.Snapshot()
	access, refresh := snap.AccessToken, snap.RefreshToken
	if pair := ar.Tokens(); pair.AccessToken != "" {
		access = pair.AccessToken
		if pair.RefreshToken != "" {
			refresh = pair.RefreshToken
		}
	} else if access == "" {
		c.log.Debug(ctx, "session ended during profile fetch, not re-establishing")
		return profile, nil
	}

	if err := c.store.Establish(ctx, profile, access, refresh); err != nil {
		return profile, err
	}
	return profile, nil
}
