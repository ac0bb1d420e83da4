package client

import (
	"context"

	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/client/session"
)

// Client is the surface UI collaborators use.
type Client interface {
	Doer
	Login(ctx context.Context, identifier, secret string, roleHint models.Role) (session.Snapshot, error)
	Logout(ctx context.Context)
	FetchCurrentUser(ctx context.Context) (models.UserProfile, error)
	Session() SessionView
}

// SessionView is the read-only side of the session, for UI gating.
type SessionView interface {
	Snapshot() session.Snapshot
	IsAuthenticated() bool
	User() *models.UserProfile
	Subscribe(fn func(session.Snapshot)) (cancel func())
}

var _ Client = (*HTTPClient)(nil)
