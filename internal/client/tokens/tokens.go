// Package tokens inspects access tokens without verifying them. The client
// never holds the signing key; the claims are only used for display and
// logging, never to decide whether a token is still accepted.
package tokens

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/phoneshop/posclient/internal/common"
)

type Info struct {
	Subject   string
	ExpiresAt time.Time
}

// Inspect decodes the registered claims of a JWT access token.
// Opaque (non-JWT) tokens yield common.ErrInvalidToken.
func Inspect(token string) (Info, error) {
	claims := &jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Info{}, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	info := Info{Subject: claims.Subject}
	if claims.ExpiresAt != nil {
		info.ExpiresAt = claims.ExpiresAt.Time
	}
	return info, nil
}

// ExpiresAt returns the exp claim of token.
func ExpiresAt(token string) (time.Time, error) {
	info, err := Inspect(token)
	if err != nil {
		return time.Time{}, err
	}
	if info.ExpiresAt.IsZero() {
		return time.Time{}, common.ErrNoExpiry
	}
	return info.ExpiresAt, nil
}
