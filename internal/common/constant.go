// Package common contains shared constants and helpers used across the
// POS client components.
package common

// AuthorizationHeaderName carries the bearer access token on outbound requests.
const AuthorizationHeaderName = "Authorization"

// BearerPrefix is prepended to the access token in the Authorization header.
const BearerPrefix = "Bearer "

// RequestIDHeaderName correlates a logical request and its retry in backend logs.
const RequestIDHeaderName = "X-Request-ID"

// Durable storage keys of the session credentials.
const (
	AccessTokenKey  = "access_token"
	RefreshTokenKey = "refresh_token"
	UserKey         = "user"
)

// CredentialKeys lists every key the session store owns.
var CredentialKeys = []string{AccessTokenKey, RefreshTokenKey, UserKey}
