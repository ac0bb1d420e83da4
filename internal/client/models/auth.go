package models

// TokenPair is the credential pair issued by the backend.
type TokenPair struct {
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthResponse is returned by login, me and refresh. Tokens may arrive
// nested under "auth" or at the top level; the nested form wins.
type AuthResponse struct {
	Auth *TokenPair `json:"auth,omitempty"`
	TokenPair
	User *APIUser `json:"user,omitempty"`
}

// Tokens returns the token pair carried by the response. Empty fields mean
// the backend did not send them.
func (r AuthResponse) Tokens() TokenPair {
	if r.Auth != nil && r.Auth.AccessToken != "" {
		return *r.Auth
	}
	return r.TokenPair
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Secret     string `json:"secret"`
	RoleHint   Role   `json:"roleHint,omitempty"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}
