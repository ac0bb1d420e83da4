package common

import "errors"

// Token inspection errors. Match them with errors.Is.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrNoExpiry     = errors.New("token has no expiry")
)
