package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenStatus classifies an access token without touching the network.
type TokenStatus int

const (
	// TokenValid means the token is structurally sound and carries an
	// expiry claim. Whether it is usable still depends on the clock.
	TokenValid TokenStatus = iota
	// TokenMalformed means the token is not a three-segment JWT or its
	// claims segment does not decode.
	TokenMalformed
	// TokenMissingExpiry means the claims decode but carry no exp claim.
	TokenMissingExpiry
)

// TokenInfo is the result of inspecting an access token.
type TokenInfo struct {
	Status    TokenStatus
	ExpiresAt time.Time // zero unless Status == TokenValid
}

// InspectToken decodes the token's claims segment and extracts the expiry
// claim. The signature is deliberately not verified: the client holds no
// signing key, and validity here only means "worth sending". Malformed
// input is a status, never an error.
func InspectToken(token string) TokenInfo {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return TokenInfo{Status: TokenMalformed}
	}

	exp, err := claims.GetExpirationTime()
	if err != nil {
		return TokenInfo{Status: TokenMalformed}
	}
	if exp == nil {
		return TokenInfo{Status: TokenMissingExpiry}
	}

	return TokenInfo{Status: TokenValid, ExpiresAt: exp.Time}
}

// IsTokenValid reports whether the access token may be attached to a
// request right now: well-formed, expiry present, and strictly in the
// future. An expired token must never be sent.
func IsTokenValid(token string) bool {
	info := InspectToken(token)
	return info.Status == TokenValid && info.ExpiresAt.After(time.Now())
}
