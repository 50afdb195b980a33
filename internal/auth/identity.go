package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrUnverified is returned for any token that cannot be trusted: bad signature,
// expired, malformed, missing email, revoked, or an unreachable trust root.
var ErrUnverified = errors.New("token could not be verified")

// Identity is the verified claim set of one token.
type Identity struct {
	Subject   string
	Email     string
	Issuer    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
	// Claims holds every claim the issuer asserted.
	Claims map[string]any
}

// Verifier checks a raw bearer token against a trust root.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// identityFromClaims builds an Identity from already validated claims.
func identityFromClaims(claims jwt.MapClaims) (*Identity, error) {
	email, _ := claims["email"].(string)
	if email == "" {
		return nil, fmt.Errorf("%w: email claim missing", ErrUnverified)
	}
	id := &Identity{
		Email:  email,
		Claims: map[string]any(claims),
	}
	id.Subject, _ = claims.GetSubject()
	id.Issuer, _ = claims.GetIssuer()
	id.TokenID, _ = claims["jti"].(string)
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	return id, nil
}
