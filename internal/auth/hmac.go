package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultTokenTTL is how long issued tokens stay valid.
const DefaultTokenTTL = time.Hour

// HMACVerifier issues and verifies HS256 tokens signed with a shared secret.
// It is the local trust root; production deployments verify against JWKS.
type HMACVerifier struct {
	secret   []byte
	issuer   string
	audience string
	leeway   time.Duration
}

var _ Verifier = (*HMACVerifier)(nil)

// NewHMACVerifier creates a verifier for the given secret. Empty issuer or
// audience disables that check.
func NewHMACVerifier(secret, issuer, audience string, leeway time.Duration) *HMACVerifier {
	return &HMACVerifier{
		secret:   []byte(secret),
		issuer:   issuer,
		audience: audience,
		leeway:   leeway,
	}
}

// Issue signs a token for email valid for ttl.
func (v *HMACVerifier) Issue(email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"email": email,
		"sub":   email,
		"jti":   uuid.NewString(),
		"iat":   jwt.NewNumericDate(now),
		"nbf":   jwt.NewNumericDate(now),
		"exp":   jwt.NewNumericDate(now.Add(ttl)),
	}
	if v.issuer != "" {
		claims["iss"] = v.issuer
	}
	if v.audience != "" {
		claims["aud"] = v.audience
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify validates a token and returns its identity.
func (v *HMACVerifier) Verify(_ context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	if v.audience != "" {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	return identityFromClaims(claims)
}
