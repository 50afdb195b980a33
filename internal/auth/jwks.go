package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWKSConfig configures verification against an identity provider's JWKS endpoint.
type JWKSConfig struct {
	URL      string
	Issuer   string
	Audience string

	ClockSkew time.Duration
	// RefreshInterval forces a key refetch to pick up rotation.
	RefreshInterval time.Duration
	// MinRefreshInterval bounds refetches triggered by unknown key IDs.
	MinRefreshInterval time.Duration
	HTTPTimeout        time.Duration
}

// JWKSVerifier verifies RS256 tokens with public keys published by the provider.
type JWKSVerifier struct {
	cfg    JWKSConfig
	client *http.Client
	now    func() time.Time

	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	lastRefresh time.Time
	retryAfter  time.Time
	refreshing  bool
	refreshDone chan struct{}
}

var _ Verifier = (*JWKSVerifier)(nil)

// NewJWKSVerifier creates a verifier. A nil client gets one with cfg.HTTPTimeout.
func NewJWKSVerifier(cfg JWKSConfig, client *http.Client) *JWKSVerifier {
	if client == nil {
		client = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &JWKSVerifier{
		cfg:    cfg,
		client: client,
		now:    time.Now,
		keys:   map[string]*rsa.PublicKey{},
	}
}

// Verify checks signature, issuer, audience, expiry and not-before.
func (v *JWKSVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.cfg.ClockSkew),
		jwt.WithTimeFunc(v.now),
	}
	if v.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.cfg.Issuer))
	}
	if v.cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(v.cfg.Audience))
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("missing kid")
		}
		if err := v.maybeRefresh(ctx, kid); err != nil {
			return nil, err
		}
		key := v.key(kid)
		if key == nil {
			return nil, fmt.Errorf("unknown kid %q", kid)
		}
		return key, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnverified, err)
	}
	return identityFromClaims(claims)
}

func (v *JWKSVerifier) key(kid string) *rsa.PublicKey {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.keys[kid]
}

// maybeRefresh refetches the key set when the rotation interval has passed, or
// when kid is unknown and the last fetch is older than MinRefreshInterval.
// Concurrent callers share one fetch. A failed fetch is not retried for
// MinRefreshInterval, and keys already held stay in use meanwhile.
func (v *JWKSVerifier) maybeRefresh(ctx context.Context, kid string) error {
	now := v.now()

	v.mu.Lock()
	if now.Before(v.retryAfter) {
		v.mu.Unlock()
		return nil
	}
	intervalDue := !v.lastRefresh.IsZero() && v.cfg.RefreshInterval > 0 && now.Sub(v.lastRefresh) >= v.cfg.RefreshInterval
	unknownKid := v.keys[kid] == nil
	unknownAllowed := v.lastRefresh.IsZero() || v.cfg.MinRefreshInterval <= 0 || now.Sub(v.lastRefresh) >= v.cfg.MinRefreshInterval
	if !intervalDue && !(unknownKid && unknownAllowed) {
		v.mu.Unlock()
		return nil
	}

	if v.refreshing {
		ch := v.refreshDone
		v.mu.Unlock()
		select {
		case <-ch:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	v.refreshing = true
	v.refreshDone = make(chan struct{})
	ch := v.refreshDone
	v.mu.Unlock()

	err := v.refresh(ctx)

	v.mu.Lock()
	v.refreshing = false
	if err != nil && v.cfg.MinRefreshInterval > 0 {
		v.retryAfter = now.Add(v.cfg.MinRefreshInterval)
	}
	close(ch)
	v.mu.Unlock()

	if err != nil && !unknownKid {
		return nil
	}
	return err
}

func (v *JWKSVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.cfg.URL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch jwks: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("fetch jwks: status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read jwks: %w", err)
	}
	keys, err := parseJWKS(body)
	if err != nil {
		return err
	}

	v.mu.Lock()
	v.keys = keys
	v.lastRefresh = v.now()
	v.mu.Unlock()
	return nil
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Alg string `json:"alg"`
	Use string `json:"use"`
	N   string `json:"n"`
	E   string `json:"e"`
}

// parseJWKS extracts the RSA signing keys of a JWK set, indexed by kid.
func parseJWKS(b []byte) (map[string]*rsa.PublicKey, error) {
	var set jwkSet
	if err := json.Unmarshal(b, &set); err != nil {
		return nil, fmt.Errorf("decode jwks: %w", err)
	}
	out := make(map[string]*rsa.PublicKey, len(set.Keys))
	for _, k := range set.Keys {
		if k.Kty != "RSA" || k.Kid == "" || k.N == "" || k.E == "" {
			continue
		}
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		nb, err := base64.RawURLEncoding.DecodeString(k.N)
		if err != nil {
			return nil, fmt.Errorf("decode jwk %s modulus: %w", k.Kid, err)
		}
		eb, err := base64.RawURLEncoding.DecodeString(k.E)
		if err != nil {
			return nil, fmt.Errorf("decode jwk %s exponent: %w", k.Kid, err)
		}
		e := new(big.Int).SetBytes(eb)
		if !e.IsInt64() || e.Int64() <= 1 || e.Int64() > int64(^uint32(0)>>1) {
			return nil, fmt.Errorf("jwk %s: invalid exponent", k.Kid)
		}
		out[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nb), E: int(e.Int64())}
	}
	if len(out) == 0 {
		return nil, errors.New("jwks has no usable keys")
	}
	return out, nil
}
