package auth

import (
	"context"
	"fmt"
	"time"

	"foreverhome/internal/kv"
)

const revokedTokenKeyPrefix = "revoked:token:"

// RevocationList records token IDs that must no longer be accepted.
type RevocationList interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// TokenStore keeps revoked token IDs in Redis until the token would have expired anyway.
type TokenStore struct {
	kv *kv.Client
}

var _ RevocationList = (*TokenStore)(nil)

// NewTokenStore creates a new token store.
func NewTokenStore(client *kv.Client) *TokenStore {
	return &TokenStore{kv: client}
}

// Revoke marks tokenID as revoked for ttl. It fails when Redis cannot record it.
func (s *TokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if err := s.kv.Set(ctx, revokedTokenKeyPrefix+tokenID, []byte("1"), ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// IsRevoked checks the revocation marker. Unavailable Redis reads as not revoked.
func (s *TokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	return s.kv.Exists(ctx, revokedTokenKeyPrefix+tokenID), nil
}
