package auth

import (
	"context"
	"fmt"
)

// RevocationVerifier rejects otherwise valid tokens whose ID was revoked.
type RevocationVerifier struct {
	next Verifier
	list RevocationList
}

var _ Verifier = (*RevocationVerifier)(nil)

// WithRevocation decorates next with a revocation check.
func WithRevocation(next Verifier, list RevocationList) *RevocationVerifier {
	return &RevocationVerifier{next: next, list: list}
}

func (v *RevocationVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	id, err := v.next.Verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if id.TokenID == "" {
		return id, nil
	}
	revoked, err := v.list.IsRevoked(ctx, id.TokenID)
	if err != nil {
		return nil, fmt.Errorf("%w: revocation check: %v", ErrUnverified, err)
	}
	if revoked {
		return nil, fmt.Errorf("%w: token revoked", ErrUnverified)
	}
	return id, nil
}
