package services

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
)

// IdentityResolver mints credential tokens and decodes them back into the
// request identity. It holds no state beyond the signer.
type IdentityResolver struct {
	signer *crypto.JWTSigner
}

var _ core.IdentityHandler = (*IdentityResolver)(nil)

func NewIdentityResolver(signer *crypto.JWTSigner) *IdentityResolver {
	return &IdentityResolver{signer: signer}
}

// Mint signs a credential token for u and returns it with the identity it encodes.
func (r *IdentityResolver) Mint(u *core.User) (string, *core.Identity, error) {
	identity := core.IdentityFromUser(u)

	token, signed, err := r.signer.Sign(crypto.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: identity.SubjectID},
		Name:             identity.Name,
		Email:            identity.Email,
		Avatar:           identity.Avatar,
		Role:             string(identity.Role),
	})
	if err != nil {
		return "", nil, fmt.Errorf("failed to mint credential: %w", err)
	}

	return token, identityFromClaims(signed), nil
}

func (r *IdentityResolver) Resolve(token string) (*core.Identity, error) {
	if token == "" {
		return nil, core.ErrUnauthenticated
	}

	claims, err := r.signer.Parse(token)
	if err != nil {
		if errors.Is(err, crypto.ErrTokenExpired) {
			return nil, core.ErrSessionExpired
		}
		return nil, core.ErrInvalidToken
	}

	return identityFromClaims(claims), nil
}

func (r *IdentityResolver) ResolveOptional(token string) *core.Identity {
	identity, err := r.Resolve(token)
	if err != nil {
		return core.Anonymous()
	}
	return identity
}

func identityFromClaims(c *crypto.Claims) *core.Identity {
	identity := &core.Identity{
		SubjectID: c.Subject,
		Name:      c.Name,
		Email:     c.Email,
		Avatar:    c.Avatar,
		Role:      core.Role(c.Role),
	}
	if c.IssuedAt != nil {
		identity.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		identity.ExpiresAt = c.ExpiresAt.Time
	}
	return identity
}
