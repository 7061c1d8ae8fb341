package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/pkg/metrics"
)

// CSRFService issues and verifies CSRF tokens. The store only ever sees the
// SHA-256 of a token; the raw value goes to the client.
type CSRFService struct {
	store   core.TokenStore
	metrics *metrics.Metrics
}

var _ core.CSRFHandler = (*CSRFService)(nil)

func NewCSRFService(store core.TokenStore, m *metrics.Metrics) *CSRFService {
	return &CSRFService{store: store, metrics: m}
}

// Issue generates a fresh token for sessionKey, replacing any previous one.
func (s *CSRFService) Issue(ctx context.Context, sessionKey string) (string, error) {
	token, err := crypto.NewCSRFToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate csrf token: %w", err)
	}

	if err := s.store.Set(ctx, sessionKey, token.Digest); err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}

	s.metrics.CSRFIssued()
	return token.Value, nil
}

// Revoke drops the token for sessionKey. Revoking an unknown key is not an
// error.
func (s *CSRFService) Revoke(ctx context.Context, sessionKey string) error {
	if err := s.store.Delete(ctx, sessionKey); err != nil {
		return fmt.Errorf("failed to revoke csrf token: %w", err)
	}
	return nil
}

// Verify checks supplied against the current token for sessionKey.
func (s *CSRFService) Verify(ctx context.Context, sessionKey, supplied string) error {
	if supplied == "" {
		s.metrics.CSRFRejected(metrics.ReasonMissing)
		return core.ErrCSRFTokenMissing
	}

	stored, err := s.store.Get(ctx, sessionKey)
	if err != nil {
		if errors.Is(err, core.ErrTokenNotFound) {
			s.metrics.CSRFRejected(metrics.ReasonNotFound)
			return core.ErrCSRFTokenNotFound
		}
		s.metrics.CSRFRejected(metrics.ReasonStoreError)
		return fmt.Errorf("failed to load csrf token: %w", err)
	}

	if !crypto.MatchCSRFToken(supplied, stored) {
		s.metrics.CSRFRejected(metrics.ReasonInvalid)
		return core.ErrCSRFTokenInvalid
	}

	return nil
}
