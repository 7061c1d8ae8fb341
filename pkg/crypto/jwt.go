package crypto

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	ErrSecretEmpty  = errors.New("signing secret is empty")
)

// Claims is the payload of a credential token.
type Claims struct {
	jwt.RegisteredClaims

	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
	Role   string `json:"role"`
}

// JWTSigner mints and verifies HS256 credential tokens.
type JWTSigner struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewJWTSigner(secret []byte, ttl time.Duration) (*JWTSigner, error) {
	if len(secret) == 0 {
		return nil, ErrSecretEmpty
	}
	return &JWTSigner{secret: secret, ttl: ttl, now: time.Now}, nil
}

// WithClock replaces the time source; used by tests to mint already-expired tokens.
func (s *JWTSigner) WithClock(now func() time.Time) *JWTSigner {
	clone := *s
	clone.now = now
	return &clone
}

// Sign stamps issued-at and expiry onto claims and returns the signed token
// together with the claims as they were signed. Timestamps are truncated to
// whole seconds, the resolution of the encoded token.
func (s *JWTSigner) Sign(claims Claims) (string, *Claims, error) {
	issuedAt := s.now().Truncate(time.Second)
	claims.IssuedAt = jwt.NewNumericDate(issuedAt)
	claims.ExpiresAt = jwt.NewNumericDate(issuedAt.Add(s.ttl))

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, &claims, nil
}

// Parse verifies signature and expiry. Expired tokens yield ErrTokenExpired;
// every other failure yields ErrTokenInvalid.
func (s *JWTSigner) Parse(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	return claims, nil
}
