package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// csrfTokenBytes gives CSRF tokens 256 bits of entropy.
const csrfTokenBytes = 32

// CSRFToken is a freshly minted token. Value goes to the client and only
// Digest is kept server side, so a leaked store cannot be replayed.
type CSRFToken struct {
	Value  string
	Digest string
}

// NewCSRFToken reads csrfTokenBytes from crypto/rand and hex-encodes them.
func NewCSRFToken() (CSRFToken, error) {
	raw := make([]byte, csrfTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return CSRFToken{}, err
	}

	value := hex.EncodeToString(raw)
	return CSRFToken{Value: value, Digest: DigestCSRFToken(value)}, nil
}

// DigestCSRFToken is the hex SHA-256 of value.
func DigestCSRFToken(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// MatchCSRFToken reports whether supplied hashes to digest. Empty inputs
// never match.
func MatchCSRFToken(supplied, digest string) bool {
	if supplied == "" || digest == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(DigestCSRFToken(supplied)), []byte(digest)) == 1
}
