package crypto

import (
	"encoding/hex"
	"sync"
	"testing"
)

// Requirement: CSRF tokens carry 256 bits of entropy, hex-encoded, and the
// digest is the SHA-256 of the value.
func TestNewCSRFToken(t *testing.T) {
	// Act
	token, err := NewCSRFToken()

	// Assert
	if err != nil {
		t.Fatalf("NewCSRFToken() error = %v", err)
	}
	raw, err := hex.DecodeString(token.Value)
	if err != nil {
		t.Fatalf("value is not hex: %v", err)
	}
	if len(raw) != 32 {
		t.Errorf("value carries %d bytes, want 32", len(raw))
	}
	if token.Digest == token.Value || token.Digest != DigestCSRFToken(token.Value) {
		t.Errorf("digest %q is not the SHA-256 of the value", token.Digest)
	}
	if len(token.Digest) != 64 {
		t.Errorf("len(digest) = %d, want 64", len(token.Digest))
	}
}

func TestDigestCSRFToken_KnownValue(t *testing.T) {
	const want = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if got := DigestCSRFToken(""); got != want {
		t.Errorf("DigestCSRFToken(\"\") = %q, want %q", got, want)
	}
}

func TestNewCSRFToken_ConcurrentUnique(t *testing.T) {
	// Arrange
	var mu sync.Mutex
	seen := make(map[string]bool)
	var wg sync.WaitGroup

	// Act
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := NewCSRFToken()
			if err != nil {
				t.Error(err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[token.Value] {
				t.Errorf("duplicate token %q", token.Value)
			}
			seen[token.Value] = true
		}()
	}
	wg.Wait()
}

func TestMatchCSRFToken(t *testing.T) {
	token, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("NewCSRFToken() error = %v", err)
	}

	tests := []struct {
		name     string
		supplied string
		digest   string
		want     bool
	}{
		{name: "matching value", supplied: token.Value, digest: token.Digest, want: true},
		{name: "wrong value", supplied: "wrong-value", digest: token.Digest},
		{name: "digest replayed as value", supplied: token.Digest, digest: token.Digest},
		{name: "empty value", supplied: "", digest: token.Digest},
		{name: "empty digest", supplied: token.Value, digest: ""},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := MatchCSRFToken(test.supplied, test.digest); got != test.want {
				t.Errorf("MatchCSRFToken() = %v, want %v", got, test.want)
			}
		})
	}
}
