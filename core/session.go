package core

import (
	"strings"
	"unicode/utf8"
)

// AnonymousMode selects how callers without a credential are keyed in the
// CSRF token store.
type AnonymousMode string

const (
	// AnonymousCookie keys anonymous callers by an opaque id delivered in its
	// own cookie on first contact.
	AnonymousCookie AnonymousMode = "cookie"
	// AnonymousFingerprint keys anonymous callers by client IP and a truncated
	// User-Agent. Callers behind the same NAT with the same browser collide.
	AnonymousFingerprint AnonymousMode = "fingerprint"
)

func (m AnonymousMode) Valid() bool {
	return m == AnonymousCookie || m == AnonymousFingerprint
}

const (
	userSessionPrefix  = "user:"
	anonSessionPrefix  = "anon:"
	maxUserAgentLength = 50
	unknownUserAgent   = "unknown"
)

func UserSessionKey(subjectID string) string {
	return userSessionPrefix + subjectID
}

func AnonymousSessionKey(anonymousID string) string {
	return anonSessionPrefix + anonymousID
}

func FingerprintSessionKey(ip, userAgent string) string {
	ua := truncateRunes(strings.TrimSpace(userAgent), maxUserAgentLength)
	if ua == "" {
		ua = unknownUserAgent
	}
	return anonSessionPrefix + ip + ":" + ua
}

// SessionKey picks the CSRF lookup key for a request. Authenticated callers
// are always keyed by subject; anonymousKey is used otherwise.
func SessionKey(identity *Identity, anonymousKey string) string {
	if !identity.IsAnonymous() {
		return UserSessionKey(identity.SubjectID)
	}
	return anonymousKey
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
