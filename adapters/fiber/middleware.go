package fiber

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/metrics"
)

type localsKey int

const (
	identityKey localsKey = iota
	sessionKeyKey
)

// IdentityFrom returns the identity resolved for this request, or the
// anonymous identity when none was attached.
func IdentityFrom(c fiber.Ctx) *core.Identity {
	if identity, ok := c.Locals(identityKey).(*core.Identity); ok && identity != nil {
		return identity
	}
	return core.Anonymous()
}

// SessionKeyFrom returns the CSRF session key computed for this request.
func SessionKeyFrom(c fiber.Ctx) string {
	key, _ := c.Locals(sessionKeyKey).(string)
	return key
}

// optionalAuth attaches the credential's identity, or anonymous on any failure.
func (a *Adapter) optionalAuth(c fiber.Ctx) error {
	c.Locals(identityKey, a.q.Identity.ResolveOptional(c.Cookies(CredentialCookie)))
	return c.Next()
}

// anonymousSession computes the CSRF session key. Authenticated callers use
// user:<id>; everyone else is keyed by the anon_session cookie (minted on
// first contact) or, in fingerprint mode, by IP and User-Agent.
func (a *Adapter) anonymousSession(c fiber.Ctx) error {
	identity := IdentityFrom(c)

	var anonymousKey string
	if identity.IsAnonymous() {
		switch a.anonymousMode {
		case core.AnonymousFingerprint:
			anonymousKey = core.FingerprintSessionKey(c.IP(), c.Get(fiber.HeaderUserAgent))
		default:
			id := c.Cookies(AnonymousCookie)
			if !a.anonIDs.Valid(id) {
				var err error
				if id, err = a.anonIDs.Generate(); err != nil {
					return a.fail(c, err)
				}
				a.setCookie(c, AnonymousCookie, id, true, AnonymousCookieTTL)
			}
			anonymousKey = core.AnonymousSessionKey(id)
		}
	}

	c.Locals(sessionKeyKey, core.SessionKey(identity, anonymousKey))
	return c.Next()
}

// csrfGuard lets safe methods through and checks the supplied token on
// everything else.
func (a *Adapter) csrfGuard(c fiber.Ctx) error {
	switch c.Method() {
	case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
		return c.Next()
	}

	if err := a.q.CSRF.Verify(c.Context(), SessionKeyFrom(c), extractCSRFToken(c)); err != nil {
		return a.fail(c, err)
	}
	return c.Next()
}

// extractCSRFToken reads the supplied token from the header, then the body
// field, then the query string.
func extractCSRFToken(c fiber.Ctx) string {
	if token := c.Get(CSRFHeader); token != "" {
		return token
	}

	if strings.HasPrefix(strings.ToLower(c.Get(fiber.HeaderContentType)), fiber.MIMEApplicationJSON) {
		var body struct {
			CSRFToken string `json:"csrfToken"`
		}
		if err := json.Unmarshal(c.Body(), &body); err == nil && body.CSRFToken != "" {
			return body.CSRFToken
		}
	} else if token := c.FormValue(csrfField); token != "" {
		return token
	}

	return c.Query(csrfField)
}

// requireAuth is the strict identity stage.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	if _, err := a.resolveStrict(c); err != nil {
		return a.fail(c, err)
	}
	return c.Next()
}

// onlyAdmin is the strict identity stage followed by a role check.
func (a *Adapter) onlyAdmin(c fiber.Ctx) error {
	identity, err := a.resolveStrict(c)
	if err != nil {
		return a.fail(c, err)
	}
	if !identity.IsAdmin() {
		a.q.Metrics.AuthFailed(metrics.ReasonForbidden)
		return a.fail(c, core.ErrForbidden)
	}
	return c.Next()
}

func (a *Adapter) resolveStrict(c fiber.Ctx) (*core.Identity, error) {
	identity, err := a.q.Identity.Resolve(c.Cookies(CredentialCookie))
	if err != nil {
		a.q.Metrics.AuthFailed(authFailureReason(err))
		return nil, err
	}
	c.Locals(identityKey, identity)
	return identity, nil
}

func authFailureReason(err error) string {
	switch {
	case errors.Is(err, core.ErrUnauthenticated):
		return metrics.ReasonNoCredential
	case errors.Is(err, core.ErrSessionExpired):
		return metrics.ReasonExpired
	case errors.Is(err, core.ErrInvalidCredentials):
		return metrics.ReasonBadCredential
	default:
		return metrics.ReasonInvalidToken
	}
}
