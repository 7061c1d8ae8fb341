package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
)

const (
	CredentialCookie = "access_token"
	CSRFCookie       = "csrf_token"
	AnonymousCookie  = "anon_session"

	CSRFHeader = "X-CSRF-Token"
	csrfField  = "csrfToken"

	CSRFCookieTTL      = 7 * 24 * time.Hour
	AnonymousCookieTTL = 7 * 24 * time.Hour
)

func (a *Adapter) setCookie(c fiber.Ctx, name, value string, httpOnly bool, ttl time.Duration) {
	c.Cookie(a.cookie(name, value, httpOnly, ttl))
}

// clearCookie expires name with the same attributes it was set with, so
// browsers match and drop it.
func (a *Adapter) clearCookie(c fiber.Ctx, name string, httpOnly bool) {
	cookie := a.cookie(name, "", httpOnly, 0)
	cookie.MaxAge = -1
	cookie.Expires = time.Unix(0, 0)
	c.Cookie(cookie)
}

func (a *Adapter) cookie(name, value string, httpOnly bool, ttl time.Duration) *fiber.Cookie {
	cookie := &fiber.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		HTTPOnly: httpOnly,
		SameSite: fiber.CookieSameSiteStrictMode,
	}
	if a.production {
		cookie.Secure = true
		cookie.SameSite = fiber.CookieSameSiteNoneMode
	}
	if ttl > 0 {
		cookie.MaxAge = int(ttl.Seconds())
		cookie.Expires = time.Now().Add(ttl)
	}
	return cookie
}

// deliverCSRF hands a freshly issued token to the client through the
// script-readable cookie and the response header. Handlers add it to the body.
func (a *Adapter) deliverCSRF(c fiber.Ctx, token string) {
	a.setCookie(c, CSRFCookie, token, false, CSRFCookieTTL)
	c.Set(CSRFHeader, token)
}
