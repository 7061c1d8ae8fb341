package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/metrics"
)

type authResponse struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	User      *core.User `json:"user"`
	CSRFToken string     `json:"csrfToken"`
}

func (a *Adapter) register(c fiber.Ctx) error {
	var input core.SignUpInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	result, err := a.q.Auth.SignUp(c.Context(), input)
	if err != nil {
		return a.fail(c, err)
	}

	a.establishSession(c, result)
	return c.Status(http.StatusCreated).JSON(authResponse{
		Success:   true,
		Message:   "Registration successful.",
		User:      result.User,
		CSRFToken: result.CSRFToken,
	})
}

func (a *Adapter) login(c fiber.Ctx) error {
	var input core.SignInInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	result, err := a.q.Auth.SignIn(c.Context(), input)
	if err != nil {
		if errors.Is(err, core.ErrInvalidCredentials) {
			a.q.Metrics.AuthFailed(metrics.ReasonBadCredential)
		}
		return a.fail(c, err)
	}

	a.establishSession(c, result)
	return c.Status(http.StatusOK).JSON(authResponse{
		Success:   true,
		Message:   "Login successful.",
		User:      result.User,
		CSRFToken: result.CSRFToken,
	})
}

func (a *Adapter) googleLogin(c fiber.Ctx) error {
	var input core.FederatedSignInInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	result, err := a.q.Auth.FederatedSignIn(c.Context(), input)
	if err != nil {
		return a.fail(c, err)
	}

	a.establishSession(c, result)
	return c.Status(http.StatusOK).JSON(authResponse{
		Success:   true,
		Message:   "Login successful.",
		User:      result.User,
		CSRFToken: result.CSRFToken,
	})
}

// establishSession sets the credential cookie and delivers the CSRF token
// issued for the user's session key.
func (a *Adapter) establishSession(c fiber.Ctx, result *core.AuthResult) {
	a.setCookie(c, CredentialCookie, result.Credential, true, a.q.CredentialTTL)
	a.deliverCSRF(c, result.CSRFToken)
}

// logout clears the credential cookie. The CSRF token stays bound to the
// user's session key and is replaced on the next login.
func (a *Adapter) logout(c fiber.Ctx) error {
	a.clearCookie(c, CredentialCookie, true)

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Logout successful.",
	})
}

func (a *Adapter) verify(c fiber.Ctx) error {
	identity := IdentityFrom(c)
	if identity.IsAnonymous() {
		return a.fail(c, core.ErrUnauthenticated)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    identity,
	})
}

// csrfToken issues a fresh token for the caller's session key. Only hashes
// are stored, so an existing token cannot be handed back; each call rotates.
func (a *Adapter) csrfToken(c fiber.Ctx) error {
	token, err := a.q.CSRF.Issue(c.Context(), SessionKeyFrom(c))
	if err != nil {
		return a.fail(c, err)
	}

	a.deliverCSRF(c, token)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":   true,
		"csrfToken": token,
	})
}

func (a *Adapter) getUser(c fiber.Ctx) error {
	user, err := a.q.Users.GetUser(c.Context(), c.Params("userid"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User data found.",
		"user":    user,
	})
}

func (a *Adapter) updateUser(c fiber.Ctx) error {
	var input core.UpdateUserInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	user, err := a.q.Users.UpdateUser(c.Context(), IdentityFrom(c), c.Params("userid"), input)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Profile updated successfully.",
		"user":    user,
	})
}

func (a *Adapter) listUsers(c fiber.Ctx) error {
	users, err := a.q.Users.ListUsers(c.Context())
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"user":    users,
	})
}

func (a *Adapter) deleteUser(c fiber.Ctx) error {
	if err := a.q.Users.DeleteUser(c.Context(), c.Params("id")); err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User deleted successfully.",
	})
}
