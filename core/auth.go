package core

// SignUpInput contains the data needed to register a new user
type SignUpInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// FederatedSignInInput carries the profile asserted by an external identity
// provider.
type FederatedSignInInput struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar"`
}

// AuthResult is produced by every successful sign-up or sign-in. Credential is
// the signed token for the transport cookie; CSRFToken was issued for the
// user's session key.
type AuthResult struct {
	User       *User     `json:"user"`
	Identity   *Identity `json:"-"`
	Credential string    `json:"-"`
	CSRFToken  string    `json:"csrfToken"`
}

// UpdateUserInput holds optional profile changes. Nil fields are left alone.
type UpdateUserInput struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Bio      *string `json:"bio"`
	Password *string `json:"password"`
}
