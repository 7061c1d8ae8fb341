package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"golang.org/x/crypto/bcrypt"

	"github.com/lborres/quill/core"
)

// Requirement: SignUp creates a user with a credential account, mints a
// credential and issues a CSRF token for user:<id>.
func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name    string
		input   core.SignUpInput
		setup   func(*testEnv, *testing.T)
		wantErr error
	}{
		{
			name:  "creates user for valid input",
			input: core.SignUpInput{Name: " Alice ", Email: " Alice@Example.com ", Password: "SecurePass123!"},
		},
		{
			name:    "rejects empty name",
			input:   core.SignUpInput{Name: "  ", Email: "alice@example.com", Password: "SecurePass123!"},
			wantErr: core.ErrNameRequired,
		},
		{
			name:    "rejects empty email",
			input:   core.SignUpInput{Name: "Alice", Email: "", Password: "SecurePass123!"},
			wantErr: core.ErrEmailRequired,
		},
		{
			name:    "rejects malformed email",
			input:   core.SignUpInput{Name: "Alice", Email: "alice.example.com", Password: "SecurePass123!"},
			wantErr: core.ErrInvalidEmail,
		},
		{
			name:    "rejects empty password",
			input:   core.SignUpInput{Name: "Alice", Email: "alice@example.com", Password: ""},
			wantErr: core.ErrPasswordRequired,
		},
		{
			name:    "rejects short password",
			input:   core.SignUpInput{Name: "Alice", Email: "alice@example.com", Password: "short"},
			wantErr: core.ErrPasswordTooShort,
		},
		{
			name:    "rejects long password",
			input:   core.SignUpInput{Name: "Alice", Email: "alice@example.com", Password: strings.Repeat("p", 129)},
			wantErr: core.ErrPasswordTooLong,
		},
		{
			name:    "rejects long name",
			input:   core.SignUpInput{Name: strings.Repeat("n", 101), Email: "alice@example.com", Password: "SecurePass123!"},
			wantErr: core.ErrNameTooLong,
		},
		{
			name:  "rejects duplicate email",
			input: core.SignUpInput{Name: "Alice", Email: "ALICE@example.com", Password: "SecurePass123!"},
			setup: func(env *testEnv, t *testing.T) {
				env.seedUser(t, "alice@example.com", "whatever123", core.RoleUser)
			},
			wantErr: core.ErrUserExists,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			env := newTestEnv(t)
			if test.setup != nil {
				test.setup(env, t)
			}

			// Act
			result, err := env.auth.SignUp(ctx, test.input)

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignUp() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				return
			}
			if result.User.Email != "alice@example.com" || result.User.Name != "Alice" {
				t.Errorf("SignUp() user = %+v, want normalized name and email", result.User)
			}
			if result.User.Role != core.RoleUser || !result.User.IsActive {
				t.Errorf("SignUp() user role/active = %q/%v", result.User.Role, result.User.IsActive)
			}
			if result.Credential == "" || result.CSRFToken == "" {
				t.Error("SignUp() should mint a credential and a csrf token")
			}
			if err := env.csrf.Verify(ctx, core.UserSessionKey(result.User.ID), result.CSRFToken); err != nil {
				t.Errorf("issued csrf token does not verify for user key: %v", err)
			}
			if _, err := env.storage.GetAccountByUserAndProvider(ctx, result.User.ID, core.ProviderCredential); err != nil {
				t.Errorf("credential account missing: %v", err)
			}
		})
	}
}

// Requirement: SignIn authenticates by email and password; unknown email and
// wrong password fail identically.
func TestAuthService_SignIn(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		pass    string
		wantErr error
	}{
		{name: "valid credentials", email: "a@example.com", pass: "Secret123"},
		{name: "email is case insensitive", email: " A@Example.COM ", pass: "Secret123"},
		{name: "wrong password", email: "a@example.com", pass: "Secret124", wantErr: core.ErrInvalidCredentials},
		{name: "unknown email", email: "nobody@example.com", pass: "Secret123", wantErr: core.ErrInvalidCredentials},
		{name: "empty email", email: "", pass: "Secret123", wantErr: core.ErrEmailRequired},
		{name: "empty password", email: "a@example.com", pass: "", wantErr: core.ErrPasswordRequired},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			env := newTestEnv(t)
			seeded := env.seedUser(t, "a@example.com", "Secret123", core.RoleUser)

			// Act
			result, err := env.auth.SignIn(ctx, core.SignInInput{Email: test.email, Password: test.pass})

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Fatalf("SignIn() error = %v, want %v", err, test.wantErr)
			}
			if test.wantErr != nil {
				if result != nil {
					t.Error("SignIn() should not return a result on failure")
				}
				return
			}
			if result.User.ID != seeded.ID {
				t.Errorf("SignIn() user id = %q, want %q", result.User.ID, seeded.ID)
			}
			identity, err := env.identity.Resolve(result.Credential)
			if err != nil || identity.SubjectID != seeded.ID {
				t.Errorf("credential resolves to %+v, %v", identity, err)
			}
			if err := env.csrf.Verify(ctx, "user:"+seeded.ID, result.CSRFToken); err != nil {
				t.Errorf("csrf token not bound to user key: %v", err)
			}
		})
	}
}

// Requirement: a failed sign-up leaves no user behind, so the email can be
// registered again.
func TestAuthService_SignUp_AccountFailureRemovesUser(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	env.storage.SetCreateAccountError(errors.New("disk full"))
	input := core.SignUpInput{Name: "A", Email: "a@example.com", Password: "Secret123"}

	// Act
	_, err := env.auth.SignUp(ctx, input)

	// Assert
	if err == nil || errors.Is(err, core.ErrUserExists) {
		t.Fatalf("SignUp() error = %v, want account failure", err)
	}
	if _, err := env.storage.GetUserByEmail(ctx, "a@example.com"); !errors.Is(err, core.ErrUserNotFound) {
		t.Errorf("user left behind after failed sign-up: %v", err)
	}

	env.storage.SetCreateAccountError(nil)
	if _, err := env.auth.SignUp(ctx, input); err != nil {
		t.Errorf("retry SignUp() error = %v", err)
	}
}

func TestAuthService_SignIn_InactiveUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	user := env.seedUser(t, "a@example.com", "Secret123", core.RoleUser)
	user.IsActive = false
	_ = env.storage.UpdateUser(ctx, user)

	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: "a@example.com", Password: "Secret123"})

	if !errors.Is(err, core.ErrUserInactive) {
		t.Errorf("SignIn() error = %v, want ErrUserInactive", err)
	}
}

func TestAuthService_SignIn_FederatedOnlyUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	if _, err := env.auth.FederatedSignIn(ctx, core.FederatedSignInInput{Name: "G", Email: "g@example.com"}); err != nil {
		t.Fatalf("FederatedSignIn() error = %v", err)
	}

	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: "g@example.com", Password: "anything1"})

	if !errors.Is(err, core.ErrInvalidCredentials) {
		t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
	}
}

// Requirement: bcrypt hashes migrated from the old user store still log in and
// are upgraded to argon2id on success.
func TestAuthService_SignIn_UpgradesLegacyHash(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	user := &core.User{Email: "legacy@example.com", Name: "Legacy", Role: core.RoleUser, IsActive: true}
	_ = env.storage.CreateUser(ctx, user)
	legacy, _ := bcrypt.GenerateFromPassword([]byte("Secret123"), bcrypt.MinCost)
	hashed := string(legacy)
	_ = env.storage.CreateAccount(ctx, &core.Account{UserID: user.ID, ProviderID: core.ProviderCredential, AccountID: user.ID, Password: &hashed})

	// Act
	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: "legacy@example.com", Password: "Secret123"})

	// Assert
	if err != nil {
		t.Fatalf("SignIn() error = %v", err)
	}
	account, _ := env.storage.GetAccountByUserAndProvider(ctx, user.ID, core.ProviderCredential)
	if !strings.HasPrefix(*account.Password, "$argon2id$") {
		t.Errorf("password hash not upgraded: %q", *account.Password)
	}
}

func TestAuthService_SignIn_StorageFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	storageErr := errors.New("db down")
	env.storage.SetGetUserError(storageErr)

	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: "a@example.com", Password: "Secret123"})

	if !errors.Is(err, storageErr) {
		t.Errorf("SignIn() error = %v, want wrapped storage error", err)
	}
	if errors.Is(err, core.ErrInvalidCredentials) {
		t.Error("storage failures must not read as bad credentials")
	}
}

// Requirement: federated login creates the user on first contact and reuses
// it afterwards, linking a single google account.
func TestAuthService_FederatedSignIn(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	input := core.FederatedSignInInput{Name: "Grace", Email: "Grace@Example.com", Avatar: "https://img.example.com/g.png"}

	// Act
	first, err := env.auth.FederatedSignIn(ctx, input)
	if err != nil {
		t.Fatalf("FederatedSignIn() first error = %v", err)
	}
	second, err := env.auth.FederatedSignIn(ctx, input)
	if err != nil {
		t.Fatalf("FederatedSignIn() second error = %v", err)
	}

	// Assert
	if first.User.ID != second.User.ID {
		t.Errorf("second login created a new user: %q != %q", first.User.ID, second.User.ID)
	}
	if first.User.Email != "grace@example.com" {
		t.Errorf("email = %q, want normalized", first.User.Email)
	}
	if first.User.Avatar == nil || *first.User.Avatar != input.Avatar {
		t.Errorf("avatar = %v, want %q", first.User.Avatar, input.Avatar)
	}
	if first.Identity.Avatar != input.Avatar {
		t.Errorf("identity avatar = %q", first.Identity.Avatar)
	}
	if n := env.storage.AccountCount(first.User.ID); n != 1 {
		t.Errorf("account count = %d, want 1", n)
	}
	if err := env.csrf.Verify(ctx, core.UserSessionKey(first.User.ID), first.CSRFToken); !errors.Is(err, core.ErrCSRFTokenInvalid) {
		t.Errorf("first csrf token should be replaced, got %v", err)
	}
}

func TestAuthService_FederatedSignIn_LinksExistingUser(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	existing := env.seedUser(t, "a@example.com", "Secret123", core.RoleAdmin)

	result, err := env.auth.FederatedSignIn(ctx, core.FederatedSignInInput{Name: "A", Email: "a@example.com"})

	if err != nil {
		t.Fatalf("FederatedSignIn() error = %v", err)
	}
	if result.User.ID != existing.ID || result.Identity.Role != core.RoleAdmin {
		t.Errorf("FederatedSignIn() = %+v, want existing admin", result.User)
	}
	if n := env.storage.AccountCount(existing.ID); n != 2 {
		t.Errorf("account count = %d, want credential + google", n)
	}
}

func TestAuthService_FederatedSignIn_Validation(t *testing.T) {
	env := newTestEnv(t)

	if _, err := env.auth.FederatedSignIn(context.Background(), core.FederatedSignInInput{Email: "a@example.com"}); !errors.Is(err, core.ErrNameRequired) {
		t.Errorf("missing name error = %v, want ErrNameRequired", err)
	}
	if _, err := env.auth.FederatedSignIn(context.Background(), core.FederatedSignInInput{Name: "A"}); !errors.Is(err, core.ErrEmailRequired) {
		t.Errorf("missing email error = %v, want ErrEmailRequired", err)
	}
}

func TestAuthService_CSRFIssueFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)
	env.seedUser(t, "a@example.com", "Secret123", core.RoleUser)
	storeErr := errors.New("store unavailable")
	env.tokens.SetSetError(storeErr)

	_, err := env.auth.SignIn(ctx, core.SignInInput{Email: "a@example.com", Password: "Secret123"})

	if !errors.Is(err, storeErr) {
		t.Errorf("SignIn() error = %v, want wrapped store error", err)
	}
}
