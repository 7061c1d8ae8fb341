package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
)

// AuthService performs credential checks and, on success, mints the
// credential token and issues a CSRF token for the user's session key.
type AuthService struct {
	db             core.AuthStorage
	passwordHasher crypto.PasswordHandler
	identity       *IdentityResolver
	csrf           core.CSRFHandler
}

// Ensure AuthService implements AuthHandler
var _ core.AuthHandler = (*AuthService)(nil)

func NewAuthService(db core.AuthStorage, passwordHasher crypto.PasswordHandler, identity *IdentityResolver, csrf core.CSRFHandler) *AuthService {
	return &AuthService{
		db:             db,
		passwordHasher: passwordHasher,
		identity:       identity,
		csrf:           csrf,
	}
}

// SignUp registers a new user with email and password
func (s *AuthService) SignUp(ctx context.Context, input core.SignUpInput) (*core.AuthResult, error) {
	if err := validateSignUp(&input); err != nil {
		return nil, err
	}

	// Step 1: Check if user already exists
	existing, err := s.db.GetUserByEmail(ctx, input.Email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		return nil, core.ErrUserExists
	}

	// Step 2: Hash the password
	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	user := &core.User{
		Email:    input.Email,
		Name:     input.Name,
		Role:     core.RoleUser,
		IsActive: true,
	}
	if err := s.db.CreateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 4: Create a credential account for this user
	account := &core.Account{
		UserID:     user.ID,
		ProviderID: core.ProviderCredential,
		AccountID:  user.ID, // For credential provider, account ID = user ID
		Password:   &hashedPassword,
	}
	if err := s.db.CreateAccount(ctx, account); err != nil {
		// a user without an account would hold the email forever
		if delErr := s.db.DeleteUser(ctx, user.ID); delErr != nil {
			return nil, fmt.Errorf("failed to create account: %w (rollback failed: %v)", err, delErr)
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	return s.complete(ctx, user)
}

// SignIn authenticates a user with email and password. Unknown emails and
// wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, input core.SignInInput) (*core.AuthResult, error) {
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	// Step 1: Find the user by email
	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 2: Get the credential account for this user
	account, err := s.db.GetAccountByUserAndProvider(ctx, user.ID, core.ProviderCredential)
	if err != nil {
		if errors.Is(err, core.ErrAccountNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account.Password == nil {
		return nil, core.ErrInvalidCredentials
	}

	// Step 3: Verify the password
	valid, err := s.passwordHasher.Verify(input.Password, *account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, core.ErrUserInactive
	}

	// Step 4: Upgrade legacy hashes now that the plaintext is known
	if crypto.NeedsRehash(*account.Password) {
		if rehashed, err := s.passwordHasher.Hash(input.Password); err == nil {
			account.Password = &rehashed
			if err := s.db.UpdateAccount(ctx, account); err != nil {
				return nil, fmt.Errorf("failed to upgrade password hash: %w", err)
			}
		}
	}

	return s.complete(ctx, user)
}

// FederatedSignIn signs in a user whose email was asserted by an external
// identity provider, creating the user on first contact.
func (s *AuthService) FederatedSignIn(ctx context.Context, input core.FederatedSignInInput) (*core.AuthResult, error) {
	name := strings.TrimSpace(input.Name)
	email := normalizeEmail(input.Email)
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, core.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user == nil {
		user = &core.User{
			Email:    email,
			Name:     name,
			Role:     core.RoleUser,
			IsActive: true,
		}
		if avatar := strings.TrimSpace(input.Avatar); avatar != "" {
			user.Avatar = &avatar
		}
		if err := s.db.CreateUser(ctx, user); err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	}
	if !user.IsActive {
		return nil, core.ErrUserInactive
	}

	if err := s.linkFederatedAccount(ctx, user, email); err != nil {
		return nil, err
	}

	return s.complete(ctx, user)
}

func (s *AuthService) linkFederatedAccount(ctx context.Context, user *core.User, email string) error {
	_, err := s.db.GetAccountByUserAndProvider(ctx, user.ID, core.ProviderGoogle)
	if err == nil {
		return nil
	}
	if !errors.Is(err, core.ErrAccountNotFound) {
		return fmt.Errorf("failed to get account: %w", err)
	}

	account := &core.Account{
		UserID:     user.ID,
		ProviderID: core.ProviderGoogle,
		AccountID:  email,
	}
	if err := s.db.CreateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

// complete mints the credential and issues a CSRF token bound to user:<id>,
// in that order.
func (s *AuthService) complete(ctx context.Context, user *core.User) (*core.AuthResult, error) {
	credential, identity, err := s.identity.Mint(user)
	if err != nil {
		return nil, err
	}

	csrfToken, err := s.csrf.Issue(ctx, core.UserSessionKey(user.ID))
	if err != nil {
		return nil, fmt.Errorf("failed to issue csrf token: %w", err)
	}

	return &core.AuthResult{
		User:       user,
		Identity:   identity,
		Credential: credential,
		CSRFToken:  csrfToken,
	}, nil
}
