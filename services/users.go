package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
)

type UserService struct {
	db             core.AuthStorage
	passwordHasher crypto.PasswordHandler
	csrf           core.CSRFHandler
}

var _ core.UserHandler = (*UserService)(nil)

func NewUserService(db core.AuthStorage, passwordHasher crypto.PasswordHandler, csrf core.CSRFHandler) *UserService {
	return &UserService{db: db, passwordHasher: passwordHasher, csrf: csrf}
}

func (s *UserService) GetUser(ctx context.Context, id string) (*core.User, error) {
	if id == "" {
		return nil, core.ErrUserIDRequired
	}
	user, err := s.db.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user, newest first.
func (s *UserService) ListUsers(ctx context.Context) ([]*core.User, error) {
	users, err := s.db.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// UpdateUser applies input to the user id. Only the user itself or an admin
// may do so. A password shorter than MinPasswordLength is ignored. Every
// field is validated before anything is written.
func (s *UserService) UpdateUser(ctx context.Context, actor *core.Identity, id string, input core.UpdateUserInput) (*core.User, error) {
	if id == "" {
		return nil, core.ErrUserIDRequired
	}
	if actor.IsAnonymous() {
		return nil, core.ErrUnauthenticated
	}
	if actor.SubjectID != id && !actor.IsAdmin() {
		return nil, core.ErrForbidden
	}

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if name := strings.TrimSpace(*input.Name); name != "" {
			if err := validateName(name); err != nil {
				return nil, err
			}
			user.Name = name
		}
	}
	if input.Email != nil {
		if email := normalizeEmail(*input.Email); email != "" {
			if err := validateEmail(email); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if input.Bio != nil {
		bio := strings.TrimSpace(*input.Bio)
		if utf8.RuneCountInString(bio) > MaxBioLength {
			return nil, core.ErrBioTooLong
		}
		user.Bio = &bio
	}

	var hashed string
	if input.Password != nil && utf8.RuneCountInString(*input.Password) >= MinPasswordLength {
		if utf8.RuneCountInString(*input.Password) > MaxPasswordLength {
			return nil, core.ErrPasswordTooLong
		}
		if hashed, err = s.passwordHasher.Hash(*input.Password); err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
	}

	if err := s.db.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, core.ErrUserExists) || errors.Is(err, core.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if hashed != "" {
		if err := s.setPassword(ctx, user.ID, hashed); err != nil {
			return nil, err
		}
	}

	return user, nil
}

// setPassword stores an already hashed password on the credential account.
func (s *UserService) setPassword(ctx context.Context, userID, hashed string) error {
	account, err := s.db.GetAccountByUserAndProvider(ctx, userID, core.ProviderCredential)
	if errors.Is(err, core.ErrAccountNotFound) {
		// federated users gain a password login
		account = &core.Account{
			UserID:     userID,
			ProviderID: core.ProviderCredential,
			AccountID:  userID,
			Password:   &hashed,
		}
		if err := s.db.CreateAccount(ctx, account); err != nil {
			return fmt.Errorf("failed to create account: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get account: %w", err)
	}

	account.Password = &hashed
	if err := s.db.UpdateAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (s *UserService) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrUserIDRequired
	}
	if err := s.db.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	// the deleted user's token must not outlive them in a shared store
	return s.csrf.Revoke(ctx, core.UserSessionKey(id))
}
