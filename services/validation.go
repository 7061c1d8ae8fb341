package services

import (
	"strings"
	"unicode/utf8"

	"github.com/lborres/quill/core"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MaxNameLength     = 100
	MaxBioLength      = 500
)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" {
		return core.ErrEmailRequired
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || domain == "" || strings.Contains(domain, "@") {
		return core.ErrInvalidEmail
	}
	if strings.ContainsAny(email, " \t\r\n") {
		return core.ErrInvalidEmail
	}
	return nil
}

func validateName(name string) error {
	if name == "" {
		return core.ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return core.ErrNameTooLong
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return core.ErrPasswordRequired
	}
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return core.ErrPasswordTooShort
	}
	if n > MaxPasswordLength {
		return core.ErrPasswordTooLong
	}
	return nil
}

func validateSignUp(input *core.SignUpInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = normalizeEmail(input.Email)

	if err := validateName(input.Name); err != nil {
		return err
	}
	if err := validateEmail(input.Email); err != nil {
		return err
	}
	return validatePassword(input.Password)
}
