package services

import (
	"context"
	"errors"
	"testing"

	"github.com/lborres/quill/core"
)

func TestCSRFService_Verify(t *testing.T) {
	tests := []struct {
		name     string
		issue    bool
		supplied func(issued string) string
		wantErr  error
	}{
		{name: "matching token", issue: true, supplied: func(issued string) string { return issued }, wantErr: nil},
		{name: "missing supplied token", issue: true, supplied: func(string) string { return "" }, wantErr: core.ErrCSRFTokenMissing},
		{name: "nothing issued", issue: false, supplied: func(string) string { return "right-value" }, wantErr: core.ErrCSRFTokenNotFound},
		{name: "wrong token", issue: true, supplied: func(string) string { return "wrong-value" }, wantErr: core.ErrCSRFTokenInvalid},
		{name: "missing beats not found", issue: false, supplied: func(string) string { return "" }, wantErr: core.ErrCSRFTokenMissing},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			// Arrange
			ctx := context.Background()
			env := newTestEnv(t)
			var issued string
			if test.issue {
				var err error
				issued, err = env.csrf.Issue(ctx, "anon:abc")
				if err != nil {
					t.Fatalf("Issue() error = %v", err)
				}
			}

			// Act
			err := env.csrf.Verify(ctx, "anon:abc", test.supplied(issued))

			// Assert
			if !errors.Is(err, test.wantErr) {
				t.Errorf("Verify() error = %v, want %v", err, test.wantErr)
			}
		})
	}
}

// Requirement: re-issuing for a key invalidates the previous token.
func TestCSRFService_IssueOverwrites(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)

	// Act
	first, _ := env.csrf.Issue(ctx, "user:1")
	second, _ := env.csrf.Issue(ctx, "user:1")

	// Assert
	if first == second {
		t.Fatal("Issue() returned the same token twice")
	}
	if err := env.csrf.Verify(ctx, "user:1", first); !errors.Is(err, core.ErrCSRFTokenInvalid) {
		t.Errorf("Verify(first) error = %v, want ErrCSRFTokenInvalid", err)
	}
	if err := env.csrf.Verify(ctx, "user:1", second); err != nil {
		t.Errorf("Verify(second) error = %v", err)
	}
	if env.tokens.Len() != 1 {
		t.Errorf("store holds %d tokens, want 1", env.tokens.Len())
	}
}

// Requirement: tokens are bound to their session key.
func TestCSRFService_KeysAreIsolated(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, _ := env.csrf.Issue(ctx, "user:1")
	_, _ = env.csrf.Issue(ctx, "user:2")

	if err := env.csrf.Verify(ctx, "user:2", token); !errors.Is(err, core.ErrCSRFTokenInvalid) {
		t.Errorf("Verify() across keys error = %v, want ErrCSRFTokenInvalid", err)
	}
}

// Requirement: a revoked token no longer verifies, and revoking twice is fine.
func TestCSRFService_Revoke(t *testing.T) {
	// Arrange
	ctx := context.Background()
	env := newTestEnv(t)
	token, _ := env.csrf.Issue(ctx, "user:1")

	// Act
	err := env.csrf.Revoke(ctx, "user:1")

	// Assert
	if err != nil {
		t.Fatalf("Revoke() error = %v", err)
	}
	if err := env.csrf.Verify(ctx, "user:1", token); !errors.Is(err, core.ErrCSRFTokenNotFound) {
		t.Errorf("Verify() after revoke error = %v, want ErrCSRFTokenNotFound", err)
	}
	if err := env.csrf.Revoke(ctx, "user:1"); err != nil {
		t.Errorf("second Revoke() error = %v", err)
	}
}

func TestCSRFService_StoresHashOnly(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t)

	token, _ := env.csrf.Issue(ctx, "user:1")
	stored, _ := env.tokens.Get(ctx, "user:1")

	if stored == token {
		t.Error("store should not hold the raw token")
	}
	if len(token) != 64 {
		t.Errorf("len(token) = %d, want 64 hex chars", len(token))
	}
}

func TestCSRFService_StoreFailures(t *testing.T) {
	ctx := context.Background()
	storeErr := errors.New("connection refused")

	t.Run("issue", func(t *testing.T) {
		env := newTestEnv(t)
		env.tokens.SetSetError(storeErr)

		if _, err := env.csrf.Issue(ctx, "user:1"); !errors.Is(err, storeErr) {
			t.Errorf("Issue() error = %v, want wrapped store error", err)
		}
	})

	t.Run("verify", func(t *testing.T) {
		env := newTestEnv(t)
		env.tokens.SetGetError(storeErr)

		err := env.csrf.Verify(ctx, "user:1", "token")
		if !errors.Is(err, storeErr) {
			t.Errorf("Verify() error = %v, want wrapped store error", err)
		}
		if errors.Is(err, core.ErrCSRFTokenNotFound) || errors.Is(err, core.ErrCSRFTokenInvalid) {
			t.Error("store failures must not look like CSRF rejections")
		}
	})
}
