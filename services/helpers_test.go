package services

import (
	"context"
	"testing"
	"time"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
)

const testSecret = "test-secret-test-secret-test-secret"

type testEnv struct {
	storage   *FakeStorageProvider
	tokens    *FakeTokenStore
	passwords crypto.PasswordHandler
	identity  *IdentityResolver
	csrf      *CSRFService
	auth      *AuthService
	users     *UserService
	content   *ContentService
}

// cheap argon2 parameters; the production defaults make the suite slow
func testPasswords() crypto.PasswordHandler {
	return &crypto.Argon2{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	signer, err := crypto.NewJWTSigner([]byte(testSecret), 7*24*time.Hour)
	if err != nil {
		t.Fatalf("NewJWTSigner() error = %v", err)
	}

	env := &testEnv{
		storage:   NewFakeStorageProvider(),
		tokens:    NewFakeTokenStore(),
		passwords: testPasswords(),
		identity:  NewIdentityResolver(signer),
	}
	env.csrf = NewCSRFService(env.tokens, nil)
	env.auth = NewAuthService(env.storage, env.passwords, env.identity, env.csrf)
	env.users = NewUserService(env.storage, env.passwords, env.csrf)
	env.content, err = NewContentService(env.storage)
	if err != nil {
		t.Fatalf("NewContentService() error = %v", err)
	}
	return env
}

// seedUser stores a user with a credential account for password.
func (e *testEnv) seedUser(t *testing.T, email, password string, role core.Role) *core.User {
	t.Helper()

	user := &core.User{Email: email, Name: "Test User", Role: role, IsActive: true}
	if err := e.storage.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	hashed, err := e.passwords.Hash(password)
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if err := e.storage.CreateAccount(context.Background(), &core.Account{
		UserID:     user.ID,
		ProviderID: core.ProviderCredential,
		AccountID:  user.ID,
		Password:   &hashed,
	}); err != nil {
		t.Fatalf("CreateAccount() error = %v", err)
	}
	return user
}

// actor returns the identity a credential for user would resolve to.
func actor(user *core.User) *core.Identity {
	identity := core.IdentityFromUser(user)
	return &identity
}

func (e *testEnv) seedCategory(t *testing.T, name string) *core.Category {
	t.Helper()

	category, err := e.content.CreateCategory(context.Background(), core.CategoryInput{Name: name})
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	return category
}

func (e *testEnv) seedPost(t *testing.T, author *core.User, category *core.Category, title string, tags ...string) *core.Post {
	t.Helper()

	post, err := e.content.CreatePost(context.Background(), actor(author), core.PostInput{
		CategoryID: category.ID,
		Title:      title,
		Content:    "<p>" + title + "</p>",
		Tags:       tags,
	})
	if err != nil {
		t.Fatalf("CreatePost() error = %v", err)
	}
	return post
}

func strPtr(s string) *string { return &s }
