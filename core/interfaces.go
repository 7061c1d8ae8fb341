package core

import "context"

// AuthHandler provides sign-up and sign-in operations for HTTP adapters
type AuthHandler interface {
	SignUp(ctx context.Context, input SignUpInput) (*AuthResult, error)
	SignIn(ctx context.Context, input SignInInput) (*AuthResult, error)
	FederatedSignIn(ctx context.Context, input FederatedSignInInput) (*AuthResult, error)
}

// IdentityHandler turns a credential token into the request identity.
type IdentityHandler interface {
	// Resolve is the strict form: it fails with ErrUnauthenticated,
	// ErrInvalidToken or ErrSessionExpired.
	Resolve(token string) (*Identity, error)
	// ResolveOptional never fails; any problem yields Anonymous().
	ResolveOptional(token string) *Identity
}

// CSRFHandler issues and checks CSRF tokens bound to session keys.
type CSRFHandler interface {
	Issue(ctx context.Context, sessionKey string) (string, error)
	Verify(ctx context.Context, sessionKey, supplied string) error
	Revoke(ctx context.Context, sessionKey string) error
}

// UserHandler provides profile operations. actor is the caller's identity and
// drives authorization decisions.
type UserHandler interface {
	GetUser(ctx context.Context, id string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, actor *Identity, id string, input UpdateUserInput) (*User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ContentHandler manages categories and posts. Post mutations are allowed for
// the author or an admin; category mutations are gated to admins by the
// endpoint access level.
type ContentHandler interface {
	CreateCategory(ctx context.Context, input CategoryInput) (*Category, error)
	GetCategory(ctx context.Context, id string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, id string, input CategoryInput) (*Category, error)
	DeleteCategory(ctx context.Context, id string) error

	CreatePost(ctx context.Context, actor *Identity, input PostInput) (*Post, error)
	GetPostForEdit(ctx context.Context, actor *Identity, id string) (*Post, error)
	UpdatePost(ctx context.Context, actor *Identity, id string, input PostInput) (*Post, error)
	DeletePost(ctx context.Context, actor *Identity, id string) error
	// ListManagedPosts returns every post for admins and the actor's own
	// posts otherwise.
	ListManagedPosts(ctx context.Context, actor *Identity) ([]*Post, error)

	ReadPost(ctx context.Context, slug string) (*Post, error)
	RelatedPosts(ctx context.Context, categorySlug, postSlug string) ([]*Post, error)
	PostsByCategory(ctx context.Context, categorySlug string) ([]*Post, *Category, error)
	SearchPosts(ctx context.Context, query string) ([]*Post, error)
	ListPosts(ctx context.Context, page, limit int) (*PostPage, error)
	TrendingPosts(ctx context.Context) ([]*Post, error)
}

type HTTPAdapter interface {
	RegisterRoutes(q *Quill) error
}
