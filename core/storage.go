package core

import "context"

type UserStorage interface {
	CreateUser(ctx context.Context, u *User) error

	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)

	UpdateUser(ctx context.Context, u *User) error

	DeleteUser(ctx context.Context, id string) error
}

type AccountStorage interface {
	CreateAccount(ctx context.Context, a *Account) error

	GetAccountByUserAndProvider(ctx context.Context, userID, providerID string) (*Account, error)

	UpdateAccount(ctx context.Context, a *Account) error
}

type AuthStorage interface {
	UserStorage
	AccountStorage
}

type CategoryStorage interface {
	CreateCategory(ctx context.Context, c *Category) error

	GetCategoryByID(ctx context.Context, id string) (*Category, error)
	GetCategoryBySlug(ctx context.Context, slug string) (*Category, error)
	// ListCategories returns every category ordered by name.
	ListCategories(ctx context.Context) ([]*Category, error)

	UpdateCategory(ctx context.Context, c *Category) error

	// DeleteCategory fails with ErrCategoryInUse while posts reference it.
	DeleteCategory(ctx context.Context, id string) error
}

// PostStorage reads return posts with Author and Category summaries.
type PostStorage interface {
	CreatePost(ctx context.Context, p *Post) error

	GetPostByID(ctx context.Context, id string) (*Post, error)
	// ViewPostBySlug increments the view count and returns the updated post.
	ViewPostBySlug(ctx context.Context, slug string) (*Post, error)
	// ListPosts returns newest first, or by views then recency when
	// OrderByViews is set.
	ListPosts(ctx context.Context, filter PostFilter) ([]*Post, error)
	CountPosts(ctx context.Context, filter PostFilter) (int, error)

	UpdatePost(ctx context.Context, p *Post) error

	DeletePost(ctx context.Context, id string) error
}

type ContentStorage interface {
	CategoryStorage
	PostStorage
}

// Storage is everything the assembled service persists.
type Storage interface {
	AuthStorage
	ContentStorage
}

// TokenStore maps a session key to the current CSRF token for that key.
// Set overwrites; there is never more than one current token per key.
// Get returns ErrTokenNotFound for keys that were never set, were deleted,
// or were evicted.
type TokenStore interface {
	Get(ctx context.Context, sessionKey string) (string, error)
	Set(ctx context.Context, sessionKey, token string) error
	Delete(ctx context.Context, sessionKey string) error
}
