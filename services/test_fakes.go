package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lborres/quill/core"
)

// FakeStorageProvider is a test-only fake implementing core.Storage.
// It keeps every record in maps, hands out copies, and exposes error fields
// for behavior injection.
type FakeStorageProvider struct {
	mu         sync.RWMutex
	users      map[string]*core.User
	accounts   map[string]*core.Account
	categories map[string]*core.Category
	posts      map[string]*core.Post

	// insertion order; timestamps can tie within a test
	postSeq map[string]int
	nextSeq int

	getUserErr       error
	createUserErr    error
	createAccountErr error
	updateAccountErr error
	createPostErr    error
}

var _ core.Storage = (*FakeStorageProvider)(nil)

func NewFakeStorageProvider() *FakeStorageProvider {
	return &FakeStorageProvider{
		users:      make(map[string]*core.User),
		accounts:   make(map[string]*core.Account),
		categories: make(map[string]*core.Category),
		posts:      make(map[string]*core.Post),
		postSeq:    make(map[string]int),
	}
}

// UserStorage implementation
func (f *FakeStorageProvider) CreateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createUserErr != nil {
		return f.createUserErr
	}
	for _, existing := range f.users {
		if existing.Email == u.Email {
			return core.ErrUserExists
		}
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if _, exists := f.users[u.ID]; exists {
		return core.ErrUserExists
	}
	now := time.Now()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) GetUserByID(_ context.Context, id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	if u, ok := f.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) GetUserByEmail(_ context.Context, email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getUserErr != nil {
		return nil, f.getUserErr
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorageProvider) ListUsers(_ context.Context) ([]*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	users := make([]*core.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (f *FakeStorageProvider) UpdateUser(_ context.Context, u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[u.ID]; !exists {
		return core.ErrUserNotFound
	}
	for id, existing := range f.users {
		if id != u.ID && existing.Email == u.Email {
			return core.ErrUserExists
		}
	}
	u.UpdatedAt = time.Now()
	stored := *u
	f.users[u.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) DeleteUser(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[id]; !exists {
		return core.ErrUserNotFound
	}
	delete(f.users, id)
	for accountID, a := range f.accounts {
		if a.UserID == id {
			delete(f.accounts, accountID)
		}
	}
	for postID, p := range f.posts {
		if p.AuthorID == id {
			delete(f.posts, postID)
		}
	}
	return nil
}

// AccountStorage implementation
func (f *FakeStorageProvider) CreateAccount(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createAccountErr != nil {
		return f.createAccountErr
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	stored := *a
	f.accounts[a.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) GetAccountByUserAndProvider(_ context.Context, userID, providerID string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, a := range f.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			copied := *a
			return &copied, nil
		}
	}
	return nil, core.ErrAccountNotFound
}

func (f *FakeStorageProvider) UpdateAccount(_ context.Context, a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateAccountErr != nil {
		return f.updateAccountErr
	}
	if _, exists := f.accounts[a.ID]; !exists {
		return core.ErrAccountNotFound
	}
	a.UpdatedAt = time.Now()
	stored := *a
	f.accounts[a.ID] = &stored
	return nil
}

// CategoryStorage implementation
func (f *FakeStorageProvider) slugTaken(id, slug string) bool {
	for otherID, c := range f.categories {
		if otherID != id && c.Slug == slug {
			return true
		}
	}
	return false
}

func (f *FakeStorageProvider) CreateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.slugTaken("", c.Slug) {
		return core.ErrCategoryExists
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	stored := *c
	f.categories[c.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) GetCategoryByID(_ context.Context, id string) (*core.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if c, ok := f.categories[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, core.ErrCategoryNotFound
}

func (f *FakeStorageProvider) GetCategoryBySlug(_ context.Context, slug string) (*core.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	for _, c := range f.categories {
		if c.Slug == slug {
			copied := *c
			return &copied, nil
		}
	}
	return nil, core.ErrCategoryNotFound
}

func (f *FakeStorageProvider) ListCategories(_ context.Context) ([]*core.Category, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	categories := make([]*core.Category, 0, len(f.categories))
	for _, c := range f.categories {
		copied := *c
		categories = append(categories, &copied)
	}
	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})
	return categories, nil
}

func (f *FakeStorageProvider) UpdateCategory(_ context.Context, c *core.Category) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.categories[c.ID]; !exists {
		return core.ErrCategoryNotFound
	}
	if f.slugTaken(c.ID, c.Slug) {
		return core.ErrCategoryExists
	}
	c.UpdatedAt = time.Now()
	stored := *c
	f.categories[c.ID] = &stored
	return nil
}

func (f *FakeStorageProvider) DeleteCategory(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.categories[id]; !exists {
		return core.ErrCategoryNotFound
	}
	for _, p := range f.posts {
		if p.CategoryID == id {
			return core.ErrCategoryInUse
		}
	}
	delete(f.categories, id)
	return nil
}

// PostStorage implementation

// populate returns a copy of p with its summaries filled in.
func (f *FakeStorageProvider) populate(p *core.Post) *core.Post {
	copied := *p
	copied.Tags = append([]string{}, p.Tags...)
	if u, ok := f.users[p.AuthorID]; ok {
		copied.Author = &core.AuthorSummary{ID: u.ID, Name: u.Name, Role: u.Role, Avatar: u.Avatar, Bio: u.Bio}
	}
	if c, ok := f.categories[p.CategoryID]; ok {
		copied.Category = &core.CategorySummary{ID: c.ID, Name: c.Name, Slug: c.Slug}
	}
	return &copied
}

func (f *FakeStorageProvider) postSlugTaken(id, slug string) bool {
	for otherID, p := range f.posts {
		if otherID != id && p.Slug == slug {
			return true
		}
	}
	return false
}

func (f *FakeStorageProvider) storePost(p *core.Post) {
	stored := *p
	stored.Tags = append([]string{}, p.Tags...)
	stored.Author, stored.Category = nil, nil
	f.posts[p.ID] = &stored
}

func (f *FakeStorageProvider) CreatePost(_ context.Context, p *core.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createPostErr != nil {
		return f.createPostErr
	}
	if f.postSlugTaken("", p.Slug) {
		return core.ErrPostExists
	}
	if _, ok := f.categories[p.CategoryID]; !ok {
		return core.ErrCategoryNotFound
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt, p.UpdatedAt = now, now
	f.nextSeq++
	f.postSeq[p.ID] = f.nextSeq
	f.storePost(p)
	return nil
}

func (f *FakeStorageProvider) GetPostByID(_ context.Context, id string) (*core.Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if p, ok := f.posts[id]; ok {
		return f.populate(p), nil
	}
	return nil, core.ErrPostNotFound
}

func (f *FakeStorageProvider) ViewPostBySlug(_ context.Context, slug string) (*core.Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			p.Views++
			return f.populate(p), nil
		}
	}
	return nil, core.ErrPostNotFound
}

func (f *FakeStorageProvider) matchPosts(filter core.PostFilter) []*core.Post {
	query := strings.ToLower(filter.Query)
	var matched []*core.Post
	for _, p := range f.posts {
		if filter.AuthorID != "" && p.AuthorID != filter.AuthorID {
			continue
		}
		if filter.CategoryID != "" && p.CategoryID != filter.CategoryID {
			continue
		}
		if filter.ExcludeSlug != "" && p.Slug == filter.ExcludeSlug {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.Title), query) && !tagContains(p.Tags, query) {
			continue
		}
		matched = append(matched, p)
	}
	return matched
}

func tagContains(tags []string, query string) bool {
	for _, tag := range tags {
		if strings.Contains(tag, query) {
			return true
		}
	}
	return false
}

func (f *FakeStorageProvider) ListPosts(_ context.Context, filter core.PostFilter) ([]*core.Post, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	matched := f.matchPosts(filter)
	sort.Slice(matched, func(i, j int) bool {
		if filter.OrderByViews && matched[i].Views != matched[j].Views {
			return matched[i].Views > matched[j].Views
		}
		return f.postSeq[matched[i].ID] > f.postSeq[matched[j].ID]
	})

	if filter.Offset >= len(matched) {
		return []*core.Post{}, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	posts := make([]*core.Post, 0, len(matched))
	for _, p := range matched {
		posts = append(posts, f.populate(p))
	}
	return posts, nil
}

func (f *FakeStorageProvider) CountPosts(_ context.Context, filter core.PostFilter) (int, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.matchPosts(filter)), nil
}

func (f *FakeStorageProvider) UpdatePost(_ context.Context, p *core.Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing, exists := f.posts[p.ID]
	if !exists {
		return core.ErrPostNotFound
	}
	if f.postSlugTaken(p.ID, p.Slug) {
		return core.ErrPostExists
	}
	if _, ok := f.categories[p.CategoryID]; !ok {
		return core.ErrCategoryNotFound
	}
	p.Views = existing.Views
	p.UpdatedAt = time.Now()
	f.storePost(p)
	return nil
}

func (f *FakeStorageProvider) DeletePost(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.posts[id]; !exists {
		return core.ErrPostNotFound
	}
	delete(f.posts, id)
	delete(f.postSeq, id)
	return nil
}

// Test helper methods
func (f *FakeStorageProvider) SetGetUserError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getUserErr = err
}

func (f *FakeStorageProvider) SetCreateUserError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createUserErr = err
}

func (f *FakeStorageProvider) SetCreatePostError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createPostErr = err
}

// SetPostViews overwrites the view count of the post with slug.
func (f *FakeStorageProvider) SetPostViews(slug string, views int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.posts {
		if p.Slug == slug {
			p.Views = views
		}
	}
}

func (f *FakeStorageProvider) SetCreateAccountError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createAccountErr = err
}

func (f *FakeStorageProvider) SetUpdateAccountError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateAccountErr = err
}

func (f *FakeStorageProvider) AccountCount(userID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	n := 0
	for _, a := range f.accounts {
		if a.UserID == userID {
			n++
		}
	}
	return n
}

// FakeTokenStore is a test-only fake implementing core.TokenStore.
type FakeTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]string
	getErr error
	setErr error
}

var _ core.TokenStore = (*FakeTokenStore)(nil)

func NewFakeTokenStore() *FakeTokenStore {
	return &FakeTokenStore{tokens: make(map[string]string)}
}

func (f *FakeTokenStore) Get(_ context.Context, sessionKey string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return "", f.getErr
	}
	token, ok := f.tokens[sessionKey]
	if !ok {
		return "", core.ErrTokenNotFound
	}
	return token, nil
}

func (f *FakeTokenStore) Set(_ context.Context, sessionKey, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.tokens[sessionKey] = token
	return nil
}

func (f *FakeTokenStore) Delete(_ context.Context, sessionKey string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, sessionKey)
	return nil
}

func (f *FakeTokenStore) SetGetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *FakeTokenStore) SetSetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

func (f *FakeTokenStore) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.tokens)
}
