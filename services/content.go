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

const (
	MaxTitleLength     = 200
	MaxTags            = 20
	RelatedPostsLimit  = 5
	TrendingPostsLimit = 5
	DefaultPageSize    = 12
	MaxPageSize        = 100

	slugSuffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"
	slugSuffixSize     = 6
	slugAttempts       = 3
)

// ContentService manages categories and posts.
type ContentService struct {
	db       core.ContentStorage
	suffixes *crypto.NanoIDGenerator
}

var _ core.ContentHandler = (*ContentService)(nil)

func NewContentService(db core.ContentStorage) (*ContentService, error) {
	suffixes, err := crypto.NewNanoID(slugSuffixAlphabet, slugSuffixSize)
	if err != nil {
		return nil, err
	}
	return &ContentService{db: db, suffixes: suffixes}, nil
}

// categorySlug picks the explicit slug when given, else one derived from name.
func categorySlug(name, slug string) (string, error) {
	if strings.TrimSpace(slug) == "" {
		slug = name
	}
	if s := slugify(slug); s != "" {
		return s, nil
	}
	return "", core.ErrInvalidSlug
}

func (s *ContentService) CreateCategory(ctx context.Context, input core.CategoryInput) (*core.Category, error) {
	name := strings.TrimSpace(input.Name)
	if err := validateName(name); err != nil {
		return nil, err
	}
	slug, err := categorySlug(name, input.Slug)
	if err != nil {
		return nil, err
	}

	category := &core.Category{Name: name, Slug: slug}
	if err := s.db.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, core.ErrCategoryExists) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *ContentService) GetCategory(ctx context.Context, id string) (*core.Category, error) {
	if id == "" {
		return nil, core.ErrCategoryNotFound
	}
	category, err := s.db.GetCategoryByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// ListCategories returns every category ordered by name. An empty store
// yields an empty slice.
func (s *ContentService) ListCategories(ctx context.Context) ([]*core.Category, error) {
	categories, err := s.db.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// UpdateCategory changes the name and slug; blank fields keep their value.
func (s *ContentService) UpdateCategory(ctx context.Context, id string, input core.CategoryInput) (*core.Category, error) {
	category, err := s.GetCategory(ctx, id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		if err := validateName(name); err != nil {
			return nil, err
		}
		category.Name = name
	}
	if strings.TrimSpace(input.Slug) != "" {
		slug := slugify(input.Slug)
		if slug == "" {
			return nil, core.ErrInvalidSlug
		}
		category.Slug = slug
	}

	if err := s.db.UpdateCategory(ctx, category); err != nil {
		if errors.Is(err, core.ErrCategoryExists) || errors.Is(err, core.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// DeleteCategory refuses while posts still belong to the category.
func (s *ContentService) DeleteCategory(ctx context.Context, id string) error {
	if id == "" {
		return core.ErrCategoryNotFound
	}
	if err := s.db.DeleteCategory(ctx, id); err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) || errors.Is(err, core.ErrCategoryInUse) {
			return err
		}
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

// validatePostInput trims input in place and checks the required fields.
func validatePostInput(input *core.PostInput) error {
	input.Title = strings.TrimSpace(input.Title)
	input.CategoryID = strings.TrimSpace(input.CategoryID)
	input.Content = strings.TrimSpace(input.Content)

	if input.Title == "" {
		return core.ErrTitleRequired
	}
	if utf8.RuneCountInString(input.Title) > MaxTitleLength {
		return core.ErrTitleTooLong
	}
	if input.CategoryID == "" {
		return core.ErrCategoryRequired
	}
	if input.Content == "" {
		return core.ErrContentRequired
	}
	if input.Tags != nil {
		input.Tags = normalizeTags(input.Tags)
		if len(input.Tags) > MaxTags {
			return core.ErrTooManyTags
		}
	}
	return nil
}

func (s *ContentService) requireCategory(ctx context.Context, id string) error {
	if _, err := s.GetCategory(ctx, id); err != nil {
		return err
	}
	return nil
}

func canManage(actor *core.Identity, post *core.Post) bool {
	return actor.IsAdmin() || (!actor.IsAnonymous() && actor.SubjectID == post.AuthorID)
}

// CreatePost publishes a post by actor. The slug is the given slug (or the
// title) made URL-safe, plus a random suffix so equal titles never collide.
func (s *ContentService) CreatePost(ctx context.Context, actor *core.Identity, input core.PostInput) (*core.Post, error) {
	if actor.IsAnonymous() {
		return nil, core.ErrUnauthenticated
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}
	if err := s.requireCategory(ctx, input.CategoryID); err != nil {
		return nil, err
	}

	base := slugify(input.Slug)
	if base == "" {
		base = slugify(input.Title)
	}
	if base == "" {
		return nil, core.ErrInvalidSlug
	}

	tags := input.Tags
	if tags == nil {
		tags = []string{}
	}
	post := &core.Post{
		AuthorID:      actor.SubjectID,
		CategoryID:    input.CategoryID,
		Title:         input.Title,
		Content:       input.Content,
		FeaturedImage: input.FeaturedImage,
		Tags:          tags,
		ReadingTime:   readingTime(input.Content),
		IsPublished:   true,
	}

	for attempt := 1; ; attempt++ {
		suffix, err := s.suffixes.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		post.Slug = base + "-" + suffix

		err = s.db.CreatePost(ctx, post)
		if err == nil {
			return post, nil
		}
		if errors.Is(err, core.ErrPostExists) && attempt < slugAttempts {
			continue
		}
		if errors.Is(err, core.ErrPostExists) || errors.Is(err, core.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create post: %w", err)
	}
}

func (s *ContentService) getPost(ctx context.Context, id string) (*core.Post, error) {
	if id == "" {
		return nil, core.ErrPostNotFound
	}
	post, err := s.db.GetPostByID(ctx, id)
	if err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

// GetPostForEdit returns the post for its author or an admin.
func (s *ContentService) GetPostForEdit(ctx context.Context, actor *core.Identity, id string) (*core.Post, error) {
	post, err := s.getPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, post) {
		return nil, core.ErrForbidden
	}
	return post, nil
}

// UpdatePost replaces title, category and content. A blank slug keeps the
// current one; nil tags or image keep theirs.
func (s *ContentService) UpdatePost(ctx context.Context, actor *core.Identity, id string, input core.PostInput) (*core.Post, error) {
	post, err := s.GetPostForEdit(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if err := validatePostInput(&input); err != nil {
		return nil, err
	}
	if input.CategoryID != post.CategoryID {
		if err := s.requireCategory(ctx, input.CategoryID); err != nil {
			return nil, err
		}
	}

	if strings.TrimSpace(input.Slug) != "" {
		slug := slugify(input.Slug)
		if slug == "" {
			return nil, core.ErrInvalidSlug
		}
		post.Slug = slug
	}
	post.Title = input.Title
	post.CategoryID = input.CategoryID
	post.Content = input.Content
	post.ReadingTime = readingTime(input.Content)
	if input.Tags != nil {
		post.Tags = input.Tags
	}
	if input.FeaturedImage != nil {
		post.FeaturedImage = input.FeaturedImage
	}

	if err := s.db.UpdatePost(ctx, post); err != nil {
		if errors.Is(err, core.ErrPostExists) || errors.Is(err, core.ErrPostNotFound) || errors.Is(err, core.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update post: %w", err)
	}
	return post, nil
}

func (s *ContentService) DeletePost(ctx context.Context, actor *core.Identity, id string) error {
	if _, err := s.GetPostForEdit(ctx, actor, id); err != nil {
		return err
	}
	if err := s.db.DeletePost(ctx, id); err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete post: %w", err)
	}
	return nil
}

func (s *ContentService) listPosts(ctx context.Context, filter core.PostFilter) ([]*core.Post, error) {
	posts, err := s.db.ListPosts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

func (s *ContentService) ListManagedPosts(ctx context.Context, actor *core.Identity) ([]*core.Post, error) {
	if actor.IsAnonymous() {
		return nil, core.ErrUnauthenticated
	}
	filter := core.PostFilter{}
	if !actor.IsAdmin() {
		filter.AuthorID = actor.SubjectID
	}
	return s.listPosts(ctx, filter)
}

// ReadPost returns the post for slug and counts the view.
func (s *ContentService) ReadPost(ctx context.Context, slug string) (*core.Post, error) {
	if slug == "" {
		return nil, core.ErrPostNotFound
	}
	post, err := s.db.ViewPostBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, core.ErrPostNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get post: %w", err)
	}
	return post, nil
}

func (s *ContentService) categoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	if slug == "" {
		return nil, core.ErrCategoryNotFound
	}
	category, err := s.db.GetCategoryBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, core.ErrCategoryNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return category, nil
}

// RelatedPosts returns up to RelatedPostsLimit other posts in the category.
func (s *ContentService) RelatedPosts(ctx context.Context, categorySlug, postSlug string) ([]*core.Post, error) {
	category, err := s.categoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	return s.listPosts(ctx, core.PostFilter{
		CategoryID:  category.ID,
		ExcludeSlug: postSlug,
		Limit:       RelatedPostsLimit,
	})
}

func (s *ContentService) PostsByCategory(ctx context.Context, categorySlug string) ([]*core.Post, *core.Category, error) {
	category, err := s.categoryBySlug(ctx, categorySlug)
	if err != nil {
		return nil, nil, err
	}
	posts, err := s.listPosts(ctx, core.PostFilter{CategoryID: category.ID})
	if err != nil {
		return nil, nil, err
	}
	return posts, category, nil
}

// SearchPosts matches query against titles and tags. A blank query matches
// nothing.
func (s *ContentService) SearchPosts(ctx context.Context, query string) ([]*core.Post, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*core.Post{}, nil
	}
	return s.listPosts(ctx, core.PostFilter{Query: query})
}

// ListPosts returns one page of posts, newest first. page starts at 1;
// out of range values fall back to the first page of DefaultPageSize.
func (s *ContentService) ListPosts(ctx context.Context, page, limit int) (*core.PostPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	posts, err := s.listPosts(ctx, core.PostFilter{Limit: limit, Offset: (page - 1) * limit})
	if err != nil {
		return nil, err
	}
	total, err := s.db.CountPosts(ctx, core.PostFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to count posts: %w", err)
	}

	return &core.PostPage{
		Posts: posts,
		Pagination: core.Pagination{
			Total: total,
			Page:  page,
			Pages: (total + limit - 1) / limit,
		},
	}, nil
}

// TrendingPosts returns the most viewed posts.
func (s *ContentService) TrendingPosts(ctx context.Context) ([]*core.Post, error) {
	return s.listPosts(ctx, core.PostFilter{OrderByViews: true, Limit: TrendingPostsLimit})
}
