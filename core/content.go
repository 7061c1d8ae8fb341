package core

import "time"

// Category groups posts. Slugs are unique.
type Category struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Post is a published article. Author and Category are summaries filled in by
// storage on reads.
type Post struct {
	ID            string    `json:"id"`
	AuthorID      string    `json:"authorId"`
	CategoryID    string    `json:"categoryId"`
	Title         string    `json:"title"`
	Slug          string    `json:"slug"`
	Content       string    `json:"blogContent"`
	FeaturedImage *string   `json:"featuredImage,omitempty"`
	Tags          []string  `json:"tags"`
	Views         int64     `json:"views"`
	ReadingTime   int       `json:"readingTime"`
	IsPublished   bool      `json:"isPublished"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`

	Author   *AuthorSummary   `json:"author,omitempty"`
	Category *CategorySummary `json:"category,omitempty"`
}

type AuthorSummary struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Role   Role    `json:"role"`
	Avatar *string `json:"avatar,omitempty"`
	Bio    *string `json:"bio,omitempty"`
}

type CategorySummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PostFilter narrows ListPosts and CountPosts. Zero values match everything;
// Limit 0 means no limit.
type PostFilter struct {
	AuthorID    string
	CategoryID  string
	ExcludeSlug string

	// Query matches titles or tags, case-insensitively.
	Query        string
	OrderByViews bool
	Limit        int
	Offset       int
}

type CategoryInput struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type PostInput struct {
	CategoryID    string   `json:"category"`
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Content       string   `json:"blogContent"`
	FeaturedImage *string  `json:"featuredImage"`
	Tags          []string `json:"tags"`
}

// Pagination describes one page of a post listing.
type Pagination struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Pages int `json:"pages"`
}

type PostPage struct {
	Posts      []*Post
	Pagination Pagination
}
