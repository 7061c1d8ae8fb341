package pgx

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/lborres/quill/core"
)

const categoryColumns = `id, name, slug, created_at, updated_at`

func scanCategory(row pgx.Row) (*core.Category, error) {
	c := &core.Category{}
	if err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

func (a *Adapter) CreateCategory(ctx context.Context, c *core.Category) error {
	q := `INSERT INTO public.categories (name, slug) VALUES ($1, $2) RETURNING id, created_at, updated_at`

	err := a.pool.QueryRow(ctx, q, c.Name, c.Slug).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return categoryErrors.translate(err)
	}
	return nil
}

func (a *Adapter) GetCategoryByID(ctx context.Context, id string) (*core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM public.categories WHERE id = $1`

	c, err := scanCategory(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, categoryErrors.translate(err)
	}
	return c, nil
}

func (a *Adapter) GetCategoryBySlug(ctx context.Context, slug string) (*core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM public.categories WHERE slug = $1`

	c, err := scanCategory(a.pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, categoryErrors.translate(err)
	}
	return c, nil
}

func (a *Adapter) ListCategories(ctx context.Context) ([]*core.Category, error) {
	q := `SELECT ` + categoryColumns + ` FROM public.categories ORDER BY name`

	rows, err := a.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*core.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (a *Adapter) UpdateCategory(ctx context.Context, c *core.Category) error {
	q := `UPDATE public.categories SET name = $1, slug = $2, updated_at = now() WHERE id = $3 RETURNING updated_at`

	if err := a.pool.QueryRow(ctx, q, c.Name, c.Slug, c.ID).Scan(&c.UpdatedAt); err != nil {
		return categoryErrors.translate(err)
	}
	return nil
}

// DeleteCategory is refused by the posts foreign key while posts remain.
func (a *Adapter) DeleteCategory(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.categories WHERE id = $1`, id)
	if err != nil {
		return categoryErrors.translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrCategoryNotFound
	}
	return nil
}

// postSelect reads posts with their author and category summaries. The post
// relation is aliased p so the same select serves the view CTE.
const postSelect = `SELECT p.id, p.author_id, p.category_id, p.title, p.slug, p.content, p.featured_image,
	p.tags, p.views, p.reading_time, p.is_published, p.created_at, p.updated_at,
	u.name, u.role, u.avatar, u.bio, c.name, c.slug`

const postJoins = `
	JOIN public.users u ON u.id = p.author_id
	JOIN public.categories c ON c.id = p.category_id`

func scanPost(row pgx.Row) (*core.Post, error) {
	p := &core.Post{
		Author:   &core.AuthorSummary{},
		Category: &core.CategorySummary{},
	}
	var role string
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.CategoryID, &p.Title, &p.Slug, &p.Content, &p.FeaturedImage,
		&p.Tags, &p.Views, &p.ReadingTime, &p.IsPublished, &p.CreatedAt, &p.UpdatedAt,
		&p.Author.Name, &role, &p.Author.Avatar, &p.Author.Bio, &p.Category.Name, &p.Category.Slug,
	)
	if err != nil {
		return nil, err
	}
	p.Author.ID = p.AuthorID
	p.Author.Role = core.Role(role)
	p.Category.ID = p.CategoryID
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return p, nil
}

func tagsOrEmpty(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func (a *Adapter) CreatePost(ctx context.Context, p *core.Post) error {
	q := `INSERT INTO public.posts (author_id, category_id, title, slug, content, featured_image, tags, reading_time, is_published)
	      VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	      RETURNING id, views, created_at, updated_at`

	err := a.pool.QueryRow(ctx, q,
		p.AuthorID, p.CategoryID, p.Title, p.Slug, p.Content, p.FeaturedImage, tagsOrEmpty(p.Tags), p.ReadingTime, p.IsPublished,
	).Scan(&p.ID, &p.Views, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return postErrors.translate(err)
	}
	return nil
}

func (a *Adapter) GetPostByID(ctx context.Context, id string) (*core.Post, error) {
	q := postSelect + ` FROM public.posts p` + postJoins + ` WHERE p.id = $1`

	p, err := scanPost(a.pool.QueryRow(ctx, q, id))
	if err != nil {
		return nil, postErrors.translate(err)
	}
	return p, nil
}

// ViewPostBySlug counts the view and reads the post in one round trip.
func (a *Adapter) ViewPostBySlug(ctx context.Context, slug string) (*core.Post, error) {
	q := `WITH p AS (UPDATE public.posts SET views = views + 1 WHERE slug = $1 RETURNING *) ` +
		postSelect + ` FROM p` + postJoins

	p, err := scanPost(a.pool.QueryRow(ctx, q, slug))
	if err != nil {
		return nil, postErrors.translate(err)
	}
	return p, nil
}

// likePattern matches query anywhere in a value, with LIKE wildcards in
// query taken literally.
func likePattern(query string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)
	return "%" + escaped + "%"
}

// postWhere renders filter as a WHERE clause over alias p.
func postWhere(filter core.PostFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.AuthorID != "" {
		add(`p.author_id = $%d`, filter.AuthorID)
	}
	if filter.CategoryID != "" {
		add(`p.category_id = $%d`, filter.CategoryID)
	}
	if filter.ExcludeSlug != "" {
		add(`p.slug <> $%d`, filter.ExcludeSlug)
	}
	if filter.Query != "" {
		add(`(p.title ILIKE $%[1]d OR EXISTS (SELECT 1 FROM unnest(p.tags) AS tag WHERE tag ILIKE $%[1]d))`, likePattern(filter.Query))
	}

	if len(conds) == 0 {
		return "", args
	}
	return ` WHERE ` + strings.Join(conds, ` AND `), args
}

func (a *Adapter) ListPosts(ctx context.Context, filter core.PostFilter) ([]*core.Post, error) {
	where, args := postWhere(filter)
	q := postSelect + ` FROM public.posts p` + postJoins + where

	if filter.OrderByViews {
		q += ` ORDER BY p.views DESC, p.created_at DESC`
	} else {
		q += ` ORDER BY p.created_at DESC`
	}
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		q += fmt.Sprintf(` LIMIT $%d`, len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		q += fmt.Sprintf(` OFFSET $%d`, len(args))
	}

	rows, err := a.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, postErrors.translate(err)
	}
	defer rows.Close()

	posts := []*core.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (a *Adapter) CountPosts(ctx context.Context, filter core.PostFilter) (int, error) {
	where, args := postWhere(filter)

	var n int
	if err := a.pool.QueryRow(ctx, `SELECT count(*) FROM public.posts p`+where, args...).Scan(&n); err != nil {
		return 0, postErrors.translate(err)
	}
	return n, nil
}

func (a *Adapter) UpdatePost(ctx context.Context, p *core.Post) error {
	q := `UPDATE public.posts SET category_id = $1, title = $2, slug = $3, content = $4, featured_image = $5,
	      tags = $6, reading_time = $7, is_published = $8, updated_at = now()
	      WHERE id = $9 RETURNING views, updated_at`

	err := a.pool.QueryRow(ctx, q,
		p.CategoryID, p.Title, p.Slug, p.Content, p.FeaturedImage, tagsOrEmpty(p.Tags), p.ReadingTime, p.IsPublished, p.ID,
	).Scan(&p.Views, &p.UpdatedAt)
	if err != nil {
		return postErrors.translate(err)
	}
	return nil
}

func (a *Adapter) DeletePost(ctx context.Context, id string) error {
	tag, err := a.pool.Exec(ctx, `DELETE FROM public.posts WHERE id = $1`, id)
	if err != nil {
		return postErrors.translate(err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrPostNotFound
	}
	return nil
}
