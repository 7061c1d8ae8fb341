package fiber

import (
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
)

func (a *Adapter) addCategory(c fiber.Ctx) error {
	var input core.CategoryInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	category, err := a.q.Content.CreateCategory(c.Context(), input)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"message":  "Category added successfully.",
		"category": category,
	})
}

func (a *Adapter) showCategory(c fiber.Ctx) error {
	category, err := a.q.Content.GetCategory(c.Context(), c.Params("categoryid"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":  true,
		"category": category,
	})
}

func (a *Adapter) updateCategory(c fiber.Ctx) error {
	var input core.CategoryInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	category, err := a.q.Content.UpdateCategory(c.Context(), c.Params("categoryid"), input)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":  true,
		"message":  "Category updated successfully.",
		"category": category,
	})
}

func (a *Adapter) deleteCategory(c fiber.Ctx) error {
	if err := a.q.Content.DeleteCategory(c.Context(), c.Params("categoryid")); err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Category deleted successfully.",
	})
}

func (a *Adapter) listCategories(c fiber.Ctx) error {
	categories, err := a.q.Content.ListCategories(c.Context())
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":  true,
		"category": categories,
	})
}

func (a *Adapter) addBlog(c fiber.Ctx) error {
	var input core.PostInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	post, err := a.q.Content.CreatePost(c.Context(), IdentityFrom(c), input)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Blog added successfully.",
		"blog":    post,
	})
}

func (a *Adapter) editBlog(c fiber.Ctx) error {
	post, err := a.q.Content.GetPostForEdit(c.Context(), IdentityFrom(c), c.Params("blogid"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"blog":    post,
	})
}

func (a *Adapter) updateBlog(c fiber.Ctx) error {
	var input core.PostInput
	if err := c.Bind().Body(&input); err != nil {
		return a.fail(c, core.ErrInvalidRequestBody)
	}

	post, err := a.q.Content.UpdatePost(c.Context(), IdentityFrom(c), c.Params("blogid"), input)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Blog updated successfully.",
		"blog":    post,
	})
}

func (a *Adapter) deleteBlog(c fiber.Ctx) error {
	if err := a.q.Content.DeletePost(c.Context(), IdentityFrom(c), c.Params("blogid")); err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Blog deleted successfully.",
	})
}

func (a *Adapter) showAllBlog(c fiber.Ctx) error {
	posts, err := a.q.Content.ListManagedPosts(c.Context(), IdentityFrom(c))
	if err != nil {
		return a.fail(c, err)
	}
	return blogList(c, posts)
}

func (a *Adapter) getBlog(c fiber.Ctx) error {
	post, err := a.q.Content.ReadPost(c.Context(), c.Params("slug"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"blog":    post,
	})
}

func (a *Adapter) relatedBlog(c fiber.Ctx) error {
	posts, err := a.q.Content.RelatedPosts(c.Context(), c.Params("category"), c.Params("blog"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":     true,
		"relatedBlog": posts,
	})
}

func (a *Adapter) blogByCategory(c fiber.Ctx) error {
	posts, category, err := a.q.Content.PostsByCategory(c.Context(), c.Params("category"))
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":      true,
		"blog":         posts,
		"categoryData": category,
	})
}

func (a *Adapter) searchBlog(c fiber.Ctx) error {
	posts, err := a.q.Content.SearchPosts(c.Context(), c.Query("q"))
	if err != nil {
		return a.fail(c, err)
	}
	return blogList(c, posts)
}

// listBlogs pages through posts. Missing or malformed page and limit fall
// back to the service defaults.
func (a *Adapter) listBlogs(c fiber.Ctx) error {
	page := fiber.Query[int](c, "page", 0)
	limit := fiber.Query[int](c, "limit", 0)

	result, err := a.q.Content.ListPosts(c.Context(), page, limit)
	if err != nil {
		return a.fail(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success":    true,
		"blog":       result.Posts,
		"pagination": result.Pagination,
	})
}

func (a *Adapter) trendingBlogs(c fiber.Ctx) error {
	posts, err := a.q.Content.TrendingPosts(c.Context())
	if err != nil {
		return a.fail(c, err)
	}
	return blogList(c, posts)
}

func blogList(c fiber.Ctx, posts []*core.Post) error {
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"success": true,
		"blog":    posts,
	})
}
