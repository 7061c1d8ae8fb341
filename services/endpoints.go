package services

import (
	"fmt"

	"github.com/lborres/quill/core"
)

// Operation ids. HTTP adapters bind their handlers by these names.
const (
	OpRegister     = "register"
	OpLogin        = "login"
	OpGoogleLogin  = "googleLogin"
	OpLogout       = "logout"
	OpVerify       = "verify"
	OpGetCSRFToken = "getCSRFToken"
	OpGetUser      = "getUser"
	OpUpdateUser   = "updateUser"
	OpListUsers    = "getAllUsers"
	OpDeleteUser   = "deleteUser"
)

const (
	OpAddCategory    = "addCategory"
	OpShowCategory   = "showCategory"
	OpUpdateCategory = "updateCategory"
	OpDeleteCategory = "deleteCategory"
	OpListCategories = "getAllCategory"
	OpAddBlog        = "addBlog"
	OpEditBlog       = "editBlog"
	OpUpdateBlog     = "updateBlog"
	OpDeleteBlog     = "deleteBlog"
	OpShowAllBlog    = "showAllBlog"
	OpGetBlog        = "getBlog"
	OpRelatedBlog    = "getRelatedBlog"
	OpBlogByCategory = "getBlogByCategory"
	OpSearchBlog     = "searchBlog"
	OpListBlogs      = "getAllBlogs"
	OpTrendingBlogs  = "getTrendingBlogs"
)

// BaseEndpoints returns framework-agnostic endpoint definitions for the
// auth, CSRF, user, category and blog APIs. Paths are relative to the
// configured base path.
//
// Access tells the adapter which identity stage to put in front of the
// handler; every endpoint also passes the optional identity stage and the
// CSRF guard.
func BaseEndpoints() []core.Endpoint {
	return []core.Endpoint{
		{
			Path:   "/auth/register",
			Method: "POST",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpRegister,
				Description: "Register a user with name, email and password",
			},
		},
		{
			Path:   "/auth/login",
			Method: "POST",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpLogin,
				Description: "Sign in with email and password",
			},
		},
		{
			Path:   "/auth/google-login",
			Method: "POST",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpGoogleLogin,
				Description: "Sign in with a profile asserted by Google",
			},
		},
		{
			Path:   "/auth/logout",
			Method: "POST",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpLogout,
				Description: "Clear the credential cookie",
			},
		},
		{
			Path:   "/auth/verify",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpVerify,
				Description: "Return the identity carried by the credential cookie",
			},
		},
		{
			Path:   "/csrf-token",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetCSRFToken,
				Description: "Issue a CSRF token for the caller's session",
			},
		},
		{
			Path:   "/user/get-user/:userid",
			Method: "GET",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetUser,
				Description: "Get a user profile",
			},
		},
		{
			Path:   "/user/update-user/:userid",
			Method: "PUT",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpUpdateUser,
				Description: "Update a user profile; own profile unless admin",
			},
		},
		{
			Path:   "/user/get-all-user",
			Method: "GET",
			Access: core.AccessAdmin,
			Metadata: core.EndpointMetadata{
				OperationID: OpListUsers,
				Description: "List all users, newest first",
			},
		},
		{
			Path:   "/user/delete/:id",
			Method: "DELETE",
			Access: core.AccessAdmin,
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteUser,
				Description: "Delete a user",
			},
		},
		{
			Path:   "/category/add",
			Method: "POST",
			Access: core.AccessAdmin,
			Metadata: core.EndpointMetadata{
				OperationID: OpAddCategory,
				Description: "Create a category",
			},
		},
		{
			Path:   "/category/show/:categoryid",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpShowCategory,
				Description: "Get a category",
			},
		},
		{
			Path:   "/category/update/:categoryid",
			Method: "PUT",
			Access: core.AccessAdmin,
			Metadata: core.EndpointMetadata{
				OperationID: OpUpdateCategory,
				Description: "Rename a category or change its slug",
			},
		},
		{
			Path:   "/category/delete/:categoryid",
			Method: "DELETE",
			Access: core.AccessAdmin,
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteCategory,
				Description: "Delete a category without posts",
			},
		},
		{
			Path:   "/category/all-category",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpListCategories,
				Description: "List categories by name",
			},
		},
		{
			Path:   "/blog/add",
			Method: "POST",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpAddBlog,
				Description: "Publish a blog post as the caller",
			},
		},
		{
			Path:   "/blog/edit/:blogid",
			Method: "GET",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpEditBlog,
				Description: "Get a blog post for editing; author or admin",
			},
		},
		{
			Path:   "/blog/update/:blogid",
			Method: "PUT",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpUpdateBlog,
				Description: "Update a blog post; author or admin",
			},
		},
		{
			Path:   "/blog/delete/:blogid",
			Method: "DELETE",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpDeleteBlog,
				Description: "Delete a blog post; author or admin",
			},
		},
		{
			Path:   "/blog/get-all",
			Method: "GET",
			Access: core.AccessAuthenticated,
			Metadata: core.EndpointMetadata{
				OperationID: OpShowAllBlog,
				Description: "List every post for admins, own posts otherwise",
			},
		},
		{
			Path:   "/blog/get-blog/:slug",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpGetBlog,
				Description: "Read a blog post and count the view",
			},
		},
		{
			Path:   "/blog/get-related-blog/:category/:blog",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpRelatedBlog,
				Description: "Other posts in the same category",
			},
		},
		{
			Path:   "/blog/get-blog-by-category/:category",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpBlogByCategory,
				Description: "Posts in a category, newest first",
			},
		},
		{
			Path:   "/blog/search",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpSearchBlog,
				Description: "Search titles and tags",
			},
		},
		{
			Path:   "/blog/blogs",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpListBlogs,
				Description: "Page through every post, newest first",
			},
		},
		{
			Path:   "/blog/trending",
			Method: "GET",
			Access: core.AccessPublic,
			Metadata: core.EndpointMetadata{
				OperationID: OpTrendingBlogs,
				Description: "Most viewed posts",
			},
		},
	}
}

// EndpointRegistry manages a collection of framework-agnostic endpoints
// and handles conflict detection for duplicate METHOD:PATH combinations.
type EndpointRegistry struct {
	// endpoints stores all registered endpoints keyed by "METHOD:PATH"
	endpoints map[string]*core.Endpoint
	// order keeps registration order so routes mount deterministically
	order []string
}

// NewEndpointRegistry creates a new registry with all base endpoints
// pre-registered.
func NewEndpointRegistry() *EndpointRegistry {
	reg := &EndpointRegistry{
		endpoints: make(map[string]*core.Endpoint),
	}

	base := BaseEndpoints()
	for i := range base {
		// base endpoints are unique by construction
		_ = reg.register(&base[i])
	}

	return reg
}

func (r *EndpointRegistry) register(ep *core.Endpoint) error {
	key := ep.Key()
	if _, exists := r.endpoints[key]; exists {
		return fmt.Errorf("%w: %s %s already registered", core.ErrEndpointConflict, ep.Method, ep.Path)
	}

	r.endpoints[key] = ep
	r.order = append(r.order, key)
	return nil
}

// RegisterPlugin registers additional endpoints. If any of them conflicts
// with an existing endpoint or with another in the same batch, none are
// registered.
func (r *EndpointRegistry) RegisterPlugin(endpoints []core.Endpoint) error {
	seen := make(map[string]bool)
	for i := range endpoints {
		ep := &endpoints[i]
		key := ep.Key()

		if _, exists := r.endpoints[key]; exists {
			return fmt.Errorf("%w: %s %s already registered", core.ErrEndpointConflict, ep.Method, ep.Path)
		}
		if seen[key] {
			return fmt.Errorf("%w: plugin contains duplicate endpoint %s %s", core.ErrEndpointConflict, ep.Method, ep.Path)
		}
		seen[key] = true
	}

	for i := range endpoints {
		ep := endpoints[i]
		_ = r.register(&ep)
	}

	return nil
}

// Endpoints returns all registered endpoints in registration order.
func (r *EndpointRegistry) Endpoints() []core.Endpoint {
	result := make([]core.Endpoint, 0, len(r.order))
	for _, key := range r.order {
		result = append(result, *r.endpoints[key])
	}
	return result
}
