package fiber

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gofiber/fiber/v3"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/services"
)

type Adapter struct {
	app     *fiber.App
	q       *core.Quill
	logger  *slog.Logger
	anonIDs *crypto.NanoIDGenerator

	production    bool
	anonymousMode core.AnonymousMode
	fail          fiber.ErrorHandler
}

var _ core.HTTPAdapter = (*Adapter)(nil)

type Option func(*Adapter)

func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = logger
	}
}

// WithProduction switches cookies to Secure/SameSite=None and hides error
// chains from responses.
func WithProduction(production bool) Option {
	return func(a *Adapter) {
		a.production = production
	}
}

func WithAnonymousMode(mode core.AnonymousMode) Option {
	return func(a *Adapter) {
		a.anonymousMode = mode
	}
}

func New(app *fiber.App, opts ...Option) (*Adapter, error) {
	a := &Adapter{
		app:           app,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		anonymousMode: core.AnonymousCookie,
	}
	for _, opt := range opts {
		opt(a)
	}

	if !a.anonymousMode.Valid() {
		return nil, fmt.Errorf("%w: %q", core.ErrInvalidAnonymousMode, a.anonymousMode)
	}

	anonIDs, err := crypto.NewNanoID("", 0)
	if err != nil {
		return nil, err
	}
	a.anonIDs = anonIDs
	a.fail = NewErrorHandler(a.logger, a.production)

	return a, nil
}

// RegisterRoutes mounts every endpoint of q under q.BasePath. All routes pass
// through optional identity resolution, anonymous session keying and the CSRF
// guard, in that order; the endpoint's access level adds strict or admin
// resolution in front of its handler.
func (a *Adapter) RegisterRoutes(q *core.Quill) error {
	a.q = q

	handlers := map[string]fiber.Handler{
		services.OpRegister:     a.register,
		services.OpLogin:        a.login,
		services.OpGoogleLogin:  a.googleLogin,
		services.OpLogout:       a.logout,
		services.OpVerify:       a.verify,
		services.OpGetCSRFToken: a.csrfToken,
		services.OpGetUser:      a.getUser,
		services.OpUpdateUser:   a.updateUser,
		services.OpListUsers:    a.listUsers,
		services.OpDeleteUser:   a.deleteUser,

		services.OpAddCategory:    a.addCategory,
		services.OpShowCategory:   a.showCategory,
		services.OpUpdateCategory: a.updateCategory,
		services.OpDeleteCategory: a.deleteCategory,
		services.OpListCategories: a.listCategories,
		services.OpAddBlog:        a.addBlog,
		services.OpEditBlog:       a.editBlog,
		services.OpUpdateBlog:     a.updateBlog,
		services.OpDeleteBlog:     a.deleteBlog,
		services.OpShowAllBlog:    a.showAllBlog,
		services.OpGetBlog:        a.getBlog,
		services.OpRelatedBlog:    a.relatedBlog,
		services.OpBlogByCategory: a.blogByCategory,
		services.OpSearchBlog:     a.searchBlog,
		services.OpListBlogs:      a.listBlogs,
		services.OpTrendingBlogs:  a.trendingBlogs,
	}

	api := a.app.Group(q.BasePath, a.optionalAuth, a.anonymousSession, a.csrfGuard)

	for _, ep := range q.Endpoints {
		handler, ok := handlers[ep.Metadata.OperationID]
		if !ok {
			return fmt.Errorf("%w: %s (%s %s)", core.ErrHandlerNotRegistered, ep.Metadata.OperationID, ep.Method, ep.Path)
		}

		methods := []string{ep.Method}
		switch ep.Access {
		case core.AccessAuthenticated:
			api.Add(methods, ep.Path, a.requireAuth, handler)
		case core.AccessAdmin:
			api.Add(methods, ep.Path, a.onlyAdmin, handler)
		default:
			api.Add(methods, ep.Path, handler)
		}
		a.logger.Debug("route registered",
			slog.String("method", ep.Method),
			slog.String("path", q.BasePath+ep.Path),
			slog.String("access", ep.Access.String()),
		)
	}

	return nil
}
