package quill

import (
	"fmt"
	"time"

	"github.com/lborres/quill/core"
	"github.com/lborres/quill/pkg/cache"
	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/services"
)

// interfaces
type (
	AuthStorage    = core.AuthStorage
	ContentStorage = core.ContentStorage
	Storage        = core.Storage
	TokenStore     = core.TokenStore

	HTTPAdapter = core.HTTPAdapter

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Quill       = core.Quill
	Config      = core.Config
	CacheConfig = core.CacheConfig
)

type (
	User     = core.User
	Account  = core.Account
	Identity = core.Identity
	Role     = core.Role
	Category = core.Category
	Post     = core.Post
)

const (
	defaultBasePath      = "/api"
	defaultSecretLen     = 32
	defaultCredentialTTL = 7 * 24 * time.Hour
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.NewInMemoryCache
	NewArgon2        = crypto.NewArgon2
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrUnauthenticated = core.ErrUnauthenticated
	ErrInvalidToken    = core.ErrInvalidToken
	ErrSessionExpired  = core.ErrSessionExpired
)

var (
	ErrCategoryNotFound = core.ErrCategoryNotFound
	ErrPostNotFound     = core.ErrPostNotFound
)

var (
	ErrCSRFTokenMissing  = core.ErrCSRFTokenMissing
	ErrCSRFTokenNotFound = core.ErrCSRFTokenNotFound
	ErrCSRFTokenInvalid  = core.ErrCSRFTokenInvalid
)

var (
	ErrDBAdapterRequired    = core.ErrDBAdapterRequired
	ErrHTTPAdapterRequired  = core.ErrHTTPAdapterRequired
	ErrSecretRequired       = core.ErrSecretRequired
	ErrSecretTooShort       = core.ErrSecretTooShort
	ErrInvalidCredentialTTL = core.ErrInvalidCredentialTTL
)

func New(config Config) (*Quill, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrDBAdapterRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPAdapterRequired
	}
	if config.CredentialTTL < 0 {
		return nil, ErrInvalidCredentialTTL
	}

	// Set Defaults

	credentialTTL := config.CredentialTTL
	if credentialTTL == 0 {
		credentialTTL = defaultCredentialTTL
	}

	tokenStore := config.TokenStore
	if tokenStore == nil {
		cacheConfig := CacheConfig{}
		if config.CacheConfig != nil {
			cacheConfig = *config.CacheConfig
		}
		tokenStore = NewInMemoryCache(cacheConfig)
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}

	signer, err := crypto.NewJWTSigner([]byte(config.Secret), credentialTTL)
	if err != nil {
		return nil, err
	}

	content, err := services.NewContentService(config.Database)
	if err != nil {
		return nil, err
	}

	identity := services.NewIdentityResolver(signer)
	csrf := services.NewCSRFService(tokenStore, config.Metrics)
	config.Metrics.TrackStore(tokenStore)

	quill := &Quill{
		Auth:          services.NewAuthService(config.Database, passwordHasher, identity, csrf),
		Identity:      identity,
		CSRF:          csrf,
		Users:         services.NewUserService(config.Database, passwordHasher, csrf),
		Content:       content,
		Endpoints:     services.NewEndpointRegistry().Endpoints(),
		Metrics:       config.Metrics,
		CredentialTTL: credentialTTL,
		BasePath:      basePath,
	}

	if err := config.HTTP.RegisterRoutes(quill); err != nil {
		return nil, err
	}

	return quill, nil
}
