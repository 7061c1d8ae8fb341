package core

import (
	"time"

	"github.com/lborres/quill/pkg/crypto"
	"github.com/lborres/quill/pkg/metrics"
)

type Config struct {
	Secret string

	Database Storage

	HTTP HTTPAdapter

	// Optional config
	TokenStore     TokenStore
	CacheConfig    *CacheConfig
	PasswordHasher crypto.PasswordHandler
	CredentialTTL  time.Duration
	BasePath       string
	Metrics        *metrics.Metrics
}

// Quill is the assembled service handed to the HTTP adapter.
type Quill struct {
	Auth      AuthHandler
	Identity  IdentityHandler
	CSRF      CSRFHandler
	Users     UserHandler
	Content   ContentHandler
	Endpoints []Endpoint
	Metrics   *metrics.Metrics

	CredentialTTL time.Duration
	BasePath      string
}
