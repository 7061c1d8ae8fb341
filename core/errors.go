package core

import "errors"

// Credential errors
var (
	ErrUnauthenticated = errors.New("authentication required, please log in") // 401
	ErrInvalidToken    = errors.New("invalid token, please log in again")      // 401
	ErrSessionExpired  = errors.New("session expired, please log in again")    // 401
)

// Authentication Related Errors
var (
	ErrUserExists         = errors.New("user already registered")   // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrAccountNotFound    = errors.New("account not found")         // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid login credentials") // 401 Unauthorized
	ErrUserInactive       = errors.New("user account is disabled")  // 403 Forbidden
)

// Content errors
var (
	ErrCategoryNotFound = errors.New("category not found")           // 404 Not Found
	ErrCategoryExists   = errors.New("category slug already in use") // 409 Conflict
	ErrCategoryInUse    = errors.New("category still has posts")     // 409 Conflict
	ErrPostNotFound     = errors.New("blog not found")               // 404 Not Found
	ErrPostExists       = errors.New("blog slug already in use")     // 409 Conflict
)

// CSRF errors, distinguished for diagnostics
var (
	ErrCSRFTokenMissing  = errors.New("csrf token missing, please refresh the page")   // 403
	ErrCSRFTokenNotFound = errors.New("csrf token not found, please refresh the page") // 403
	ErrCSRFTokenInvalid  = errors.New("invalid csrf token, please refresh the page")   // 403
)

// Authorization errors
var (
	ErrForbidden = errors.New("you do not have permission to perform this action") // 403
)

// Token store errors
var (
	ErrTokenNotFound = errors.New("token not found in store")
)

// Validation errors (client input)
var (
	ErrInvalidRequestBody = errors.New("invalid request body")  // 400
	ErrNameRequired       = errors.New("name is required")      // 400
	ErrNameTooLong        = errors.New("name is too long")      // 400
	ErrEmailRequired      = errors.New("email is required")     // 400
	ErrInvalidEmail       = errors.New("invalid email format")  // 400
	ErrPasswordRequired   = errors.New("password is required")  // 400
	ErrPasswordTooShort   = errors.New("password is too short") // 400
	ErrPasswordTooLong    = errors.New("password is too long")  // 400
	ErrBioTooLong         = errors.New("bio is too long")       // 400
	ErrUserIDRequired     = errors.New("user id is required")   // 400
)

// Content validation errors
var (
	ErrTitleRequired    = errors.New("title is required")                   // 400
	ErrTitleTooLong     = errors.New("title is too long")                   // 400
	ErrCategoryRequired = errors.New("category is required")                // 400
	ErrContentRequired  = errors.New("blog content is required")            // 400
	ErrInvalidSlug      = errors.New("slug must contain letters or digits") // 400
	ErrTooManyTags      = errors.New("too many tags")                       // 400
)

// Config errors (server-side configuration)
var (
	ErrDBAdapterRequired    = errors.New("database adapter is required")      // 500
	ErrHTTPAdapterRequired  = errors.New("adapter is required")               // 500
	ErrSecretRequired       = errors.New("secret is required")                // 500
	ErrSecretTooShort       = errors.New("secret too short")                  // 500
	ErrInvalidCredentialTTL = errors.New("credential ttl must be positive")   // 500
	ErrInvalidAnonymousMode = errors.New("unknown anonymous session mode")    // 500
	ErrEndpointConflict     = errors.New("endpoint conflict")                 // 500
	ErrHandlerNotRegistered = errors.New("no handler for endpoint operation") // 500
)
